package golang

import (
	"context"
	"errors"

	"github.com/broady/jsonconv/jsonconvgen/emit"
	"github.com/broady/jsonconv/jsonconvgen/ir"
	"github.com/broady/jsonconv/jsonconvgen/sink"
)

// RuntimeImport is the import path of the package generated code depends on.
const RuntimeImport = "github.com/broady/jsonconv"

var (
	// ErrNoRoots is returned when generation is requested without root types.
	ErrNoRoots = errors.New("golang: no root types")

	// ErrNoPackage is returned when the output package name is blank.
	ErrNoPackage = errors.New("golang: output package name is required")
)

// Warning codes.
const (
	WarnUnsupportedShape = "UNSUPPORTED_SHAPE"
	WarnPrimitiveRoot    = "PRIMITIVE_ROOT"
)

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator configuration.
	Config GeneratorConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// TypesGenerated is the count of artifacts produced.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// GeneratorConfig configures the Go generator.
type GeneratorConfig struct {
	// Package is the name of the package the generated code is declared in.
	// Required.
	Package string

	// PackagePath is the import path of that package. Types declared in it
	// are referenced without qualification.
	PackagePath string

	// ParsePrefix and WritePrefix are prepended to the derived type name to
	// form routine names. Defaults: "Parse" and "Write".
	ParsePrefix string
	WritePrefix string

	// NativeMapOrder makes map serializers range over the map directly
	// instead of iterating keys in sorted order.
	NativeMapOrder bool

	// StrictShapes makes unsupported shapes a generation error instead of
	// stub routines and a warning.
	StrictShapes bool

	// SingleFile writes all artifacts to FileName instead of one file per type.
	SingleFile bool

	// FileName is the single output file. Default: "<package>_jsonconv.go".
	FileName string

	// FileSuffix is appended to the snake_case type name in per-type mode.
	// Default: "_jsonconv.go".
	FileSuffix string

	// Indent is the indentation unit. Default: a tab.
	Indent string

	// EmitComments adds doc comments to generated routines.
	EmitComments bool
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.ParsePrefix == "" {
		c.ParsePrefix = "Parse"
	}
	if c.WritePrefix == "" {
		c.WritePrefix = "Write"
	}
	if c.FileName == "" && c.Package != "" {
		c.FileName = c.Package + "_jsonconv.go"
	}
	if c.FileSuffix == "" {
		c.FileSuffix = "_jsonconv.go"
	}
	if c.Indent == "" {
		c.Indent = "\t"
	}
	return c
}

// Artifact is the generated source for exactly one type.
type Artifact struct {
	// Type is the descriptor the artifact was generated for.
	Type ir.TypeDescriptor

	// Name is the deterministic name derived from the type, e.g. "ListRecord".
	Name string

	// Code holds the declarations, without package clause or imports.
	Code string

	// Imports maps import paths used by Code to their local names.
	Imports map[string]string

	// Unsupported is set when the shape could not be generated and Code
	// holds stub routines.
	Unsupported bool
}

// Frame is the per-type generation context: one emitter and the type being
// generated. Frames are stacked while nested types are generated.
type Frame struct {
	Type ir.TypeDescriptor
	Out  *emit.Writer

	name    string
	imports map[string]string
	keys    map[string]string // property name -> key variable
	// zero is the expression returned alongside errors from the parse routine.
	zero string
}

func (f *Frame) use(path, local string) {
	f.imports[path] = local
}

// Target is implemented by code generators for one output language.
type Target interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate produces source code for the given schema.
	Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error)
}
