// Package jsonconvgen generates JSON parse and serialize routines for Go
// types. Types are read from source, from values at run time, or from a
// YAML schema file; the routines are written as Go files that depend only
// on the jsonconv runtime package.
package jsonconvgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/broady/jsonconv/internal/directive"
	"github.com/broady/jsonconv/internal/discover"
	"github.com/broady/jsonconv/jsonconvgen/golang"
	"github.com/broady/jsonconv/jsonconvgen/ir"
	"github.com/broady/jsonconv/jsonconvgen/provider"
	"github.com/broady/jsonconv/jsonconvgen/sink"
)

// GenerateResult describes the output of a generation run.
type GenerateResult struct {
	// Files holds the generated files in path order.
	Files []File

	// Package and PackagePath identify the generated package.
	Package     string
	PackagePath string

	// TypesGenerated is the number of types routines were produced for.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// File is one generated file.
type File struct {
	// Path is relative to the output directory.
	Path    string
	Content []byte
}

// Generator provides a fluent API for code generation.
// Create with FromTypes, FromPackages or FromSchemaFile and configure with
// method chaining.
//
// Example:
//
//	jsonconvgen.FromPackages("./models").
//	    Types("Record", "Ledger").
//	    SingleFile().
//	    ToDir("./models")
type Generator struct {
	cfg Config
}

// FromTypes creates a Generator using the reflection provider. Pass zero
// values of the root types, e.g. Record{} or []*Record{}.
func FromTypes(types ...any) *Generator {
	return &Generator{cfg: Config{Provider: ProviderReflection, Types: types}}
}

// FromPackages creates a Generator using the source provider.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Provider: ProviderSource, Packages: patterns}}
}

// FromSchemaFile creates a Generator reading types from a YAML schema file.
func FromSchemaFile(path string) *Generator {
	return &Generator{cfg: Config{Provider: ProviderSchema, SchemaFile: path}}
}

// Types sets the root type names for the source provider. Without it,
// types marked //jsonconv:generate are used.
func (g *Generator) Types(names ...string) *Generator {
	g.cfg.RootTypes = append(g.cfg.RootTypes, names...)
	return g
}

// Package sets the generated package name.
func (g *Generator) Package(name string) *Generator {
	g.cfg.Package = name
	return g
}

// PackagePath sets the import path of the output directory.
func (g *Generator) PackagePath(path string) *Generator {
	g.cfg.PackagePath = path
	return g
}

// SingleFile emits all routines into one file.
func (g *Generator) SingleFile() *Generator {
	g.cfg.SingleFile = true
	return g
}

// NativeMapOrder serializes maps in range order.
func (g *Generator) NativeMapOrder() *Generator {
	g.cfg.NativeMapOrder = true
	return g
}

// StrictShapes fails on shapes that cannot be generated.
func (g *Generator) StrictShapes() *Generator {
	g.cfg.StrictShapes = true
	return g
}

// EmitComments adds doc comments to the generated routines.
func (g *Generator) EmitComments() *Generator {
	g.cfg.EmitComments = true
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// ToDir generates files to the specified directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*GenerateResult, error) {
	g.cfg.OutDir = dir
	return Generate(context.Background(), &g.cfg)
}

// Generate returns the files that ToDir(dir) would write, without writing
// them. The directory still determines the package identity.
func (g *Generator) Generate(dir string) (*GenerateResult, error) {
	g.cfg.OutDir = dir
	return render(context.Background(), &g.cfg)
}

// Generate builds the schema described by cfg, generates routines for its
// roots and writes them to cfg.OutDir. Existing files are only replaced if
// they carry a generated-code header.
func Generate(ctx context.Context, cfg *Config) (*GenerateResult, error) {
	result, err := render(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out := sink.NewFilesystemSink(cfg.OutDir)
	for _, f := range result.Files {
		if err := out.WriteFile(ctx, f.Path, f.Content); err != nil {
			return nil, err
		}
	}
	logger(cfg).Info("generated",
		slog.String("dir", cfg.OutDir),
		slog.String("package", result.PackagePath),
		slog.Int("files", len(result.Files)),
		slog.Int("types", result.TypesGenerated))
	return result, nil
}

func logger(cfg *Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// render runs generation into memory.
func render(ctx context.Context, cfg *Config) (*GenerateResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = applyConfigDefaults(cfg)
	log := cfg.Logger

	schema, err := buildSchema(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	if errs := schema.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}
	log.Debug("schema built",
		slog.String("provider", cfg.Provider),
		slog.Int("roots", len(schema.Roots)),
		slog.Int("types", len(schema.Types)))

	pkgName, pkgPath, err := outputPackage(cfg, schema)
	if err != nil {
		return nil, err
	}

	mem := sink.NewMemorySink()
	var gen golang.Target = golang.NewGenerator().WithLogger(log)
	res, err := gen.Generate(ctx, schema, golang.GenerateOptions{
		Sink: mem,
		Config: golang.GeneratorConfig{
			Package:        pkgName,
			PackagePath:    pkgPath,
			ParsePrefix:    cfg.ParsePrefix,
			WritePrefix:    cfg.WritePrefix,
			NativeMapOrder: cfg.NativeMapOrder,
			StrictShapes:   cfg.StrictShapes,
			SingleFile:     cfg.SingleFile,
			FileName:       cfg.FileName,
			FileSuffix:     cfg.FileSuffix,
			EmitComments:   cfg.EmitComments,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", gen.Name(), err)
	}

	for _, w := range res.Warnings {
		attrs := []any{slog.String("code", w.Code)}
		if w.TypeName != "" {
			attrs = append(attrs, slog.String("type", w.TypeName))
		}
		if w.Source != nil && w.Source.File != "" {
			attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", w.Source.File, w.Source.Line)))
		}
		log.Warn(w.Message, attrs...)
	}

	result := &GenerateResult{
		Package:        pkgName,
		PackagePath:    pkgPath,
		TypesGenerated: res.TypesGenerated,
		Warnings:       res.Warnings,
	}
	for _, path := range mem.Paths() {
		result.Files = append(result.Files, File{Path: path, Content: mem.Get(path)})
	}
	return result, nil
}

func buildSchema(ctx context.Context, cfg *Config) (*ir.Schema, error) {
	switch cfg.Provider {
	case ProviderSource:
		return buildSchemaFromSource(ctx, cfg)
	case ProviderReflection:
		return buildSchemaFromReflection(ctx, cfg.Types)
	case ProviderSchema:
		p := &provider.SchemaFileProvider{}
		return p.BuildSchema(ctx, cfg.SchemaFile)
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}

// buildSchemaFromSource uses the source provider. Without explicit root
// types, the first package is scanned for //jsonconv:generate directives.
func buildSchemaFromSource(ctx context.Context, cfg *Config) (*ir.Schema, error) {
	roots := slices.Clone(cfg.RootTypes)
	if len(roots) == 0 {
		found, err := directive.ParseDir(cfg.Packages[0], cfg.Dir)
		if err != nil {
			return nil, err
		}
		roots = found.TypeNames()
		if len(roots) == 0 {
			return nil, fmt.Errorf("no root types: package %s has no //jsonconv:generate directives", found.PackagePath)
		}
		cfg.Logger.Debug("discovered root types",
			slog.String("package", found.PackagePath),
			slog.Any("types", roots))
	}

	p := &provider.SourceProvider{}
	return p.BuildSchema(ctx, provider.SourceInputOptions{
		Packages:  cfg.Packages,
		RootTypes: roots,
		Dir:       cfg.Dir,
	})
}

// buildSchemaFromReflection uses the reflection provider.
func buildSchemaFromReflection(ctx context.Context, values []any) (*ir.Schema, error) {
	rootTypes := make([]reflect.Type, 0, len(values))
	for i, v := range values {
		if v == nil {
			return nil, fmt.Errorf("types[%d] is nil", i)
		}
		rootTypes = append(rootTypes, reflect.TypeOf(v))
	}
	p := &provider.ReflectionProvider{}
	return p.BuildSchema(ctx, provider.ReflectionInputOptions{RootTypes: rootTypes})
}

// outputPackage works out the name and import path of the package the
// generated files belong to. Explicit configuration wins; otherwise the
// output directory is inspected, falling back to the schema's package when
// the directory is that package.
func outputPackage(cfg *Config, schema *ir.Schema) (name, path string, err error) {
	name, path = cfg.Package, cfg.PackagePath
	if name != "" && path != "" {
		return name, path, nil
	}

	found, derr := discover.Package(cfg.OutDir)
	switch {
	case derr == nil:
		if path == "" {
			path = found.PackagePath
		}
		if name == "" {
			name = found.PackageName
		}
	case errors.Is(derr, discover.ErrNoModule):
		cfg.Logger.Debug("output directory is outside a module", slog.String("dir", cfg.OutDir))
	default:
		return "", "", fmt.Errorf("inspect output directory: %w", derr)
	}

	if name == "" && path != "" && path == schema.Package.Path {
		name = schema.Package.Name
	}
	if name == "" && path != "" {
		name = golang.PackageName(path)
	}
	if name == "" {
		abs, err := filepath.Abs(cfg.OutDir)
		if err != nil {
			return "", "", err
		}
		name = golang.PackageName(filepath.Base(abs))
	}
	return name, path, nil
}
