package golang

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/tools/imports"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

var _ Target = (*Generator)(nil)

// Header is written at the top of every generated file.
const Header = "// Code generated by jsonconv. DO NOT EDIT."

// Generator emits Go parse and serialize routines for a schema.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator returns a Go generator.
func NewGenerator() *Generator {
	return &Generator{logger: slog.Default()}
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Name returns "go".
func (g *Generator) Name() string { return "go" }

// Generate resolves the schema's roots and writes the resulting Go files
// to opts.Sink.
func (g *Generator) Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error) {
	if schema == nil {
		return nil, ErrNoRoots
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("golang: no output sink")
	}
	cfg := opts.Config.withDefaults()

	artifacts, warnings, err := Resolve(schema.Roots, cfg, g.logger)
	if err != nil {
		return nil, err
	}

	files, err := Assemble(artifacts, cfg)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		TypesGenerated: len(artifacts),
		Warnings:       append(append([]ir.Warning(nil), schema.Warnings...), warnings...),
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := files[name]
		if err := opts.Sink.WriteFile(ctx, name, content); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		result.Files = append(result.Files, OutputFile{Path: name, Size: int64(len(content))})
		g.logger.Debug("wrote file", slog.String("path", name), slog.Int("bytes", len(content)))
	}
	return result, nil
}

// SortedArtifacts returns artifacts ordered by name.
func SortedArtifacts(artifacts map[ir.TypeID]*Artifact) []*Artifact {
	out := make([]*Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type.ID() < out[j].Type.ID()
	})
	return out
}

// Assemble combines artifacts into formatted Go files keyed by file name.
func Assemble(artifacts map[ir.TypeID]*Artifact, cfg GeneratorConfig) (map[string][]byte, error) {
	cfg = cfg.withDefaults()
	if cfg.Package == "" {
		return nil, ErrNoPackage
	}
	sorted := SortedArtifacts(artifacts)
	files := make(map[string][]byte)
	if cfg.SingleFile {
		src, err := assembleFile(cfg.FileName, cfg.Package, sorted)
		if err != nil {
			return nil, err
		}
		files[cfg.FileName] = src
		return files, nil
	}
	for _, a := range sorted {
		name := fileName(a.Name, cfg.FileSuffix)
		src, err := assembleFile(name, cfg.Package, []*Artifact{a})
		if err != nil {
			return nil, err
		}
		files[name] = src
	}
	return files, nil
}

func assembleFile(name, pkg string, artifacts []*Artifact) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteString("\n\npackage ")
	buf.WriteString(pkg)
	buf.WriteString("\n")

	merged := make(map[string]string)
	for _, a := range artifacts {
		for path, local := range a.Imports {
			merged[path] = local
		}
	}
	if len(merged) > 0 {
		paths := make([]string, 0, len(merged))
		for path := range merged {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		buf.WriteString("\nimport (\n")
		for _, path := range paths {
			local := merged[path]
			if local == PackageName(path) && local == lastElem(path) {
				fmt.Fprintf(&buf, "\t%s\n", strconv.Quote(path))
			} else {
				fmt.Fprintf(&buf, "\t%s %s\n", local, strconv.Quote(path))
			}
		}
		buf.WriteString(")\n")
	}

	for _, a := range artifacts {
		buf.WriteString("\n")
		buf.WriteString(a.Code)
	}

	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return out, nil
}

func lastElem(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
