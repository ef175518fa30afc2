// Package directive finds jsonconv directives in Go source files.
//
// A directive is a line comment in the doc comment of a type declaration:
//
//	//jsonconv:generate
//	type Record struct { ... }
//
// Every type marked this way becomes a generation root.
package directive

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

const prefix = "//jsonconv:"

// Directive represents a parsed jsonconv directive.
type Directive struct {
	Kind     Kind           // generate
	TypeName string         // name of the marked type
	Pos      token.Position // source location
}

// Kind represents the type of directive.
type Kind string

const KindGenerate Kind = "generate"

// Result contains all directives found in a package.
type Result struct {
	// Types holds the //jsonconv:generate directives in source order.
	Types []Directive

	// PackagePath is the import path of the parsed package.
	PackagePath string

	// PackageName is the declared package name.
	PackageName string

	// Dir is the directory containing the package.
	Dir string
}

// TypeNames returns the names of the marked types.
func (r *Result) TypeNames() []string {
	var names []string
	for _, d := range r.Types {
		names = append(names, d.TypeName)
	}
	return names
}

// Parse scans a Go package for jsonconv directives.
//
// The pattern follows go command semantics:
//   - "." for current directory
//   - Import path like "github.com/foo/bar"
//   - Absolute or relative directory path
//
// Returns an error if:
//   - The package cannot be loaded
//   - A directive is unknown
//   - A directive is not attached to a type declaration
func Parse(pattern string) (*Result, error) {
	return ParseDir(pattern, "")
}

// ParseDir is like Parse but allows specifying a working directory.
// If dir is empty, the current directory is used.
func ParseDir(pattern, dir string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load package: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %q", pattern)
	}
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("multiple packages found matching %q; specify a single package", pattern)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkg.Errors[0])
	}

	result := &Result{
		PackagePath: pkg.PkgPath,
		PackageName: pkg.Name,
	}
	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	fset := token.NewFileSet()
	for _, filename := range pkg.GoFiles {
		f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		directives, err := parseFile(fset, f)
		if err != nil {
			return nil, err
		}
		result.Types = append(result.Types, directives...)
	}
	return result, nil
}

// parseFile extracts directives from a single file.
func parseFile(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	type pending struct {
		kind Kind
		pos  token.Position
	}
	byGroup := make(map[*ast.CommentGroup]pending)

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			text, ok := strings.CutPrefix(c.Text, prefix)
			if !ok {
				continue
			}
			pos := fset.Position(c.Pos())
			switch fields := strings.Fields(text); {
			case len(fields) == 0:
				return nil, fmt.Errorf("%s: empty directive", pos)
			case fields[0] == string(KindGenerate):
				if len(fields) > 1 {
					return nil, fmt.Errorf("%s: %s%s takes no arguments", pos, prefix, KindGenerate)
				}
				byGroup[cg] = pending{kind: KindGenerate, pos: pos}
			default:
				return nil, fmt.Errorf("%s: unknown directive %s%s", pos, prefix, fields[0])
			}
		}
	}

	var directives []Directive
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			if doc == nil {
				continue
			}
			if p, ok := byGroup[doc]; ok {
				directives = append(directives, Directive{Kind: p.kind, TypeName: ts.Name.Name, Pos: p.pos})
				delete(byGroup, doc)
			}
		}
	}

	for _, p := range byGroup {
		return nil, fmt.Errorf("%s: %s%s directive must be attached to a type declaration", p.pos, prefix, p.kind)
	}
	return directives, nil
}
