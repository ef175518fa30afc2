package golang

import (
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"testing"

	"github.com/broady/jsonconv/jsonconvgen/emit"
	"github.com/broady/jsonconv/jsonconvgen/ir"
)

const testPkgPath = "example.com/models"

func testConfig() GeneratorConfig {
	return GeneratorConfig{Package: "models", PackagePath: testPkgPath}
}

func object(name string, props ...ir.Property) *ir.ObjectDescriptor {
	return &ir.ObjectDescriptor{
		Name:       ir.GoIdentifier{Name: name, Package: testPkgPath},
		Properties: props,
	}
}

func prop(name string, t ir.TypeDescriptor) ir.Property {
	return ir.Property{Name: name, Type: t}
}

// resolve runs a full generation and checks every artifact is balanced.
func resolve(t *testing.T, cfg GeneratorConfig, roots ...ir.TypeDescriptor) map[ir.TypeID]*Artifact {
	t.Helper()
	artifacts, _, err := Resolve(roots, cfg, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for id, a := range artifacts {
		if err := emit.CheckBalance(a.Code); err != nil {
			t.Errorf("artifact %s is unbalanced: %v\n%s", id, err, a.Code)
		}
	}
	return artifacts
}

// funcNames parses a generated file and returns its top-level function names.
func funcNames(t *testing.T, src []byte) []string {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated file does not parse: %v\n%s", err, src)
	}
	var names []string
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			names = append(names, fn.Name.Name)
		}
	}
	sort.Strings(names)
	return names
}

func artifactNames(artifacts map[ir.TypeID]*Artifact) []string {
	var names []string
	for _, a := range SortedArtifacts(artifacts) {
		names = append(names, a.Name)
	}
	return names
}
