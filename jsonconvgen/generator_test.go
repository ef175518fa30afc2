package jsonconvgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/jsonconv/internal/testfixtures"
	"github.com/broady/jsonconv/jsonconvgen/golang"
	"github.com/broady/jsonconv/jsonconvgen/sink"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func reflectionConfig(dir string) *Config {
	return &Config{
		OutDir:      dir,
		Provider:    ProviderReflection,
		Types:       []any{testfixtures.Order{}},
		Package:     "testfixtures",
		PackagePath: testfixtures.Path,
		Logger:      quiet,
	}
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestGenerate_Reflection(t *testing.T) {
	dir := t.TempDir()
	cfg := reflectionConfig(dir)
	cfg.SingleFile = true

	result, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if diff := cmp.Diff([]string{"testfixtures_jsonconv.go"}, readDir(t, dir)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	if result.Package != "testfixtures" || result.PackagePath != testfixtures.Path {
		t.Errorf("package = %s %s", result.Package, result.PackagePath)
	}
	if result.TypesGenerated != 4 {
		t.Errorf("TypesGenerated = %d, want 4", result.TypesGenerated)
	}

	src, err := os.ReadFile(filepath.Join(dir, "testfixtures_jsonconv.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(src, result.Files[0].Content) {
		t.Error("written content differs from result")
	}
	for _, want := range []string{
		golang.Header,
		"package testfixtures",
		"func ParseOrder(r jsonconv.TokenReader) (*Order, error) {",
		"func WriteOrder(",
		"func ParseListItem(",
		"func ParseMapStringString(",
		`w.Name("name")`,
	} {
		if !bytes.Contains(src, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	if bytes.Contains(src, []byte(testfixtures.Path)) {
		t.Error("output imports its own package")
	}
}

func TestGenerate_ScalarsAndRecursion(t *testing.T) {
	cfg := reflectionConfig(t.TempDir())
	cfg.Types = []any{testfixtures.Event{}, &testfixtures.Tree{}}
	cfg.SingleFile = true

	result, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.TypesGenerated != 3 {
		t.Errorf("TypesGenerated = %d, want 3", result.TypesGenerated)
	}
	src := string(result.Files[0].Content)
	for _, want := range []string{
		"v.Level = int8(x)",
		"w.Int(int64(v.Level))",
		"utf8.DecodeRuneInString(s)",
		"w.Duration(v.Timeout)",
		"w.Base64(v.Payload)",
		`w.Name("seen")`,
		"func ParseListTree(r jsonconv.TokenReader) ([]*Tree, error) {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(src, "v.Seen =") {
		t.Error("read-only property is parsed")
	}
}

func TestGenerate_PerTypeFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Generate(context.Background(), reflectionConfig(dir)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{
		"item_jsonconv.go",
		"list_item_jsonconv.go",
		"map_string_string_jsonconv.go",
		"order_jsonconv.go",
	}
	if diff := cmp.Diff(want, readDir(t, dir)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_RefusesHandWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testfixtures_jsonconv.go")
	if err := os.WriteFile(path, []byte("package testfixtures\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := reflectionConfig(dir)
	cfg.SingleFile = true
	_, err := Generate(context.Background(), cfg)
	if !errors.Is(err, sink.ErrNotGenerated) {
		t.Errorf("Generate() error = %v, want ErrNotGenerated", err)
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	_, err := Generate(context.Background(), &Config{Provider: ProviderReflection, Logger: quiet})
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Generate() error = %v, want invalid config", err)
	}
}

func TestGenerate_UnsupportedShapes(t *testing.T) {
	dir := t.TempDir()
	cfg := reflectionConfig(dir)
	cfg.Types = []any{testfixtures.Lookup{}}
	cfg.SingleFile = true

	result, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	var codes []string
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	if diff := cmp.Diff([]string{golang.WarnUnsupportedShape}, codes); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}

	cfg.OutDir = t.TempDir()
	cfg.StrictShapes = true
	if _, err := Generate(context.Background(), cfg); err == nil {
		t.Error("Generate() with StrictShapes error = nil, want error")
	}
	if names := readDir(t, cfg.OutDir); len(names) != 0 {
		t.Errorf("strict failure wrote %v", names)
	}
}

func TestGenerator_Fluent(t *testing.T) {
	dir := t.TempDir()
	result, err := FromTypes(testfixtures.Order{}).
		Package("testfixtures").
		PackagePath(testfixtures.Path).
		SingleFile().
		NativeMapOrder().
		WithLogger(quiet).
		Generate(dir)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(readDir(t, dir)) != 0 {
		t.Error("Generate wrote files")
	}
	if len(result.Files) != 1 || result.Files[0].Path != "testfixtures_jsonconv.go" {
		t.Fatalf("Files = %+v", result.Files)
	}
	if bytes.Contains(result.Files[0].Content, []byte("slices.Sorted")) {
		t.Error("native map order still sorts keys")
	}

	if _, err := FromTypes(testfixtures.Order{}).Package("testfixtures").PackagePath(testfixtures.Path).WithLogger(quiet).ToDir(dir); err != nil {
		t.Fatalf("ToDir() error = %v", err)
	}
	if len(readDir(t, dir)) != 4 {
		t.Errorf("ToDir wrote %v", readDir(t, dir))
	}
}

func TestGenerator_Config(t *testing.T) {
	cfg := FromPackages("./models").Types("Record").Types("Ledger").StrictShapes().EmitComments().Config()
	want := Config{
		Provider:     ProviderSource,
		Packages:     []string{"./models"},
		RootTypes:    []string{"Record", "Ledger"},
		StrictShapes: true,
		EmitComments: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	cfg = FromSchemaFile("types.yaml").Config()
	if cfg.Provider != ProviderSchema || cfg.SchemaFile != "types.yaml" {
		t.Errorf("FromSchemaFile config = %+v", cfg)
	}
}

// writeModule creates a standalone module holding files.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	// Disable go.work so temp directories work as standalone modules
	t.Setenv("GOWORK", "off")
	dir := t.TempDir()
	files["go.mod"] = "module example.com/shop\n\ngo 1.21\n"
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const cartSource = `package models

import "time"

// Cart is a shopping cart.
//
//jsonconv:generate
type Cart struct {
	Owner   string    ` + "`json:\"owner\"`" + `
	Lines   []*Line
	Created time.Time
}

type Line struct {
	SKU string
	Qty int
}
`

func TestGenerate_SourceDirectives(t *testing.T) {
	mod := writeModule(t, map[string]string{"models/models.go": cartSource})
	out := filepath.Join(mod, "models")
	cfg := &Config{
		OutDir:       out,
		Dir:          mod,
		Packages:     []string{"./models"},
		SingleFile:   true,
		EmitComments: true,
		Logger:       quiet,
	}

	result, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Package != "models" || result.PackagePath != "example.com/shop/models" {
		t.Errorf("package = %s %s", result.Package, result.PackagePath)
	}
	src, err := os.ReadFile(filepath.Join(out, "models_jsonconv.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"func ParseCart(r jsonconv.TokenReader) (*Cart, error) {",
		"func WriteListLine(w jsonconv.TokenWriter, v []*Line) {",
		`w.Name("owner")`,
		"//\n// Cart is a shopping cart.\nfunc ParseCart(",
	} {
		if !bytes.Contains(src, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
	if bytes.Contains(src, []byte(`"example.com/shop/models"`)) {
		t.Error("output imports its own package")
	}
}

func TestGenerate_SourceWithoutDirectives(t *testing.T) {
	mod := writeModule(t, map[string]string{"models/models.go": "package models\n\ntype Cart struct{}\n"})
	cfg := &Config{
		OutDir:   filepath.Join(mod, "models"),
		Dir:      mod,
		Packages: []string{"./models"},
		Logger:   quiet,
	}
	_, err := Generate(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "no //jsonconv:generate directives") {
		t.Errorf("Generate() error = %v", err)
	}

	cfg.RootTypes = []string{"Cart"}
	if _, err := Generate(context.Background(), cfg); err != nil {
		t.Errorf("Generate() with explicit types error = %v", err)
	}
}

func TestGenerate_SchemaFile(t *testing.T) {
	mod := writeModule(t, map[string]string{
		"types.yaml": `package: models
path: example.com/shop/models
types:
  - name: Cart
    properties:
      - name: Owner
        type: string
      - name: Lines
        type: "[]*Line"
  - name: Line
    properties:
      - name: SKU
        type: string
roots: [Cart]
`,
	})
	cfg := &Config{
		OutDir:     filepath.Join(mod, "models"),
		Provider:   ProviderSchema,
		SchemaFile: filepath.Join(mod, "types.yaml"),
		Logger:     quiet,
	}
	result, err := Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Package != "models" || result.PackagePath != "example.com/shop/models" {
		t.Errorf("package = %s %s", result.Package, result.PackagePath)
	}
	var names []string
	for _, f := range result.Files {
		names = append(names, f.Path)
	}
	want := []string{"cart_jsonconv.go", "line_jsonconv.go", "list_line_jsonconv.go"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}
