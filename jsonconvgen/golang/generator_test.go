package golang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/jsonconv/jsonconvgen/ir"
	"github.com/broady/jsonconv/jsonconvgen/sink"
)

func testSchema() *ir.Schema {
	address := object("Address", prop("City", ir.String()))
	person := object("Person",
		prop("Name", ir.String()),
		prop("Home", address),
		prop("Tags", ir.StringMap(ir.String())),
		prop("Born", ir.Time()),
	)
	s := &ir.Schema{Package: ir.PackageInfo{Name: "models", Path: testPkgPath}}
	s.AddType(address)
	s.AddType(person)
	s.AddRoot(person)
	s.AddRoot(ir.List(person))
	return s
}

func TestGenerator_SingleFile(t *testing.T) {
	mem := sink.NewMemorySink()
	cfg := testConfig()
	cfg.SingleFile = true

	result, err := NewGenerator().Generate(context.Background(), testSchema(), GenerateOptions{Sink: mem, Config: cfg})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if diff := cmp.Diff([]string{"models_jsonconv.go"}, mem.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if result.TypesGenerated != 4 {
		t.Errorf("TypesGenerated = %d, want 4", result.TypesGenerated)
	}
	if len(result.Files) != 1 || result.Files[0].Size == 0 {
		t.Errorf("Files = %+v", result.Files)
	}

	src := mem.Get("models_jsonconv.go")
	if !bytes.HasPrefix(src, []byte(Header+"\n\npackage models\n")) {
		t.Errorf("missing header and package clause:\n%s", src)
	}
	if !sink.IsGenerated(src) {
		t.Error("output not recognized as generated")
	}
	for _, imp := range []string{`"bytes"`, `"github.com/broady/jsonconv"`, `"maps"`, `"slices"`} {
		if !bytes.Contains(src, []byte(imp)) {
			t.Errorf("missing import %s", imp)
		}
	}
	want := []string{
		"ParseAddress", "ParseListPerson", "ParseMapStringString", "ParsePerson",
		"WriteAddress", "WriteListPerson", "WriteMapStringString", "WritePerson",
	}
	if diff := cmp.Diff(want, funcNames(t, src)); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerator_FilePerType(t *testing.T) {
	mem := sink.NewMemorySink()
	if _, err := NewGenerator().Generate(context.Background(), testSchema(), GenerateOptions{Sink: mem, Config: testConfig()}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{
		"address_jsonconv.go",
		"list_person_jsonconv.go",
		"map_string_string_jsonconv.go",
		"person_jsonconv.go",
	}
	if diff := cmp.Diff(want, mem.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	person := mem.Get("person_jsonconv.go")
	if diff := cmp.Diff([]string{"ParsePerson", "WritePerson"}, funcNames(t, person)); diff != "" {
		t.Errorf("person functions mismatch (-want +got):\n%s", diff)
	}
	if bytes.Contains(person, []byte(`"slices"`)) {
		t.Error("person file imports slices, which only the map file uses")
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	var outputs [][]byte
	for range 3 {
		mem := sink.NewMemorySink()
		cfg := testConfig()
		cfg.SingleFile = true
		if _, err := NewGenerator().Generate(context.Background(), testSchema(), GenerateOptions{Sink: mem, Config: cfg}); err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, mem.Get("models_jsonconv.go"))
	}
	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Fatalf("run %d differs from run 0:\n%s", i, cmp.Diff(string(outputs[0]), string(outputs[i])))
		}
	}
}

func TestGenerator_Comments(t *testing.T) {
	mem := sink.NewMemorySink()
	cfg := testConfig()
	cfg.SingleFile = true
	cfg.EmitComments = true
	if _, err := NewGenerator().Generate(context.Background(), testSchema(), GenerateOptions{Sink: mem, Config: cfg}); err != nil {
		t.Fatal(err)
	}
	src := string(mem.Get("models_jsonconv.go"))
	for _, want := range []string{
		"// ParsePerson reads a Person from r",
		"// WriteMapStringString writes v to w as a JSON object with sorted keys",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("missing comment %q", want)
		}
	}
}

func TestGenerator_DocSummaries(t *testing.T) {
	owner := prop("Owner", ir.String())
	owner.Documentation = ir.Documentation{Summary: "Owner is the account holding the cart."}
	total := ir.Property{Name: "Total", Type: ir.Int(0), ReadOnly: true, Method: "Total",
		Documentation: ir.Documentation{Summary: "Total is computed."}}
	cart := object("Cart", owner, total)
	cart.Documentation = ir.Documentation{Summary: "Cart is a shopping cart.", Body: "Cart is a shopping cart.\n\nMore detail."}
	s := &ir.Schema{}
	s.AddRoot(cart)

	generate := func(comments bool) string {
		mem := sink.NewMemorySink()
		cfg := testConfig()
		cfg.SingleFile = true
		cfg.EmitComments = comments
		if _, err := NewGenerator().Generate(context.Background(), s, GenerateOptions{Sink: mem, Config: cfg}); err != nil {
			t.Fatal(err)
		}
		return string(mem.Get("models_jsonconv.go"))
	}

	src := generate(true)
	for _, want := range []string{
		"// ParseCart reads a Cart from r, which must be positioned at the start of a JSON object.\n//\n// Cart is a shopping cart.\nfunc ParseCart(",
		"// WriteCart writes v to w as a JSON object, or null if v is nil.\n//\n// Cart is a shopping cart.\nfunc WriteCart(",
		"// Owner is the account holding the cart.\nvar cartKeyOwner = []byte(\"Owner\")",
		"\t// Total is computed.\n\tw.Name(\"Total\")",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q:\n%s", want, src)
		}
	}
	if strings.Contains(src, "More detail.") {
		t.Error("output includes doc body beyond the summary")
	}

	if src := generate(false); strings.Contains(src, "shopping cart") || strings.Contains(src, "account holding") {
		t.Errorf("summaries emitted without EmitComments:\n%s", src)
	}
}

func TestGenerator_Target(t *testing.T) {
	var target Target = NewGenerator()
	if got := target.Name(); got != "go" {
		t.Errorf("Name() = %q, want go", got)
	}
	mem := sink.NewMemorySink()
	if _, err := target.Generate(context.Background(), testSchema(), GenerateOptions{Sink: mem, Config: testConfig()}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(mem.Paths()) == 0 {
		t.Error("Generate through Target wrote nothing")
	}
}

func TestGenerator_Errors(t *testing.T) {
	ctx := context.Background()
	mem := sink.NewMemorySink()
	g := NewGenerator()

	if _, err := g.Generate(ctx, &ir.Schema{}, GenerateOptions{Sink: mem, Config: testConfig()}); !errors.Is(err, ErrNoRoots) {
		t.Errorf("empty schema error = %v, want ErrNoRoots", err)
	}
	if _, err := g.Generate(ctx, testSchema(), GenerateOptions{Sink: mem}); !errors.Is(err, ErrNoPackage) {
		t.Errorf("missing package error = %v, want ErrNoPackage", err)
	}
	if _, err := g.Generate(ctx, testSchema(), GenerateOptions{Config: testConfig()}); err == nil {
		t.Error("missing sink should fail")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := g.Generate(canceled, testSchema(), GenerateOptions{Sink: mem, Config: testConfig()}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context error = %v, want context.Canceled", err)
	}
	if len(mem.Paths()) != 0 {
		t.Errorf("files written on error: %v", mem.Paths())
	}
}

func TestGenerator_UnsupportedWarning(t *testing.T) {
	s := &ir.Schema{}
	s.AddRoot(object("Record", prop("ByID", ir.Map(ir.Int(0), ir.String()))))
	mem := sink.NewMemorySink()
	cfg := testConfig()
	cfg.SingleFile = true

	result, err := NewGenerator().Generate(context.Background(), s, GenerateOptions{Sink: mem, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Code != WarnUnsupportedShape {
		t.Errorf("Warnings = %+v", result.Warnings)
	}
	src := mem.Get("models_jsonconv.go")
	if !bytes.Contains(src, []byte("// MapIntString: ")) {
		t.Errorf("unsupported shape comment missing:\n%s", src)
	}
	// Record delegates to stub routines, so the file is complete.
	want := []string{"ParseMapIntString", "ParseRecord", "WriteMapIntString", "WriteRecord"}
	if diff := cmp.Diff(want, funcNames(t, src)); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
}
