package provider

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

const thisPkg = "github.com/broady/jsonconv/jsonconvgen/provider"

type (
	UserID string
	Level  int8
)

type Address struct {
	City string `json:"city"`
	Zip  string `json:"zip"`
}

type Audit struct {
	CreatedBy string `json:"created_by"`
}

type User struct {
	ID       UserID `json:"id"`
	Name     string
	Initial  rune  `jsonconv:"char"`
	Grade    int32 `jsonconv:"char"`
	Level    Level
	Home     Address
	Work     *Address
	Previous []*Address
	Tags     map[string]string
	Scores   [3]float32
	Avatar   []byte
	Joined   time.Time `jsonconv:"readonly"`
	Timeout  time.Duration
	Secret   string `json:"-"`
	internal int

	Audit
}

type Node struct {
	Value    int
	Next     *Node
	Children []*Node
}

type AllPrimitives struct {
	Bool    bool
	Int     int
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Uint    uint
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64
	String  string
}

func buildReflection(t *testing.T, roots ...reflect.Type) *ir.Schema {
	t.Helper()
	schema, err := (&ReflectionProvider{}).BuildSchema(context.Background(), ReflectionInputOptions{RootTypes: roots})
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	return schema
}

func TestReflectionProvider_User(t *testing.T) {
	schema := buildReflection(t, reflect.TypeFor[User]())

	if schema.Package.Path != thisPkg || schema.Package.Name != "provider" {
		t.Errorf("Package = %+v", schema.Package)
	}
	user := findObject(t, schema, "User")
	if diff := cmp.Diff(userProperties(thisPkg), summarize(user)); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	if errs := schema.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestReflectionProvider_PointerAndValueRootsMatch(t *testing.T) {
	schema := buildReflection(t, reflect.TypeFor[*User](), reflect.TypeFor[User]())
	if schema.Roots[0] != schema.Roots[1] {
		t.Error("User and *User produced different descriptors")
	}
	var objects int
	for _, typ := range schema.Types {
		if typ.Kind() == ir.KindObject {
			objects++
		}
	}
	if objects != 2 { // User, Address
		t.Errorf("got %d objects, want 2", objects)
	}
}

func TestReflectionProvider_Primitives(t *testing.T) {
	schema := buildReflection(t, reflect.TypeFor[AllPrimitives]())
	var got []ir.TypeID
	for _, p := range findObject(t, schema, "AllPrimitives").Properties {
		got = append(got, p.Type.ID())
	}
	want := []ir.TypeID{
		"bool", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64", "string",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestReflectionProvider_Recursive(t *testing.T) {
	schema := buildReflection(t, reflect.TypeFor[Node]())
	node := findObject(t, schema, "Node")
	if node.Properties[1].Type != ir.TypeDescriptor(node) {
		t.Error("Next does not refer back to Node")
	}
	if got := node.Properties[2].Type.ID(); got != ir.TypeID("[]*"+thisPkg+".Node") {
		t.Errorf("Children = %s", got)
	}
}

func TestReflectionProvider_Collections(t *testing.T) {
	schema := buildReflection(t,
		reflect.TypeFor[[]*Address](),
		reflect.TypeFor[map[string][]int](),
		reflect.TypeFor[[2][]rune](),
		reflect.TypeFor[map[int]string](),
	)
	var got []ir.TypeID
	for _, r := range schema.Roots {
		got = append(got, r.ID())
	}
	want := []ir.TypeID{
		ir.TypeID("[]*" + thisPkg + ".Address"),
		"map[string][]int",
		"[2][]int32", // rune is int32 at run time
		"map[int]string",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestReflectionProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		roots   []reflect.Type
		wantErr string
	}{
		{"no roots", nil, "no root types"},
		{"struct elements", []reflect.Type{reflect.TypeFor[[]Address]()}, "held by value"},
		{"struct map values", []reflect.Type{reflect.TypeFor[map[string]Address]()}, "held by value"},
		{"pointer to primitive", []reflect.Type{reflect.TypeFor[*int]()}, "only pointers to structs"},
		{"interface", []reflect.Type{reflect.TypeFor[[]any]()}, "unsupported type"},
		{"channel", []reflect.Type{reflect.TypeFor[chan int]()}, "unsupported type"},
		{"anonymous struct", []reflect.Type{reflect.TypeFor[*struct{ A int }]()}, "anonymous struct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ReflectionProvider{}).BuildSchema(context.Background(), ReflectionInputOptions{RootTypes: tt.roots})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("BuildSchema() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestReflectionProvider_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&ReflectionProvider{}).BuildSchema(ctx, ReflectionInputOptions{RootTypes: []reflect.Type{reflect.TypeFor[User]()}})
	if err != context.Canceled {
		t.Errorf("BuildSchema() error = %v, want context.Canceled", err)
	}
}
