package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// SchemaFileProvider builds a schema from a YAML description, for types
// that are not available as Go source. Type expressions use Go syntax:
//
//	package: models
//	path: example.com/models
//	types:
//	  - name: UserID
//	    underlying: string
//	  - name: Record
//	    doc: Record is a stored row.
//	    properties:
//	      - {name: ID, type: UserID, wire: id}
//	      - {name: Tags, type: "map[string]string"}
//	      - {name: Owner, type: "*Record"}
//	      - {name: Initial, type: char}
//	      - {name: Label, type: string, readonly: true, method: Label}
//	roots: [Record, "[]*Record"]
//
// A bare object name in a property type is held by value.
type SchemaFileProvider struct{}

type schemaFile struct {
	Package string       `yaml:"package"`
	Path    string       `yaml:"path"`
	Types   []schemaType `yaml:"types"`
	Roots   []string     `yaml:"roots"`
}

type schemaType struct {
	Name       string           `yaml:"name"`
	Doc        string           `yaml:"doc"`
	Underlying string           `yaml:"underlying"`
	Properties []schemaProperty `yaml:"properties"`

	line int
}

type schemaProperty struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Wire     string `yaml:"wire"`
	ReadOnly bool   `yaml:"readonly"`
	Method   string `yaml:"method"`
	Inline   bool   `yaml:"inline"`
	Doc      string `yaml:"doc"`
}

// BuildSchema reads and converts the schema file at path.
func (p *SchemaFileProvider) BuildSchema(ctx context.Context, path string) (*ir.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := p.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, t := range schema.Types {
		if d, ok := t.(*ir.ObjectDescriptor); ok {
			d.Source.File = path
		}
	}
	return schema, nil
}

// Parse converts a YAML schema read from r.
func (p *SchemaFileProvider) Parse(ctx context.Context, r io.Reader) (*ir.Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var file schemaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty schema file")
		}
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	recordLines(&doc, &file)

	if file.Package == "" {
		return nil, fmt.Errorf("package is required")
	}
	if len(file.Roots) == 0 {
		return nil, fmt.Errorf("no roots listed")
	}

	b := &fileBuilder{
		pkg:     file.Path,
		schema:  &ir.Schema{Package: ir.PackageInfo{Name: file.Package, Path: file.Path}},
		byName:  make(map[string]ir.TypeDescriptor),
		objects: make(map[string]*ir.ObjectDescriptor),
	}

	// Declare every type first so properties may refer forward and back.
	for _, st := range file.Types {
		if _, dup := b.byName[st.Name]; dup {
			return nil, fmt.Errorf("line %d: type %s declared twice", st.line, st.Name)
		}
		id := ir.GoIdentifier{Name: st.Name, Package: file.Path}
		if st.Underlying != "" {
			if len(st.Properties) > 0 {
				return nil, fmt.Errorf("line %d: type %s has both underlying and properties", st.line, st.Name)
			}
			prim, err := underlying(st.Underlying)
			if err != nil {
				return nil, fmt.Errorf("line %d: type %s: %w", st.line, st.Name, err)
			}
			prim.Named = id
			b.byName[st.Name] = prim
			continue
		}
		d := &ir.ObjectDescriptor{
			Name:          id,
			Documentation: documentation(st.Doc),
			Source:        ir.Source{Line: st.line},
		}
		b.byName[st.Name] = d
		b.objects[st.Name] = d
		b.schema.AddType(d)
	}

	for _, st := range file.Types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, ok := b.objects[st.Name]
		if !ok {
			continue
		}
		for _, sp := range st.Properties {
			prop, err := b.property(sp)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s.%s: %w", st.line, st.Name, sp.Name, err)
			}
			d.Properties = append(d.Properties, prop)
		}
	}

	for _, expr := range file.Roots {
		t, err := b.parse(expr, true)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", expr, err)
		}
		b.schema.AddRoot(t)
	}
	return b.schema, nil
}

// recordLines copies type declaration line numbers from the node tree.
func recordLines(doc *yaml.Node, file *schemaFile) {
	if len(doc.Content) == 0 {
		return
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "types" {
			continue
		}
		for j, item := range root.Content[i+1].Content {
			if j < len(file.Types) {
				file.Types[j].line = item.Line
			}
		}
	}
}

type fileBuilder struct {
	pkg     string
	schema  *ir.Schema
	byName  map[string]ir.TypeDescriptor
	objects map[string]*ir.ObjectDescriptor
}

func (b *fileBuilder) property(sp schemaProperty) (ir.Property, error) {
	p := ir.Property{
		Name:          sp.Name,
		WireName:      sp.Wire,
		ReadOnly:      sp.ReadOnly,
		Method:        sp.Method,
		Inline:        sp.Inline,
		Documentation: documentation(sp.Doc),
	}
	if sp.Type == "" {
		return p, fmt.Errorf("missing type")
	}
	expr := sp.Type
	if sp.Inline {
		expr = strings.TrimPrefix(expr, "*")
	}
	t, err := b.parse(expr, true)
	if err != nil {
		return p, err
	}
	if t.Kind() == ir.KindObject && !strings.HasPrefix(expr, "*") {
		p.Inline = true
	}
	p.Type = t
	return p, nil
}

// parse converts a Go type expression. Bare object names are accepted only
// where byValue allows them.
func (b *fileBuilder) parse(expr string, byValue bool) (ir.TypeDescriptor, error) {
	x, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q", expr)
	}
	return b.convert(x, byValue)
}

func (b *fileBuilder) convert(x ast.Expr, byValue bool) (ir.TypeDescriptor, error) {
	switch e := x.(type) {
	case *ast.ParenExpr:
		return b.convert(e.X, byValue)

	case *ast.Ident:
		if t, ok := b.byName[e.Name]; ok {
			if t.Kind() == ir.KindObject && !byValue {
				return nil, fmt.Errorf("%s must be held by pointer here (use *%s)", e.Name, e.Name)
			}
			return t, nil
		}
		return underlying(e.Name)

	case *ast.SelectorExpr:
		return underlying(selectorName(e))

	case *ast.StarExpr:
		id, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("only pointers to objects are supported")
		}
		d, ok := b.objects[id.Name]
		if !ok {
			return nil, fmt.Errorf("*%s: unknown object type", id.Name)
		}
		return d, nil

	case *ast.ArrayType:
		elem, err := b.convert(e.Elt, false)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			if p, ok := elem.(*ir.PrimitiveDescriptor); ok && p.PrimitiveKind == ir.PrimitiveUint && p.BitSize == 8 && p.Named.IsZero() {
				return ir.Bytes(), nil
			}
			return ir.List(elem), nil
		}
		lit, ok := e.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, fmt.Errorf("array length must be an integer literal")
		}
		n, err := strconv.Atoi(lit.Value)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid array length %s", lit.Value)
		}
		return ir.Array(elem, n), nil

	case *ast.MapType:
		key, err := b.convert(e.Key, false)
		if err != nil {
			return nil, err
		}
		value, err := b.convert(e.Value, false)
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	default:
		return nil, fmt.Errorf("unsupported type expression %T", x)
	}
}

func selectorName(e *ast.SelectorExpr) string {
	if pkg, ok := e.X.(*ast.Ident); ok {
		return pkg.Name + "." + e.Sel.Name
	}
	return e.Sel.Name
}

// underlying maps a builtin type name to a primitive.
func underlying(name string) (*ir.PrimitiveDescriptor, error) {
	switch name {
	case "bool":
		return ir.Bool(), nil
	case "string":
		return ir.String(), nil
	case "char", "rune":
		return ir.Char(), nil
	case "byte":
		return ir.Uint(8), nil
	case "[]byte", "bytes":
		return ir.Bytes(), nil
	case "time.Time":
		return ir.Time(), nil
	case "time.Duration":
		return ir.Duration(), nil
	}
	for _, base := range []string{"int", "uint", "float"} {
		rest, ok := strings.CutPrefix(name, base)
		if !ok {
			continue
		}
		bits := 0
		if rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil {
				break
			}
			bits = n
		}
		switch {
		case base == "float" && (bits == 32 || bits == 64):
			return ir.Float(bits), nil
		case base == "int" && validBits(bits):
			return ir.Int(bits), nil
		case base == "uint" && validBits(bits):
			return ir.Uint(bits), nil
		}
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func validBits(n int) bool {
	return n == 0 || n == 8 || n == 16 || n == 32 || n == 64
}

func documentation(text string) ir.Documentation {
	text = strings.TrimSpace(text)
	if text == "" {
		return ir.Documentation{}
	}
	summary, _, _ := strings.Cut(text, "\n")
	return ir.Documentation{Summary: summary, Body: text}
}
