package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// SourceProvider extracts types by analyzing Go source code.
type SourceProvider struct{}

// SourceInputOptions configures source-based type extraction.
type SourceInputOptions struct {
	// Packages are the Go package patterns to load.
	Packages []string

	// RootTypes are the type names to extract, e.g. "Record". Names are
	// looked up in the loaded packages in order.
	RootTypes []string

	// Dir is the directory packages are loaded from. Empty means the
	// current directory.
	Dir string
}

// BuildSchema loads the packages and extracts every type reachable from
// the root types. Documentation and source positions are carried onto the
// object descriptors.
func (p *SourceProvider) BuildSchema(ctx context.Context, opts SourceInputOptions) (*ir.Schema, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	b := &schemaBuilder{
		pkgs:    pkgs,
		schema:  &ir.Schema{},
		objects: make(map[*types.TypeName]*ir.ObjectDescriptor),
	}
	first := pkgs[0]
	b.schema.Package = ir.PackageInfo{Path: first.PkgPath, Name: first.Name}
	if len(first.GoFiles) > 0 {
		b.schema.Package.Dir = dirOf(first.GoFiles[0])
	}

	for _, name := range opts.RootTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root, err := b.root(name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract root type %s: %w", name, err)
		}
		b.schema.AddRoot(root)
	}
	return b.schema, nil
}

// schemaBuilder accumulates types and manages the extraction process.
type schemaBuilder struct {
	pkgs    []*packages.Package
	schema  *ir.Schema
	objects map[*types.TypeName]*ir.ObjectDescriptor
}

func (b *schemaBuilder) root(name string) (ir.TypeDescriptor, error) {
	for _, pkg := range b.pkgs {
		tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		if named, ok := tn.Type().(*types.Named); ok {
			if _, isStruct := named.Underlying().(*types.Struct); isStruct && !isTime(named) {
				return b.object(named)
			}
		}
		return b.convert(tn.Type(), false)
	}
	return nil, fmt.Errorf("type %s not found in any package", name)
}

func isTime(t types.Type) bool     { return isNamed(t, "time", "Time") }
func isDuration(t types.Type) bool { return isNamed(t, "time", "Duration") }

func isNamed(t types.Type, pkg, name string) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok || n.Obj().Pkg() == nil {
		return false
	}
	return n.Obj().Pkg().Path() == pkg && n.Obj().Name() == name
}

// convert maps a type in value position. char marks int32 leaves as
// characters; fields declared as rune are characters regardless.
func (b *schemaBuilder) convert(t types.Type, char bool) (ir.TypeDescriptor, error) {
	if isTime(t) {
		return ir.Time(), nil
	}
	if isDuration(t) {
		return ir.Duration(), nil
	}
	t = types.Unalias(t)

	switch typ := t.Underlying().(type) {
	case *types.Basic:
		p, err := basic(typ, char)
		if err != nil {
			return nil, err
		}
		return b.named(p, t), nil

	case *types.Slice:
		if e, ok := types.Unalias(typ.Elem()).(*types.Basic); ok && e.Kind() == types.Byte {
			return b.named(ir.Bytes(), t), nil
		}
		if err := checkElem(t, typ.Elem()); err != nil {
			return nil, err
		}
		elem, err := b.convert(typ.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.List(elem), nil

	case *types.Array:
		if err := checkElem(t, typ.Elem()); err != nil {
			return nil, err
		}
		elem, err := b.convert(typ.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, int(typ.Len())), nil

	case *types.Map:
		key, err := b.convert(typ.Key(), false)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		if err := checkElem(t, typ.Elem()); err != nil {
			return nil, err
		}
		value, err := b.convert(typ.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case *types.Pointer:
		if named, ok := types.Unalias(typ.Elem()).(*types.Named); ok {
			if _, isStruct := named.Underlying().(*types.Struct); isStruct && !isTime(named) {
				return b.object(named)
			}
		}
		return nil, fmt.Errorf("unsupported type: %s (only pointers to named structs are supported)", t)

	case *types.Struct:
		return nil, fmt.Errorf("unsupported type: %s held by value", t)

	default:
		return nil, fmt.Errorf("unsupported type: %s", t)
	}
}

func checkElem(container, elem types.Type) error {
	if _, isStruct := types.Unalias(elem).Underlying().(*types.Struct); isStruct && !isTime(elem) {
		return fmt.Errorf("unsupported type: %s has struct elements held by value", container)
	}
	return nil
}

func basic(t *types.Basic, char bool) (*ir.PrimitiveDescriptor, error) {
	switch t.Kind() {
	case types.Bool:
		return ir.Bool(), nil
	case types.Int:
		return ir.Int(0), nil
	case types.Int8:
		return ir.Int(8), nil
	case types.Int16:
		return ir.Int(16), nil
	case types.Int32:
		if char || t.Name() == "rune" {
			return ir.Char(), nil
		}
		return ir.Int(32), nil
	case types.Int64:
		return ir.Int(64), nil
	case types.Uint:
		return ir.Uint(0), nil
	case types.Uint8:
		return ir.Uint(8), nil
	case types.Uint16:
		return ir.Uint(16), nil
	case types.Uint32:
		return ir.Uint(32), nil
	case types.Uint64:
		return ir.Uint(64), nil
	case types.Float32:
		return ir.Float(32), nil
	case types.Float64:
		return ir.Float(64), nil
	case types.String:
		return ir.String(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", t)
	}
}

// named records the defined name of t, if any, on a primitive.
func (b *schemaBuilder) named(p *ir.PrimitiveDescriptor, t types.Type) *ir.PrimitiveDescriptor {
	if n, ok := t.(*types.Named); ok && n.Obj().Pkg() != nil {
		p.Named = ir.GoIdentifier{Name: n.Obj().Name(), Package: n.Obj().Pkg().Path()}
	}
	return p
}

// object returns the descriptor for a named struct, extracting it on first
// use. It is registered before its fields are converted.
func (b *schemaBuilder) object(named *types.Named) (*ir.ObjectDescriptor, error) {
	tn := named.Obj()
	if d, ok := b.objects[tn]; ok {
		return d, nil
	}
	if named.TypeArgs().Len() > 0 || named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("unsupported type: generic type %s", named)
	}
	pkgPath := ""
	if tn.Pkg() != nil {
		pkgPath = tn.Pkg().Path()
	}
	d := &ir.ObjectDescriptor{
		Name:          ir.GoIdentifier{Name: tn.Name(), Package: pkgPath},
		Documentation: b.extractDocumentation(tn),
		Source:        b.extractSource(tn),
	}
	b.objects[tn] = d
	b.schema.AddType(d)

	props, err := b.properties(tn.Name(), named.Underlying().(*types.Struct))
	if err != nil {
		return nil, err
	}
	d.Properties = props
	return d, nil
}

func (b *schemaBuilder) properties(owner string, st *types.Struct) ([]ir.Property, error) {
	var props []ir.Property
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		tags := parseFieldTags(reflect.StructTag(st.Tag(i)))
		if tags.skip {
			continue
		}

		if field.Embedded() && tags.wire == "" {
			ft := types.Unalias(field.Type())
			if _, isPtr := ft.(*types.Pointer); isPtr {
				return nil, fmt.Errorf("field %s.%s: embedded pointer %s is not supported", owner, field.Name(), ft)
			}
			if inner, ok := ft.Underlying().(*types.Struct); ok && !isTime(ft) {
				promoted, err := b.properties(owner, inner)
				if err != nil {
					return nil, err
				}
				props = append(props, promoted...)
				continue
			}
		}
		if !field.Exported() {
			continue
		}

		p := ir.Property{
			Name:          field.Name(),
			WireName:      tags.wire,
			ReadOnly:      tags.readOnly,
			Documentation: b.fieldDocumentation(field),
		}
		ft := types.Unalias(field.Type())
		if n, ok := ft.(*types.Named); ok && !isTime(n) {
			if _, isStruct := n.Underlying().(*types.Struct); isStruct {
				d, err := b.object(n)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s: %w", owner, field.Name(), err)
				}
				p.Type = d
				p.Inline = true
				props = append(props, p)
				continue
			}
		}
		t, err := b.convert(field.Type(), tags.char)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", owner, field.Name(), err)
		}
		p.Type = t
		props = append(props, p)
	}
	return props, nil
}

// extractDocumentation returns the doc comment of a type declaration.
func (b *schemaBuilder) extractDocumentation(obj types.Object) ir.Documentation {
	pos := obj.Pos()
	for _, pkg := range b.pkgs {
		if pkg.Types != obj.Pkg() {
			continue
		}
		for _, file := range pkg.Syntax {
			if file.Pos() > pos || file.End() < pos {
				continue
			}
			var doc *ast.CommentGroup
			ast.Inspect(file, func(n ast.Node) bool {
				decl, ok := n.(*ast.GenDecl)
				if !ok {
					return true
				}
				for _, spec := range decl.Specs {
					if ts, ok := spec.(*ast.TypeSpec); ok && ts.Name.Pos() == pos {
						doc = ts.Doc
						if doc == nil {
							doc = decl.Doc
						}
						return false
					}
				}
				return true
			})
			return parseDocumentation(doc)
		}
	}
	return ir.Documentation{}
}

// fieldDocumentation returns the doc comment of a struct field.
func (b *schemaBuilder) fieldDocumentation(field *types.Var) ir.Documentation {
	pos := field.Pos()
	for _, pkg := range b.pkgs {
		if pkg.Types != field.Pkg() {
			continue
		}
		for _, file := range pkg.Syntax {
			if file.Pos() > pos || file.End() < pos {
				continue
			}
			var doc *ast.CommentGroup
			ast.Inspect(file, func(n ast.Node) bool {
				f, ok := n.(*ast.Field)
				if !ok {
					return doc == nil
				}
				for _, name := range f.Names {
					if name.Pos() == pos {
						doc = f.Doc
						return false
					}
				}
				return true
			})
			return parseDocumentation(doc)
		}
	}
	return ir.Documentation{}
}

func parseDocumentation(cg *ast.CommentGroup) ir.Documentation {
	if cg == nil {
		return ir.Documentation{}
	}
	body := strings.TrimSpace(cg.Text())
	summary, _, _ := strings.Cut(body, "\n")
	return ir.Documentation{Summary: strings.TrimSpace(summary), Body: body}
}

func (b *schemaBuilder) extractSource(obj types.Object) ir.Source {
	pos := obj.Pos()
	if !pos.IsValid() {
		return ir.Source{}
	}
	for _, pkg := range b.pkgs {
		if pkg.Fset != nil {
			position := pkg.Fset.Position(pos)
			return ir.Source{
				File:   position.Filename,
				Line:   position.Line,
				Column: position.Column,
			}
		}
	}
	return ir.Source{}
}

func dirOf(file string) string {
	if i := strings.LastIndexAny(file, `/\`); i >= 0 {
		return file[:i]
	}
	return "."
}
