package provider

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// ReflectionProvider extracts types using runtime reflection. It has no
// access to documentation or source positions; prefer SourceProvider when
// the package can be loaded from source.
type ReflectionProvider struct{}

// ReflectionInputOptions configures reflection-based type extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract. A struct and a pointer to it
	// produce the same root.
	RootTypes []reflect.Type
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// BuildSchema extracts every type reachable from the root types.
func (p *ReflectionProvider) BuildSchema(ctx context.Context, opts ReflectionInputOptions) (*ir.Schema, error) {
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types provided")
	}

	b := &reflectionSchemaBuilder{
		schema:  &ir.Schema{},
		objects: make(map[reflect.Type]*ir.ObjectDescriptor),
	}
	for _, t := range opts.RootTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("nil root type")
		}
		root, err := b.root(t)
		if err != nil {
			return nil, err
		}
		b.schema.AddRoot(root)
	}

	first := opts.RootTypes[0]
	for first.Kind() == reflect.Pointer {
		first = first.Elem()
	}
	if path := first.PkgPath(); path != "" {
		b.schema.Package = ir.PackageInfo{Path: path, Name: path[strings.LastIndex(path, "/")+1:]}
	}
	return b.schema, nil
}

// reflectionSchemaBuilder maintains state during schema construction.
type reflectionSchemaBuilder struct {
	schema  *ir.Schema
	objects map[reflect.Type]*ir.ObjectDescriptor // struct type -> descriptor, registered before fields are read
}

func (b *reflectionSchemaBuilder) root(t reflect.Type) (ir.TypeDescriptor, error) {
	if t.Kind() == reflect.Struct && t != timeType {
		return b.object(t)
	}
	return b.descriptor(t, false)
}

// descriptor converts a type in value position: a root, a collection
// element or a map value. char marks int32 leaves as characters.
func (b *reflectionSchemaBuilder) descriptor(t reflect.Type, char bool) (ir.TypeDescriptor, error) {
	switch t {
	case timeType:
		return ir.Time(), nil
	case durationType:
		return ir.Duration(), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return named(ir.Bool(), t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if char && t.Kind() == reflect.Int32 {
			return named(ir.Char(), t), nil
		}
		return named(ir.Int(intBits(t)), t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return named(ir.Uint(intBits(t)), t), nil
	case reflect.Float32, reflect.Float64:
		return named(ir.Float(t.Bits()), t), nil
	case reflect.String:
		return named(ir.String(), t), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && t.Elem().Name() == "uint8" {
			return named(ir.Bytes(), t), nil
		}
		if err := checkElement(t); err != nil {
			return nil, err
		}
		elem, err := b.descriptor(t.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.List(elem), nil

	case reflect.Array:
		if err := checkElement(t); err != nil {
			return nil, err
		}
		elem, err := b.descriptor(t.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, t.Len()), nil

	case reflect.Map:
		key, err := b.descriptor(t.Key(), false)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		if err := checkElement(t); err != nil {
			return nil, err
		}
		value, err := b.descriptor(t.Elem(), char)
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct && t.Elem() != timeType {
			return b.object(t.Elem())
		}
		return nil, fmt.Errorf("unsupported type: %s (only pointers to structs are supported)", t)

	case reflect.Struct:
		return nil, fmt.Errorf("unsupported type: %s held by value (use *%s)", t, t.Name())

	default:
		return nil, fmt.Errorf("unsupported type: %s (kind: %s)", t, t.Kind())
	}
}

// checkElement rejects collections of struct values; elements are objects
// only when held by pointer.
func checkElement(t reflect.Type) error {
	e := t.Elem()
	if e.Kind() == reflect.Struct && e != timeType {
		return fmt.Errorf("unsupported type: %s has struct elements held by value (use *%s)", t, e.Name())
	}
	return nil
}

// object returns the descriptor for a named struct, extracting it on first
// use. The descriptor is registered before its fields are converted so
// recursive types refer back to it.
func (b *reflectionSchemaBuilder) object(t reflect.Type) (*ir.ObjectDescriptor, error) {
	if d, ok := b.objects[t]; ok {
		return d, nil
	}
	if t.Name() == "" {
		return nil, fmt.Errorf("unsupported type: anonymous struct %s", t)
	}
	if strings.Contains(t.Name(), "[") {
		return nil, fmt.Errorf("unsupported type: generic instantiation %s", t)
	}

	d := &ir.ObjectDescriptor{Name: ir.GoIdentifier{Name: t.Name(), Package: t.PkgPath()}}
	b.objects[t] = d
	b.schema.AddType(d)

	props, err := b.properties(t)
	if err != nil {
		return nil, err
	}
	d.Properties = props
	return d, nil
}

// properties converts the exported fields of struct t. Structs embedded by
// value without a json tag have their fields promoted into the parent.
func (b *reflectionSchemaBuilder) properties(t reflect.Type) ([]ir.Property, error) {
	var props []ir.Property
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tags := parseFieldTags(field.Tag)
		if tags.skip {
			continue
		}

		if field.Anonymous && tags.wire == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				return nil, fmt.Errorf("field %s.%s: embedded pointer %s is not supported", t.Name(), field.Name, ft)
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				promoted, err := b.properties(ft)
				if err != nil {
					return nil, err
				}
				props = append(props, promoted...)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		p, err := b.property(field, tags)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
		}
		props = append(props, p)
	}
	return props, nil
}

func (b *reflectionSchemaBuilder) property(field reflect.StructField, tags fieldTags) (ir.Property, error) {
	p := ir.Property{
		Name:     field.Name,
		WireName: tags.wire,
		ReadOnly: tags.readOnly,
	}
	if field.Type.Kind() == reflect.Struct && field.Type != timeType {
		d, err := b.object(field.Type)
		if err != nil {
			return p, err
		}
		p.Type = d
		p.Inline = true
		return p, nil
	}
	t, err := b.descriptor(field.Type, tags.char)
	if err != nil {
		return p, err
	}
	p.Type = t
	return p, nil
}

// named records t's defined name on a primitive descriptor.
func named(p *ir.PrimitiveDescriptor, t reflect.Type) *ir.PrimitiveDescriptor {
	if t.PkgPath() != "" && t.Name() != "" {
		p.Named = ir.GoIdentifier{Name: t.Name(), Package: t.PkgPath()}
	}
	return p
}

func intBits(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Int, reflect.Uint:
		return 0
	default:
		return t.Bits()
	}
}
