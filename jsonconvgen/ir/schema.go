package ir

import (
	"go/token"
	"strconv"
)

// Schema is the complete input of one generation run.
type Schema struct {
	// Package is the source Go package information.
	Package PackageInfo

	// Types contains the named object descriptors known to the provider.
	Types []TypeDescriptor

	// Roots are the descriptors generation starts from, in order.
	// Everything reachable from a root is generated.
	Roots []TypeDescriptor

	// Warnings contains non-fatal issues encountered during schema building.
	Warnings []Warning
}

// AddType adds a named type descriptor to the schema.
func (s *Schema) AddType(t TypeDescriptor) {
	s.Types = append(s.Types, t)
}

// AddRoot adds a root descriptor to the schema.
func (s *Schema) AddRoot(t TypeDescriptor) {
	s.Roots = append(s.Roots, t)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindType looks up a type by name. Returns nil if not found.
func (s *Schema) FindType(name GoIdentifier) TypeDescriptor {
	for _, t := range s.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the schema for structural issues.
// Returns all validation errors found (not just the first).
func (s *Schema) Validate() []error {
	v := &validator{seen: make(map[TypeDescriptor]bool)}

	ids := make(map[TypeID]TypeDescriptor)
	for _, t := range s.Types {
		if t == nil {
			v.add("nil_type", "schema contains a nil type")
			continue
		}
		if prev, ok := ids[t.ID()]; ok && prev != t {
			v.add("duplicate_type", "duplicate type name: "+string(t.ID()))
		}
		ids[t.ID()] = t
	}

	for _, t := range s.Types {
		v.walk(t, "type")
	}
	for i, t := range s.Roots {
		v.walk(t, "root "+strconv.Itoa(i))
	}

	var result []error
	for _, e := range v.errs {
		result = append(result, e)
	}
	return result
}

type validator struct {
	seen map[TypeDescriptor]bool
	errs []*ValidationError
}

func (v *validator) add(code, msg string) {
	v.errs = append(v.errs, &ValidationError{Code: code, Message: msg})
}

func (v *validator) walk(t TypeDescriptor, context string) {
	if t == nil {
		v.add("nil_type", context+" has a nil type")
		return
	}
	if v.seen[t] {
		return
	}
	v.seen[t] = true

	switch d := t.(type) {
	case *PrimitiveDescriptor:
	case *ObjectDescriptor:
		v.walkObject(d)
	case *ArrayDescriptor:
		if d.Length <= 0 {
			v.add("invalid_array_length", context+": array length must be positive, got "+strconv.Itoa(d.Length))
		}
		v.walk(d.Element, context+" element")
	case *ListDescriptor:
		v.walk(d.Element, context+" element")
	case *MapDescriptor:
		v.walk(d.Key, context+" key")
		v.walk(d.Value, context+" value")
	}
}

func (v *validator) walkObject(d *ObjectDescriptor) {
	name := d.Name.Name
	if !token.IsIdentifier(name) {
		v.add("invalid_identifier", "object name is not a Go identifier: "+strconv.Quote(name))
	}
	names := make(map[string]bool)
	keys := make(map[string]bool)
	for _, p := range d.Properties {
		where := name + "." + p.Name
		if !token.IsIdentifier(p.Name) {
			v.add("invalid_identifier", "property name is not a Go identifier: "+strconv.Quote(where))
		}
		if names[p.Name] {
			v.add("duplicate_property", "duplicate property: "+where)
		}
		names[p.Name] = true
		if keys[p.Key()] {
			v.add("duplicate_wire_name", "duplicate JSON name "+strconv.Quote(p.Key())+" in "+name)
		}
		keys[p.Key()] = true
		if p.Inline && (p.Type == nil || p.Type.Kind() != KindObject) {
			v.add("invalid_inline", "inline set on non-object property "+where)
		}
		if p.Method != "" && !p.ReadOnly {
			v.add("invalid_method", "method accessor on writable property "+where)
		}
		v.walk(p.Type, "property "+where)
	}
}
