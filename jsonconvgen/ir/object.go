package ir

// ObjectDescriptor represents a record type with ordered named properties.
// In generated Go code an object is handled through a pointer to its struct.
type ObjectDescriptor struct {
	// Name is the struct type identifier.
	Name GoIdentifier

	// Properties in declaration order. The order fixes both the match
	// order when parsing and the emission order when serializing.
	Properties []Property

	// Documentation for this type.
	Documentation Documentation

	// Source location in Go code.
	Source Source
}

// Kind returns KindObject.
func (d *ObjectDescriptor) Kind() DescriptorKind { return KindObject }

// ID returns the qualified struct name.
func (d *ObjectDescriptor) ID() TypeID { return TypeID(d.Name.String()) }

// TypeName returns the struct's name.
func (d *ObjectDescriptor) TypeName() GoIdentifier { return d.Name }

// Doc returns the struct's documentation.
func (d *ObjectDescriptor) Doc() Documentation { return d.Documentation }

// Src returns the struct's source location.
func (d *ObjectDescriptor) Src() Source { return d.Source }

func (*ObjectDescriptor) sealed() {}

// Writable returns the properties that parsing may assign, in order.
func (d *ObjectDescriptor) Writable() []Property {
	var out []Property
	for _, p := range d.Properties {
		if !p.ReadOnly {
			out = append(out, p)
		}
	}
	return out
}

// Property represents a single property of an object.
type Property struct {
	// Name is the Go field name.
	Name string

	// WireName is the JSON property name. Falls back to Name if empty.
	WireName string

	// Type is the property's type descriptor.
	Type TypeDescriptor

	// ReadOnly properties are serialized but never assigned by parsing.
	ReadOnly bool

	// Method, if set, names a niladic method whose result is serialized
	// instead of reading the field. Only valid on read-only properties.
	Method string

	// Inline marks an object-typed field held by value (T) rather than by
	// pointer (*T).
	Inline bool

	// Documentation for this property.
	Documentation Documentation
}

// Key returns the JSON property name.
func (p Property) Key() string {
	if p.WireName != "" {
		return p.WireName
	}
	return p.Name
}
