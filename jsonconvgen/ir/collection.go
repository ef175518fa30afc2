package ir

import "strconv"

// ArrayDescriptor represents a fixed-length array ([N]T).
//
// Go arrays cannot be nil, so generated serializers never emit null for them.
type ArrayDescriptor struct {
	exprBase

	// Element is the array element type.
	Element TypeDescriptor

	// Length is the number of elements, N in [N]T.
	Length int
}

// Kind returns KindArray.
func (d *ArrayDescriptor) Kind() DescriptorKind { return KindArray }

// ID returns "[N]" followed by the element ID.
func (d *ArrayDescriptor) ID() TypeID {
	return TypeID("[" + strconv.Itoa(d.Length) + "]" + string(elemID(d.Element)))
}

// Array returns an ArrayDescriptor for [length]element.
func Array(element TypeDescriptor, length int) *ArrayDescriptor {
	return &ArrayDescriptor{Element: element, Length: length}
}

// ListDescriptor represents a homogeneous slice ([]T).
// A nil slice serializes to JSON null.
type ListDescriptor struct {
	exprBase

	// Element is the slice element type.
	Element TypeDescriptor
}

// Kind returns KindList.
func (d *ListDescriptor) Kind() DescriptorKind { return KindList }

// ID returns "[]" followed by the element ID.
func (d *ListDescriptor) ID() TypeID {
	return TypeID("[]" + string(elemID(d.Element)))
}

// List returns a ListDescriptor for []element.
func List(element TypeDescriptor) *ListDescriptor {
	return &ListDescriptor{Element: element}
}

// MapDescriptor represents a key-value mapping.
// Only string keys are supported by the generators; other key types are
// kept in the model so they can be reported rather than dropped.
type MapDescriptor struct {
	exprBase

	// Key is the map key type.
	Key TypeDescriptor

	// Value is the map value type.
	Value TypeDescriptor
}

// Kind returns KindMap.
func (d *MapDescriptor) Kind() DescriptorKind { return KindMap }

// ID returns "map[K]V".
func (d *MapDescriptor) ID() TypeID {
	return TypeID("map[" + string(elemID(d.Key)) + "]" + string(elemID(d.Value)))
}

// StringKeyed reports whether the key is a string or a defined string type.
func (d *MapDescriptor) StringKeyed() bool {
	p, ok := d.Key.(*PrimitiveDescriptor)
	return ok && p.PrimitiveKind == PrimitiveString
}

// Map returns a MapDescriptor for map[key]value.
func Map(key, value TypeDescriptor) *MapDescriptor {
	return &MapDescriptor{Key: key, Value: value}
}

// StringMap returns a MapDescriptor for map[string]value.
func StringMap(value TypeDescriptor) *MapDescriptor {
	return &MapDescriptor{Key: String(), Value: value}
}

// elemID returns the ID of t as it appears inside a composite type.
// Objects are always referenced through a pointer.
func elemID(t TypeDescriptor) TypeID {
	if t == nil {
		return "invalid"
	}
	if t.Kind() == KindObject {
		return "*" + t.ID()
	}
	return t.ID()
}
