package ir

import "strconv"

// PrimitiveKind identifies the category of a primitive type.
type PrimitiveKind int

const (
	PrimitiveBool  PrimitiveKind = iota
	PrimitiveInt                 // Signed integer (see BitSize)
	PrimitiveUint                // Unsigned integer (see BitSize)
	PrimitiveFloat               // Floating point (see BitSize)
	PrimitiveString
	PrimitiveChar     // Single character (rune), a one-character string in JSON
	PrimitiveBytes    // []byte (base64-encoded in JSON)
	PrimitiveTime     // time.Time (RFC 3339 string in JSON)
	PrimitiveDuration // time.Duration (nanoseconds as int64 in JSON)
)

// String returns the string representation of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "Bool"
	case PrimitiveInt:
		return "Int"
	case PrimitiveUint:
		return "Uint"
	case PrimitiveFloat:
		return "Float"
	case PrimitiveString:
		return "String"
	case PrimitiveChar:
		return "Char"
	case PrimitiveBytes:
		return "Bytes"
	case PrimitiveTime:
		return "Time"
	case PrimitiveDuration:
		return "Duration"
	default:
		return "Unknown"
	}
}

// PrimitiveDescriptor represents a leaf value type. Primitives never get
// routines of their own; referencing code reads and writes them inline.
type PrimitiveDescriptor struct {
	exprBase
	PrimitiveKind PrimitiveKind

	// BitSize specifies the size for numeric types (PrimitiveInt, PrimitiveUint, PrimitiveFloat).
	// Valid values:
	// - 0: Platform-dependent size (Go's `int`, `uint`); float uses 64
	// - 8, 16, 32, 64: Explicit bit width
	//
	// Ignored for non-numeric primitive kinds.
	BitSize int

	// Named is set when the Go type is a defined type whose underlying type
	// is this primitive, e.g. `type UserID string`. Generated code converts
	// to and from it.
	Named GoIdentifier
}

// Kind returns KindPrimitive.
func (d *PrimitiveDescriptor) Kind() DescriptorKind { return KindPrimitive }

// ID returns the Go type expression of the primitive.
func (d *PrimitiveDescriptor) ID() TypeID {
	if !d.Named.IsZero() {
		return TypeID(d.Named.String())
	}
	return TypeID(d.BuiltinName())
}

// TypeName returns the defined type name, if any.
func (d *PrimitiveDescriptor) TypeName() GoIdentifier { return d.Named }

// BuiltinName returns the builtin Go type spelling of the underlying type.
func (d *PrimitiveDescriptor) BuiltinName() string {
	switch d.PrimitiveKind {
	case PrimitiveBool:
		return "bool"
	case PrimitiveInt:
		return sized("int", d.BitSize)
	case PrimitiveUint:
		return sized("uint", d.BitSize)
	case PrimitiveFloat:
		if d.BitSize == 32 {
			return "float32"
		}
		return "float64"
	case PrimitiveString:
		return "string"
	case PrimitiveChar:
		return "rune"
	case PrimitiveBytes:
		return "[]byte"
	case PrimitiveTime:
		return "time.Time"
	case PrimitiveDuration:
		return "time.Duration"
	default:
		return "invalid"
	}
}

func sized(base string, bits int) string {
	if bits == 0 {
		return base
	}
	return base + strconv.Itoa(bits)
}

// Convenience constructors for common primitives.

// Bool returns a PrimitiveDescriptor for bool.
func Bool() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBool}
}

// String returns a PrimitiveDescriptor for string.
func String() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveString}
}

// Int returns a PrimitiveDescriptor for a signed integer with the given bit size.
func Int(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveInt, BitSize: bitSize}
}

// Uint returns a PrimitiveDescriptor for an unsigned integer with the given bit size.
func Uint(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveUint, BitSize: bitSize}
}

// Float returns a PrimitiveDescriptor for a float with the given bit size.
func Float(bitSize int) *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveFloat, BitSize: bitSize}
}

// Char returns a PrimitiveDescriptor for rune.
func Char() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveChar}
}

// Bytes returns a PrimitiveDescriptor for []byte.
func Bytes() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveBytes}
}

// Time returns a PrimitiveDescriptor for time.Time.
func Time() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveTime}
}

// Duration returns a PrimitiveDescriptor for time.Duration.
func Duration() *PrimitiveDescriptor {
	return &PrimitiveDescriptor{PrimitiveKind: PrimitiveDuration}
}
