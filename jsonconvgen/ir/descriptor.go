package ir

// DescriptorKind identifies the shape of a type descriptor.
// The set is closed; generators switch over it exhaustively.
type DescriptorKind int

const (
	KindPrimitive DescriptorKind = iota // Leaf value handled inline by referencing code
	KindObject                          // Record with ordered named properties (Go struct)
	KindArray                           // Fixed-length sequence ([N]T)
	KindList                            // Homogeneous growable sequence ([]T)
	KindMap                             // Keyed mapping (map[K]V)
)

// String returns the string representation of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// TypeID is the identity of a type descriptor. Two descriptors with equal
// IDs describe the same Go type and produce the same generated routines.
//
// IDs are Go type expressions with fully qualified package paths, for
// example "[]*example.com/models.Record" or "map[string]int".
type TypeID string

// TypeDescriptor is the base interface for all type descriptors.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// ID returns the stable, comparable identity of the described type.
	ID() TypeID

	// TypeName returns the declared name of this type.
	// Returns zero value for unnamed types (collections, builtin primitives).
	TypeName() GoIdentifier

	// Doc returns associated documentation comments.
	Doc() Documentation

	// Src returns the original Go source location.
	Src() Source

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// exprBase provides zero-value implementations of TypeDescriptor methods
// for unnamed descriptors.
type exprBase struct{}

func (exprBase) TypeName() GoIdentifier { return GoIdentifier{} }
func (exprBase) Doc() Documentation     { return Documentation{} }
func (exprBase) Src() Source            { return Source{} }
func (exprBase) sealed()                {}
