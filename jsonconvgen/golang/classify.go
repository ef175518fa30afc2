package golang

import "github.com/broady/jsonconv/jsonconvgen/ir"

// Strategy selects how routines for a type are generated.
type Strategy int

const (
	// StrategyInline is used for primitives, which never get routines of
	// their own.
	StrategyInline Strategy = iota
	StrategyObject
	StrategyArray
	StrategyList
	StrategyMap
	// StrategyUnsupported produces stub routines that skip the value and
	// write null.
	StrategyUnsupported
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyInline:
		return "Inline"
	case StrategyObject:
		return "Object"
	case StrategyArray:
		return "Array"
	case StrategyList:
		return "List"
	case StrategyMap:
		return "Map"
	case StrategyUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Classify maps a descriptor to its generation strategy. Arrays are checked
// first, then lists, then string-keyed maps. Any other map is an
// unsupported enumerable shape; everything else that is not a primitive is
// an object.
func Classify(t ir.TypeDescriptor) Strategy {
	switch d := t.(type) {
	case *ir.ArrayDescriptor:
		return StrategyArray
	case *ir.ListDescriptor:
		return StrategyList
	case *ir.MapDescriptor:
		if d.StringKeyed() {
			return StrategyMap
		}
		return StrategyUnsupported
	case *ir.ObjectDescriptor:
		return StrategyObject
	case *ir.PrimitiveDescriptor:
		return StrategyInline
	default:
		return StrategyUnsupported
	}
}
