package golang

import (
	"testing"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

func TestClassify(t *testing.T) {
	record := object("Record")
	userKey := &ir.PrimitiveDescriptor{
		PrimitiveKind: ir.PrimitiveString,
		Named:         ir.GoIdentifier{Name: "Key", Package: testPkgPath},
	}
	tests := []struct {
		name string
		desc ir.TypeDescriptor
		want Strategy
	}{
		{"string", ir.String(), StrategyInline},
		{"char", ir.Char(), StrategyInline},
		{"time", ir.Time(), StrategyInline},
		{"object", record, StrategyObject},
		{"array", ir.Array(ir.Int(0), 2), StrategyArray},
		{"list", ir.List(record), StrategyList},
		{"string map", ir.StringMap(ir.Int(0)), StrategyMap},
		{"defined string key map", ir.Map(userKey, ir.Int(0)), StrategyMap},
		{"int key map", ir.Map(ir.Int(0), ir.String()), StrategyUnsupported},
		{"nil", nil, StrategyUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.desc); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrategy_String(t *testing.T) {
	tests := []struct {
		s    Strategy
		want string
	}{
		{StrategyInline, "Inline"},
		{StrategyObject, "Object"},
		{StrategyArray, "Array"},
		{StrategyList, "List"},
		{StrategyMap, "Map"},
		{StrategyUnsupported, "Unsupported"},
		{Strategy(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Strategy(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
