package golang

import (
	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// emitSequenceParse emits the element loop shared by arrays and lists.
// Each element is read into a fresh elem variable and appended to buf.
func (r *Resolver) emitSequenceParse(f *Frame, elem ir.TypeDescriptor, buf, label string) {
	out := f.Out
	out.BeginBlock("for")
	out.BeginBlock("if err := r.Next(); err != nil")
	out.Linef("return %s, err", f.zero)
	out.EndBlock()
	out.BeginBlock("if r.Kind() == jsonconv.KindEndArray")
	out.WriteLine("break")
	out.EndBlock()
	out.Linef("var elem %s", r.typeExpr(f, elem))
	r.readValue(f, elem, "elem", label+" element", false)
	out.Linef("%s = append(%s, elem)", buf, buf)
	out.EndBlock()
}

func (r *Resolver) emitSequenceWrite(f *Frame, elem ir.TypeDescriptor) {
	out := f.Out
	out.WriteLine("w.BeginArray()")
	out.BeginBlock("for _, elem := range v")
	r.writeValue(f, elem, "elem", false)
	out.EndBlock()
	out.WriteLine("w.EndArray()")
}

func (r *Resolver) expectStart(f *Frame, kind, label string) {
	out := f.Out
	out.Blockf("if r.Kind() != jsonconv.%s", kind)
	out.Linef("return %s, jsonconv.NewParseError(jsonconv.CodeUnexpectedToken, %q, r.Kind())", f.zero, label)
	out.EndBlock()
}

func (r *Resolver) emitList(f *Frame, d *ir.ListDescriptor) {
	r.runtime(f)
	out := f.Out
	typ := r.typeExpr(f, d)

	parse := r.parseFunc(d)
	if r.cfg.EmitComments {
		out.Comment(parse + " reads a " + typ + " from r, which must be positioned at the start of a JSON array.")
	}
	out.Blockf("func %s(r jsonconv.TokenReader) (%s, error)", parse, typ)
	r.expectStart(f, "KindBeginArray", typ)
	out.Linef("v := make(%s, 0)", typ)
	r.emitSequenceParse(f, d.Element, "v", typ)
	out.WriteLine("return v, nil")
	out.EndBlock()
	out.BlankLine()

	write := r.writeFunc(d)
	if r.cfg.EmitComments {
		out.Comment(write + " writes v to w as a JSON array, or null if v is nil.")
	}
	out.Blockf("func %s(w jsonconv.TokenWriter, v %s)", write, typ)
	out.BeginBlock("if v == nil")
	out.WriteLine("w.Null()")
	out.WriteLine("return")
	out.EndBlock()
	r.emitSequenceWrite(f, d.Element)
	out.EndBlock()
}

func (r *Resolver) emitArray(f *Frame, d *ir.ArrayDescriptor) {
	r.runtime(f)
	out := f.Out
	typ := r.typeExpr(f, d)
	f.zero = "v"

	parse := r.parseFunc(d)
	if r.cfg.EmitComments {
		out.Comment(parse + " reads a " + typ + " from r, which must be positioned at the start of a JSON array.")
		out.Comment("Elements beyond the array length are dropped; missing elements are left zero.")
	}
	out.Blockf("func %s(r jsonconv.TokenReader) (%s, error)", parse, typ)
	out.Linef("var v %s", typ)
	r.expectStart(f, "KindBeginArray", typ)
	out.Linef("var buf []%s", r.typeExpr(f, d.Element))
	r.emitSequenceParse(f, d.Element, "buf", typ)
	out.WriteLine("copy(v[:], buf)")
	out.WriteLine("return v, nil")
	out.EndBlock()
	out.BlankLine()

	write := r.writeFunc(d)
	if r.cfg.EmitComments {
		out.Comment(write + " writes v to w as a JSON array.")
	}
	out.Blockf("func %s(w jsonconv.TokenWriter, v %s)", write, typ)
	r.emitSequenceWrite(f, d.Element)
	out.EndBlock()
}

func (r *Resolver) emitMap(f *Frame, d *ir.MapDescriptor) {
	r.runtime(f)
	out := f.Out
	typ := r.typeExpr(f, d)
	key := d.Key.(*ir.PrimitiveDescriptor)

	parse := r.parseFunc(d)
	if r.cfg.EmitComments {
		out.Comment(parse + " reads a " + typ + " from r, which must be positioned at the start of a JSON object.")
		out.Comment("Duplicate keys overwrite earlier ones.")
	}
	out.Blockf("func %s(r jsonconv.TokenReader) (%s, error)", parse, typ)
	r.expectStart(f, "KindBeginObject", typ)
	out.Linef("v := make(%s)", typ)
	out.BeginBlock("for")
	out.BeginBlock("if err := r.Next(); err != nil")
	out.WriteLine("return nil, err")
	out.EndBlock()
	out.BeginBlock("if r.Kind() == jsonconv.KindEndObject")
	out.WriteLine("break")
	out.EndBlock()
	out.WriteLine("key, err := r.String()")
	r.returnOnErr(f)
	out.BeginBlock("if err := r.Next(); err != nil")
	out.WriteLine("return nil, err")
	out.EndBlock()
	out.Linef("var val %s", r.typeExpr(f, d.Value))
	r.readValue(f, d.Value, "val", typ+" value", false)
	out.Linef("v[%s] = val", r.convert(f, key, "key", "string"))
	out.EndBlock()
	out.WriteLine("return v, nil")
	out.EndBlock()
	out.BlankLine()

	write := r.writeFunc(d)
	if r.cfg.EmitComments {
		if r.cfg.NativeMapOrder {
			out.Comment(write + " writes v to w as a JSON object, or null if v is nil.")
		} else {
			out.Comment(write + " writes v to w as a JSON object with sorted keys, or null if v is nil.")
		}
	}
	out.Blockf("func %s(w jsonconv.TokenWriter, v %s)", write, typ)
	out.BeginBlock("if v == nil")
	out.WriteLine("w.Null()")
	out.WriteLine("return")
	out.EndBlock()
	out.WriteLine("w.BeginObject()")
	name := "key"
	if !key.Named.IsZero() {
		name = "string(key)"
	}
	if r.cfg.NativeMapOrder {
		out.BeginBlock("for key, val := range v")
		out.Linef("w.Name(%s)", name)
		r.writeValue(f, d.Value, "val", false)
	} else {
		f.use("maps", "maps")
		f.use("slices", "slices")
		out.BeginBlock("for _, key := range slices.Sorted(maps.Keys(v))")
		out.Linef("w.Name(%s)", name)
		r.writeValue(f, d.Value, "v[key]", false)
	}
	out.EndBlock()
	out.WriteLine("w.EndObject()")
	out.EndBlock()
}
