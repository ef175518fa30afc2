package golang

import (
	"strconv"

	"github.com/broady/jsonconv/jsonconvgen/emit"
	"github.com/broady/jsonconv/jsonconvgen/ir"
)

func (r *Resolver) emitObject(f *Frame, d *ir.ObjectDescriptor) {
	r.runtime(f)
	out := f.Out
	typ := r.qualify(f, d.Name)
	writable := d.Writable()

	for _, p := range writable {
		r.docComment(out, p.Documentation)
		out.Linef("var %s = []byte(%s)", r.keyVar(f, p), strconv.Quote(p.Key()))
	}
	if len(writable) > 0 {
		out.BlankLine()
	}

	r.emitObjectParse(f, d, typ, writable)
	out.BlankLine()
	r.emitObjectWrite(f, d, typ)
}

func (r *Resolver) emitObjectParse(f *Frame, d *ir.ObjectDescriptor, typ string, writable []ir.Property) {
	out := f.Out
	fn := r.parseFunc(d)
	if r.cfg.EmitComments {
		out.Comment(fn + " reads a " + typ + " from r, which must be positioned at the start of a JSON object.")
		r.typeDoc(out, d)
	}
	out.Blockf("func %s(r jsonconv.TokenReader) (*%s, error)", fn, typ)

	out.BeginBlock("if r.Kind() != jsonconv.KindBeginObject")
	out.Linef("return nil, jsonconv.NewParseError(jsonconv.CodeUnexpectedToken, %q, r.Kind())", d.Name.Name)
	out.EndBlock()
	out.Linef("v := new(%s)", typ)

	out.BeginBlock("for")
	out.BeginBlock("if err := r.Next(); err != nil")
	out.WriteLine("return nil, err")
	out.EndBlock()
	out.BeginBlock("if r.Kind() == jsonconv.KindEndObject")
	out.WriteLine("break")
	out.EndBlock()
	if len(writable) > 0 {
		out.WriteLine("name := r.Bytes()")
	}
	out.BeginBlock("if err := r.Next(); err != nil")
	out.WriteLine("return nil, err")
	out.EndBlock()

	if len(writable) == 0 {
		out.BeginBlock("if err := r.Skip(); err != nil")
		out.WriteLine("return nil, err")
		out.EndBlock()
	} else {
		f.use("bytes", "bytes")
		for i, p := range writable {
			cond := "if bytes.Equal(name, " + r.keyVar(f, p) + ")"
			if i == 0 {
				out.BeginBlock(cond)
			} else {
				out.ElseBlock("else " + cond)
			}
			r.readValue(f, p.Type, "v."+p.Name, d.Name.Name+"."+p.Name, p.Inline)
		}
		// Unknown properties are skipped whole.
		out.ElseBlock("else if err := r.Skip(); err != nil")
		out.WriteLine("return nil, err")
		out.EndBlock()
	}
	out.EndBlock() // for

	out.WriteLine("return v, nil")
	out.EndBlock()
}

func (r *Resolver) emitObjectWrite(f *Frame, d *ir.ObjectDescriptor, typ string) {
	out := f.Out
	fn := r.writeFunc(d)
	if r.cfg.EmitComments {
		out.Comment(fn + " writes v to w as a JSON object, or null if v is nil.")
		r.typeDoc(out, d)
	}
	out.Blockf("func %s(w jsonconv.TokenWriter, v *%s)", fn, typ)
	out.BeginBlock("if v == nil")
	out.WriteLine("w.Null()")
	out.WriteLine("return")
	out.EndBlock()
	out.WriteLine("w.BeginObject()")
	for _, p := range d.Properties {
		r.docComment(out, p.Documentation)
		out.Linef("w.Name(%s)", strconv.Quote(p.Key()))
		src := "v." + p.Name
		if p.Method != "" {
			src = "v." + p.Method + "()"
		}
		r.writeValue(f, p.Type, src, p.Inline)
	}
	out.WriteLine("w.EndObject()")
	out.EndBlock()
}

// typeDoc appends the type's doc summary to a routine comment.
func (r *Resolver) typeDoc(out *emit.Writer, d *ir.ObjectDescriptor) {
	if summary := d.Doc().Summary; summary != "" {
		out.Comment("")
		out.Comment(summary)
	}
}

// docComment writes a property's doc summary when comments are enabled.
func (r *Resolver) docComment(out *emit.Writer, doc ir.Documentation) {
	if r.cfg.EmitComments && doc.Summary != "" {
		out.Comment(doc.Summary)
	}
}
