package golang

import (
	"fmt"
	"strings"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// The generated routines use fixed parameter names: r for the reader, w
// for the writer and v for the value. Read helpers declare x, s and c in
// the current block, so each value read must happen in its own block or
// be the only read in its scope.

func (r *Resolver) returnOnErr(f *Frame) {
	f.Out.BeginBlock("if err != nil")
	f.Out.Linef("return %s, err", f.zero)
	f.Out.EndBlock()
}

func (r *Resolver) runtime(f *Frame) {
	f.use(RuntimeImport, "jsonconv")
}

// readValue emits code assigning the value at the reader's current token to
// dst. Primitives are read inline; anything else is delegated to the
// nested type's parse routine, which is generated on demand. where labels
// ParseErrors raised by the emitted code.
func (r *Resolver) readValue(f *Frame, t ir.TypeDescriptor, dst, where string, inline bool) {
	if p, ok := t.(*ir.PrimitiveDescriptor); ok {
		r.readPrimitive(f, p, dst, where)
		return
	}

	r.GenerateIfAbsent(t)

	out := f.Out
	out.BeginBlock("if r.Kind() != jsonconv.KindNull")
	out.Linef("x, err := %s(r)", r.parseFunc(t))
	r.returnOnErr(f)
	if inline {
		out.Linef("%s = *x", dst)
	} else {
		out.Linef("%s = x", dst)
	}
	out.EndBlock()
}

// accessor returns the reader call for a primitive and the Go type it yields.
func accessor(p *ir.PrimitiveDescriptor) (call, native string) {
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		return "r.Bool()", "bool"
	case ir.PrimitiveInt:
		return fmt.Sprintf("r.Int(%d)", p.BitSize), "int64"
	case ir.PrimitiveUint:
		return fmt.Sprintf("r.Uint(%d)", p.BitSize), "uint64"
	case ir.PrimitiveFloat:
		bits := p.BitSize
		if bits != 32 {
			bits = 64
		}
		return fmt.Sprintf("r.Float(%d)", bits), "float64"
	case ir.PrimitiveBytes:
		return "r.Base64()", "[]byte"
	case ir.PrimitiveTime:
		return "r.Time()", "time.Time"
	case ir.PrimitiveDuration:
		return "r.Duration()", "time.Duration"
	default:
		return "r.String()", "string"
	}
}

// convert wraps expr, of Go type native, in a conversion to p's Go type
// when the two differ.
func (r *Resolver) convert(f *Frame, p *ir.PrimitiveDescriptor, expr, native string) string {
	if !p.Named.IsZero() {
		return r.qualify(f, p.Named) + "(" + expr + ")"
	}
	if target := p.BuiltinName(); target != native {
		return r.builtinExpr(f, p) + "(" + expr + ")"
	}
	return expr
}

func (r *Resolver) readPrimitive(f *Frame, p *ir.PrimitiveDescriptor, dst, where string) {
	out := f.Out
	if p.PrimitiveKind == ir.PrimitiveChar {
		out.WriteLine("s, err := r.String()")
		r.returnOnErr(f)
		out.BeginBlock(`if s == ""`)
		out.Linef("return %s, jsonconv.NewParseError(jsonconv.CodeInvalidCharacter, %q, r.Kind())", f.zero, where)
		out.EndBlock()
		f.use("unicode/utf8", "utf8")
		out.WriteLine("c, _ := utf8.DecodeRuneInString(s)")
		out.Linef("%s = %s", dst, r.convert(f, p, "c", "rune"))
		return
	}
	call, native := accessor(p)
	out.Linef("x, err := %s", call)
	r.returnOnErr(f)
	out.Linef("%s = %s", dst, r.convert(f, p, "x", native))
}

// writeValue emits code serializing src. Primitives use the matching
// writer call; anything else is delegated to the nested type's serialize
// routine.
func (r *Resolver) writeValue(f *Frame, t ir.TypeDescriptor, src string, inline bool) {
	out := f.Out
	p, ok := t.(*ir.PrimitiveDescriptor)
	if !ok {
		r.GenerateIfAbsent(t)
		switch {
		case !inline:
			out.Linef("%s(w, %s)", r.writeFunc(t), src)
		case strings.HasSuffix(src, ")"):
			// Method results are not addressable.
			out.BeginBlock("")
			out.Linef("x := %s", src)
			out.Linef("%s(w, &x)", r.writeFunc(t))
			out.EndBlock()
		default:
			out.Linef("%s(w, &%s)", r.writeFunc(t), src)
		}
		return
	}

	named := !p.Named.IsZero()
	builtin := p.BuiltinName()
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		out.Linef("w.Bool(%s)", castIf(named, "bool", src))
	case ir.PrimitiveInt:
		out.Linef("w.Int(%s)", castIf(named || builtin != "int64", "int64", src))
	case ir.PrimitiveUint:
		out.Linef("w.Uint(%s)", castIf(named || builtin != "uint64", "uint64", src))
	case ir.PrimitiveFloat:
		bits := 64
		if p.BitSize == 32 {
			bits = 32
		}
		out.Linef("w.Float(%s, %d)", castIf(named || builtin != "float64", "float64", src), bits)
	case ir.PrimitiveString:
		out.Linef("w.String(%s)", castIf(named, "string", src))
	case ir.PrimitiveChar:
		if named {
			src = "rune(" + src + ")"
		}
		out.Linef("w.String(string(%s))", src)
	case ir.PrimitiveBytes:
		out.Linef("w.Base64(%s)", castIf(named, "[]byte", src))
	case ir.PrimitiveTime:
		if named {
			src = r.builtinExpr(f, p) + "(" + src + ")"
		}
		out.Linef("w.Time(%s)", src)
	case ir.PrimitiveDuration:
		if named {
			src = r.builtinExpr(f, p) + "(" + src + ")"
		}
		out.Linef("w.Duration(%s)", src)
	}
}

func castIf(cond bool, typ, expr string) string {
	if !cond {
		return expr
	}
	return typ + "(" + expr + ")"
}
