package golang

import (
	"go/token"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// readableName derives the deterministic artifact name of t: punctuation is
// stripped and composite shapes are spelled out, so []*Record becomes
// "ListRecord", [3]int becomes "IntArray3" and map[string]int becomes
// "MapStringInt".
func (r *Resolver) readableName(t ir.TypeDescriptor) string {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		if !d.Named.IsZero() {
			return r.identName(d.Named)
		}
		return primitiveName(d)
	case *ir.ObjectDescriptor:
		return r.identName(d.Name)
	case *ir.ArrayDescriptor:
		return r.readableName(d.Element) + "Array" + strconv.Itoa(d.Length)
	case *ir.ListDescriptor:
		return "List" + r.readableName(d.Element)
	case *ir.MapDescriptor:
		return "Map" + r.readableName(d.Key) + r.readableName(d.Value)
	default:
		return "Invalid"
	}
}

func primitiveName(d *ir.PrimitiveDescriptor) string {
	switch d.PrimitiveKind {
	case ir.PrimitiveChar:
		return "Char"
	case ir.PrimitiveBytes:
		return "Bytes"
	case ir.PrimitiveTime:
		return "Time"
	case ir.PrimitiveDuration:
		return "Duration"
	default:
		return exported(d.BuiltinName())
	}
}

// identName is the readable form of a named type. Types outside the output
// package are prefixed with their package name.
func (r *Resolver) identName(id ir.GoIdentifier) string {
	name := stripPunct(id.Name)
	if id.Package == "" || id.Package == r.cfg.PackagePath {
		return exported(name)
	}
	return exported(r.importName(id.Package)) + exported(name)
}

func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func exported(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

func unexported(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// name returns the artifact name assigned to t. Distinct shapes whose
// readable names collide, such as [][2]int and [2][]int, get a numeric
// suffix in the order they are first named.
func (r *Resolver) name(t ir.TypeDescriptor) string {
	id := t.ID()
	if n, ok := r.names[id]; ok {
		return n
	}
	base := r.readableName(t)
	n := base
	for i := 2; r.named[n]; i++ {
		n = base + strconv.Itoa(i)
	}
	r.names[id] = n
	r.named[n] = true
	return n
}

func (r *Resolver) parseFunc(t ir.TypeDescriptor) string {
	return r.cfg.ParsePrefix + r.name(t)
}

func (r *Resolver) writeFunc(t ir.TypeDescriptor) string {
	return r.cfg.WritePrefix + r.name(t)
}

// keyVarName derives the name of the package-level []byte holding a
// property's JSON name.
func keyVarName(object string, p ir.Property) string {
	return unexported(object) + "Key" + exported(p.Name)
}

// keyVar returns the key variable for p in frame f. Derived names can
// collide across objects (Foo.KeyBar and FooKey.Bar), so later ones get a
// numeric suffix.
func (r *Resolver) keyVar(f *Frame, p ir.Property) string {
	if v, ok := f.keys[p.Name]; ok {
		return v
	}
	base := keyVarName(f.name, p)
	v := base
	for i := 2; r.keyVars[v]; i++ {
		v = base + strconv.Itoa(i)
	}
	r.keyVars[v] = true
	f.keys[p.Name] = v
	return v
}

// importName returns the local name used for an import path, assigning a
// unique one on first use.
func (r *Resolver) importName(importPath string) string {
	if local, ok := r.aliases[importPath]; ok {
		return local
	}
	base := PackageName(importPath)
	local := base
	for i := 2; r.taken[local]; i++ {
		local = base + strconv.Itoa(i)
	}
	r.aliases[importPath] = local
	r.taken[local] = true
	return local
}

// PackageName guesses a package name from its import path, skipping
// major-version suffixes and dropping characters that are not valid in
// identifiers.
func PackageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	name := strings.ToLower(stripPunct(base))
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return "pkg"
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// qualify returns the Go spelling of a named type in frame f, recording
// the import it needs.
func (r *Resolver) qualify(f *Frame, id ir.GoIdentifier) string {
	if id.Package == "" || id.Package == r.cfg.PackagePath {
		return id.Name
	}
	local := r.importName(id.Package)
	f.use(id.Package, local)
	return local + "." + id.Name
}

// typeExpr returns the Go type expression for a value of t as it is held
// in fields, elements and parse results. Objects are held by pointer.
func (r *Resolver) typeExpr(f *Frame, t ir.TypeDescriptor) string {
	switch d := t.(type) {
	case *ir.PrimitiveDescriptor:
		if !d.Named.IsZero() {
			return r.qualify(f, d.Named)
		}
		return r.builtinExpr(f, d)
	case *ir.ObjectDescriptor:
		return "*" + r.qualify(f, d.Name)
	case *ir.ArrayDescriptor:
		return "[" + strconv.Itoa(d.Length) + "]" + r.typeExpr(f, d.Element)
	case *ir.ListDescriptor:
		return "[]" + r.typeExpr(f, d.Element)
	case *ir.MapDescriptor:
		return "map[" + r.typeExpr(f, d.Key) + "]" + r.typeExpr(f, d.Value)
	default:
		return "any"
	}
}

// builtinExpr is the spelling of the primitive's underlying type.
func (r *Resolver) builtinExpr(f *Frame, d *ir.PrimitiveDescriptor) string {
	switch d.PrimitiveKind {
	case ir.PrimitiveTime:
		return r.qualify(f, ir.GoIdentifier{Name: "Time", Package: "time"})
	case ir.PrimitiveDuration:
		return r.qualify(f, ir.GoIdentifier{Name: "Duration", Package: "time"})
	default:
		return d.BuiltinName()
	}
}

// fileName converts an artifact name to a snake_case file name.
func fileName(name, suffix string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, c := range runes {
		if unicode.IsUpper(c) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String() + suffix
}
