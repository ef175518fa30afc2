package golang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/broady/jsonconv/jsonconvgen/emit"
	"github.com/broady/jsonconv/jsonconvgen/ir"
)

// Resolver generates routines for a type graph. Each type is dispatched at
// most once: it is marked before its strategy runs, so strategies can
// request nested types, including ones that refer back to a type still
// being generated.
//
// A Resolver holds the state of one run and is not safe for concurrent use.
type Resolver struct {
	cfg    GeneratorConfig
	logger *slog.Logger

	dispatched map[ir.TypeID]bool
	frames     []*Frame
	artifacts  map[ir.TypeID]*Artifact
	warnings   []ir.Warning
	err        error

	aliases map[string]string // import path -> local name
	taken   map[string]bool   // local names in use

	names   map[ir.TypeID]string
	named   map[string]bool
	keyVars map[string]bool
}

// reserved imports have fixed local names.
var reserved = map[string]string{
	RuntimeImport:  "jsonconv",
	"bytes":        "bytes",
	"unicode/utf8": "utf8",
	"maps":         "maps",
	"slices":       "slices",
	"time":         "time",
}

// NewResolver creates a resolver. The config must name the output package.
func NewResolver(cfg GeneratorConfig) (*Resolver, error) {
	if strings.TrimSpace(cfg.Package) == "" {
		return nil, ErrNoPackage
	}
	r := &Resolver{
		cfg:        cfg.withDefaults(),
		logger:     slog.Default(),
		dispatched: make(map[ir.TypeID]bool),
		artifacts:  make(map[ir.TypeID]*Artifact),
		aliases:    make(map[string]string),
		taken:      make(map[string]bool),
		names:      make(map[ir.TypeID]string),
		named:      make(map[string]bool),
		keyVars:    make(map[string]bool),
	}
	for path, local := range reserved {
		r.aliases[path] = local
		r.taken[local] = true
	}
	return r, nil
}

// WithLogger sets the logger for dispatch and warning messages.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// GenerateIfAbsent generates routines for t unless t was already
// dispatched. Primitives are handled inline by referencing code and are
// ignored here.
func (r *Resolver) GenerateIfAbsent(t ir.TypeDescriptor) {
	if t == nil {
		return
	}
	strategy := Classify(t)
	if strategy == StrategyInline {
		return
	}
	id := t.ID()
	if r.dispatched[id] {
		return
	}
	r.dispatched[id] = true

	f := r.push(t)
	attrs := []any{
		slog.String("type", string(id)),
		slog.String("strategy", strategy.String()),
		slog.Int("depth", len(r.frames)),
	}
	if src := t.Src(); !src.IsZero() {
		attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", src.File, src.Line)))
	}
	r.logger.Debug("dispatch", attrs...)

	switch strategy {
	case StrategyObject:
		r.emitObject(f, t.(*ir.ObjectDescriptor))
	case StrategyArray:
		r.emitArray(f, t.(*ir.ArrayDescriptor))
	case StrategyList:
		r.emitList(f, t.(*ir.ListDescriptor))
	case StrategyMap:
		r.emitMap(f, t.(*ir.MapDescriptor))
	default:
		r.emitUnsupported(f)
	}

	r.pop(strategy == StrategyUnsupported)
}

func (r *Resolver) push(t ir.TypeDescriptor) *Frame {
	f := &Frame{
		Type:    t,
		Out:     emit.New(r.cfg.Indent),
		name:    r.name(t),
		imports: make(map[string]string),
		keys:    make(map[string]string),
		zero:    "nil",
	}
	r.frames = append(r.frames, f)
	return f
}

// pop removes the innermost frame and commits its text as an artifact.
func (r *Resolver) pop(unsupported bool) {
	f := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]

	code, err := f.Out.Finish()
	if err == nil {
		err = emit.CheckBalance(code)
	}
	if err != nil {
		r.fail(fmt.Errorf("generating %s: %w", f.Type.ID(), err))
	}
	r.artifacts[f.Type.ID()] = &Artifact{
		Type:        f.Type,
		Name:        f.name,
		Code:        code,
		Imports:     f.imports,
		Unsupported: unsupported,
	}
}

func (r *Resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Resolver) emitUnsupported(f *Frame) {
	msg := fmt.Sprintf("%s: unsupported shape", f.Type.ID())
	if m, ok := f.Type.(*ir.MapDescriptor); ok && m.Key != nil {
		msg = fmt.Sprintf("%s: map keys of type %s are not supported", f.Type.ID(), m.Key.ID())
	}
	r.warnings = append(r.warnings, ir.Warning{
		Code:     WarnUnsupportedShape,
		Message:  msg,
		TypeName: string(f.Type.ID()),
	})
	r.logger.Warn("unsupported shape", slog.String("type", string(f.Type.ID())))
	if r.cfg.StrictShapes {
		r.fail(fmt.Errorf("golang: %s", msg))
	}

	// Stub routines keep referencing types compiling: the value is skipped
	// on parse and written as null.
	r.runtime(f)
	out := f.Out
	typ := r.typeExpr(f, f.Type)
	out.Comment(f.name + ": " + msg + "; values are skipped when parsing and written as null.")
	out.Blockf("func %s(r jsonconv.TokenReader) (%s, error)", r.parseFunc(f.Type), typ)
	out.Linef("var v %s", typ)
	out.WriteLine("return v, r.Skip()")
	out.EndBlock()
	out.BlankLine()
	out.Blockf("func %s(w jsonconv.TokenWriter, v %s)", r.writeFunc(f.Type), typ)
	out.WriteLine("w.Null()")
	out.EndBlock()
}

// Depth returns the number of frames currently on the stack.
func (r *Resolver) Depth() int { return len(r.frames) }

// Artifacts returns the artifacts generated so far, keyed by type identity.
func (r *Resolver) Artifacts() map[ir.TypeID]*Artifact { return r.artifacts }

// Warnings returns the warnings recorded so far.
func (r *Resolver) Warnings() []ir.Warning { return r.warnings }

// Err returns the first internal error encountered, if any.
func (r *Resolver) Err() error { return r.err }

// Resolve generates artifacts for every type reachable from roots using a
// fresh resolver.
func Resolve(roots []ir.TypeDescriptor, cfg GeneratorConfig, logger *slog.Logger) (map[ir.TypeID]*Artifact, []ir.Warning, error) {
	if len(roots) == 0 {
		return nil, nil, ErrNoRoots
	}
	r, err := NewResolver(cfg)
	if err != nil {
		return nil, nil, err
	}
	r.WithLogger(logger)
	for _, root := range roots {
		if p, ok := root.(*ir.PrimitiveDescriptor); ok {
			r.warnings = append(r.warnings, ir.Warning{
				Code:     WarnPrimitiveRoot,
				Message:  "primitive root " + string(p.ID()) + " has no routines of its own",
				TypeName: string(p.ID()),
			})
			continue
		}
		r.GenerateIfAbsent(root)
	}
	if r.err != nil {
		return nil, r.warnings, r.err
	}
	return r.artifacts, r.warnings, nil
}
