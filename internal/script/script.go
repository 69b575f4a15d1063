// Package script implements the Script Context engine: the
// environment-stack/throw-boundary wrapper around one execution of the
// core, plus the per-context setup/teardown for the key table, well-known
// prototypes, and the garbage-collector pool — scoped per context (rather
// than truly process-global, as the original C engine has them) so that
// multiple contexts coexist safely.
//
// Grounded on funvibe-funxy/pkg/embed/vm.go's New()/Close() construction
// pattern and funvibe-funxy/internal/vm/vm.go's globals-as-map wiring,
// generalized to an EvalInput/Input-registry/GarbageCollect contract (see
// DESIGN.md).
package script

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/google/uuid"

	"github.com/apfeltee/ecma5go/internal/builtins"
	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/parser"
	"github.com/apfeltee/ecma5go/internal/pool"
)

// Input is the original source plus the line-offset table the lexer's line
// tracking lets us reconstruct after the fact, and the list of values whose
// lifetime is pinned to this input — interned keys and source-span
// TextStrings created while compiling it.
type Input struct {
	Name           string
	Bytes          []byte
	Lines          []int // byte offset of the start of each line
	AttachedValues []object.Value
}

// lineOffsets computes the start-of-line byte offsets for src, recognising
// CR, LF, CRLF, U+2028 and U+2029 as line terminators.
func lineOffsets(src []byte) []int {
	offsets := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			offsets = append(offsets, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			offsets = append(offsets, i+1)
		case 0xE2: // U+2028 and U+2029 encode as E2 80 A8 and E2 80 A9
			if i+2 < len(src) && src[i+1] == 0x80 && (src[i+2] == 0xA8 || src[i+2] == 0xA9) {
				i += 2
				offsets = append(offsets, i+1)
			}
		}
	}
	return offsets
}

func newInput(name string, src []byte) *Input {
	return &Input{Name: name, Bytes: src, Lines: lineOffsets(src)}
}

// lineCol converts a byte offset within in into a 1-based (line, column).
func (in *Input) lineCol(offset int) (line, col int) {
	line = 1
	for i, start := range in.Lines {
		if start > offset {
			break
		}
		line = i + 1
	}
	col = offset - in.Lines[line-1] + 1
	return
}

// ExitCode is the outcome of an EvalInput call.
type ExitCode int

const (
	ExitSuccess ExitCode = 0
	ExitThrew   ExitCode = 1
)

// Context is one embeddable engine instance: an object.Context (the
// interpreter's activation record, doubling as engine state per
// DESIGN.md's note on internal/object) plus the input registry, pool, and
// id this package owns.
type Context struct {
	ID     string
	Config engineconfig.Config

	Keys *key.Table
	Pool *pool.Pool
	ctx  *object.Context

	Inputs []*Input
}

// Create builds a fresh, independent engine instance: its own key table,
// pool, and global object, so that (unlike the original C engine's
// process-global prototypes) multiple Contexts can coexist in the same
// process without sharing mutable state.
func Create(cfg engineconfig.Config) *Context {
	keys := key.NewTable()
	keys.SetWarnHook(cfg.WarnHook)

	p := pool.New()
	pool.SetGlobal(p)

	oc := &object.Context{Keys: keys, MaxCallDepth: cfg.MaxCallDepth, Strict: false}
	global := builtins.Install(oc, keys)
	oc.Global = global

	oc.EvalHook = func(ctx *object.Context, source string) object.Value {
		return evalSource(sc(ctx), ctx, source)
	}

	c := &Context{ID: uuid.NewString(), Config: cfg, Keys: keys, Pool: p, ctx: oc}
	ctxRegistry[oc] = c
	return c
}

// ctxRegistry lets EvalHook (which only has an *object.Context) recover the
// owning *script.Context to reach its Inputs registry; populated by Create,
// cleared by Destroy. Keyed by pointer identity, one entry per live engine.
var ctxRegistry = map[*object.Context]*Context{}

func sc(oc *object.Context) *Context { return ctxRegistry[oc] }

// Destroy forgets cs's registry entry, drops its global object and sweeps
// its pool.
// Since each Context here already owns independent state (see Create),
// this only needs to drop cs's own references rather than coordinate with
// any sibling context.
func (cs *Context) Destroy() {
	delete(ctxRegistry, cs.ctx)
	cs.ctx.Global = nil
	cs.Pool.CollectUnmarked()
}

// AddValue installs name on the global object.
func (cs *Context) AddValue(name string, v object.Value, flags object.Flag) {
	k := cs.Keys.MakeFromString(name)
	this := object.Value{Tag: object.TagObject, Object: cs.ctx.Global}
	v.Flags |= flags
	cs.ctx.Put(cs.ctx.Global, object.KeyValue(k), v, this, false)
}

// AddFunction installs a native function under name on the global object.
// argc < 0 declares a variadic function; argc is stored as the function's
// ParameterCount as given, and no own .length property is installed.
func (cs *Context) AddFunction(name string, argc int, native func(ctx *object.Context) object.Value, flags object.Flag) {
	fn := builtins.NativeFunctionAt(cs.ctx, name, argc, native)
	cs.AddValue(name, object.Value{Tag: object.TagFunction, Object: fn}, flags)
}

// EvalInput parses and runs src under name, returning the exit code. When
// cfg.StringResult requests it, the completion value
// is coerced to a string first; cfg.PrimitiveResult instead coerces only to
// a primitive.
func (cs *Context) EvalInput(name, src string) (result object.Value, code ExitCode) {
	in := newInput(name, []byte(src))
	cs.Inputs = append(cs.Inputs, in)

	defer func() {
		if r := recover(); r != nil {
			tv, ok := r.(*object.ThrownValue)
			if !ok {
				panic(r)
			}
			result = tv.Value
			code = ExitThrew
			if cs.Config.PrintLastThrow {
				cs.printThrow(in, tv.Value)
			}
		}
	}()

	body, err := parser.Parse(src, cs.Keys)
	if err != nil {
		se := err.(*parser.SyntaxError)
		thrown := cs.ctx.NewSyntaxError(se.Message)
		result = thrown.Value
		code = ExitThrew
		if cs.Config.PrintLastThrow {
			cs.printThrow(in, thrown.Value)
		}
		return result, code
	}

	cs.ctx.Locals = nil
	cs.ctx.Scopes = nil
	cs.ctx.Strict = cs.ctx.Strict || cs.Config.SloppyMode == false
	object.EvalList(cs.ctx, body)
	result = cs.ctx.LastValue

	if cs.Config.StringResult {
		result = object.InlineString(cs.ctx.ToString(result))
	} else if cs.Config.PrimitiveResult {
		result = cs.ctx.ToPrimitive(result, "auto")
	}
	return result, ExitSuccess
}

// evalSource backs object.Context.EvalHook: parses source fresh (always at
// global scope, per parser.newGlobalScope — see DESIGN.md) and runs it
// against the *same* ctx the caller is already executing in, so names
// resolve through the caller's with/catch Scopes and then the global
// object. The caller's parameters and `var` locals live in numbered
// Environment slots, not named members, so eval'd code does not see them.
func evalSource(cs *Context, ctx *object.Context, source string) object.Value {
	body, err := parser.Parse(source, ctx.Keys)
	if err != nil {
		panic(ctx.NewSyntaxError(err.Error()))
	}
	if cs != nil {
		in := newInput("eval", []byte(source))
		cs.Inputs = append(cs.Inputs, in)
	}
	object.EvalList(ctx, body)
	return ctx.LastValue
}

// FindInput locates the Input whose byte slice backs text, used to recover
// (file, line, caret) diagnostics for an error value's Text span.
func (cs *Context) FindInput(b []byte) (*Input, bool) {
	if len(b) == 0 {
		return nil, false
	}
	p := uintptr(unsafe.Pointer(&b[0]))
	for _, in := range cs.Inputs {
		if len(in.Bytes) == 0 {
			continue
		}
		lo := uintptr(unsafe.Pointer(&in.Bytes[0]))
		hi := lo + uintptr(len(in.Bytes))
		if p >= lo && p < hi {
			return in, true
		}
	}
	return nil, false
}

// printThrow prints an uncaught exception to stderr as the input's name
// followed by the exception's string form; it prints no line number,
// source line or caret.
func (cs *Context) printThrow(in *Input, v object.Value) {
	msg := cs.ctx.ToString(v)
	fmt.Fprintf(os.Stderr, "%s: %s\n", in.Name, msg)
}

// GarbageCollect unmarks everything, re-marks from the global object and
// every input's attached values, then sweeps.
func (cs *Context) GarbageCollect() {
	cs.Pool.UnmarkAll()
	cs.Pool.MarkValue(object.Value{Tag: object.TagObject, Object: cs.ctx.Global})
	for _, in := range cs.Inputs {
		for _, v := range in.AttachedValues {
			cs.Pool.MarkValue(v)
		}
	}
	cs.Pool.CollectUnmarked()
}

// RawContext exposes the underlying interpreter Context for callers (e.g.
// pkg/embed) that need to drive object.Invoke directly.
func (cs *Context) RawContext() *object.Context { return cs.ctx }
