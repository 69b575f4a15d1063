package object

import "github.com/apfeltee/ecma5go/internal/key"

// Op is one node of the compiled operation tree: a native Go function plus
// whatever inline payload that particular op kind needs (a literal Value, a
// property Key, a small integer operand, a label, or child sub-trees).
// internal/parser builds the tree; internal/interp supplies the ~60
// concrete Native functions referenced from it. Evaluating a node is just
// calling its Native, which recurses into Children via Eval for whatever
// operands it needs — a tree-walk rather than a flat cursor, since Go gives
// us recursion for free and a flat forward-only cursor buys nothing extra
// for a from-scratch port (see DESIGN.md).
type Op struct {
	Native   func(ctx *Context, op *Op) Value
	Value    Value  // literal operand (the constant a literal op yields)
	Text     Value  // source span (TagText), used for error locations
	Depth    int    // small integer operand: slot index for LocalSlot/ParentSlot, operator kind for Binary, argument count for Call
	Key      key.Key
	Label    string // label name for Break/Continue matching and for a Labeled statement; loops and switches keep their label in Meta
	Children OpList // operand sub-trees
	Meta     interface{}
}

// OpList is a sequence of Op; a Function's compiled body is the single
// top-level block Op, so OpList in practice is almost always length 1 —
// kept as a slice (rather than a bare Op) because native functions are
// represented as a one-op list.
type OpList []Op

// Eval evaluates op within ctx. It is the single entry point every Native
// implementation uses to evaluate a child; there is no separate dispatch
// table; op.Native already names the concrete Go function to run.
func Eval(ctx *Context, op *Op) Value {
	return op.Native(ctx, op)
}

// EvalList evaluates every op in l in order, honoring Signal if a child sets
// one (return/break/continue) by stopping early. Used by OpBlock and by the
// top-level program driver.
func EvalList(ctx *Context, l OpList) Value {
	var result Value
	for i := range l {
		result = Eval(ctx, &l[i])
		if ctx.Signal != SignalNone {
			return result
		}
	}
	return result
}

// Signal values recorded on Context to implement structured non-local
// control transfer for break/continue/return, realised with a plain int
// rather than setjmp/longjmp or Go panic/recover (panic/recover is
// reserved for thrown script exceptions, see ThrownValue).
const (
	SignalNone = iota
	SignalBreak
	SignalContinue
	SignalReturn
)

// ThrownValue is the sentinel panic payload used to implement ES5's
// exception propagation on top of Go's panic/recover, mirroring the
// original's setjmp/longjmp-per-try-block model. Op implementations that
// need to throw a script-visible exception panic(&ThrownValue{...}); the
// try op's handler is the only place that recovers one.
type ThrownValue struct {
	Value Value
}

func (t *ThrownValue) Error() string { return "uncaught script exception" }

// Context is the interpreter's single mutable execution-frame record,
// threaded through every Op.Native call. Nested calls save and restore the
// frame fields around a recursive Invoke; Go's own call stack provides the
// reentrancy a virtual-machine-style frame stack would otherwise need,
// without requiring cycles back into the ops that use it.
type Context struct {
	Keys   *key.Table
	Global *Object

	// current frame
	Function *Object
	This     Value
	Args     []Value
	Locals   *Object // the running function's Environment object

	// Scopes is the dynamic scope chain beyond Locals, extended by `with`
	// and by catch clauses, pushed and popped around each; looked up
	// innermost-first before falling back to Locals' own prototype chain.
	Scopes []*Object

	// Signal/SignalLabel/ReturnValue implement break/continue/return as a
	// breaker signal threaded back up through the op tree:
	// SignalBreak/SignalContinue stop at the nearest enclosing loop/switch,
	// or, for a labelled break/continue, at the one whose label matches
	// SignalLabel; SignalReturn carries the function's result in
	// ReturnValue and unwinds all the way to Invoke. SignalDepth is saved,
	// restored and reset by Invoke and read nowhere else.
	Signal      int
	SignalDepth int
	SignalLabel string
	ReturnValue Value

	Strict    bool
	Construct bool

	// LastValue records the most recent expression-statement's value:
	// ECMAScript's completion-value contract, which EvalInput's
	// string_result/primitive_result flags read to produce a script's
	// overall result.
	LastValue Value

	CallDepth    int
	MaxCallDepth int

	// Proto holds the well-known prototypes used by coercion/error paths
	// (ObjectProto, FunctionProto, ErrorProto, ...); internal/builtins
	// populates this at engine start-up.
	Proto WellKnownProtos

	// Warn is a sink for non-fatal engine diagnostics; nil is a valid no-op
	// sink. Nothing in the engine sets or calls it: key-table warnings go
	// through the key.Table's own hook (see script.Create).
	Warn func(string)

	// EvalHook compiles and runs source as a direct `eval` call in the
	// current scope; internal/script installs it at engine start-up so that
	// internal/interp (which implements the `eval` call site) never needs to
	// import internal/parser, which itself imports internal/interp.
	EvalHook func(ctx *Context, source string) Value

	// lengthCache memoizes the interned "length" key so Array's
	// element-count accessor shim in property.go doesn't re-intern it on
	// every element access.
	lengthCache key.Key
}

// lengthKey returns (interning once) the Key for "length", used by
// property.go to special-case Array's length-as-element-count accessor:
// reading it reflects ElementCount, writing it truncates or extends
// Elements.
func (ctx *Context) lengthKey() key.Key {
	if ctx.lengthCache == key.None {
		ctx.lengthCache = ctx.Keys.MakeFromString("length")
	}
	return ctx.lengthCache
}

// WellKnownProtos collects the built-in prototypes coercion and error
// construction need to reach without importing internal/builtins (which
// itself depends on this package).
type WellKnownProtos struct {
	Object    *Object
	Function  *Object
	Array     *Object
	String    *Object
	Number    *Object
	Boolean   *Object
	Error     *Object
	TypeErr   *Object
	RangeErr  *Object
	SyntaxEr  *Object
	RefErr    *Object
	URIErr    *Object
	EvalErr   *Object
	Regexp    *Object
	Date      *Object
	Arguments *Object
}

// newError constructs an Error-tagged object of the given prototype with
// message and name properties, used by NewTypeError et al. and by Invoke.
func (ctx *Context) newError(proto *Object, name, message string) Value {
	o := New(KindError, proto)
	o.setOwnSlot(ctx.Keys.MakeFromString("message"), InlineString(message))
	o.setOwnSlot(ctx.Keys.MakeFromString("name"), InlineString(name))
	return ObjectValue(TagError, o)
}

func (ctx *Context) NewTypeError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.TypeErr, "TypeError", message)}
}

func (ctx *Context) NewRangeError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.RangeErr, "RangeError", message)}
}

func (ctx *Context) NewSyntaxError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.SyntaxEr, "SyntaxError", message)}
}

func (ctx *Context) NewReferenceError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.RefErr, "ReferenceError", message)}
}

func (ctx *Context) NewURIError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.URIErr, "URIError", message)}
}

func (ctx *Context) NewEvalError(message string) *ThrownValue {
	return &ThrownValue{Value: ctx.newError(ctx.Proto.EvalErr, "EvalError", message)}
}

// maxCallDepthDefault matches engineconfig's default; Invoke uses it only
// when ctx.MaxCallDepth is unset (zero), so tests that build a bare Context
// still get stack-overflow protection.
const maxCallDepthDefault = 512

// Invoke drives a single call to fn, dispatching to its native
// implementation (built-ins) or threading through its OpList (script
// functions). It saves and restores the caller's frame around the call so
// recursive script calls compose correctly on top of Go's own call stack.
func Invoke(ctx *Context, fn *Object, this Value, args []Value) (result Value, thrown *ThrownValue) {
	if fn == nil || fn.Function == nil {
		return Undefined, &ThrownValue{Value: ctx.newError(ctx.Proto.TypeErr, "TypeError", "value is not a function")}
	}
	limit := ctx.MaxCallDepth
	if limit == 0 {
		limit = maxCallDepthDefault
	}
	if ctx.CallDepth >= limit {
		return Undefined, ctx.NewRangeError("maximum depth exceeded")
	}

	savedFn, savedThis, savedArgs, savedLocals, savedScopes, savedSignal, savedDepth, savedLabel, savedRet, savedStrict, savedConstruct :=
		ctx.Function, ctx.This, ctx.Args, ctx.Locals, ctx.Scopes, ctx.Signal, ctx.SignalDepth, ctx.SignalLabel, ctx.ReturnValue, ctx.Strict, ctx.Construct
	ctx.CallDepth++
	defer func() {
		ctx.CallDepth--
		ctx.Function, ctx.This, ctx.Args, ctx.Locals, ctx.Scopes, ctx.Signal, ctx.SignalDepth, ctx.SignalLabel, ctx.ReturnValue, ctx.Strict, ctx.Construct =
			savedFn, savedThis, savedArgs, savedLocals, savedScopes, savedSignal, savedDepth, savedLabel, savedRet, savedStrict, savedConstruct
		if r := recover(); r != nil {
			if tv, ok := r.(*ThrownValue); ok {
				thrown = tv
				return
			}
			panic(r)
		}
	}()

	fd := fn.Function
	effectiveThis := this
	if fd.UseBoundThis && fd.HasBoundThis {
		effectiveThis = fd.BoundThis
	}

	ctx.Function = fn
	ctx.Scopes = nil
	ctx.Signal = SignalNone
	ctx.SignalDepth = 0
	ctx.SignalLabel = ""
	ctx.Strict = fd.Strict

	if fd.Native != nil {
		ctx.This, ctx.Args = effectiveThis, args
		result = fd.Native(ctx)
		return result, nil
	}

	ctx.This = effectiveThis
	ctx.Args = args
	ctx.Locals = fd.Environment
	bindArguments(fn, ctx.Locals, args)
	if fd.NeedArguments && ArgumentsBuilder != nil {
		ctx.Locals.SetElement(ArgumentsSlot, ObjectValue(TagObject, ArgumentsBuilder(ctx, fn, args)))
	}
	if len(fd.OpList) > 0 {
		EvalList(ctx, fd.OpList)
	}
	if ctx.Signal == SignalReturn {
		result = ctx.ReturnValue
	} else {
		result = Undefined
	}
	return result, nil
}

// ArgumentsSlot is the reserved Environment element index holding the
// current call's `arguments` object; declared parameters and locals start
// at slot 3, leaving 1 and 2 reserved for future use (e.g. a named
// function expression's self-reference binding).
const ArgumentsSlot = 0

// FirstParamSlot is the first Environment element index internal/parser's
// funcScope hands out to a declared parameter or local (slots 0-2 are
// reserved; see ArgumentsSlot). bindArguments must agree with funcScope's
// own numbering or a function's first parameter collides with the
// arguments object slot.
const FirstParamSlot = 3

// ArgumentsBuilder constructs the `arguments` object for a call frame that
// declared NeedArguments; internal/interp installs this at package init so
// that this package (which implements Invoke) never needs to import
// internal/interp (which implements the op tree and already imports this
// package).
var ArgumentsBuilder func(ctx *Context, fn *Object, args []Value) *Object

// bindArguments copies positional arguments into the function's environment
// slots starting at FirstParamSlot, filling missing ones with undefined.
// The `arguments` object itself is stored at ArgumentsSlot by Invoke,
// through ArgumentsBuilder.
func bindArguments(fn *Object, env *Object, args []Value) {
	if env == nil {
		return
	}
	for i := 0; i < fn.Function.ParameterCount; i++ {
		var v Value
		if i < len(args) {
			v = args[i]
		} else {
			v = Undefined
		}
		env.SetElement(FirstParamSlot+i, v)
	}
}

// LookupScope resolves name through the dynamic scope chain (with/catch
// pushes, innermost first) then the running function's Environment object
// and its own prototype chain. Returns the owning object so callers can
// write back through SetMember-style puts.
func (ctx *Context) LookupScope(k key.Key) (Value, *Object, bool) {
	for i := len(ctx.Scopes) - 1; i >= 0; i-- {
		if v, owner, ok := ctx.Scopes[i].Member(k, false); ok {
			return v, owner, ok
		}
	}
	if ctx.Locals != nil {
		if v, owner, ok := ctx.Locals.Member(k, false); ok {
			return v, owner, ok
		}
	}
	return ctx.Get(ctx.Global, KeyValue(k), ObjectValue(TagObject, ctx.Global)), ctx.Global, ctx.HasProperty(ctx.Global, KeyValue(k))
}

// PushScope extends the dynamic scope chain (with/catch), returning a
// closure that restores it — every caller must defer the restore on all
// exit paths, including during exception unwinding.
func (ctx *Context) PushScope(o *Object) func() {
	ctx.Scopes = append(ctx.Scopes, o)
	n := len(ctx.Scopes)
	return func() { ctx.Scopes = ctx.Scopes[:n-1] }
}
