package interp

import (
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// FunctionTemplate is the compile-time description of a function body the
// parser builds once; FunctionLiteral instantiates a fresh Function object
// (and, critically, a fresh Environment whose Prototype captures the
// enclosing scope) from it every time the literal is evaluated, giving each
// closure its own lexical capture as ES5 requires.
type FunctionTemplate struct {
	Name           string
	ParameterCount int
	Body           object.OpList
	NeedArguments  bool
	NeedHeap       bool
	Strict         bool
	HoistedFuncs   []HoistedFunc // nested function declarations instantiated eagerly on entry
}

// HoistedFunc binds a function declaration's slot to its template, so
// function-entry can eagerly create and store it before the body runs (ES5
// function declarations are hoisted, unlike `var`, which only hoists the
// binding).
type HoistedFunc struct {
	Slot     int
	Template *FunctionTemplate
}

// FunctionLiteral instantiates fn (a function expression, or the shell for a
// function declaration) with the enclosing scope captured as ctx.Locals at
// evaluation time.
func FunctionLiteral(fn *FunctionTemplate) object.Op {
	return object.Op{Native: opFunctionLiteral, Meta: fn}
}

func opFunctionLiteral(ctx *object.Context, op *object.Op) object.Value {
	fn := op.Meta.(*FunctionTemplate)
	return instantiate(ctx, fn, ctx.Locals)
}

func instantiate(ctx *object.Context, fn *FunctionTemplate, parentEnv *object.Object) object.Value {
	obj := object.NewFunction(object.KindFunction, ctx.Proto.Function, parentEnv)
	fd := obj.Function
	fd.OpList = fn.Body
	fd.Name = fn.Name
	fd.ParameterCount = fn.ParameterCount
	fd.NeedArguments = fn.NeedArguments
	fd.NeedHeap = fn.NeedHeap
	fd.Strict = fn.Strict

	protoObj := object.New(object.KindPlain, ctx.Proto.Object)
	ctx.Put(protoObj, keyValueOf(ctx, "constructor"), object.Value{Tag: object.TagFunction, Object: obj, Flags: object.FlagHidden}, object.Value{Tag: object.TagObject, Object: protoObj}, false)
	thisVal := object.Value{Tag: object.TagFunction, Object: obj}
	ctx.Put(obj, keyValueOf(ctx, "prototype"), object.Value{Tag: object.TagObject, Object: protoObj, Flags: object.FlagHidden}, thisVal, false)
	ctx.Put(obj, keyValueOf(ctx, "length"), object.Value{Tag: object.TagInteger, Integer: int32(fn.ParameterCount), Flags: object.FlagHidden | object.FlagReadonly}, thisVal, false)

	for _, hf := range fn.HoistedFuncs {
		v := instantiate(ctx, hf.Template, fd.Environment)
		fd.Environment.SetElement(hf.Slot, v)
	}
	return thisVal
}

// Instantiate exposes instantiate to internal/builtins' dynamic `new
// Function(...)` constructor, which needs the same template-to-object step
// FunctionLiteral performs for a parsed function expression.
func Instantiate(ctx *object.Context, fn *FunctionTemplate, parentEnv *object.Object) object.Value {
	return instantiate(ctx, fn, parentEnv)
}

// keyValueOf is a small convenience over ctx.Keys.MakeFromString + KeyValue,
// used for the handful of well-known property names internal/interp itself
// installs (constructor/prototype/length/callee/name).
func keyValueOf(ctx *object.Context, s string) object.Value {
	return object.KeyValue(ctx.Keys.MakeFromString(s))
}

// NativeFunction wraps a Go implementation as a callable Function object,
// the native-function ABI entry point — internal/builtins is the only
// expected caller outside tests.
func NativeFunction(ctx *object.Context, name string, argc int, fn func(ctx *object.Context) object.Value) *object.Object {
	o := object.NewFunction(object.KindFunction, ctx.Proto.Function, nil)
	o.Function.Native = fn
	o.Function.Name = name
	o.Function.ParameterCount = argc
	return o
}

// CallTargetKind describes what is being invoked: a plain expression
// (function value), a method (obj.name(...) / obj[expr](...), which binds
// `this` to obj), or direct `eval`.
type CallTargetKind int

const (
	CallPlain CallTargetKind = iota
	CallMethodName
	CallMethodIndex
	CallEval
)

type callMeta struct {
	kind      CallTargetKind
	calleeKey key.Key
	construct bool
}

// Call builds a call/new expression. calleeExpr is the callee (for
// CallPlain/CallEval) or the receiver object expression (for method calls,
// where indexExpr is the computed-member expression when kind is
// CallMethodIndex). argExprs follow.
func Call(kind CallTargetKind, calleeKey key.Key, construct bool, calleeExpr object.Op, indexExpr *object.Op, argExprs []object.Op) object.Op {
	children := object.OpList{calleeExpr}
	if indexExpr != nil {
		children = append(children, *indexExpr)
	}
	children = append(children, argExprs...)
	return object.Op{
		Native:   opCall,
		Meta:     callMeta{kind, calleeKey, construct},
		Children: children,
		Depth:    len(argExprs),
	}
}

func opCall(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(callMeta)
	argStart := 1
	var callee object.Value
	var this object.Value

	switch m.kind {
	case CallPlain, CallEval:
		callee = object.Eval(ctx, &op.Children[0])
		this = object.Undefined
	case CallMethodName:
		this = object.Eval(ctx, &op.Children[0])
		callee = getProp(ctx, this, object.KeyValue(m.calleeKey))
	case CallMethodIndex:
		this = object.Eval(ctx, &op.Children[0])
		idx := object.Eval(ctx, &op.Children[1])
		callee = getProp(ctx, this, idx)
		argStart = 2
	}

	args := make([]object.Value, 0, len(op.Children)-argStart)
	for i := argStart; i < len(op.Children); i++ {
		args = append(args, object.Eval(ctx, &op.Children[i]))
	}

	if callee.Tag != object.TagFunction || callee.Object == nil {
		panic(ctx.NewTypeError(calleeName(ctx, m) + " is not a function"))
	}

	if m.kind == CallEval && callee.Object.Function != nil && callee.Object.Function.Native != nil && isEvalBuiltin(callee.Object) {
		return evalDirect(ctx, args)
	}

	if m.construct {
		return construct(ctx, callee.Object, args)
	}

	result, thrown := object.Invoke(ctx, callee.Object, this, args)
	if thrown != nil {
		panic(thrown)
	}
	return result
}

// evalMarker tags the global eval builtin's *FunctionData so a direct
// (unqualified) call site, which only has the callee Value, can recognise it
// without internal/interp needing a dedicated Context field.
var evalMarker = new(int)

func isEvalBuiltin(o *object.Object) bool {
	return o.Function != nil && o.Function.Pair == nil && o.Internal == evalMarker
}

// MarkEval tags fn as the engine's `eval` builtin; internal/builtins calls
// this once when installing the global eval function.
func MarkEval(fn *object.Object) { fn.Internal = evalMarker }

func calleeName(ctx *object.Context, m callMeta) string {
	if m.calleeKey != key.None {
		return ctx.Keys.TextOf(m.calleeKey)
	}
	return "value"
}

// construct implements the `new` operator (ES5 13.2.2): allocates a fresh
// object whose prototype is the constructor's .prototype property, invokes
// the constructor with that object as `this`, and returns the constructor's
// result if it returned an object, else the newly allocated one.
func construct(ctx *object.Context, fn *object.Object, args []object.Value) object.Value {
	if fn.Function == nil {
		panic(ctx.NewTypeError("not a constructor"))
	}
	protoVal := ctx.Get(fn, keyValueOf(ctx, "prototype"), object.Value{Tag: object.TagFunction, Object: fn})
	proto := ctx.Proto.Object
	if protoVal.IsObject() {
		proto = protoVal.Object
	}
	inst := object.New(object.KindPlain, proto)
	thisVal := object.Value{Tag: object.TagObject, Object: inst}

	savedConstruct := ctx.Construct
	ctx.Construct = true
	result, thrown := object.Invoke(ctx, fn, thisVal, args)
	ctx.Construct = savedConstruct
	if thrown != nil {
		panic(thrown)
	}
	if result.IsObject() {
		return result
	}
	return thisVal
}

func init() {
	object.ArgumentsBuilder = buildArguments
}

// buildArguments materializes the `arguments` object for a call frame. ES5
// non-strict functions alias each numbered element back to the matching
// parameter slot; here the Arguments object instead holds its own copy of
// the values, since the interpreter's Environment already aliases params via
// slot access and nothing in the hosted language can observe the difference
// short of reassigning through `arguments[i]`, which this port treats as a
// detach (documented as a deliberate simplification in DESIGN.md).
func buildArguments(ctx *object.Context, fn *object.Object, args []object.Value) *object.Object {
	a := object.New(object.KindArguments, ctx.Proto.Object)
	for i, v := range args {
		a.SetElement(i, v)
	}
	a.ResizeElement(len(args))
	this := object.Value{Tag: object.TagObject, Object: a}
	ctx.Put(a, keyValueOf(ctx, "length"), object.Value{Tag: object.TagInteger, Integer: int32(len(args))}, this, false)
	if fn.Function.Strict {
		pill := strictPoisonPill(ctx)
		ctx.DefineAccessor(a, ctx.Keys.MakeFromString("callee"), pill, pill, false)
	} else {
		ctx.Put(a, keyValueOf(ctx, "callee"), object.Value{Tag: object.TagFunction, Object: fn}, this, false)
	}
	return a
}

func strictPoisonPill(ctx *object.Context) *object.Object {
	return NativeFunction(ctx, "", 0, func(ctx *object.Context) object.Value {
		panic(ctx.NewTypeError("'callee' is restricted in strict mode"))
	})
}

// evalDirect runs a direct (unqualified) call to eval in the calling scope,
// per ES5 10.4.2 — it sees the caller's Locals/Scopes/This rather than the
// global scope a qualified call (`(0, eval)(...)`) would get. Indirect eval
// isn't special-cased here: opCall already resolved callee to the eval
// function object and would invoke its Native like any other function,
// which runs EvalHook against the global scope only when ctx.Locals is nil.
func evalDirect(ctx *object.Context, args []object.Value) object.Value {
	if len(args) == 0 || !args[0].IsString() {
		if len(args) == 0 {
			return object.Undefined
		}
		return args[0]
	}
	if ctx.EvalHook == nil {
		panic(ctx.NewEvalError("eval is not available"))
	}
	return ctx.EvalHook(ctx, args[0].StringValue())
}
