// Package builtins installs the constructor/prototype surfaces the core
// interpreter needs to be runnable but which sit outside its hardest
// engineering: Object, Array, Function, String, Number, Boolean, the Error
// family, Math, JSON, Date and RegExp. Method bodies beyond registration
// are deliberately minimal — just enough to run a real scripting host's
// end-to-end scenarios, not a conformance-complete standard library.
//
// Grounded on funvibe-funxy/internal/evaluator/builtins*.go (native-table
// registration style, one file per builtin surface) and
// funvibe-funxy/internal/modules/virtual_packages_*.go; original_source/
// stdglobal.c, stdstring.c, stdmath.c, stdobject.c, stderror.c resolve which
// members ES5 actually specifies where this package's own scope leaves room
// for doubt.
package builtins

import (
	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// NativeFunctionAt is interp.NativeFunction re-exported at package scope
// since internal/script (which must stay free of an internal/interp
// dependency — only internal/builtins and internal/parser need it) installs
// host-provided native functions through this package instead.
func NativeFunctionAt(ctx *object.Context, name string, argc int, fn func(ctx *object.Context) object.Value) *object.Object {
	return interp.NativeFunction(ctx, name, argc, fn)
}

func k(ctx *object.Context, s string) key.Key { return ctx.Keys.MakeFromString(s) }

// defineMethod installs a hidden (non-enumerable), writable native method
// named name on owner.
func defineMethod(ctx *object.Context, owner *object.Object, name string, argc int, fn func(ctx *object.Context) object.Value) *object.Object {
	f := interp.NativeFunction(ctx, name, argc, fn)
	this := object.Value{Tag: object.TagObject, Object: owner}
	ctx.Put(owner, object.KeyValue(k(ctx, name)), object.Value{Tag: object.TagFunction, Object: f, Flags: object.FlagHidden}, this, false)
	return f
}

// defineValue installs v under name on owner with the given extra flags
// (FlagHidden/FlagReadonly/FlagSealed), always hidden from for-in unless the
// caller explicitly omits FlagHidden.
func defineValue(ctx *object.Context, owner *object.Object, name string, v object.Value, flags object.Flag) {
	v.Flags |= flags
	this := object.Value{Tag: object.TagObject, Object: owner}
	ctx.Put(owner, object.KeyValue(k(ctx, name)), v, this, false)
}

// wireConstructor cross-links ctor.prototype = proto and proto.constructor =
// ctor the way ES5 15's built-in constructor descriptions require, and
// installs ctor as a global (hidden, writable) binding.
func wireConstructor(ctx *object.Context, global *object.Object, name string, ctorFn *object.Object, proto *object.Object) {
	defineValue(ctx, ctorFn, "prototype", object.ObjectValue(object.TagObject, proto), object.FlagHidden|object.FlagSealed)
	defineValue(ctx, proto, "constructor", object.Value{Tag: object.TagFunction, Object: ctorFn}, object.FlagHidden)
	defineValue(ctx, global, name, object.Value{Tag: object.TagFunction, Object: ctorFn}, object.FlagHidden)
}

// arg returns args[i] or Undefined if the call was short on arguments —
// ES5's universal "missing arguments coerce to undefined" contract.
func arg(ctx *object.Context, i int) object.Value {
	if i < len(ctx.Args) {
		return ctx.Args[i]
	}
	return object.Undefined
}

func thisObj(ctx *object.Context) *object.Object {
	if !ctx.This.IsObject() {
		panic(ctx.NewTypeError("this is not an object"))
	}
	return ctx.This.Object
}
