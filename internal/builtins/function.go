package builtins

import (
	"strings"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/parser"
)

// installFunction wires the Function constructor and Function.prototype (ES5
// 15.3), grounded on original_source/stdfunction.c for call/apply/bind
// semantics and funvibe-funxy's evaluator call-dispatch style for how a
// native method reaches back into object.Invoke.
func installFunction(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Function", 1, func(ctx *object.Context) object.Value {
		n := len(ctx.Args)
		var params []string
		body := ""
		if n > 0 {
			body = ctx.ToString(ctx.Args[n-1])
		}
		for i := 0; i < n-1; i++ {
			for _, p := range strings.Split(ctx.ToString(ctx.Args[i]), ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}
		tmpl, err := parser.ParseFunctionBody(body, params, ctx.Keys, false)
		if err != nil {
			panic(ctx.NewSyntaxError(err.Error()))
		}
		return interp.Instantiate(ctx, tmpl, ctx.Global)
	})
	wireConstructor(ctx, global, "Function", ctorFn, proto)

	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		fn := thisObj(ctx)
		if fn.Function == nil {
			panic(ctx.NewTypeError("not a function"))
		}
		name := fn.Function.Name
		return object.InlineString("function " + name + "() { [native code] }")
	})
	defineMethod(ctx, proto, "call", 1, func(ctx *object.Context) object.Value {
		fn := thisObj(ctx)
		var this object.Value
		var args []object.Value
		if len(ctx.Args) > 0 {
			this = ctx.Args[0]
			args = ctx.Args[1:]
		}
		r, thrown := object.Invoke(ctx, fn, this, args)
		if thrown != nil {
			panic(thrown)
		}
		return r
	})
	defineMethod(ctx, proto, "apply", 2, func(ctx *object.Context) object.Value {
		fn := thisObj(ctx)
		var this object.Value
		if len(ctx.Args) > 0 {
			this = ctx.Args[0]
		}
		var args []object.Value
		if len(ctx.Args) > 1 && ctx.Args[1].IsObject() {
			arr := ctx.Args[1].Object
			for i := 0; i < arr.ElementCount; i++ {
				v, _ := arr.GetElement(i)
				args = append(args, v)
			}
		}
		r, thrown := object.Invoke(ctx, fn, this, args)
		if thrown != nil {
			panic(thrown)
		}
		return r
	})
	defineMethod(ctx, proto, "bind", 1, func(ctx *object.Context) object.Value {
		target := thisObj(ctx)
		if target.Function == nil {
			panic(ctx.NewTypeError("bind target is not callable"))
		}
		var boundThis object.Value
		var boundArgs []object.Value
		if len(ctx.Args) > 0 {
			boundThis = ctx.Args[0]
			boundArgs = append(boundArgs, ctx.Args[1:]...)
		}
		bound := object.NewFunction(object.KindFunction, ctx.Proto.Function, nil)
		bound.Function.Name = "bound " + target.Function.Name
		bound.Function.Pair = target
		bound.Function.BoundThis = boundThis
		bound.Function.HasBoundThis = true
		bound.Function.UseBoundThis = true
		bound.Function.Native = func(callCtx *object.Context) object.Value {
			args := append(append([]object.Value{}, boundArgs...), callCtx.Args...)
			r, thrown := object.Invoke(callCtx, target, boundThis, args)
			if thrown != nil {
				panic(thrown)
			}
			return r
		}
		return object.Value{Tag: object.TagFunction, Object: bound}
	})
}
