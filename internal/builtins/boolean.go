package builtins

import "github.com/apfeltee/ecma5go/internal/object"

// installBoolean wires the Boolean constructor and Boolean.prototype (ES5
// 15.6), grounded on original_source/stdbool.c for the box/unbox/toString
// shape most boxed-primitive constructors here share.
func installBoolean(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Boolean", 1, func(ctx *object.Context) object.Value {
		b := arg(ctx, 0).IsTrue()
		if !ctx.Construct {
			return object.Bool(b)
		}
		o := object.New(object.KindBoolean, ctx.Proto.Boolean)
		o.Internal = b
		return object.ObjectValue(object.TagBoolean, o)
	})
	wireConstructor(ctx, global, "Boolean", ctorFn, proto)

	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		if selfBool(ctx) {
			return object.InlineString("true")
		}
		return object.InlineString("false")
	})
	defineMethod(ctx, proto, "valueOf", 0, func(ctx *object.Context) object.Value {
		return object.Bool(selfBool(ctx))
	})
}

func selfBool(ctx *object.Context) bool {
	if ctx.This.IsBoolean() {
		return ctx.This.IsTrue()
	}
	if ctx.This.Tag == object.TagBoolean {
		if b, ok := ctx.This.Object.Internal.(bool); ok {
			return b
		}
	}
	return ctx.This.IsTrue()
}
