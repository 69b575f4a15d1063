package builtins

import "github.com/apfeltee/ecma5go/internal/object"

// installErrors wires Error and its six ES5 15.11.6 subtypes
// (TypeError/RangeError/SyntaxError/ReferenceError/URIError/EvalError),
// grounded on original_source/stderror.c. Each subtype is a genuine
// constructor (not just a prototype-swap on Error) so `instanceof` and
// `.constructor` each resolve to the matching subtype.
func installErrors(ctx *object.Context, global, errorProto *object.Object, subProtos map[string]*object.Object) {
	errorCtor := NativeFunctionAt(ctx, "Error", 1, func(ctx *object.Context) object.Value {
		return newErrorInstance(ctx, ctx.Proto.Error, arg(ctx, 0))
	})
	wireConstructor(ctx, global, "Error", errorCtor, errorProto)
	defineValue(ctx, errorProto, "name", object.InlineString("Error"), object.FlagHidden)
	defineValue(ctx, errorProto, "message", object.InlineString(""), object.FlagHidden)
	defineMethod(ctx, errorProto, "toString", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		name := "Error"
		if v, ok := o.GetSlot(k(ctx, "name")); ok {
			name = ctx.ToString(v)
		}
		msg := ""
		if v, ok := o.GetSlot(k(ctx, "message")); ok {
			msg = ctx.ToString(v)
		}
		if msg == "" {
			return object.InlineString(name)
		}
		return object.InlineString(name + ": " + msg)
	})

	for _, name := range []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "URIError", "EvalError"} {
		proto := subProtos[name]
		nm := name
		proto.Prototype = errorProto
		ctorFn := NativeFunctionAt(ctx, nm, 1, func(ctx *object.Context) object.Value {
			return newErrorInstance(ctx, proto, arg(ctx, 0))
		})
		wireConstructor(ctx, global, nm, ctorFn, proto)
		defineValue(ctx, proto, "name", object.InlineString(nm), object.FlagHidden)
	}
}

func newErrorInstance(ctx *object.Context, proto *object.Object, message object.Value) object.Value {
	o := object.New(object.KindError, proto)
	this := object.Value{Tag: object.TagError, Object: o}
	if !message.IsUndefined() {
		ctx.Put(o, object.KeyValue(k(ctx, "message")), object.InlineString(ctx.ToString(message)), this, false)
	}
	return this
}
