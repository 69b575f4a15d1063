package builtins

import (
	"strconv"

	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// installObject wires the Object constructor and Object.prototype (ES5
// 15.2), grounded on original_source/stdobject.c for which statics/methods
// ES5 actually specifies and funvibe-funxy's builtins*.go files for the
// file-per-concern registration shape.
func installObject(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Object", 1, func(ctx *object.Context) object.Value {
		a := arg(ctx, 0)
		if a.IsUndefined() || a.IsNull() {
			return object.Value{Tag: object.TagObject, Object: object.New(object.KindPlain, ctx.Proto.Object)}
		}
		return ctx.ToObject(a)
	})
	wireConstructor(ctx, global, "Object", ctorFn, proto)

	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		return object.InlineString("[object " + o.Kind.Name + "]")
	})
	defineMethod(ctx, proto, "toLocaleString", 0, func(ctx *object.Context) object.Value {
		m, _, ok := thisObj(ctx).Member(k(ctx, "toString"), false)
		if !ok || m.Tag != object.TagFunction {
			return object.InlineString("[object Object]")
		}
		r, thrown := object.Invoke(ctx, m.Object, ctx.This, nil)
		if thrown != nil {
			panic(thrown)
		}
		return r
	})
	defineMethod(ctx, proto, "valueOf", 0, func(ctx *object.Context) object.Value { return ctx.This })
	defineMethod(ctx, proto, "hasOwnProperty", 1, func(ctx *object.Context) object.Value {
		name := ctx.ToString(arg(ctx, 0))
		o := thisObj(ctx)
		if idx, isIdx := object.ElementIndexFromString(name); isIdx {
			_, ok := o.GetElement(idx)
			return object.Bool(ok)
		}
		_, ok := o.GetSlot(ctx.Keys.MakeFromString(name))
		return object.Bool(ok)
	})
	defineMethod(ctx, proto, "isPrototypeOf", 1, func(ctx *object.Context) object.Value {
		v := arg(ctx, 0)
		if !v.IsObject() {
			return object.False
		}
		self := thisObj(ctx)
		for cur := v.Object.Prototype; cur != nil; cur = cur.Prototype {
			if cur == self {
				return object.True
			}
		}
		return object.False
	})
	defineMethod(ctx, proto, "propertyIsEnumerable", 1, func(ctx *object.Context) object.Value {
		name := ctx.ToString(arg(ctx, 0))
		v, ok := thisObj(ctx).GetSlot(ctx.Keys.MakeFromString(name))
		return object.Bool(ok && v.Flags&object.FlagHidden == 0)
	})

	defineMethod(ctx, ctorFn, "keys", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		arr := object.New(object.KindArray, ctx.Proto.Array)
		n := 0
		for i := 0; i < o.ElementCount; i++ {
			if _, ok := o.GetElement(i); ok {
				arr.SetElement(n, object.InlineString(strconv.Itoa(i)))
				n++
			}
		}
		for _, key := range o.OwnKeys() {
			arr.SetElement(n, object.InlineString(ctx.Keys.TextOf(key)))
			n++
		}
		return object.ObjectValue(object.TagObject, arr)
	})
	defineMethod(ctx, ctorFn, "getOwnPropertyNames", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		arr := object.New(object.KindArray, ctx.Proto.Array)
		n := 0
		for i := 0; i < o.ElementCount; i++ {
			if _, ok := o.GetElement(i); ok {
				arr.SetElement(n, object.InlineString(strconv.Itoa(i)))
				n++
			}
		}
		for _, key := range o.OwnKeysIncludingHidden() {
			arr.SetElement(n, object.InlineString(ctx.Keys.TextOf(key)))
			n++
		}
		return object.ObjectValue(object.TagObject, arr)
	})
	defineMethod(ctx, ctorFn, "getPrototypeOf", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		if o.Prototype == nil {
			return object.Null
		}
		return object.ObjectValue(object.TagObject, o.Prototype)
	})
	defineMethod(ctx, ctorFn, "create", 2, func(ctx *object.Context) object.Value {
		protoArg := arg(ctx, 0)
		var objProto *object.Object
		if protoArg.IsObject() {
			objProto = protoArg.Object
		}
		o := object.New(object.KindPlain, objProto)
		if props := arg(ctx, 1); props.IsObject() {
			applyPropertyDescriptors(ctx, o, props.Object)
		}
		return object.ObjectValue(object.TagObject, o)
	})
	defineMethod(ctx, ctorFn, "defineProperty", 3, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		name := ctx.ToString(arg(ctx, 1))
		desc := arg(ctx, 2)
		if !desc.IsObject() {
			panic(ctx.NewTypeError("property descriptor must be an object"))
		}
		defineOneProperty(ctx, o, ctx.Keys.MakeFromString(name), desc.Object)
		return arg(ctx, 0)
	})
	defineMethod(ctx, ctorFn, "defineProperties", 2, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		if props := arg(ctx, 1); props.IsObject() {
			applyPropertyDescriptors(ctx, o, props.Object)
		}
		return arg(ctx, 0)
	})
	defineMethod(ctx, ctorFn, "seal", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		o.SetSealed(true)
		o.PreventExtensions()
		o.SealOwnProperties()
		return arg(ctx, 0)
	})
	defineMethod(ctx, ctorFn, "freeze", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		o.SetSealed(true)
		o.PreventExtensions()
		o.FreezeOwnProperties()
		return arg(ctx, 0)
	})
	defineMethod(ctx, ctorFn, "isSealed", 1, func(ctx *object.Context) object.Value {
		return object.Bool(arg(ctx, 0).Object.Sealed())
	})
	defineMethod(ctx, ctorFn, "isFrozen", 1, func(ctx *object.Context) object.Value {
		o := arg(ctx, 0).Object
		return object.Bool(o.Sealed() && !o.Extensible())
	})
	defineMethod(ctx, ctorFn, "preventExtensions", 1, func(ctx *object.Context) object.Value {
		arg(ctx, 0).Object.PreventExtensions()
		return arg(ctx, 0)
	})
	defineMethod(ctx, ctorFn, "isExtensible", 1, func(ctx *object.Context) object.Value {
		return object.Bool(arg(ctx, 0).Object.Extensible())
	})
}

// applyPropertyDescriptors implements ES5 15.2.3.7's loop over an own-
// enumerable property bag of descriptors, used by both Object.create's
// second argument and Object.defineProperties.
func applyPropertyDescriptors(ctx *object.Context, o, props *object.Object) {
	for _, propKey := range props.OwnKeys() {
		v, _ := props.GetSlot(propKey)
		if !v.IsObject() {
			continue
		}
		defineOneProperty(ctx, o, propKey, v.Object)
	}
}

// defineOneProperty implements the data/accessor split of ES5 8.10.5's
// property-descriptor-to-property conversion.
func defineOneProperty(ctx *object.Context, o *object.Object, propKey key.Key, desc *object.Object) {
	getV, hasGet := desc.GetSlot(k(ctx, "get"))
	setV, hasSet := desc.GetSlot(k(ctx, "set"))
	if hasGet || hasSet {
		var getter, setter *object.Object
		if hasGet && getV.Tag == object.TagFunction {
			getter = getV.Object
		}
		if hasSet && setV.Tag == object.TagFunction {
			setter = setV.Object
		}
		ctx.DefineAccessor(o, propKey, getter, setter, descFlag(ctx, desc, "enumerable"))
		return
	}
	val, _ := desc.GetSlot(k(ctx, "value"))
	this := object.Value{Tag: object.TagObject, Object: o}
	ctx.Put(o, object.KeyValue(propKey), val, this, false)
	var flags object.Flag
	if !descFlag(ctx, desc, "writable") {
		flags |= object.FlagReadonly
	}
	if !descFlag(ctx, desc, "enumerable") {
		flags |= object.FlagHidden
	}
	if !descFlag(ctx, desc, "configurable") {
		flags |= object.FlagSealed
	}
	o.SetSlotFlags(propKey, flags)
}

func descFlag(ctx *object.Context, desc *object.Object, name string) bool {
	v, ok := desc.GetSlot(k(ctx, name))
	return ok && v.IsTrue()
}
