package builtins

import (
	"sort"
	"strings"

	"github.com/apfeltee/ecma5go/internal/object"
)

// installArray wires the Array constructor and Array.prototype (ES5 15.4),
// exercising the length-as-element-count accessor internal/object/property.go
// special-cases for KindArray. original_source has no dedicated Array
// translation unit; method coverage follows the ES5 15.4 member list
// directly, reusing opexec.c-grounded numeric coercion (see DESIGN.md) for
// splice/sort/indexOf's index arithmetic.
func installArray(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Array", 1, func(ctx *object.Context) object.Value {
		arr := object.New(object.KindArray, ctx.Proto.Array)
		if len(ctx.Args) == 1 && ctx.Args[0].IsNumber() {
			n := int(ctx.ToInteger(ctx.Args[0]))
			arr.ResizeElement(n)
		} else {
			for i, v := range ctx.Args {
				arr.SetElement(i, v)
			}
		}
		return object.ObjectValue(object.TagObject, arr)
	})
	wireConstructor(ctx, global, "Array", ctorFn, proto)

	defineMethod(ctx, ctorFn, "isArray", 1, func(ctx *object.Context) object.Value {
		a := arg(ctx, 0)
		return object.Bool(a.IsObject() && a.Object.Kind == object.KindArray)
	})

	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(joinArray(ctx, thisObj(ctx), ","))
	})
	defineMethod(ctx, proto, "join", 1, func(ctx *object.Context) object.Value {
		sep := ","
		if len(ctx.Args) > 0 && !ctx.Args[0].IsUndefined() {
			sep = ctx.ToString(ctx.Args[0])
		}
		return object.InlineString(joinArray(ctx, thisObj(ctx), sep))
	})
	defineMethod(ctx, proto, "push", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		for _, v := range ctx.Args {
			o.SetElement(o.ElementCount, v)
		}
		return object.Int(int32(o.ElementCount))
	})
	defineMethod(ctx, proto, "pop", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		if o.ElementCount == 0 {
			return object.Undefined
		}
		v, _ := o.GetElement(o.ElementCount - 1)
		o.ResizeElement(o.ElementCount - 1)
		return v
	})
	defineMethod(ctx, proto, "shift", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		if o.ElementCount == 0 {
			return object.Undefined
		}
		first, _ := o.GetElement(0)
		for i := 1; i < o.ElementCount; i++ {
			v, _ := o.GetElement(i)
			o.SetElement(i-1, v)
		}
		o.ResizeElement(o.ElementCount - 1)
		return first
	})
	defineMethod(ctx, proto, "unshift", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		n := len(ctx.Args)
		old := o.ElementCount
		o.ResizeElement(old + n)
		for i := old - 1; i >= 0; i-- {
			v, _ := o.GetElement(i)
			o.SetElement(i+n, v)
		}
		for i, v := range ctx.Args {
			o.SetElement(i, v)
		}
		return object.Int(int32(o.ElementCount))
	})
	defineMethod(ctx, proto, "slice", 2, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		start, end := sliceRange(ctx, o.ElementCount, ctx.Args)
		out := object.New(object.KindArray, ctx.Proto.Array)
		n := 0
		for i := start; i < end; i++ {
			if v, ok := o.GetElement(i); ok {
				out.SetElement(n, v)
			}
			n++
		}
		return object.ObjectValue(object.TagObject, out)
	})
	defineMethod(ctx, proto, "splice", 2, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		count := o.ElementCount
		start := clampIndex(int(ctx.ToInteger(arg(ctx, 0))), count)
		deleteCount := count - start
		if len(ctx.Args) > 1 {
			deleteCount = int(ctx.ToInteger(ctx.Args[1]))
			if deleteCount < 0 {
				deleteCount = 0
			}
			if start+deleteCount > count {
				deleteCount = count - start
			}
		}
		removed := object.New(object.KindArray, ctx.Proto.Array)
		for i := 0; i < deleteCount; i++ {
			v, _ := o.GetElement(start + i)
			removed.SetElement(i, v)
		}
		var inserted []object.Value
		if len(ctx.Args) > 2 {
			inserted = ctx.Args[2:]
		}
		tail := make([]object.Value, 0, count-start-deleteCount)
		for i := start + deleteCount; i < count; i++ {
			v, _ := o.GetElement(i)
			tail = append(tail, v)
		}
		newLen := start + len(inserted) + len(tail)
		o.ResizeElement(newLen)
		for i, v := range inserted {
			o.SetElement(start+i, v)
		}
		for i, v := range tail {
			o.SetElement(start+len(inserted)+i, v)
		}
		return object.ObjectValue(object.TagObject, removed)
	})
	defineMethod(ctx, proto, "concat", 1, func(ctx *object.Context) object.Value {
		out := object.New(object.KindArray, ctx.Proto.Array)
		n := 0
		appendOne := func(v object.Value) {
			if v.IsObject() && v.Object.Kind == object.KindArray {
				for i := 0; i < v.Object.ElementCount; i++ {
					ev, _ := v.Object.GetElement(i)
					out.SetElement(n, ev)
					n++
				}
				return
			}
			out.SetElement(n, v)
			n++
		}
		appendOne(ctx.This)
		for _, v := range ctx.Args {
			appendOne(v)
		}
		return object.ObjectValue(object.TagObject, out)
	})
	defineMethod(ctx, proto, "reverse", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		for i, j := 0, o.ElementCount-1; i < j; i, j = i+1, j-1 {
			vi, _ := o.GetElement(i)
			vj, _ := o.GetElement(j)
			o.SetElement(i, vj)
			o.SetElement(j, vi)
		}
		return ctx.This
	})
	defineMethod(ctx, proto, "indexOf", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		target := arg(ctx, 0)
		start := 0
		if len(ctx.Args) > 1 {
			start = clampIndex(int(ctx.ToInteger(ctx.Args[1])), o.ElementCount)
		}
		for i := start; i < o.ElementCount; i++ {
			if v, ok := o.GetElement(i); ok && object.StrictEquals(v, target) {
				return object.Int(int32(i))
			}
		}
		return object.Int(-1)
	})
	defineMethod(ctx, proto, "lastIndexOf", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		target := arg(ctx, 0)
		for i := o.ElementCount - 1; i >= 0; i-- {
			if v, ok := o.GetElement(i); ok && object.StrictEquals(v, target) {
				return object.Int(int32(i))
			}
		}
		return object.Int(-1)
	})
	defineMethod(ctx, proto, "sort", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		vals := make([]object.Value, o.ElementCount)
		for i := range vals {
			vals[i], _ = o.GetElement(i)
		}
		var cmp func(a, b object.Value) bool
		if len(ctx.Args) > 0 && ctx.Args[0].Tag == object.TagFunction {
			fn := ctx.Args[0].Object
			cmp = func(a, b object.Value) bool {
				r, thrown := object.Invoke(ctx, fn, object.Undefined, []object.Value{a, b})
				if thrown != nil {
					panic(thrown)
				}
				return ctx.ToBinary(r) < 0
			}
		} else {
			cmp = func(a, b object.Value) bool { return ctx.ToString(a) < ctx.ToString(b) }
		}
		sort.SliceStable(vals, func(i, j int) bool { return cmp(vals[i], vals[j]) })
		for i, v := range vals {
			o.SetElement(i, v)
		}
		return ctx.This
	})
	defineMethod(ctx, proto, "forEach", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		for i := 0; i < o.ElementCount; i++ {
			if v, ok := o.GetElement(i); ok {
				invokeCallback(ctx, fn, ctx.This, v, i, o)
			}
		}
		return object.Undefined
	})
	defineMethod(ctx, proto, "map", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		out := object.New(object.KindArray, ctx.Proto.Array)
		for i := 0; i < o.ElementCount; i++ {
			v, _ := o.GetElement(i)
			out.SetElement(i, invokeCallback(ctx, fn, ctx.This, v, i, o))
		}
		return object.ObjectValue(object.TagObject, out)
	})
	defineMethod(ctx, proto, "filter", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		out := object.New(object.KindArray, ctx.Proto.Array)
		n := 0
		for i := 0; i < o.ElementCount; i++ {
			v, ok := o.GetElement(i)
			if !ok {
				continue
			}
			if invokeCallback(ctx, fn, ctx.This, v, i, o).IsTrue() {
				out.SetElement(n, v)
				n++
			}
		}
		return object.ObjectValue(object.TagObject, out)
	})
	defineMethod(ctx, proto, "some", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		for i := 0; i < o.ElementCount; i++ {
			if v, ok := o.GetElement(i); ok && invokeCallback(ctx, fn, ctx.This, v, i, o).IsTrue() {
				return object.True
			}
		}
		return object.False
	})
	defineMethod(ctx, proto, "every", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		for i := 0; i < o.ElementCount; i++ {
			if v, ok := o.GetElement(i); ok && !invokeCallback(ctx, fn, ctx.This, v, i, o).IsTrue() {
				return object.False
			}
		}
		return object.True
	})
	defineMethod(ctx, proto, "reduce", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		fn := callbackFn(ctx, 0)
		i := 0
		var acc object.Value
		if len(ctx.Args) > 1 {
			acc = ctx.Args[1]
		} else {
			if o.ElementCount == 0 {
				panic(ctx.NewTypeError("reduce of empty array with no initial value"))
			}
			acc, _ = o.GetElement(0)
			i = 1
		}
		for ; i < o.ElementCount; i++ {
			v, ok := o.GetElement(i)
			if !ok {
				continue
			}
			r, thrown := object.Invoke(ctx, fn, object.Undefined, []object.Value{acc, v, object.Int(int32(i)), object.ObjectValue(object.TagObject, o)})
			if thrown != nil {
				panic(thrown)
			}
			acc = r
		}
		return acc
	})
}

func joinArray(ctx *object.Context, o *object.Object, sep string) string {
	parts := make([]string, o.ElementCount)
	for i := 0; i < o.ElementCount; i++ {
		if v, ok := o.GetElement(i); ok && !v.IsUndefined() && !v.IsNull() {
			parts[i] = ctx.ToString(v)
		}
	}
	return strings.Join(parts, sep)
}

func clampIndex(i, length int) int {
	if i < 0 {
		i += length
		if i < 0 {
			i = 0
		}
	}
	if i > length {
		i = length
	}
	return i
}

func sliceRange(ctx *object.Context, length int, args []object.Value) (start, end int) {
	end = length
	if len(args) > 0 {
		start = clampIndex(int(ctx.ToInteger(args[0])), length)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		end = clampIndex(int(ctx.ToInteger(args[1])), length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func callbackFn(ctx *object.Context, i int) *object.Object {
	v := arg(ctx, i)
	if v.Tag != object.TagFunction {
		panic(ctx.NewTypeError("callback is not a function"))
	}
	return v.Object
}

func invokeCallback(ctx *object.Context, fn *object.Object, this, v object.Value, i int, arr *object.Object) object.Value {
	r, thrown := object.Invoke(ctx, fn, object.Undefined, []object.Value{v, object.Int(int32(i)), object.ObjectValue(object.TagObject, arr)})
	if thrown != nil {
		panic(thrown)
	}
	return r
}
