package builtins

import (
	"regexp"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
)

// installRegExp wires the RegExp constructor and RegExp.prototype (ES5
// 15.10), reusing internal/interp's literal-compilation path (CompileRegex)
// so `/x/` literals and `new RegExp("x")` share one translation from ES5
// regex syntax to Go's RE2 engine.
func installRegExp(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "RegExp", 2, func(ctx *object.Context) object.Value {
		a := arg(ctx, 0)
		if a.Tag == object.TagRegexp && len(ctx.Args) < 2 {
			return a
		}
		body := ""
		if a.Tag == object.TagRegexp {
			body, _ = sourceOf(ctx, a.Object)
		} else if !a.IsUndefined() {
			body = ctx.ToString(a)
		}
		flags := ""
		if len(ctx.Args) > 1 {
			flags = ctx.ToString(ctx.Args[1])
		}
		return interp.CompileRegex(ctx, body, flags)
	})
	wireConstructor(ctx, global, "RegExp", ctorFn, proto)

	defineMethod(ctx, proto, "test", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		re := o.Internal.(*regexp.Regexp)
		return object.Bool(re.MatchString(ctx.ToString(arg(ctx, 0))))
	})
	defineMethod(ctx, proto, "exec", 1, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		re := o.Internal.(*regexp.Regexp)
		s := ctx.ToString(arg(ctx, 0))
		start := 0
		if isGlobalRegex(ctx, o) {
			if v, ok := o.GetSlot(k(ctx, "lastIndex")); ok {
				start = int(ctx.ToInteger(v))
			}
		}
		if start < 0 || start > len(s) {
			ctx.Put(o, object.KeyValue(k(ctx, "lastIndex")), object.Int(0), ctx.This, false)
			return object.Null
		}
		m := re.FindStringSubmatchIndex(s[start:])
		if m == nil {
			if isGlobalRegex(ctx, o) {
				ctx.Put(o, object.KeyValue(k(ctx, "lastIndex")), object.Int(0), ctx.This, false)
			}
			return object.Null
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += start
			}
		}
		if isGlobalRegex(ctx, o) {
			ctx.Put(o, object.KeyValue(k(ctx, "lastIndex")), object.Int(int32(m[1])), ctx.This, false)
		}
		return matchResultArray(ctx, s, m)
	})
	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		o := thisObj(ctx)
		body, _ := sourceOf(ctx, o)
		return object.InlineString("/" + body + "/")
	})
}

func sourceOf(ctx *object.Context, o *object.Object) (string, bool) {
	v, ok := o.GetSlot(k(ctx, "source"))
	if !ok {
		return "", false
	}
	return ctx.ToString(v), true
}
