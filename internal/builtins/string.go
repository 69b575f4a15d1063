package builtins

import (
	"regexp"
	"strings"

	"github.com/apfeltee/ecma5go/internal/chars"
	"github.com/apfeltee/ecma5go/internal/object"
)

// installString wires the String constructor and String.prototype (ES5
// 15.5), grounded on original_source/stdstring.c for method coverage and
// internal/interp/regex.go for the RegExp interop split/match/replace need.
func installString(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "String", 1, func(ctx *object.Context) object.Value {
		s := ""
		if len(ctx.Args) > 0 {
			s = ctx.ToString(ctx.Args[0])
		}
		if !ctx.Construct {
			return object.InlineString(s)
		}
		o := object.New(object.KindString, ctx.Proto.String)
		o.Internal = s
		return object.ObjectValue(object.TagString, o)
	})
	wireConstructor(ctx, global, "String", ctorFn, proto)

	defineMethod(ctx, ctorFn, "fromCharCode", 1, func(ctx *object.Context) object.Value {
		var sb strings.Builder
		for _, a := range ctx.Args {
			sb.WriteRune(rune(int32(ctx.ToInteger(a))))
		}
		return object.InlineString(sb.String())
	})

	defineMethod(ctx, proto, "toString", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(selfString(ctx))
	})
	defineMethod(ctx, proto, "valueOf", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(selfString(ctx))
	})
	defineMethod(ctx, proto, "charAt", 1, func(ctx *object.Context) object.Value {
		s := []rune(selfString(ctx))
		i := int(ctx.ToInteger(arg(ctx, 0)))
		if i < 0 || i >= len(s) {
			return object.InlineString("")
		}
		return object.InlineString(string(s[i]))
	})
	defineMethod(ctx, proto, "charCodeAt", 1, func(ctx *object.Context) object.Value {
		s := []rune(selfString(ctx))
		i := int(ctx.ToInteger(arg(ctx, 0)))
		if i < 0 || i >= len(s) {
			return object.Bin(nan())
		}
		return object.Int(int32(s[i]))
	})
	defineMethod(ctx, proto, "indexOf", 1, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		sub := ctx.ToString(arg(ctx, 0))
		start := 0
		if len(ctx.Args) > 1 {
			start = clampIndex(int(ctx.ToInteger(ctx.Args[1])), len(s))
		}
		if start > len(s) {
			return object.Int(-1)
		}
		idx := strings.Index(s[start:], sub)
		if idx < 0 {
			return object.Int(-1)
		}
		return object.Int(int32(idx + start))
	})
	defineMethod(ctx, proto, "lastIndexOf", 1, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		sub := ctx.ToString(arg(ctx, 0))
		return object.Int(int32(strings.LastIndex(s, sub)))
	})
	defineMethod(ctx, proto, "slice", 2, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		start, end := sliceRange(ctx, len(s), ctx.Args)
		return object.InlineString(s[start:end])
	})
	defineMethod(ctx, proto, "substring", 2, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		n := len(s)
		start := clampIndex(nonNegInt(ctx, arg(ctx, 0)), n)
		end := n
		if len(ctx.Args) > 1 && !ctx.Args[1].IsUndefined() {
			end = clampIndex(nonNegInt(ctx, ctx.Args[1]), n)
		}
		if start > end {
			start, end = end, start
		}
		return object.InlineString(s[start:end])
	})
	defineMethod(ctx, proto, "substr", 2, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		n := len(s)
		start := clampIndex(int(ctx.ToInteger(arg(ctx, 0))), n)
		length := n - start
		if len(ctx.Args) > 1 {
			length = int(ctx.ToInteger(ctx.Args[1]))
		}
		if length < 0 {
			length = 0
		}
		if start+length > n {
			length = n - start
		}
		return object.InlineString(s[start : start+length])
	})
	defineMethod(ctx, proto, "toUpperCase", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(chars.ToUpper(selfString(ctx)))
	})
	defineMethod(ctx, proto, "toLowerCase", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(chars.ToLower(selfString(ctx)))
	})
	defineMethod(ctx, proto, "toLocaleUpperCase", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(strings.ToUpper(selfString(ctx)))
	})
	defineMethod(ctx, proto, "toLocaleLowerCase", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(strings.ToLower(selfString(ctx)))
	})
	defineMethod(ctx, proto, "trim", 0, func(ctx *object.Context) object.Value {
		return object.InlineString(strings.TrimSpace(selfString(ctx)))
	})
	defineMethod(ctx, proto, "concat", 1, func(ctx *object.Context) object.Value {
		var sb strings.Builder
		sb.WriteString(selfString(ctx))
		for _, a := range ctx.Args {
			sb.WriteString(ctx.ToString(a))
		}
		return object.InlineString(sb.String())
	})
	defineMethod(ctx, proto, "split", 2, func(ctx *object.Context) object.Value {
		return stringSplit(ctx)
	})
	defineMethod(ctx, proto, "match", 1, func(ctx *object.Context) object.Value {
		return stringMatch(ctx)
	})
	defineMethod(ctx, proto, "search", 1, func(ctx *object.Context) object.Value {
		s := selfString(ctx)
		re := toRegex(ctx, arg(ctx, 0))
		loc := re.FindStringIndex(s)
		if loc == nil {
			return object.Int(-1)
		}
		return object.Int(int32(loc[0]))
	})
	defineMethod(ctx, proto, "replace", 2, func(ctx *object.Context) object.Value {
		return stringReplace(ctx)
	})
	defineMethod(ctx, proto, "localeCompare", 1, func(ctx *object.Context) object.Value {
		return object.Int(int32(strings.Compare(selfString(ctx), ctx.ToString(arg(ctx, 0)))))
	})
}

func selfString(ctx *object.Context) string {
	if ctx.This.IsString() {
		return ctx.This.StringValue()
	}
	if ctx.This.Tag == object.TagString {
		if s, ok := ctx.This.Object.Internal.(string); ok {
			return s
		}
	}
	return ctx.ToString(ctx.This)
}

func nonNegInt(ctx *object.Context, v object.Value) int {
	n := int(ctx.ToInteger(v))
	if n < 0 {
		n = 0
	}
	return n
}

func nan() float64 { var z float64; return z / z }

func toRegex(ctx *object.Context, v object.Value) *regexp.Regexp {
	if v.Tag == object.TagRegexp {
		if re, ok := v.Object.Internal.(*regexp.Regexp); ok {
			return re
		}
	}
	re, err := regexp.Compile(regexp.QuoteMeta(ctx.ToString(v)))
	if err != nil {
		panic(ctx.NewSyntaxError(err.Error()))
	}
	return re
}

// stringSplit implements ES5 15.5.4.14, including the "capturing groups are
// spliced into the result" behaviour for a RegExp separator.
func stringSplit(ctx *object.Context) object.Value {
	s := selfString(ctx)
	arr := object.New(object.KindArray, ctx.Proto.Array)
	sepArg := arg(ctx, 0)
	if sepArg.IsUndefined() {
		arr.SetElement(0, object.InlineString(s))
		return object.ObjectValue(object.TagObject, arr)
	}
	limit := -1
	if len(ctx.Args) > 1 && !ctx.Args[1].IsUndefined() {
		limit = int(ctx.ToInteger(ctx.Args[1]))
	}
	n := 0
	push := func(v object.Value) bool {
		if limit >= 0 && n >= limit {
			return false
		}
		arr.SetElement(n, v)
		n++
		return true
	}
	if sepArg.Tag == object.TagRegexp {
		re := sepArg.Object.Internal.(*regexp.Regexp)
		last := 0
		for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
			if m[0] == m[1] && m[0] == last {
				continue
			}
			if !push(object.InlineString(s[last:m[0]])) {
				return object.ObjectValue(object.TagObject, arr)
			}
			for g := 1; g*2 < len(m); g++ {
				if m[g*2] < 0 {
					if !push(object.Undefined) {
						return object.ObjectValue(object.TagObject, arr)
					}
					continue
				}
				if !push(object.InlineString(s[m[g*2]:m[g*2+1]])) {
					return object.ObjectValue(object.TagObject, arr)
				}
			}
			last = m[1]
		}
		push(object.InlineString(s[last:]))
		return object.ObjectValue(object.TagObject, arr)
	}
	sep := ctx.ToString(sepArg)
	if sep == "" {
		for _, r := range s {
			if !push(object.InlineString(string(r))) {
				break
			}
		}
		return object.ObjectValue(object.TagObject, arr)
	}
	for _, part := range strings.Split(s, sep) {
		if !push(object.InlineString(part)) {
			break
		}
	}
	return object.ObjectValue(object.TagObject, arr)
}

func stringMatch(ctx *object.Context) object.Value {
	s := selfString(ctx)
	re := toRegex(ctx, arg(ctx, 0))
	global := arg(ctx, 0).Tag == object.TagRegexp && isGlobalRegex(ctx, arg(ctx, 0).Object)
	if !global {
		m := re.FindStringSubmatchIndex(s)
		if m == nil {
			return object.Null
		}
		return matchResultArray(ctx, s, m)
	}
	all := re.FindAllString(s, -1)
	if all == nil {
		return object.Null
	}
	arr := object.New(object.KindArray, ctx.Proto.Array)
	for i, m := range all {
		arr.SetElement(i, object.InlineString(m))
	}
	return object.ObjectValue(object.TagObject, arr)
}

func isGlobalRegex(ctx *object.Context, o *object.Object) bool {
	v, ok := o.GetSlot(k(ctx, "global"))
	return ok && v.IsTrue()
}

func matchResultArray(ctx *object.Context, s string, m []int) object.Value {
	arr := object.New(object.KindArray, ctx.Proto.Array)
	for g := 0; g*2 < len(m); g++ {
		if m[g*2] < 0 {
			arr.SetElement(g, object.Undefined)
			continue
		}
		arr.SetElement(g, object.InlineString(s[m[g*2]:m[g*2+1]]))
	}
	this := object.Value{Tag: object.TagObject, Object: arr}
	ctx.Put(arr, object.KeyValue(k(ctx, "index")), object.Int(int32(m[0])), this, false)
	ctx.Put(arr, object.KeyValue(k(ctx, "input")), object.InlineString(s), this, false)
	return this
}

func stringReplace(ctx *object.Context) object.Value {
	s := selfString(ctx)
	pattern := arg(ctx, 0)
	replacement := arg(ctx, 1)
	replaceOne := func(m []int) string {
		if replacement.Tag == object.TagFunction {
			args := make([]object.Value, 0, len(m)/2+2)
			for g := 0; g*2 < len(m); g++ {
				if m[g*2] < 0 {
					args = append(args, object.Undefined)
					continue
				}
				args = append(args, object.InlineString(s[m[g*2]:m[g*2+1]]))
			}
			args = append(args, object.Int(int32(m[0])), object.InlineString(s))
			r, thrown := object.Invoke(ctx, replacement.Object, object.Undefined, args)
			if thrown != nil {
				panic(thrown)
			}
			return ctx.ToString(r)
		}
		return expandReplacement(ctx.ToString(replacement), s, m)
	}
	if pattern.Tag == object.TagRegexp {
		re := pattern.Object.Internal.(*regexp.Regexp)
		global := isGlobalRegex(ctx, pattern.Object)
		matches := re.FindAllStringSubmatchIndex(s, 1)
		if global {
			matches = re.FindAllStringSubmatchIndex(s, -1)
		}
		if matches == nil {
			return object.InlineString(s)
		}
		var sb strings.Builder
		last := 0
		for _, m := range matches {
			sb.WriteString(s[last:m[0]])
			sb.WriteString(replaceOne(m))
			last = m[1]
		}
		sb.WriteString(s[last:])
		return object.InlineString(sb.String())
	}
	needle := ctx.ToString(pattern)
	idx := strings.Index(s, needle)
	if idx < 0 {
		return object.InlineString(s)
	}
	m := []int{idx, idx + len(needle)}
	return object.InlineString(s[:idx] + replaceOne(m) + s[idx+len(needle):])
}

func expandReplacement(repl, s string, m []int) string {
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		if repl[i] == '$' && i+1 < len(repl) {
			c := repl[i+1]
			switch {
			case c == '$':
				sb.WriteByte('$')
				i++
				continue
			case c == '&':
				sb.WriteString(s[m[0]:m[1]])
				i++
				continue
			case c >= '0' && c <= '9':
				g := int(c - '0')
				if g*2+1 < len(m) && m[g*2] >= 0 {
					sb.WriteString(s[m[g*2]:m[g*2+1]])
				}
				i++
				continue
			}
		}
		sb.WriteByte(repl[i])
	}
	return sb.String()
}
