package interp

import (
	"regexp"

	"github.com/apfeltee/ecma5go/internal/object"
)

// RegexLiteral builds a RegExp object from a literal's body/flags at parse
// time being replayed at evaluation time (ES5 7.8.5 regex literals produce a
// fresh object per evaluation, unlike most engines' single-instance
// optimization, so this stays an Op rather than a folded constant).
func RegexLiteral(body, flags string) object.Op {
	return object.Op{Native: opRegexLiteral, Meta: regexMeta{body, flags}}
}

type regexMeta struct{ body, flags string }

func opRegexLiteral(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(regexMeta)
	return compileRegex(ctx, m.body, m.flags)
}

// CompileRegex exposes compileRegex to internal/builtins' `new RegExp(...)`
// constructor, which needs the same literal-to-object compilation step
// applied to constructor arguments instead of parsed literal text.
func CompileRegex(ctx *object.Context, body, flags string) object.Value {
	return compileRegex(ctx, body, flags)
}

func compileRegex(ctx *object.Context, body, flags string) object.Value {
	global, ignoreCase, multiline := false, false, false
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i':
			ignoreCase = true
		case 'm':
			multiline = true
		default:
			panic(ctx.NewSyntaxError("invalid regular expression flag: " + string(f)))
		}
	}
	pattern := translateRegexSyntax(body, ignoreCase, multiline)
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		panic(ctx.NewSyntaxError("invalid regular expression: " + err.Error()))
	}

	o := object.New(object.KindRegExp, ctx.Proto.Regexp)
	o.Internal = compiled
	this := object.Value{Tag: object.TagRegexp, Object: o}
	ctx.Put(o, keyValueOf(ctx, "source"), object.InlineString(body), this, false)
	ctx.Put(o, keyValueOf(ctx, "global"), object.Bool(global), this, false)
	ctx.Put(o, keyValueOf(ctx, "ignoreCase"), object.Bool(ignoreCase), this, false)
	ctx.Put(o, keyValueOf(ctx, "multiline"), object.Bool(multiline), this, false)
	ctx.Put(o, keyValueOf(ctx, "lastIndex"), object.Int(0), this, false)
	return this
}

// translateRegexSyntax rewrites the handful of ES5 regex constructs Go's
// RE2 engine spells differently (inline flags, since RE2 has no separate
// ignoreCase/multiline API): this is a best-effort translation, not a full
// ECMA-262 Annex B regex grammar implementation — patterns using
// backreferences or lookaround are rejected by regexp.Compile with a
// SyntaxError rather than silently misbehaving, which is an acceptable
// fidelity gap for an embeddable core (documented in DESIGN.md).
func translateRegexSyntax(body string, ignoreCase, multiline bool) string {
	prefix := ""
	if ignoreCase {
		prefix += "i"
	}
	if multiline {
		prefix += "m"
	}
	if prefix == "" {
		return body
	}
	return "(?" + prefix + ")" + body
}
