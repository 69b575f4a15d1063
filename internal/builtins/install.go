package builtins

import (
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// Install builds every well-known prototype, wires them onto ctx.Proto, and
// returns the freshly built global object with every constructor and global
// function installed on it. Called exactly once per internal/script.Context
// (each engine instance gets its own independent built-ins, see
// DESIGN.md's note on scoping process-global state to the engine rather
// than the process).
func Install(ctx *object.Context, keys *key.Table) *object.Object {
	ctx.Keys = keys

	objectProto := object.New(object.KindPlain, nil)
	functionProto := object.New(object.KindFunction, objectProto)
	functionProto.Function = &object.FunctionData{
		Native:      func(ctx *object.Context) object.Value { return object.Undefined },
		Environment: object.New(object.KindPlain, objectProto),
	}
	arrayProto := object.New(object.KindArray, objectProto)
	stringProto := object.New(object.KindString, objectProto)
	numberProto := object.New(object.KindNumber, objectProto)
	booleanProto := object.New(object.KindBoolean, objectProto)
	errorProto := object.New(object.KindError, objectProto)
	typeErrProto := object.New(object.KindError, errorProto)
	rangeErrProto := object.New(object.KindError, errorProto)
	syntaxErrProto := object.New(object.KindError, errorProto)
	refErrProto := object.New(object.KindError, errorProto)
	uriErrProto := object.New(object.KindError, errorProto)
	evalErrProto := object.New(object.KindError, errorProto)
	regexpProto := object.New(object.KindRegExp, objectProto)
	dateProto := object.New(object.KindDate, objectProto)
	argumentsProto := object.New(object.KindArguments, objectProto)

	ctx.Proto = object.WellKnownProtos{
		Object:    objectProto,
		Function:  functionProto,
		Array:     arrayProto,
		String:    stringProto,
		Number:    numberProto,
		Boolean:   booleanProto,
		Error:     errorProto,
		TypeErr:   typeErrProto,
		RangeErr:  rangeErrProto,
		SyntaxEr:  syntaxErrProto,
		RefErr:    refErrProto,
		URIErr:    uriErrProto,
		EvalErr:   evalErrProto,
		Regexp:    regexpProto,
		Date:      dateProto,
		Arguments: argumentsProto,
	}

	global := object.New(object.KindGlobal, objectProto)
	ctx.Global = global

	installObject(ctx, global, objectProto)
	installFunction(ctx, global, functionProto)
	installArray(ctx, global, arrayProto)
	installString(ctx, global, stringProto)
	installNumber(ctx, global, numberProto)
	installBoolean(ctx, global, booleanProto)
	installErrors(ctx, global, errorProto, map[string]*object.Object{
		"TypeError":      typeErrProto,
		"RangeError":     rangeErrProto,
		"SyntaxError":    syntaxErrProto,
		"ReferenceError": refErrProto,
		"URIError":       uriErrProto,
		"EvalError":      evalErrProto,
	})
	installMath(ctx, global)
	installJSON(ctx, global)
	installDate(ctx, global, dateProto)
	installRegExp(ctx, global, regexpProto)
	installGlobalFunctions(ctx, global)

	defineValue(ctx, global, "global", object.Value{Tag: object.TagObject, Object: global}, object.FlagHidden)
	defineValue(ctx, global, "this", object.Value{Tag: object.TagObject, Object: global}, object.FlagHidden)

	return global
}
