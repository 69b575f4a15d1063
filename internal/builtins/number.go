package builtins

import (
	"math"
	"strconv"

	"github.com/apfeltee/ecma5go/internal/chars"
	"github.com/apfeltee/ecma5go/internal/object"
)

// installNumber wires the Number constructor, Number.prototype, and the
// Number.* numeric-limit constants (ES5 15.7). original_source has no
// dedicated Number translation unit; toString(radix) and toPrecision without
// an argument use the same formatting internal/chars.FormatBinary implements
// for general number-to-string conversion, while toFixed and toPrecision
// with an argument format through strconv.FormatFloat.
func installNumber(ctx *object.Context, global, proto *object.Object) {
	ctorFn := NativeFunctionAt(ctx, "Number", 1, func(ctx *object.Context) object.Value {
		n := 0.0
		if len(ctx.Args) > 0 {
			n = ctx.ToBinary(ctx.Args[0])
		}
		if !ctx.Construct {
			return object.Bin(n)
		}
		o := object.New(object.KindNumber, ctx.Proto.Number)
		o.Internal = n
		return object.ObjectValue(object.TagNumber, o)
	})
	wireConstructor(ctx, global, "Number", ctorFn, proto)

	defineValue(ctx, ctorFn, "MAX_VALUE", object.Bin(math.MaxFloat64), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, ctorFn, "MIN_VALUE", object.Bin(math.SmallestNonzeroFloat64), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, ctorFn, "NaN", object.Bin(nan()), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, ctorFn, "POSITIVE_INFINITY", object.Bin(math.Inf(1)), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, ctorFn, "NEGATIVE_INFINITY", object.Bin(math.Inf(-1)), object.FlagFrozen|object.FlagHidden)

	defineMethod(ctx, proto, "toString", 1, func(ctx *object.Context) object.Value {
		n := selfNumber(ctx)
		radix := 10
		if len(ctx.Args) > 0 && !ctx.Args[0].IsUndefined() {
			radix = int(ctx.ToInteger(ctx.Args[0]))
		}
		return object.InlineString(chars.FormatBinary(n, radix))
	})
	defineMethod(ctx, proto, "valueOf", 0, func(ctx *object.Context) object.Value {
		return object.Bin(selfNumber(ctx))
	})
	defineMethod(ctx, proto, "toFixed", 1, func(ctx *object.Context) object.Value {
		n := selfNumber(ctx)
		digits := int(ctx.ToInteger(arg(ctx, 0)))
		return object.InlineString(strconv.FormatFloat(n, 'f', digits, 64))
	})
	defineMethod(ctx, proto, "toPrecision", 1, func(ctx *object.Context) object.Value {
		n := selfNumber(ctx)
		if arg(ctx, 0).IsUndefined() {
			return object.InlineString(chars.FormatBinary(n, 10))
		}
		prec := int(ctx.ToInteger(ctx.Args[0]))
		return object.InlineString(strconv.FormatFloat(n, 'g', prec, 64))
	})
}

func selfNumber(ctx *object.Context) float64 {
	if ctx.This.IsNumber() {
		return ctx.ToBinary(ctx.This)
	}
	if ctx.This.Tag == object.TagNumber {
		if n, ok := ctx.This.Object.Internal.(float64); ok {
			return n
		}
	}
	return ctx.ToBinary(ctx.This)
}
