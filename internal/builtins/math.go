package builtins

import (
	"math"
	"math/rand"

	"github.com/apfeltee/ecma5go/internal/object"
)

// installMath wires the Math namespace object (ES5 15.8), grounded on
// original_source/stdmath.c. Math is a plain (non-constructible) object, not
// a function, so it is installed directly rather than through wireConstructor.
func installMath(ctx *object.Context, global *object.Object) {
	m := object.New(object.KindMath, ctx.Proto.Object)
	defineValue(ctx, global, "Math", object.Value{Tag: object.TagObject, Object: m}, object.FlagHidden)

	defineValue(ctx, m, "E", object.Bin(math.E), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "LN10", object.Bin(math.Ln10), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "LN2", object.Bin(math.Ln2), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "LOG2E", object.Bin(math.Log2E), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "LOG10E", object.Bin(math.Log10E), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "PI", object.Bin(math.Pi), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "SQRT1_2", object.Bin(math.Sqrt(0.5)), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, m, "SQRT2", object.Bin(math.Sqrt2), object.FlagFrozen|object.FlagHidden)

	unary := func(name string, fn func(float64) float64) {
		defineMethod(ctx, m, name, 1, func(ctx *object.Context) object.Value {
			return object.Bin(fn(ctx.ToBinary(arg(ctx, 0))))
		})
	}
	unary("abs", math.Abs)
	unary("ceil", math.Ceil)
	unary("floor", math.Floor)
	unary("round", func(x float64) float64 { return math.Floor(x + 0.5) })
	unary("sqrt", math.Sqrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("exp", math.Exp)
	unary("log", math.Log)

	defineMethod(ctx, m, "pow", 2, func(ctx *object.Context) object.Value {
		return object.Bin(math.Pow(ctx.ToBinary(arg(ctx, 0)), ctx.ToBinary(arg(ctx, 1))))
	})
	defineMethod(ctx, m, "atan2", 2, func(ctx *object.Context) object.Value {
		return object.Bin(math.Atan2(ctx.ToBinary(arg(ctx, 0)), ctx.ToBinary(arg(ctx, 1))))
	})
	defineMethod(ctx, m, "max", 2, func(ctx *object.Context) object.Value {
		if len(ctx.Args) == 0 {
			return object.Bin(math.Inf(-1))
		}
		best := math.Inf(-1)
		for _, a := range ctx.Args {
			n := ctx.ToBinary(a)
			if math.IsNaN(n) {
				return object.Bin(nan())
			}
			if n > best {
				best = n
			}
		}
		return object.Bin(best)
	})
	defineMethod(ctx, m, "min", 2, func(ctx *object.Context) object.Value {
		if len(ctx.Args) == 0 {
			return object.Bin(math.Inf(1))
		}
		best := math.Inf(1)
		for _, a := range ctx.Args {
			n := ctx.ToBinary(a)
			if math.IsNaN(n) {
				return object.Bin(nan())
			}
			if n < best {
				best = n
			}
		}
		return object.Bin(best)
	})
	defineMethod(ctx, m, "random", 0, func(ctx *object.Context) object.Value {
		return object.Bin(rand.Float64())
	})
}
