package builtins

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
)

// installGlobalFunctions wires up the global function object
// (eval/parseInt/parseFloat/isNaN/isFinite/the URI codec pair), grounded on
// original_source/stdglobal.c. eval itself is implemented by
// internal/interp's direct-call fast path (opCall recognizes it via
// interp.MarkEval); this registers the callable object evalDirect dispatches
// through for the indirect/qualified-call case, which just runs EvalHook
// against the global scope (ctx.Locals is nil at that point).
func installGlobalFunctions(ctx *object.Context, global *object.Object) {
	evalFn := NativeFunctionAt(ctx, "eval", 1, func(ctx *object.Context) object.Value {
		a := arg(ctx, 0)
		if !a.IsString() {
			return a
		}
		if ctx.EvalHook == nil {
			panic(ctx.NewEvalError("eval is not available"))
		}
		return ctx.EvalHook(ctx, a.StringValue())
	})
	interp.MarkEval(evalFn)
	defineValue(ctx, global, "eval", object.Value{Tag: object.TagFunction, Object: evalFn}, object.FlagHidden)

	defineValue(ctx, global, "NaN", object.Bin(nan()), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, global, "Infinity", object.Bin(math.Inf(1)), object.FlagFrozen|object.FlagHidden)
	defineValue(ctx, global, "undefined", object.Undefined, object.FlagFrozen|object.FlagHidden)

	defineMethod(ctx, global, "isNaN", 1, func(ctx *object.Context) object.Value {
		return object.Bool(math.IsNaN(ctx.ToBinary(arg(ctx, 0))))
	})
	defineMethod(ctx, global, "isFinite", 1, func(ctx *object.Context) object.Value {
		n := ctx.ToBinary(arg(ctx, 0))
		return object.Bool(!math.IsNaN(n) && !math.IsInf(n, 0))
	})
	defineMethod(ctx, global, "parseInt", 2, func(ctx *object.Context) object.Value {
		return object.Bin(parseIntString(ctx.ToString(arg(ctx, 0)), int(ctx.ToInteger(arg(ctx, 1)))))
	})
	defineMethod(ctx, global, "parseFloat", 1, func(ctx *object.Context) object.Value {
		return object.Bin(parseFloatString(ctx.ToString(arg(ctx, 0))))
	})
	defineMethod(ctx, global, "encodeURIComponent", 1, func(ctx *object.Context) object.Value {
		return object.InlineString(percentEncode(ctx.ToString(arg(ctx, 0)), ""))
	})
	defineMethod(ctx, global, "decodeURIComponent", 1, func(ctx *object.Context) object.Value {
		s, err := percentDecode(ctx.ToString(arg(ctx, 0)))
		if err != nil {
			panic(ctx.NewURIError(err.Error()))
		}
		return object.InlineString(s)
	})
	defineMethod(ctx, global, "encodeURI", 1, func(ctx *object.Context) object.Value {
		return object.InlineString(percentEncode(ctx.ToString(arg(ctx, 0)), ";/?:@&=+$,#"))
	})
	defineMethod(ctx, global, "decodeURI", 1, func(ctx *object.Context) object.Value {
		s, err := percentDecode(ctx.ToString(arg(ctx, 0)))
		if err != nil {
			panic(ctx.NewURIError(err.Error()))
		}
		return object.InlineString(s)
	})
}

// parseIntString implements ES5 15.1.2.2's leading-whitespace-then-sign-
// then-digits scan, stopping at the first invalid character rather than
// requiring the whole string to parse.
func parseIntString(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if radix == 0 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			radix, s = 16, s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return nan()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s[:end], 64)
		if ferr != nil {
			return nan()
		}
		if neg {
			return -f
		}
		return f
	}
	if neg {
		return -float64(n)
	}
	return float64(n)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func parseFloatString(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp && seenDigit:
			seenExp = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		default:
			goto done
		}
		end++
	}
done:
	if end == 0 {
		if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
			return math.Inf(1)
		}
		if strings.HasPrefix(s, "-Infinity") {
			return math.Inf(-1)
		}
		return nan()
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return nan()
	}
	return f
}

// percentEncode implements the shared %XX-escaping core of encodeURI and
// encodeURIComponent (ES5 15.1.3): every byte is escaped except the
// ES5-unreserved set (letters, digits, - _ . ! ~ * ' ( )) and whatever
// extraSafe the caller additionally exempts (the URI reserved characters,
// for encodeURI only).
func percentEncode(s, extraSafe string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(unreserved, c) >= 0 || strings.IndexByte(extraSafe, c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		hex := strings.ToUpper(strconv.FormatInt(int64(c), 16))
		if len(hex) < 2 {
			sb.WriteByte('0')
		}
		sb.WriteString(hex)
	}
	return sb.String()
}

func percentDecode(s string) (string, error) {
	return url.PathUnescape(s)
}
