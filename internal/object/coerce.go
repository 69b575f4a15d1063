package object

import (
	"math"
	"strconv"
	"strings"

	"github.com/apfeltee/ecma5go/internal/chars"
)

// TypeOf implements the ES5 typeof operator.
func (v Value) TypeOf() string {
	switch v.Tag {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "object"
	case TagFalse, TagTrue:
		return "boolean"
	case TagInteger, TagBinary:
		return "number"
	case TagText, TagChars, TagBuffer:
		return "string"
	case TagFunction:
		return "function"
	default:
		return "object"
	}
}

// ToPrimitive implements ES5 9.1, preferring the "number" hint unless hint
// is "string". Objects try valueOf then toString (or the reverse for the
// string hint); a value that is already primitive is returned unchanged.
func (ctx *Context) ToPrimitive(v Value, hint string) Value {
	if v.IsPrimitive() {
		return v
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		m, _, ok := v.Object.Member(ctx.Keys.MakeFromString(name), false)
		if !ok || m.Tag != TagFunction || m.Object == nil {
			continue
		}
		result, thrown := Invoke(ctx, m.Object, v, nil)
		if thrown != nil {
			panic(thrown)
		}
		if result.IsPrimitive() {
			return result
		}
	}
	panic(ctx.NewTypeError("cannot convert object to primitive value"))
}

// ToBinary implements ES5 9.3 ToNumber, returning the IEEE-754 float64
// every numeric value ultimately reduces to.
func (ctx *Context) ToBinary(v Value) float64 {
	switch v.Tag {
	case TagUndefined:
		return math.NaN()
	case TagNull:
		return 0
	case TagFalse:
		return 0
	case TagTrue:
		return 1
	case TagInteger:
		return float64(v.Integer)
	case TagBinary:
		return v.Binary
	case TagText, TagChars, TagBuffer:
		return stringToNumber(v.StringValue())
	default:
		return ctx.ToBinary(ctx.ToPrimitive(v, "number"))
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s == "Infinity" || s == "+Infinity" {
		return math.Inf(1)
	}
	if s == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToInteger implements ES5 9.4, the "through the float, truncate, clamp
// infinities" ToInteger abstraction used by array-index and string-index
// coercions.
func (ctx *Context) ToInteger(v Value) float64 {
	n := ctx.ToBinary(v)
	if math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) || n == 0 {
		return n
	}
	if n < 0 {
		return -math.Floor(-n)
	}
	return math.Floor(n)
}

// ToInt32 implements ES5 9.5.
func (ctx *Context) ToInt32(v Value) int32 {
	n := ctx.ToBinary(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	const twoPow32 = 4294967296
	m := math.Mod(n, twoPow32)
	if m < 0 {
		m += twoPow32
	}
	if m >= twoPow32/2 {
		m -= twoPow32
	}
	return int32(m)
}

// ToString implements ES5 9.8 ToString.
func (ctx *Context) ToString(v Value) string {
	switch v.Tag {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagFalse:
		return "false"
	case TagTrue:
		return "true"
	case TagInteger:
		return chars.FormatBinary(float64(v.Integer), 10)
	case TagBinary:
		return chars.FormatBinary(v.Binary, 10)
	case TagText, TagChars, TagBuffer:
		return v.StringValue()
	case TagKey:
		return ctx.Keys.TextOf(v.Key)
	default:
		return ctx.ToString(ctx.ToPrimitive(v, "string"))
	}
}

// ToObject implements ES5 9.9, boxing primitives via the well-known
// prototypes recorded on Context; Internal carries the boxed primitive for
// valueOf to later unwrap.
func (ctx *Context) ToObject(v Value) Value {
	switch v.Tag {
	case TagUndefined, TagNull:
		panic(ctx.NewTypeError("cannot convert undefined or null to object"))
	case TagObject, TagFunction, TagError, TagRegexp, TagDate, TagNumber, TagString, TagBoolean:
		return v
	case TagFalse, TagTrue:
		o := New(KindBoolean, ctx.Proto.Boolean)
		o.Internal = v.Tag == TagTrue
		return ObjectValue(TagBoolean, o)
	case TagInteger, TagBinary:
		o := New(KindNumber, ctx.Proto.Number)
		o.Internal = ctx.ToBinary(v)
		return ObjectValue(TagNumber, o)
	default:
		o := New(KindString, ctx.Proto.String)
		o.Internal = ctx.ToString(v)
		return ObjectValue(TagString, o)
	}
}

// Same implements the strict-equality-adjacent "SameValue" (ES5 9.12);
// unlike Equals it does not coerce and treats NaN as equal to itself and
// +0/-0 as distinct.
func Same(a, b Value) bool {
	if a.Tag != b.Tag {
		if (a.Tag == TagInteger || a.Tag == TagBinary) && (b.Tag == TagInteger || b.Tag == TagBinary) {
			// fall through to numeric compare below
		} else {
			return false
		}
	}
	switch a.Tag {
	case TagUndefined, TagNull, TagFalse, TagTrue:
		return true
	case TagInteger, TagBinary:
		var x, y float64
		if a.Tag == TagInteger {
			x = float64(a.Integer)
		} else {
			x = a.Binary
		}
		if b.Tag == TagInteger {
			y = float64(b.Integer)
		} else {
			y = b.Binary
		}
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	case TagText, TagChars, TagBuffer:
		return a.StringValue() == b.StringValue()
	default:
		return a.Object == b.Object
	}
}

// StrictEquals implements ES5 11.9.6 (the === operator): like Same but
// +0 === -0 and NaN !== NaN.
func StrictEquals(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return numberOf(a) == numberOf(b)
	}
	if a.IsString() && b.IsString() {
		return a.StringValue() == b.StringValue()
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagUndefined, TagNull, TagFalse, TagTrue:
		return true
	default:
		return a.Object == b.Object
	}
}

func numberOf(v Value) float64 {
	if v.Tag == TagInteger {
		return float64(v.Integer)
	}
	return v.Binary
}

// Equals implements ES5 11.9.3 (the == operator), including its coercion
// ladder between numbers, strings, booleans, and objects.
func (ctx *Context) Equals(a, b Value) bool {
	if a.Tag == b.Tag || (a.IsNumber() && b.IsNumber()) || (a.IsString() && b.IsString()) {
		return StrictEquals(a, b)
	}
	if (a.Tag == TagUndefined && b.Tag == TagNull) || (a.Tag == TagNull && b.Tag == TagUndefined) {
		return true
	}
	if a.IsNumber() && b.IsString() {
		return ctx.Equals(a, Bin(ctx.ToBinary(b)))
	}
	if a.IsString() && b.IsNumber() {
		return ctx.Equals(Bin(ctx.ToBinary(a)), b)
	}
	if a.IsBoolean() {
		return ctx.Equals(Bin(ctx.ToBinary(a)), b)
	}
	if b.IsBoolean() {
		return ctx.Equals(a, Bin(ctx.ToBinary(b)))
	}
	if (a.IsNumber() || a.IsString()) && b.IsObject() {
		return ctx.Equals(a, ctx.ToPrimitive(b, "number"))
	}
	if a.IsObject() && (b.IsNumber() || b.IsString()) {
		return ctx.Equals(ctx.ToPrimitive(a, "number"), b)
	}
	return false
}

// Less implements the numeric/string relational core shared by <, <=, >, >=
// (ES5 11.8.5's "Abstract Relational Comparison"). ok is false when either
// side compares as NaN, whose comparison result is undefined.
func (ctx *Context) Less(a, b Value) (result, ok bool) {
	pa := ctx.ToPrimitive(a, "number")
	pb := ctx.ToPrimitive(b, "number")
	if pa.IsString() && pb.IsString() {
		return pa.StringValue() < pb.StringValue(), true
	}
	na, nb := ctx.ToBinary(pa), ctx.ToBinary(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false, false
	}
	return na < nb, true
}

// Add implements ES5 11.6.1's overloaded + (numeric add or string concat,
// decided by ToPrimitive on both operands first).
func (ctx *Context) Add(a, b Value) Value {
	pa := ctx.ToPrimitive(a, "default")
	pb := ctx.ToPrimitive(b, "default")
	if pa.IsString() || pb.IsString() {
		return InlineString(ctx.ToString(pa) + ctx.ToString(pb))
	}
	return Bin(ctx.ToBinary(pa) + ctx.ToBinary(pb))
}

// Subtract implements ES5 11.6.2.
func (ctx *Context) Subtract(a, b Value) Value {
	return Bin(ctx.ToBinary(a) - ctx.ToBinary(b))
}
