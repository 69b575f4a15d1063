// Package interp supplies the ~60 concrete per-op Go functions the parser
// wires into the compiled operation tree: one native implementation per
// ECMAScript expression and statement form, operating on
// object.Context/object.Op. internal/parser never inspects what an op does;
// it only assembles Op.Children/Value/Key/Meta and picks which constructor
// here produced the node.
package interp

import (
	"math"

	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// Literal returns the op's inline Value unchanged (numbers, strings,
// booleans, null, undefined).
func Literal(v object.Value) object.Op {
	return object.Op{Native: opLiteral, Value: v}
}

func opLiteral(ctx *object.Context, op *object.Op) object.Value { return op.Value }

// ThisExpr evaluates to the current `this` binding.
func ThisExpr() object.Op {
	return object.Op{Native: func(ctx *object.Context, op *object.Op) object.Value { return ctx.This }}
}

// LocalSlot reads parameter/local slot idx of the currently running
// function's own Environment.
func LocalSlot(idx int) object.Op {
	return object.Op{Native: opGetLocalSlot, Depth: idx}
}

func opGetLocalSlot(ctx *object.Context, op *object.Op) object.Value {
	if ctx.Locals == nil {
		return object.Undefined
	}
	v, ok := ctx.Locals.GetElement(op.Depth)
	if !ok {
		return object.Undefined
	}
	return v
}

// ParentSlot reads slot idx of the Environment `hops` lexical scopes out
// from the currently running function; hops gets its own field via Meta
// rather than reusing Label.
func ParentSlot(hops, idx int) object.Op {
	return object.Op{Native: opGetParentSlot, Depth: idx, Meta: hops}
}

func opGetParentSlot(ctx *object.Context, op *object.Op) object.Value {
	env := parentEnv(ctx, op.Meta.(int))
	if env == nil {
		return object.Undefined
	}
	v, ok := env.GetElement(op.Depth)
	if !ok {
		return object.Undefined
	}
	return v
}

func parentEnv(ctx *object.Context, hops int) *object.Object {
	env := ctx.Locals
	for i := 0; i < hops && env != nil; i++ {
		env = env.Prototype
	}
	return env
}

// Name performs a dynamic lookup by property name: the scope chain (`with`/
// catch pushes, innermost first) then the global object, used for any
// identifier the parser could not statically resolve to a local/parent slot.
func Name(k key.Key) object.Op {
	return object.Op{Native: opGetName, Key: k}
}

func opGetName(ctx *object.Context, op *object.Op) object.Value {
	v, _, ok := ctx.LookupScope(op.Key)
	if !ok {
		panic(ctx.NewReferenceError(ctx.Keys.TextOf(op.Key) + " is not defined"))
	}
	if v.Flags&object.FlagGetter != 0 {
		return invokeGetter(ctx, v)
	}
	return v
}

// NameTypeof is identical to Name but returns undefined instead of throwing
// a ReferenceError for an unresolved identifier, per ES5 11.4.3's carve-out
// for `typeof` on an undeclared name.
func NameTypeof(k key.Key) object.Op {
	return object.Op{Native: opGetNameTypeof, Key: k}
}

func opGetNameTypeof(ctx *object.Context, op *object.Op) object.Value {
	v, _, ok := ctx.LookupScope(op.Key)
	if !ok {
		return object.Undefined
	}
	if v.Flags&object.FlagGetter != 0 {
		return invokeGetter(ctx, v)
	}
	return v
}

func invokeGetter(ctx *object.Context, slot object.Value) object.Value {
	result, thrown := object.Invoke(ctx, slot.Object, ctx.This, nil)
	if thrown != nil {
		panic(thrown)
	}
	return result
}

// Member reads a statically-named property: obj.key.
func Member(objExpr object.Op, k key.Key) object.Op {
	return object.Op{Native: opMember, Key: k, Children: object.OpList{objExpr}}
}

func opMember(ctx *object.Context, op *object.Op) object.Value {
	base := object.Eval(ctx, &op.Children[0])
	return getProp(ctx, base, object.KeyValue(op.Key))
}

// Index reads a computed property: obj[expr].
func Index(objExpr, idxExpr object.Op) object.Op {
	return object.Op{Native: opIndex, Children: object.OpList{objExpr, idxExpr}}
}

func opIndex(ctx *object.Context, op *object.Op) object.Value {
	base := object.Eval(ctx, &op.Children[0])
	idx := object.Eval(ctx, &op.Children[1])
	return getProp(ctx, base, idx)
}

// getProp classifies a property access on a possibly-primitive base:
// primitives are auto-boxed (string index/member, Number/Boolean method
// lookup), then dispatched through Context.Get.
func getProp(ctx *object.Context, base, prop object.Value) object.Value {
	if base.IsUndefined() || base.IsNull() {
		panic(ctx.NewTypeError("cannot read property of " + ctx.ToString(base)))
	}
	if base.Tag == object.TagText || base.Tag == object.TagChars || base.Tag == object.TagBuffer {
		if s, ok := stringElementIndex(ctx, base, prop); ok {
			return s
		}
		boxed := ctx.ToObject(base)
		return ctx.Get(boxed.Object, prop, base)
	}
	if !base.IsObject() {
		boxed := ctx.ToObject(base)
		return ctx.Get(boxed.Object, prop, base)
	}
	return ctx.Get(base.Object, prop, base)
}

// stringElementIndex returns the character at prop as a transient buffer
// value when base is string-typed, extended to primitive strings (not just
// boxed String objects) since ES5 allows `"abc"[1]` to work the same way.
func stringElementIndex(ctx *object.Context, base, prop object.Value) (object.Value, bool) {
	s := base.StringValue()
	idx, isIdx, _ := classifyIndex(ctx, prop)
	if !isIdx {
		if prop.IsString() && prop.StringValue() == "length" {
			return object.Int(int32(len([]rune(s)))), true
		}
		return object.Value{}, false
	}
	runes := []rune(s)
	if idx < 0 || idx >= len(runes) {
		return object.Value{}, false
	}
	return object.InlineString(string(runes[idx])), true
}

func classifyIndex(ctx *object.Context, prop object.Value) (idx int, ok bool, s string) {
	switch prop.Tag {
	case object.TagInteger:
		if prop.Integer >= 0 {
			return int(prop.Integer), true, ""
		}
	case object.TagBinary:
		if i := int(prop.Binary); float64(i) == prop.Binary && i >= 0 {
			return i, true, ""
		}
	case object.TagText, object.TagChars, object.TagBuffer:
		str := prop.StringValue()
		if i, good := object.ElementIndexFromString(str); good {
			return i, true, str
		}
		return 0, false, str
	}
	return 0, false, ""
}

// ArrayLiteral builds a dense Array from element expressions; a true entry in
// Meta's []bool elision marks an elided ("holey") element per ES5 11.1.4.
func ArrayLiteral(elements []object.Op, elisions []bool) object.Op {
	return object.Op{Native: opArrayLiteral, Children: object.OpList(elements), Meta: elisions}
}

func opArrayLiteral(ctx *object.Context, op *object.Op) object.Value {
	elisions, _ := op.Meta.([]bool)
	arr := object.New(object.KindArray, ctx.Proto.Array)
	for i := range op.Children {
		if i < len(elisions) && elisions[i] {
			continue
		}
		arr.SetElement(i, object.Eval(ctx, &op.Children[i]))
	}
	arr.ResizeElement(len(op.Children))
	return object.ObjectValue(object.TagObject, arr)
}

// ObjectEntry describes one object-literal member: a data value or an
// accessor half.
type ObjectEntry struct {
	Key      key.Key
	Value    object.Op
	IsGetter bool
	IsSetter bool
}

// ObjectLiteral builds a plain Object from key/value or accessor entries.
func ObjectLiteral(entries []ObjectEntry) object.Op {
	return object.Op{Native: opObjectLiteral, Meta: entries}
}

func opObjectLiteral(ctx *object.Context, op *object.Op) object.Value {
	entries := op.Meta.([]ObjectEntry)
	o := object.New(object.KindPlain, ctx.Proto.Object)
	for _, e := range entries {
		v := object.Eval(ctx, &e.Value)
		if e.IsGetter || e.IsSetter {
			var getter, setter *object.Object
			if e.IsGetter {
				getter = v.Object
			} else {
				setter = v.Object
			}
			ctx.DefineAccessor(o, e.Key, getter, setter, true)
			continue
		}
		ctx.Put(o, object.KeyValue(e.Key), v, object.ObjectValue(object.TagObject, o), false)
	}
	return object.ObjectValue(object.TagObject, o)
}

// Sequence implements the comma operator: evaluate every op, keep the last.
func Sequence(ops []object.Op) object.Op {
	return object.Op{Native: opSequence, Children: object.OpList(ops)}
}

func opSequence(ctx *object.Context, op *object.Op) object.Value {
	var v object.Value
	for i := range op.Children {
		v = object.Eval(ctx, &op.Children[i])
	}
	return v
}

// Conditional implements `cond ? then : else`.
func Conditional(cond, then, els object.Op) object.Op {
	return object.Op{Native: opConditional, Children: object.OpList{cond, then, els}}
}

func opConditional(ctx *object.Context, op *object.Op) object.Value {
	if object.Eval(ctx, &op.Children[0]).IsTrue() {
		return object.Eval(ctx, &op.Children[1])
	}
	return object.Eval(ctx, &op.Children[2])
}

// Logical implements short-circuit `&&`/`||`.
func Logical(isAnd bool, left, right object.Op) object.Op {
	native := opLogicalOr
	if isAnd {
		native = opLogicalAnd
	}
	return object.Op{Native: native, Children: object.OpList{left, right}}
}

func opLogicalAnd(ctx *object.Context, op *object.Op) object.Value {
	l := object.Eval(ctx, &op.Children[0])
	if !l.IsTrue() {
		return l
	}
	return object.Eval(ctx, &op.Children[1])
}

func opLogicalOr(ctx *object.Context, op *object.Op) object.Value {
	l := object.Eval(ctx, &op.Children[0])
	if l.IsTrue() {
		return l
	}
	return object.Eval(ctx, &op.Children[1])
}

// Delete removes a property named by a Member/Index target. An unqualified
// delete on a bare identifier never reaches this op: the parser rejects it
// in strict code and otherwise emits DeleteName or a false result; here it
// only ever sees an already-classified property target.
func Delete(objExpr object.Op, keyExpr *object.Op, k key.Key) object.Op {
	children := object.OpList{objExpr}
	if keyExpr != nil {
		children = append(children, *keyExpr)
	}
	return object.Op{Native: opDelete, Key: k, Children: children, Meta: keyExpr != nil}
}

func opDelete(ctx *object.Context, op *object.Op) object.Value {
	base := object.Eval(ctx, &op.Children[0])
	if base.Tag != object.TagUndefined && !base.IsObject() {
		base = ctx.ToObject(base)
	}
	if !base.IsObject() {
		return object.True
	}
	var prop object.Value
	if op.Meta.(bool) {
		prop = object.Eval(ctx, &op.Children[1])
	} else {
		prop = object.KeyValue(op.Key)
	}
	return object.Bool(ctx.Delete(base.Object, prop, ctx.Strict))
}

// DeleteName implements `delete identifier`: sloppy mode removes it from the
// nearest scope object that holds it (only possible for `with`-introduced
// bindings; ordinary var/function declarations are non-configurable and
// stay); strict mode is a parse-time SyntaxError the parser rejects before
// ever emitting this op.
func DeleteName(k key.Key) object.Op {
	return object.Op{Native: opDeleteName, Key: k}
}

func opDeleteName(ctx *object.Context, op *object.Op) object.Value {
	for i := len(ctx.Scopes) - 1; i >= 0; i-- {
		if _, ok := ctx.Scopes[i].GetSlot(op.Key); ok {
			return object.Bool(ctx.Delete(ctx.Scopes[i], object.KeyValue(op.Key), false))
		}
	}
	if _, ok := ctx.Global.GetSlot(op.Key); ok {
		return object.Bool(ctx.Delete(ctx.Global, object.KeyValue(op.Key), false))
	}
	return object.True
}

// Typeof wraps any expression with ES5's typeof operator.
func Typeof(expr object.Op) object.Op {
	return object.Op{Native: opTypeof, Children: object.OpList{expr}}
}

func opTypeof(ctx *object.Context, op *object.Op) object.Value {
	return object.InlineString(object.Eval(ctx, &op.Children[0]).TypeOf())
}

// Void evaluates its operand for effect and yields undefined.
func Void(expr object.Op) object.Op {
	return object.Op{Native: opVoid, Children: object.OpList{expr}}
}

func opVoid(ctx *object.Context, op *object.Op) object.Value {
	object.Eval(ctx, &op.Children[0])
	return object.Undefined
}

// UnaryMinus, UnaryPlus, LogicalNot, BitNot implement ES5 11.4's remaining
// unary operators.
func UnaryMinus(expr object.Op) object.Op { return object.Op{Native: opUnaryMinus, Children: object.OpList{expr}} }
func opUnaryMinus(ctx *object.Context, op *object.Op) object.Value {
	return object.Bin(-ctx.ToBinary(object.Eval(ctx, &op.Children[0])))
}

func UnaryPlus(expr object.Op) object.Op { return object.Op{Native: opUnaryPlus, Children: object.OpList{expr}} }
func opUnaryPlus(ctx *object.Context, op *object.Op) object.Value {
	return object.Bin(ctx.ToBinary(object.Eval(ctx, &op.Children[0])))
}

func LogicalNot(expr object.Op) object.Op { return object.Op{Native: opLogicalNot, Children: object.OpList{expr}} }
func opLogicalNot(ctx *object.Context, op *object.Op) object.Value {
	return object.Bool(!object.Eval(ctx, &op.Children[0]).IsTrue())
}

func BitNot(expr object.Op) object.Op { return object.Op{Native: opBitNot, Children: object.OpList{expr}} }
func opBitNot(ctx *object.Context, op *object.Op) object.Value {
	return object.Int(^ctx.ToInt32(object.Eval(ctx, &op.Children[0])))
}

// BinOp identifies a binary arithmetic/relational/bitwise operator kind.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpUShr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEq
	OpNotEq
	OpStrictEq
	OpStrictNotEq
	OpInstanceof
	OpIn
)

// Binary builds a binary-operator op for any BinOp kind.
func Binary(kind BinOp, left, right object.Op) object.Op {
	return object.Op{Native: opBinary, Depth: int(kind), Children: object.OpList{left, right}}
}

func opBinary(ctx *object.Context, op *object.Op) object.Value {
	l := object.Eval(ctx, &op.Children[0])
	r := object.Eval(ctx, &op.Children[1])
	return evalBinary(ctx, BinOp(op.Depth), l, r)
}

func evalBinary(ctx *object.Context, kind BinOp, l, r object.Value) object.Value {
	switch kind {
	case OpAdd:
		return ctx.Add(l, r)
	case OpSub:
		return ctx.Subtract(l, r)
	case OpMul:
		return object.Bin(ctx.ToBinary(l) * ctx.ToBinary(r))
	case OpDiv:
		return object.Bin(ctx.ToBinary(l) / ctx.ToBinary(r))
	case OpMod:
		return object.Bin(math.Mod(ctx.ToBinary(l), ctx.ToBinary(r)))
	case OpShl:
		return object.Int(ctx.ToInt32(l) << (uint32(ctx.ToInt32(r)) & 31))
	case OpShr:
		return object.Int(ctx.ToInt32(l) >> (uint32(ctx.ToInt32(r)) & 31))
	case OpUShr:
		lu := uint32(ctx.ToInt32(l))
		return object.Bin(float64(lu >> (uint32(ctx.ToInt32(r)) & 31)))
	case OpBitAnd:
		return object.Int(ctx.ToInt32(l) & ctx.ToInt32(r))
	case OpBitOr:
		return object.Int(ctx.ToInt32(l) | ctx.ToInt32(r))
	case OpBitXor:
		return object.Int(ctx.ToInt32(l) ^ ctx.ToInt32(r))
	case OpLess:
		res, ok := ctx.Less(l, r)
		return object.Bool(ok && res)
	case OpLessEq:
		res, ok := ctx.Less(r, l)
		return object.Bool(ok && !res)
	case OpGreater:
		res, ok := ctx.Less(r, l)
		return object.Bool(ok && res)
	case OpGreaterEq:
		res, ok := ctx.Less(l, r)
		return object.Bool(ok && !res)
	case OpEq:
		return object.Bool(ctx.Equals(l, r))
	case OpNotEq:
		return object.Bool(!ctx.Equals(l, r))
	case OpStrictEq:
		return object.Bool(object.StrictEquals(l, r))
	case OpStrictNotEq:
		return object.Bool(!object.StrictEquals(l, r))
	case OpInstanceof:
		return object.Bool(instanceOf(ctx, l, r))
	case OpIn:
		return object.Bool(inOperator(ctx, l, r))
	}
	return object.Undefined
}

func instanceOf(ctx *object.Context, l, r object.Value) bool {
	if r.Tag != object.TagFunction || r.Object == nil {
		panic(ctx.NewTypeError("right-hand side of instanceof is not callable"))
	}
	if !l.IsObject() {
		return false
	}
	protoVal := ctx.Get(r.Object, object.InlineString("prototype"), r)
	if !protoVal.IsObject() {
		panic(ctx.NewTypeError("prototype is not an object"))
	}
	for cur := l.Object.Prototype; cur != nil; cur = cur.Prototype {
		if cur == protoVal.Object {
			return true
		}
	}
	return false
}

func inOperator(ctx *object.Context, l, r object.Value) bool {
	if !r.IsObject() {
		panic(ctx.NewTypeError("cannot use 'in' operator on a non-object"))
	}
	return ctx.HasProperty(r.Object, l)
}
