package interp

import (
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// TargetKind identifies which addressing mode an assignment/increment
// target resolved to at parse time: the LHS is re-analysed and its
// classification recorded here, rather than literally mutating a
// previously-emitted read op from a getter into a setter.
type TargetKind int

const (
	TargetLocalSlot TargetKind = iota
	TargetParentSlot
	TargetName
	TargetMember
	TargetIndex
)

// Target describes an assignable location: a local/parent environment slot,
// a dynamically-scoped name, or a statically- or dynamically-named property
// of some base-object expression.
type Target struct {
	Kind    TargetKind
	Slot    int
	Hops    int
	Key     key.Key
	ObjExpr *object.Op
	IdxExpr *object.Op
}

func readTarget(ctx *object.Context, t *Target) object.Value {
	switch t.Kind {
	case TargetLocalSlot:
		if ctx.Locals == nil {
			return object.Undefined
		}
		v, _ := ctx.Locals.GetElement(t.Slot)
		return v
	case TargetParentSlot:
		env := parentEnv(ctx, t.Hops)
		if env == nil {
			return object.Undefined
		}
		v, _ := env.GetElement(t.Slot)
		return v
	case TargetName:
		v, _, ok := ctx.LookupScope(t.Key)
		if !ok {
			return object.Undefined
		}
		if v.Flags&object.FlagGetter != 0 {
			return invokeGetter(ctx, v)
		}
		return v
	case TargetMember:
		base := object.Eval(ctx, t.ObjExpr)
		return getProp(ctx, base, object.KeyValue(t.Key))
	case TargetIndex:
		base := object.Eval(ctx, t.ObjExpr)
		idx := object.Eval(ctx, t.IdxExpr)
		return getProp(ctx, base, idx)
	}
	return object.Undefined
}

// writeTarget stores val into t, re-evaluating ObjExpr/IdxExpr is avoided by
// the caller pre-evaluating the base for Member/Index targets via
// writeTargetBase, since the base expression must only be evaluated once
// per assignment (ES5 11.13's evaluation-order contract).
func writeTarget(ctx *object.Context, t *Target, base, idx object.Value, val object.Value) object.Value {
	switch t.Kind {
	case TargetLocalSlot:
		if ctx.Locals != nil {
			ctx.Locals.SetElement(t.Slot, val)
		}
	case TargetParentSlot:
		if env := parentEnv(ctx, t.Hops); env != nil {
			env.SetElement(t.Slot, val)
		}
	case TargetName:
		for i := len(ctx.Scopes) - 1; i >= 0; i-- {
			if _, ok := ctx.Scopes[i].GetSlot(t.Key); ok {
				ctx.Put(ctx.Scopes[i], object.KeyValue(t.Key), val, object.ObjectValue(object.TagObject, ctx.Scopes[i]), ctx.Strict)
				return val
			}
		}
		ctx.Put(ctx.Global, object.KeyValue(t.Key), val, object.ObjectValue(object.TagObject, ctx.Global), ctx.Strict)
	case TargetMember:
		ctx.Put(boxOrSelf(ctx, base), object.KeyValue(t.Key), val, base, ctx.Strict)
	case TargetIndex:
		ctx.Put(boxOrSelf(ctx, base), idx, val, base, ctx.Strict)
	}
	return val
}

func boxOrSelf(ctx *object.Context, v object.Value) *object.Object {
	if v.IsObject() {
		return v.Object
	}
	return ctx.ToObject(v).Object
}

// evalBase evaluates the Member/Index target's base (and index) exactly
// once; for non-property targets it is a no-op.
func evalBase(ctx *object.Context, t *Target) (base, idx object.Value) {
	if t.Kind == TargetMember || t.Kind == TargetIndex {
		base = object.Eval(ctx, t.ObjExpr)
	}
	if t.Kind == TargetIndex {
		idx = object.Eval(ctx, t.IdxExpr)
	}
	return
}

func readTargetWithBase(ctx *object.Context, t *Target, base, idx object.Value) object.Value {
	switch t.Kind {
	case TargetMember:
		return getProp(ctx, base, object.KeyValue(t.Key))
	case TargetIndex:
		return getProp(ctx, base, idx)
	default:
		return readTarget(ctx, t)
	}
}

// SimpleAssign implements plain `target = value`.
func SimpleAssign(t Target, value object.Op) object.Op {
	return object.Op{Native: opSimpleAssign, Meta: assignMeta{t, OpAdd, false}, Children: object.OpList{value}}
}

type assignMeta struct {
	target  Target
	op      BinOp
	compound bool
}

func opSimpleAssign(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(assignMeta)
	base, idx := evalBase(ctx, &m.target)
	val := object.Eval(ctx, &op.Children[0])
	return writeTarget(ctx, &m.target, base, idx, val)
}

// CompoundAssign implements `target op= value` (+=, -=, *=, /=, %=, <<=,
// >>=, >>>=, &=, |=, ^=), reading through the target's current value,
// applying op, and writing back.
func CompoundAssign(t Target, kind BinOp, value object.Op) object.Op {
	return object.Op{Native: opCompoundAssign, Meta: assignMeta{t, kind, true}, Children: object.OpList{value}}
}

func opCompoundAssign(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(assignMeta)
	base, idx := evalBase(ctx, &m.target)
	cur := readTargetWithBase(ctx, &m.target, base, idx)
	rhs := object.Eval(ctx, &op.Children[0])
	result := evalBinary(ctx, m.op, cur, rhs)
	return writeTarget(ctx, &m.target, base, idx, result)
}

// PreIncDec implements prefix ++/-- on an assignable target.
func PreIncDec(t Target, delta float64) object.Op {
	return object.Op{Native: opPreIncDec, Meta: incMeta{t, delta}}
}

type incMeta struct {
	target Target
	delta  float64
}

func opPreIncDec(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(incMeta)
	base, idx := evalBase(ctx, &m.target)
	cur := ctx.ToBinary(readTargetWithBase(ctx, &m.target, base, idx))
	result := object.Bin(cur + m.delta)
	writeTarget(ctx, &m.target, base, idx, result)
	return result
}

// PostIncDec implements postfix ++/--, yielding the pre-update value.
func PostIncDec(t Target, delta float64) object.Op {
	return object.Op{Native: opPostIncDec, Meta: incMeta{t, delta}}
}

func opPostIncDec(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(incMeta)
	base, idx := evalBase(ctx, &m.target)
	cur := ctx.ToBinary(readTargetWithBase(ctx, &m.target, base, idx))
	writeTarget(ctx, &m.target, base, idx, object.Bin(cur+m.delta))
	return object.Bin(cur)
}
