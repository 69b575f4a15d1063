package interp

import (
	"strconv"

	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

// Block runs a sequence of statements in order, stopping early if a child
// sets a non-None Signal (break/continue/return) for an enclosing construct
// to handle.
func Block(body []object.Op) object.Op {
	return object.Op{Native: opBlock, Children: object.OpList(body)}
}

func opBlock(ctx *object.Context, op *object.Op) object.Value {
	return object.EvalList(ctx, op.Children)
}

// ExprStatement evaluates expr for its side effect and records the result in
// ctx.LastValue, the completion-value contract EvalInput's result string
// reads.
func ExprStatement(expr object.Op) object.Op {
	return object.Op{Native: opExprStatement, Children: object.OpList{expr}}
}

func opExprStatement(ctx *object.Context, op *object.Op) object.Value {
	v := object.Eval(ctx, &op.Children[0])
	ctx.LastValue = v
	return v
}

// Empty is a no-op statement (`;`).
func Empty() object.Op {
	return object.Op{Native: func(ctx *object.Context, op *object.Op) object.Value { return object.Undefined }}
}

// If implements `if (cond) then [else els]`; els may be nil to mean
// "absent".
func If(cond, then object.Op, els *object.Op) object.Op {
	children := object.OpList{cond, then}
	if els != nil {
		children = append(children, *els)
	}
	return object.Op{Native: opIf, Children: children, Meta: els != nil}
}

func opIf(ctx *object.Context, op *object.Op) object.Value {
	if object.Eval(ctx, &op.Children[0]).IsTrue() {
		return object.Eval(ctx, &op.Children[1])
	}
	if op.Meta.(bool) {
		return object.Eval(ctx, &op.Children[2])
	}
	return object.Undefined
}

// loopOutcome reports how a loop body's execution should affect the
// enclosing loop, after stripping any break/continue signal the body set
// that targets this loop (by being unlabelled or matching ownLabel).
type loopOutcome int

const (
	loopContinueNormally loopOutcome = iota
	loopBreak
	loopPropagate // signal (return, or break/continue for an outer label) keeps unwinding
)

// resolveLoopSignal inspects ctx.Signal after running one iteration of a
// loop body labelled ownLabel (the empty string if the loop is unlabelled)
// and clears the signal when it is consumed here.
func resolveLoopSignal(ctx *object.Context, ownLabel string) loopOutcome {
	switch ctx.Signal {
	case object.SignalNone:
		return loopContinueNormally
	case object.SignalContinue:
		if ctx.SignalLabel == "" || ctx.SignalLabel == ownLabel {
			ctx.Signal = object.SignalNone
			ctx.SignalLabel = ""
			return loopContinueNormally
		}
		return loopPropagate
	case object.SignalBreak:
		if ctx.SignalLabel == "" || ctx.SignalLabel == ownLabel {
			ctx.Signal = object.SignalNone
			ctx.SignalLabel = ""
			return loopBreak
		}
		return loopPropagate
	default: // SignalReturn
		return loopPropagate
	}
}

type loopMeta struct{ label string }

// While implements the `while (cond) body` loop.
func While(label string, cond, body object.Op) object.Op {
	return object.Op{Native: opWhile, Meta: loopMeta{label}, Children: object.OpList{cond, body}}
}

func opWhile(ctx *object.Context, op *object.Op) object.Value {
	label := op.Meta.(loopMeta).label
	for object.Eval(ctx, &op.Children[0]).IsTrue() {
		object.Eval(ctx, &op.Children[1])
		switch resolveLoopSignal(ctx, label) {
		case loopBreak:
			return object.Undefined
		case loopPropagate:
			return object.Undefined
		}
	}
	return object.Undefined
}

// DoWhile implements `do body while (cond)`.
func DoWhile(label string, body, cond object.Op) object.Op {
	return object.Op{Native: opDoWhile, Meta: loopMeta{label}, Children: object.OpList{body, cond}}
}

func opDoWhile(ctx *object.Context, op *object.Op) object.Value {
	label := op.Meta.(loopMeta).label
	for {
		object.Eval(ctx, &op.Children[0])
		switch resolveLoopSignal(ctx, label) {
		case loopBreak:
			return object.Undefined
		case loopPropagate:
			return object.Undefined
		}
		if !object.Eval(ctx, &op.Children[1]).IsTrue() {
			return object.Undefined
		}
	}
}

// ForClassic implements `for (init; cond; update) body`. init/cond/update
// may each be a zero-Op (absent); presence is tracked via Meta flags since a
// zero Op has a nil Native and must never be evaluated.
type forFlags struct {
	label             string
	hasInit, hasCond, hasUpdate bool
}

func ForClassic(label string, init, cond, update, body object.Op, hasInit, hasCond, hasUpdate bool) object.Op {
	return object.Op{
		Native:   opForClassic,
		Meta:     forFlags{label, hasInit, hasCond, hasUpdate},
		Children: object.OpList{init, cond, update, body},
	}
}

func opForClassic(ctx *object.Context, op *object.Op) object.Value {
	f := op.Meta.(forFlags)
	if f.hasInit {
		object.Eval(ctx, &op.Children[0])
	}
	for {
		if f.hasCond && !object.Eval(ctx, &op.Children[1]).IsTrue() {
			return object.Undefined
		}
		object.Eval(ctx, &op.Children[3])
		switch resolveLoopSignal(ctx, f.label) {
		case loopBreak:
			return object.Undefined
		case loopPropagate:
			return object.Undefined
		}
		if f.hasUpdate {
			object.Eval(ctx, &op.Children[2])
		}
	}
}

// ForIn implements `for (target in objExpr) body`, enumerating objExpr's
// own and inherited enumerable string keys and array indices in the order
// OwnKeys/prototype-walk produce them (ES5 leaves the exact order
// unspecified beyond "own properties before inherited", which this
// implementation honours).
type forInMeta struct {
	label  string
	target Target
}

func ForIn(label string, target Target, objExpr, body object.Op) object.Op {
	return object.Op{Native: opForIn, Meta: forInMeta{label, target}, Children: object.OpList{objExpr, body}}
}

func opForIn(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(forInMeta)
	objVal := object.Eval(ctx, &op.Children[0])
	if objVal.IsUndefined() || objVal.IsNull() {
		return object.Undefined
	}
	base := objVal
	if !base.IsObject() {
		base = ctx.ToObject(base)
	}
	seen := map[key.Key]bool{}
	visit := func(k key.Key) loopOutcome {
		if seen[k] {
			return loopContinueNormally
		}
		seen[k] = true
		writeTarget(ctx, &m.target, object.Value{}, object.Value{}, object.KeyValue(k))
		object.Eval(ctx, &op.Children[1])
		return resolveLoopSignal(ctx, m.label)
	}
	for cur := base.Object; cur != nil; cur = cur.Prototype {
		for i := 0; i < cur.ElementCount; i++ {
			if _, ok := cur.GetElement(i); !ok {
				continue
			}
			switch visit(ctx.Keys.MakeFromString(strconv.Itoa(i))) {
			case loopBreak, loopPropagate:
				return object.Undefined
			}
		}
		for _, k := range cur.OwnKeys() {
			switch visit(k) {
			case loopBreak, loopPropagate:
				return object.Undefined
			}
		}
	}
	return object.Undefined
}

// Break/Continue carry an optional label (empty = nearest unlabelled
// enclosing loop/switch).
func Break(label string) object.Op {
	return object.Op{Native: opBreak, Label: label}
}

func opBreak(ctx *object.Context, op *object.Op) object.Value {
	ctx.Signal = object.SignalBreak
	ctx.SignalLabel = op.Label
	return object.Undefined
}

func Continue(label string) object.Op {
	return object.Op{Native: opContinue, Label: label}
}

func opContinue(ctx *object.Context, op *object.Op) object.Value {
	ctx.Signal = object.SignalContinue
	ctx.SignalLabel = op.Label
	return object.Undefined
}

// Return implements `return [expr]`; a nil expr yields undefined.
func Return(expr *object.Op) object.Op {
	if expr == nil {
		return object.Op{Native: opReturnVoid}
	}
	return object.Op{Native: opReturn, Children: object.OpList{*expr}}
}

func opReturn(ctx *object.Context, op *object.Op) object.Value {
	v := object.Eval(ctx, &op.Children[0])
	ctx.ReturnValue = v
	ctx.Signal = object.SignalReturn
	return v
}

func opReturnVoid(ctx *object.Context, op *object.Op) object.Value {
	ctx.ReturnValue = object.Undefined
	ctx.Signal = object.SignalReturn
	return object.Undefined
}

// Throw implements `throw expr`, panicking with the script exception
// sentinel the nearest enclosing Try recovers.
func Throw(expr object.Op) object.Op {
	return object.Op{Native: opThrow, Children: object.OpList{expr}}
}

func opThrow(ctx *object.Context, op *object.Op) object.Value {
	v := object.Eval(ctx, &op.Children[0])
	panic(&object.ThrownValue{Value: v})
}

// Labeled wraps any statement with a label so Break/Continue naming it can
// find it; for loop/switch bodies the label is threaded directly into the
// loop/switch op instead (so continue can reach it) — Labeled exists for
// labelling a non-loop statement, where only break is meaningful.
func Labeled(label string, body object.Op) object.Op {
	return object.Op{Native: opLabeled, Label: label, Children: object.OpList{body}}
}

func opLabeled(ctx *object.Context, op *object.Op) object.Value {
	result := object.Eval(ctx, &op.Children[0])
	if ctx.Signal == object.SignalBreak && ctx.SignalLabel == op.Label {
		ctx.Signal = object.SignalNone
		ctx.SignalLabel = ""
	}
	return result
}

// With implements the `with (expr) body` statement: pushes expr (boxed if
// necessary) onto the dynamic scope chain for the duration of body.
func With(expr, body object.Op) object.Op {
	return object.Op{Native: opWith, Children: object.OpList{expr, body}}
}

func opWith(ctx *object.Context, op *object.Op) object.Value {
	v := object.Eval(ctx, &op.Children[0])
	obj := boxOrSelf(ctx, v)
	pop := ctx.PushScope(obj)
	defer pop()
	return object.Eval(ctx, &op.Children[1])
}

// SwitchCase is one `case expr:`/`default:` clause; Test is nil for default.
type SwitchCase struct {
	Test *object.Op
	Body object.OpList
}

type switchMeta struct {
	label      string
	cases      []SwitchCase
	defaultIdx int // -1 if no default
}

// Switch implements the `switch (disc) { cases... }` statement per ES5
// 12.11: tests are evaluated top to bottom looking for a strict-equals
// match; on no match, control falls through to the default clause (if any)
// and its position in source order, not necessarily last.
func Switch(label string, disc object.Op, cases []SwitchCase, defaultIdx int) object.Op {
	return object.Op{Native: opSwitch, Meta: switchMeta{label, cases, defaultIdx}, Children: object.OpList{disc}}
}

func opSwitch(ctx *object.Context, op *object.Op) object.Value {
	m := op.Meta.(switchMeta)
	disc := object.Eval(ctx, &op.Children[0])

	start := -1
	for i, c := range m.cases {
		if c.Test == nil {
			continue
		}
		if object.StrictEquals(disc, object.Eval(ctx, c.Test)) {
			start = i
			break
		}
	}
	if start == -1 {
		start = m.defaultIdx
	}
	if start == -1 {
		return object.Undefined
	}
	for i := start; i < len(m.cases); i++ {
		object.EvalList(ctx, m.cases[i].Body)
		switch resolveLoopSignal(ctx, m.label) {
		case loopBreak:
			return object.Undefined
		case loopPropagate:
			return object.Undefined
		}
	}
	return object.Undefined
}

// TryMeta carries a Try statement's catch/finally wiring.
type TryMeta struct {
	Body        object.OpList
	HasCatch    bool
	CatchParam  key.Key
	CatchBody   object.OpList
	HasFinally  bool
	FinallyBody object.OpList
}

// Try implements `try { } [catch (e) { }] [finally { }]` using panic/recover
// to stand in for the original's setjmp/longjmp: a ThrownValue panic from
// Body is recovered here, bound to CatchParam in a fresh scope object pushed
// onto ctx.Scopes (ES5 12.14's catch-introduces-a-binding semantics), and
// Finally always runs — including when Body/Catch returned, broke,
// continued, or rethrew — by running it after deciding the outcome and then
// re-raising/re-signalling whatever was pending.
func Try(m TryMeta) object.Op {
	return object.Op{Native: opTry, Meta: m}
}

func opTry(ctx *object.Context, op *object.Op) (result object.Value) {
	m := op.Meta.(TryMeta)

	runFinally := func() {
		if !m.HasFinally {
			return
		}
		savedSignal, savedLabel, savedRet := ctx.Signal, ctx.SignalLabel, ctx.ReturnValue
		ctx.Signal, ctx.SignalLabel = object.SignalNone, ""
		object.EvalList(ctx, m.FinallyBody)
		if ctx.Signal == object.SignalNone {
			ctx.Signal, ctx.SignalLabel, ctx.ReturnValue = savedSignal, savedLabel, savedRet
		}
		// else: finally itself produced a new completion (return/break/
		// continue/throw), which per ES5 12.14 overrides the pending one.
	}

	var caught *object.ThrownValue
	func() {
		defer func() {
			if r := recover(); r != nil {
				tv, ok := r.(*object.ThrownValue)
				if !ok {
					runFinally()
					panic(r)
				}
				caught = tv
			}
		}()
		result = object.EvalList(ctx, m.Body)
	}()

	if caught != nil {
		if !m.HasCatch {
			runFinally()
			panic(caught)
		}
		catchScope := object.New(object.KindPlain, nil)
		ctx.Put(catchScope, object.KeyValue(m.CatchParam), caught.Value, object.Value{Tag: object.TagObject, Object: catchScope}, false)
		pop := ctx.PushScope(catchScope)
		var rethrow interface{}
		func() {
			defer func() {
				pop()
				if r := recover(); r != nil {
					rethrow = r
				}
			}()
			result = object.EvalList(ctx, m.CatchBody)
		}()
		if rethrow != nil {
			runFinally()
			panic(rethrow)
		}
	}

	runFinally()
	return result
}

// Debugger is a no-op statement; the engine has no debugger hook to invoke.
func Debugger() object.Op {
	return object.Op{Native: func(ctx *object.Context, op *object.Op) object.Value { return object.Undefined }}
}
