package parser

import (
	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/token"
)

// exprResult pairs a compiled expression Op with its lvalue classification,
// when the expression is syntactically a valid assignment target (ES5
// 11.13.1's "a Reference... whose base is not an environment record"
// restated as: identifiers, and any member/index access, but never the
// result of a call or literal).
type exprResult struct {
	op     object.Op
	target *interp.Target
	isName bool // true only for a bare identifier (used by typeof's special-case)
	name   string
}

func (p *Parser) resolveTarget(name string) interp.Target {
	if name == "arguments" && !p.scope.isGlobal {
		p.scope.usesArguments = true
		return interp.Target{Kind: interp.TargetLocalSlot, Slot: object.ArgumentsSlot}
	}
	hops := 0
	for s := p.scope; s != nil && !s.isGlobal; s = s.parent {
		if slot, ok := s.names[name]; ok {
			if hops == 0 {
				return interp.Target{Kind: interp.TargetLocalSlot, Slot: slot}
			}
			return interp.Target{Kind: interp.TargetParentSlot, Hops: hops, Slot: slot}
		}
		hops++
	}
	return interp.Target{Kind: interp.TargetName, Key: p.keys.MakeFromString(name)}
}

func (p *Parser) resolveIdentifierExpr(name string) exprResult {
	t := p.resolveTarget(name)
	var op object.Op
	switch t.Kind {
	case interp.TargetLocalSlot:
		op = interp.LocalSlot(t.Slot)
	case interp.TargetParentSlot:
		op = interp.ParentSlot(t.Hops, t.Slot)
	default:
		op = interp.Name(t.Key)
	}
	return exprResult{op: op, target: &t, isName: true, name: name}
}

// exprToTarget re-derives a Target from a previously parsed expression when
// the parser already classified it as assignable (Member/Index/identifier);
// used by for-in's bare-expression left-hand-side form.
func (p *Parser) exprToTarget(r exprResult) (interp.Target, bool) {
	if r.target == nil {
		return interp.Target{}, false
	}
	return *r.target, true
}

// ---- entry points -------------------------------------------------------

func (p *Parser) parseExpression() object.Op {
	first := p.parseAssignmentExpression()
	if p.cur.Kind != token.COMMA {
		return first
	}
	ops := object.OpList{first}
	for p.cur.Kind == token.COMMA {
		p.advance()
		ops = append(ops, p.parseAssignmentExpression())
	}
	return interp.Sequence(ops)
}

func (p *Parser) parseExpressionNoIn() object.Op {
	saved := p.noIn
	p.noIn = true
	defer func() { p.noIn = saved }()
	return p.parseExpression()
}

func (p *Parser) parseAssignmentExpressionNoIn() object.Op {
	saved := p.noIn
	p.noIn = true
	defer func() { p.noIn = saved }()
	return p.parseAssignmentExpression()
}

var compoundAssignOps = map[token.Kind]interp.BinOp{
	token.PLUS_ASSIGN:                    interp.OpAdd,
	token.MINUS_ASSIGN:                   interp.OpSub,
	token.MULTIPLY_ASSIGN:                interp.OpMul,
	token.DIVIDE_ASSIGN:                  interp.OpDiv,
	token.MODULO_ASSIGN:                  interp.OpMod,
	token.LEFT_SHIFT_ASSIGN:               interp.OpShl,
	token.RIGHT_SHIFT_ASSIGN:              interp.OpShr,
	token.UNSIGNED_RIGHT_SHIFT_ASSIGN:     interp.OpUShr,
	token.AND_ASSIGN:                     interp.OpBitAnd,
	token.OR_ASSIGN:                      interp.OpBitOr,
	token.XOR_ASSIGN:                     interp.OpBitXor,
}

func (p *Parser) parseAssignmentExpression() object.Op {
	left := p.parseConditional()

	if p.cur.Kind == token.ASSIGN {
		target, ok := p.exprToTarget(left)
		if !ok {
			p.fail("invalid assignment left-hand side")
		}
		p.advance()
		value := p.parseAssignmentExpression()
		return interp.SimpleAssign(target, value)
	}
	if kind, ok := compoundAssignOps[p.cur.Kind]; ok {
		target, okT := p.exprToTarget(left)
		if !okT {
			p.fail("invalid assignment left-hand side")
		}
		p.advance()
		value := p.parseAssignmentExpression()
		return interp.CompoundAssign(target, kind, value)
	}
	return left.op
}

// parseConditional implements ES5 11.12's ConditionalExpression
// (`a ? b : c`) on top of the logical-OR level.
func (p *Parser) parseConditional() exprResult {
	cond := p.parseLogicalOr()
	if p.cur.Kind != token.QUESTION {
		return cond
	}
	p.advance()
	savedNoIn := p.noIn
	p.noIn = false
	then := p.parseAssignmentExpression()
	p.noIn = savedNoIn
	p.expect(token.COLON)
	els := p.parseAssignmentExpression()
	return exprResult{op: interp.Conditional(cond.op, then, els)}
}

func (p *Parser) parseLogicalOr() exprResult {
	left := p.parseLogicalAnd()
	for p.cur.Kind == token.LOGICAL_OR {
		p.advance()
		right := p.parseLogicalAnd()
		left = exprResult{op: interp.Logical(false, left.op, right.op)}
	}
	return left
}

func (p *Parser) parseLogicalAnd() exprResult {
	left := p.parseBitOr()
	for p.cur.Kind == token.LOGICAL_AND {
		p.advance()
		right := p.parseBitOr()
		left = exprResult{op: interp.Logical(true, left.op, right.op)}
	}
	return left
}

func (p *Parser) parseBitOr() exprResult {
	left := p.parseBitXor()
	for p.cur.Kind == token.BIT_OR {
		p.advance()
		right := p.parseBitXor()
		left = exprResult{op: interp.Binary(interp.OpBitOr, left.op, right.op)}
	}
	return left
}

func (p *Parser) parseBitXor() exprResult {
	left := p.parseBitAnd()
	for p.cur.Kind == token.BIT_XOR {
		p.advance()
		right := p.parseBitAnd()
		left = exprResult{op: interp.Binary(interp.OpBitXor, left.op, right.op)}
	}
	return left
}

func (p *Parser) parseBitAnd() exprResult {
	left := p.parseEquality()
	for p.cur.Kind == token.BIT_AND {
		p.advance()
		right := p.parseEquality()
		left = exprResult{op: interp.Binary(interp.OpBitAnd, left.op, right.op)}
	}
	return left
}

func (p *Parser) parseEquality() exprResult {
	left := p.parseRelational()
	for {
		var kind interp.BinOp
		switch p.cur.Kind {
		case token.EQUAL:
			kind = interp.OpEq
		case token.NOT_EQUAL:
			kind = interp.OpNotEq
		case token.STRICT_EQUAL:
			kind = interp.OpStrictEq
		case token.STRICT_NOT_EQUAL:
			kind = interp.OpStrictNotEq
		default:
			return left
		}
		p.advance()
		right := p.parseRelational()
		left = exprResult{op: interp.Binary(kind, left.op, right.op)}
	}
}

func (p *Parser) parseRelational() exprResult {
	left := p.parseShift()
	for {
		var kind interp.BinOp
		switch p.cur.Kind {
		case token.LESS:
			kind = interp.OpLess
		case token.LESS_EQUAL:
			kind = interp.OpLessEq
		case token.GREATER:
			kind = interp.OpGreater
		case token.GREATER_EQUAL:
			kind = interp.OpGreaterEq
		case token.INSTANCEOF:
			kind = interp.OpInstanceof
		case token.IN:
			if p.noIn {
				return left
			}
			kind = interp.OpIn
		default:
			return left
		}
		p.advance()
		right := p.parseShift()
		left = exprResult{op: interp.Binary(kind, left.op, right.op)}
	}
}

func (p *Parser) parseShift() exprResult {
	left := p.parseAdditive()
	for {
		var kind interp.BinOp
		switch p.cur.Kind {
		case token.LEFT_SHIFT:
			kind = interp.OpShl
		case token.RIGHT_SHIFT:
			kind = interp.OpShr
		case token.UNSIGNED_RIGHT_SHIFT:
			kind = interp.OpUShr
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		left = exprResult{op: interp.Binary(kind, left.op, right.op)}
	}
}

func (p *Parser) parseAdditive() exprResult {
	left := p.parseMultiplicative()
	for {
		var kind interp.BinOp
		switch p.cur.Kind {
		case token.PLUS:
			kind = interp.OpAdd
		case token.MINUS:
			kind = interp.OpSub
		default:
			return left
		}
		p.advance()
		right := p.parseMultiplicative()
		left = exprResult{op: interp.Binary(kind, left.op, right.op)}
	}
}

func (p *Parser) parseMultiplicative() exprResult {
	left := p.parseUnary()
	for {
		var kind interp.BinOp
		switch p.cur.Kind {
		case token.MULTIPLY:
			kind = interp.OpMul
		case token.DIVIDE:
			kind = interp.OpDiv
		case token.MODULO:
			kind = interp.OpMod
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		left = exprResult{op: interp.Binary(kind, left.op, right.op)}
	}
}

func (p *Parser) parseUnary() exprResult {
	switch p.cur.Kind {
	case token.PLUS:
		p.advance()
		return exprResult{op: interp.UnaryPlus(p.parseUnary().op)}
	case token.MINUS:
		p.advance()
		return exprResult{op: interp.UnaryMinus(p.parseUnary().op)}
	case token.LOGICAL_NOT:
		p.advance()
		return exprResult{op: interp.LogicalNot(p.parseUnary().op)}
	case token.BIT_NOT:
		p.advance()
		return exprResult{op: interp.BitNot(p.parseUnary().op)}
	case token.TYPEOF:
		p.advance()
		operand := p.parseUnary()
		if operand.isName && operand.target != nil && operand.target.Kind == interp.TargetName {
			return exprResult{op: interp.Typeof(interp.NameTypeof(operand.target.Key))}
		}
		return exprResult{op: interp.Typeof(operand.op)}
	case token.VOID:
		p.advance()
		return exprResult{op: interp.Void(p.parseUnary().op)}
	case token.DELETE:
		p.advance()
		operand := p.parseUnary()
		return exprResult{op: p.buildDelete(operand)}
	case token.INCREMENT:
		p.advance()
		operand := p.parseUnary()
		target, ok := p.exprToTarget(operand)
		if !ok {
			p.fail("invalid increment operand")
		}
		return exprResult{op: interp.PreIncDec(target, 1)}
	case token.DECREMENT:
		p.advance()
		operand := p.parseUnary()
		target, ok := p.exprToTarget(operand)
		if !ok {
			p.fail("invalid decrement operand")
		}
		return exprResult{op: interp.PreIncDec(target, -1)}
	default:
		return p.parsePostfix()
	}
}

// buildDelete implements ES5 11.4.1: deleting a bare identifier is a
// SyntaxError in strict mode and otherwise either removes a with/catch
// dynamic binding (DeleteName) or is a no-op returning false for a declared
// var/parameter (which, unlike a with-introduced binding, is not
// configurable); deleting a non-reference expression evaluates it for
// effect and always yields true; deleting a property defers to Context.Delete.
func (p *Parser) buildDelete(operand exprResult) object.Op {
	if operand.isName {
		if p.scope.strict {
			p.fail("delete of an unqualified identifier in strict mode")
		}
		if operand.target != nil && operand.target.Kind == interp.TargetName {
			return interp.DeleteName(operand.target.Key)
		}
		return interp.Sequence([]object.Op{operand.op, interp.Literal(object.False)})
	}
	if operand.target == nil {
		return interp.Sequence([]object.Op{operand.op, interp.Literal(object.True)})
	}
	switch operand.target.Kind {
	case interp.TargetMember:
		return interp.Delete(*operand.target.ObjExpr, nil, operand.target.Key)
	case interp.TargetIndex:
		return interp.Delete(*operand.target.ObjExpr, operand.target.IdxExpr, 0)
	default:
		return interp.Literal(object.True)
	}
}

func (p *Parser) parsePostfix() exprResult {
	operand := p.parseLeftHandSide()
	if p.cur.PrecededByNL {
		return operand
	}
	switch p.cur.Kind {
	case token.INCREMENT:
		p.advance()
		target, ok := p.exprToTarget(operand)
		if !ok {
			p.fail("invalid increment operand")
		}
		return exprResult{op: interp.PostIncDec(target, 1)}
	case token.DECREMENT:
		p.advance()
		target, ok := p.exprToTarget(operand)
		if !ok {
			p.fail("invalid decrement operand")
		}
		return exprResult{op: interp.PostIncDec(target, -1)}
	}
	return operand
}

// parseLeftHandSide parses NewExpression / CallExpression / MemberExpression
// as one combined loop (ES5 11.2), since `new` without arguments binds to
// the nearest enclosing member expression and calls can appear after any
// member access.
func (p *Parser) parseLeftHandSide() exprResult {
	var cur exprResult
	if p.cur.Kind == token.NEW {
		cur = p.parseNewExpression()
	} else {
		cur = p.parsePrimary()
	}
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			name := p.expectIdentifierName()
			k := p.keys.MakeFromString(name)
			obj := cur.op
			cur = exprResult{op: interp.Member(obj, k), target: &interp.Target{Kind: interp.TargetMember, Key: k, ObjExpr: &obj}}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			obj := cur.op
			cur = exprResult{op: interp.Index(obj, idx), target: &interp.Target{Kind: interp.TargetIndex, ObjExpr: &obj, IdxExpr: &idx}}
		case token.LPAREN:
			args := p.parseArguments()
			cur = p.buildCall(cur, args, false)
		default:
			return cur
		}
	}
}

// parseNewExpression handles `new MemberExpression Arguments?`; nested
// `new new X()` chains are not supported (a pragmatic simplification — see
// DESIGN.md) since they are vanishingly rare in real scripts.
func (p *Parser) parseNewExpression() exprResult {
	p.expect(token.NEW)
	callee := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			p.advance()
			name := p.expectIdentifierName()
			k := p.keys.MakeFromString(name)
			obj := callee.op
			callee = exprResult{op: interp.Member(obj, k), target: &interp.Target{Kind: interp.TargetMember, Key: k, ObjExpr: &obj}}
		case token.LBRACKET:
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			obj := callee.op
			callee = exprResult{op: interp.Index(obj, idx), target: &interp.Target{Kind: interp.TargetIndex, ObjExpr: &obj, IdxExpr: &idx}}
		default:
			var args []object.Op
			if p.cur.Kind == token.LPAREN {
				args = p.parseArguments()
			}
			return p.buildCall(callee, args, true)
		}
	}
}

func (p *Parser) parseArguments() []object.Op {
	p.expect(token.LPAREN)
	var args []object.Op
	for p.cur.Kind != token.RPAREN {
		if len(args) > 0 {
			p.expect(token.COMMA)
		}
		args = append(args, p.parseAssignmentExpression())
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) buildCall(callee exprResult, args []object.Op, construct bool) exprResult {
	if callee.target != nil && callee.target.Kind == interp.TargetMember {
		return exprResult{op: interp.Call(interp.CallMethodName, callee.target.Key, construct, *callee.target.ObjExpr, nil, args)}
	}
	if callee.target != nil && callee.target.Kind == interp.TargetIndex {
		return exprResult{op: interp.Call(interp.CallMethodIndex, 0, construct, *callee.target.ObjExpr, callee.target.IdxExpr, args)}
	}
	kind := interp.CallPlain
	if callee.isName && callee.name == "eval" {
		kind = interp.CallEval
	}
	return exprResult{op: interp.Call(kind, 0, construct, callee.op, nil, args)}
}
