package parser

import (
	"strconv"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/token"
)

func (p *Parser) parsePrimary() exprResult {
	switch p.cur.Kind {
	case token.THIS:
		p.advance()
		return exprResult{op: interp.ThisExpr()}
	case token.IDENTIFIER:
		name := p.cur.StringValue
		p.advance()
		return p.resolveIdentifierExpr(name)
	case token.NULL:
		p.advance()
		return exprResult{op: interp.Literal(object.Null)}
	case token.TRUE:
		p.advance()
		return exprResult{op: interp.Literal(object.True)}
	case token.FALSE:
		p.advance()
		return exprResult{op: interp.Literal(object.False)}
	case token.INTEGER:
		v := p.cur.IntValue
		p.advance()
		return exprResult{op: interp.Literal(object.Int(v))}
	case token.BINARY:
		v := p.cur.BinaryValue
		p.advance()
		return exprResult{op: interp.Literal(object.Bin(v))}
	case token.STRING, token.ESCAPED_STRING:
		v := p.cur.StringValue
		p.advance()
		return exprResult{op: interp.Literal(object.InlineString(v))}
	case token.REGEXP:
		body, flags := p.cur.RegexBody, p.cur.RegexFlags
		p.advance()
		return exprResult{op: interp.RegexLiteral(body, flags)}
	case token.LPAREN:
		p.advance()
		savedNoIn := p.noIn
		p.noIn = false
		expr := p.parseExpression()
		p.noIn = savedNoIn
		p.expect(token.RPAREN)
		return exprResult{op: expr}
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		lit, _ := p.parseFunctionLiteral(false)
		return exprResult{op: lit}
	default:
		p.fail("unexpected token %s", p.cur.Kind)
		return exprResult{}
	}
}

func (p *Parser) parseArrayLiteral() exprResult {
	p.expect(token.LBRACKET)
	var elements []object.Op
	var elisions []bool
	for p.cur.Kind != token.RBRACKET {
		if p.cur.Kind == token.COMMA {
			elements = append(elements, object.Op{})
			elisions = append(elisions, true)
			p.advance()
			continue
		}
		elements = append(elements, p.parseAssignmentExpression())
		elisions = append(elisions, false)
		if p.cur.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)
	return exprResult{op: interp.ArrayLiteral(elements, elisions)}
}

func (p *Parser) parseObjectLiteral() exprResult {
	p.expect(token.LBRACE)
	var entries []interp.ObjectEntry
	for p.cur.Kind != token.RBRACE {
		entries = append(entries, p.parsePropertyAssignment())
		if p.cur.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return exprResult{op: interp.ObjectLiteral(entries)}
}

// parsePropertyAssignment handles ES5 11.1.5's three forms: `get name() {}`,
// `set name(v) {}`, and plain `name: value`. "get"/"set" are contextual
// (not reserved words), so they're only treated as accessor markers when
// immediately followed by a property-name token rather than `:` or `,`.
func (p *Parser) parsePropertyAssignment() interp.ObjectEntry {
	if p.cur.Kind == token.IDENTIFIER && (p.cur.StringValue == "get" || p.cur.StringValue == "set") {
		isGetter := p.cur.StringValue == "get"
		if p.peek.Kind != token.COLON && p.peek.Kind != token.COMMA && p.peek.Kind != token.RBRACE {
			p.advance()
			name := p.parsePropertyName()
			fn := p.parseAccessorBody(isGetter)
			return interp.ObjectEntry{Key: name, Value: fn, IsGetter: isGetter, IsSetter: !isGetter}
		}
	}
	name := p.parsePropertyName()
	p.expect(token.COLON)
	value := p.parseAssignmentExpression()
	return interp.ObjectEntry{Key: name, Value: value}
}

func (p *Parser) parsePropertyName() key.Key {
	switch p.cur.Kind {
	case token.IDENTIFIER:
		name := p.cur.StringValue
		p.advance()
		return p.keys.MakeFromString(name)
	case token.STRING, token.ESCAPED_STRING:
		name := p.cur.StringValue
		p.advance()
		return p.keys.MakeFromString(name)
	case token.INTEGER:
		v := p.cur.IntValue
		p.advance()
		return p.keys.MakeFromString(strconv.Itoa(int(v)))
	default:
		// IdentifierName also includes reserved words used as property names
		// (e.g. `{ if: 1 }`); accept any keyword token by its literal text.
		name := p.cur.Kind.String()
		p.advance()
		return p.keys.MakeFromString(name)
	}
}

func (p *Parser) parseAccessorBody(isGetter bool) object.Op {
	p.expect(token.LPAREN)
	var params []string
	if isGetter {
		p.expect(token.RPAREN)
	} else {
		params = append(params, p.expectIdentifierName())
		p.expect(token.RPAREN)
	}

	outerScope := p.scope
	outerLoop, outerSwitch, outerLabels := p.loopDepth, p.switchDepth, p.labelStack
	p.scope = newFuncScope(outerScope, outerScope.strict)
	p.loopDepth, p.switchDepth, p.labelStack = 0, 0, nil
	for _, prm := range params {
		p.scope.declare(prm)
	}

	p.expect(token.LBRACE)
	body := p.parseStatementList(token.RBRACE)
	p.expect(token.RBRACE)

	tmpl := &interp.FunctionTemplate{
		ParameterCount: len(params),
		Body:           body,
		NeedArguments:  p.scope.usesArguments,
		Strict:         p.scope.strict,
	}
	p.scope = outerScope
	p.loopDepth, p.switchDepth, p.labelStack = outerLoop, outerSwitch, outerLabels
	return interp.FunctionLiteral(tmpl)
}
