// Package parser compiles ES5 source text into the object.Op trees
// internal/interp's constructors produce. It is a hand-written
// recursive-descent, one-token-lookahead parser split one file per
// grammar concern, climbing the full ES5 precedence ladder and resolving
// identifiers into local/parent/dynamic environment slots as it goes.
package parser

import (
	"fmt"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/lexer"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/token"
)

// SyntaxError is returned by Parse for malformed source; internal/script
// turns it into a script-visible SyntaxError via ctx.NewSyntaxError.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser holds the one-token-lookahead cursor over the lexer plus the
// per-function-scope slot-resolution state, resolving identifiers to
// local/parent environment slots here at parse time rather than as a
// later AST pass.
type Parser struct {
	lex  *lexer.Lexer
	keys *key.Table

	cur, peek token.Token

	scope *funcScope

	loopDepth   int
	switchDepth int
	labelStack  []string
	noIn        bool

	err *SyntaxError
}

// New creates a parser over source, interning identifiers into keys.
func New(source string, keys *key.Table) *Parser {
	p := &Parser{lex: lexer.New(source), keys: keys, scope: newGlobalScope()}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = &SyntaxError{Message: fmt.Sprintf(format, args...), Line: p.cur.Line, Column: p.cur.Column}
	}
	panic(p.err)
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.fail("expected %s, got %s", k, p.cur.Kind)
	}
	t := p.cur
	p.advance()
	return t
}

// expectIdentifierName accepts only an IDENTIFIER token. Keywords and the
// reserved future keywords are lexed as their own token kinds and rejected
// here, for binding names and for `.name` member access alike; for binding
// identifiers (var/function/param names) callers should check strict-mode
// restrictions separately.
func (p *Parser) expectIdentifierName() string {
	if p.cur.Kind != token.IDENTIFIER {
		p.fail("expected identifier, got %s", p.cur.Kind)
	}
	name := p.cur.StringValue
	p.advance()
	return name
}

func (p *Parser) consumeSemicolon() {
	if p.cur.Kind == token.SEMICOLON {
		p.advance()
		return
	}
	if p.cur.Kind == token.RBRACE || p.cur.Kind == token.EOF || p.cur.PrecededByNL {
		return
	}
	p.fail("expected ';', got %s", p.cur.Kind)
}

// Parse compiles source as a top-level program, returning its statement
// list. Recovers parse-time panics (raised via fail) into a returned error
// rather than propagating, so Go callers need not set up their own
// recover. A leading "use strict" directive makes the returned list switch
// the running context to strict mode before the first statement.
func Parse(source string, keys *key.Table) (body object.OpList, err error) {
	p := New(source, keys)
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*SyntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	p.detectDirectivePrologue()
	body = p.parseStatementList(token.EOF)
	if p.scope.strict {
		setStrict := object.Op{Native: func(ctx *object.Context, op *object.Op) object.Value {
			ctx.Strict = true
			return object.Undefined
		}}
		body = append(object.OpList{setStrict}, body...)
	}
	return body, nil
}

// ParseFunctionBody compiles the body of a function whose parameters are
// already known; internal/builtins' Function constructor (`new
// Function(...)`) uses it.
func ParseFunctionBody(source string, params []string, keys *key.Table, strict bool) (tmpl *interp.FunctionTemplate, err error) {
	p := New(source, keys)
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*SyntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	p.scope = newFuncScope(nil, strict)
	p.scope.isGlobal = false
	for _, name := range params {
		p.scope.declare(name)
	}
	body := p.parseStatementList(token.EOF)
	tmpl = &interp.FunctionTemplate{
		ParameterCount: len(params),
		Body:           body,
		NeedArguments:  p.scope.usesArguments,
		Strict:         p.scope.strict,
	}
	return tmpl, nil
}

func (p *Parser) parseStatementList(end token.Kind) object.OpList {
	var out object.OpList
	for p.cur.Kind != end && p.cur.Kind != token.EOF {
		out = append(out, p.parseStatement())
	}
	return out
}

func (p *Parser) parseStatement() object.Op {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarStatement()
	case token.SEMICOLON:
		p.advance()
		return interp.Empty()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor("")
	case token.WHILE:
		return p.parseWhile("")
	case token.DO:
		return p.parseDoWhile("")
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.RETURN:
		return p.parseReturn()
	case token.WITH:
		return p.parseWith()
	case token.SWITCH:
		return p.parseSwitch("")
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.DEBUGGER:
		p.advance()
		p.consumeSemicolon()
		return interp.Debugger()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.IDENTIFIER:
		if p.peek.Kind == token.COLON {
			return p.parseLabelled()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() object.Op {
	p.expect(token.LBRACE)
	body := p.parseStatementList(token.RBRACE)
	p.expect(token.RBRACE)
	return interp.Block(body)
}

func (p *Parser) parseVarStatement() object.Op {
	p.expect(token.VAR)
	var decls object.OpList
	for {
		name := p.expectIdentifierName()
		p.scope.declare(name)
		if p.cur.Kind == token.ASSIGN {
			p.advance()
			value := p.parseAssignmentExpression()
			decls = append(decls, interp.SimpleAssign(p.resolveTarget(name), value))
		}
		if p.cur.Kind != token.COMMA {
			break
		}
		p.advance()
	}
	p.consumeSemicolon()
	return interp.Block(decls)
}

func (p *Parser) parseExpressionStatement() object.Op {
	expr := p.parseExpression()
	p.consumeSemicolon()
	return interp.ExprStatement(expr)
}

func (p *Parser) parseIf() object.Op {
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	if p.cur.Kind == token.ELSE {
		p.advance()
		els := p.parseStatement()
		return interp.If(cond, then, &els)
	}
	return interp.If(cond, then, nil)
}

func (p *Parser) parseWhile(label string) object.Op {
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	return interp.While(label, cond, body)
}

func (p *Parser) parseDoWhile(label string) object.Op {
	p.expect(token.DO)
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	if p.cur.Kind == token.SEMICOLON {
		p.advance()
	}
	return interp.DoWhile(label, body, cond)
}

func (p *Parser) parseFor(label string) object.Op {
	p.expect(token.FOR)
	p.expect(token.LPAREN)

	// A leading `var` or bare identifier followed by `in` is a for-in loop;
	// anything else is classic for(;;). Both share the first clause, so
	// peek past it before deciding.
	if p.cur.Kind == token.VAR {
		p.advance()
		name := p.expectIdentifierName()
		p.scope.declare(name)
		if p.cur.Kind == token.IN {
			p.advance()
			objExpr := p.parseExpression()
			p.expect(token.RPAREN)
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return interp.ForIn(label, p.resolveTarget(name), objExpr, body)
		}
		var init object.Op
		hasInit := p.cur.Kind == token.ASSIGN
		if hasInit {
			p.advance()
			value := p.parseAssignmentExpressionNoIn()
			init = interp.SimpleAssign(p.resolveTarget(name), value)
		}
		for p.cur.Kind == token.COMMA {
			p.advance()
			n2 := p.expectIdentifierName()
			p.scope.declare(n2)
			if p.cur.Kind == token.ASSIGN {
				p.advance()
				v2 := p.parseAssignmentExpressionNoIn()
				a2 := interp.SimpleAssign(p.resolveTarget(n2), v2)
				if hasInit {
					init = interp.Sequence([]object.Op{init, a2})
				} else {
					init, hasInit = a2, true
				}
			}
		}
		return p.finishClassicFor(label, init, hasInit)
	}

	if p.cur.Kind != token.SEMICOLON {
		expr := p.parseExpressionNoIn()
		if p.cur.Kind == token.IN {
			target, ok := p.exprToTarget(expr)
			if !ok {
				p.fail("invalid for-in left-hand side")
			}
			p.advance()
			objExpr := p.parseExpression()
			p.expect(token.RPAREN)
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return interp.ForIn(label, target, objExpr, body)
		}
		init := interp.ExprStatement(expr)
		return p.finishClassicFor(label, init, true)
	}
	return p.finishClassicFor(label, object.Op{}, false)
}

func (p *Parser) finishClassicFor(label string, init object.Op, hasInit bool) object.Op {
	p.expect(token.SEMICOLON)
	var cond object.Op
	hasCond := p.cur.Kind != token.SEMICOLON
	if hasCond {
		cond = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	var update object.Op
	hasUpdate := p.cur.Kind != token.RPAREN
	if hasUpdate {
		update = p.parseExpression()
	}
	p.expect(token.RPAREN)
	p.loopDepth++
	body := p.parseStatement()
	p.loopDepth--
	return interp.ForClassic(label, init, cond, update, body, hasInit, hasCond, hasUpdate)
}

func (p *Parser) parseBreak() object.Op {
	p.expect(token.BREAK)
	label := ""
	if p.cur.Kind == token.IDENTIFIER && !p.cur.PrecededByNL {
		label = p.cur.StringValue
		if !p.hasLabel(label) {
			p.fail("undefined label '%s'", label)
		}
		p.advance()
	} else if p.loopDepth == 0 && p.switchDepth == 0 {
		p.fail("illegal break statement")
	}
	p.consumeSemicolon()
	return interp.Break(label)
}

func (p *Parser) parseContinue() object.Op {
	p.expect(token.CONTINUE)
	label := ""
	if p.cur.Kind == token.IDENTIFIER && !p.cur.PrecededByNL {
		label = p.cur.StringValue
		if !p.hasLabel(label) {
			p.fail("undefined label '%s'", label)
		}
		p.advance()
	} else if p.loopDepth == 0 {
		p.fail("illegal continue statement")
	}
	p.consumeSemicolon()
	return interp.Continue(label)
}

func (p *Parser) hasLabel(label string) bool {
	for _, l := range p.labelStack {
		if l == label {
			return true
		}
	}
	return false
}

func (p *Parser) parseReturn() object.Op {
	p.expect(token.RETURN)
	if p.scope.isGlobal {
		p.fail("'return' outside of a function")
	}
	if p.cur.Kind == token.SEMICOLON || p.cur.Kind == token.RBRACE || p.cur.Kind == token.EOF || p.cur.PrecededByNL {
		p.consumeSemicolon()
		return interp.Return(nil)
	}
	expr := p.parseExpression()
	p.consumeSemicolon()
	return interp.Return(&expr)
}

func (p *Parser) parseWith() object.Op {
	p.expect(token.WITH)
	p.expect(token.LPAREN)
	expr := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return interp.With(expr, body)
}

func (p *Parser) parseSwitch(label string) object.Op {
	p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	disc := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	p.switchDepth++
	var cases []interp.SwitchCase
	defaultIdx := -1
	for p.cur.Kind != token.RBRACE {
		if p.cur.Kind == token.DEFAULT {
			if defaultIdx != -1 {
				p.fail("more than one default clause in switch")
			}
			p.advance()
			p.expect(token.COLON)
			defaultIdx = len(cases)
			cases = append(cases, interp.SwitchCase{Body: p.parseCaseBody()})
			continue
		}
		p.expect(token.CASE)
		test := p.parseExpression()
		p.expect(token.COLON)
		cases = append(cases, interp.SwitchCase{Test: &test, Body: p.parseCaseBody()})
	}
	p.expect(token.RBRACE)
	p.switchDepth--
	return interp.Switch(label, disc, cases, defaultIdx)
}

func (p *Parser) parseCaseBody() object.OpList {
	var body object.OpList
	for p.cur.Kind != token.CASE && p.cur.Kind != token.DEFAULT && p.cur.Kind != token.RBRACE {
		body = append(body, p.parseStatement())
	}
	return body
}

func (p *Parser) parseThrow() object.Op {
	p.expect(token.THROW)
	if p.cur.PrecededByNL {
		p.fail("illegal newline after throw")
	}
	expr := p.parseExpression()
	p.consumeSemicolon()
	return interp.Throw(expr)
}

func (p *Parser) parseTry() object.Op {
	p.expect(token.TRY)
	body := p.parseBlockStatements()
	m := interp.TryMeta{Body: body}
	if p.cur.Kind == token.CATCH {
		p.advance()
		p.expect(token.LPAREN)
		name := p.expectIdentifierName()
		p.expect(token.RPAREN)
		m.HasCatch = true
		m.CatchParam = p.keys.MakeFromString(name)
		m.CatchBody = p.parseBlockStatements()
	}
	if p.cur.Kind == token.FINALLY {
		p.advance()
		m.HasFinally = true
		m.FinallyBody = p.parseBlockStatements()
	}
	if !m.HasCatch && !m.HasFinally {
		p.fail("missing catch or finally after try")
	}
	return interp.Try(m)
}

func (p *Parser) parseBlockStatements() object.OpList {
	p.expect(token.LBRACE)
	body := p.parseStatementList(token.RBRACE)
	p.expect(token.RBRACE)
	return body
}

func (p *Parser) parseLabelled() object.Op {
	label := p.cur.StringValue
	p.advance()
	p.expect(token.COLON)
	p.labelStack = append(p.labelStack, label)
	defer func() { p.labelStack = p.labelStack[:len(p.labelStack)-1] }()

	switch p.cur.Kind {
	case token.FOR:
		return p.parseFor(label)
	case token.WHILE:
		return p.parseWhile(label)
	case token.DO:
		return p.parseDoWhile(label)
	case token.SWITCH:
		return p.parseSwitch(label)
	default:
		return interp.Labeled(label, p.parseStatement())
	}
}

func (p *Parser) parseFunctionDeclaration() object.Op {
	lit, name := p.parseFunctionLiteral(true)
	if name == "" {
		p.fail("function declaration requires a name")
	}
	p.scope.declare(name)
	return interp.SimpleAssign(p.resolveTarget(name), lit)
}

func (p *Parser) parseFunctionLiteral(isDeclaration bool) (object.Op, string) {
	p.expect(token.FUNCTION)
	name := ""
	if p.cur.Kind == token.IDENTIFIER {
		name = p.cur.StringValue
		p.advance()
	}
	p.expect(token.LPAREN)
	var params []string
	for p.cur.Kind != token.RPAREN {
		if len(params) > 0 {
			p.expect(token.COMMA)
		}
		params = append(params, p.expectIdentifierName())
	}
	p.expect(token.RPAREN)

	outerScope := p.scope
	outerLoop, outerSwitch, outerLabels := p.loopDepth, p.switchDepth, p.labelStack
	p.scope = newFuncScope(outerScope, outerScope.strict)
	p.loopDepth, p.switchDepth, p.labelStack = 0, 0, nil
	for _, prm := range params {
		p.scope.declare(prm)
	}

	p.expect(token.LBRACE)
	p.detectDirectivePrologue()
	body := p.parseStatementList(token.RBRACE)
	p.expect(token.RBRACE)

	tmpl := &interp.FunctionTemplate{
		Name:           name,
		ParameterCount: len(params),
		Body:           body,
		NeedArguments:  p.scope.usesArguments,
		Strict:         p.scope.strict,
	}

	p.scope = outerScope
	p.loopDepth, p.switchDepth, p.labelStack = outerLoop, outerSwitch, outerLabels
	return interp.FunctionLiteral(tmpl), name
}

// detectDirectivePrologue implements ES5 14.1's minimal case: a lone
// "use strict" string-literal expression statement as the very first
// statement of a function (or program) body marks it strict. Other
// directive-prologue strings are accepted and ignored, matching real
// engines' forward-compatible behaviour.
func (p *Parser) detectDirectivePrologue() {
	if p.cur.Kind == token.STRING && p.cur.StringValue == "use strict" &&
		(p.peek.Kind == token.SEMICOLON || p.peek.Kind == token.RBRACE || p.peek.PrecededByNL) {
		p.scope.strict = true
	}
}
