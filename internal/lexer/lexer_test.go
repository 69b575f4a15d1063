package lexer

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/token"
)

func scanAll(src string) []token.Token {
	l := New(src)
	var out []token.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestScansPunctuationAndOperators(t *testing.T) {
	toks := scanAll("a += 1 !== b")
	want := []token.Kind{token.IDENTIFIER, token.PLUS_ASSIGN, token.INTEGER, token.STRICT_NOT_EQUAL, token.IDENTIFIER, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s want %s", i, toks[i].Kind, k)
		}
	}
}

func TestScansKeywordsNotAsIdentifiers(t *testing.T) {
	toks := scanAll("function foo")
	if toks[0].Kind != token.FUNCTION {
		t.Fatalf("expected FUNCTION, got %s", toks[0].Kind)
	}
	if toks[1].Kind != token.IDENTIFIER || toks[1].StringValue != "foo" {
		t.Fatalf("expected identifier foo, got %+v", toks[1])
	}
}

func TestScansNumbers(t *testing.T) {
	toks := scanAll("42 3.14 0x1F 1e3")
	if toks[0].Kind != token.INTEGER || toks[0].IntValue != 42 {
		t.Fatalf("42: got %+v", toks[0])
	}
	if toks[1].Kind != token.BINARY || toks[1].BinaryValue != 3.14 {
		t.Fatalf("3.14: got %+v", toks[1])
	}
	if toks[2].Kind != token.INTEGER || toks[2].IntValue != 31 {
		t.Fatalf("0x1F: got %+v", toks[2])
	}
	if toks[3].Kind != token.BINARY || toks[3].BinaryValue != 1000 {
		t.Fatalf("1e3: got %+v", toks[3])
	}
}

func TestScansStringsWithEscapes(t *testing.T) {
	toks := scanAll(`"hi\nthere"`)
	if toks[0].Kind != token.ESCAPED_STRING {
		t.Fatalf("expected ESCAPED_STRING, got %s", toks[0].Kind)
	}
	if toks[0].StringValue != "hi\nthere" {
		t.Fatalf("got %q", toks[0].StringValue)
	}
}

func TestSlashIsDivideAfterIdentifier(t *testing.T) {
	toks := scanAll("a / b")
	if toks[1].Kind != token.DIVIDE {
		t.Fatalf("expected DIVIDE, got %s", toks[1].Kind)
	}
}

func TestSlashIsRegexAfterAssign(t *testing.T) {
	toks := scanAll("var r = /ab+c/gi;")
	var regexTok token.Token
	found := false
	for _, tok := range toks {
		if tok.Kind == token.REGEXP {
			regexTok = tok
			found = true
		}
	}
	if !found {
		t.Fatalf("no regex token found in %v", toks)
	}
	if regexTok.RegexBody != "ab+c" || regexTok.RegexFlags != "gi" {
		t.Fatalf("got body=%q flags=%q", regexTok.RegexBody, regexTok.RegexFlags)
	}
}

func TestNewlineMarksFollowingTokenPrecededByNL(t *testing.T) {
	toks := scanAll("a\nb")
	// 'a' identifier, then 'b' identifier should be marked PrecededByNL
	if toks[1].Kind != token.IDENTIFIER || !toks[1].PrecededByNL {
		t.Fatalf("expected second identifier to be PrecededByNL, got %+v", toks[1])
	}
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll("a // comment\nb /* block \n comment */ c")
	want := []token.Kind{token.IDENTIFIER, token.IDENTIFIER, token.IDENTIFIER, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens want %d: %v", len(toks), len(want), toks)
	}
}
