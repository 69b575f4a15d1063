package parser

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/key"
)

func TestParseValidProgram(t *testing.T) {
	keys := key.NewTable()
	_, err := Parse(`var x = 1 + 2; function f(a,b){ return a+b; } f(x, 3);`, keys)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
}

func TestParseReportsSyntaxError(t *testing.T) {
	keys := key.NewTable()
	_, err := Parse(`var = ;`, keys)
	if err == nil {
		t.Fatalf("expected a SyntaxError for malformed source")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
}

func TestParseReservedWordAsVarNameIsSyntaxError(t *testing.T) {
	keys := key.NewTable()
	_, err := Parse(`var class = 1;`, keys)
	if err == nil {
		t.Fatalf("expected a SyntaxError: %q is a reserved word", "class")
	}
}

// internal/lexer's readIdentifier never decodes \uXXXX escapes (unlike
// string-literal scanning, which does), so a unicode-escaped identifier
// used as an unquoted object-literal key does not parse as the key it
// would denote if escapes were honored. Pinned here, not fixed, per
// DESIGN.md's Open Questions section.
func TestObjectLiteralKeyUnicodeEscapeIsBroken(t *testing.T) {
	t.Skip("known-broken: identifier escapes are not decoded by internal/lexer.readIdentifier; pinned, not fixed")

	keys := key.NewTable()
	// x denotes 'x'; a conformant engine would parse this exactly like
	// `({ x: 1 }).x`.
	_, err := Parse("({ \\u0078: 1 }).x;", keys)
	if err != nil {
		t.Fatalf("expected the unicode-escaped key to parse once this is fixed: %v", err)
	}
}
