// Package token defines the lexical token kinds produced by internal/lexer
// and consumed by internal/parser.
package token

// Kind identifies the grammatical class of a token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENTIFIER
	INTEGER
	BINARY // float64-valued numeric literal
	STRING
	ESCAPED_STRING // string literal that contained at least one escape
	REGEXP

	// Punctuation
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	SEMICOLON
	COMMA
	COLON
	DOT
	QUESTION

	// Assignment
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	MULTIPLY_ASSIGN
	DIVIDE_ASSIGN
	MODULO_ASSIGN
	LEFT_SHIFT_ASSIGN
	RIGHT_SHIFT_ASSIGN
	UNSIGNED_RIGHT_SHIFT_ASSIGN
	AND_ASSIGN
	OR_ASSIGN
	XOR_ASSIGN

	// Arithmetic / bitwise / logical
	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	MODULO
	INCREMENT
	DECREMENT
	BIT_AND
	BIT_OR
	BIT_XOR
	BIT_NOT
	LOGICAL_AND
	LOGICAL_OR
	LOGICAL_NOT
	LEFT_SHIFT
	RIGHT_SHIFT
	UNSIGNED_RIGHT_SHIFT

	// Comparison
	EQUAL
	NOT_EQUAL
	STRICT_EQUAL
	STRICT_NOT_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL

	// Keywords
	VAR
	FUNCTION
	RETURN
	IF
	ELSE
	FOR
	WHILE
	DO
	BREAK
	CONTINUE
	NEW
	DELETE
	TYPEOF
	INSTANCEOF
	IN
	THIS
	NULL
	TRUE
	FALSE
	VOID
	WITH
	TRY
	CATCH
	FINALLY
	THROW
	SWITCH
	CASE
	DEFAULT
	DEBUGGER

	// Reserved-but-unused ES5 future keywords (syntax error if encountered)
	CLASS
	CONST
	ENUM
	EXPORT
	EXTENDS
	IMPORT
	SUPER

	NEWLINE // significant only for automatic-semicolon-insertion bookkeeping
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENTIFIER: "IDENTIFIER", INTEGER: "INTEGER", BINARY: "BINARY",
	STRING: "STRING", ESCAPED_STRING: "ESCAPED_STRING", REGEXP: "REGEXP",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]", SEMICOLON: ";", COMMA: ",", COLON: ":",
	DOT: ".", QUESTION: "?",
	ASSIGN: "=", PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=",
	MULTIPLY_ASSIGN: "*=", DIVIDE_ASSIGN: "/=", MODULO_ASSIGN: "%=",
	LEFT_SHIFT_ASSIGN: "<<=", RIGHT_SHIFT_ASSIGN: ">>=",
	UNSIGNED_RIGHT_SHIFT_ASSIGN: ">>>=",
	AND_ASSIGN:                  "&=", OR_ASSIGN: "|=", XOR_ASSIGN: "^=",
	PLUS: "+", MINUS: "-", MULTIPLY: "*", DIVIDE: "/", MODULO: "%",
	INCREMENT: "++", DECREMENT: "--",
	BIT_AND: "&", BIT_OR: "|", BIT_XOR: "^", BIT_NOT: "~",
	LOGICAL_AND: "&&", LOGICAL_OR: "||", LOGICAL_NOT: "!",
	LEFT_SHIFT: "<<", RIGHT_SHIFT: ">>", UNSIGNED_RIGHT_SHIFT: ">>>",
	EQUAL: "==", NOT_EQUAL: "!=", STRICT_EQUAL: "===", STRICT_NOT_EQUAL: "!==",
	LESS: "<", LESS_EQUAL: "<=", GREATER: ">", GREATER_EQUAL: ">=",
	VAR: "var", FUNCTION: "function", RETURN: "return", IF: "if", ELSE: "else",
	FOR: "for", WHILE: "while", DO: "do", BREAK: "break", CONTINUE: "continue",
	NEW: "new", DELETE: "delete", TYPEOF: "typeof", INSTANCEOF: "instanceof",
	IN: "in", THIS: "this", NULL: "null", TRUE: "true", FALSE: "false",
	VOID: "void", WITH: "with", TRY: "try", CATCH: "catch", FINALLY: "finally",
	THROW: "throw", SWITCH: "switch", CASE: "case", DEFAULT: "default",
	DEBUGGER: "debugger",
	CLASS:    "class", CONST: "const", ENUM: "enum", EXPORT: "export",
	EXTENDS: "extends", IMPORT: "import", SUPER: "super",
	NEWLINE: "\\n",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Keywords maps reserved words to their Kind, including the reserved-but-
// unused future keywords which the lexer must still recognise so the parser
// can reject them with a SyntaxError rather than treating them as identifiers.
var Keywords = map[string]Kind{
	"var": VAR, "function": FUNCTION, "return": RETURN, "if": IF, "else": ELSE,
	"for": FOR, "while": WHILE, "do": DO, "break": BREAK, "continue": CONTINUE,
	"new": NEW, "delete": DELETE, "typeof": TYPEOF, "instanceof": INSTANCEOF,
	"in": IN, "this": THIS, "null": NULL, "true": TRUE, "false": FALSE,
	"void": VOID, "with": WITH, "try": TRY, "catch": CATCH, "finally": FINALLY,
	"throw": THROW, "switch": SWITCH, "case": CASE, "default": DEFAULT,
	"debugger": DEBUGGER,
	"class":    CLASS, "const": CONST, "enum": ENUM, "export": EXPORT,
	"extends": EXTENDS, "import": IMPORT, "super": SUPER,
}

// Token is one lexical unit: its kind, literal text, source position, and a
// flag recording whether a line terminator was consumed immediately before
// it (used by the parser for automatic semicolon insertion).
type Token struct {
	Kind          Kind
	Lexeme        string
	Line          int
	Column        int
	Offset        int // byte offset of the first byte of the token in the source
	PrecededByNL  bool
	StringValue   string // decoded text for STRING/ESCAPED_STRING/IDENTIFIER
	IntValue      int32
	BinaryValue   float64
	RegexBody     string
	RegexFlags    string
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return t.Kind.String()
}
