// Package chars implements the interpreter's two string representations:
// TextString, a non-owning UTF-8 view, and CharBuffer, a refcounted owned
// byte buffer used for computed strings.
package chars

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Flag bits for TextString.
type Flag uint8

const (
	// FlagSplitSurrogate marks a view that denotes the trailing half of a
	// surrogate pair split by a 16-bit (UTF-16) index into the string.
	FlagSplitSurrogate Flag = 1 << iota
)

// TextString is a non-owning view over UTF-8 bytes: (bytes, length, flags).
// It never allocates; callers that need to own bytes use CharBuffer instead.
type TextString struct {
	Bytes []byte
	Flags Flag
}

// Make wraps s as a TextString view with no special flags.
func Make(s string) TextString { return TextString{Bytes: []byte(s)} }

// MakeBytes wraps b (not copied) as a TextString view.
func MakeBytes(b []byte) TextString { return TextString{Bytes: b} }

func (t TextString) String() string { return string(t.Bytes) }

// Length returns the byte length of the view.
func (t TextString) Length() int { return len(t.Bytes) }

// Character decodes the codepoint starting at byte offset i, returning the
// replacement character (width 1) for malformed sequences.
func (t TextString) Character(i int) (rune, int) {
	if i < 0 || i >= len(t.Bytes) {
		return utf8.RuneError, 0
	}
	r, w := utf8.DecodeRune(t.Bytes[i:])
	return r, w
}

// NextChar advances past the codepoint at i, returning the byte offset of the
// following codepoint (i itself when i is out of range).
func (t TextString) NextChar(i int) int {
	_, w := t.Character(i)
	if w == 0 {
		return i
	}
	return i + w
}

// PrevChar walks backward from byte offset i to the start of the previous
// codepoint by scanning over UTF-8 continuation bytes (10xxxxxx).
func (t TextString) PrevChar(i int) int {
	if i <= 0 {
		return 0
	}
	j := i - 1
	for j > 0 && isContinuationByte(t.Bytes[j]) {
		j--
	}
	return j
}

func isContinuationByte(b byte) bool { return b&0xC0 == 0x80 }

// Join concatenates a and b into a new owned CharBuffer (TextString itself
// never owns memory, so joining always promotes).
func Join(a, b TextString) *CharBuffer {
	buf := CreateSized(len(a.Bytes) + len(b.Bytes))
	n := copy(buf.Bytes, a.Bytes)
	copy(buf.Bytes[n:], b.Bytes)
	return buf
}

// IsSpace follows the ES5 WhiteSpace production (Unicode "Zs" category plus
// the explicit control-character whitespace code points).
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', 0xA0, 0xFEFF:
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// IsLineFeed follows the ES5 LineTerminator production.
func IsLineFeed(r rune) bool {
	switch r {
	case '\n', '\r', 0x2028, 0x2029:
		return true
	}
	return false
}

// IsWord reports whether r may appear in a ES5 IdentifierPart.
func IsWord(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool { return r >= '0' && r <= '9' }

var caser = cases.Upper(language.Und)
var lowerCaser = cases.Lower(language.Und)

// ToUpper implements String.prototype.toUpperCase's Unicode case mapping
// rather than a simple per-rune unicode.ToUpper loop, matching the
// ecosystem's own use of golang.org/x/text/cases for locale-correct casing
// (e.g. German "ß" expanding to "SS").
func ToUpper(s string) string { return caser.String(s) }

// ToLower mirrors ToUpper for String.prototype.toLowerCase.
func ToLower(s string) string { return lowerCaser.String(s) }

// ToUTF16Length returns the UTF-16 code-unit length of s, counting
// astral-plane codepoints as two units, matching ES5's String.length.
func ToUTF16Length(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ToUTF16 encodes s as UTF-16 code units.
func ToUTF16(s string) []uint16 {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			r -= 0x10000
			out = append(out, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
		} else {
			out = append(out, uint16(r))
		}
	}
	return out
}
