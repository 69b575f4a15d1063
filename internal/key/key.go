// Package key implements the interpreter's interned property-name table.
//
// A Key is the 32-bit identity of a property name. Equality is integer
// comparison; the textual spelling is recovered from a side table. The
// 4-nibble path used by internal/object's hashmap trie is derived directly
// from a key's table slot, mirroring the fixed-depth-4 trie documented in
// the data model: ((n>>12)&0xF, (n>>8)&0xF, (n>>4)&0xF, n&0xF).
package key

import "fmt"

// Key is the interned identity of a property name. Zero is the sentinel
// "no key".
type Key uint32

const (
	None Key = 0

	// defaultMaxEntries bounds the table: the 4-nibble path can address at
	// most 65536 distinct names, and one of those (index 0) is reserved for
	// None.
	defaultMaxEntries = 65536
)

// maxEntries is a var (not a const) solely so tests can shrink it to verify
// the exhaustion path without interning tens of thousands of strings.
var maxEntries = defaultMaxEntries

// Flags control how MakeFromText treats a new spelling.
type Flags uint8

const (
	// CopyOnCreate forces the table to take its own copy of the backing
	// bytes. Callers that cannot guarantee the lifetime of the text they
	// pass in (e.g. text sliced from a CharBuffer about to be released)
	// must set this.
	CopyOnCreate Flags = 1 << iota
)

// WarnFunc receives human-readable diagnostics for conditions treated as
// "warning, not error" (see Table.SetWarnHook).
type WarnFunc func(msg string)

// Table is the process-wide (or, in this port, per-Engine — see
// internal/script) interned name table.
type Table struct {
	spellings []string
	warn      WarnFunc
}

// NewTable returns an empty table with slot 0 reserved as the sentinel.
func NewTable() *Table {
	return &Table{
		// index 0 is never resolved to a real key; keep it empty so
		// len(spellings) and key values stay in lockstep.
		spellings: []string{""},
	}
}

// SetWarnHook installs the diagnostic sink used for non-fatal warnings:
// the table nearing capacity, or a numeric-looking property name being
// interned. A nil hook suppresses warnings.
func (t *Table) SetWarnHook(fn WarnFunc) { t.warn = fn }

func (t *Table) warnf(format string, args ...interface{}) {
	if t.warn != nil {
		t.warn(fmt.Sprintf(format, args...))
	}
}

// Search returns the existing key for text, if any, without creating one.
func (t *Table) Search(text string) (Key, bool) {
	for i := 1; i < len(t.spellings); i++ {
		if t.spellings[i] == text {
			return Key(i), true
		}
	}
	return None, false
}

// MakeFromString interns s, creating a new entry if one does not already
// exist. The table always owns its own copy of the Go string (Go strings are
// immutable, so CopyOnCreate is only meaningful for MakeFromText callers
// building from mutable byte slices upstream).
func (t *Table) MakeFromString(s string) Key {
	return t.MakeFromText(s, 0)
}

// MakeFromText interns text under flags. See Flags for their meaning.
func (t *Table) MakeFromText(text string, flags Flags) Key {
	if k, ok := t.Search(text); ok {
		return k
	}
	if len(t.spellings) >= maxEntries {
		// Keys are a finite resource; the engine aborts rather than
		// silently degrading lookup to a fallback path.
		panic(fmt.Sprintf("key table exhausted: more than %d distinct property names interned", maxEntries-1))
	}
	if len(t.spellings) == maxEntries-1 {
		t.warnf("key table nearing capacity: %d/%d entries used", len(t.spellings), maxEntries)
	}
	if flags&CopyOnCreate != 0 {
		buf := make([]byte, len(text))
		copy(buf, text)
		text = string(buf)
	}
	if looksNumeric(text) {
		t.warnf("property name %q looks like a numeric index; prefer element access", text)
	}
	t.spellings = append(t.spellings, text)
	return Key(len(t.spellings) - 1)
}

// TextOf recovers the textual spelling of k. Returns "" for None or an
// unknown key.
func (t *Table) TextOf(k Key) string {
	if int(k) <= 0 || int(k) >= len(t.spellings) {
		return ""
	}
	return t.spellings[k]
}

// Equal reports whether a and b denote the same interned name. Keys from the
// same table are equal iff their integer values are equal.
func Equal(a, b Key) bool { return a == b }

// Nibbles returns the 4-nibble trie path used to address internal/object's
// hashmap: ((n>>12)&0xF, (n>>8)&0xF, (n>>4)&0xF, n&0xF).
func (k Key) Nibbles() [4]uint8 {
	n := uint32(k)
	return [4]uint8{
		uint8((n >> 12) & 0xF),
		uint8((n >> 8) & 0xF),
		uint8((n >> 4) & 0xF),
		uint8(n & 0xF),
	}
}

// looksNumeric reports whether text parses as a non-negative integer index
// spelling with no leading zeros other than "0" itself — legal as a
// property name, but one that should generally be addressed as an element
// instead.
func looksNumeric(text string) bool {
	if text == "" {
		return false
	}
	if text == "0" {
		return true
	}
	if text[0] < '1' || text[0] > '9' {
		return false
	}
	for i := 1; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
