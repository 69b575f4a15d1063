package chars

// CharBufferFlag records GC and fast-path metadata for a CharBuffer.
type CharBufferFlag uint8

const (
	// FlagMark is the GC tricolour mark bit (internal/pool owns writes to it
	// during collection; CharBuffer only carries the storage).
	FlagMark CharBufferFlag = 1 << iota
	// FlagASCIIOnly records that byte length equals codepoint count,
	// enabling O(1) character indexing.
	FlagASCIIOnly
)

// CharBuffer is a refcounted, heap-allocated byte buffer for computed
// strings (the result of concatenation, String methods, number formatting,
// and so on). Ownership and collection are managed by internal/pool; this
// type only carries the storage and the flags the pool inspects.
type CharBuffer struct {
	Bytes    []byte
	Flags    CharBufferFlag
	RefCount int32
}

// CreateSized allocates a zeroed buffer of exactly n bytes.
func CreateSized(n int) *CharBuffer {
	return &CharBuffer{Bytes: make([]byte, n), Flags: asciiFlagFor(nil)}
}

// CreateWithBytes copies b into a new owned buffer.
func CreateWithBytes(b []byte) *CharBuffer {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &CharBuffer{Bytes: buf, Flags: asciiFlagFor(buf)}
}

func asciiFlagFor(b []byte) CharBufferFlag {
	for _, c := range b {
		if c >= 0x80 {
			return 0
		}
	}
	return FlagASCIIOnly
}

// Marked reports whether the GC mark bit is set.
func (c *CharBuffer) Marked() bool { return c.Flags&FlagMark != 0 }

// SetMark sets or clears the GC mark bit.
func (c *CharBuffer) SetMark(v bool) {
	if v {
		c.Flags |= FlagMark
	} else {
		c.Flags &^= FlagMark
	}
}

func (c *CharBuffer) String() string { return string(c.Bytes) }

// Text returns a non-owning TextString view over the buffer's bytes.
func (c *CharBuffer) Text() TextString { return TextString{Bytes: c.Bytes} }
