package object

import "github.com/apfeltee/ecma5go/internal/key"

// ElementMax is the largest index addressable by the dense-element storage;
// larger indices fall back to ordinary (decimal-spelled) property lookup.
const ElementMax = 0xFFFFFF

// ObjectFlag bits live on the Object itself (as opposed to on individual
// property Values).
type ObjectFlag uint8

const (
	OFlagMark ObjectFlag = 1 << iota
	OFlagSealed
	OFlagExtensible // cleared by Object.preventExtensions; new own props then fail
)

// Kind is the per-object vtable: a name for
// Object.prototype.toString, plus GC hooks (Mark walks extra references a
// generic slot/element walk would miss, Capture implements the pool's
// mid-execution-mark escalation, Finalize releases any non-GC resource).
type Kind struct {
	Name     string
	Mark     func(o *Object, mark func(Value))
	Capture  func(o *Object)
	Finalize func(o *Object)
}

var (
	KindPlain     = &Kind{Name: "Object"}
	KindArray     = &Kind{Name: "Array"}
	KindArguments = &Kind{Name: "Arguments"}
	KindFunction  = &Kind{Name: "Function"}
	KindString    = &Kind{Name: "String"}
	KindNumber    = &Kind{Name: "Number"}
	KindBoolean   = &Kind{Name: "Boolean"}
	KindError     = &Kind{Name: "Error"}
	KindDate      = &Kind{Name: "Date"}
	KindRegExp    = &Kind{Name: "RegExp"}
	KindMath      = &Kind{Name: "Math"}
	KindJSON      = &Kind{Name: "JSON"}
	KindGlobal    = &Kind{Name: "global"}
	KindHost      = &Kind{Name: "Host"}
)

// hmSlot is one entry of the hashmap trie. A slot is either interior
// (Children holds the 16-way dispatch vector to further slots) or a leaf
// (Value.Flags&FlagValid is set and Value holds the property). Depth from
// the root (index 1) to any leaf is exactly 4, one hop per nibble of the
// key's Nibbles() path.
type hmSlot struct {
	Value    Value
	Children [16]int32
}

func (s *hmSlot) isLeaf() bool { return s.Value.Flags&FlagValid != 0 }

// FunctionData holds the fields specific to callable objects, embedded in
// Object when Kind == KindFunction.
type FunctionData struct {
	OpList         OpList
	Native         func(ctx *Context) Value // non-nil for native (built-in) functions
	Environment    *Object                  // lexical scope: params/locals at slots 3..
	Pair           *Object                  // accessor twin, or the original for a bound function
	BoundThis      Value
	HasBoundThis   bool
	Text           Value // source span (TagText) for stack traces
	Name           string
	ParameterCount int
	NeedHeap       bool
	NeedArguments  bool
	UseBoundThis   bool
	Strict         bool
}

// Object is the hybrid hashmap+elements property store.
type Object struct {
	Elements        []Value
	ElementCount    int
	elementCapacity int

	Hashmap      []hmSlot
	hashmapCount int // number of live leaves, for Pack's "shrinks capacity"

	Prototype *Object
	Kind      *Kind
	RefCount  int32
	Flags     ObjectFlag

	Function *FunctionData // non-nil iff Kind == KindFunction

	// Internal carries kind-specific payload that isn't expressible as a
	// Value (e.g. Date's time.Time, RegExp's compiled *regexp.Regexp,
	// boxed String/Number/Boolean's primitive). Kind-specific code owns it.
	Internal interface{}
}

// New allocates an empty object of the given kind with prototype proto.
func New(k *Kind, proto *Object) *Object {
	o := &Object{
		Kind:      k,
		Prototype: proto,
		Flags:     OFlagExtensible,
		Hashmap:   make([]hmSlot, 2, 8), // index 0 reserved, index 1 root
	}
	return o
}

// NewFunction allocates a callable object with its own lexical environment.
func NewFunction(k *Kind, proto *Object, envProto *Object) *Object {
	o := New(k, proto)
	o.Function = &FunctionData{
		Environment: New(KindPlain, envProto),
	}
	return o
}

func (o *Object) Sealed() bool       { return o.Flags&OFlagSealed != 0 }
func (o *Object) Extensible() bool   { return o.Flags&OFlagExtensible != 0 }
func (o *Object) Marked() bool       { return o.Flags&OFlagMark != 0 }
func (o *Object) SetMark(v bool)     { o.setFlag(OFlagMark, v) }
func (o *Object) SetSealed(v bool)   { o.setFlag(OFlagSealed, v) }
func (o *Object) PreventExtensions() { o.Flags &^= OFlagExtensible }

func (o *Object) setFlag(f ObjectFlag, v bool) {
	if v {
		o.Flags |= f
	} else {
		o.Flags &^= f
	}
}

// ---- hashmap trie ----------------------------------------------------

// slotIndexForKey walks the 4-level trie, returning the live leaf's slot
// index or 0 if key is absent.
func (o *Object) slotIndexForKey(k key.Key) int32 {
	nibbles := k.Nibbles()
	cur := int32(1)
	for i := 0; i < 4; i++ {
		if cur <= 0 || int(cur) >= len(o.Hashmap) {
			return 0
		}
		cur = o.Hashmap[cur].Children[nibbles[i]]
		if cur == 0 {
			return 0
		}
	}
	return cur
}

// GetSlot returns the live leaf Value for k on this object only (no
// prototype walk), or the zero Value with ok=false.
func (o *Object) GetSlot(k key.Key) (Value, bool) {
	idx := o.slotIndexForKey(k)
	if idx == 0 || !o.Hashmap[idx].isLeaf() {
		return Value{}, false
	}
	return o.Hashmap[idx].Value, true
}

func (o *Object) allocSlot() int32 {
	o.Hashmap = append(o.Hashmap, hmSlot{})
	return int32(len(o.Hashmap) - 1)
}

// ensureSlotForKey walks (allocating interior nodes as needed) to the leaf
// slot index for k, creating it if absent.
func (o *Object) ensureSlotForKey(k key.Key) int32 {
	nibbles := k.Nibbles()
	cur := int32(1)
	for i := 0; i < 4; i++ {
		next := o.Hashmap[cur].Children[nibbles[i]]
		if next == 0 {
			next = o.allocSlot()
			o.Hashmap[cur].Children[nibbles[i]] = next
		}
		cur = next
	}
	return cur
}

// setOwnSlot writes v (with Flags|=FlagValid) into the leaf for k, creating
// the trie path if necessary.
func (o *Object) setOwnSlot(k key.Key, v Value) {
	idx := o.ensureSlotForKey(k)
	wasLive := o.Hashmap[idx].isLeaf()
	v.Flags |= FlagValid
	v.PropKey = k
	o.Hashmap[idx].Value = v
	if !wasLive {
		o.hashmapCount++
	}
}

// deleteOwnSlot clears the leaf for k. Returns true if a live property was
// removed. The interior trie nodes above the cleared leaf are left in place
// (Pack reclaims them).
func (o *Object) deleteOwnSlot(k key.Key) bool {
	idx := o.slotIndexForKey(k)
	if idx == 0 || !o.Hashmap[idx].isLeaf() {
		return false
	}
	o.Hashmap[idx].Value = Value{}
	o.hashmapCount--
	return true
}

// OwnKeys returns every live property key on this object, in hashmap
// insertion-independent (trie traversal) order. Enumeration callers that
// need insertion order should instead track it themselves; for-in
// ordering only guarantees elements-before-members.
func (o *Object) OwnKeys() []key.Key {
	var out []key.Key
	o.walkLeaves(1, func(v Value) {
		if v.Flags&FlagHidden == 0 {
			out = append(out, v.PropKey)
		}
	})
	return out
}

// OwnKeysIncludingHidden is OwnKeys but also returns non-enumerable keys,
// used by Object.keys/getOwnPropertyNames-style built-ins and by delete.
func (o *Object) OwnKeysIncludingHidden() []key.Key {
	var out []key.Key
	o.walkLeaves(1, func(v Value) { out = append(out, v.PropKey) })
	return out
}

func (o *Object) walkLeaves(idx int32, visit func(Value)) {
	if idx <= 0 || int(idx) >= len(o.Hashmap) {
		return
	}
	slot := &o.Hashmap[idx]
	if slot.isLeaf() {
		visit(slot.Value)
		return
	}
	for _, child := range slot.Children {
		if child != 0 {
			o.walkLeaves(child, visit)
		}
	}
}

// ---- elements ----------------------------------------------------------

func elementCapacityFor(n int) int {
	if n <= 64 {
		c := 1
		for c < n {
			c <<= 1
		}
		if c == 0 {
			c = 1
		}
		return c
	}
	// round up to the next 64-element chunk
	return (n + 63) &^ 63
}

// ResizeElement grows by doubling up to 64 then rounds to 64-chunks;
// shrinking below a sealed trailing element's index is rejected (the
// element, and hence the new length, is clamped). Returns the length
// actually applied and whether it differs from requested.
func (o *Object) ResizeElement(newLen int) (applied int, adjusted bool) {
	if newLen < 0 {
		newLen = 0
	}
	if newLen > ElementMax+1 {
		newLen = ElementMax + 1
	}
	minLen := newLen
	for i := newLen; i < o.ElementCount; i++ {
		if o.Elements[i].Flags&FlagSealed != 0 {
			if i+1 > minLen {
				minLen = i + 1
			}
		}
	}
	if minLen != newLen {
		newLen = minLen
		adjusted = true
	}
	if newLen > o.elementCapacity {
		newCap := elementCapacityFor(newLen)
		grown := make([]Value, newCap)
		copy(grown, o.Elements)
		o.Elements = grown
		o.elementCapacity = newCap
	}
	for i := o.ElementCount; i < newLen && i < len(o.Elements); i++ {
		o.Elements[i] = Value{}
	}
	o.ElementCount = newLen
	return newLen, adjusted
}

// GetElement returns element i if it is within bounds and live.
func (o *Object) GetElement(i int) (Value, bool) {
	if i < 0 || i >= o.ElementCount {
		return Value{}, false
	}
	v := o.Elements[i]
	if v.Flags&FlagValid == 0 && v.Tag == TagUndefined {
		return Value{}, false
	}
	return v, true
}

// SetElement writes element i, growing storage if needed.
func (o *Object) SetElement(i int, v Value) {
	if i >= o.ElementCount {
		o.ResizeElement(i + 1)
	}
	v.Flags |= FlagValid
	o.Elements[i] = v
}

// DeleteElement zeroes element i; deleting from an element slot zeroes it
// rather than compacting the array.
func (o *Object) DeleteElement(i int) bool {
	if i < 0 || i >= o.ElementCount {
		return false
	}
	if o.Elements[i].Flags&FlagSealed != 0 {
		return false
	}
	o.Elements[i] = Value{}
	return true
}

// ---- prototype walk ------------------------------------------------------

// Member walks the prototype chain for k unless asOwn is set, returning the
// slot's Value and the Object that owns it.
func (o *Object) Member(k key.Key, asOwn bool) (Value, *Object, bool) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if v, ok := cur.GetSlot(k); ok {
			return v, cur, true
		}
		if asOwn {
			break
		}
	}
	return Value{}, nil, false
}

// SetSlotFlags ORs extra onto the flags of the live own property k, without
// exposing the hashmap trie itself to callers outside this package (used by
// Object.seal/Object.freeze in internal/builtins).
func (o *Object) SetSlotFlags(k key.Key, extra Flag) {
	idx := o.slotIndexForKey(k)
	if idx == 0 || !o.Hashmap[idx].isLeaf() {
		return
	}
	o.Hashmap[idx].Value.Flags |= extra
}

// SealOwnProperties marks every own property and element non-configurable
// (Object.seal, ES5 15.2.3.8).
func (o *Object) SealOwnProperties() {
	for _, k := range o.OwnKeysIncludingHidden() {
		o.SetSlotFlags(k, FlagSealed)
	}
	for i := 0; i < o.ElementCount; i++ {
		o.Elements[i].Flags |= FlagSealed
	}
}

// FreezeOwnProperties marks every own data property read-only and
// non-configurable and every element read-only (Object.freeze, ES5 15.2.3.9).
func (o *Object) FreezeOwnProperties() {
	for _, k := range o.OwnKeysIncludingHidden() {
		o.SetSlotFlags(k, FlagFrozen)
	}
	for i := 0; i < o.ElementCount; i++ {
		o.Elements[i].Flags |= FlagFrozen
	}
}
