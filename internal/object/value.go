// Package object implements the interpreter's value and object model: the
// tagged Value union and the hybrid hashmap+elements Object. They are
// implemented in one Go package because the data model makes them mutually
// recursive (a hashmap leaf stores a Value; a Value's object tag references
// an Object) — see DESIGN.md for the full rationale for merging the two
// into a single package.
package object

import (
	"github.com/apfeltee/ecma5go/internal/chars"
	"github.com/apfeltee/ecma5go/internal/key"
)

// Tag identifies which field of Value is live.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagFalse
	TagTrue
	TagInteger // int32, exact
	TagBinary  // float64
	TagKey     // a property-name Key used as a value (e.g. for-in targets)
	TagText    // non-owning TextString (source-span-backed string)
	TagChars   // owning *CharBuffer
	TagBuffer  // short inline string, <= 7 bytes, no allocation
	TagObject
	TagFunction
	TagError
	TagRegexp
	TagDate
	TagNumber  // boxed Number object (new Number(...))
	TagString  // boxed String object (new String(...))
	TagBoolean // boxed Boolean object (new Boolean(...))
	TagHost    // opaque host (embedder) payload, see pkg/embed
	TagReference
)

// Flag bits carried on a Value that occupies a hashmap/element slot, or
// (for Reference) describing how the referenced slot was classified.
type Flag uint16

const (
	FlagReadonly Flag = 1 << iota
	FlagHidden        // non-enumerable
	FlagSealed        // non-configurable
	FlagGetter
	FlagSetter
	FlagAsOwn  // lookup should not walk the prototype chain
	FlagAsData // force data (not accessor) interpretation
	FlagValid  // "check" bit: this slot/element is live
)

const (
	FlagFrozen   = FlagReadonly | FlagSealed
	FlagAccessor = FlagGetter | FlagSetter
)

const inlineBufferCap = 7

// Value is the interpreter's 16-byte-equivalent tagged union. Go does not
// have C-style unions, so the fields below are simply all present; only the
// ones matching Tag are meaningful. This keeps Value a flat, copyable,
// comparable-by-convention struct usable as the interpreter's universal
// runtime datum.
type Value struct {
	Tag Tag

	Integer int32
	Binary  float64

	Key  key.Key
	Text chars.TextString

	Chars *CharBuffer

	bufLen byte
	buf    [inlineBufferCap]byte

	Object *Object
	Ref    *Value

	Flags Flag
	// PropKey records the property name when this Value occupies a hashmap
	// slot.
	PropKey key.Key
}

// CharBuffer is re-exported at package scope for convenience; the real type
// lives in internal/chars.
type CharBuffer = chars.CharBuffer

// Undefined, Null, True, False are the canonical singleton-shaped values for
// the primitive tags that carry no payload.
var (
	Undefined = Value{Tag: TagUndefined}
	Null      = Value{Tag: TagNull}
	True      = Value{Tag: TagTrue}
	False     = Value{Tag: TagFalse}
)

// Bool returns True or False.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int wraps an exact int32.
func Int(i int32) Value { return Value{Tag: TagInteger, Integer: i} }

// Bin wraps a float64.
func Bin(f float64) Value { return Value{Tag: TagBinary, Binary: f} }

// KeyValue wraps a Key as a value (used by for-in and typeof-of-key paths).
func KeyValue(k key.Key) Value { return Value{Tag: TagKey, Key: k} }

// TextValue wraps a non-owning source-backed string view.
func TextValue(t chars.TextString) Value { return Value{Tag: TagText, Text: t} }

// CharsValue wraps an owning CharBuffer.
func CharsValue(c *CharBuffer) Value { return Value{Tag: TagChars, Chars: c} }

// InlineString returns a TagBuffer value if s fits in the inline payload,
// otherwise promotes to an owned CharBuffer — mirroring the C union's
// "buffer(<=7 bytes inline)" tag.
func InlineString(s string) Value {
	if len(s) <= inlineBufferCap {
		v := Value{Tag: TagBuffer, bufLen: byte(len(s))}
		copy(v.buf[:], s)
		return v
	}
	return CharsValue(chars.CreateWithBytes([]byte(s)))
}

// ObjectValue wraps an Object pointer under the given tag (TagObject,
// TagFunction, TagError, TagRegexp, or TagDate — all "objects" for
// property-access purposes, distinguished only for typeof/toString).
func ObjectValue(tag Tag, o *Object) Value { return Value{Tag: tag, Object: o} }

// Reference wraps a pointer to a live Value slot as a TagReference value;
// no op in internal/interp produces or consumes one.
func Reference(target *Value) Value { return Value{Tag: TagReference, Ref: target} }

// IsPrimitive reports whether v is not an object-shaped tag.
func (v Value) IsPrimitive() bool {
	switch v.Tag {
	case TagObject, TagFunction, TagError, TagRegexp, TagDate, TagNumber, TagString, TagBoolean:
		return false
	default:
		return true
	}
}

func (v Value) IsBoolean() bool { return v.Tag == TagTrue || v.Tag == TagFalse }
func (v Value) IsNumber() bool  { return v.Tag == TagInteger || v.Tag == TagBinary }
func (v Value) IsString() bool {
	switch v.Tag {
	case TagText, TagChars, TagBuffer:
		return true
	default:
		return false
	}
}
func (v Value) IsObject() bool {
	switch v.Tag {
	case TagObject, TagFunction, TagError, TagRegexp, TagDate, TagNumber, TagString, TagBoolean:
		return true
	default:
		return false
	}
}
func (v Value) IsUndefined() bool { return v.Tag == TagUndefined }
func (v Value) IsNull() bool      { return v.Tag == TagNull }
func (v Value) IsDynamic() bool   { return v.IsObject() } // objects are "dynamic" (mutable identity)

// IsTrue implements ES5 ToBoolean; interp calls it directly on operand
// values (e.g. for `if`/`&&`/`!`).
func (v Value) IsTrue() bool {
	switch v.Tag {
	case TagUndefined, TagNull, TagFalse:
		return false
	case TagTrue:
		return true
	case TagInteger:
		return v.Integer != 0
	case TagBinary:
		return v.Binary != 0 && v.Binary == v.Binary // false for NaN too
	case TagText, TagChars, TagBuffer:
		return v.StringLength() != 0
	default:
		return true // objects are always truthy
	}
}

// StringBytes returns the raw UTF-8 bytes for any string-carrying tag.
func (v Value) StringBytes() []byte {
	switch v.Tag {
	case TagText:
		return v.Text.Bytes
	case TagChars:
		return v.Chars.Bytes
	case TagBuffer:
		return v.buf[:v.bufLen]
	default:
		return nil
	}
}

// StringValue returns the Go string for any string-carrying tag.
func (v Value) StringValue() string { return string(v.StringBytes()) }

// StringLength returns the byte length for any string-carrying tag. (ES5
// String.length is defined in UTF-16 code units; callers needing that count
// use chars.ToUTF16Length(v.StringValue()) instead.)
func (v Value) StringLength() int { return len(v.StringBytes()) }
