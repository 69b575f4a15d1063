package object

import "github.com/apfeltee/ecma5go/internal/key"

// classify sorts a property name into element access (a non-negative
// integral number, or a string in canonical index form per
// ElementIndexFromString; idx is the index) or member access by Key (a Key
// value as given, other strings interned through c.Keys).
func (c *Context) classify(prop Value) (idx int, isElement bool, k key.Key) {
	switch prop.Tag {
	case TagInteger:
		if prop.Integer >= 0 {
			return int(prop.Integer), true, key.None
		}
	case TagBinary:
		if i := int(prop.Binary); float64(i) == prop.Binary && i >= 0 {
			return i, true, key.None
		}
	case TagKey:
		return 0, false, prop.Key
	case TagText, TagChars, TagBuffer:
		s := prop.StringValue()
		if idx, ok := ElementIndexFromString(s); ok {
			return idx, true, key.None
		}
		return 0, false, c.Keys.MakeFromString(s)
	}
	return 0, false, key.None
}

// ElementIndexFromString reports whether s is the canonical decimal spelling
// of a non-negative integer within ElementMax, the element-vs-member
// classification rule used throughout property access.
func ElementIndexFromString(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
		if n > ElementMax {
			return 0, false
		}
	}
	return n, true
}

// Get implements property read: element access for integer-shaped names,
// hashmap member access (with accessor invocation) otherwise, walking the
// prototype chain.
func (c *Context) Get(o *Object, prop Value, this Value) Value {
	idx, isElement, k := c.classify(prop)
	if isElement {
		for cur := o; cur != nil; cur = cur.Prototype {
			if v, ok := cur.GetElement(idx); ok {
				return v
			}
			if cur.Kind != KindArray && cur.Kind != KindArguments {
				break
			}
		}
		return Undefined
	}
	if o.Kind == KindArray && k == c.lengthKey() {
		return Int(int32(o.ElementCount))
	}
	v, owner, ok := o.Member(k, false)
	if !ok {
		return Undefined
	}
	if v.Flags&FlagGetter != 0 {
		return c.invokeAccessor(owner, v, this)
	}
	return v
}

// Put implements property write. strict controls whether a
// readonly/non-extensible rejection throws (strict mode) or is silently
// ignored (sloppy mode).
func (c *Context) Put(o *Object, prop Value, val Value, this Value, strict bool) {
	idx, isElement, k := c.classify(prop)
	if !isElement && o.Kind == KindArray && k == c.lengthKey() {
		o.ResizeElement(int(c.ToInteger(val)))
		return
	}
	if isElement {
		if existing, ok := o.GetElement(idx); ok && existing.Flags&FlagReadonly != 0 {
			c.rejectAssignment(strict, "read-only element")
			return
		}
		if !o.Extensible() && idx >= o.ElementCount {
			c.rejectAssignment(strict, "object is not extensible")
			return
		}
		o.SetElement(idx, val)
		return
	}
	if existing, owner, ok := o.Member(k, false); ok {
		if existing.Flags&FlagSetter != 0 {
			c.invokeAccessor(owner, existing, this, val)
			return
		}
		if existing.Flags&FlagGetter != 0 && existing.Flags&FlagSetter == 0 {
			c.rejectAssignment(strict, "property has only a getter")
			return
		}
		if owner == o {
			if existing.Flags&FlagReadonly != 0 {
				c.rejectAssignment(strict, "read-only property")
				return
			}
			existing.Tag, existing.Integer, existing.Binary = val.Tag, val.Integer, val.Binary
			existing.Key, existing.Text, existing.Chars = val.Key, val.Text, val.Chars
			existing.Object, existing.Ref = val.Object, val.Ref
			existing.bufLen, existing.buf = val.bufLen, val.buf
			existing.Flags = existing.Flags&(FlagReadonly|FlagHidden|FlagSealed) | FlagValid
			o.setOwnSlot(k, existing)
			return
		}
	}
	if !o.Extensible() {
		c.rejectAssignment(strict, "object is not extensible")
		return
	}
	o.setOwnSlot(k, val)
}

// Delete removes a property, returning false (and, in strict mode,
// throwing) when the property is sealed/non-configurable.
func (c *Context) Delete(o *Object, prop Value, strict bool) bool {
	idx, isElement, k := c.classify(prop)
	if isElement {
		if ok := o.DeleteElement(idx); !ok {
			c.rejectAssignment(strict, "property is non-configurable")
			return false
		}
		return true
	}
	if v, ok := o.GetSlot(k); ok && v.Flags&FlagSealed != 0 {
		c.rejectAssignment(strict, "property is non-configurable")
		return false
	}
	return o.deleteOwnSlot(k)
}

// HasProperty reports whether k (or an element index) is present anywhere
// on the prototype chain.
func (c *Context) HasProperty(o *Object, prop Value) bool {
	idx, isElement, k := c.classify(prop)
	if isElement {
		for cur := o; cur != nil; cur = cur.Prototype {
			if _, ok := cur.GetElement(idx); ok {
				return true
			}
			if cur.Kind != KindArray && cur.Kind != KindArguments {
				break
			}
		}
		return false
	}
	_, _, ok := o.Member(k, false)
	return ok
}

// DefineAccessor installs a getter and/or setter for k, replacing any
// existing data property.
func (c *Context) DefineAccessor(o *Object, k key.Key, getter, setter *Object, enumerable bool) {
	v := Value{Tag: TagObject}
	flags := FlagAccessor
	if !enumerable {
		flags |= FlagHidden
	}
	if getter != nil {
		v.Object = getter
		v.Flags = flags | FlagGetter
		o.setOwnSlot(k, v)
	}
	if setter != nil {
		sv := Value{Tag: TagObject, Object: setter, Flags: flags | FlagSetter}
		if getter == nil {
			o.setOwnSlot(k, sv)
		} else if getter.Function != nil {
			// store the setter on the getter's Pair so Get/Put can find both
			// halves from a single slot; see FunctionData.Pair.
			getter.Function.Pair = setter
		}
	}
}

func (c *Context) invokeAccessor(owner *Object, slot Value, this Value, arg ...Value) Value {
	getter := slot.Object
	if slot.Flags&FlagGetter != 0 {
		result, thrown := Invoke(c, getter, this, nil)
		if thrown != nil {
			panic(thrown)
		}
		return result
	}
	if slot.Flags&FlagSetter != 0 {
		var args []Value
		if len(arg) > 0 {
			args = arg
		}
		_, thrown := Invoke(c, getter, this, args)
		if thrown != nil {
			panic(thrown)
		}
	}
	return Undefined
}

func (c *Context) rejectAssignment(strict bool, reason string) {
	if strict {
		panic(c.NewTypeError(reason))
	}
}
