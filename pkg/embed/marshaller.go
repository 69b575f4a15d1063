// Marshaller converts between object.Value (the interpreter's universal
// tagged datum) and plain Go values via reflection. ToValue/FromValue take
// a target-type hint for numeric/slice disambiguation, with switch bodies
// built around this engine's Tag/Kind vocabulary.
package embed

import (
	"fmt"
	"reflect"

	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
)

// Marshaller is bound to the script.Context whose objects/keys it builds
// and interns; a VM owns exactly one, created alongside its Context.
type Marshaller struct {
	ctx *object.Context
}

// NewMarshaller builds a Marshaller bound to ctx, needed to allocate
// Array/Object values and intern property keys when converting Go
// slices/maps into the script's object model.
func NewMarshaller(ctx *object.Context) *Marshaller {
	return &Marshaller{ctx: ctx}
}

// ToValue converts a Go value into an object.Value. Anything that isn't one
// of the primitive/slice/map/func shapes below is boxed as a TagHost value
// (object.KindHost, Internal holding the Go value) so it can still be
// passed back out through FromValue without loss, mirroring how funxy's
// marshaller falls back to a HostObject wrapper for values it can't model.
func (m *Marshaller) ToValue(val interface{}) (object.Value, error) {
	if val == nil {
		return object.Null, nil
	}
	switch v := val.(type) {
	case object.Value:
		return v, nil
	case bool:
		return object.Bool(v), nil
	case string:
		return object.InlineString(v), nil
	case int:
		return m.numberValue(float64(v)), nil
	case int32:
		return object.Int(v), nil
	case int64:
		return m.numberValue(float64(v)), nil
	case float32:
		return m.numberValue(float64(v)), nil
	case float64:
		return m.numberValue(v), nil
	case error:
		return object.InlineString(v.Error()), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := object.New(object.KindArray, m.ctx.Proto.Array)
		n := rv.Len()
		for i := 0; i < n; i++ {
			ev, err := m.ToValue(rv.Index(i).Interface())
			if err != nil {
				return object.Undefined, err
			}
			arr.SetElement(i, ev)
		}
		arr.ResizeElement(n)
		return object.ObjectValue(object.TagObject, arr), nil
	case reflect.Map:
		obj := object.New(object.KindPlain, m.ctx.Proto.Object)
		this := object.Value{Tag: object.TagObject, Object: obj}
		for _, mk := range rv.MapKeys() {
			fv, err := m.ToValue(rv.MapIndex(mk).Interface())
			if err != nil {
				return object.Undefined, err
			}
			k := m.ctx.Keys.MakeFromString(fmt.Sprint(mk.Interface()))
			m.ctx.Put(obj, object.KeyValue(k), fv, this, false)
		}
		return object.ObjectValue(object.TagObject, obj), nil
	case reflect.Func:
		return m.funcValue(rv), nil
	case reflect.Ptr:
		if rv.IsNil() {
			return object.Null, nil
		}
	}

	host := object.New(object.KindHost, m.ctx.Proto.Object)
	host.Internal = val
	return object.ObjectValue(object.TagHost, host), nil
}

// numberValue picks TagInteger when f round-trips exactly through int32,
// the same split the lexer applies to numeric literals, and TagBinary
// otherwise.
func (m *Marshaller) numberValue(f float64) object.Value {
	if i := int32(f); float64(i) == f {
		return object.Int(i)
	}
	return object.Bin(f)
}

// funcValue wraps a Go function as a native ES5 function: calling it from
// script marshals arguments in by the callee's declared parameter types and
// marshals the single (or first, ignoring any extra returns) return value
// back out.
func (m *Marshaller) funcValue(fn reflect.Value) object.Value {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	native := func(ctx *object.Context) object.Value {
		args := ctx.Args
		fixed := numIn
		if variadic {
			fixed = numIn - 1
		}
		goArgs := make([]reflect.Value, 0, len(args))
		for i := 0; i < fixed; i++ {
			target := fnType.In(i)
			var av object.Value
			if i < len(args) {
				av = args[i]
			}
			gv, err := m.FromValue(av, target)
			if err != nil {
				panic(ctx.NewTypeError(err.Error()))
			}
			goArgs = append(goArgs, m.coerce(gv, target))
		}
		if variadic {
			elemType := fnType.In(numIn - 1).Elem()
			for i := fixed; i < len(args); i++ {
				gv, err := m.FromValue(args[i], elemType)
				if err != nil {
					panic(ctx.NewTypeError(err.Error()))
				}
				goArgs = append(goArgs, m.coerce(gv, elemType))
			}
		}

		results := fn.Call(goArgs)
		if len(results) == 0 {
			return object.Undefined
		}
		rv, err := m.ToValue(results[0].Interface())
		if err != nil {
			panic(ctx.NewTypeError(err.Error()))
		}
		return rv
	}

	argc := numIn
	if variadic {
		argc = -(numIn - 1)
	}
	f := interp.NativeFunction(m.ctx, "", argc, native)
	return object.Value{Tag: object.TagFunction, Object: f}
}

func (m *Marshaller) coerce(v interface{}, target reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(target)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target)
	}
	return rv
}

// FromValue converts v to a Go value. When target is non-nil it guides
// numeric width/kind conversion (e.g. a TagInteger Value passed to a Go
// function parameter typed float32); pass nil for a "natural" conversion
// (float64 for numbers, etc).
func (m *Marshaller) FromValue(v object.Value, target reflect.Type) (interface{}, error) {
	switch v.Tag {
	case object.TagUndefined, object.TagNull:
		if target != nil {
			return reflect.Zero(target).Interface(), nil
		}
		return nil, nil
	case object.TagTrue:
		return true, nil
	case object.TagFalse:
		return false, nil
	case object.TagInteger:
		return m.numericResult(float64(v.Integer), target), nil
	case object.TagBinary:
		return m.numericResult(v.Binary, target), nil
	case object.TagText, object.TagChars, object.TagBuffer:
		return v.StringValue(), nil
	case object.TagKey:
		return m.ctx.Keys.TextOf(v.Key), nil
	case object.TagHost:
		if v.Object != nil {
			return v.Object.Internal, nil
		}
		return nil, nil
	case object.TagFunction:
		return m.hostFunc(v.Object, target), nil
	case object.TagObject, object.TagString, object.TagNumber, object.TagBoolean, object.TagError, object.TagDate, object.TagRegexp:
		return m.fromObject(v.Object)
	}
	return nil, fmt.Errorf("embed: cannot convert tag %v", v.Tag)
}

func (m *Marshaller) numericResult(f float64, target reflect.Type) interface{} {
	if target != nil {
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return reflect.ValueOf(f).Convert(target).Interface()
		case reflect.Float32:
			return float32(f)
		}
	}
	return f
}

// fromObject converts a script Object back to a Go []interface{} (for an
// Array) or map[string]interface{} (for a plain Object), the inverse of
// ToValue's Slice/Map cases.
func (m *Marshaller) fromObject(o *object.Object) (interface{}, error) {
	if o == nil {
		return nil, nil
	}
	if o.Kind == object.KindArray {
		out := make([]interface{}, o.ElementCount)
		for i := range out {
			gv, err := m.FromValue(o.Elements[i], nil)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	}
	out := make(map[string]interface{})
	this := object.Value{Tag: object.TagObject, Object: o}
	for _, k := range o.OwnKeys() {
		gv, err := m.FromValue(m.ctx.Get(o, object.KeyValue(k), this), nil)
		if err != nil {
			return nil, err
		}
		out[m.ctx.Keys.TextOf(k)] = gv
	}
	return out, nil
}

// hostFunc wraps a script function as a plain Go variadic callback
// (interface{}, via call) so it can be handed straight back to Go code, and
// additionally as target's concrete func type (via reflect.MakeFunc) when
// the caller asked FromValue to convert into one — letting a bound Go
// function accept a script-defined function as a callback argument.
func (m *Marshaller) hostFunc(fn *object.Object, target reflect.Type) interface{} {
	call := func(args ...interface{}) (interface{}, error) {
		vals := make([]object.Value, len(args))
		for i, a := range args {
			v, err := m.ToValue(a)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		result, thrown := object.Invoke(m.ctx, fn, object.Undefined, vals)
		if thrown != nil {
			return nil, fmt.Errorf("%s", m.ctx.ToString(thrown.Value))
		}
		return m.FromValue(result, nil)
	}
	if target == nil || target.Kind() != reflect.Func {
		return call
	}
	return reflect.MakeFunc(target, func(args []reflect.Value) []reflect.Value {
		in := make([]interface{}, len(args))
		for i, a := range args {
			in[i] = a.Interface()
		}
		res, err := call(in...)
		out := make([]reflect.Value, target.NumOut())
		for i := range out {
			out[i] = reflect.Zero(target.Out(i))
		}
		if err == nil && len(out) > 0 && res != nil {
			rv := reflect.ValueOf(res)
			if rv.Type().ConvertibleTo(target.Out(0)) {
				out[0] = rv.Convert(target.Out(0))
			}
		}
		return out
	}).Interface()
}
