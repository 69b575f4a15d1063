// Package embed is the high-level Go embedding API that any program
// wanting to script itself with this interpreter is meant to use: a VM
// wrapper over internal/script's lower-level Context, with reflection-based
// Go<->JS value marshalling layered on top so callers never touch
// object.Value directly.
package embed

import (
	"os"

	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/interp"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/script"
)

// VM wraps a script.Context and provides a high-level embedding API: bind
// Go values/functions into global scope, evaluate source, call script
// functions from Go, and convert results back.
type VM struct {
	cs         *script.Context
	marshaller *Marshaller
}

// New creates a VM with the engine's default configuration
// (engineconfig.Default).
func New() *VM {
	return NewWithConfig(engineconfig.Default())
}

// NewWithConfig creates a VM whose underlying script.Context uses cfg
// (e.g. a host wanting PrintLastThrow off, or a tighter MaxCallDepth).
func NewWithConfig(cfg engineconfig.Config) *VM {
	cs := script.Create(cfg)
	return &VM{cs: cs, marshaller: NewMarshaller(cs.RawContext())}
}

// Close tears down the VM's underlying script.Context, releasing its key
// table and pool.
func (v *VM) Close() {
	v.cs.Destroy()
}

// Bind registers a Go function or value under name in global scope. Funcs
// are wrapped as native ES5 functions (marshalling arguments/return value
// through Marshaller); everything else behaves exactly like Set.
func (v *VM) Bind(name string, val interface{}) error {
	return v.Set(name, val)
}

// Set installs a global variable (or, for a Go func, a callable global) in
// the VM.
func (v *VM) Set(name string, val interface{}) error {
	mv, err := v.marshaller.ToValue(val)
	if err != nil {
		return err
	}
	v.cs.AddValue(name, mv, 0)
	return nil
}

// Get retrieves a global variable, converting it back to a Go value.
func (v *VM) Get(name string) (interface{}, error) {
	ctx := v.cs.RawContext()
	k := ctx.Keys.MakeFromString(name)
	this := object.Value{Tag: object.TagObject, Object: ctx.Global}
	val := ctx.Get(ctx.Global, object.KeyValue(k), this)
	return v.marshaller.FromValue(val, nil)
}

// Call invokes a global function by name with args, converting both
// directions through Marshaller. this is undefined, matching an
// unqualified call expression.
func (v *VM) Call(funcName string, args ...interface{}) (result interface{}, err error) {
	ctx := v.cs.RawContext()
	k := ctx.Keys.MakeFromString(funcName)
	this := object.Value{Tag: object.TagObject, Object: ctx.Global}
	fnVal := ctx.Get(ctx.Global, object.KeyValue(k), this)
	if fnVal.Tag != object.TagFunction {
		return nil, &CallError{Name: funcName, Reason: "not a function"}
	}

	vals := make([]object.Value, len(args))
	for i, a := range args {
		mv, err := v.marshaller.ToValue(a)
		if err != nil {
			return nil, err
		}
		vals[i] = mv
	}

	defer func() {
		if r := recover(); r != nil {
			tv, ok := r.(*object.ThrownValue)
			if !ok {
				panic(r)
			}
			err = &CallError{Name: funcName, Reason: ctx.ToString(tv.Value)}
		}
	}()

	resVal, thrown := object.Invoke(ctx, fnVal.Object, object.Undefined, vals)
	if thrown != nil {
		return nil, &CallError{Name: funcName, Reason: ctx.ToString(thrown.Value)}
	}
	return v.marshaller.FromValue(resVal, nil)
}

// Eval executes source and returns its completion value converted to Go.
func (v *VM) Eval(source string) (interface{}, error) {
	result, code := v.cs.EvalInput("<eval>", source)
	if code == script.ExitThrew {
		return nil, &CallError{Name: "<eval>", Reason: v.cs.RawContext().ToString(result)}
	}
	return v.marshaller.FromValue(result, nil)
}

// LoadFile reads path and evaluates it as a script.
func (v *VM) LoadFile(path string) (interface{}, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	result, code := v.cs.EvalInput(path, string(src))
	if code == script.ExitThrew {
		return nil, &CallError{Name: path, Reason: v.cs.RawContext().ToString(result)}
	}
	return v.marshaller.FromValue(result, nil)
}

// AddMethod installs a native function directly, bypassing reflection, for
// hosts that want the exact native-ABI surface internal/builtins itself
// uses rather than Go-func marshalling.
func (v *VM) AddMethod(name string, argc int, fn func(ctx *object.Context) object.Value) {
	f := interp.NativeFunction(v.cs.RawContext(), name, argc, fn)
	v.cs.AddValue(name, object.Value{Tag: object.TagFunction, Object: f}, 0)
}

// Context exposes the underlying script.Context for hosts that need the
// lower-level API (e.g. internal/hostext.Register).
func (v *VM) Context() *script.Context { return v.cs }

// CallError reports a failed Call/Eval/LoadFile: either the named global
// wasn't callable, or the script threw during execution.
type CallError struct {
	Name   string
	Reason string
}

func (e *CallError) Error() string {
	return "embed: " + e.Name + ": " + e.Reason
}
