// Package pool is the engine's memory manager: a tricolour mark-and-sweep
// collector layered over refcounting, tracking three populations
// (functions, plain/array/etc. objects, and char buffers) exactly as
// grounded in original_source/pool.c.
//
// Refcounts pin objects reachable from native bindings or live stack
// values between collections; retaining a not-yet-marked object escalates
// ("captures") its own references so an interleaved collection can't reap
// something a fresh retain just made reachable. A full collection instead
// walks from an explicit root set (see internal/script's GarbageCollect),
// marking everything live and sweeping whatever's left unmarked.
package pool

import (
	"github.com/apfeltee/ecma5go/internal/chars"
	"github.com/apfeltee/ecma5go/internal/object"
)

func init() {
	object.KindFunction.Mark = markFunction
	object.KindFunction.Capture = captureFunction
}

// markFunction is object.KindFunction's Mark hook: a function's Environment,
// accessor/bound-function Pair, and BoundThis are ordinary Go struct fields
// on FunctionData rather than hashmap/element slots, so the generic
// MarkObject walk can't see them without this.
func markFunction(o *object.Object, mark func(object.Value)) {
	fd := o.Function
	if fd == nil {
		return
	}
	mark(object.ObjectValue(object.TagObject, fd.Environment))
	if fd.Pair != nil {
		mark(object.ObjectValue(object.TagFunction, fd.Pair))
	}
	if fd.HasBoundThis {
		mark(fd.BoundThis)
	}
}

// captureFunction mirrors markFunction for the refcount-retain path.
func captureFunction(o *object.Object) {
	fd := o.Function
	if fd == nil {
		return
	}
	fd.Environment.RefCount++
	if !fd.Environment.Marked() {
		fd.Environment.SetMark(true)
		globalPool.CaptureObject(fd.Environment)
	}
	if fd.Pair != nil {
		globalPool.RetainValue(object.ObjectValue(object.TagFunction, fd.Pair))
	}
	if fd.HasBoundThis {
		globalPool.RetainValue(fd.BoundThis)
	}
}

// globalPool is the single process-global collector instance captureFunction
// needs since object.Kind's Capture hook signature (func(*Object)) has no
// room for a *Pool receiver; internal/script's Create installs it via SetGlobal
// before any object is allocated.
var globalPool *Pool

// SetGlobal installs p as the instance Kind hooks route through. Called once
// by internal/script at process-global setup.
func SetGlobal(p *Pool) { globalPool = p }

// Pool owns the three tracking slices. internal/script creates one Pool per
// Context and installs it as the package-level instance Kind hooks route
// through (see SetGlobal), tearing it down again on Context teardown.
type Pool struct {
	functions []*object.Object
	objects   []*object.Object
	chars     []*object.CharBuffer
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// NewObject allocates a non-callable object and registers it for
// collection. Kind must not be object.KindFunction; use NewFunction for that.
func (p *Pool) NewObject(kind *object.Kind, proto *object.Object) *object.Object {
	o := object.New(kind, proto)
	p.objects = append(p.objects, o)
	return o
}

// NewFunction allocates a callable object plus its lexical Environment,
// registering both: the function itself in the functions population, its
// Environment in the objects population (Environment is an ordinary Object
// in this port, unlike pool.c's embedded-by-value environment member — see
// DESIGN.md for why that makes the dual object/environment-mark check in
// pool.c's collectunmarked unnecessary here).
func (p *Pool) NewFunction(kind *object.Kind, proto, envProto *object.Object) *object.Object {
	fn := object.NewFunction(kind, proto, envProto)
	p.functions = append(p.functions, fn)
	p.objects = append(p.objects, fn.Function.Environment)
	return fn
}

// NewChars wraps b in a fresh refcounted buffer and registers it.
func (p *Pool) NewChars(b []byte) *object.CharBuffer {
	c := chars.CreateWithBytes(b)
	p.chars = append(p.chars, c)
	return c
}

// ---- marking -------------------------------------------------------------

// UnmarkAll clears the mark bit across every tracked population; the first
// step of a full collection.
func (p *Pool) UnmarkAll() {
	for _, fn := range p.functions {
		fn.SetMark(false)
		fn.Function.Environment.SetMark(false)
	}
	for _, o := range p.objects {
		o.SetMark(false)
	}
	for _, c := range p.chars {
		c.SetMark(false)
	}
}

// MarkValue marks whatever heap allocation v refers to, if any.
func (p *Pool) MarkValue(v object.Value) {
	if v.IsObject() {
		p.MarkObject(v.Object)
	} else if v.Tag == object.TagChars {
		v.Chars.SetMark(true)
	}
}

// MarkObject marks o and recursively marks everything it can reach:
// its prototype, its own elements and hashmap properties, and (via
// Kind.Mark) anything a specific object kind stores outside the generic
// slots — a function's Environment/Pair/BoundThis, in particular.
func (p *Pool) MarkObject(o *object.Object) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMark(true)
	if o.Prototype != nil {
		p.MarkObject(o.Prototype)
	}
	for _, v := range o.Elements {
		if v.Flags&object.FlagValid != 0 {
			p.MarkValue(v)
		}
	}
	for _, k := range o.OwnKeysIncludingHidden() {
		if v, ok := o.GetSlot(k); ok {
			p.MarkValue(v)
		}
	}
	if o.Kind != nil && o.Kind.Mark != nil {
		o.Kind.Mark(o, p.MarkValue)
	}
}

// ---- refcounting ----------------------------------------------------------

// ReleaseObject drops o's refcount and, on the 0-crossing, releases
// everything o itself owned a reference to. Refcount underflows are
// guarded: dropping an already-zero count is a no-op.
func (p *Pool) ReleaseObject(o *object.Object) {
	if o.RefCount > 0 {
		o.RefCount--
		if o.RefCount == 0 {
			p.CleanupObject(o)
		}
	}
}

// ReleaseValue drops the refcount of whatever v refers to, if anything.
func (p *Pool) ReleaseValue(v object.Value) object.Value {
	if v.Tag == object.TagChars {
		if v.Chars.RefCount > 0 {
			v.Chars.RefCount--
		}
	}
	if v.IsObject() {
		p.ReleaseObject(v.Object)
	}
	return v
}

// RetainValue bumps the refcount of whatever v refers to, and if that
// object had not previously been marked live, captures it: the
// mid-execution-mark escalation that keeps an object born during a retain
// (after a collection has already run its mark pass) from being treated as
// unreachable by any later sweep in the same cycle.
func (p *Pool) RetainValue(v object.Value) object.Value {
	if v.Tag == object.TagChars {
		v.Chars.RefCount++
	}
	if v.IsObject() {
		v.Object.RefCount++
		if !v.Object.Marked() {
			v.Object.SetMark(true)
			p.CaptureObject(v.Object)
		}
	}
	return v
}

// CleanupObject releases the references o itself was holding (its
// prototype and every live element/hashmap value) without removing o from
// its tracking slice; the slice removal and any Kind.Finalize happen in the
// sweep passes below, once o is confirmed dead.
func (p *Pool) CleanupObject(o *object.Object) {
	if o.Prototype != nil && o.Prototype.RefCount > 0 {
		o.Prototype.RefCount--
	}
	for _, v := range o.Elements {
		if v.Flags&object.FlagValid != 0 {
			p.ReleaseValue(v)
		}
	}
	for _, k := range o.OwnKeysIncludingHidden() {
		if v, ok := o.GetSlot(k); ok {
			p.ReleaseValue(v)
		}
	}
}

// CaptureObject retains everything o references, marking and recursively
// capturing anything not already marked. Mirrors ecc_mempool_captureobject.
func (p *Pool) CaptureObject(o *object.Object) {
	if o.Prototype != nil {
		o.Prototype.RefCount++
		if !o.Prototype.Marked() {
			o.Prototype.SetMark(true)
			p.CaptureObject(o.Prototype)
		}
	}
	for _, v := range o.Elements {
		if v.Flags&object.FlagValid != 0 {
			p.RetainValue(v)
		}
	}
	for _, k := range o.OwnKeysIncludingHidden() {
		if v, ok := o.GetSlot(k); ok {
			p.RetainValue(v)
		}
	}
	if o.Kind != nil && o.Kind.Capture != nil {
		o.Kind.Capture(o)
	}
}

// ---- sweeping --------------------------------------------------------------

func finalizeAndZero(o *object.Object) {
	if o.Kind != nil && o.Kind.Finalize != nil {
		o.Kind.Finalize(o)
	}
}

// CollectUnmarked sweeps every tracked population, destroying anything left
// unmarked after a full UnmarkAll+mark pass. Order matters: functions
// before plain objects before char buffers, so a function's Finalize never
// outlives objects it might still reference during teardown.
func (p *Pool) CollectUnmarked() {
	for i := len(p.functions) - 1; i >= 0; i-- {
		fn := p.functions[i]
		if !fn.Marked() && !fn.Function.Environment.Marked() {
			p.functions[i] = p.functions[len(p.functions)-1]
			p.functions = p.functions[:len(p.functions)-1]
		}
	}
	for i := len(p.objects) - 1; i >= 0; i-- {
		o := p.objects[i]
		if !o.Marked() {
			finalizeAndZero(o)
			p.objects[i] = p.objects[len(p.objects)-1]
			p.objects = p.objects[:len(p.objects)-1]
		}
	}
	for i := len(p.chars) - 1; i >= 0; i-- {
		if !p.chars[i].Marked() {
			p.chars[i] = p.chars[len(p.chars)-1]
			p.chars = p.chars[:len(p.chars)-1]
		}
	}
}

// Indices is a population-size checkpoint, taken before evaluating a
// statement whose temporaries should be reclaimed as soon as it completes
// rather than waiting for the next full collection.
type Indices struct {
	Functions int
	Objects   int
	Chars     int
}

// GetIndices snapshots the current population sizes.
func (p *Pool) GetIndices() Indices {
	return Indices{Functions: len(p.functions), Objects: len(p.objects), Chars: len(p.chars)}
}

// CollectUnreferencedFromIndices reclaims everything allocated since idx
// that is no longer referenced, without disturbing anything allocated
// before the checkpoint. Used after an expression statement discards its
// result: any object/chars/function born while evaluating it and not
// captured by a longer-lived assignment is collected immediately, bracketing
// each statement the way the op list's autorelease pair does.
func (p *Pool) CollectUnreferencedFromIndices(idx Indices) {
	for i := len(p.objects) - 1; i >= idx.Objects; i-- {
		if p.objects[i].RefCount <= 0 {
			p.CleanupObject(p.objects[i])
		}
	}
	for i := len(p.objects) - 1; i >= idx.Objects; i-- {
		o := p.objects[i]
		if o.RefCount > 0 && !o.Marked() {
			o.SetMark(true)
			p.CaptureObject(o)
		}
	}

	for i := len(p.functions) - 1; i >= idx.Functions; i-- {
		fn := p.functions[i]
		if fn.RefCount <= 0 && fn.Function.Environment.RefCount <= 0 {
			p.functions[i] = p.functions[len(p.functions)-1]
			p.functions = p.functions[:len(p.functions)-1]
		}
	}
	for i := len(p.objects) - 1; i >= idx.Objects; i-- {
		if p.objects[i].RefCount <= 0 {
			finalizeAndZero(p.objects[i])
			p.objects[i] = p.objects[len(p.objects)-1]
			p.objects = p.objects[:len(p.objects)-1]
		}
	}
	for i := len(p.chars) - 1; i >= idx.Chars; i-- {
		if p.chars[i].RefCount <= 0 {
			p.chars[i] = p.chars[len(p.chars)-1]
			p.chars = p.chars[:len(p.chars)-1]
		}
	}
}

// UnreferenceFromIndices drops one reference from every allocation made
// since idx, without collecting: the counterpart to the temporary refcount
// bump an expression-statement result receives while it's live on the
// (conceptual) stack, undone once the statement's value is no longer needed.
func (p *Pool) UnreferenceFromIndices(idx Indices) {
	for i := len(p.functions) - 1; i >= idx.Functions; i-- {
		p.functions[i].RefCount--
		p.functions[i].Function.Environment.RefCount--
	}
	for i := len(p.objects) - 1; i >= idx.Objects; i-- {
		p.objects[i].RefCount--
	}
	for i := len(p.chars) - 1; i >= idx.Chars; i-- {
		p.chars[i].RefCount--
	}
}
