package object

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/key"
)

func newTestContext() *Context {
	return &Context{Keys: key.NewTable(), MaxCallDepth: 512}
}

// Spec §8 invariant 5: for any non-readonly Object, Put then Get round-trips.
func TestPutGetRoundTrips(t *testing.T) {
	ctx := newTestContext()
	o := New(KindPlain, nil)
	this := Value{Tag: TagObject, Object: o}

	ctx.Put(o, KeyValue(ctx.Keys.MakeFromString("x")), Int(7), this, false)
	got := ctx.Get(o, KeyValue(ctx.Keys.MakeFromString("x")), this)
	if got.Tag != TagInteger || got.Integer != 7 {
		t.Fatalf("got %+v, want integer 7", got)
	}
}

// Spec §8 invariant 1: get_slot(o,k) != 0 and Member(o,k,asOwn) finds the
// same slot for every live key.
func TestMemberFindsOwnSlot(t *testing.T) {
	ctx := newTestContext()
	o := New(KindPlain, nil)
	this := Value{Tag: TagObject, Object: o}
	k := ctx.Keys.MakeFromString("y")

	ctx.Put(o, KeyValue(k), True, this, false)
	v, owner, ok := o.Member(k, false)
	if !ok || owner != o {
		t.Fatalf("Member did not find own slot: ok=%v owner=%v", ok, owner)
	}
	if v.Tag != TagTrue {
		t.Fatalf("got %+v, want True", v)
	}
}

func TestMemberWalksPrototypeChain(t *testing.T) {
	ctx := newTestContext()
	proto := New(KindPlain, nil)
	child := New(KindPlain, proto)
	this := Value{Tag: TagObject, Object: proto}
	k := ctx.Keys.MakeFromString("inherited")

	ctx.Put(proto, KeyValue(k), Int(1), this, false)

	v, owner, ok := child.Member(k, false)
	if !ok || owner != proto {
		t.Fatalf("expected lookup to find proto's slot, got owner=%v ok=%v", owner, ok)
	}
	if v.Integer != 1 {
		t.Fatalf("got %+v, want 1", v)
	}

	if _, _, ok := child.Member(k, true); ok {
		t.Fatalf("as-own lookup should not walk the prototype chain")
	}
}

// Spec §8 invariant 2: element(o,i) reflects elements[i] whenever the slot
// is live.
func TestElementAccess(t *testing.T) {
	o := New(KindArray, nil)
	o.SetElement(0, Int(10))
	o.SetElement(2, Int(30))
	o.ResizeElement(3)

	if v, ok := o.GetElement(0); !ok || v.Integer != 10 {
		t.Fatalf("element 0: got %+v ok=%v", v, ok)
	}
	if v, ok := o.GetElement(2); !ok || v.Integer != 30 {
		t.Fatalf("element 2: got %+v ok=%v", v, ok)
	}
	if _, ok := o.GetElement(1); ok {
		t.Fatalf("element 1 should be unset (holey array)")
	}
}

func TestDeleteFailsOnSealedProperty(t *testing.T) {
	ctx := newTestContext()
	o := New(KindPlain, nil)
	this := Value{Tag: TagObject, Object: o}
	k := ctx.Keys.MakeFromString("sealed")
	ctx.Put(o, KeyValue(k), Int(1), this, false)

	v, _, _ := o.Member(k, false)
	v.Flags |= FlagSealed
	o.setOwnSlot(k, v)

	if ctx.Delete(o, KeyValue(k), false) {
		t.Fatalf("Delete should fail on a sealed property")
	}
	if _, _, ok := o.Member(k, false); !ok {
		t.Fatalf("sealed property should still be present after failed delete")
	}
}

// Spec §8 invariant 6: after Pack, every live leaf is still reachable and
// hashmapCount does not grow.
func TestPackPreservesLiveEntries(t *testing.T) {
	ctx := newTestContext()
	o := New(KindPlain, nil)
	this := Value{Tag: TagObject, Object: o}

	names := []string{"a", "b", "c", "d", "e"}
	for i, n := range names {
		ctx.Put(o, KeyValue(ctx.Keys.MakeFromString(n)), Int(int32(i)), this, false)
	}
	ctx.Delete(o, KeyValue(ctx.Keys.MakeFromString("b")), false)
	ctx.Delete(o, KeyValue(ctx.Keys.MakeFromString("d")), false)

	before := o.hashmapCount
	o.Pack()
	if o.hashmapCount > before {
		t.Fatalf("Pack grew hashmapCount: before=%d after=%d", before, o.hashmapCount)
	}

	for _, n := range []string{"a", "c", "e"} {
		if _, _, ok := o.Member(ctx.Keys.MakeFromString(n), false); !ok {
			t.Fatalf("Pack lost live entry %q", n)
		}
	}
	for _, n := range []string{"b", "d"} {
		if _, _, ok := o.Member(ctx.Keys.MakeFromString(n), false); ok {
			t.Fatalf("Pack resurrected deleted entry %q", n)
		}
	}
}

func TestElementResizeGrowsByDoublingThenChunks(t *testing.T) {
	o := New(KindArray, nil)
	applied, _ := o.ResizeElement(5)
	if applied != 5 {
		t.Fatalf("ResizeElement(5) applied=%d, want 5", applied)
	}
	o.ResizeElement(100)
	if o.ElementCount != 100 {
		t.Fatalf("ElementCount=%d, want 100", o.ElementCount)
	}
}

func TestToStringToBinaryRoundTrip(t *testing.T) {
	ctx := newTestContext()
	for _, s := range []string{"0", "1", "-1", "3.5", "1e10", "-0.25"} {
		v := ctx.ToBinary(InlineString(s))
		got := ctx.ToString(Bin(v))
		want := ctx.ToString(Bin(ctx.ToBinary(InlineString(got))))
		if got != want {
			t.Fatalf("round trip mismatch for %q: got %q want %q", s, got, want)
		}
	}
}

func TestNaNAndSignedZeroComparisons(t *testing.T) {
	ctx := newTestContext()
	nan := Bin(nan())
	if ok, _ := ctx.Less(nan, nan); ok {
		t.Fatalf("NaN should not compare less than itself")
	}
	if ctx.Equals(nan, nan) {
		t.Fatalf("NaN == NaN should be false")
	}
	if !ctx.Equals(Int(0), Bin(-0.0)) {
		t.Fatalf("+0 should equal -0")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
