package pool

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/key"
	"github.com/apfeltee/ecma5go/internal/object"
)

func newRoot(p *Pool) *object.Object {
	return p.NewObject(object.KindPlain, nil)
}

// Spec §8 invariant 8: garbage collection preserves reachability — anything
// reachable from a marked root survives CollectUnmarked, anything not does
// not.
func TestCollectUnmarkedReclaimsOnlyUnreachable(t *testing.T) {
	p := New()
	keys := key.NewTable()
	ctx := &object.Context{Keys: keys}

	root := newRoot(p)
	child := p.NewObject(object.KindPlain, nil)
	orphan := p.NewObject(object.KindPlain, nil)

	ctx.Put(root, object.KeyValue(keys.MakeFromString("child")), object.Value{Tag: object.TagObject, Object: child}, object.Value{Tag: object.TagObject, Object: root}, false)

	p.UnmarkAll()
	p.MarkObject(root)
	p.CollectUnmarked()

	if !root.Marked() || !child.Marked() {
		t.Fatalf("root and child should both be marked live")
	}
	if orphan.Marked() {
		t.Fatalf("orphan should not have been marked")
	}
	if len(p.objects) != 2 {
		t.Fatalf("expected 2 surviving objects, got %d", len(p.objects))
	}
	for _, o := range p.objects {
		if o == orphan {
			t.Fatalf("orphan should have been swept")
		}
	}
}

// A function's Environment must be marked and kept alive whenever the
// function itself is reachable, via object.KindFunction's Mark hook wired
// in init().
func TestFunctionMarkReachesEnvironment(t *testing.T) {
	p := New()
	fn := p.NewFunction(object.KindFunction, nil, nil)

	p.UnmarkAll()
	p.MarkObject(fn)

	if !fn.Function.Environment.Marked() {
		t.Fatalf("marking a function should mark its Environment")
	}

	p.CollectUnmarked()
	if len(p.functions) != 1 || len(p.objects) != 1 {
		t.Fatalf("function and its environment should survive: functions=%d objects=%d", len(p.functions), len(p.objects))
	}
}

func TestFunctionUnreachableSweepsEnvironmentToo(t *testing.T) {
	p := New()
	p.NewFunction(object.KindFunction, nil, nil)

	p.UnmarkAll()
	p.CollectUnmarked()

	if len(p.functions) != 0 {
		t.Fatalf("expected the function to be swept, got %d remaining", len(p.functions))
	}
	if len(p.objects) != 0 {
		t.Fatalf("expected the function's environment to be swept with it, got %d remaining", len(p.objects))
	}
}

// RetainValue/ReleaseValue pin an object independent of the mark pass: a
// retained-but-unmarked object is captured (marked + its own references
// retained) so a collection running between the retain and the next full
// mark walk can't reap it.
func TestRetainCapturesUnmarkedObject(t *testing.T) {
	p := New()
	o := p.NewObject(object.KindPlain, nil)

	p.UnmarkAll()
	v := p.RetainValue(object.Value{Tag: object.TagObject, Object: o})

	if !o.Marked() {
		t.Fatalf("retaining an unmarked object should capture (mark) it")
	}
	if o.RefCount != 1 {
		t.Fatalf("RefCount=%d, want 1", o.RefCount)
	}

	p.CollectUnmarked()
	if len(p.objects) != 1 {
		t.Fatalf("captured object should survive the sweep")
	}

	p.ReleaseValue(v)
	if o.RefCount != 0 {
		t.Fatalf("RefCount after release=%d, want 0", o.RefCount)
	}
}

func TestReleaseValueNeverUnderflows(t *testing.T) {
	p := New()
	o := p.NewObject(object.KindPlain, nil)
	p.ReleaseObject(o)
	if o.RefCount != 0 {
		t.Fatalf("releasing an already-zero refcount should be a no-op, got %d", o.RefCount)
	}
}

// Spec §4.6: an expression statement's checkpoint/collect pair reclaims
// everything allocated while evaluating it and left unreferenced, without
// disturbing anything allocated before the checkpoint.
func TestCollectUnreferencedFromIndicesOnlyAffectsNewAllocations(t *testing.T) {
	p := New()
	before := p.NewObject(object.KindPlain, nil)
	p.RetainValue(object.Value{Tag: object.TagObject, Object: before})

	idx := p.GetIndices()

	p.NewObject(object.KindPlain, nil)      // temporary, never referenced
	p.NewChars([]byte("temp"))              // temporary, never referenced

	p.CollectUnreferencedFromIndices(idx)

	if len(p.objects) != 1 || p.objects[0] != before {
		t.Fatalf("checkpointed collection should leave only the pre-existing object, got %d objects", len(p.objects))
	}
	if len(p.chars) != 0 {
		t.Fatalf("temporary chars buffer should have been collected, got %d remaining", len(p.chars))
	}
}

func TestUnreferenceFromIndicesDropsRefcountsWithoutSweeping(t *testing.T) {
	p := New()
	idx := p.GetIndices()

	o := p.NewObject(object.KindPlain, nil)
	p.RetainValue(object.Value{Tag: object.TagObject, Object: o})
	if o.RefCount != 1 {
		t.Fatalf("RefCount=%d, want 1 after retain", o.RefCount)
	}

	p.UnreferenceFromIndices(idx)
	if o.RefCount != 0 {
		t.Fatalf("RefCount=%d, want 0 after UnreferenceFromIndices", o.RefCount)
	}
	if len(p.objects) != 1 {
		t.Fatalf("UnreferenceFromIndices should not sweep by itself, got %d objects", len(p.objects))
	}
}

func TestGetIndicesSnapshotsPopulationSizes(t *testing.T) {
	p := New()
	p.NewObject(object.KindPlain, nil)
	p.NewFunction(object.KindFunction, nil, nil)
	p.NewChars([]byte("x"))

	idx := p.GetIndices()
	if idx.Objects != 2 || idx.Functions != 1 || idx.Chars != 1 {
		t.Fatalf("unexpected snapshot: %+v", idx)
	}
}
