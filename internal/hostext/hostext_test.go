package hostext

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/object"
	"github.com/apfeltee/ecma5go/internal/script"
)

func newTestEngine(t *testing.T) (*script.Context, *Store) {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cs := script.Create(engineconfig.Default())
	Register(cs, store)
	return cs, store
}

func TestStoreGetPutDelete(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.get("missing"); err != nil || ok {
		t.Fatalf("get(missing) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if err := store.put("greeting", "hello"); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := store.get("greeting")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("get(greeting) = %q ok=%v err=%v, want hello true nil", v, ok, err)
	}
	if err := store.put("greeting", "updated"); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	v, _, _ = store.get("greeting")
	if v != "updated" {
		t.Fatalf("get after overwrite = %q, want updated", v)
	}
	deleted, err := store.delete("greeting")
	if err != nil || !deleted {
		t.Fatalf("delete = %v err=%v, want true nil", deleted, err)
	}
	if _, ok, _ := store.get("greeting"); ok {
		t.Fatalf("key survived delete")
	}
	if deleted, _ := store.delete("greeting"); deleted {
		t.Fatalf("deleting an already-gone key reported true")
	}
}

func TestRegisterExposesDBGlobal(t *testing.T) {
	cs, _ := newTestEngine(t)
	defer cs.Destroy()

	result, code := cs.EvalInput("test", `
		db.put("name", "ecma5go");
		var before = db.get("name");
		var missing = db.get("nope");
		var removed = db.delete("name");
		[before, missing, removed];
	`)
	if code != script.ExitSuccess {
		t.Fatalf("EvalInput failed: code=%v result=%v", code, cs.RawContext().ToString(result))
	}
	arr := result.Object
	if arr == nil || arr.Kind != object.KindArray {
		t.Fatalf("expected array completion value, got %#v", result)
	}
	before, _ := arr.GetElement(0)
	if before.StringValue() != "ecma5go" {
		t.Fatalf("before = %v, want ecma5go", before)
	}
	missing, _ := arr.GetElement(1)
	if !missing.IsUndefined() {
		t.Fatalf("missing = %v, want undefined", missing)
	}
	removed, _ := arr.GetElement(2)
	if !removed.IsTrue() {
		t.Fatalf("removed = %v, want true", removed)
	}
}

func TestRegisterGetThrowsOnClosedStore(t *testing.T) {
	cs, store := newTestEngine(t)
	defer cs.Destroy()
	store.Close()

	_, code := cs.EvalInput("test", `db.get("anything");`)
	if code != script.ExitThrew {
		t.Fatalf("expected a thrown error after the store was closed, got code=%v", code)
	}
}
