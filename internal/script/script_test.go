package script

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/object"
)

func newTestContext() *Context {
	cfg := engineconfig.Default()
	cfg.StringResult = true
	cfg.PrintLastThrow = false
	return Create(cfg)
}

func evalString(t *testing.T, src string) string {
	t.Helper()
	cs := newTestContext()
	defer cs.Destroy()
	result, code := cs.EvalInput("<test>", src)
	if code != ExitSuccess {
		t.Fatalf("eval of %q threw: %s", src, cs.ctx.ToString(result))
	}
	return result.StringValue()
}

// Spec §8 end-to-end scenario 1: closure + counter.
func TestClosureCounter(t *testing.T) {
	got := evalString(t, `
		var c = (function(){ var n=0; return function(){ return ++n; }; })();
		c(); c(); c();
	`)
	if got != "3" {
		t.Fatalf("got %q, want %q", got, "3")
	}
}

// Spec §8 scenario 2: prototype lookup.
func TestPrototypeLookup(t *testing.T) {
	got := evalString(t, `function A(){} A.prototype.x=1; var a=new A(); a.x+'';`)
	if got != "1" {
		t.Fatalf("got %q, want %q", got, "1")
	}
}

// Spec §8 scenario 3: try/finally ordering.
func TestTryFinallyOrdering(t *testing.T) {
	got := evalString(t, `
		var o=''; try { try { throw 'e'; } finally { o+='f1;'; } } catch(x){ o+='c:'+x+';'; } finally { o+='f2;'; } o;
	`)
	want := "f1;c:e;f2;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Spec §8 scenario 4: for-in enumeration order (elements before members, in
// numeric order).
func TestForInEnumerationOrder(t *testing.T) {
	got := evalString(t, `var o={}; o[2]=1; o.a=1; o[1]=1; var s=''; for(var k in o) s+=k; s;`)
	want := "12a"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Spec §8 scenario 6: sealed property assignment in strict mode throws.
func TestSealedAssignmentStrictThrows(t *testing.T) {
	cs := newTestContext()
	defer cs.Destroy()
	_, code := cs.EvalInput("<test>", `"use strict"; var o={}; Object.defineProperty(o,'x',{value:1}); o.x=2;`)
	if code != ExitThrew {
		t.Fatalf("expected a thrown TypeError, got exit code %v", code)
	}
}

func TestUncaughtThrowSetsExitCode(t *testing.T) {
	cs := newTestContext()
	defer cs.Destroy()
	_, code := cs.EvalInput("<test>", `throw new Error("boom");`)
	if code != ExitThrew {
		t.Fatalf("expected ExitThrew, got %v", code)
	}
}

func TestParseErrorSurfacesAsSyntaxError(t *testing.T) {
	cs := newTestContext()
	defer cs.Destroy()
	_, code := cs.EvalInput("<test>", `var = ;`)
	if code != ExitThrew {
		t.Fatalf("expected a SyntaxError to surface as ExitThrew, got %v", code)
	}
}

func TestAddValueAndEvalSeeIt(t *testing.T) {
	cs := newTestContext()
	defer cs.Destroy()
	cs.AddValue("HOST_CONST", object.Int(42), 0)
	got := evalOn(t, cs, `HOST_CONST + 1;`)
	if got != "43" {
		t.Fatalf("got %q, want %q", got, "43")
	}
}

// Unbounded recursion must surface as a thrown RangeError, not a Go stack
// overflow: object.Invoke checks ctx.CallDepth against ctx.MaxCallDepth on
// every call.
func TestMaxCallDepthThrowsRangeError(t *testing.T) {
	cfg := engineconfig.Default()
	cfg.MaxCallDepth = 50
	cfg.PrintLastThrow = false
	cs := Create(cfg)
	defer cs.Destroy()

	_, code := cs.EvalInput("<test>", `function f(){ return f(); } f();`)
	if code != ExitThrew {
		t.Fatalf("expected exceeding MaxCallDepth to throw, got exit code %v", code)
	}
}

// The arguments object aliases named parameters in sloppy mode: writing
// through arguments[i] is visible via the parameter name and vice versa.
func TestArgumentsObjectAliasesParameters(t *testing.T) {
	got := evalString(t, `
		function f(a){ arguments[0] = 99; return a; }
		f(1)+'';
	`)
	if got != "99" {
		t.Fatalf("got %q, want %q", got, "99")
	}
}

func TestArgumentsObjectLengthAndIndexing(t *testing.T) {
	got := evalString(t, `
		function f(){ return arguments.length + ':' + arguments[0] + ',' + arguments[1]; }
		f('x','y','z');
	`)
	if got != "3:x,y" {
		t.Fatalf("got %q, want %q", got, "3:x,y")
	}
}

// A catch block that itself throws still runs its enclosing finally before
// the new exception propagates.
func TestCatchRethrowStillRunsFinally(t *testing.T) {
	got := evalString(t, `
		var o='';
		try {
			try { throw 'e1'; } catch(x){ o+='c:'+x+';'; throw 'e2'; } finally { o+='f;'; }
		} catch(x){ o+='outer:'+x+';'; }
		o;
	`)
	want := "c:e1;f;outer:e2;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// return inside a try must still run finally before the value actually
// returns to the caller.
func TestReturnInsideTryRunsFinallyFirst(t *testing.T) {
	got := evalString(t, `
		var o='';
		function f(){ try { return 'r'; } finally { o+='f;'; } }
		var r = f();
		o += r;
		o;
	`)
	want := "f;r"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func evalOn(t *testing.T, cs *Context, src string) string {
	t.Helper()
	result, code := cs.EvalInput("<test>", src)
	if code != ExitSuccess {
		t.Fatalf("eval of %q threw: %s", src, cs.ctx.ToString(result))
	}
	return result.StringValue()
}
