package builtins_test

import (
	"testing"

	"github.com/apfeltee/ecma5go/internal/engineconfig"
	"github.com/apfeltee/ecma5go/internal/script"
)

func eval(t *testing.T, src string) string {
	t.Helper()
	cfg := engineconfig.Default()
	cfg.StringResult = true
	cfg.PrintLastThrow = false
	cs := script.Create(cfg)
	defer cs.Destroy()

	result, code := cs.EvalInput("<test>", src)
	if code != script.ExitSuccess {
		t.Fatalf("eval of %q threw: %s", src, cs.RawContext().ToString(result))
	}
	return result.StringValue()
}

func evalThrows(t *testing.T, src string) {
	t.Helper()
	cfg := engineconfig.Default()
	cfg.PrintLastThrow = false
	cs := script.Create(cfg)
	defer cs.Destroy()

	_, code := cs.EvalInput("<test>", src)
	if code != script.ExitThrew {
		t.Fatalf("expected %q to throw", src)
	}
}

func TestObjectKeysAndDefineProperty(t *testing.T) {
	got := eval(t, `Object.keys({a:1,b:2}).join(',');`)
	if got != "a,b" {
		t.Fatalf("got %q", got)
	}
}

func TestObjectDefinePropertyNonEnumerableHiddenFromKeys(t *testing.T) {
	got := eval(t, `
		var o={};
		Object.defineProperty(o, 'hidden', {value:1, enumerable:false});
		o.visible = 2;
		Object.keys(o).join(',');
	`)
	if got != "visible" {
		t.Fatalf("got %q", got)
	}
}

func TestArrayPushPopShiftUnshift(t *testing.T) {
	got := eval(t, `
		var a=[1,2,3];
		a.push(4);
		a.unshift(0);
		a.pop();
		a.shift();
		a.join(',');
	`)
	if got != "1,2,3" {
		t.Fatalf("got %q", got)
	}
}

func TestArrayMapFilterReduce(t *testing.T) {
	got := eval(t, `[1,2,3,4].map(function(x){return x*2;}).filter(function(x){return x>4;}).reduce(function(a,b){return a+b;},0)+'';`)
	if got != "14" {
		t.Fatalf("got %q", got)
	}
}

func TestArraySliceAndIndexOf(t *testing.T) {
	got := eval(t, `var a=[1,2,3,4,5]; a.slice(1,3).join(',') + ':' + a.indexOf(3);`)
	if got != "2,3:2" {
		t.Fatalf("got %q", got)
	}
}

// Spec §8 scenario 5: split on a capturing group interleaves the captures.
func TestStringSplitOnCapturingRegexInterleavesCaptures(t *testing.T) {
	got := eval(t, `"a1b2c".split(/(\d)/).join(',');`)
	want := "a,1,b,2,c"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStringReplaceWithFunction(t *testing.T) {
	got := eval(t, `"abc".replace(/b/, function(m){ return m.toUpperCase(); });`)
	if got != "aBc" {
		t.Fatalf("got %q", got)
	}
}

func TestStringCommonMethods(t *testing.T) {
	got := eval(t, `"  Hello World  ".trim().toLowerCase().split(' ').join('-');`)
	if got != "hello-world" {
		t.Fatalf("got %q", got)
	}
}

func TestNumberToFixedAndParseFloat(t *testing.T) {
	got := eval(t, `(3.14159).toFixed(2) + ':' + parseFloat('2.5abc');`)
	if got != "3.14:2.5" {
		t.Fatalf("got %q", got)
	}
}

func TestMathBasics(t *testing.T) {
	got := eval(t, `Math.max(1,5,3) + ':' + Math.floor(2.7) + ':' + Math.abs(-4);`)
	if got != "5:2:4" {
		t.Fatalf("got %q", got)
	}
}

func TestJSONStringifyAndParseRoundTrip(t *testing.T) {
	got := eval(t, `
		var o = {a:1, b:[1,2,3], c:"x"};
		var s = JSON.stringify(o);
		var r = JSON.parse(s);
		r.a + ':' + r.b.join(',') + ':' + r.c;
	`)
	if got != "1:1,2,3:x" {
		t.Fatalf("got %q", got)
	}
}

func TestBooleanAndGlobalCoercionFunctions(t *testing.T) {
	got := eval(t, `Boolean(0) + ':' + Boolean('x') + ':' + isNaN(NaN) + ':' + isFinite(1/0);`)
	if got != "false:true:true:false" {
		t.Fatalf("got %q", got)
	}
}

func TestDateGetTimeIsFiniteNumber(t *testing.T) {
	got := eval(t, `isNaN(new Date(2020,0,1).getTime())+'';`)
	if got != "false" {
		t.Fatalf("got %q", got)
	}
}

func TestErrorConstructorsSetNameAndMessage(t *testing.T) {
	got := eval(t, `
		try { null.x; } catch(e){ e.name + ':' + (typeof e.message); }
	`)
	if got != "TypeError:string" {
		t.Fatalf("got %q", got)
	}
}

func TestUncaughtTypeErrorOnNullAccessThrows(t *testing.T) {
	evalThrows(t, `var x = null; x.y;`)
}

func TestFunctionCallApplyBind(t *testing.T) {
	got := eval(t, `
		function f(a,b){ return this.v + a + b; }
		var o={v:10};
		f.call(o,1,2) + ':' + f.apply(o,[1,2]) + ':' + f.bind(o,1)(2);
	`)
	if got != "13:13:13" {
		t.Fatalf("got %q", got)
	}
}
