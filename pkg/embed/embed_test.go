package embed_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apfeltee/ecma5go/pkg/embed"
)

func TestEmbedBindAndCall(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	require.NoError(t, vm.Bind("double", func(x int) int { return x * 2 }))

	result, err := vm.Eval("double(21);")
	require.NoError(t, err)
	require.EqualValues(t, 42, result)
}

func TestEmbedSetAndGet(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	require.NoError(t, vm.Set("greeting", "hello"))
	_, err := vm.Eval("greeting += ', world';")
	require.NoError(t, err)

	v, err := vm.Get("greeting")
	require.NoError(t, err)
	require.Equal(t, "hello, world", v)
}

func TestEmbedCallScriptFunction(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	_, err := vm.Eval(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)

	result, err := vm.Call("add", 2, 3)
	require.NoError(t, err)
	require.EqualValues(t, 5, result)
}

func TestEmbedEvalThrowSurfacesAsError(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	_, err := vm.Eval(`throw new TypeError("boom");`)
	require.Error(t, err)
}

func TestEmbedBindVariadicAndSlice(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	require.NoError(t, vm.Bind("sum", func(nums ...float64) float64 {
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total
	}))

	result, err := vm.Eval("sum(1, 2, 3, 4);")
	require.NoError(t, err)
	require.EqualValues(t, 10, result)
}

func TestEmbedHostObjectRoundTrip(t *testing.T) {
	vm := embed.New()
	defer vm.Close()

	type counter struct{ N int }
	c := &counter{N: 10}
	require.NoError(t, vm.Bind("c", c))

	v, err := vm.Get("c")
	require.NoError(t, err)
	require.Same(t, c, v)
}
