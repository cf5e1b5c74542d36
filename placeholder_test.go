package pipefunc

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderString(t *testing.T) {
	tests := []struct {
		name     string
		p        *Placeholder
		expected string
	}{
		{"root", Root(), "X"},
		{"package_root", X, "X"},
		{"attribute", X.Attr("a"), "X.a"},
		{"item_int", X.Item(1), "X[1]"},
		{"item_string", X.Item("k"), `X["k"]`},
		{"empty_call", X.Call(), "X()"},
		{"call_args", X.Attr("h").Call(2, "s"), `X.h(2, "s")`},
		{"call_keywords", X.Attr("h").Call(2, Kw("k", "v")), `X.h(2, k="v")`},
		{"long_chain", X.Attr("a").Item(0).Attr("b").Call(), "X.a[0].b()"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.p.String())
			assert.Equal(t, tc.expected, fmt.Sprintf("%#v", tc.p))
		})
	}
}

func TestPlaceholderImmutable(t *testing.T) {
	a := X.Attr("a")
	_ = a.Attr("b")
	_ = a.Item(0)
	assert.Equal(t, "X.a", a.String())
	assert.Equal(t, "X", X.String())
}

func TestPlaceholderAttr(t *testing.T) {
	v := obj{A: 1, B: 2}

	t.Run("root_is_identity", func(t *testing.T) {
		out, err := X.Resolve(v)
		require.NoError(t, err)
		assert.Equal(t, v, out)
	})

	t.Run("field", func(t *testing.T) {
		out, err := X.Attr("A").Resolve(v)
		require.NoError(t, err)
		assert.Equal(t, 1, out)

		out, err = X.Attr("B").Resolve(&v)
		require.NoError(t, err)
		assert.Equal(t, 2, out)
	})

	t.Run("nested", func(t *testing.T) {
		nested := obj{A: obj{A: 5}}
		out, err := X.Attr("A").Attr("A").Resolve(nested)
		require.NoError(t, err)
		assert.Equal(t, 5, out)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := X.Attr("missing").Resolve(v)
		require.ErrorIs(t, err, ErrAttribute)

		var attrErr *AttributeError
		require.ErrorAs(t, err, &attrErr)
		assert.Equal(t, "missing", attrErr.Name)
		assert.Equal(t, "pipefunc.obj", attrErr.Type)
	})

	t.Run("unexported_field", func(t *testing.T) {
		_, err := X.Attr("hidden").Resolve(v)
		assert.ErrorIs(t, err, ErrAttribute)
	})

	t.Run("nil_value", func(t *testing.T) {
		_, err := X.Attr("A").Resolve(nil)
		assert.ErrorIs(t, err, ErrAttribute)

		var p *obj
		_, err = X.Attr("A").Resolve(p)
		assert.ErrorIs(t, err, ErrAttribute)
	})

	t.Run("pointer_receiver_on_value", func(t *testing.T) {
		c := counter{N: 1}
		out, err := X.Attr("Inc").Call().Resolve(c)
		require.NoError(t, err)
		assert.Equal(t, 2, out)
		assert.Equal(t, 1, c.N)
	})

	t.Run("pointer_receiver_on_pointer", func(t *testing.T) {
		c := &counter{N: 1}
		out, err := X.Attr("Inc").Call().Resolve(c)
		require.NoError(t, err)
		assert.Equal(t, 2, out)
		assert.Equal(t, 2, c.N)
	})

	t.Run("attr_getter", func(t *testing.T) {
		b := bag{"name": "pipe"}
		out, err := X.Attr("name").Resolve(b)
		require.NoError(t, err)
		assert.Equal(t, "pipe", out)

		_, err = X.Attr("other").Resolve(b)
		assert.ErrorIs(t, err, ErrAttribute)
	})

	t.Run("construction_never_evaluates", func(t *testing.T) {
		p := X.Attr("does").Attr("not").Item(99).Call(1)
		assert.Equal(t, "X.does.not[99](1)", p.String())
	})
}

func TestPlaceholderItem(t *testing.T) {
	seq := []int{1, 2}

	t.Run("index", func(t *testing.T) {
		out, err := X.Item(0).Resolve(seq)
		require.NoError(t, err)
		assert.Equal(t, 1, out)
	})

	t.Run("negative_index", func(t *testing.T) {
		out, err := X.Item(-1).Resolve(seq)
		require.NoError(t, err)
		assert.Equal(t, 2, out)
	})

	t.Run("out_of_range", func(t *testing.T) {
		_, err := X.Item(3).Resolve(seq)
		require.ErrorIs(t, err, ErrIndex)

		var indexErr *IndexError
		require.ErrorAs(t, err, &indexErr)
		assert.Equal(t, 3, indexErr.Index)
		assert.Equal(t, 2, indexErr.Len)

		_, err = X.Item(-3).Resolve(seq)
		assert.ErrorIs(t, err, ErrIndex)
	})

	t.Run("array_and_pointer", func(t *testing.T) {
		arr := [3]string{"a", "b", "c"}
		out, err := X.Item(uint8(2)).Resolve(&arr)
		require.NoError(t, err)
		assert.Equal(t, "c", out)
	})

	t.Run("string", func(t *testing.T) {
		out, err := X.Item(1).Resolve("héllo")
		require.NoError(t, err)
		assert.Equal(t, "é", out)
	})

	t.Run("map", func(t *testing.T) {
		m := map[string]int{"a": 1}
		out, err := X.Item("a").Resolve(m)
		require.NoError(t, err)
		assert.Equal(t, 1, out)

		_, err = X.Item("z").Resolve(m)
		require.ErrorIs(t, err, ErrKey)

		var keyErr *KeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, "z", keyErr.Key)
		assert.Equal(t, `key "z" not found`, keyErr.Error())
	})

	t.Run("map_with_wrong_key_type", func(t *testing.T) {
		_, err := X.Item(1).Resolve(map[string]int{"a": 1})
		assert.ErrorIs(t, err, ErrKey)
	})

	t.Run("map_key_conversion", func(t *testing.T) {
		m := map[int]string{1: "one"}
		out, err := X.Item(1.0).Resolve(m)
		require.NoError(t, err)
		assert.Equal(t, "one", out)

		_, err = X.Item(1.5).Resolve(m)
		assert.ErrorIs(t, err, ErrKey)

		_, err = X.Item(-1).Resolve(map[uint8]string{255: "max"})
		assert.ErrorIs(t, err, ErrKey)
	})

	t.Run("huge_unsigned_index", func(t *testing.T) {
		_, err := X.Item(uint64(math.MaxUint64)).Resolve([]int{1, 2, 3})
		require.ErrorIs(t, err, ErrIndex)

		var indexErr *IndexError
		require.ErrorAs(t, err, &indexErr)
		assert.Equal(t, 3, indexErr.Len)
	})

	t.Run("nested_json_like", func(t *testing.T) {
		doc := map[string]any{"items": []any{map[string]any{"id": 7}}}
		out, err := X.Item("items").Item(0).Item("id").Resolve(doc)
		require.NoError(t, err)
		assert.Equal(t, 7, out)
	})

	t.Run("non_integer_index", func(t *testing.T) {
		_, err := X.Item("0").Resolve(seq)
		assert.ErrorIs(t, err, ErrType)
	})

	t.Run("not_subscriptable", func(t *testing.T) {
		_, err := X.Item(0).Resolve(5)
		assert.ErrorIs(t, err, ErrType)

		_, err = X.Item(0).Resolve(nil)
		assert.ErrorIs(t, err, ErrType)
	})
}

func TestPlaceholderCall(t *testing.T) {
	o := obj{A: 1}

	t.Run("method", func(t *testing.T) {
		out, err := X.Attr("H").Call(2).Resolve(o)
		require.NoError(t, err)
		assert.Equal(t, Tuple{1, 2}, out)
	})

	t.Run("method_without_args", func(t *testing.T) {
		out, err := X.Attr("H").Call().Resolve(o)
		require.NoError(t, err)
		assert.Equal(t, Tuple{1}, out)
	})

	t.Run("method_with_keywords", func(t *testing.T) {
		out, err := X.Attr("K").Call(2, Kw("c", 3)).Resolve(o)
		require.NoError(t, err)
		assert.Equal(t, Tuple{1, 2, Tuple{"c", 3}}, out)
	})

	t.Run("function_value", func(t *testing.T) {
		double := func(n int) int { return n * 2 }
		out, err := X.Call(21).Resolve(double)
		require.NoError(t, err)
		assert.Equal(t, 42, out)
	})

	t.Run("call_args_are_not_resolved", func(t *testing.T) {
		out, err := X.Attr("H").Call(X).Resolve(o)
		require.NoError(t, err)
		assert.Equal(t, Tuple{1, X}, out)
	})

	t.Run("not_callable", func(t *testing.T) {
		_, err := X.Attr("A").Call().Resolve(o)
		assert.ErrorIs(t, err, ErrType)
	})

	t.Run("call_error_unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		fail := func() error { return boom }
		_, err := X.Call().Resolve(fail)
		assert.Same(t, boom, err)
	})

	t.Run("error_in_chain_stops_resolution", func(t *testing.T) {
		_, err := X.Attr("missing").Call().Item(0).Resolve(o)
		assert.ErrorIs(t, err, ErrAttribute)
	})
}
