package jdelta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(kv ...any) Value {
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, Field{Key: kv[i].(string), Value: FromAny(kv[i+1])})
	}
	return Object(fields...)
}

func childKeys(n *Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Key
	}
	return out
}

func mustAlign(t *testing.T, a, b Value, opts ...Option) *Node {
	t.Helper()
	n, err := Align(a, b, opts...)
	require.NoError(t, err)
	return n
}

func TestAlign_identity(t *testing.T) {
	v := obj(
		"count", 10,
		"name", "alpha",
		"flags", []any{true, false},
		"blob", []byte{1, 2},
		"nested", obj("deep", []any{obj("x", 1.5)}, "empty", []any{}),
	)
	n := mustAlign(t, v, v)
	assert.Equal(t, 1.0, Aggregate(n))
	n.Walk(func(path []string, n *Node) bool {
		assert.Equal(t, KindMatch, n.Kind, "path %v", path)
		assert.Equal(t, 1.0, scoreOf(t, n), "path %v", path)
		return true
	})
}

func TestAlign_objects(t *testing.T) {
	t.Run("common then removed then added", func(t *testing.T) {
		a := obj("r1", 1, "c1", 1, "r2", 1, "c2", 1)
		b := obj("a1", 1, "c2", 1, "a2", 1, "c1", 1)
		n := mustAlign(t, a, b)
		assert.Equal(t, []string{"c1", "c2", "r1", "r2", "a1", "a2"}, childKeys(n))

		r1, _ := n.Child("r1")
		assert.Equal(t, KindRemoved, r1.Kind)
		assert.False(t, r1.Score.Valid())
		assert.Equal(t, &Rendered{Type: "number", Value: "1"}, r1.Src)
		assert.Nil(t, r1.Dst)

		a1, _ := n.Child("a1")
		assert.Equal(t, KindAdded, a1.Kind)
		assert.Nil(t, a1.Src)
		assert.Equal(t, &Rendered{Type: "number", Value: "1"}, a1.Dst)

		assert.Equal(t, KindValueMismatch, n.Kind)
		assert.Equal(t, []string{"2 added, 2 removed"}, n.Description)
	})

	t.Run("pure addition", func(t *testing.T) {
		n := mustAlign(t, obj("a", 1), obj("a", 1, "b", 2))
		a, _ := n.Child("a")
		assert.Equal(t, KindMatch, a.Kind)
		assert.Equal(t, 1.0, scoreOf(t, a))
		b, _ := n.Child("b")
		assert.Equal(t, KindAdded, b.Kind)
		assert.Equal(t, 0.5, Aggregate(n))
		assert.Equal(t, 0.5, scoreOf(t, n))
	})

	t.Run("added container is rendered, not descended", func(t *testing.T) {
		n := mustAlign(t, obj(), obj("list", []any{1, 2}))
		list, _ := n.Child("list")
		assert.Equal(t, KindAdded, list.Kind)
		assert.Equal(t, &Rendered{Type: "array", Value: "[1,2]"}, list.Dst)
		assert.Empty(t, list.Children)
	})

	t.Run("nested recursion", func(t *testing.T) {
		n := mustAlign(t, obj("o", obj("x", 1, "y", "s")), obj("o", obj("x", 1, "y", "t")))
		o, _ := n.Child("o")
		assert.Equal(t, TypeObject, o.Container)
		y, _ := o.Child("y")
		assert.Equal(t, KindValueMismatch, y.Kind)
		assert.Equal(t, 0.0, scoreOf(t, y))
		assert.Equal(t, 0.5, Aggregate(o))
	})
}

func TestAlign_arrays(t *testing.T) {
	t.Run("positional comparison", func(t *testing.T) {
		n := mustAlign(t, FromAny([]any{1, 2, 3}), FromAny([]any{1, 3, 2}))
		assert.Equal(t, TypeArray, n.Container)
		assert.Equal(t, []string{"0", "1", "2"}, childKeys(n))
		second, _ := n.Child("1")
		assert.Equal(t, KindValueMismatch, second.Kind)
	})

	t.Run("longer baseline yields removed tail", func(t *testing.T) {
		n := mustAlign(t, FromAny([]any{1, 2, 3}), FromAny([]any{1}))
		assert.Equal(t, []string{"0", "1", "2"}, childKeys(n))
		for _, k := range []string{"1", "2"} {
			c, _ := n.Child(k)
			assert.Equal(t, KindRemoved, c.Kind)
		}
		assert.InDelta(t, 1.0/3, Aggregate(n), 1e-12)
	})

	t.Run("longer new value yields added tail", func(t *testing.T) {
		n := mustAlign(t, FromAny([]any{"a"}), FromAny([]any{"a", "b"}))
		c, _ := n.Child("1")
		assert.Equal(t, KindAdded, c.Kind)
		assert.Equal(t, []string{"1 added, 0 removed"}, n.Description)
	})
}

func TestAlign_typeMismatch(t *testing.T) {
	t.Run("object against array", func(t *testing.T) {
		a, b := obj("k", 1), FromAny([]any{1})
		ab := mustAlign(t, a, b)
		ba := mustAlign(t, b, a)
		assert.Equal(t, KindTypeMismatch, ab.Kind)
		assert.Equal(t, KindTypeMismatch, ba.Kind)
		assert.Empty(t, ab.Children)
		assert.Equal(t, &Rendered{Type: "object", Value: `{"k":1}`}, ab.Src)
		assert.Equal(t, &Rendered{Type: "array", Value: `[1]`}, ab.Dst)
		assert.Equal(t, ab.Src, ba.Dst)
		assert.Equal(t, ab.Dst, ba.Src)
		assert.Equal(t, 0.0, Aggregate(ab))
	})

	t.Run("container against leaf", func(t *testing.T) {
		n := mustAlign(t, obj("v", obj("x", 1)), obj("v", "x"))
		v, _ := n.Child("v")
		assert.Equal(t, KindTypeMismatch, v.Kind)
		assert.Equal(t, []string{"type changed from object to string"}, v.Description)
	})
}

func TestAlign_empty(t *testing.T) {
	n := mustAlign(t, Object(), Object())
	assert.Equal(t, KindMatch, n.Kind)
	assert.Equal(t, 1.0, Aggregate(n))

	n = mustAlign(t, Array(), Array())
	assert.Equal(t, 1.0, Aggregate(n))

	n = mustAlign(t, Array(), FromAny([]any{1, 2}))
	assert.Equal(t, 0.0, Aggregate(n))

	n = mustAlign(t, obj("a", 1), Object())
	assert.Equal(t, 0.0, Aggregate(n))
}

func TestAlign_errors(t *testing.T) {
	t.Run("absent root", func(t *testing.T) {
		_, err := Align(Value{}, Number(1))
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = Align(Number(1), Value{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown root is valid input", func(t *testing.T) {
		n := mustAlign(t, Unknown("null"), Unknown("null"))
		assert.Equal(t, KindTypeMismatch, n.Kind)
	})

	nested := func(depth int) Value {
		v := Number(1)
		for range depth {
			v = Array(v)
		}
		return v
	}

	t.Run("depth ceiling", func(t *testing.T) {
		v := nested(5)
		_, err := Align(v, v, WithMaxDepth(5))
		require.NoError(t, err)

		_, err = Align(v, v, WithMaxDepth(4))
		require.ErrorIs(t, err, ErrResourceExceeded)
		assert.True(t, strings.HasPrefix(err.Error(), "index 0: "), err.Error())

		_, err = Align(v, v, WithMaxDepth(0))
		require.NoError(t, err)
	})

	t.Run("default depth ceiling", func(t *testing.T) {
		v := nested(DefaultMaxDepth + 1)
		_, err := Align(v, v)
		require.ErrorIs(t, err, ErrResourceExceeded)
	})

	t.Run("node ceiling counts added and removed nodes", func(t *testing.T) {
		a := FromAny([]any{1, 2})
		b := FromAny([]any{1, 2, 3, 4})
		_, err := Align(a, b, WithMaxNodes(5))
		require.NoError(t, err)
		_, err = Align(a, b, WithMaxNodes(4))
		require.ErrorIs(t, err, ErrResourceExceeded)
	})
}

func TestAlign_containerScores(t *testing.T) {
	t.Run("agree with Aggregate", func(t *testing.T) {
		a := obj("x", 1, "l", []any{1, "s", obj("k", true)}, "gone", 1, "o", obj("y", "abcd"))
		b := obj("x", 2, "l", []any{1, 2, obj("k", true), 4}, "o", obj("y", "abce", "z", nil), "new", 1)
		n := mustAlign(t, a, b)
		n.Walk(func(path []string, n *Node) bool {
			if n.IsContainer() {
				assert.InDelta(t, Aggregate(n), scoreOf(t, n), 1e-12, "path %v", path)
			}
			return true
		})
	})

	t.Run("deep chain", func(t *testing.T) {
		const depth = 5000
		a, b := Number(1), Number(2)
		for range depth {
			a, b = Array(a), Array(b)
		}
		n := mustAlign(t, a, b, WithMaxDepth(0))
		for i := 0; i < depth; i++ {
			require.True(t, n.IsContainer(), "depth %d", i)
			require.InDelta(t, 0.5, scoreOf(t, n), 1e-12, "depth %d", i)
			n = n.Children[0].Node
		}
		assert.Equal(t, KindValueMismatch, n.Kind)
		assert.Equal(t, 0.5, scoreOf(t, n))
	})
}

func TestAlign_doesNotRetainInputs(t *testing.T) {
	p := []byte{1, 2, 3}
	a := Binary(p)
	n := mustAlign(t, Object(Field{Key: "b", Value: a}), Object(Field{Key: "b", Value: a}))
	p[0] = 9
	b, _ := n.Child("b")
	assert.Equal(t, "AQID", b.Src.Value)
}
