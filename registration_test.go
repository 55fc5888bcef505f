package jdelta

import (
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirective(t *testing.T) {
	t.Run("decode wraps value", func(t *testing.T) {
		r, err := NewRegistry(NewDirective("num", func(dec *jsontext.Decoder) (int, error) { return 11, nil }))
		require.NoError(t, err)

		got, err := r.Value("num", decoderFor("0"))
		require.NoError(t, err)
		assert.Equal(t, Number(11), got)
	})

	t.Run("error bubbles up", func(t *testing.T) {
		r, err := NewRegistry(NewDirective("err", func(dec *jsontext.Decoder) (int, error) { return 0, assert.AnError }))
		require.NoError(t, err)

		got, err := r.Exec("err", decoderFor("0"))
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, got)
	})
}

func TestGroup(t *testing.T) {
	t.Run("empty group succeeds", func(t *testing.T) {
		r, err := NewRegistry(Group())
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("combines multiple directives", func(t *testing.T) {
		r, err := NewRegistry(Group(
			NewDirective("a", func(dec *jsontext.Decoder) (string, error) { return "A", nil }),
			NewDirective("b", func(dec *jsontext.Decoder) (string, error) { return "B", nil }),
		))
		require.NoError(t, err)

		gotA, err := r.Value("a", decoderFor("0"))
		require.NoError(t, err)
		assert.Equal(t, String("A"), gotA)

		gotB, err := r.Value("b", decoderFor("0"))
		require.NoError(t, err)
		assert.Equal(t, String("B"), gotB)
	})

	t.Run("registration error stops processing", func(t *testing.T) {
		called := false
		_, err := NewRegistry(Group(
			Registration(func(r *Registry) error { return assert.AnError }),
			Registration(func(r *Registry) error { called = true; return nil }),
		))
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, called, "later registration ran after error")
	})
}

func TestApply(t *testing.T) {
	t.Run("applies all registrations", func(t *testing.T) {
		count := 0
		r := newRegistry()
		err := Apply(r,
			Registration(func(r *Registry) error { count++; return nil }),
			Registration(func(r *Registry) error { count++; return nil }),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("duplicate directive fails", func(t *testing.T) {
		r := newRegistry()
		err := Apply(r, BinaryDirective, BinaryDirective)
		require.Error(t, err)
	})
}

func TestNewRegistry(t *testing.T) {
	t.Run("empty registry resolves nothing", func(t *testing.T) {
		r, err := NewRegistry()
		require.NoError(t, err)

		got, err := r.Exec("missing", decoderFor("0"))
		require.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("registration error returns nil registry", func(t *testing.T) {
		r, err := NewRegistry(Registration(func(r *Registry) error { return assert.AnError }))
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, r)
	})
}
