package jdelta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want float64
	}{
		{"nil", nil, 0},
		{"scored leaf", &Node{Kind: KindValueMismatch, Score: Scored(0.25)}, 0.25},
		{"added", &Node{Kind: KindAdded}, 0},
		{"removed", &Node{Kind: KindRemoved}, 0},
		{"type mismatch", &Node{Kind: KindTypeMismatch}, 0},
		{"empty container", &Node{Container: TypeObject}, 1},
		{"mean of children", &Node{Container: TypeArray, Children: []Child{
			{Key: "0", Node: &Node{Score: Scored(1)}},
			{Key: "1", Node: &Node{Score: Scored(0.5)}},
			{Key: "2", Node: &Node{Kind: KindAdded}},
			{Key: "3", Node: &Node{Container: TypeObject}},
		}}, 0.625},
		{"nested containers average per level", &Node{Container: TypeObject, Children: []Child{
			{Key: "a", Node: &Node{Score: Scored(1)}},
			{Key: "b", Node: &Node{Container: TypeArray, Children: []Child{
				{Key: "0", Node: &Node{Score: Scored(1)}},
				{Key: "1", Node: &Node{Kind: KindRemoved}},
				{Key: "2", Node: &Node{Kind: KindRemoved}},
				{Key: "3", Node: &Node{Kind: KindRemoved}},
			}}},
		}}, 0.625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Aggregate(tt.node), 1e-12)
		})
	}
}

func TestKeyScores(t *testing.T) {
	t.Run("object root", func(t *testing.T) {
		n := mustAlign(t, obj("x", 1, "gone", 1), obj("x", 2, "new", true))
		assert.Equal(t, []KeyScore{
			{Key: "x", Score: 0.5},
			{Key: "gone", Score: 0},
			{Key: "new", Score: 0},
		}, KeyScores(n))
	})

	t.Run("non-object roots have no key scores", func(t *testing.T) {
		assert.Nil(t, KeyScores(mustAlign(t, Array(Number(1)), Array(Number(1)))))
		assert.Nil(t, KeyScores(mustAlign(t, Number(1), Number(1))))
		assert.Nil(t, KeyScores(nil))
	})
}

func TestScore(t *testing.T) {
	var s Score
	assert.False(t, s.Valid())
	assert.Equal(t, 0.3, s.Or(0.3))
	assert.Equal(t, "-", s.String())

	s = Scored(1.5)
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, 0.0, Scored(-1).Or(1))
	assert.Equal(t, "0.5000", Scored(0.5).String())

	b, err := Scored(0.25).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "0.25", string(b))

	var back Score
	assert.NoError(t, back.UnmarshalJSON([]byte("0.25")))
	assert.Equal(t, Scored(0.25), back)
	assert.NoError(t, back.UnmarshalJSON([]byte("null")))
	assert.False(t, back.Valid())
}
