package jdelta

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Report is the result of comparing a baseline result set against a new one.
type Report struct {
	// Score is the aggregate similarity of the whole tree in [0, 1].
	Score float64 `json:"score"`
	// Keys holds the aggregate score of each top-level key when both roots
	// are objects, in alignment order.
	Keys []KeyScore `json:"keys,omitempty"`
	Root *Node      `json:"root"`
}

// Build compares baseline a against new value b and returns the report.
//
// It fails with ErrInvalidInput when either value is absent and with
// ErrResourceExceeded when the configured ceilings are exceeded; any other
// difference, however large, is expressed in the report.
func Build(a, b Value, opts ...Option) (*Report, error) {
	root, err := Align(a, b, opts...)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return &Report{
		Score: Aggregate(root),
		Keys:  KeyScores(root),
		Root:  root,
	}, nil
}

// KeyScore returns the aggregate score of a top-level key.
func (r *Report) KeyScore(key string) (float64, bool) {
	for _, k := range r.Keys {
		if k.Key == key {
			return k.Score, true
		}
	}
	return 0, false
}

// KeyScoreMap returns the top-level key scores as a map.
func (r *Report) KeyScoreMap() map[string]float64 {
	m := make(map[string]float64, len(r.Keys))
	for _, k := range r.Keys {
		m[k.Key] = k.Score
	}
	return m
}

// Marshal encodes the report as JSON. The encoding is deterministic: the same
// report always yields the same bytes. Pass jsontext.Multiline(true) or
// similar options to change the layout.
func (r *Report) Marshal(opts ...json.Options) ([]byte, error) {
	opts = append([]json.Options{json.Deterministic(true), jsontext.AllowInvalidUTF8(true)}, opts...)
	return json.Marshal(r, opts...)
}
