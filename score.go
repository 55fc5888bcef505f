package jdelta

import (
	"bytes"
	"fmt"
	"strconv"
)

// Score is a similarity in [0, 1] that may be absent. Added, Removed and
// TypeMismatch nodes carry no score; aggregation treats them as 0.
//
// The zero Score is absent.
type Score struct {
	v  float64
	ok bool
}

// Scored returns a present score clamped to [0, 1].
func Scored(v float64) Score {
	return Score{v: clamp01(v), ok: true}
}

// Get returns the score and whether it is present.
func (s Score) Get() (float64, bool) { return s.v, s.ok }

// Valid reports whether the score is present.
func (s Score) Valid() bool { return s.ok }

// Or returns the score, or def when it is absent.
func (s Score) Or(def float64) float64 {
	if !s.ok {
		return def
	}
	return s.v
}

func (s Score) String() string {
	if !s.ok {
		return "-"
	}
	return strconv.FormatFloat(s.v, 'f', 4, 64)
}

// MarshalJSON encodes a present score as a number and an absent one as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, s.v, 'g', -1, 64), nil
}

// UnmarshalJSON decodes a number or null.
func (s *Score) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = Score{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = Scored(v)
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}
