package jdelta

import (
	"bytes"
	"fmt"
	"math"
)

// epsilon keeps the relative number difference defined when both sides are
// zero.
const epsilon = 1e-12

// CompareScalar compares two leaf values and never fails: every pair of
// inputs, however mismatched, yields a node.
//
//   - bool: 1 when equal, else 0
//   - string: 1 when byte-equal, else 1 - levenshtein/longest (in runes)
//   - number: 1 when equal, else 1 - min(1, |a-b| / max(|a|, |b|, ε)); a NaN
//     or infinity on either side scores 0
//   - binary: 1 when byte-identical, else 0
//   - different types, or any unknown value: type mismatch with no score
//
// Containers passed here are compared atomically on their rendering; use
// Align to compare them element by element.
func CompareScalar(a, b Value) *Node {
	a, b = normalize(a), normalize(b)
	n := &Node{Src: render(a), Dst: render(b)}
	if a.typ != b.typ || a.typ == TypeUnknown {
		return typeMismatch(n, a, b)
	}

	var score float64
	switch a.typ {
	case TypeBool:
		if a.b == b.b {
			score = 1
		}
	case TypeNumber:
		score = compareNumbers(n, a.num, b.num)
	case TypeString:
		score = stringSimilarity(a.str, b.str)
	case TypeBinary:
		if bytes.Equal(a.bin, b.bin) {
			score = 1
		} else {
			n.Description = append(n.Description, fmt.Sprintf("binary content differs (%d bytes to %d bytes)", len(a.bin), len(b.bin)))
		}
	case TypeArray, TypeObject:
		if n.Src.Value == n.Dst.Value {
			score = 1
		}
	}
	n.Score = Scored(score)
	n.Kind = KindValueMismatch
	if score == 1 {
		n.Kind = KindMatch
	}
	return n
}

func typeMismatch(n *Node, a, b Value) *Node {
	n.Kind = KindTypeMismatch
	if a.typ == b.typ {
		n.Description = append(n.Description, fmt.Sprintf("%s values are not comparable", a.TypeName()))
	} else {
		n.Description = append(n.Description, fmt.Sprintf("type changed from %s to %s", a.TypeName(), b.TypeName()))
	}
	return n
}

func compareNumbers(n *Node, a, b float64) float64 {
	if !finite(a) || !finite(b) {
		n.Description = append(n.Description, "non-finite value")
		return 0
	}
	if a == b {
		return 1
	}
	diff := b - a
	n.Description = append(n.Description, fmt.Sprintf("difference %s", signed(diff)))
	rel := math.Abs(diff) / math.Max(math.Max(math.Abs(a), math.Abs(b)), epsilon)
	score := 1 - math.Min(1, rel)
	if score == 1 {
		// rounding in rel must not report a mismatch as a full match
		score = math.Nextafter(1, 0)
	}
	return score
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func signed(f float64) string {
	if f > 0 {
		return "+" + formatNumber(f)
	}
	return formatNumber(f)
}
