package jdelta

// Aggregate returns the similarity of the subtree rooted at n:
//   - a node with a score and no children returns its score
//   - added, removed and type mismatch nodes return 0
//   - an aligned container returns the mean of Aggregate over its children,
//     or 1 when both sides were empty
func Aggregate(n *Node) float64 {
	if n == nil {
		return 0
	}
	if n.IsContainer() {
		if len(n.Children) == 0 {
			return 1
		}
		var sum float64
		for _, c := range n.Children {
			sum += Aggregate(c.Node)
		}
		return sum / float64(len(n.Children))
	}
	switch n.Kind {
	case KindAdded, KindRemoved, KindTypeMismatch:
		return 0
	}
	return n.Score.Or(0)
}

// childMean averages the scores children already carry without descending
// into them.
func childMean(children []Child) float64 {
	if len(children) == 0 {
		return 1
	}
	var sum float64
	for _, c := range children {
		switch c.Node.Kind {
		case KindAdded, KindRemoved, KindTypeMismatch:
		default:
			sum += c.Node.Score.Or(0)
		}
	}
	return sum / float64(len(children))
}

// KeyScore is the aggregate score of one top-level key.
type KeyScore struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// KeyScores returns the aggregate score of each child of an object root in
// alignment order. It returns nil for any other node.
func KeyScores(n *Node) []KeyScore {
	if n == nil || n.Container != TypeObject {
		return nil
	}
	out := make([]KeyScore, len(n.Children))
	for i, c := range n.Children {
		out[i] = KeyScore{Key: c.Key, Score: Aggregate(c.Node)}
	}
	return out
}
