package jdelta

import (
	"fmt"
	"strconv"
)

// Align compares baseline a against new value b and returns the diff tree.
//
// Objects are matched by key: keys present on both sides come first in
// baseline order, then baseline-only keys (Removed), then new-only keys
// (Added) in the new value's order. Arrays are matched by index, never by
// content; the longer side's tail yields Removed or Added nodes. A container
// facing any other type is a type mismatch and is not descended into. Leaves
// are compared with CompareScalar.
//
// Align fails only with ErrInvalidInput, when a or b is the zero Value, and
// with ErrResourceExceeded, when the tree is deeper or larger than allowed
// by WithMaxDepth and WithMaxNodes.
func Align(a, b Value, opts ...Option) (*Node, error) {
	if a.IsZero() || b.IsZero() {
		return nil, fmt.Errorf("%w: baseline and new value are required", ErrInvalidInput)
	}
	al := aligner{opts: newOptions(opts)}
	return al.align(a, b, 0)
}

type aligner struct {
	opts  options
	nodes int
}

// count charges one produced node against the node ceiling.
func (al *aligner) count() error {
	al.nodes++
	if al.opts.maxNodes > 0 && al.nodes > al.opts.maxNodes {
		return fmt.Errorf("%w: more than %d nodes", ErrResourceExceeded, al.opts.maxNodes)
	}
	return nil
}

func (al *aligner) align(a, b Value, depth int) (*Node, error) {
	if err := al.count(); err != nil {
		return nil, err
	}
	if a.typ != b.typ || !a.typ.Container() {
		return CompareScalar(a, b), nil
	}
	if al.opts.maxDepth > 0 && depth >= al.opts.maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrResourceExceeded, al.opts.maxDepth)
	}

	n := &Node{Container: a.typ}
	var err error
	switch a.typ {
	case TypeObject:
		n.Children, err = al.alignObjects(a, b, depth)
	case TypeArray:
		n.Children, err = al.alignArrays(a, b, depth)
	}
	if err != nil {
		return nil, err
	}
	n.Score = Scored(childMean(n.Children))
	n.Kind = KindMatch
	for _, c := range n.Children {
		if c.Node.Kind != KindMatch {
			n.Kind = KindValueMismatch
			break
		}
	}
	if added, removed := countEdits(n.Children); added+removed > 0 {
		n.Description = append(n.Description, fmt.Sprintf("%d added, %d removed", added, removed))
	}
	return n, nil
}

func (al *aligner) alignObjects(a, b Value, depth int) ([]Child, error) {
	children := make([]Child, 0, max(len(a.fields), len(b.fields)))
	var removed []Field
	for _, f := range a.fields {
		bv, ok := b.Get(f.Key)
		if !ok {
			removed = append(removed, f)
			continue
		}
		cn, err := al.align(f.Value, bv, depth+1)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", f.Key, err)
		}
		children = append(children, Child{Key: f.Key, Node: cn})
	}
	for _, f := range removed {
		if err := al.count(); err != nil {
			return nil, err
		}
		children = append(children, Child{Key: f.Key, Node: removedNode(f.Value)})
	}
	for _, f := range b.fields {
		if _, ok := a.Get(f.Key); ok {
			continue
		}
		if err := al.count(); err != nil {
			return nil, err
		}
		children = append(children, Child{Key: f.Key, Node: addedNode(f.Value)})
	}
	return children, nil
}

func (al *aligner) alignArrays(a, b Value, depth int) ([]Child, error) {
	size := max(len(a.elems), len(b.elems))
	children := make([]Child, 0, size)
	for i := range size {
		key := strconv.Itoa(i)
		var cn *Node
		switch {
		case i < len(a.elems) && i < len(b.elems):
			var err error
			if cn, err = al.align(a.elems[i], b.elems[i], depth+1); err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
		case i < len(a.elems):
			if err := al.count(); err != nil {
				return nil, err
			}
			cn = removedNode(a.elems[i])
		default:
			if err := al.count(); err != nil {
				return nil, err
			}
			cn = addedNode(b.elems[i])
		}
		children = append(children, Child{Key: key, Node: cn})
	}
	return children, nil
}

func removedNode(v Value) *Node {
	return &Node{Kind: KindRemoved, Src: render(v)}
}

func addedNode(v Value) *Node {
	return &Node{Kind: KindAdded, Dst: render(v)}
}

func countEdits(children []Child) (added, removed int) {
	for _, c := range children {
		switch c.Node.Kind {
		case KindAdded:
			added++
		case KindRemoved:
			removed++
		}
	}
	return added, removed
}
