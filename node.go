package jdelta

// Kind classifies a comparison node.
type Kind uint8

const (
	KindMatch Kind = iota
	KindValueMismatch
	KindTypeMismatch
	KindAdded
	KindRemoved
)

var kindNames = [...]string{
	KindMatch:         "match",
	KindValueMismatch: "value_mismatch",
	KindTypeMismatch:  "type_mismatch",
	KindAdded:         "added",
	KindRemoved:       "removed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Rendered is the string form of one side of a comparison, tagged with the
// name of its Value type.
type Rendered struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func render(v Value) *Rendered {
	return &Rendered{Type: v.TypeName(), Value: Render(v)}
}

// Child is a keyed child of a container node. Array children are keyed by
// their decimal index.
type Child struct {
	Key  string `json:"key"`
	Node *Node  `json:"node"`
}

// Node is one node of the aligned diff tree between a baseline and a new
// value. A Node holds only renderings of the compared values, never
// references to them, and is not modified after construction.
type Node struct {
	Kind Kind `json:"kind"`
	// Src and Dst render the baseline and new values. They are set on leaf,
	// type mismatch, added and removed nodes and left nil on aligned
	// containers.
	Src *Rendered `json:"src,omitempty"`
	Dst *Rendered `json:"dst,omitempty"`
	// Score is absent on added, removed and type mismatch nodes.
	Score Score `json:"score,omitzero"`
	// Container is TypeArray or TypeObject when both sides are containers of
	// that type and were aligned element by element.
	Container   Type     `json:"container,omitzero"`
	Children    []Child  `json:"children,omitempty"`
	Description []string `json:"description,omitempty"`
}

// IsContainer reports whether n is an aligned array or object node.
func (n *Node) IsContainer() bool {
	return n.Container.Container()
}

// Child returns the child stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Key == key {
			return c.Node, true
		}
	}
	return nil, false
}

// Walk calls fn for n and every descendant in depth-first order. path holds
// the keys from the root to the visited node. Returning false from fn skips
// the node's children.
func (n *Node) Walk(fn func(path []string, n *Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) bool) {
	if !fn(path, n) {
		return
	}
	for _, c := range n.Children {
		c.Node.walk(append(path[:len(path):len(path)], c.Key), fn)
	}
}
