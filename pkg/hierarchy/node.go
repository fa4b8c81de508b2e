package hierarchy

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/gdpmap/pkg/errors"
)

// Levels of the GDP tree.
const (
	LevelWorld   = 0
	LevelRegion  = 1
	LevelCountry = 2
)

// Node is one rectangle of the treemap.
//
// Leaves carry their own Value (GDP in current US$) and Change (annual GDP
// growth as a fraction, 0.0254 for 2.54%). Inner nodes leave both unset;
// their value is the sum of their leaves, see [Tree.Value].
type Node struct {
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Level    int      `json:"level"`
	Value    float64  `json:"value,omitempty"`
	Change   *float64 `json:"change,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is an indexed, immutable view over a root [Node].
type Tree struct {
	root   *Node
	byCode map[string]*Node
	parent map[*Node]*Node
	value  map[*Node]float64
	sorted map[*Node][]*Node
}

// NewTree indexes root. It fails with an INVALID_INPUT error when root is
// not at [LevelWorld], when a code is empty or used twice, when a child's level is not its parent's level plus
// one, or when a leaf value is negative or not finite.
//
// The tree takes ownership of root; callers must not modify it afterwards.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree has no root")
	}
	if root.Level != LevelWorld {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root %q is at level %d", root.Code, root.Level)
	}
	t := &Tree{
		root:   root,
		byCode: make(map[string]*Node),
		parent: make(map[*Node]*Node),
		value:  make(map[*Node]float64),
		sorted: make(map[*Node][]*Node),
	}
	if _, err := t.index(root, nil); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) index(n, parent *Node) (float64, error) {
	if n.Code == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "node %q has no code", n.Name)
	}
	if _, dup := t.byCode[n.Code]; dup {
		return 0, errors.New(errors.ErrCodeInvalidInput, "duplicate code %q", n.Code)
	}
	if parent != nil && n.Level != parent.Level+1 {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"node %q at level %d under level %d", n.Code, n.Level, parent.Level)
	}
	t.byCode[n.Code] = n
	if parent != nil {
		t.parent[n] = parent
	}

	if n.IsLeaf() {
		if n.Value < 0 || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "node %q has invalid value %v", n.Code, n.Value)
		}
		t.value[n] = n.Value
		return n.Value, nil
	}

	var sum float64
	for _, c := range n.Children {
		v, err := t.index(c, n)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	t.value[n] = sum

	// Largest first; ties keep input order.
	children := slices.Clone(n.Children)
	slices.SortStableFunc(children, func(a, b *Node) int {
		return cmp.Compare(t.value[b], t.value[a])
	})
	t.sorted[n] = children
	return sum, nil
}

// Root returns the level 0 node.
func (t *Tree) Root() *Node { return t.root }

// Find returns the node with the given code.
func (t *Tree) Find(code string) (*Node, bool) {
	n, ok := t.byCode[code]
	return n, ok
}

// Parent returns the parent of n, or nil for the root and for nodes that
// are not part of t.
func (t *Tree) Parent(n *Node) *Node { return t.parent[n] }

// Value returns the summed leaf value of the subtree rooted at n.
func (t *Tree) Value(n *Node) float64 { return t.value[n] }

// Children returns the children of n ordered by descending value.
// The returned slice must not be modified.
func (t *Tree) Children(n *Node) []*Node { return t.sorted[n] }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.byCode) }

// Walk calls fn for n and its descendants in depth-first, value-descending
// order, stopping early when fn returns false.
func (t *Tree) Walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range t.Children(n) {
		if !t.Walk(c, fn) {
			return false
		}
	}
	return true
}
