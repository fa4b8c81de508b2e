package treemap

import (
	"github.com/matzehuels/gdpmap/pkg/errors"
	"github.com/matzehuels/gdpmap/pkg/hierarchy"
)

// Zoom is the navigation state of a treemap: the root view, or focused on
// one inner node identified by its code. The zero value is the root view.
type Zoom struct {
	code string
}

// Root returns the root view.
func Root() Zoom { return Zoom{} }

// Zoomed returns the view focused on the node with the given code.
// An empty code is the root view.
func Zoomed(code string) Zoom { return Zoom{code: code} }

// IsRoot reports whether z is the root view.
func (z Zoom) IsRoot() bool { return z.code == "" }

// Code returns the focused code, or "" for the root view.
func (z Zoom) Code() string { return z.code }

func (z Zoom) String() string {
	if z.IsRoot() {
		return "root"
	}
	return "zoomed(" + z.code + ")"
}

// Focus returns the node z shows. It fails with NOT_FOUND when the code is
// not in tree and with INVALID_INPUT when it names a leaf.
func (z Zoom) Focus(tree *hierarchy.Tree) (*hierarchy.Node, error) {
	if z.IsRoot() {
		return tree.Root(), nil
	}
	n, ok := tree.Find(z.code)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no node with code %q", z.code)
	}
	if n.IsLeaf() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot zoom into %q: it has no children", z.code)
	}
	return n, nil
}

// In returns the view focused on code. Only inner nodes below the current
// focus can be zoomed into.
func (z Zoom) In(tree *hierarchy.Tree, code string) (Zoom, error) {
	focus, err := z.Focus(tree)
	if err != nil {
		return z, err
	}
	next := Zoomed(code)
	target, err := next.Focus(tree)
	if err != nil {
		return z, err
	}
	if !isAncestor(tree, focus, target) {
		return z, errors.New(errors.ErrCodeInvalidInput, "%q is not inside the current view %s", code, z)
	}
	return next, nil
}

// Out returns the view focused on the parent of the current focus. The
// root view, and a focus whose parent is the root, zoom out to the root.
func (z Zoom) Out(tree *hierarchy.Tree) Zoom {
	focus, err := z.Focus(tree)
	if err != nil {
		return Root()
	}
	parent := tree.Parent(focus)
	if parent == nil || parent == tree.Root() {
		return Root()
	}
	return Zoomed(parent.Code)
}

func isAncestor(tree *hierarchy.Tree, ancestor, n *hierarchy.Node) bool {
	for p := tree.Parent(n); p != nil; p = tree.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}
