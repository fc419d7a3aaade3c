// Package reconcile turns parsed layout trees into view trees, preferring
// cheap in-place size updates over structural rebuilds.
package reconcile

import (
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

// Reconciler builds and retires leaf views on behalf of a window. NewLeaf
// creates a view (and its backing session) for a pane; CloseLeaf retires
// a view whose pane no longer appears in the layout.
type Reconciler struct {
	NewLeaf   func(protocol.PaneID) *view.Leaf
	CloseLeaf func(*view.Leaf)
}

// Apply reconciles current against want and returns the resulting root.
// The fast path mutates sizes in place, preserving focus and scroll state
// in the existing widgets; the server emits layout changes on every
// keystroke-driven resize, so rebuilding each time would destroy and
// recreate widgets continuously. Only when structure differs does Apply
// fall back to a full rebuild, detaching live leaves so any with matching
// panes survive into the new tree. rebuilt reports which path ran.
func (r *Reconciler) Apply(current view.Node, want *layout.Node) (root view.Node, rebuilt bool) {
	if current != nil && sameShape(current, want) {
		applyBounds(current, want)
		return current, false
	}

	detached := make(map[protocol.PaneID]*view.Leaf)
	if current != nil {
		for _, leaf := range view.Leaves(current, nil) {
			if p := leaf.Parent(); p != nil {
				p.Detach(leaf)
			}
			detached[leaf.Pane()] = leaf
		}
	}

	root = r.build(want, detached)

	for _, leaf := range detached {
		if r.CloseLeaf != nil {
			r.CloseLeaf(leaf)
		}
	}
	return root, true
}

// sameShape reports whether the existing tree and the wanted layout agree
// on structure: axis, child count, leaf/split kind per child, and the
// pane owned by each leaf.
func sameShape(node view.Node, want *layout.Node) bool {
	switch v := node.(type) {
	case *view.Leaf:
		return want.IsLeaf() && v.Pane() == want.Pane
	case *view.Split:
		if want.IsLeaf() || v.Axis() != want.Axis {
			return false
		}
		children := v.Children()
		if len(children) != len(want.Children) {
			return false
		}
		for i, child := range children {
			if !sameShape(child, want.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func applyBounds(node view.Node, want *layout.Node) {
	node.SetBounds(boundsOf(want))
	if split, ok := node.(*view.Split); ok {
		for i, child := range split.Children() {
			applyBounds(child, want.Children[i])
		}
	}
}

func (r *Reconciler) build(want *layout.Node, detached map[protocol.PaneID]*view.Leaf) view.Node {
	if want.IsLeaf() {
		leaf, ok := detached[want.Pane]
		if ok {
			delete(detached, want.Pane)
		} else {
			leaf = r.NewLeaf(want.Pane)
		}
		leaf.SetBounds(boundsOf(want))
		return leaf
	}
	split := view.NewSplit(want.Axis)
	split.SetBounds(boundsOf(want))
	for _, child := range want.Children {
		split.Append(r.build(child, detached))
	}
	return split
}

func boundsOf(n *layout.Node) view.Rect {
	return view.Rect{X: n.X, Y: n.Y, Cols: n.Width, Lines: n.Height}
}
