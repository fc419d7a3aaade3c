// Package view models the on-screen tree of terminal widgets: leaf views
// bound to pane sessions, and split containers arranging them. The
// reconciler mutates this tree; the UI renders it.
package view

import (
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/term"
)

// Rect is a node's position and size in character cells.
type Rect struct {
	X     int
	Y     int
	Cols  int
	Lines int
}

// Node is either a *Leaf or a *Split.
type Node interface {
	Bounds() Rect
	SetBounds(Rect)
	Parent() *Split
	setParent(*Split)
}

// Leaf displays one pane's virtual session.
type Leaf struct {
	pane    protocol.PaneID
	session *term.Session
	bounds  Rect
	parent  *Split
}

// NewLeaf binds a view to a pane session.
func NewLeaf(pane protocol.PaneID, session *term.Session) *Leaf {
	return &Leaf{pane: pane, session: session}
}

func (l *Leaf) Pane() protocol.PaneID   { return l.pane }
func (l *Leaf) Session() *term.Session { return l.session }
func (l *Leaf) Bounds() Rect           { return l.bounds }
func (l *Leaf) Parent() *Split         { return l.parent }
func (l *Leaf) setParent(p *Split)     { l.parent = p }

// SetBounds records the cell rectangle and pushes the new size into the
// session so content re-wraps at the right width.
func (l *Leaf) SetBounds(r Rect) {
	l.bounds = r
	if l.session != nil {
		l.session.SetImageSize(r.Lines, r.Cols)
	}
}

// Split arranges its children along one axis.
type Split struct {
	axis     layout.Axis
	bounds   Rect
	parent   *Split
	children []Node
}

func NewSplit(axis layout.Axis) *Split {
	return &Split{axis: axis}
}

func (s *Split) Axis() layout.Axis   { return s.axis }
func (s *Split) Bounds() Rect        { return s.bounds }
func (s *Split) SetBounds(r Rect)    { s.bounds = r }
func (s *Split) Parent() *Split      { return s.parent }
func (s *Split) setParent(p *Split)  { s.parent = p }
func (s *Split) Children() []Node    { return s.children }

// Append reparents child under s.
func (s *Split) Append(child Node) {
	if p := child.Parent(); p != nil {
		p.Detach(child)
	}
	child.setParent(s)
	s.children = append(s.children, child)
}

// Detach removes child from s without destroying it, so it can survive
// deletion of its old container and be reattached elsewhere.
func (s *Split) Detach(child Node) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			child.setParent(nil)
			return
		}
	}
}

// Leaves collects every leaf under n in tree order. The accumulator is
// explicit so callers compose collections without shared mutable state.
func Leaves(n Node, acc []*Leaf) []*Leaf {
	switch v := n.(type) {
	case *Leaf:
		return append(acc, v)
	case *Split:
		for _, child := range v.children {
			acc = Leaves(child, acc)
		}
	}
	return acc
}
