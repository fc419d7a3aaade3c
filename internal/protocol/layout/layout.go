// Package layout parses and serializes the compact tree grammar tmux uses
// to describe a window's pane arrangement.
//
// The grammar is ASCII:
//
//	CHECKSUM "," DIMS [ "{" NODE {"," NODE} "}" | "[" NODE {"," NODE} "]" | "," PANE_ID ]
//	DIMS = W "x" H "," X "," Y
//
// {...} holds side-by-side children, [...] holds stacked children, and a
// bare trailing pane number marks a leaf. CHECKSUM is four lowercase hex
// digits covering every byte after the comma that follows it.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

// Axis identifies the direction a split arranges its children in.
type Axis int

const (
	// Horizontal splits place children side by side ({...}).
	Horizontal Axis = iota
	// Vertical splits stack children ([...]).
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Node is one node of a parsed layout tree. A node with no children is a
// leaf owning a pane; otherwise it is a split with at least two children
// along Axis.
type Node struct {
	Width  int
	Height int
	X      int
	Y      int

	Pane     protocol.PaneID
	Axis     Axis
	Children []*Node
}

// IsLeaf reports whether the node directly holds a pane.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits the tree depth first, leaves and splits alike.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// PaneIDs returns the pane of every leaf in tree order.
func (n *Node) PaneIDs() []protocol.PaneID {
	return appendPaneIDs(n, nil)
}

// appendPaneIDs keeps the accumulator explicit so collection stays
// testable without closing over outer mutable state.
func appendPaneIDs(n *Node, acc []protocol.PaneID) []protocol.PaneID {
	if n.IsLeaf() {
		return append(acc, n.Pane)
	}
	for _, child := range n.Children {
		acc = appendPaneIDs(child, acc)
	}
	return acc
}

// MalformedError reports an unparseable layout description. No partial
// tree is ever returned alongside one.
type MalformedError struct {
	Layout string
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed layout %q at offset %d: %s", e.Layout, e.Offset, e.Reason)
}

// Checksum computes the 16-bit rolling checksum tmux applies to a layout
// body: rotate right one bit, then add the byte, modulo 2^16.
func Checksum(body string) uint16 {
	var csum uint16
	for i := 0; i < len(body); i++ {
		csum = (csum >> 1) | ((csum & 1) << 15)
		csum += uint16(body[i])
	}
	return csum
}

// Parse decodes a full layout description, validating its checksum.
func Parse(s string) (*Node, error) {
	if len(s) < 5 || s[4] != ',' {
		return nil, &MalformedError{Layout: s, Offset: 0, Reason: "truncated checksum"}
	}
	sum, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return nil, &MalformedError{Layout: s, Offset: 0, Reason: "bad checksum digits"}
	}
	body := s[5:]
	if actual := Checksum(body); uint16(sum) != actual {
		return nil, &MalformedError{Layout: s, Offset: 0, Reason: fmt.Sprintf("checksum %04x != %04x", sum, actual)}
	}
	p := &parser{layout: s, body: body}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.pos != len(body) {
		return nil, p.errorf("trailing garbage")
	}
	return node, nil
}

// parser is a recursive-descent cursor over the layout body.
type parser struct {
	layout string
	body   string
	pos    int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &MalformedError{Layout: p.layout, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parseNode() (*Node, error) {
	node := &Node{}
	var err error
	if node.Width, err = p.parseInt(); err != nil {
		return nil, err
	}
	if err = p.expect('x'); err != nil {
		return nil, err
	}
	if node.Height, err = p.parseInt(); err != nil {
		return nil, err
	}
	if err = p.expect(','); err != nil {
		return nil, err
	}
	if node.X, err = p.parseInt(); err != nil {
		return nil, err
	}
	if err = p.expect(','); err != nil {
		return nil, err
	}
	if node.Y, err = p.parseInt(); err != nil {
		return nil, err
	}

	switch p.peek() {
	case '{':
		node.Axis = Horizontal
		if err := p.parseChildren(node, '{', '}'); err != nil {
			return nil, err
		}
	case '[':
		node.Axis = Vertical
		if err := p.parseChildren(node, '[', ']'); err != nil {
			return nil, err
		}
	case ',':
		p.pos++
		id, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		node.Pane = protocol.PaneID(id)
	default:
		return nil, p.errorf("expected pane id or bracket")
	}
	return node, nil
}

func (p *parser) parseChildren(node *Node, open, close byte) error {
	p.pos++ // consume open bracket
	for {
		child, err := p.parseNode()
		if err != nil {
			return err
		}
		node.Children = append(node.Children, child)
		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			if len(node.Children) < 2 {
				return p.errorf("split with fewer than two children")
			}
			return nil
		default:
			return p.errorf("unmatched %q", string(open))
		}
	}
}

func (p *parser) parseInt() (int, error) {
	start := p.pos
	for p.pos < len(p.body) && p.body[p.pos] >= '0' && p.body[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected digit")
	}
	n, err := strconv.Atoi(p.body[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad integer: %v", err)
	}
	return n, nil
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", string(c))
	}
	p.pos++
	return nil
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (p *parser) peek() byte {
	if p.pos >= len(p.body) {
		return 0
	}
	return p.body[p.pos]
}

// Serialize is the structural inverse of Parse: it renders the tree and
// prefixes a freshly computed checksum. For any well-formed input string
// s, Serialize(Parse(s)) == s.
func Serialize(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	body := b.String()
	return fmt.Sprintf("%04x,%s", Checksum(body), body)
}

func writeNode(b *strings.Builder, n *Node) {
	fmt.Fprintf(b, "%dx%d,%d,%d", n.Width, n.Height, n.X, n.Y)
	if n.IsLeaf() {
		fmt.Fprintf(b, ",%d", int(n.Pane))
		return
	}
	open, close := byte('{'), byte('}')
	if n.Axis == Vertical {
		open, close = '[', ']'
	}
	b.WriteByte(open)
	for i, child := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNode(b, child)
	}
	b.WriteByte(close)
}
