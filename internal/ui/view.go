package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

// tabBarHeight is the number of rows above pane space.
const tabBarHeight = 1

// maxTabWidth bounds one tab's share of the bar.
const maxTabWidth = 24

func (m *Model) View() string {
	if m.quitting {
		return m.status + "\n"
	}
	if !m.connected {
		msg := "attaching to tmux..."
		if m.styles.Connecting != nil {
			msg = m.styles.Connecting.Render(msg)
		}
		return msg + "\n"
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	if m.switcher != nil {
		b.WriteString(m.switcher.view(m.styles))
		return b.String()
	}
	b.WriteString(m.renderPanes())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderTabBar() string {
	windows := m.orch.Windows()
	activeID, hasActive := m.orch.ActiveWindow()
	parts := make([]string, 0, len(windows))
	for _, win := range windows {
		name := win.Name
		if name == "" {
			name = win.ID.String()
		}
		label := tabLabel(name, maxTabWidth)
		if win.Zoomed {
			mark := "+Z"
			if m.styles.ZoomMark != nil {
				mark = m.styles.ZoomMark.Render(mark)
			}
			label += mark
		}
		style := m.styles.Tab
		if hasActive && win.ID == activeID {
			style = m.styles.ActiveTab
		}
		if style != nil {
			label = style.Render(label)
		}
		parts = append(parts, label)
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.styles.TabBar != nil && m.width > 0 {
		bar = m.styles.TabBar.Width(m.width).Render(bar)
	}
	return bar
}

// tabLabel sanitizes a remote window name for the bar: any escape
// sequences smuggled into the name are stripped, and the result is
// clipped to a display-cell budget.
func tabLabel(name string, budget int) string {
	clean := ansi.Strip(name)
	if ansi.StringWidth(clean) <= budget {
		return clean
	}
	var b strings.Builder
	width := 0
	for _, r := range clean {
		w := ansi.StringWidth(string(r))
		if width+w > budget-1 {
			break
		}
		b.WriteRune(r)
		width += w
	}
	b.WriteString("…")
	return b.String()
}

func (m *Model) renderPanes() string {
	activePane, _ := m.orch.ActivePane()
	zoomed := false
	if id, ok := m.orch.ActiveWindow(); ok {
		for _, win := range m.orch.Windows() {
			if win.ID == id {
				zoomed = win.Zoomed
				break
			}
		}
	}
	return m.orch.RenderActive(func(root view.Node) string {
		if zoomed {
			// Only the zoomed pane is visible; the hidden panes keep
			// accumulating content off screen.
			for _, leaf := range view.Leaves(root, nil) {
				if leaf.Pane() == activePane {
					return leaf.Session().Render(true)
				}
			}
		}
		return m.renderNode(root, activePane)
	})
}

func (m *Model) renderNode(n view.Node, activePane protocol.PaneID) string {
	switch v := n.(type) {
	case *view.Leaf:
		return v.Session().Render(v.Pane() == activePane)
	case *view.Split:
		children := v.Children()
		parts := make([]string, 0, len(children)*2-1)
		for i, child := range children {
			if i > 0 {
				parts = append(parts, m.separator(v, child))
			}
			parts = append(parts, m.renderNode(child, activePane))
		}
		if v.Axis() == layout.Horizontal {
			return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	return ""
}

// separator draws the one-cell gutter between siblings.
func (m *Model) separator(split *view.Split, after view.Node) string {
	b := split.Bounds()
	var s string
	if split.Axis() == layout.Horizontal {
		rows := make([]string, b.Lines)
		for i := range rows {
			rows[i] = "│"
		}
		s = strings.Join(rows, "\n")
	} else {
		s = strings.Repeat("─", after.Bounds().Cols)
	}
	if m.styles.Separator != nil {
		s = m.styles.Separator.Render(s)
	}
	return s
}

func (m *Model) renderStatus() string {
	left := m.orch.SessionName()
	if left == "" {
		left = "tmux"
	}
	text := "[" + left + "]"
	if m.status != "" {
		text += " " + m.status
	}
	style := m.styles.Status
	if m.statusErr {
		style = m.styles.StatusError
	}
	if style != nil {
		return style.Render(text)
	}
	return text
}
