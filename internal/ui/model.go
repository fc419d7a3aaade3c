package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/theme"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

// EventMsg wraps an orchestrator event for Program.Send.
type EventMsg struct {
	Event orchestrator.Event
}

// ConnectionClosedMsg reports the control stream ending without a clean
// detach notification.
type ConnectionClosedMsg struct{}

// drag tracks an in-progress separator drag. target is the pane whose
// slice the drag resizes; cols/lines are its size when the drag began.
type drag struct {
	target   protocol.PaneID
	vertical bool // a vertical bar, i.e. a horizontal split boundary
	startX   int
	startY   int
	cols     int
	lines    int
}

// Model is the Bubble Tea model for the attached session.
type Model struct {
	orch *orchestrator.Orchestrator
	exec func(command string)

	styles *theme.Styles
	width  int
	height int

	connected bool
	quitting  bool
	status    string
	statusErr bool

	switcher *switcher
	drag     *drag
}

// NewModel builds the model. exec issues one raw command through the
// gateway and is used for the few operations that are not keystrokes:
// separator resizes and detaching.
func NewModel(orch *orchestrator.Orchestrator, exec func(command string)) *Model {
	return &Model{
		orch:   orch,
		exec:   exec,
		styles: theme.Default(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case EventMsg:
		return m.handleEvent(msg.Event)
	case ConnectionClosedMsg:
		m.quitting = true
		m.status = "connection closed"
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	if m.switcher != nil {
		return m, m.switcher.update(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(e orchestrator.Event) (tea.Model, tea.Cmd) {
	switch v := e.(type) {
	case orchestrator.InitialWindowsOpened:
		m.connected = true
	case orchestrator.Detached:
		m.quitting = true
		m.status = "detached"
		if v.Reason != "" {
			m.status = "detached: " + v.Reason
		}
		return m, tea.Quit
	case orchestrator.WindowOpened, orchestrator.WindowClosed, orchestrator.WindowRenamed:
		if m.switcher != nil {
			m.switcher.setItems(m.orch.Windows())
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.switcher != nil {
		return m.handleSwitcherKey(msg)
	}
	switch {
	case msg.Type == tea.KeyCtrlQ:
		m.switcher = newSwitcher(m.orch.Windows())
		return m, nil
	case msg.Type == tea.KeyCtrlLeft, msg.Type == tea.KeyCtrlRight,
		msg.Type == tea.KeyCtrlUp, msg.Type == tea.KeyCtrlDown:
		m.moveFocus(msg.Type)
		return m, nil
	case msg.Type == tea.KeyRunes && msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] == 'd':
		m.exec("detach-client")
		return m, nil
	case msg.Type == tea.KeyRunes && msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9':
		windows := m.orch.Windows()
		if idx := int(msg.Runes[0] - '1'); idx < len(windows) {
			m.orch.SetActiveWindow(windows[idx].ID)
		}
		return m, nil
	}
	m.forwardKey(msg)
	return m, nil
}

func (m *Model) handleSwitcherKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape, tea.KeyCtrlQ:
		m.switcher = nil
		return m, nil
	case tea.KeyEnter:
		if item, ok := m.switcher.selected(); ok {
			m.orch.SetActiveWindow(item.ID)
		}
		m.switcher = nil
		return m, nil
	case tea.KeyUp, tea.KeyCtrlP:
		m.switcher.move(-1)
		return m, nil
	case tea.KeyDown, tea.KeyCtrlN:
		m.switcher.move(1)
		return m, nil
	}
	return m, m.switcher.update(msg)
}

// moveFocus asks the server to focus the neighbouring pane; the resulting
// %window-pane-changed notification moves the local focus.
func (m *Model) moveFocus(key tea.KeyType) {
	pane, ok := m.orch.ActivePane()
	if !ok {
		return
	}
	flag := map[tea.KeyType]string{
		tea.KeyCtrlLeft:  "-L",
		tea.KeyCtrlRight: "-R",
		tea.KeyCtrlUp:    "-U",
		tea.KeyCtrlDown:  "-D",
	}[key]
	m.exec(fmt.Sprintf("select-pane %s -t %s", flag, pane))
}

// forwardKey encodes the key and hands it to the focused pane's session;
// the session's data hook carries it out through the gateway.
func (m *Model) forwardKey(msg tea.KeyMsg) {
	data := keyToBytes(msg)
	if len(data) == 0 {
		return
	}
	pane, ok := m.orch.ActivePane()
	if !ok {
		return
	}
	if session, ok := m.orch.Registry().Session(pane); ok {
		session.SendData(data)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if d, ok := m.hitSeparator(msg.X, msg.Y-tabBarHeight); ok {
			m.drag = d
			m.orch.SetDragging(true)
		}
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		d := m.drag
		m.drag = nil
		if d.vertical {
			if delta := msg.X - d.startX; delta != 0 {
				m.exec(fmt.Sprintf("resize-pane -t %s -x %d", d.target, d.cols+delta))
			}
		} else {
			if delta := msg.Y - tabBarHeight - d.startY; delta != 0 {
				m.exec(fmt.Sprintf("resize-pane -t %s -y %d", d.target, d.lines+delta))
			}
		}
		m.orch.SetDragging(false)
	}
	return m, nil
}

// hitSeparator tests whether the (pane-space) coordinates land on a split
// boundary and prepares the drag for it.
func (m *Model) hitSeparator(x, y int) (*drag, bool) {
	var found *drag
	m.orch.RenderActive(func(root view.Node) string {
		found = findSeparator(root, x, y)
		return ""
	})
	return found, found != nil
}

func findSeparator(n view.Node, x, y int) *drag {
	split, ok := n.(*view.Split)
	if !ok {
		return nil
	}
	children := split.Children()
	for i, child := range children {
		if d := findSeparator(child, x, y); d != nil {
			return d
		}
		if i == len(children)-1 {
			continue
		}
		b := child.Bounds()
		if split.Axis() == layout.Horizontal {
			sepX := b.X + b.Cols
			if x == sepX && y >= b.Y && y < b.Y+b.Lines {
				return dragFor(child, true, x, y)
			}
		} else {
			sepY := b.Y + b.Lines
			if y == sepY && x >= b.X && x < b.X+b.Cols {
				return dragFor(child, false, x, y)
			}
		}
	}
	return nil
}

// dragFor resizes the child on the near side of the separator, targeted
// through its first leaf.
func dragFor(child view.Node, vertical bool, x, y int) *drag {
	leaves := view.Leaves(child, nil)
	if len(leaves) == 0 {
		return nil
	}
	b := child.Bounds()
	return &drag{
		target:   leaves[0].Pane(),
		vertical: vertical,
		startX:   x,
		startY:   y,
		cols:     b.Cols,
		lines:    b.Lines,
	}
}
