// Package orchestrator is the top-level state machine that turns gateway
// notifications into pane lifecycle, layout application, and recovery.
package orchestrator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/tmux-control-attach/internal/gateway"
	"github.com/atomicstack/tmux-control-attach/internal/logging/events"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/reconcile"
	"github.com/atomicstack/tmux-control-attach/internal/recovery"
	"github.com/atomicstack/tmux-control-attach/internal/registry"
	"github.com/atomicstack/tmux-control-attach/internal/resize"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Initializing
	Active
)

// Event is pushed toward the UI. The set is closed.
type Event interface{ orchestratorEvent() }

// Redraw asks the UI to re-render; it carries no payload and may be
// coalesced or dropped freely.
type Redraw struct{}

// WindowOpened reports a new tab.
type WindowOpened struct{ Window protocol.WindowID }

// WindowClosed reports a tab going away.
type WindowClosed struct{ Window protocol.WindowID }

// WindowRenamed carries a tab's new title.
type WindowRenamed struct {
	Window protocol.WindowID
	Name   string
}

// InitialWindowsOpened fires once attach initialization completes.
type InitialWindowsOpened struct{}

// PaneRecovered fires once per pane when state recovery finishes.
type PaneRecovered struct{ Pane protocol.PaneID }

// Detached reports the control connection ending.
type Detached struct{ Reason string }

func (Redraw) orchestratorEvent()               {}
func (WindowOpened) orchestratorEvent()         {}
func (WindowClosed) orchestratorEvent()         {}
func (WindowRenamed) orchestratorEvent()        {}
func (InitialWindowsOpened) orchestratorEvent() {}
func (PaneRecovered) orchestratorEvent()        {}
func (Detached) orchestratorEvent()             {}

// Window is one remote window mapped to a local tab.
type Window struct {
	ID     protocol.WindowID
	Name   string
	Zoomed bool
	Root   view.Node
	Active protocol.PaneID
}

// WindowInfo is the UI-facing summary of a window.
type WindowInfo struct {
	ID     protocol.WindowID
	Name   string
	Zoomed bool
}

// listWindowsFormat carries the window name last so embedded spaces
// survive field splitting.
const listWindowsFormat = "#{window_id}\t#{window_zoomed_flag}\t#{window_layout}\t#{window_name}"

// Orchestrator wires the gateway, registry, reconciler, resize
// coordinator, and recoverer together. All mutation happens on the
// gateway's reader goroutine; the mutex only protects the UI's reads.
type Orchestrator struct {
	gw *gateway.Gateway

	mu        sync.Mutex
	state     State
	windows   map[protocol.WindowID]*Window
	order     []protocol.WindowID
	active    protocol.WindowID
	session   protocol.SessionID
	sessName  string
	dragging  bool
	hasActive bool

	registry  *registry.Registry
	recoverer *recovery.Recoverer
	resizer   *resize.Coordinator

	events chan Event
}

// New builds the orchestrator and its collaborators around a gateway.
// escapes selects escape-preserving scrollback capture.
func New(gw *gateway.Gateway, resizeInterval time.Duration, escapes bool) *Orchestrator {
	o := &Orchestrator{
		gw:      gw,
		windows: make(map[protocol.WindowID]*Window),
		events:  make(chan Event, 256),
	}
	o.registry = registry.New(registry.Hooks{
		SendKeys:    gw.SendKeys,
		SizeChanged: func() { o.resizer.NotifySizeChange() },
		RequestResume: func(pane protocol.PaneID) {
			gw.Send(fmt.Sprintf("refresh-client -A %s:on", pane), nil)
		},
	})
	o.resizer = resize.NewCoordinator(resizeInterval, o.activeSize, func(cols, lines int) {
		gw.Send(fmt.Sprintf("refresh-client -C %d,%d", cols, lines), nil)
	})
	send := func(command string, cb func(ok bool, response string)) {
		gw.Send(command, cb)
	}
	o.recoverer = recovery.New(send, o.registry, o.paneSize, func(pane protocol.PaneID) {
		o.emit(PaneRecovered{Pane: pane})
	}, escapes)
	return o
}

// Events is the stream the UI consumes.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// Registry exposes pane sessions for input forwarding and rendering.
func (o *Orchestrator) Registry() *registry.Registry { return o.registry }

// emit never blocks the protocol goroutine; a full channel drops the
// event, which is acceptable because every event is a hint layered over
// state the UI re-reads anyway.
func (o *Orchestrator) emit(e Event) {
	select {
	case o.events <- e:
	default:
	}
}

// Initialize issues the single list-all-windows query. Wire it to the
// gateway's ready hook.
func (o *Orchestrator) Initialize() {
	o.mu.Lock()
	o.state = Initializing
	o.mu.Unlock()
	events.Session.Initializing()
	o.gw.Send("list-windows -F \""+listWindowsFormat+"\"", o.handleListWindows)
}

func (o *Orchestrator) handleListWindows(ok bool, response string) {
	if !ok {
		o.finishInitialization(nil)
		return
	}
	o.mu.Lock()
	var opened []protocol.WindowID
	for _, line := range strings.Split(response, "\n") {
		id, zoomed, layoutStr, name, err := parseWindowLine(line)
		if err != nil {
			continue
		}
		win := o.ensureWindowLocked(id)
		win.Name = name
		win.Zoomed = zoomed
		o.applyLayoutLocked(win, layoutStr)
		opened = append(opened, id)
	}
	if len(opened) > 0 && !o.hasActive {
		o.active = opened[0]
		o.hasActive = true
	}
	o.mu.Unlock()

	for _, id := range opened {
		o.emit(WindowOpened{Window: id})
	}
	o.finishInitialization(opened)
}

// finishInitialization fans out recovery for every known pane, then
// reports the initial windows as opened.
func (o *Orchestrator) finishInitialization(windows []protocol.WindowID) {
	for _, id := range windows {
		o.recoverer.FetchWindowState(id)
	}
	for _, pane := range o.registry.PaneIDs() {
		o.recoverer.CapturePane(pane)
	}
	o.mu.Lock()
	o.state = Active
	count := len(o.windows)
	o.mu.Unlock()
	events.Session.Active(count)
	o.emit(InitialWindowsOpened{})
	o.emit(Redraw{})
}

func parseWindowLine(line string) (id protocol.WindowID, zoomed bool, layoutStr, name string, err error) {
	parts := strings.SplitN(line, "\t", 4)
	if len(parts) < 4 {
		return 0, false, "", "", fmt.Errorf("window line has %d fields, want 4", len(parts))
	}
	id, err = protocol.ParseWindowID(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false, "", "", err
	}
	zoomed = strings.TrimSpace(parts[1]) == "1"
	return id, zoomed, strings.TrimSpace(parts[2]), parts[3], nil
}

// HandleNotification dispatches one typed notification. Wire it to the
// gateway's notification hook; it runs on the reader goroutine.
func (o *Orchestrator) HandleNotification(n protocol.Notification) {
	switch v := n.(type) {
	case protocol.Output:
		o.registry.DeliverOutput(v.Pane, v.Data)
		o.emit(Redraw{})
	case protocol.LayoutChange:
		o.handleLayoutChange(v)
	case protocol.WindowAdd:
		o.handleWindowAdd(v.Window)
	case protocol.WindowClose:
		o.handleWindowClose(v.Window)
	case protocol.WindowRenamed:
		o.handleWindowRenamed(v)
	case protocol.WindowPaneChanged:
		o.handleWindowPaneChanged(v)
	case protocol.SessionChanged:
		events.Session.Changed(v.Session.String(), v.Name)
		o.mu.Lock()
		o.session = v.Session
		o.sessName = v.Name
		started := o.state != Idle
		o.mu.Unlock()
		if started {
			// No incremental migration across a session swap: tear
			// everything down and attach fresh.
			o.cleanup()
			o.Initialize()
		}
	case protocol.SessionRenamed:
		o.mu.Lock()
		o.sessName = v.Name
		o.mu.Unlock()
	case protocol.SessionWindowChanged:
		o.mu.Lock()
		if _, ok := o.windows[v.Window]; ok {
			o.active = v.Window
			o.hasActive = true
		}
		o.mu.Unlock()
		o.resizer.NotifySizeChange()
		o.emit(Redraw{})
	case protocol.SessionsChanged:
		// Bookkeeping for other sessions is out of scope.
	case protocol.PauseOutput:
		o.registry.PausePane(v.Pane)
	case protocol.ContinueOutput:
		o.registry.ContinuePane(v.Pane)
		o.emit(Redraw{})
	case protocol.ClientSessionChanged:
		// The remote rebuilt its idea of this client; the next size
		// report must go out even if numerically unchanged.
		o.resizer.Reset()
		o.resizer.NotifySizeChange()
	case protocol.ClientDetached:
		// Another client detaching does not affect us.
	case protocol.Exit:
		o.cleanup()
		o.mu.Lock()
		o.state = Idle
		o.mu.Unlock()
		events.Session.Detached(v.Reason)
		o.emit(Detached{Reason: v.Reason})
	}
}

func (o *Orchestrator) handleLayoutChange(v protocol.LayoutChange) {
	o.mu.Lock()
	// A change can land while initialization is still draining its
	// list-windows fan-out (a %window-add races the listing); any window
	// already known gets the fresher geometry.
	if o.state == Idle || o.dragging {
		o.mu.Unlock()
		return
	}
	win, ok := o.windows[v.Window]
	if !ok {
		o.mu.Unlock()
		return
	}
	win.Zoomed = v.Zoomed
	o.applyLayoutLocked(win, v.Layout)
	o.mu.Unlock()
	o.emit(Redraw{})
}

func (o *Orchestrator) handleWindowAdd(id protocol.WindowID) {
	events.Session.WindowAdded(id.String())
	o.mu.Lock()
	o.ensureWindowLocked(id)
	if !o.hasActive {
		o.active = id
		o.hasActive = true
	}
	o.mu.Unlock()

	filter := fmt.Sprintf("#{==:#{window_id},%s}", id)
	cmd := fmt.Sprintf("list-windows -f \"%s\" -F \"%s\"", filter, listWindowsFormat)
	o.gw.Send(cmd, func(ok bool, response string) {
		if !ok {
			return
		}
		wid, zoomed, layoutStr, name, err := parseWindowLine(strings.TrimRight(response, "\n"))
		if err != nil || wid != id {
			return
		}
		o.mu.Lock()
		win := o.ensureWindowLocked(id)
		win.Name = name
		win.Zoomed = zoomed
		o.applyLayoutLocked(win, layoutStr)
		panes := win.paneIDs()
		o.mu.Unlock()

		o.recoverer.FetchWindowState(id)
		for _, pane := range panes {
			o.recoverer.CapturePane(pane)
		}
		o.emit(WindowOpened{Window: id})
		o.emit(Redraw{})
	})
}

func (o *Orchestrator) handleWindowClose(id protocol.WindowID) {
	events.Session.WindowClosed(id.String())
	o.mu.Lock()
	win, ok := o.windows[id]
	if !ok {
		o.mu.Unlock()
		return
	}
	delete(o.windows, id)
	for i, wid := range o.order {
		if wid == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	panes := win.paneIDs()
	if o.active == id {
		o.hasActive = len(o.order) > 0
		if o.hasActive {
			o.active = o.order[0]
		}
	}
	o.mu.Unlock()

	for _, pane := range panes {
		o.registry.DestroyPaneSession(pane)
	}
	o.emit(WindowClosed{Window: id})
	o.emit(Redraw{})
}

func (o *Orchestrator) handleWindowRenamed(v protocol.WindowRenamed) {
	events.Session.WindowRenamed(v.Window.String(), v.Name)
	o.mu.Lock()
	if win, ok := o.windows[v.Window]; ok {
		win.Name = v.Name
	}
	o.mu.Unlock()
	o.emit(WindowRenamed{Window: v.Window, Name: v.Name})
}

func (o *Orchestrator) handleWindowPaneChanged(v protocol.WindowPaneChanged) {
	o.mu.Lock()
	if win, ok := o.windows[v.Window]; ok {
		win.Active = v.Pane
	}
	o.mu.Unlock()
	o.emit(Redraw{})
}

// ensureWindowLocked returns the window entry, creating it with a
// placeholder name that holds until the first rename arrives.
func (o *Orchestrator) ensureWindowLocked(id protocol.WindowID) *Window {
	if win, ok := o.windows[id]; ok {
		return win
	}
	win := &Window{ID: id, Name: id.String()}
	o.windows[id] = win
	o.order = append(o.order, id)
	return win
}

// applyLayoutLocked parses and reconciles one window's layout. The full
// layout drives reconciliation even when the window is zoomed: hidden
// panes keep their sessions and content, and the zoom flag only affects
// presentation. A malformed description leaves the previous tree
// untouched.
func (o *Orchestrator) applyLayoutLocked(win *Window, layoutStr string) {
	node, err := layout.Parse(layoutStr)
	if err != nil {
		events.Layout.Malformed(win.ID.String(), err)
		return
	}
	rec := &reconcile.Reconciler{
		NewLeaf: func(pane protocol.PaneID) *view.Leaf {
			session := o.registry.CreatePaneSession(pane)
			return view.NewLeaf(pane, session)
		},
		CloseLeaf: func(leaf *view.Leaf) {
			o.registry.DestroyPaneSession(leaf.Pane())
		},
	}
	root, rebuilt := rec.Apply(win.Root, node)
	win.Root = root
	events.Layout.Applied(win.ID.String(), len(node.PaneIDs()), rebuilt)
}

// cleanup tears down every window and pane session.
func (o *Orchestrator) cleanup() {
	o.resizer.Stop()
	o.registry.Clear()
	o.mu.Lock()
	o.windows = make(map[protocol.WindowID]*Window)
	o.order = nil
	o.hasActive = false
	o.mu.Unlock()
}

// SetDragging gates layout application and resize reporting during an
// interactive splitter drag.
func (o *Orchestrator) SetDragging(dragging bool) {
	o.mu.Lock()
	o.dragging = dragging
	o.mu.Unlock()
	o.resizer.SetSuspended(dragging)
}

func (w *Window) paneIDs() []protocol.PaneID {
	if w.Root == nil {
		return nil
	}
	var ids []protocol.PaneID
	for _, leaf := range view.Leaves(w.Root, nil) {
		ids = append(ids, leaf.Pane())
	}
	return ids
}

// activeSize measures the active window's tree for the resize
// coordinator. It runs on the debounce timer's goroutine, so the walk
// happens under the structure lock to keep it off half-reconciled nodes.
func (o *Orchestrator) activeSize() (cols, lines int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.hasActive {
		return 0, 0, false
	}
	win, found := o.windows[o.active]
	if !found || win.Root == nil {
		return 0, 0, false
	}
	cols, lines = resize.Measure(win.Root)
	return cols, lines, true
}

// paneSize reports a pane's target size once a layout has established one.
func (o *Orchestrator) paneSize(pane protocol.PaneID) (lines, cols int, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, win := range o.windows {
		if win.Root == nil {
			continue
		}
		for _, leaf := range view.Leaves(win.Root, nil) {
			if leaf.Pane() == pane {
				b := leaf.Bounds()
				return b.Lines, b.Cols, true
			}
		}
	}
	return 0, 0, false
}

// Windows lists tabs in order for the UI.
func (o *Orchestrator) Windows() []WindowInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	infos := make([]WindowInfo, 0, len(o.order))
	for _, id := range o.order {
		if win, ok := o.windows[id]; ok {
			infos = append(infos, WindowInfo{ID: win.ID, Name: win.Name, Zoomed: win.Zoomed})
		}
	}
	return infos
}

// ActiveWindow returns the focused tab, if any.
func (o *Orchestrator) ActiveWindow() (protocol.WindowID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active, o.hasActive
}

// SetActiveWindow switches the focused tab locally.
func (o *Orchestrator) SetActiveWindow(id protocol.WindowID) {
	o.mu.Lock()
	if _, ok := o.windows[id]; ok {
		o.active = id
		o.hasActive = true
	}
	o.mu.Unlock()
	o.resizer.NotifySizeChange()
}

// ActivePane returns the focused pane of the focused window.
func (o *Orchestrator) ActivePane() (protocol.PaneID, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.hasActive {
		return 0, false
	}
	win, ok := o.windows[o.active]
	if !ok || win.Root == nil {
		return 0, false
	}
	leaves := view.Leaves(win.Root, nil)
	if len(leaves) == 0 {
		return 0, false
	}
	for _, leaf := range leaves {
		if leaf.Pane() == win.Active {
			return win.Active, true
		}
	}
	return leaves[0].Pane(), true
}

// SetActivePane moves focus within the active window.
func (o *Orchestrator) SetActivePane(pane protocol.PaneID) {
	o.mu.Lock()
	if win, ok := o.windows[o.active]; ok && o.hasActive {
		win.Active = pane
	}
	o.mu.Unlock()
}

// RenderActive runs the renderer against the active window's tree while
// holding the structure lock, so the UI never sees a half-reconciled
// tree.
func (o *Orchestrator) RenderActive(render func(view.Node) string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.hasActive {
		return ""
	}
	win, ok := o.windows[o.active]
	if !ok || win.Root == nil {
		return ""
	}
	return render(win.Root)
}

// SessionName reports the attached session's current name.
func (o *Orchestrator) SessionName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessName
}

// CurrentState reports the lifecycle state.
func (o *Orchestrator) CurrentState() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
