// Package registry owns the mapping from pane identifiers to virtual
// terminal sessions and applies the server's output-pacing protocol.
package registry

import (
	"bytes"
	"sync"

	"github.com/atomicstack/tmux-control-attach/internal/logging/events"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/term"
)

// Hooks connect new sessions to the rest of the client. SendKeys is the
// gateway's keystroke sender; SizeChanged feeds the resize coordinator;
// RequestResume asks the server to resume a paused pane.
type Hooks struct {
	SendKeys      func(protocol.PaneID, []byte)
	SizeChanged   func()
	RequestResume func(protocol.PaneID)
}

// Registry exclusively owns every pane session. Mutation happens on the
// protocol-processing goroutine while the UI goroutine looks sessions up
// for input forwarding and rendering, so the maps are lock-protected.
// Hooks and session methods are invoked outside the lock.
type Registry struct {
	hooks Hooks

	mu       sync.Mutex
	sessions map[protocol.PaneID]*term.Session
	paused   map[protocol.PaneID]*bytes.Buffer
}

func New(hooks Hooks) *Registry {
	return &Registry{
		hooks:    hooks,
		sessions: make(map[protocol.PaneID]*term.Session),
		paused:   make(map[protocol.PaneID]*bytes.Buffer),
	}
}

// CreatePaneSession returns the pane's session, creating and wiring it on
// first reference. Idempotent.
func (r *Registry) CreatePaneSession(id protocol.PaneID) *term.Session {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return s
	}
	s := term.NewSession(id)
	if r.hooks.SendKeys != nil {
		s.OnData(func(data []byte) { r.hooks.SendKeys(id, data) })
	}
	if r.hooks.SizeChanged != nil {
		s.OnResize(r.hooks.SizeChanged)
	}
	r.sessions[id] = s
	r.mu.Unlock()
	events.Pane.Created(id.String())
	return s
}

// Session looks up an existing pane session without creating one.
func (r *Registry) Session(id protocol.PaneID) (*term.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// PaneIDs lists every registered pane.
func (r *Registry) PaneIDs() []protocol.PaneID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]protocol.PaneID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// DeliverOutput injects remote bytes into the pane, or buffers them while
// the pane is paused. The buffer is unbounded: backpressure here is
// cooperative, not memory-bounded.
func (r *Registry) DeliverOutput(id protocol.PaneID, data []byte) {
	r.mu.Lock()
	if buf, ok := r.paused[id]; ok {
		buf.Write(data)
		r.mu.Unlock()
		return
	}
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	s.InjectData(data)
}

// PausePane starts buffering the pane's output and immediately asks the
// server to resume it. The pause is advisory buffering; it is not a stop
// signal controlled by local reader speed.
func (r *Registry) PausePane(id protocol.PaneID) {
	r.mu.Lock()
	if _, ok := r.paused[id]; ok {
		r.mu.Unlock()
		return
	}
	r.paused[id] = &bytes.Buffer{}
	r.mu.Unlock()
	events.Pane.Paused(id.String())
	if r.hooks.RequestResume != nil {
		r.hooks.RequestResume(id)
	}
}

// ContinuePane flushes everything buffered while paused as one delivery
// and drops the pause entry.
func (r *Registry) ContinuePane(id protocol.PaneID) {
	r.mu.Lock()
	buf, ok := r.paused[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.paused, id)
	s, haveSession := r.sessions[id]
	r.mu.Unlock()
	events.Pane.Continued(id.String(), buf.Len())
	if haveSession && buf.Len() > 0 {
		s.InjectData(buf.Bytes())
	}
}

// DestroyPaneSession removes the registry entry before closing the
// session, so a re-entrant lookup mid-teardown cannot find it.
func (r *Registry) DestroyPaneSession(id protocol.PaneID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, id)
	delete(r.paused, id)
	r.mu.Unlock()
	s.Close()
	events.Pane.Destroyed(id.String())
}

// Clear destroys every session, used on session swap and detach.
func (r *Registry) Clear() {
	for _, id := range r.PaneIDs() {
		r.DestroyPaneSession(id)
	}
}
