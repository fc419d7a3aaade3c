// Package term hosts the virtual terminal behind each remote pane. No
// real process is attached: content arrives over the control protocol and
// keystrokes flow back out through the registered data hook.
package term

import (
	"sync"

	"github.com/hinshun/vt10x"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

const (
	defaultCols  = 80
	defaultLines = 24
)

// Session is one pane's virtual terminal. Injected bytes are interpreted
// by a vt10x emulator; the outgoing-data and size-change hooks connect it
// to the gateway's keystroke sender and the resize coordinator.
type Session struct {
	pane protocol.PaneID

	mu    sync.Mutex
	vt    vt10x.Terminal
	cols  int
	lines int

	onData   func([]byte)
	onResize func()
	closed   bool
}

// NewSession creates a session at the default size. The real size arrives
// later, from the layout tree or from state recovery.
func NewSession(pane protocol.PaneID) *Session {
	return &Session{
		pane:  pane,
		vt:    vt10x.New(vt10x.WithSize(defaultCols, defaultLines)),
		cols:  defaultCols,
		lines: defaultLines,
	}
}

// Pane returns the owning pane's identifier.
func (s *Session) Pane() protocol.PaneID { return s.pane }

// OnData registers the outgoing-data hook, fired for user keystrokes.
func (s *Session) OnData(fn func([]byte)) {
	s.mu.Lock()
	s.onData = fn
	s.mu.Unlock()
}

// OnResize registers the size-change hook.
func (s *Session) OnResize(fn func()) {
	s.mu.Lock()
	s.onResize = fn
	s.mu.Unlock()
}

// InjectData feeds remote output into the emulator.
func (s *Session) InjectData(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.vt.Write(data)
}

// SetImageSize resizes the emulated screen. The hook only fires on an
// actual change, which keeps the resize coordinator's debounce quiet
// during no-op layout reapplication.
func (s *Session) SetImageSize(lines, cols int) {
	if lines <= 0 || cols <= 0 {
		return
	}
	s.mu.Lock()
	if s.closed || (s.cols == cols && s.lines == lines) {
		s.mu.Unlock()
		return
	}
	s.cols, s.lines = cols, lines
	s.vt.Resize(cols, lines)
	hook := s.onResize
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Size returns the current emulated screen size.
func (s *Session) Size() (cols, lines int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.lines
}

// SendData forwards user input to the outgoing-data hook. Close may race
// a late keystroke, so the hook is copied out under the lock.
func (s *Session) SendData(data []byte) {
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	hook := s.onData
	s.mu.Unlock()
	if hook != nil {
		hook(data)
	}
}

// Close detaches the session from its hooks and stops accepting data.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.onData = nil
	s.onResize = nil
	s.mu.Unlock()
}
