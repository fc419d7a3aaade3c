// Package recovery restores pre-existing pane content and terminal modes
// on attach. The server is decoupled from local rendering and may have
// been accumulating output and mode changes for an arbitrary time before
// this client connected; both are replayed into the freshly created pane
// before it is shown.
package recovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/tmux-control-attach/internal/logging/events"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/registry"
)

// Sender issues one command through the gateway.
type Sender func(command string, cb func(ok bool, response string))

// PaneState is a transient snapshot of a pane's cursor and terminal
// modes, queried in one batch per window and discarded once replayed.
type PaneState struct {
	CursorX int
	CursorY int

	AltScreen         bool
	ScrollRegionTop   int
	ScrollRegionBot   int
	CursorVisible     bool
	Insert            bool
	Wrap              bool
	AppCursorKeys     bool
	AppKeypad         bool
	MouseStandard     bool
	MouseButton       bool
	MouseAnyMotion    bool
	MouseSGRProtocol  bool
}

// stateFormat is the field-separated per-pane snapshot fetched once per
// window; one line per pane.
const stateFormat = "#{pane_id} #{cursor_x} #{cursor_y} #{alternate_on} " +
	"#{scroll_region_upper} #{scroll_region_lower} #{cursor_flag} " +
	"#{insert_flag} #{wrap_flag} #{keypad_cursor_flag} #{keypad_flag} " +
	"#{mouse_standard_flag} #{mouse_button_flag} #{mouse_all_flag} #{mouse_sgr_flag}"

// clearAndHome erases anything that arrived via live output before the
// pane had its correct size.
const clearAndHome = "\x1b[H\x1b[2J"

// Recoverer drives per-pane recovery. sizeOf reports a pane's target
// terminal size when the layout has already established one; done fires
// exactly once per pane when recovery finishes, successfully or not.
type Recoverer struct {
	send     Sender
	registry *registry.Registry
	sizeOf   func(protocol.PaneID) (lines, cols int, ok bool)
	done     func(protocol.PaneID)
	escapes  bool

	states map[protocol.PaneID]PaneState
}

// New creates a recoverer. escapes selects escape-preserving captures.
func New(send Sender, reg *registry.Registry, sizeOf func(protocol.PaneID) (int, int, bool), done func(protocol.PaneID), escapes bool) *Recoverer {
	return &Recoverer{
		send:     send,
		registry: reg,
		sizeOf:   sizeOf,
		done:     done,
		escapes:  escapes,
		states:   make(map[protocol.PaneID]PaneState),
	}
}

// FetchWindowState queries the mode/cursor snapshot for every pane in a
// window in one round trip.
func (r *Recoverer) FetchWindowState(window protocol.WindowID) {
	cmd := fmt.Sprintf("list-panes -t %s -F \"%s\"", window, stateFormat)
	r.send(cmd, func(ok bool, response string) {
		if !ok {
			return
		}
		for _, line := range strings.Split(response, "\n") {
			pane, state, err := parseStateLine(line)
			if err != nil {
				continue
			}
			r.states[pane] = state
		}
	})
}

// CapturePane requests the pane's full history and replays it, followed
// by any previously fetched mode state. A failed or empty capture is not
// retried; the pane simply completes without recovered content.
func (r *Recoverer) CapturePane(pane protocol.PaneID) {
	flags := "-p"
	if r.escapes {
		flags = "-p -e"
	}
	cmd := fmt.Sprintf("capture-pane %s -t %s -S -", flags, pane)
	r.send(cmd, func(ok bool, response string) {
		if !ok || response == "" {
			events.Pane.CaptureFailed(pane.String())
			delete(r.states, pane)
			r.finish(pane)
			return
		}
		r.applyCapture(pane, response)
	})
}

func (r *Recoverer) applyCapture(pane protocol.PaneID, capture string) {
	session, ok := r.registry.Session(pane)
	if !ok {
		delete(r.states, pane)
		r.finish(pane)
		return
	}

	// Size first: existing wrapped lines must re-wrap at the real width
	// before any content lands.
	if lines, cols, known := r.sizeOf(pane); known {
		session.SetImageSize(lines, cols)
	}
	session.InjectData([]byte(clearAndHome))

	lines := strings.Split(capture, "\n")
	// The server pads captures to full pane height.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		session.InjectData([]byte(line))
		if i < len(lines)-1 {
			session.InjectData([]byte("\r\n"))
		}
	}

	if state, ok := r.states[pane]; ok {
		session.InjectData(stateEscapes(state))
		delete(r.states, pane)
	}
	events.Pane.Recovered(pane.String(), len(lines))
	r.finish(pane)
}

func (r *Recoverer) finish(pane protocol.PaneID) {
	if r.done != nil {
		r.done(pane)
	}
}

// parseStateLine decodes one stateFormat line.
func parseStateLine(line string) (protocol.PaneID, PaneState, error) {
	fields := strings.Fields(line)
	if len(fields) != 15 {
		return 0, PaneState{}, fmt.Errorf("state line has %d fields, want 15", len(fields))
	}
	pane, err := protocol.ParsePaneID(fields[0])
	if err != nil {
		return 0, PaneState{}, err
	}
	nums := make([]int, len(fields)-1)
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, PaneState{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		nums[i] = n
	}
	return pane, PaneState{
		CursorX:          nums[0],
		CursorY:          nums[1],
		AltScreen:        nums[2] != 0,
		ScrollRegionTop:  nums[3],
		ScrollRegionBot:  nums[4],
		CursorVisible:    nums[5] != 0,
		Insert:           nums[6] != 0,
		Wrap:             nums[7] != 0,
		AppCursorKeys:    nums[8] != 0,
		AppKeypad:        nums[9] != 0,
		MouseStandard:    nums[10] != 0,
		MouseButton:      nums[11] != 0,
		MouseAnyMotion:   nums[12] != 0,
		MouseSGRProtocol: nums[13] != 0,
	}, nil
}

// stateEscapes renders the replay burst. The order is fixed: alternate
// screen, scroll region, cursor position, cursor visibility, insert
// mode, application cursor keys, application keypad, wrap mode, then the
// mouse-reporting modes.
func stateEscapes(s PaneState) []byte {
	var b strings.Builder
	writeMode(&b, "\x1b[?1049h", "\x1b[?1049l", s.AltScreen)
	if s.ScrollRegionBot > s.ScrollRegionTop {
		fmt.Fprintf(&b, "\x1b[%d;%dr", s.ScrollRegionTop+1, s.ScrollRegionBot+1)
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", s.CursorY+1, s.CursorX+1)
	writeMode(&b, "\x1b[?25h", "\x1b[?25l", s.CursorVisible)
	writeMode(&b, "\x1b[4h", "\x1b[4l", s.Insert)
	writeMode(&b, "\x1b[?1h", "\x1b[?1l", s.AppCursorKeys)
	writeMode(&b, "\x1b=", "\x1b>", s.AppKeypad)
	writeMode(&b, "\x1b[?7h", "\x1b[?7l", s.Wrap)
	writeMode(&b, "\x1b[?1000h", "\x1b[?1000l", s.MouseStandard)
	writeMode(&b, "\x1b[?1002h", "\x1b[?1002l", s.MouseButton)
	writeMode(&b, "\x1b[?1003h", "\x1b[?1003l", s.MouseAnyMotion)
	writeMode(&b, "\x1b[?1006h", "\x1b[?1006l", s.MouseSGRProtocol)
	return []byte(b.String())
}

func writeMode(b *strings.Builder, on, off string, set bool) {
	if set {
		b.WriteString(on)
	} else {
		b.WriteString(off)
	}
}
