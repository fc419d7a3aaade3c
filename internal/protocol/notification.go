package protocol

import "strings"

// Notification is one asynchronous control-mode event, parsed from a single
// %-prefixed line outside a response block. The set of concrete types is
// closed: dispatch sites switch over them exhaustively and never inspect
// raw line text.
type Notification interface {
	notification()
}

// Output carries decoded terminal bytes for one pane.
type Output struct {
	Pane PaneID
	Data []byte
}

// LayoutChange reports a window's (possibly new) layout description.
type LayoutChange struct {
	Window        WindowID
	Layout        string
	VisibleLayout string
	Zoomed        bool
}

// WindowAdd reports a window newly linked to the attached session.
type WindowAdd struct {
	Window WindowID
}

// WindowClose reports a window closing or becoming unlinked.
type WindowClose struct {
	Window WindowID
}

// WindowRenamed carries a window's new name.
type WindowRenamed struct {
	Window WindowID
	Name   string
}

// WindowPaneChanged reports the active pane of a window changing.
type WindowPaneChanged struct {
	Window WindowID
	Pane   PaneID
}

// SessionChanged reports the client being moved to another session.
type SessionChanged struct {
	Session SessionID
	Name    string
}

// SessionRenamed carries the attached session's new name.
type SessionRenamed struct {
	Name string
}

// SessionWindowChanged reports the current window of a session changing.
type SessionWindowChanged struct {
	Session SessionID
	Window  WindowID
}

// SessionsChanged reports that the session list changed in some way.
type SessionsChanged struct{}

// PauseOutput reports the server pausing output for a pane.
type PauseOutput struct {
	Pane PaneID
}

// ContinueOutput reports the server resuming output for a pane.
type ContinueOutput struct {
	Pane PaneID
}

// ClientSessionChanged reports another client switching sessions.
type ClientSessionChanged struct {
	Client  string
	Session SessionID
	Name    string
}

// ClientDetached reports another client detaching.
type ClientDetached struct {
	Client string
}

// Exit reports the control-mode connection shutting down.
type Exit struct {
	Reason string
}

func (Output) notification()               {}
func (LayoutChange) notification()         {}
func (WindowAdd) notification()            {}
func (WindowClose) notification()          {}
func (WindowRenamed) notification()        {}
func (WindowPaneChanged) notification()    {}
func (SessionChanged) notification()       {}
func (SessionRenamed) notification()       {}
func (SessionWindowChanged) notification() {}
func (SessionsChanged) notification()      {}
func (PauseOutput) notification()          {}
func (ContinueOutput) notification()       {}
func (ClientSessionChanged) notification() {}
func (ClientDetached) notification()       {}
func (Exit) notification()                 {}

// ParseNotification converts one control-mode line into a typed
// notification. It is pure and side-effect free. Unknown or malformed
// lines yield ok == false and are dropped by the caller; the stream is
// allowed to carry notification kinds this client does not understand.
func ParseNotification(line string) (Notification, bool) {
	line = strings.TrimRight(line, "\r")
	name, rest := cutToken(line)
	switch name {
	case "%output":
		pane, payload := cutToken(rest)
		id, err := ParsePaneID(pane)
		if err != nil {
			return nil, false
		}
		return Output{Pane: id, Data: DecodeOutput(payload)}, true
	case "%extended-output":
		// Same shape as %output with an extra age token after the pane.
		pane, tail := cutToken(rest)
		id, err := ParsePaneID(pane)
		if err != nil {
			return nil, false
		}
		_, payload := cutToken(tail)
		return Output{Pane: id, Data: DecodeOutput(payload)}, true
	case "%layout-change":
		window, tail := cutToken(rest)
		id, err := ParseWindowID(window)
		if err != nil {
			return nil, false
		}
		layoutStr, tail := cutToken(tail)
		if layoutStr == "" {
			return nil, false
		}
		visible, flags := cutToken(tail)
		n := LayoutChange{Window: id, Layout: layoutStr, VisibleLayout: visible}
		if flags == "" {
			// Older servers omit the flags token; the third token may
			// itself be the flags when it is not a layout.
			if visible != "" && !strings.ContainsRune(visible, ',') {
				n.VisibleLayout = ""
				flags = visible
			}
		}
		n.Zoomed = strings.ContainsRune(flags, 'Z')
		return n, true
	case "%window-add":
		id, err := ParseWindowID(firstToken(rest))
		if err != nil {
			return nil, false
		}
		return WindowAdd{Window: id}, true
	case "%window-close", "%unlinked-window-close":
		id, err := ParseWindowID(firstToken(rest))
		if err != nil {
			return nil, false
		}
		return WindowClose{Window: id}, true
	case "%window-renamed":
		window, name := cutToken(rest)
		id, err := ParseWindowID(window)
		if err != nil {
			return nil, false
		}
		return WindowRenamed{Window: id, Name: name}, true
	case "%window-pane-changed":
		window, tail := cutToken(rest)
		wid, err := ParseWindowID(window)
		if err != nil {
			return nil, false
		}
		pid, err := ParsePaneID(firstToken(tail))
		if err != nil {
			return nil, false
		}
		return WindowPaneChanged{Window: wid, Pane: pid}, true
	case "%session-changed":
		session, name := cutToken(rest)
		id, err := ParseSessionID(session)
		if err != nil {
			return nil, false
		}
		return SessionChanged{Session: id, Name: name}, true
	case "%session-renamed":
		if rest == "" {
			return nil, false
		}
		return SessionRenamed{Name: rest}, true
	case "%session-window-changed":
		session, tail := cutToken(rest)
		sid, err := ParseSessionID(session)
		if err != nil {
			return nil, false
		}
		wid, err := ParseWindowID(firstToken(tail))
		if err != nil {
			return nil, false
		}
		return SessionWindowChanged{Session: sid, Window: wid}, true
	case "%sessions-changed":
		return SessionsChanged{}, true
	case "%pause":
		id, err := ParsePaneID(firstToken(rest))
		if err != nil {
			return nil, false
		}
		return PauseOutput{Pane: id}, true
	case "%continue":
		id, err := ParsePaneID(firstToken(rest))
		if err != nil {
			return nil, false
		}
		return ContinueOutput{Pane: id}, true
	case "%client-session-changed":
		client, tail := cutToken(rest)
		if client == "" {
			return nil, false
		}
		session, name := cutToken(tail)
		id, err := ParseSessionID(session)
		if err != nil {
			return nil, false
		}
		return ClientSessionChanged{Client: client, Session: id, Name: name}, true
	case "%client-detached":
		if rest == "" {
			return nil, false
		}
		return ClientDetached{Client: firstToken(rest)}, true
	case "%exit":
		return Exit{Reason: rest}, true
	}
	return nil, false
}

// cutToken splits the first space-delimited token from a line. The tail
// keeps any further internal spacing so payloads survive intact.
func cutToken(s string) (token, tail string) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", ""
	}
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}

func firstToken(s string) string {
	token, _ := cutToken(s)
	return token
}
