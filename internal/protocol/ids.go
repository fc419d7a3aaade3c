package protocol

import (
	"fmt"
	"strconv"
)

// PaneID, WindowID and SessionID are distinct numeric namespaces. tmux tags
// each with its own sigil on the wire (%, @, $); converting a raw token
// always validates the sigil so the namespaces can never be mixed up.
type PaneID int

type WindowID int

type SessionID int

func (p PaneID) String() string { return "%" + strconv.Itoa(int(p)) }

func (w WindowID) String() string { return "@" + strconv.Itoa(int(w)) }

func (s SessionID) String() string { return "$" + strconv.Itoa(int(s)) }

// ParsePaneID converts a %-prefixed token into a PaneID.
func ParsePaneID(token string) (PaneID, error) {
	n, err := parseSigil(token, '%')
	return PaneID(n), err
}

// ParseWindowID converts an @-prefixed token into a WindowID.
func ParseWindowID(token string) (WindowID, error) {
	n, err := parseSigil(token, '@')
	return WindowID(n), err
}

// ParseSessionID converts a $-prefixed token into a SessionID.
func ParseSessionID(token string) (SessionID, error) {
	n, err := parseSigil(token, '$')
	return SessionID(n), err
}

func parseSigil(token string, sigil byte) (int, error) {
	if len(token) < 2 || token[0] != sigil {
		return 0, fmt.Errorf("token %q missing %q sigil", token, string(sigil))
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, fmt.Errorf("token %q: %w", token, err)
	}
	return n, nil
}
