package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// specialKeys maps the named non-byte keys to the escape sequences a
// VT-style terminal sends for them.
var specialKeys = map[tea.KeyType]string{
	tea.KeyUp:       "\x1b[A",
	tea.KeyDown:     "\x1b[B",
	tea.KeyRight:    "\x1b[C",
	tea.KeyLeft:     "\x1b[D",
	tea.KeyHome:     "\x1b[H",
	tea.KeyEnd:      "\x1b[F",
	tea.KeyPgUp:     "\x1b[5~",
	tea.KeyPgDown:   "\x1b[6~",
	tea.KeyDelete:   "\x1b[3~",
	tea.KeyInsert:   "\x1b[2~",
	tea.KeyShiftTab: "\x1b[Z",
	tea.KeyF1:       "\x1bOP",
	tea.KeyF2:       "\x1bOQ",
	tea.KeyF3:       "\x1bOR",
	tea.KeyF4:       "\x1bOS",
	tea.KeyF5:       "\x1b[15~",
	tea.KeyF6:       "\x1b[17~",
	tea.KeyF7:       "\x1b[18~",
	tea.KeyF8:       "\x1b[19~",
	tea.KeyF9:       "\x1b[20~",
	tea.KeyF10:      "\x1b[21~",
	tea.KeyF11:      "\x1b[23~",
	tea.KeyF12:      "\x1b[24~",
}

// keyToBytes reverses Bubble Tea's key decoding: the returned bytes are
// what the user's terminal originally sent. Control keys are their
// literal control bytes, alt is an ESC prefix, and named keys use the
// sequences from specialKeys. Keys with no byte representation return
// nil.
func keyToBytes(msg tea.KeyMsg) []byte {
	if msg.Type == tea.KeyRunes {
		var b []byte
		if msg.Alt {
			b = append(b, 0x1b)
		}
		return append(b, []byte(string(msg.Runes))...)
	}
	if seq, ok := specialKeys[msg.Type]; ok {
		if msg.Alt {
			return append([]byte{0x1b}, seq...)
		}
		return []byte(seq)
	}
	// Everything else with a non-negative type is a bare (control) byte:
	// enter is CR, tab is HT, backspace is DEL, ctrl+letter is 1..26.
	if msg.Type >= 0 && msg.Type < 128 {
		if msg.Alt {
			return []byte{0x1b, byte(msg.Type)}
		}
		return []byte{byte(msg.Type)}
	}
	return nil
}
