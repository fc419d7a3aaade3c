package term

import (
	"fmt"
	"strings"

	"github.com/hinshun/vt10x"
	"github.com/mattn/go-runewidth"
)

// Render walks the emulator's cell grid into a newline-joined string with
// ANSI color transitions, suitable for embedding in a styled frame. The
// cursor cell is drawn in inverse video when the pane is focused.
func (s *Session) Render(focused bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}

	s.vt.Lock()
	defer s.vt.Unlock()

	cols, rows := s.vt.Size()
	if cols <= 0 || rows <= 0 {
		return ""
	}
	cursor := s.vt.Cursor()
	showCursor := focused && s.vt.CursorVisible()

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var line strings.Builder
		lastFG, lastBG := vt10x.DefaultFG, vt10x.DefaultBG
		lastInverse := false
		for col := 0; col < cols; col++ {
			cell := s.vt.Cell(col, row)
			isCursor := showCursor && col == cursor.X && row == cursor.Y
			if cell.FG != lastFG || cell.BG != lastBG || isCursor != lastInverse {
				line.WriteString("\x1b[0m")
				writeColor(&line, cell.FG, false)
				writeColor(&line, cell.BG, true)
				if isCursor {
					line.WriteString("\x1b[7m")
				}
				lastFG, lastBG = cell.FG, cell.BG
				lastInverse = isCursor
			}
			if cell.Char == 0 {
				line.WriteByte(' ')
				continue
			}
			line.WriteRune(cell.Char)
			// Wide runes occupy the following cell too; skip its spacer.
			if runewidth.RuneWidth(cell.Char) == 2 && col+1 < cols {
				col++
			}
		}
		line.WriteString("\x1b[0m")
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// writeColor emits the SGR sequence for one vt10x color: basic ANSI,
// 256-color, or truecolor packed as r<<16|g<<8|b.
func writeColor(b *strings.Builder, c vt10x.Color, background bool) {
	def := vt10x.DefaultFG
	if background {
		def = vt10x.DefaultBG
	}
	if c == def {
		return
	}
	switch {
	case c.ANSI():
		base := 30
		if background {
			base = 40
		}
		if c < 8 {
			fmt.Fprintf(b, "\x1b[%dm", base+int(c))
		} else {
			fmt.Fprintf(b, "\x1b[%dm", base+60+int(c)-8)
		}
	case c > 255:
		r := (c >> 16) & 0xff
		g := (c >> 8) & 0xff
		bl := c & 0xff
		mode := 38
		if background {
			mode = 48
		}
		fmt.Fprintf(b, "\x1b[%d;2;%d;%d;%dm", mode, r, g, bl)
	default:
		mode := 38
		if background {
			mode = 48
		}
		fmt.Fprintf(b, "\x1b[%d;5;%dm", mode, c)
	}
}
