package gateway

import (
	"fmt"
	"strings"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

// Keystroke batching bounds. Literal runs are limited by byte count, hex
// runs by token count; both keep generated command lines well under the
// server's input limits.
const (
	maxLiteralRun = 1000
	maxHexTokens  = 125
)

// literalPunct lists the non-alphanumeric bytes that are safe to embed in
// a single send-keys argument without quoting.
const literalPunct = "+-./:=@_~"

// nulToken is how a zero byte is spelled, since 0x00 cannot appear as a
// hex key argument.
const nulToken = "C-Space"

func literalSafe(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	default:
		return strings.IndexByte(literalPunct, b) >= 0
	}
}

// SendKeys delivers application output to a pane byte-exactly. Printable
// runs go through a literal send-keys invocation; everything else is
// grouped into hex-token runs, with NUL spelled as a named key.
func (g *Gateway) SendKeys(pane protocol.PaneID, data []byte) {
	for i := 0; i < len(data); {
		if literalSafe(data[i]) {
			j := i
			for j < len(data) && j-i < maxLiteralRun && literalSafe(data[j]) {
				j++
			}
			g.Send(fmt.Sprintf("send-keys -l -t %s -- %s", pane, data[i:j]), nil)
			i = j
			continue
		}
		tokens := make([]string, 0, maxHexTokens)
		j := i
		for j < len(data) && len(tokens) < maxHexTokens && !literalSafe(data[j]) {
			if data[j] == 0 {
				tokens = append(tokens, nulToken)
			} else {
				tokens = append(tokens, fmt.Sprintf("0x%02x", data[j]))
			}
			j++
		}
		g.Send(fmt.Sprintf("send-keys -t %s %s", pane, strings.Join(tokens, " ")), nil)
		i = j
	}
}
