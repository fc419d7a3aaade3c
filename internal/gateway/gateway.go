// Package gateway frames the raw control-mode byte stream into correlated
// command responses and typed notifications.
package gateway

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/atomicstack/tmux-control-attach/internal/logging/events"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

// Callback receives the outcome of a command sent through the gateway.
// ok is false for %error-terminated blocks and for commands rejected
// after %exit.
type Callback func(ok bool, response string)

// pendingCommand sits in the strict FIFO queue between Send and the
// arrival of its terminating %end/%error line.
type pendingCommand struct {
	text string
	cb   Callback
}

// responseBlock tracks the single block that may be open at a time.
// Server-originated blocks (and blocks with no queued command to satisfy)
// keep cmd nil; their bodies are not observable data.
type responseBlock struct {
	id    int
	cmd   *pendingCommand
	lines []string
}

// Gateway owns the outgoing command queue and the response-block state
// machine. Lines are fed in by a single reader goroutine; Send may be
// called from any goroutine. Callbacks and notification handlers are
// always invoked from the reader goroutine, in stream order.
type Gateway struct {
	mu     sync.Mutex
	sink   io.Writer
	queue  []*pendingCommand
	block  *responseBlock
	exited bool
	ready  bool

	onNotification func(protocol.Notification)
	onReady        func()
}

// New wires a gateway to the collaborator's send-data channel.
func New(sink io.Writer) *Gateway {
	return &Gateway{sink: sink}
}

// OnNotification registers the single notification consumer. Must be set
// before Run starts feeding lines.
func (g *Gateway) OnNotification(fn func(protocol.Notification)) {
	g.onNotification = fn
}

// OnReady registers a one-shot hook fired on the first %begin ever seen,
// which proves the remote process is alive.
func (g *Gateway) OnReady(fn func()) {
	g.onReady = fn
}

// Run consumes newline-terminated lines from r until EOF, feeding each to
// HandleLine. On return every still-pending command is failed, since its
// response can no longer arrive.
func (g *Gateway) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		g.HandleLine(scanner.Text())
	}
	g.failPending()
	return scanner.Err()
}

// HandleLine advances the framing state machine by one complete line.
func (g *Gateway) HandleLine(line string) {
	line = strings.TrimRight(line, "\r")

	g.mu.Lock()
	if g.block != nil {
		g.handleBlockLineLocked(line)
		return
	}
	if strings.HasPrefix(line, "%begin ") {
		g.handleBeginLocked(line)
		return
	}
	g.mu.Unlock()

	if !strings.HasPrefix(line, "%") {
		return
	}
	n, ok := protocol.ParseNotification(line)
	if !ok {
		events.Gateway.Dropped(line)
		return
	}
	if _, isExit := n.(protocol.Exit); isExit {
		g.mu.Lock()
		g.exited = true
		g.mu.Unlock()
	}
	if g.onNotification != nil {
		g.onNotification(n)
	}
}

// handleBeginLocked opens a response block. Callers hold mu; it is
// released before any hook fires.
func (g *Gateway) handleBeginLocked(line string) {
	id, flags, ok := parseBlockHeader(line)
	if !ok {
		g.mu.Unlock()
		events.Gateway.Dropped(line)
		return
	}
	firstEver := !g.ready
	g.ready = true

	block := &responseBlock{id: id}
	// The least-significant flag bit marks a client-originated block. A
	// server-originated block, or one arriving with nothing queued, has
	// no callback to satisfy; track its ID and discard its body.
	if flags&1 == 1 && len(g.queue) > 0 {
		block.cmd = g.queue[0]
		g.queue = g.queue[1:]
	}
	g.block = block
	g.mu.Unlock()

	if firstEver {
		events.Gateway.Ready()
		if g.onReady != nil {
			g.onReady()
		}
	}
}

// handleBlockLineLocked accumulates or closes the open block. Callers
// hold mu; it is released before the completion callback fires.
func (g *Gateway) handleBlockLineLocked(line string) {
	isEnd := strings.HasPrefix(line, "%end ")
	isError := strings.HasPrefix(line, "%error ")
	if !isEnd && !isError {
		if g.block.cmd != nil {
			g.block.lines = append(g.block.lines, line)
		}
		g.mu.Unlock()
		return
	}
	id, _, ok := parseBlockHeader(line)
	if !ok || id != g.block.id {
		// A terminator for some other block: the stream may interleave
		// reentrant server notifications. Keep the block open.
		g.mu.Unlock()
		events.Gateway.Desync(line, g.block.id)
		return
	}
	block := g.block
	g.block = nil
	g.mu.Unlock()

	if block.cmd != nil && block.cmd.cb != nil {
		block.cmd.cb(isEnd, strings.Join(block.lines, "\n"))
	}
}

// parseBlockHeader extracts the ID and flags from a %begin/%end/%error
// line: `%<word> <id> <num> [<flags>]`.
func parseBlockHeader(line string) (id, flags int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, false
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	if len(fields) >= 4 {
		flags, err = strconv.Atoi(fields[3])
		if err != nil {
			return 0, 0, false
		}
	}
	return id, flags, true
}

// Send enqueues a command and writes it to the sink. Once %exit has been
// observed the sink is never touched again: the callback fails
// synchronously instead.
func (g *Gateway) Send(text string, cb Callback) {
	g.mu.Lock()
	if g.exited {
		g.mu.Unlock()
		events.Gateway.RejectedAfterExit(text)
		if cb != nil {
			cb(false, "")
		}
		return
	}
	g.queue = append(g.queue, &pendingCommand{text: text, cb: cb})
	// The sink write stays under the lock: tmux answers commands in receipt
	// order, so queue position and wire order must agree.
	io.WriteString(g.sink, text+"\n")
	g.mu.Unlock()

	events.Gateway.Send(text)
}

// failPending fails every queued command, oldest first.
func (g *Gateway) failPending() {
	g.mu.Lock()
	queue := g.queue
	g.queue = nil
	g.exited = true
	g.mu.Unlock()
	for _, cmd := range queue {
		if cmd.cb != nil {
			cmd.cb(false, "")
		}
	}
}
