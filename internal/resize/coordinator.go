// Package resize reports the aggregate client size back to the server,
// debounced and deduplicated to avoid resize feedback loops.
package resize

import (
	"sync"
	"time"

	"github.com/atomicstack/tmux-control-attach/internal/logging/events"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

// DefaultInterval is the debounce window for collapsing a burst of pane
// size changes into one report.
const DefaultInterval = 100 * time.Millisecond

// Coordinator debounces local size changes and reports an aggregate
// (cols, lines) for the active window's view tree. Identical consecutive
// reports are suppressed: the server's layout-change notifications are
// themselves caused by our reports, so re-sending an unchanged size would
// oscillate between locally- and remotely-driven resizes.
type Coordinator struct {
	interval time.Duration
	size     func() (cols, lines int, ok bool)
	report   func(cols, lines int)

	mu        sync.Mutex
	timer     *time.Timer
	lastCols  int
	lastLines int
	haveLast  bool
	suspended bool
}

// NewCoordinator wires the coordinator to a size lookup and the report
// sink (a refresh-client -C send). size runs on the debounce timer's
// goroutine; the caller measures its tree under whatever lock guards it.
func NewCoordinator(interval time.Duration, size func() (cols, lines int, ok bool), report func(cols, lines int)) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{interval: interval, size: size, report: report}
}

// NotifySizeChange (re)starts the single-shot debounce timer. Many panes
// resizing together collapse into one report.
func (c *Coordinator) NotifySizeChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.interval, c.flush)
}

// SetSuspended gates reporting during an interactive splitter drag. On
// release a fresh debounce cycle starts so the final size still goes out.
func (c *Coordinator) SetSuspended(suspended bool) {
	c.mu.Lock()
	was := c.suspended
	c.suspended = suspended
	c.mu.Unlock()
	if was && !suspended {
		c.NotifySizeChange()
	}
}

// Reset forgets the last reported size. Used when the remote's notion of
// this client has been rebuilt (client session change), so the next
// report goes out even if numerically unchanged.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.haveLast = false
	c.mu.Unlock()
}

// Stop cancels any pending report.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

func (c *Coordinator) flush() {
	cols, lines, ok := c.size()
	if !ok || cols <= 0 || lines <= 0 {
		return
	}

	c.mu.Lock()
	if c.suspended || (c.haveLast && c.lastCols == cols && c.lastLines == lines) {
		c.mu.Unlock()
		events.Resize.Suppressed(cols, lines)
		return
	}
	c.lastCols, c.lastLines = cols, lines
	c.haveLast = true
	c.mu.Unlock()

	events.Resize.Report(cols, lines)
	c.report(cols, lines)
}

// Measure folds a view tree into its aggregate size: a leaf contributes
// its own cells; a split contributes the sum of its children plus one
// separator between each pair along its axis, and the max across it.
func Measure(n view.Node) (cols, lines int) {
	switch v := n.(type) {
	case *view.Leaf:
		b := v.Bounds()
		return b.Cols, b.Lines
	case *view.Split:
		children := v.Children()
		separators := len(children) - 1
		for _, child := range children {
			ccols, clines := Measure(child)
			if v.Axis() == layout.Horizontal {
				cols += ccols
				if clines > lines {
					lines = clines
				}
			} else {
				lines += clines
				if ccols > cols {
					cols = ccols
				}
			}
		}
		if v.Axis() == layout.Horizontal {
			cols += separators
		} else {
			lines += separators
		}
		return cols, lines
	}
	return 0, 0
}
