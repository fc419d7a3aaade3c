package resize

import (
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
	"github.com/atomicstack/tmux-control-attach/internal/protocol/layout"
	"github.com/atomicstack/tmux-control-attach/internal/term"
	"github.com/atomicstack/tmux-control-attach/internal/view"
)

const testInterval = 5 * time.Millisecond

// settle waits long enough for any pending debounce flush to have run.
func settle() { time.Sleep(20 * testInterval) }

type reportLog struct {
	mu      sync.Mutex
	reports [][2]int
}

func (l *reportLog) add(cols, lines int) {
	l.mu.Lock()
	l.reports = append(l.reports, [2]int{cols, lines})
	l.mu.Unlock()
}

func (l *reportLog) snapshot() [][2]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][2]int(nil), l.reports...)
}

func leaf(pane protocol.PaneID, cols, lines int) *view.Leaf {
	l := view.NewLeaf(pane, term.NewSession(pane))
	l.SetBounds(view.Rect{Cols: cols, Lines: lines})
	return l
}

// sizeOf adapts a view tree to the coordinator's size lookup, re-measuring
// on every flush the way the orchestrator does.
func sizeOf(root view.Node) func() (int, int, bool) {
	return func() (int, int, bool) {
		cols, lines := Measure(root)
		return cols, lines, true
	}
}

func TestMeasureSumsAlongAxisWithSeparators(t *testing.T) {
	// Two columns; the right column is two stacked panes.
	right := view.NewSplit(layout.Vertical)
	right.Append(leaf(2, 40, 24))
	right.Append(leaf(3, 40, 24))
	root := view.NewSplit(layout.Horizontal)
	root.Append(leaf(1, 40, 49))
	root.Append(right)

	cols, lines := Measure(root)
	if cols != 81 || lines != 49 {
		t.Fatalf("Measure = %dx%d, want 81x49", cols, lines)
	}
}

func TestMeasureLeaf(t *testing.T) {
	cols, lines := Measure(leaf(1, 80, 24))
	if cols != 80 || lines != 24 {
		t.Fatalf("Measure = %dx%d, want 80x24", cols, lines)
	}
}

func TestBurstCollapsesToOneReport(t *testing.T) {
	root := leaf(1, 80, 24)
	log := &reportLog{}
	c := NewCoordinator(testInterval, sizeOf(root), log.add)
	defer c.Stop()

	for i := 0; i < 10; i++ {
		c.NotifySizeChange()
	}
	settle()

	got := log.snapshot()
	if len(got) != 1 || got[0] != [2]int{80, 24} {
		t.Fatalf("reports = %v, want one 80x24", got)
	}
}

func TestIdenticalConsecutiveReportsAreSuppressed(t *testing.T) {
	root := leaf(1, 80, 24)
	log := &reportLog{}
	c := NewCoordinator(testInterval, sizeOf(root), log.add)
	defer c.Stop()

	c.NotifySizeChange()
	settle()
	c.NotifySizeChange()
	settle()

	root.SetBounds(view.Rect{Cols: 100, Lines: 30})
	c.NotifySizeChange()
	settle()

	got := log.snapshot()
	want := [][2]int{{80, 24}, {100, 30}}
	if len(got) != len(want) {
		t.Fatalf("reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reports = %v, want %v", got, want)
		}
	}
}

func TestSuspendHoldsThenFlushesOnResume(t *testing.T) {
	root := leaf(1, 80, 24)
	log := &reportLog{}
	c := NewCoordinator(testInterval, sizeOf(root), log.add)
	defer c.Stop()

	c.SetSuspended(true)
	c.NotifySizeChange()
	settle()
	if got := log.snapshot(); len(got) != 0 {
		t.Fatalf("reports during suspension: %v", got)
	}

	c.SetSuspended(false)
	settle()
	if got := log.snapshot(); len(got) != 1 {
		t.Fatalf("reports after resume = %v, want one", got)
	}
}

func TestResetForcesRepeatReport(t *testing.T) {
	root := leaf(1, 80, 24)
	log := &reportLog{}
	c := NewCoordinator(testInterval, sizeOf(root), log.add)
	defer c.Stop()

	c.NotifySizeChange()
	settle()
	c.Reset()
	c.NotifySizeChange()
	settle()

	if got := log.snapshot(); len(got) != 2 {
		t.Fatalf("reports = %v, want the same size twice", got)
	}
}

func TestAbsentSizeReportsNothing(t *testing.T) {
	log := &reportLog{}
	c := NewCoordinator(testInterval, func() (int, int, bool) { return 0, 0, false }, log.add)
	defer c.Stop()

	c.NotifySizeChange()
	settle()
	if got := log.snapshot(); len(got) != 0 {
		t.Fatalf("reports = %v, want none", got)
	}
}
