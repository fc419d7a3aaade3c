package backend

import (
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
)

type eventLog struct {
	mu     sync.Mutex
	events []orchestrator.Event
}

func (l *eventLog) add(e orchestrator.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []orchestrator.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]orchestrator.Event(nil), l.events...)
}

func TestLifecycleEventsPassThrough(t *testing.T) {
	events := make(chan orchestrator.Event, 8)
	log := &eventLog{}
	f := NewForwarder(events, log.add)
	defer f.Stop()

	events <- orchestrator.WindowOpened{Window: 1}
	events <- orchestrator.Detached{Reason: "bye"}
	close(events)
	f.Wait()

	got := log.snapshot()
	if len(got) != 2 {
		t.Fatalf("forwarded %d events, want 2: %v", len(got), got)
	}
	if _, ok := got[0].(orchestrator.WindowOpened); !ok {
		t.Errorf("first event = %#v", got[0])
	}
	if d, ok := got[1].(orchestrator.Detached); !ok || d.Reason != "bye" {
		t.Errorf("second event = %#v", got[1])
	}
}

func TestQueuedRedrawBurstCoalesces(t *testing.T) {
	events := make(chan orchestrator.Event, 16)
	// Fill the queue before the pump starts so the burst is already
	// pending when the first redraw is picked up.
	for i := 0; i < 10; i++ {
		events <- orchestrator.Redraw{}
	}
	events <- orchestrator.WindowRenamed{Window: 1, Name: "x"}
	close(events)

	log := &eventLog{}
	f := NewForwarder(events, log.add)
	defer f.Stop()
	f.Wait()

	redraws := 0
	renames := 0
	for _, e := range log.snapshot() {
		switch e.(type) {
		case orchestrator.Redraw:
			redraws++
		case orchestrator.WindowRenamed:
			renames++
		}
	}
	if redraws != 1 {
		t.Errorf("delivered %d redraws, want 1", redraws)
	}
	if renames != 1 {
		t.Errorf("delivered %d renames, want 1", renames)
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	p := newPacer(20 * time.Millisecond)
	start := time.Now()
	p.wait()
	p.wait()
	p.wait()
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three waits took %v, want at least 40ms", elapsed)
	}
}
