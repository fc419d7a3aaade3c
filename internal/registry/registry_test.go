package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

func TestCreatePaneSessionIsIdempotent(t *testing.T) {
	r := New(Hooks{})
	a := r.CreatePaneSession(1)
	b := r.CreatePaneSession(1)
	if a != b {
		t.Fatal("second create returned a different session")
	}
	if got := len(r.PaneIDs()); got != 1 {
		t.Fatalf("registry holds %d panes, want 1", got)
	}
}

// Input forwarding looks sessions up from the UI goroutine while the
// protocol goroutine churns the map; the registry must tolerate that.
func TestConcurrentLookupsDuringCreateDestroy(t *testing.T) {
	r := New(Hooks{})
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if s, ok := r.Session(7); ok {
				s.SendData([]byte("k"))
			}
			r.PaneIDs()
		}
	}()
	for i := 0; i < 500; i++ {
		r.CreatePaneSession(7)
		r.DeliverOutput(7, []byte("x"))
		r.DestroyPaneSession(7)
	}
	close(done)
	wg.Wait()
}

func TestSessionInputRoutesThroughSendKeysHook(t *testing.T) {
	var gotPane protocol.PaneID
	var gotData []byte
	r := New(Hooks{
		SendKeys: func(pane protocol.PaneID, data []byte) {
			gotPane = pane
			gotData = append([]byte(nil), data...)
		},
	})
	s := r.CreatePaneSession(4)
	s.SendData([]byte("q"))
	if gotPane != 4 || string(gotData) != "q" {
		t.Fatalf("hook saw pane %v data %q", gotPane, gotData)
	}
}

func TestPauseBuffersUntilContinue(t *testing.T) {
	resumes := 0
	r := New(Hooks{
		RequestResume: func(pane protocol.PaneID) {
			resumes++
			if pane != 2 {
				t.Errorf("resume requested for %v, want %%2", pane)
			}
		},
	})
	s := r.CreatePaneSession(2)

	r.PausePane(2)
	r.PausePane(2) // repeat pause must not re-request or reset the buffer
	if resumes != 1 {
		t.Fatalf("resume requested %d times, want 1", resumes)
	}

	r.DeliverOutput(2, []byte("hel"))
	r.DeliverOutput(2, []byte("lo"))
	if out := s.Render(false); strings.Contains(out, "hello") {
		t.Fatal("paused output reached the terminal before continue")
	}

	r.ContinuePane(2)
	if out := s.Render(false); !strings.Contains(out, "hello") {
		t.Fatal("buffered output not flushed on continue")
	}

	// After the flush, delivery is live again.
	r.DeliverOutput(2, []byte("!"))
	if out := s.Render(false); !strings.Contains(out, "hello!") {
		t.Fatal("post-continue output not delivered directly")
	}
}

func TestContinueWithoutPauseIsANoOp(t *testing.T) {
	r := New(Hooks{})
	r.CreatePaneSession(3)
	r.ContinuePane(3)
	r.ContinuePane(9)
}

func TestDeliverOutputToUnknownPaneIsDropped(t *testing.T) {
	r := New(Hooks{})
	r.DeliverOutput(8, []byte("ignored"))
}

func TestDestroyRemovesPaneAndPauseState(t *testing.T) {
	r := New(Hooks{})
	r.CreatePaneSession(6)
	r.PausePane(6)
	r.DestroyPaneSession(6)
	if _, ok := r.Session(6); ok {
		t.Fatal("session still registered after destroy")
	}
	// A stale continue for the destroyed pane must not panic or revive it.
	r.ContinuePane(6)
	if got := len(r.PaneIDs()); got != 0 {
		t.Fatalf("registry holds %d panes, want 0", got)
	}
}

func TestClearDestroysEverySession(t *testing.T) {
	r := New(Hooks{})
	r.CreatePaneSession(1)
	r.CreatePaneSession(2)
	r.CreatePaneSession(3)
	r.Clear()
	if got := len(r.PaneIDs()); got != 0 {
		t.Fatalf("registry holds %d panes after clear, want 0", got)
	}
}
