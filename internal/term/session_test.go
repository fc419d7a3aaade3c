package term

import (
	"strings"
	"sync"
	"testing"
)

func TestSendDataAfterCloseDropsInput(t *testing.T) {
	s := NewSession(1)
	calls := 0
	s.OnData(func([]byte) { calls++ })
	s.Close()
	s.SendData([]byte("x"))
	if calls != 0 {
		t.Fatalf("data hook fired %d times after close", calls)
	}
}

// A keystroke in flight on the UI goroutine can cross a teardown on the
// protocol goroutine.
func TestCloseDuringSendData(t *testing.T) {
	s := NewSession(2)
	s.OnData(func([]byte) {})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.SendData([]byte("k"))
		}
	}()
	s.Close()
	wg.Wait()
}

func TestInjectDataAfterCloseIsDropped(t *testing.T) {
	s := NewSession(3)
	s.Close()
	s.InjectData([]byte("too late"))
	if got := s.Render(false); strings.Contains(got, "too late") {
		t.Fatal("closed session accepted data")
	}
}
