package gateway

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

type result struct {
	ok       bool
	response string
}

func feed(g *Gateway, lines ...string) {
	for _, line := range lines {
		g.HandleLine(line)
	}
}

func TestResponsesCorrelateInSendOrder(t *testing.T) {
	g := New(&bytes.Buffer{})
	var got []result
	record := func(ok bool, response string) {
		got = append(got, result{ok, response})
	}
	g.Send("list-windows", record)
	g.Send("kill-window -t @2", record)
	g.Send("display-message hi", record)

	feed(g,
		"%begin 100 1 1",
		"@1 main",
		"@2 logs",
		"%end 100 1 1",
		"%output %1 interleaved",
		"%begin 101 2 1",
		"%error 101 2 1",
		"%begin 102 3 1",
		"%end 102 3 1",
	)

	want := []result{
		{true, "@1 main\n@2 logs"},
		{false, ""},
		{true, ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConcurrentSendsKeepWireAndQueueAligned(t *testing.T) {
	var sink bytes.Buffer
	g := New(&sink)

	const workers, perWorker = 4, 50
	responses := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				cmd := fmt.Sprintf("display-message w%d-%d", w, i)
				g.Send(cmd, func(ok bool, response string) {
					mu.Lock()
					responses[cmd] = response
					mu.Unlock()
				})
			}
		}(w)
	}
	wg.Wait()

	// Answer in wire order, echoing each command as its response body;
	// every callback must then receive its own command back.
	lines := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	if len(lines) != workers*perWorker {
		t.Fatalf("sink carries %d commands, want %d", len(lines), workers*perWorker)
	}
	for i, cmd := range lines {
		feed(g,
			fmt.Sprintf("%%begin %d 1 1", i),
			cmd,
			fmt.Sprintf("%%end %d 1 1", i),
		)
	}
	if len(responses) != workers*perWorker {
		t.Fatalf("%d callbacks fired, want %d", len(responses), workers*perWorker)
	}
	for cmd, response := range responses {
		if response != cmd {
			t.Fatalf("command %q received response %q", cmd, response)
		}
	}
}

func TestServerOriginatedBlockBodyIsDiscarded(t *testing.T) {
	g := New(&bytes.Buffer{})
	feed(g,
		"%begin 7 0 0",
		"command output we never asked for",
		"%end 7 0 0",
	)

	// The next real command must still correlate cleanly.
	var got []result
	g.Send("list-panes", func(ok bool, response string) {
		got = append(got, result{ok, response})
	})
	feed(g, "%begin 8 1 1", "%0", "%end 8 1 1")
	if len(got) != 1 || !got[0].ok || got[0].response != "%0" {
		t.Fatalf("got %+v, want one ok result %q", got, "%0")
	}
}

func TestClientFlagWithEmptyQueueLeavesQueueAlone(t *testing.T) {
	g := New(&bytes.Buffer{})
	// Guard block on attach: client flag set, but nothing was sent yet.
	feed(g, "%begin 1 0 1", "%end 1 0 1")

	called := false
	g.Send("list-windows", func(ok bool, response string) { called = true })
	feed(g, "%begin 2 1 1", "%end 2 1 1")
	if !called {
		t.Fatal("command callback never fired")
	}
}

func TestMismatchedTerminatorKeepsBlockOpen(t *testing.T) {
	g := New(&bytes.Buffer{})
	var got []result
	g.Send("capture-pane -p -t %0", func(ok bool, response string) {
		got = append(got, result{ok, response})
	})
	feed(g,
		"%begin 40 1 1",
		"line one",
		"%end 39 1 1",
		"line two",
		"%end 40 1 1",
	)
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if !got[0].ok || got[0].response != "line one\nline two" {
		t.Errorf("got %+v, want ok with both body lines", got[0])
	}
}

func TestReadyFiresOnFirstBeginOnly(t *testing.T) {
	g := New(&bytes.Buffer{})
	ready := 0
	g.OnReady(func() { ready++ })
	feed(g,
		"%begin 1 0 1",
		"%end 1 0 1",
		"%begin 2 0 0",
		"%end 2 0 0",
	)
	if ready != 1 {
		t.Fatalf("ready fired %d times, want 1", ready)
	}
}

func TestNotificationsDispatchOutsideBlocks(t *testing.T) {
	g := New(&bytes.Buffer{})
	var got []protocol.Notification
	g.OnNotification(func(n protocol.Notification) { got = append(got, n) })
	feed(g,
		"%output %3 hi\\040there",
		"%window-renamed @1 build",
		"%not-a-real-notification",
	)
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	out, ok := got[0].(protocol.Output)
	if !ok || out.Pane != 3 || string(out.Data) != "hi there" {
		t.Errorf("first notification = %#v", got[0])
	}
	if ren, ok := got[1].(protocol.WindowRenamed); !ok || ren.Name != "build" {
		t.Errorf("second notification = %#v", got[1])
	}
}

func TestSendAfterExitFailsWithoutTouchingSink(t *testing.T) {
	var sink bytes.Buffer
	g := New(&sink)
	var seenExit bool
	g.OnNotification(func(n protocol.Notification) {
		if _, ok := n.(protocol.Exit); ok {
			seenExit = true
		}
	})
	feed(g, "%exit detached")
	if !seenExit {
		t.Fatal("exit notification not dispatched")
	}

	sink.Reset()
	called := false
	g.Send("list-windows", func(ok bool, response string) {
		if ok {
			t.Error("post-exit send reported ok")
		}
		called = true
	})
	if !called {
		t.Error("post-exit callback did not fire synchronously")
	}
	if sink.Len() != 0 {
		t.Errorf("post-exit send wrote %q to sink", sink.String())
	}
}

func TestRunFailsPendingOnEOF(t *testing.T) {
	g := New(&bytes.Buffer{})
	var got []result
	g.Send("list-windows", func(ok bool, response string) {
		got = append(got, result{ok, response})
	})
	if err := g.Run(strings.NewReader("%begin 5 1 1\npartial\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].ok {
		t.Fatalf("got %+v, want one failed result", got)
	}
}

func TestSendKeysSplitsLiteralAndHexRuns(t *testing.T) {
	var sink bytes.Buffer
	g := New(&sink)
	g.SendKeys(5, []byte("ls -la\r"))

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	want := []string{
		"send-keys -l -t %5 -- ls",
		"send-keys -t %5 0x20",
		"send-keys -l -t %5 -- -la",
		"send-keys -t %5 0x0d",
	}
	if len(lines) != len(want) {
		t.Fatalf("sent %d commands, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSendKeysSpellsNULAsNamedKey(t *testing.T) {
	var sink bytes.Buffer
	g := New(&sink)
	g.SendKeys(0, []byte{0x00, 0x1b})
	got := strings.TrimRight(sink.String(), "\n")
	if got != "send-keys -t %0 C-Space 0x1b" {
		t.Errorf("sent %q", got)
	}
}
