// Package backend pumps orchestrator events into the UI event loop.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
)

// redrawInterval paces redraw delivery. Pane output arrives in small
// bursts at byte granularity; repainting more often than this is wasted
// work the terminal cannot display anyway.
const redrawInterval = 33 * time.Millisecond

// Forwarder drains the orchestrator's event stream and hands each event
// to the UI. Lifecycle events pass through immediately; redraw hints are
// coalesced and paced so an output flood becomes a steady repaint rate.
type Forwarder struct {
	events <-chan orchestrator.Event
	send   func(orchestrator.Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pace *pacer
}

// NewForwarder starts the pump. send is called from the forwarder's
// goroutine and must be safe for that (tea.Program.Send is).
func NewForwarder(events <-chan orchestrator.Event, send func(orchestrator.Event)) *Forwarder {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Forwarder{
		events: events,
		send:   send,
		ctx:    ctx,
		cancel: cancel,
		pace:   newPacer(redrawInterval),
	}
	f.wg.Add(1)
	go f.run()
	return f
}

// Stop halts the pump. Events already drained may still be delivered.
func (f *Forwarder) Stop() {
	f.cancel()
}

// Wait blocks until the pump goroutine has exited.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for {
		select {
		case <-f.ctx.Done():
			return
		case e, ok := <-f.events:
			if !ok {
				return
			}
			if _, isRedraw := e.(orchestrator.Redraw); isRedraw {
				f.drainRedraws()
				f.pace.wait()
			}
			f.send(e)
		}
	}
}

// drainRedraws swallows any further redraw hints already queued, so a
// burst collapses into the single send that follows.
func (f *Forwarder) drainRedraws() {
	for {
		select {
		case e, ok := <-f.events:
			if !ok {
				return
			}
			if _, isRedraw := e.(orchestrator.Redraw); isRedraw {
				continue
			}
			f.send(e)
		default:
			return
		}
	}
}

// pacer enforces a minimum interval between successive operations.
type pacer struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

func (p *pacer) wait() {
	if p.interval <= 0 {
		return
	}
	p.mu.Lock()
	delay := time.Until(p.next)
	if delay < 0 {
		delay = 0
	}
	p.next = time.Now().Add(delay + p.interval)
	p.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
}
