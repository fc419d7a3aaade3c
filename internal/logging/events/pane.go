package events

import "github.com/atomicstack/tmux-control-attach/internal/logging"

type PaneTracer struct{}

var Pane = PaneTracer{}

func (PaneTracer) Created(pane string) {
	logging.Trace("pane.created", map[string]interface{}{"pane": pane})
}

func (PaneTracer) Destroyed(pane string) {
	logging.Trace("pane.destroyed", map[string]interface{}{"pane": pane})
}

func (PaneTracer) Paused(pane string) {
	logging.Trace("pane.paused", map[string]interface{}{"pane": pane})
}

func (PaneTracer) Continued(pane string, buffered int) {
	logging.Trace("pane.continued", map[string]interface{}{"pane": pane, "buffered": buffered})
}

func (PaneTracer) Recovered(pane string, lines int) {
	logging.Trace("pane.recovered", map[string]interface{}{"pane": pane, "lines": lines})
}

func (PaneTracer) CaptureFailed(pane string) {
	logging.Trace("pane.capture.failed", map[string]interface{}{"pane": pane})
}
