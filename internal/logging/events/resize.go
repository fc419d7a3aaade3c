package events

import "github.com/atomicstack/tmux-control-attach/internal/logging"

type ResizeTracer struct{}

var Resize = ResizeTracer{}

func (ResizeTracer) Report(cols, lines int) {
	logging.Trace("resize.report", map[string]interface{}{"cols": cols, "lines": lines})
}

func (ResizeTracer) Suppressed(cols, lines int) {
	logging.Trace("resize.suppressed", map[string]interface{}{"cols": cols, "lines": lines})
}
