package events

import "github.com/atomicstack/tmux-control-attach/internal/logging"

type LayoutTracer struct{}

var Layout = LayoutTracer{}

func (LayoutTracer) Applied(window string, panes int, rebuilt bool) {
	logging.Trace("layout.applied", map[string]interface{}{"window": window, "panes": panes, "rebuilt": rebuilt})
}

func (LayoutTracer) Malformed(window string, err error) {
	logging.Trace("layout.malformed", map[string]interface{}{"window": window, "error": err.Error()})
}
