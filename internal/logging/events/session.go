package events

import "github.com/atomicstack/tmux-control-attach/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Initializing() {
	logging.Trace("session.initializing", nil)
}

func (SessionTracer) Active(windows int) {
	logging.Trace("session.active", map[string]interface{}{"windows": windows})
}

func (SessionTracer) Changed(session, name string) {
	logging.Trace("session.changed", map[string]interface{}{"session": session, "name": name})
}

func (SessionTracer) WindowAdded(window string) {
	logging.Trace("session.window.added", map[string]interface{}{"window": window})
}

func (SessionTracer) WindowClosed(window string) {
	logging.Trace("session.window.closed", map[string]interface{}{"window": window})
}

func (SessionTracer) WindowRenamed(window, name string) {
	logging.Trace("session.window.renamed", map[string]interface{}{"window": window, "name": name})
}

func (SessionTracer) Detached(reason string) {
	logging.Trace("session.detached", map[string]interface{}{"reason": reason})
}
