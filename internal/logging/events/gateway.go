package events

import "github.com/atomicstack/tmux-control-attach/internal/logging"

type GatewayTracer struct{}

var Gateway = GatewayTracer{}

func (GatewayTracer) Ready() {
	logging.Trace("gateway.ready", nil)
}

func (GatewayTracer) Send(command string) {
	logging.Trace("gateway.send", map[string]interface{}{"command": command})
}

func (GatewayTracer) Dropped(line string) {
	logging.Trace("gateway.dropped", map[string]interface{}{"line": line})
}

func (GatewayTracer) Desync(line string, blockID int) {
	logging.Trace("gateway.desync", map[string]interface{}{"line": line, "block": blockID})
}

func (GatewayTracer) RejectedAfterExit(command string) {
	logging.Trace("gateway.rejected", map[string]interface{}{"command": command})
}
