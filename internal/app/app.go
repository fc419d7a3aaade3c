package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tmux-control-attach/internal/backend"
	"github.com/atomicstack/tmux-control-attach/internal/gateway"
	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
	"github.com/atomicstack/tmux-control-attach/internal/resize"
	"github.com/atomicstack/tmux-control-attach/internal/tmux"
	"github.com/atomicstack/tmux-control-attach/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	SocketPath string
	Session    string
	TmuxBinary string
	Escapes    bool
}

// Run attaches, wires the protocol pipeline to the UI, and blocks until
// detach.
func Run(cfg Config) error {
	socketPath, err := tmux.ResolveSocketPath(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("resolve socket path: %w", err)
	}
	proc, err := tmux.StartControlClient(cfg.TmuxBinary, socketPath, cfg.Session)
	if err != nil {
		return err
	}
	defer proc.Wait()
	defer proc.Stop()

	gw := gateway.New(proc.Stdin())
	orch := orchestrator.New(gw, resize.DefaultInterval, cfg.Escapes)
	gw.OnNotification(orch.HandleNotification)
	gw.OnReady(orch.Initialize)

	model := ui.NewModel(orch, func(command string) {
		gw.Send(command, nil)
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	forwarder := backend.NewForwarder(orch.Events(), func(e orchestrator.Event) {
		program.Send(ui.EventMsg{Event: e})
	})
	defer forwarder.Stop()

	go func() {
		// Reader goroutine: drives the whole protocol pipeline. When the
		// stream ends the UI is told to wind down in case no %exit came.
		gw.Run(proc.Stdout())
		program.Send(ui.ConnectionClosedMsg{})
	}()

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
