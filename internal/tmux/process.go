package tmux

import (
	"fmt"
	"io"
	"os/exec"
	"syscall"
)

// Process is a running control-mode tmux client. Commands go down Stdin,
// the notification stream comes back on Stdout.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

// StartControlClient spawns the control-mode client. binary may be empty
// to use the tmux found on PATH.
func StartControlClient(binary, socketPath, session string) (*Process, error) {
	if binary == "" {
		binary = defaultBinary
	}
	cmd := exec.Command(binary, ControlArgs(socketPath, session)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return &Process{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

// Stdin is the command sink for the gateway.
func (p *Process) Stdin() io.Writer { return p.stdin }

// Stdout is the notification stream for the gateway.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stop closes the command channel, which the server treats as a detach
// request. The stream then drains to %exit and EOF on its own.
func (p *Process) Stop() {
	p.stdin.Close()
}

// Wait reaps the client process. A SIGTERM/SIGHUP death during teardown
// is a normal detach, not an error.
func (p *Process) Wait() error {
	err := p.cmd.Wait()
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return nil
		}
	}
	return err
}
