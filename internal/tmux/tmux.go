// Package tmux locates the server socket and owns the control-mode
// client process.
package tmux

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const defaultBinary = "tmux"

// ResolveSocketPath decides which server socket to talk to: explicit flag
// value, then the TMUX_CONTROL_ATTACH_SOCKET override, then the socket
// named in $TMUX when running inside a session, then the conventional
// per-user default path.
func ResolveSocketPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if envSocket := os.Getenv("TMUX_CONTROL_ATTACH_SOCKET"); envSocket != "" {
		return envSocket, nil
	}
	if tmuxEnv := os.Getenv("TMUX"); tmuxEnv != "" {
		parts := strings.Split(tmuxEnv, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0], nil
		}
	}
	baseDir := os.Getenv("TMUX_TMPDIR")
	if baseDir == "" {
		baseDir = "/tmp"
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, fmt.Sprintf("tmux-%s", u.Uid), "default"), nil
}

// ControlArgs builds the argv for a control-mode attach. An empty session
// attaches to the server's choice of current session; a named session is
// created on demand so a fresh server is usable immediately.
func ControlArgs(socketPath, session string) []string {
	args := []string{}
	if socketPath != "" {
		args = append(args, "-S", socketPath)
	}
	args = append(args, "-CC")
	if session == "" {
		args = append(args, "attach-session")
	} else {
		args = append(args, "new-session", "-A", "-s", session)
	}
	return args
}
