package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atomicstack/tmux-control-attach/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envSocketPath = "TMUX_CONTROL_ATTACH_SOCKET"
	envSession    = "TMUX_CONTROL_ATTACH_SESSION"
	envTmuxBinary = "TMUX_CONTROL_ATTACH_TMUX"
	envEscapes    = "TMUX_CONTROL_ATTACH_ESCAPES"
	envTrace      = "TMUX_CONTROL_ATTACH_TRACE"
	envLogFile    = "TMUX_CONTROL_ATTACH_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("tmux-control-attach", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	socket := fs.String("socket", envOrDefault(env, envSocketPath, ""), "path to the tmux socket (overrides environment detection)")
	session := fs.String("session", envOrDefault(env, envSession, ""), "session to attach to, created if missing (empty attaches to the current one)")
	tmuxBin := fs.String("tmux", envOrDefault(env, envTmuxBinary, ""), "tmux binary to launch (empty uses PATH)")
	escapes := fs.Bool("escapes", envOrBool(env, envEscapes, true), "preserve colors and attributes when recovering scrollback")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := Config{
		App: app.Config{
			SocketPath: *socket,
			Session:    *session,
			TmuxBinary: *tmuxBin,
			Escapes:    *escapes,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"socket":  *socket,
			"session": *session,
			"tmux":    *tmuxBin,
			"escapes": strconv.FormatBool(*escapes),
			"trace":   strconv.FormatBool(*trace),
			"logFile": *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	// tmux rejects these characters in session names; catching them here
	// beats a cryptic new-session failure after the terminal is already
	// in control mode.
	if strings.ContainsAny(cfg.App.Session, ".:") {
		return fmt.Errorf("session name %q must not contain '.' or ':'", cfg.App.Session)
	}
	if cfg.App.SocketPath != "" {
		if _, err := os.Stat(cfg.App.SocketPath); err != nil {
			return fmt.Errorf("socket path: %w", err)
		}
	}
	return nil
}
