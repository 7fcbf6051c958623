package commands

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/mcpmux/mcpmux/internal/bridge"
	"github.com/mcpmux/mcpmux/internal/cliapp/output"
	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/daemon"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

// loadConfig resolves and parses the Configuration record, applying the
// MCP_DAEMON_TTL override (spec.md §6) on top of whatever the file itself
// says. Errors are classified into the mcperrors taxonomy here rather than
// in internal/config, since "fatal to the invocation" framing is a CLI
// concern, not the loader's.
func loadConfig() (*config.Config, error) {
	path, err := config.DiscoverPath(afero.NewOsFs(), configFlag)
	if err != nil {
		return nil, mcperrors.New(mcperrors.KindConfigRead, err.Error())
	}

	cfg, err := config.LoadOS(path)
	if err != nil {
		kind := mcperrors.KindConfigRead
		if strings.Contains(err.Error(), "parsing config") {
			kind = mcperrors.KindConfigParse
		}
		return nil, mcperrors.New(kind, err.Error())
	}

	if v := os.Getenv("MCP_DAEMON_TTL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.DaemonIdleTTLSecs = secs
		}
	}

	return cfg, nil
}

// resolveMode maps the global --no-daemon/--require-daemon flags onto a
// daemon.Mode. --auto-daemon is accepted for symmetry with the other two
// but changes nothing: auto-spawn is already the default when neither
// --no-daemon nor --require-daemon is set.
func resolveMode() daemon.Mode {
	switch {
	case noDaemonFlag:
		return daemon.ModeStandaloneLocal
	case requireDaemonFlag:
		return daemon.ModeRequireRunning
	default:
		return daemon.ModeAutoSpawn
	}
}

// buildClient wires a bridge.Client for the resolved mode, spawning or
// validating a daemon connection first if the mode calls for one. This is
// the one place allowed to import both internal/daemon and internal/bridge
// without creating a cycle (internal/daemon imports internal/bridge, so
// internal/bridge cannot import internal/daemon, and neither imports this
// package).
func buildClient(ctx context.Context, cfg *config.Config) (bridge.Client, error) {
	mode := resolveMode()
	if mode == daemon.ModeStandaloneLocal {
		return bridge.NewDirect(cfg), nil
	}

	if mode == daemon.ModeAutoSpawn {
		if err := ensureRunningWithSpinner(ctx, cfg, mode); err != nil {
			return nil, err
		}
		return bridge.NewDaemonConnected(cfg), nil
	}

	if err := daemon.EnsureRunning(ctx, cfg, mode); err != nil {
		return nil, err
	}
	return bridge.NewDaemonConnected(cfg), nil
}

// ensureRunningWithSpinner drives an indeterminate spinner while
// daemon.EnsureRunning blocks on a possible spawn-and-poll cycle, so an
// interactive invocation doesn't sit with no feedback during the up-to-
// 10s window spawn.go allows for the new daemon to answer Ping.
func ensureRunningWithSpinner(ctx context.Context, cfg *config.Config, mode daemon.Mode) error {
	spinner := output.NewSpinner("waiting for mcpmux daemon")
	if spinner == nil {
		return daemon.EnsureRunning(ctx, cfg, mode)
	}

	done := make(chan error, 1)
	go func() { done <- daemon.EnsureRunning(ctx, cfg, mode) }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			spinner.Stop()
			return err
		case <-ticker.C:
			spinner.Tick()
		}
	}
}
