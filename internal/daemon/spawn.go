package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/ipc"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
)

// Mode selects how the bridge may obtain a daemon connection (spec.md
// §4.6): spawn one on demand, insist one is already running, or bypass
// the daemon entirely and talk to MCP servers in-process.
type Mode string

const (
	ModeAutoSpawn       Mode = "auto_spawn"
	ModeRequireRunning  Mode = "require_running"
	ModeStandaloneLocal Mode = "standalone"
)

// spawnPollInterval/spawnTimeout bound how long EnsureRunning waits for a
// freshly spawned daemon to start answering pings.
const (
	spawnPollInterval = 100 * time.Millisecond
	spawnTimeout      = 10 * time.Second
)

// EnsureRunning makes sure a daemon matching cfg's fingerprint is
// listening at the endpoint derived from cfg.Path, per mode:
//
//   - ModeRequireRunning: never spawns; returns DaemonNotRunning if
//     nothing answers, or if the running daemon's fingerprint has
//     drifted from cfg's.
//   - ModeAutoSpawn: spawns a fresh daemon if none is running, and
//     restarts it (shutdown + respawn) if configuration has drifted.
//   - ModeStandaloneLocal: always returns nil without touching IPC at
//     all; callers in this mode use internal/bridge's in-process
//     implementation instead.
func EnsureRunning(ctx context.Context, cfg *config.Config, mode Mode) error {
	if mode == ModeStandaloneLocal {
		return nil
	}

	want := cfg.Fingerprint()
	client := ipc.Dial(cfg.Path)

	pingErr := client.Ping(ctx)
	if pingErr == nil {
		running, ok, err := RunningFingerprint(cfg.Path)
		if err == nil && ok && running == want {
			return nil // already serving this exact configuration
		}

		if mode == ModeRequireRunning {
			return mcperrors.New(mcperrors.KindDaemonNotRunning,
				"running daemon's configuration has drifted from the current config file; stop it with 'mcpmux shutdown'")
		}

		if err := client.Shutdown(ctx); err != nil {
			return fmt.Errorf("daemon: shutting down stale daemon: %w", err)
		}
		if err := waitForShutdown(ctx, cfg.Path); err != nil {
			return err
		}
	} else if mode == ModeRequireRunning {
		return mcperrors.DaemonNotRunning()
	}

	return spawnAndWait(ctx, cfg.Path)
}

func waitForShutdown(ctx context.Context, configPath string) error {
	deadline := time.Now().Add(spawnTimeout)
	client := ipc.Dial(configPath)
	for time.Now().Before(deadline) {
		if err := client.Ping(ctx); err != nil {
			return nil // no longer answering: it has shut down
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(spawnPollInterval):
		}
	}
	return fmt.Errorf("daemon: timed out waiting for outgoing daemon to shut down")
}

// spawnAndWait re-execs this binary with the daemon subcommand and the
// resolved config path (spec.md §4.5), detaches it, and polls until it
// answers Ping. Passing the resolved path explicitly, rather than
// letting the child rediscover it, guarantees the child binds the exact
// endpoint this process is about to dial.
func spawnAndWait(ctx context.Context, configPath string) error {
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("daemon: resolving own executable path: %w", err)
	}

	spawnID := uuid.NewString()
	cmd := exec.Command(binary, "daemon", "--foreground", "--config", configPath)
	cmd.Env = append(os.Environ(), "MCPMUX_SPAWN_ID="+spawnID)
	detachDaemonProcess(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemon: spawning daemon process: %w", err)
	}
	// The spawned daemon outlives this process; release is intentional.
	cmd.Process.Release()

	client := ipc.Dial(configPath)
	deadline := time.Now().Add(spawnTimeout)
	for time.Now().Before(deadline) {
		if client.Ping(ctx) == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(spawnPollInterval):
		}
	}
	return mcperrors.New(mcperrors.KindIPC, fmt.Sprintf("daemon (spawn %s) did not become ready within %s", spawnID, spawnTimeout))
}
