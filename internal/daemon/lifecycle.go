// Package daemon implements the background process that owns the
// Connection Pool and answers IPC requests: singleton enforcement via a
// lock file, a PID/fingerprint staleness record, idle-TTL auto-shutdown,
// and the request dispatch loop itself.
//
// The singleton/lock pattern is grounded on the teacher's own
// cmd/scooter daemon-singleton guard and on five82-spindle's
// internal/daemon.Daemon, which acquires a gofrs/flock lock file before
// doing any other startup work and releases it on Stop — the same shape
// this package uses, generalized from spindle's single always-running
// daemon to mcpmux's fingerprint-aware restart-on-drift daemon.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/mcpmux/mcpmux/internal/ipc"
)

// Lock is the acquired singleton guard plus the bookkeeping files that
// let a second invocation of mcpmux tell whether a running daemon is
// already serving the current configuration (spec.md §4.5).
type Lock struct {
	flock           *flock.Flock
	lockPath        string
	pidPath         string
	fingerprintPath string
}

// bookkeepingPaths derives the lock/PID/fingerprint file paths from
// configPath, sibling to the endpoint that configuration's daemon binds
// (spec.md §6: "<endpoint>.pid", "<endpoint>.fp"), so two daemons
// serving different configurations never share bookkeeping state.
func bookkeepingPaths(configPath string) (lockPath, pidPath, fingerprintPath string, err error) {
	base, err := ipc.BookkeepingBase(configPath)
	if err != nil {
		return "", "", "", err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o700); err != nil {
		return "", "", "", fmt.Errorf("daemon: creating runtime dir: %w", err)
	}
	return base + ".lock", base + ".pid", base + ".fp", nil
}

// AcquireSingleton takes the daemon lock and records this process's PID
// and the configuration fingerprint it is serving. It fails immediately
// (no blocking) if another daemon already holds the lock for this
// configuration, per spec.md §4.5's "at most one daemon process per
// endpoint" invariant.
func AcquireSingleton(fingerprint, configPath string) (*Lock, error) {
	lockPath, pidPath, fpPath, err := bookkeepingPaths(configPath)
	if err != nil {
		return nil, err
	}

	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("daemon: acquiring lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("daemon: another mcpmux daemon is already running (lock held at %s)", lockPath)
	}

	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("daemon: writing pid file: %w", err)
	}
	if err := os.WriteFile(fpPath, []byte(fingerprint), 0o600); err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("daemon: writing fingerprint file: %w", err)
	}

	return &Lock{flock: fl, lockPath: lockPath, pidPath: pidPath, fingerprintPath: fpPath}, nil
}

// Release unlocks and removes the bookkeeping files. A daemon that dies
// without calling Release leaves a stale lock; flock.TryLock on POSIX
// transparently recognizes a lock held by a dead process as free (the
// kernel releases flocks on process exit), so staleness here only
// affects the PID/fingerprint files' accuracy, not correctness.
func (l *Lock) Release() error {
	os.Remove(l.pidPath)
	os.Remove(l.fingerprintPath)
	return l.flock.Unlock()
}

// RunningFingerprint reads the fingerprint recorded by the daemon
// currently serving configPath, if any. Returns ("", false, nil) if no
// daemon appears to be running for this configuration (no fingerprint
// file, or the file is stale because the lock is actually free).
func RunningFingerprint(configPath string) (string, bool, error) {
	lockPath, _, fpPath, err := bookkeepingPaths(configPath)
	if err != nil {
		return "", false, err
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return "", false, err
	}
	if locked {
		// Nobody held the lock: no daemon is actually running, regardless
		// of what stale files remain.
		fl.Unlock()
		return "", false, nil
	}

	data, err := os.ReadFile(fpPath)
	if err != nil {
		return "", false, nil
	}
	return string(data), true, nil
}

// StartedAt reports when the daemon serving configPath started, derived
// from the PID file's mtime. AcquireSingleton writes the PID file when it
// takes the lock, which Daemon.Run does just before binding the endpoint,
// so the time is that of lock acquisition, not of the bind. This lets the
// CLI show a relative "daemon started N ago" in list -v without the
// IPC wire needing to carry a timestamp the spec's fixed frame shapes
// (§3) don't have room for.
func StartedAt(configPath string) (time.Time, bool, error) {
	_, pidPath, _, err := bookkeepingPaths(configPath)
	if err != nil {
		return time.Time{}, false, err
	}
	info, err := os.Stat(pidPath)
	if err != nil {
		return time.Time{}, false, nil
	}
	return info.ModTime(), true, nil
}
