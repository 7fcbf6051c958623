package ipc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// Endpoint identifies the daemon's local transport address for the
// configuration loaded from configPath: a filesystem path on POSIX (the
// Unix domain socket), or a named-pipe name on Windows. The name is a
// stable hash of the config path plus the current user id (spec.md
// §4.4), so two different --config files for the same user never
// collide on one daemon, while repeated invocations against the same
// config always agree on where its daemon lives.
func Endpoint(configPath string) (string, error) {
	name, err := derivedName(configPath)
	if err != nil {
		return "", err
	}
	return endpoint(name)
}

// derivedName hashes configPath together with the current user's id.
// The result is used both as the endpoint's own name and as the
// basename shared by its sibling PID, fingerprint, and lock files
// (spec.md §6: "<endpoint>.pid", "<endpoint>.fp").
func derivedName(configPath string) (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("ipc: resolving current user: %w", err)
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("ipc: resolving config path %q: %w", configPath, err)
	}
	sum := sha256.Sum256([]byte(abs + "\x00" + u.Uid))
	return hex.EncodeToString(sum[:])[:16], nil
}

// BookkeepingBase returns the path prefix, sibling to the endpoint, that
// internal/daemon builds its lock/PID/fingerprint file names from:
// <runtime-dir>/<derived-name>.
func BookkeepingBase(configPath string) (string, error) {
	name, err := derivedName(configPath)
	if err != nil {
		return "", err
	}
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// RuntimeDir returns the per-user directory holding the endpoint
// socket/pipe alongside the daemon's lock/pid/fingerprint files
// (internal/daemon). It prefers XDG_RUNTIME_DIR, falling back to the
// user's config directory, matching the search order the teacher's
// profile store already uses for other per-user state.
func RuntimeDir() (string, error) {
	return runtimeDir()
}

func runtimeDir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mcpmux"), nil
	}
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("ipc: resolving runtime directory: %w", err)
	}
	return filepath.Join(cfgDir, "mcpmux"), nil
}
