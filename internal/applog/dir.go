package applog

import (
	"os"
	"path/filepath"
)

// LogDir resolves the directory mcpmux writes its rotating log file into:
// $XDG_CONFIG_HOME (or os.UserConfigDir())/mcpmux/logs. Logs use the
// config directory rather than internal/ipc.RuntimeDir because
// XDG_RUNTIME_DIR is commonly a tmpfs cleared on reboot, and a log file a
// user might want to attach to a bug report should outlive that.
func LogDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "mcpmux", "logs"), nil
}

// DefaultFilePath returns LogDir joined with the standard log file name.
func DefaultFilePath() (string, error) {
	dir, err := LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mcpmux.log"), nil
}
