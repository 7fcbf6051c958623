//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"time"
)

func endpoint(name string) (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".sock"), nil
}

// listen binds the Unix domain socket at path, creating its parent
// directory and removing any stale socket file left by a daemon that
// died without cleaning up (spec.md §4.5, "the PID file is stale").
func listen(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	os.Remove(path)
	return net.Listen("unix", path)
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	d := net.Dialer{Timeout: 2 * time.Second}
	return d.DialContext(ctx, "unix", path)
}

func removeEndpoint(path string) {
	os.Remove(path)
}
