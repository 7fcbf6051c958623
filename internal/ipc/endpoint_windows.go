//go:build windows

package ipc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

func endpoint(name string) (string, error) {
	return `\\.\pipe\mcp-` + name, nil
}

// listen creates the named pipe. Named pipes under \\.\pipe\ are local
// to the machine by construction; go-winio additionally applies a
// security descriptor restricting the pipe to the current user, the
// Windows analogue of PIPE_REJECT_REMOTE_CLIENTS combined with
// filesystem permissions on the POSIX socket.
func listen(path string) (net.Listener, error) {
	cfg := &winio.PipeConfig{
		SecurityDescriptor: "D:P(A;;GA;;;OW)",
		MessageMode:        false,
		InputBufferSize:    64 * 1024,
		OutputBufferSize:   64 * 1024,
	}
	l, err := winio.ListenPipe(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen pipe %s: %w", path, err)
	}
	return l, nil
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return winio.DialPipeContext(timeoutCtx, path)
}

// removeEndpoint is a no-op on Windows: named pipes are kernel objects
// with no filesystem path to clean up.
func removeEndpoint(path string) {}
