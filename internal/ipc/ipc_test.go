package ipc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/ipc"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

type echoHandler struct{}

func (echoHandler) Handle(ctx context.Context, req protocol.RequestFrame) protocol.ResponseFrame {
	switch req.Type {
	case protocol.FramePing:
		return protocol.NewPongResponse()
	case protocol.FrameShutdown:
		return protocol.NewAckResponse()
	case protocol.FrameListServers:
		return protocol.NewServerListResponse([]string{"alpha", "beta"})
	default:
		return protocol.NewErrorResponse("unsupported_operation", "not handled by echoHandler")
	}
}

const testConfigPath = "/tmp/ipc-test-mcp-servers.toml"

func startServer(t *testing.T) {
	t.Helper()
	srv, err := ipc.Listen(testConfigPath)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go srv.Serve(ctx, echoHandler{})
	// Give the accept loop a moment to start; Dial's own 2s timeout covers
	// any remaining slack so this is not load-bearing for correctness.
	time.Sleep(20 * time.Millisecond)
}

func TestIPC_PingPong(t *testing.T) {
	startServer(t)
	c := ipc.Dial(testConfigPath)
	require.NoError(t, c.Ping(context.Background()))
}

func TestIPC_Shutdown(t *testing.T) {
	startServer(t)
	c := ipc.Dial(testConfigPath)
	require.NoError(t, c.Shutdown(context.Background()))
}

func TestIPC_ListServersRoundTrip(t *testing.T) {
	startServer(t)
	c := ipc.Dial(testConfigPath)
	resp, err := c.Call(context.Background(), protocol.RequestFrame{Type: protocol.FrameListServers})
	require.NoError(t, err)
	assert.Equal(t, protocol.FrameServerList, resp.Type)
	assert.Equal(t, []string{"alpha", "beta"}, resp.Names)
}

func TestIPC_NoDaemonIsDaemonNotRunning(t *testing.T) {
	// No server started in this test: the endpoint derived from
	// testConfigPath should have nothing listening (assuming no other mcpmux
	// daemon is running on this machine, true in the test sandbox).
	c := ipc.Dial(testConfigPath)
	_, err := c.Call(context.Background(), protocol.RequestFrame{Type: protocol.FramePing})
	require.Error(t, err)
	classified, ok := mcperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperrors.KindDaemonNotRunning, classified.Kind)
}

func TestIPC_UnknownFrameTypeIsRejectedByValidate(t *testing.T) {
	f := protocol.RequestFrame{Type: "not_a_real_type"}
	assert.Error(t, f.Validate())
}
