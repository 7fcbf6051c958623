package daemon_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/daemon"
	"github.com/mcpmux/mcpmux/internal/ipc"
	"github.com/mcpmux/mcpmux/internal/protocol"
	"github.com/mcpmux/mcpmux/tests/fixtures"
)

func startDaemon(t *testing.T, cfg *config.Config) {
	t.Helper()
	withIsolatedRuntimeDir(t)

	d := daemon.New(cfg, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() { <-done })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ipc.Dial(cfg.Path).Ping(context.Background()) == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("daemon did not start listening in time")
}

func echoConfig(t *testing.T) *config.Config {
	t.Helper()
	bin := fixtures.BuildStdioServer(t)
	return &config.Config{
		Path: filepath.Join(t.TempDir(), "mcp_servers.toml"),
		Servers: []config.Server{
			{Name: "echoserver", Stdio: &config.StdioTransport{Command: bin}},
		},
		ToolTimeoutSecs: 5,
	}
}

func TestDaemon_ListServersAndTools(t *testing.T) {
	cfg := echoConfig(t)
	startDaemon(t, cfg)

	c := ipc.Dial(cfg.Path)
	resp, err := c.Call(context.Background(), protocol.RequestFrame{Type: protocol.FrameListServers})
	require.NoError(t, err)
	assert.Equal(t, []string{"echoserver"}, resp.Names)

	resp, err = c.Call(context.Background(), protocol.RequestFrame{Type: protocol.FrameListTools, Server: "echoserver"})
	require.NoError(t, err)
	require.Len(t, resp.Tools, 2)
	assert.Equal(t, "echo", resp.Tools[0].Name)

	require.NoError(t, c.Shutdown(context.Background()))
}

func TestDaemon_ExecuteToolRoundTrip(t *testing.T) {
	cfg := echoConfig(t)
	startDaemon(t, cfg)

	args, _ := json.Marshal(map[string]string{"text": "via daemon"})
	c := ipc.Dial(cfg.Path)
	resp, err := c.Call(context.Background(), protocol.RequestFrame{
		Type: protocol.FrameExecuteTool, Server: "echoserver", Tool: "echo", Arguments: args,
	})
	require.NoError(t, err)
	require.Equal(t, protocol.FrameToolResult, resp.Type)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(resp.Value, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "via daemon", result.Content[0].Text)

	require.NoError(t, c.Shutdown(context.Background()))
}

func TestDaemon_UnknownServerReturnsErrorFrame(t *testing.T) {
	cfg := echoConfig(t)
	startDaemon(t, cfg)

	c := ipc.Dial(cfg.Path)
	resp, err := c.Call(context.Background(), protocol.RequestFrame{Type: protocol.FrameListTools, Server: "nope"})
	require.NoError(t, err)
	assert.Equal(t, protocol.FrameError, resp.Type)
	assert.Equal(t, "server_not_found", resp.ErrorKind)

	require.NoError(t, c.Shutdown(context.Background()))
}

func TestEnsureRunning_StandaloneModeNeverTouchesIPC(t *testing.T) {
	withIsolatedRuntimeDir(t)
	cfg := &config.Config{}
	err := daemon.EnsureRunning(context.Background(), cfg, daemon.ModeStandaloneLocal)
	assert.NoError(t, err)
}

func TestEnsureRunning_RequireRunningFailsWithoutDaemon(t *testing.T) {
	withIsolatedRuntimeDir(t)
	cfg := &config.Config{}
	err := daemon.EnsureRunning(context.Background(), cfg, daemon.ModeRequireRunning)
	assert.Error(t, err)
}
