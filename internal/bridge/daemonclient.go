package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/ipc"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

// daemonClient reaches MCP servers by going out over IPC to a running
// daemon. Each call dials, sends one frame, and reads one frame back
// (internal/ipc's one-shot-per-connection protocol); retry and fan-out
// are applied on top the same way as the direct and in-daemon
// implementations.
type daemonClient struct {
	ipc   *ipc.Client
	retry RetryPolicy
	limit int
}

// NewDaemonConnected builds a Client that talks to an already-running
// daemon over IPC. Used in ModeAutoSpawn and ModeRequireRunning after
// internal/daemon.EnsureRunning has confirmed a daemon is listening.
func NewDaemonConnected(cfg *config.Config) Client {
	return &daemonClient{
		ipc:   ipc.Dial(cfg.Path),
		retry: NewRetryPolicy(cfg.RetryMax, time.Duration(cfg.RetryDelayMS)*time.Millisecond),
		limit: cfg.ConcurrencyLimit,
	}
}

func (c *daemonClient) ListServers(ctx context.Context) ([]string, error) {
	resp, err := c.ipc.Call(ctx, protocol.RequestFrame{Type: protocol.FrameListServers})
	if err != nil {
		return nil, err
	}
	if resp.Type == protocol.FrameError {
		return nil, errorFromFrame(resp)
	}
	return resp.Names, nil
}

func (c *daemonClient) ListTools(ctx context.Context, server string) ([]protocol.Tool, error) {
	var tools []protocol.Tool
	err := c.retry.Do(ctx, func() error {
		resp, err := c.ipc.Call(ctx, protocol.RequestFrame{Type: protocol.FrameListTools, Server: server})
		if err != nil {
			return err
		}
		if resp.Type == protocol.FrameError {
			return errorFromFrame(resp)
		}
		tools = resp.Tools
		return nil
	})
	return tools, err
}

func (c *daemonClient) ExecuteTool(ctx context.Context, server, tool string, args json.RawMessage) (*protocol.CallToolResult, error) {
	var result protocol.CallToolResult
	err := c.retry.Do(ctx, func() error {
		resp, err := c.ipc.Call(ctx, protocol.RequestFrame{
			Type: protocol.FrameExecuteTool, Server: server, Tool: tool, Arguments: args,
		})
		if err != nil {
			return err
		}
		if resp.Type == protocol.FrameError {
			return errorFromFrame(resp)
		}
		return json.Unmarshal(resp.Value, &result)
	})
	return &result, err
}

func (c *daemonClient) ExecuteMany(ctx context.Context, calls []Call) []Result {
	return fanOut(ctx, c.limit, calls, func(ctx context.Context, call Call) Result {
		value, err := c.ExecuteTool(ctx, call.Server, call.Tool, call.Arguments)
		return Result{Call: call, Value: value, Err: err}
	})
}

// Close is a no-op: daemonClient holds no persistent connection (every
// call is its own dial), so there is nothing to release.
func (c *daemonClient) Close() error { return nil }

// errorFromFrame reconstructs an *mcperrors.Error from an Error response
// frame. The IPC wire does not preserve the cause chain (spec.md §7), so
// the reconstructed error carries the kind and message only.
func errorFromFrame(f protocol.ResponseFrame) error {
	return mcperrors.New(mcperrors.Kind(f.ErrorKind), f.Message)
}
