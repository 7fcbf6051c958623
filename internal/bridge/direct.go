package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/pool"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

// poolBackedClient is the shared implementation behind both directClient
// (owns its pool) and inDaemonClient (borrows the daemon's pool):
// retry-wrapped single calls plus bounded fan-out, over whatever *pool.Pool
// it was given.
type poolBackedClient struct {
	pool       *pool.Pool
	retry      RetryPolicy
	limit      int
	closePool  bool
}

func (c *poolBackedClient) ListServers(ctx context.Context) ([]string, error) {
	return c.pool.ListServers(), nil
}

func (c *poolBackedClient) ListTools(ctx context.Context, server string) ([]protocol.Tool, error) {
	var tools []protocol.Tool
	err := c.retry.Do(ctx, func() error {
		var err error
		tools, err = c.pool.ListTools(ctx, server)
		return err
	})
	return tools, err
}

func (c *poolBackedClient) ExecuteTool(ctx context.Context, server, tool string, args json.RawMessage) (*protocol.CallToolResult, error) {
	var result *protocol.CallToolResult
	err := c.retry.Do(ctx, func() error {
		var err error
		result, err = c.pool.ExecuteTool(ctx, server, tool, args)
		return err
	})
	return result, err
}

func (c *poolBackedClient) ExecuteMany(ctx context.Context, calls []Call) []Result {
	return fanOut(ctx, c.limit, calls, func(ctx context.Context, call Call) Result {
		value, err := c.ExecuteTool(ctx, call.Server, call.Tool, call.Arguments)
		return Result{Call: call, Value: value, Err: err}
	})
}

func (c *poolBackedClient) Close() error {
	if !c.closePool {
		return nil
	}
	return c.pool.Shutdown()
}

// NewDirect builds a Client that owns a fresh Connection Pool for cfg,
// used in ModeStandaloneLocal (spec.md §4.6): every mcpmux invocation
// owns its own pool and its own MCP server child processes, living only
// as long as that single invocation. Close tears the pool (and its
// child processes) down.
func NewDirect(cfg *config.Config) Client {
	toolTimeout := time.Duration(cfg.ToolTimeoutSecs) * time.Second
	retryDelay := time.Duration(cfg.RetryDelayMS) * time.Millisecond
	return &poolBackedClient{
		pool:      pool.New(cfg, toolTimeout),
		retry:     NewRetryPolicy(cfg.RetryMax, retryDelay),
		limit:     cfg.ConcurrencyLimit,
		closePool: true,
	}
}
