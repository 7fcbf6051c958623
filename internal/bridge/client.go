// Package bridge implements the ProtocolClient abstraction of spec.md
// §4.6: the single interface the CLI and daemon's own internal callers
// use to reach MCP servers, regardless of whether that means talking
// directly to a Connection Pool, going out over IPC to a daemon, or
// (inside the daemon itself) calling the pool it already owns.
//
// The retry and bounded fan-out policies live here rather than in
// internal/pool because they are a bridge-layer concern: the pool
// retries nothing and has no concept of "many calls at once" — every
// Client implementation gets retry and fan-out by composing the same
// helpers over its own single-call primitives.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Call is one tool invocation, used by ExecuteMany's bounded fan-out.
type Call struct {
	Server    string
	Tool      string
	Arguments json.RawMessage
}

// Result pairs a Call's outcome with the Call itself so a caller can
// correlate fan-out results back to their origin without relying on
// slice order alone.
type Result struct {
	Call   Call
	Value  *protocol.CallToolResult
	Err    error
}

// Client is the ProtocolClient interface every caller of mcpmux's MCP
// access layer programs against.
type Client interface {
	ListServers(ctx context.Context) ([]string, error)
	ListTools(ctx context.Context, server string) ([]protocol.Tool, error)
	ExecuteTool(ctx context.Context, server, tool string, args json.RawMessage) (*protocol.CallToolResult, error)

	// ExecuteMany runs each call with bounded parallelism (spec.md §4.6)
	// and returns one Result per Call, in the same order, regardless of
	// individual failures.
	ExecuteMany(ctx context.Context, calls []Call) []Result

	Close() error
}
