// Package transport implements the Transport abstraction of spec.md §4.1: a
// single bidirectional JSON-RPC channel to one MCP server, polymorphic over
// a closed set of two variants (Stdio, HTTP).
//
// Both variants are generalized from the teacher's
// internal/domain/discovery.StdioWorker (spawn + piped stdin/stdout +
// line-buffered reader + id-correlated request/response) and
// internal/cli/client.ControlClient (pooled *http.Client + JSON POST
// convention), unified behind one interface so internal/pool never needs to
// know which variant it holds.
package transport

import (
	"context"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Kind identifies a Transport's variant.
type Kind string

const (
	KindStdio Kind = "stdio"
	KindHTTP  Kind = "http"
)

// Transport is a single bidirectional channel to one MCP server. The set of
// implementations is closed by design (spec.md §9): Stdio and HTTP only.
type Transport interface {
	// Send sends one JSON-RPC request and awaits its correlated response.
	Send(ctx context.Context, req protocol.Request) (*protocol.Response, error)

	// SendNotification sends a fire-and-forget JSON-RPC notification. HTTP
	// transports return ErrUnsupportedOperation.
	SendNotification(ctx context.Context, req protocol.Request) error

	// Kind reports this transport's variant.
	Kind() Kind

	// Close releases the transport's resources. For Stdio this terminates
	// the child process; for HTTP it is a no-op beyond idle-connection
	// cleanup.
	Close() error
}

// ErrUnsupportedOperation is returned by SendNotification on transports that
// cannot send fire-and-forget messages.
type ErrUnsupportedOperation struct {
	Op   string
	Kind Kind
}

func (e *ErrUnsupportedOperation) Error() string {
	return string(e.Kind) + " transport does not support " + e.Op
}
