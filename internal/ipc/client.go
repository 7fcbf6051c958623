package ipc

import (
	"bufio"
	"context"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Client is a one-shot connection to the daemon serving one specific
// configuration: Call dials, writes one RequestFrame, reads one
// ResponseFrame, and closes.
type Client struct {
	configPath string
}

// Dial binds a Client to the daemon endpoint derived from configPath.
// mcpmux has no persistent client-side connection state because every
// call is its own dial (spec.md §4.4).
func Dial(configPath string) *Client { return &Client{configPath: configPath} }

// Call sends req to the daemon at this Client's endpoint and returns its
// response. If no daemon is listening, the error is classified as
// DaemonNotRunning so callers (the bridge, spawn-on-demand logic) can
// distinguish "nothing to talk to" from a mid-conversation IPC failure.
func (c *Client) Call(ctx context.Context, req protocol.RequestFrame) (protocol.ResponseFrame, error) {
	path, err := Endpoint(c.configPath)
	if err != nil {
		return protocol.ResponseFrame{}, mcperrors.IPCError(err)
	}

	conn, err := dial(ctx, path)
	if err != nil {
		return protocol.ResponseFrame{}, mcperrors.DaemonNotRunning()
	}
	defer conn.Close()

	if err := WriteRequestFrame(conn, req); err != nil {
		return protocol.ResponseFrame{}, mcperrors.IPCError(err)
	}

	if tc, ok := conn.(interface{ CloseWrite() error }); ok {
		tc.CloseWrite()
	}

	resp, err := ReadResponseFrame(bufio.NewReader(conn))
	if err != nil {
		return protocol.ResponseFrame{}, mcperrors.IPCError(err)
	}
	return resp, nil
}

// Ping is a convenience wrapper used by daemon-liveness checks (spawn
// polling, singleton detection).
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Call(ctx, protocol.RequestFrame{Type: protocol.FramePing})
	if err != nil {
		return err
	}
	if resp.Type != protocol.FramePong {
		return mcperrors.IPCError(errUnexpectedResponse(resp.Type))
	}
	return nil
}

// Shutdown asks a running daemon to terminate gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	resp, err := c.Call(ctx, protocol.RequestFrame{Type: protocol.FrameShutdown})
	if err != nil {
		return err
	}
	if resp.Type != protocol.FrameAck {
		return mcperrors.IPCError(errUnexpectedResponse(resp.Type))
	}
	return nil
}

type unexpectedResponseError string

func (e unexpectedResponseError) Error() string { return "unexpected ipc response type: " + string(e) }

func errUnexpectedResponse(t protocol.FrameResponseType) error {
	return unexpectedResponseError(t)
}
