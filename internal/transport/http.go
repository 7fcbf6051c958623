package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// HTTP is a Transport backed by a pooled *http.Client, generalized from the
// teacher's cli/client.ControlClient JSON-POST convention. One JSON-RPC
// request maps to one HTTP POST whose body is the request envelope and
// whose response body is the JSON-RPC reply.
type HTTP struct {
	url     string
	headers map[string]string
	client  *http.Client
	nextID  atomic.Int64
}

// NewHTTP builds an HTTP transport against url with the given default
// headers applied to every request.
func NewHTTP(url string, headers map[string]string, timeout time.Duration) *HTTP {
	return &HTTP{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Kind() Kind { return KindHTTP }

// Send POSTs req and decodes the JSON-RPC reply. A non-2xx HTTP status maps
// to a connection-level error; a 2xx body with a JSON-RPC error field is
// left for the caller to inspect on the returned Response (protocol error).
func (h *HTTP) Send(ctx context.Context, req protocol.Request) (*protocol.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d from %s: %s", resp.StatusCode, h.url, string(respBody))
	}

	var rpcResp protocol.Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("malformed json-rpc response: %w", err)
	}
	return &rpcResp, nil
}

// SendNotification is unsupported over HTTP (spec.md §4.1): many MCP-over-
// HTTP servers cannot usefully receive a response-less call, and the spec
// leaves the notifications/initialized step for HTTP entirely unsent (see
// internal/pool's handshake logic and SPEC_FULL.md §4.2).
func (h *HTTP) SendNotification(ctx context.Context, req protocol.Request) error {
	return &ErrUnsupportedOperation{Op: "notifications", Kind: KindHTTP}
}

// NextID returns a monotonically increasing id for this transport instance.
func (h *HTTP) NextID() int64 { return h.nextID.Add(1) }

// Close releases the underlying client's idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
