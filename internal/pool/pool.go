// Package pool implements the Connection Pool of spec.md §4.3: it owns
// every live Transport inside the daemon, keyed by server name, creates
// connections on demand, performs the MCP handshake exactly once per
// connection, and evicts on fatal transport error.
//
// Generalized from the teacher's internal/domain/discovery.DiscoveryEngine
// (map + RWMutex + per-entry bookkeeping + background monitor goroutine);
// the teacher's "auto-unload idle tool" policy is not reproduced here
// because idle shutdown is a daemon-wide concern in this spec (internal/daemon),
// not a per-connection one.
package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/protocol"
	"github.com/mcpmux/mcpmux/internal/transport"
)

// classifySendErr distinguishes a per-call timeout from every other
// transport failure (spec.md §7): Send returns context.DeadlineExceeded
// (wrapped or bare, depending on the transport) when the caller's own
// deadline fires, which is a distinct, retriable kind from a connection
// failure and deserves its own hint rather than being folded into one.
func classifySendErr(server, operation string, err error) *mcperrors.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return mcperrors.Timeout(operation)
	}
	return mcperrors.ConnectionError(server, err)
}

// IDer is implemented by both transport.Stdio and transport.HTTP so the
// pool can mint correlated request ids without a type switch at every call
// site.
type IDer interface {
	NextID() int64
}

// StderrSink receives stdio server stderr lines for logging, set via
// WithStderrSink.
type StderrSink func(server, line string)

// Pool owns all live Transports for one daemon. Keyed by server name,
// per spec.md §4.3.
type Pool struct {
	cfg         *config.Config
	toolTimeout time.Duration
	stderrSink  StderrSink

	mu    sync.RWMutex
	conns map[string]*connection
}

// connection is a Pooled connection (spec.md §3): exclusive transport
// ownership, "initialized" state, and a mutex serializing the entire
// send/receive cycle so a single bidirectional stream never sees
// interleaved requests.
type connection struct {
	mu          sync.Mutex
	server      string
	transport   transport.Transport
	initialized bool
}

// New builds a Pool for cfg. toolTimeout bounds each tools/call and
// tools/list round trip (spec.md §4.3 "enforced by the caller").
func New(cfg *config.Config, toolTimeout time.Duration) *Pool {
	return &Pool{
		cfg:         cfg,
		toolTimeout: toolTimeout,
		conns:       make(map[string]*connection),
	}
}

// WithStderrSink attaches a callback for stdio server stderr lines.
func (p *Pool) WithStderrSink(sink StderrSink) *Pool {
	p.stderrSink = sink
	return p
}

// ListServers reads from configuration only; no network I/O (spec.md §4.3).
func (p *Pool) ListServers() []string {
	return p.cfg.ServerNames()
}

// ListTools resolves or creates the connection, ensures the handshake, and
// returns the server's advertised tools.
func (p *Pool) ListTools(ctx context.Context, server string) ([]protocol.Tool, error) {
	var tools []protocol.Tool
	err := p.withConnection(ctx, server, func(ctx context.Context, c *connection, ider IDer) error {
		req, err := protocol.NewRequest(ider.NextID(), "tools/list", nil)
		if err != nil {
			return err
		}
		resp, err := c.transport.Send(ctx, req)
		if err != nil {
			return classifySendErr(server, server+"/tools/list", err)
		}
		if resp.Error != nil {
			return mcperrors.ProtocolError(server, resp.Error)
		}
		var result struct {
			Tools []protocol.Tool `json:"tools"`
		}
		if err := resp.DecodeResult(&result); err != nil {
			return mcperrors.ProtocolError(server, err)
		}
		tools = result.Tools
		return nil
	})
	return tools, err
}

// ExecuteTool resolves or creates the connection, ensures the handshake,
// sends tools/call, and returns the result content.
func (p *Pool) ExecuteTool(ctx context.Context, server, tool string, args json.RawMessage) (*protocol.CallToolResult, error) {
	var result protocol.CallToolResult
	err := p.withConnection(ctx, server, func(ctx context.Context, c *connection, ider IDer) error {
		params := struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments,omitempty"`
		}{Name: tool, Arguments: args}

		req, err := protocol.NewRequest(ider.NextID(), "tools/call", params)
		if err != nil {
			return err
		}
		resp, err := c.transport.Send(ctx, req)
		if err != nil {
			return classifySendErr(server, server+"/"+tool, err)
		}
		if resp.Error != nil {
			return mcperrors.Wrap(mcperrors.KindInvalidArguments, server, tool, resp.Error)
		}
		if err := resp.DecodeResult(&result); err != nil {
			return mcperrors.ProtocolError(server, err)
		}
		return nil
	})
	return &result, err
}

// Shutdown closes every connection, terminating stdio child processes and
// releasing HTTP clients.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for name, c := range p.conns {
		c.mu.Lock()
		if err := c.transport.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", name, err)
		}
		c.mu.Unlock()
	}
	p.conns = make(map[string]*connection)
	return firstErr
}

// withConnection resolves server's connection, acquires its per-connection
// mutex for the duration of fn (invariant i: at most one concurrent
// send/receive pair per connection), ensures the handshake has run
// (invariant ii: at most once per connection instance), and evicts the
// connection before returning if fn reports a ConnectionError (invariant
// iii).
func (p *Pool) withConnection(ctx context.Context, server string, fn func(ctx context.Context, c *connection, ider IDer) error) error {
	if p.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.toolTimeout)
		defer cancel()
	}

	c, err := p.resolve(ctx, server)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		if err := p.handshake(ctx, c); err != nil {
			p.evict(server, c)
			return err
		}
		c.initialized = true
	}

	ider, ok := c.transport.(IDer)
	if !ok {
		return mcperrors.New(mcperrors.KindProtocol, "transport does not support request id minting")
	}

	if err := fn(ctx, c, ider); err != nil {
		if classified, ok := mcperrors.As(err); ok && classified.Kind == mcperrors.KindConnection {
			p.evict(server, c)
		}
		return err
	}
	return nil
}

// resolve returns the existing connection for server, or creates one.
// Lookup takes the read lock; creation takes the write lock and re-checks
// to avoid a duplicate connection racing in.
func (p *Pool) resolve(ctx context.Context, server string) (*connection, error) {
	p.mu.RLock()
	c, ok := p.conns[server]
	p.mu.RUnlock()
	if ok {
		return c, nil
	}

	entry, ok := p.cfg.ServerByName(server)
	if !ok {
		return nil, mcperrors.ServerNotFound(server, p.cfg.ServerNames())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conns[server]; ok {
		return c, nil
	}

	// NewStdio ties the child's lifetime to this context, and the connection
	// outlives the call that creates it, so the call's deadline is dropped.
	tr, err := p.buildTransport(context.WithoutCancel(ctx), entry)
	if err != nil {
		return nil, mcperrors.ConnectionError(server, err)
	}

	c = &connection{server: server, transport: tr}
	p.conns[server] = c
	return c, nil
}

// evict removes a connection from the pool (invariant iii) and closes its
// transport. It is a no-op if another goroutine already replaced the entry.
func (p *Pool) evict(server string, stale *connection) {
	p.mu.Lock()
	if current, ok := p.conns[server]; ok && current == stale {
		delete(p.conns, server)
	}
	p.mu.Unlock()
	stale.transport.Close()
}

func (p *Pool) buildTransport(ctx context.Context, entry config.Server) (transport.Transport, error) {
	kind, err := entry.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case config.TransportStdio:
		sink := func(line string) {
			if p.stderrSink != nil {
				p.stderrSink(entry.Name, line)
			}
		}
		return transport.NewStdio(ctx, transport.StdioOptions{
			Command:    entry.Stdio.Command,
			Args:       entry.Stdio.Args,
			Env:        entry.Stdio.Env,
			Cwd:        entry.Stdio.Cwd,
			StderrSink: sink,
		})
	case config.TransportHTTP:
		timeout := p.toolTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return transport.NewHTTP(entry.HTTP.URL, entry.HTTP.Headers, timeout), nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}

// handshake performs the MCP initialize + notifications/initialized
// handshake exactly once per connection (spec.md §4.2). For HTTP
// transports, notifications/initialized is deliberately never sent — see
// SPEC_FULL.md §4.2's resolution of the open question.
func (p *Pool) handshake(ctx context.Context, c *connection) error {
	ider := c.transport.(IDer)

	initReq, err := protocol.NewRequest(ider.NextID(), "initialize", map[string]any{
		"protocolVersion": protocol.MCPProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]string{
			"name":    protocol.ClientName,
			"version": protocol.ClientVersion,
		},
	})
	if err != nil {
		return err
	}

	resp, err := c.transport.Send(ctx, initReq)
	if err != nil {
		return classifySendErr(c.server, c.server+"/initialize", err)
	}
	if resp.Error != nil {
		return mcperrors.ProtocolError(c.server, resp.Error)
	}

	if c.transport.Kind() != transport.KindHTTP {
		notif, err := protocol.NewNotification("notifications/initialized", nil)
		if err != nil {
			return err
		}
		if err := c.transport.SendNotification(ctx, notif); err != nil {
			return classifySendErr(c.server, c.server+"/initialize", err)
		}
	}

	return nil
}
