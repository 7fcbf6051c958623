package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"

	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Handler answers one RequestFrame. Implemented by internal/daemon's
// in-process bridge; kept as an interface here so internal/ipc has no
// dependency on internal/pool or internal/bridge.
type Handler interface {
	Handle(ctx context.Context, req protocol.RequestFrame) protocol.ResponseFrame
}

// Server accepts daemon connections on the platform endpoint. Each
// connection is one-shot: a client dials, writes exactly one
// RequestFrame, reads exactly one ResponseFrame, and disconnects
// (spec.md §4.4). Ping and Shutdown frames follow the identical
// one-shot shape; they carry no payload beyond what Handler needs to
// answer them, so the server applies no special-casing for them.
type Server struct {
	listener net.Listener
	path     string
}

// Listen binds the daemon endpoint derived from configPath, replacing
// any stale socket/pipe left behind by a previous daemon instance
// serving the same configuration.
func Listen(configPath string) (*Server, error) {
	path, err := Endpoint(configPath)
	if err != nil {
		return nil, err
	}
	l, err := listen(path)
	if err != nil {
		return nil, err
	}
	return &Server{listener: l, path: path}, nil
}

// Addr returns the bound endpoint path/pipe-name.
func (s *Server) Addr() string { return s.path }

// Serve accepts connections until ctx is cancelled, dispatching each to
// handler on its own goroutine. Connections are one-shot so a slow or
// stuck client tool call only blocks its own goroutine, never the
// accept loop.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
		removeEndpoint(s.path)
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}
		go s.serveOne(ctx, conn, handler)
	}
}

func (s *Server) serveOne(ctx context.Context, conn net.Conn, handler Handler) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	req, err := ReadRequestFrame(reader)
	if err != nil {
		resp := protocol.NewErrorResponse("ipc_error", err.Error())
		WriteResponseFrame(conn, resp)
		return
	}

	resp := handler.Handle(ctx, req)
	WriteResponseFrame(conn, resp)
}

// Close shuts down the listener directly, bypassing the context-driven
// path; used by tests and by daemon shutdown after Serve's context has
// already been cancelled once and a second, immediate close is needed.
func (s *Server) Close() error {
	err := s.listener.Close()
	removeEndpoint(s.path)
	return err
}
