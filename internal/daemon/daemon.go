package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcpmux/mcpmux/internal/bridge"
	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/ipc"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/pool"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Daemon owns one Connection Pool and answers IPC requests against it
// until told to shut down or until its idle TTL expires.
type Daemon struct {
	cfg    *config.Config
	pool   *pool.Pool
	client bridge.Client
	logger *slog.Logger

	idle *IdleTimer

	shutdownOnce sync.Once
	cancel       context.CancelFunc
}

// New builds a Daemon for cfg. The pool is created here rather than
// injected so the daemon fully owns the pool's lifetime (Run always
// shuts the pool down on exit). Requests are dispatched through
// bridge.NewInDaemon so daemon-served calls get the same retry policy
// as direct and daemon-connected callers.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	toolTimeout := time.Duration(cfg.ToolTimeoutSecs) * time.Second
	p := pool.New(cfg, toolTimeout)
	return &Daemon{
		cfg:    cfg,
		pool:   p,
		client: bridge.NewInDaemon(p, cfg),
		logger: logger,
	}
}

// Run acquires the singleton lock, binds the IPC endpoint, and serves
// requests until ctx is cancelled, the idle TTL expires, or a Shutdown
// frame is received.
func (d *Daemon) Run(ctx context.Context) error {
	lock, err := AcquireSingleton(d.cfg.Fingerprint(), d.cfg.Path)
	if err != nil {
		return err
	}
	defer lock.Release()

	srv, err := ipc.Listen(d.cfg.Path)
	if err != nil {
		return err
	}
	defer srv.Close()

	serveCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	if d.cfg.DaemonIdleTTLSecs > 0 {
		ttl := time.Duration(d.cfg.DaemonIdleTTLSecs) * time.Second
		d.idle = NewIdleTimer(ttl, func() {
			d.logger.Info("daemon idle TTL expired, shutting down", "ttl", ttl)
			cancel()
		})
		defer d.idle.Stop()
	}

	d.logger.Info("daemon listening", "endpoint", srv.Addr(), "servers", len(d.cfg.Servers))
	err = srv.Serve(serveCtx, d)
	d.pool.Shutdown()
	return err
}

// Handle implements ipc.Handler.
func (d *Daemon) Handle(ctx context.Context, req protocol.RequestFrame) protocol.ResponseFrame {
	switch req.Type {
	case protocol.FramePing:
		return protocol.NewPongResponse()

	case protocol.FrameShutdown:
		d.logger.Info("shutdown requested over ipc")
		d.shutdownOnce.Do(d.cancel)
		return protocol.NewAckResponse()

	case protocol.FrameListServers:
		names, _ := d.client.ListServers(ctx)
		return protocol.NewServerListResponse(names)

	case protocol.FrameListTools:
		if d.idle != nil {
			d.idle.Touch()
		}
		tools, err := d.client.ListTools(ctx, req.Server)
		if err != nil {
			return errorResponse(err)
		}
		return protocol.NewToolListResponse(tools)

	case protocol.FrameExecuteTool:
		if d.idle != nil {
			d.idle.Touch()
		}
		result, err := d.client.ExecuteTool(ctx, req.Server, req.Tool, req.Arguments)
		if err != nil {
			return errorResponse(err)
		}
		resp, err := protocol.NewToolResultResponse(result)
		if err != nil {
			return errorResponse(mcperrors.Wrap(mcperrors.KindProtocol, req.Server, req.Tool, err))
		}
		return resp

	default:
		return protocol.NewErrorResponse(string(mcperrors.KindProtocol), "unknown request frame type")
	}
}

func errorResponse(err error) protocol.ResponseFrame {
	if classified, ok := mcperrors.As(err); ok {
		return protocol.NewErrorResponse(string(classified.Kind), classified.Error())
	}
	return protocol.NewErrorResponse(string(mcperrors.KindProtocol), err.Error())
}
