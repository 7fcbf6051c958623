package bridge

import (
	"time"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/pool"
)

// NewInDaemon builds a Client over a pool the daemon already owns and
// will shut down itself — Close is a no-op here, unlike NewDirect. This
// is the implementation internal/daemon uses internally so that a
// daemon-served request gets the same retry and fan-out policy as a
// direct or daemon-connected caller, rather than calling the pool
// unwrapped.
func NewInDaemon(p *pool.Pool, cfg *config.Config) Client {
	retryDelay := time.Duration(cfg.RetryDelayMS) * time.Millisecond
	return &poolBackedClient{
		pool:      p,
		retry:     NewRetryPolicy(cfg.RetryMax, retryDelay),
		limit:     cfg.ConcurrencyLimit,
		closePool: false,
	}
}
