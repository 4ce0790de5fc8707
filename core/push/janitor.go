package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/gamekit/pkg/logger"
)

// Janitor periodically sweeps both registries: dead connections are
// evicted and channel memberships are recomputed against the live set.
// The sweep runs independently of any single broadcast, catching
// connections that died without triggering a failed send.
type Janitor struct {
	conns    *ConnectionRegistry
	channels *ChannelRegistry
	interval time.Duration
	log      *slog.Logger
	running  atomic.Bool
}

// JanitorOption configures a Janitor.
type JanitorOption func(*Janitor)

// WithJanitorInterval sets the sweep interval. Default is 30s.
func WithJanitorInterval(d time.Duration) JanitorOption {
	return func(j *Janitor) {
		if d > 0 {
			j.interval = d
		}
	}
}

// WithJanitorLogger configures structured logging for sweeps.
func WithJanitorLogger(log *slog.Logger) JanitorOption {
	return func(j *Janitor) {
		if log != nil {
			j.log = log
		}
	}
}

// NewJanitor creates a janitor over the given registries.
func NewJanitor(conns *ConnectionRegistry, channels *ChannelRegistry, opts ...JanitorOption) *Janitor {
	j := &Janitor{
		conns:    conns,
		channels: channels,
		interval: DefaultConfig().CleanupInterval,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// Sweep runs one cleanup pass and returns the number of evicted connections.
func (j *Janitor) Sweep() int {
	evicted := j.conns.Cleanup()
	j.channels.Cleanup()
	return evicted
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// The returned function sweeps on the configured interval until the context
// is cancelled.
//
// Example:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(janitor.Run(ctx))
func (j *Janitor) Run(ctx context.Context) func() error {
	return func() error {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.running.Store(true)
		defer j.running.Store(false)

		j.log.Info("push janitor started", slog.Duration("interval", j.interval))

		for {
			select {
			case <-ctx.Done():
				j.log.Info("push janitor stopping")
				return nil
			case <-ticker.C:
				if evicted := j.Sweep(); evicted > 0 {
					j.log.Info("janitor sweep finished",
						logger.Count("evicted", evicted),
						logger.Count("connections", j.conns.Len()),
						logger.Count("channels", j.channels.Len()))
				}
			}
		}
	}
}

// Healthcheck validates that the janitor's sweep loop is running.
// Returns nil if healthy. Suitable for use in health check endpoints.
func (j *Janitor) Healthcheck(ctx context.Context) error {
	if !j.running.Load() {
		return errors.Join(ErrHealthcheckFailed, ErrJanitorNotRunning)
	}
	return nil
}
