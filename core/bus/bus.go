package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"
)

// Bus routes published events to subscribed handlers. It is safe for
// concurrent use; independent publishes proceed without blocking each other.
//
// Construct one Bus per process and pass it explicitly to producers and to
// the components that register handlers. The bus has no global instance.
//
// Example:
//
//	eventBus := bus.New(bus.WithLogger(logger))
//	unsubscribe := eventBus.Subscribe("lobby.created", handler)
//	defer unsubscribe()
//
//	err := eventBus.Publish(ctx, bus.NewEvent(game.LobbyCreated{Lobby: lobby}))
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	cfg    Config
	logger *slog.Logger
	stats  *statsCollector

	// wg tracks in-flight batches, including cascades, so tests and
	// shutdown paths can drain scheduled work.
	wg sync.WaitGroup
}

// Option configures a Bus.
type Option func(*Bus)

// WithConfig replaces the entire bus configuration.
func WithConfig(cfg Config) Option {
	return func(b *Bus) {
		b.cfg = cfg
	}
}

// WithLogger configures structured logging for bus operations.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithSequentialExecution makes every batch run its handlers one at a time
// in priority order instead of concurrently.
func WithSequentialExecution() Option {
	return func(b *Bus) {
		b.cfg.Sequential = true
	}
}

// WithHandlerTimeout sets the default per-handler timeout.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.cfg.HandlerTimeout = d
		}
	}
}

// WithMaxCascadeDepth caps how many generations of handler-generated events
// the bus will publish before dropping the chain.
func WithMaxCascadeDepth(depth int) Option {
	return func(b *Bus) {
		if depth > 0 {
			b.cfg.MaxCascadeDepth = depth
		}
	}
}

// WithRetry enables bounded retry of failed handler invocations with
// doubling backoff starting at delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(b *Bus) {
		if attempts > 0 {
			b.cfg.MaxRetryAttempts = attempts
		}
		if delay > 0 {
			b.cfg.RetryDelay = delay
		}
	}
}

// New creates a Bus with the given options.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]Handler),
		cfg:      DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stats:    newStatsCollector(),
	}

	for _, opt := range opts {
		opt(b)
	}
	b.cfg = b.cfg.normalized()

	return b
}

// UnsubscribeFunc removes exactly the registration that produced it.
// Calling it more than once is a no-op.
type UnsubscribeFunc func()

// Subscribe registers handler for events named eventName and returns the
// capability that removes the registration. Subscribing the same handler
// instance twice for the same name is idempotent: the handler executes at
// most once per matching event and the duplicate call does not create a
// second registration.
func (b *Bus) Subscribe(eventName string, handler Handler) UnsubscribeFunc {
	if eventName == "" || handler == nil {
		return func() {}
	}

	b.mu.Lock()
	if !slices.Contains(b.handlers[eventName], handler) {
		b.handlers[eventName] = append(b.handlers[eventName], handler)
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		regs := b.handlers[eventName]
		idx := slices.Index(regs, handler)
		if idx < 0 {
			return
		}

		regs = slices.Delete(regs, idx, idx+1)
		if len(regs) == 0 {
			delete(b.handlers, eventName)
		} else {
			b.handlers[eventName] = regs
		}
	}
}

// SubscribeToMultiple registers handler for several event names at once and
// returns a single capability that removes all of them.
func (b *Bus) SubscribeToMultiple(eventNames []string, handler Handler) UnsubscribeFunc {
	unsubscribes := make([]UnsubscribeFunc, 0, len(eventNames))
	for _, name := range eventNames {
		unsubscribes = append(unsubscribes, b.Subscribe(name, handler))
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}

// Publish schedules the event's handler batch and returns without waiting
// for it. Only scheduling problems (malformed event) are reported; handler
// failures surface through stats, logs, and the handlers' own OnError hooks.
// An event with no matching handlers is a successful no-op.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}

	b.stats.eventPublished()

	batch := b.resolve(event)
	if len(batch) == 0 {
		return nil
	}

	// Detach from the caller's lifetime: a cancelled HTTP request must not
	// abort notification fanout that was already accepted.
	bctx := context.WithoutCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runBatch(bctx, event, batch, 0)
	}()

	return nil
}

// PublishAndWait publishes the event and blocks until every matching
// handler has settled (completed, failed, or timed out), returning the
// per-handler results. Handler failures never turn into a returned error.
func (b *Bus) PublishAndWait(ctx context.Context, event Event) ([]ExecutionResult, error) {
	if err := validate(event); err != nil {
		return nil, err
	}

	b.stats.eventPublished()

	batch := b.resolve(event)
	if len(batch) == 0 {
		return nil, nil
	}

	b.wg.Add(1)
	defer b.wg.Done()

	return b.runBatch(ctx, event, batch, 0), nil
}

// Stats returns a snapshot of bus activity counters.
func (b *Bus) Stats() BusStats {
	stats := b.stats.snapshot()

	b.mu.RLock()
	stats.EventTypes = len(b.handlers)
	for _, regs := range b.handlers {
		stats.Subscriptions += len(regs)
	}
	b.mu.RUnlock()

	return stats
}

// Clear drops every subscription and resets all statistics. Batches already
// scheduled keep running with the handler set they resolved at publish time.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.handlers = make(map[string][]Handler)
	b.mu.Unlock()

	b.stats.reset()
	b.logger.Info("event bus cleared")
}

// Drain blocks until every scheduled batch, including cascades, has
// settled. Intended for graceful shutdown and test synchronization.
func (b *Bus) Drain() {
	b.wg.Wait()
}

// Healthcheck validates that the bus is operational by probing subscription
// lock responsiveness within the context deadline. Returns nil if healthy.
// Suitable for use in health check endpoints:
//
//	healthSrv.AddCheck("event-bus", eventBus.Healthcheck)
func (b *Bus) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}

	probe := make(chan struct{})
	go func() {
		b.mu.RLock()
		b.mu.RUnlock()
		close(probe)
	}()

	select {
	case <-probe:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrHealthcheckFailed, ctx.Err())
	}
}

func validate(event Event) error {
	if event.Name == "" {
		return ErrInvalidEvent
	}
	if event.Payload == nil {
		return ErrNilPayload
	}
	return nil
}

// resolve snapshots the matching handlers for an event: subscribed to its
// name, passing their predicate, stable-sorted ascending by priority so
// ties keep registration order.
func (b *Bus) resolve(event Event) []Handler {
	b.mu.RLock()
	regs := b.handlers[event.Name]
	matched := make([]Handler, 0, len(regs))
	for _, h := range regs {
		if h.Match(event) {
			matched = append(matched, h)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority() < matched[j].Priority()
	})

	return matched
}
