package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gamekit/pkg/async"
)

// ExecutionResult reports the outcome of one (event, handler) pair.
type ExecutionResult struct {
	HandlerName     string
	Success         bool
	Duration        time.Duration
	GeneratedEvents []Event
	Err             error
}

// runBatch executes one event's resolved handlers per the configured policy,
// folds the outcomes into stats, and schedules any generated events as
// cascades. It never returns an error: individual failures are contained in
// their own ExecutionResult.
func (b *Bus) runBatch(ctx context.Context, event Event, batch []Handler, depth int) []ExecutionResult {
	start := time.Now()
	results := make([]ExecutionResult, len(batch))

	if b.cfg.Sequential {
		for i, h := range batch {
			results[i] = b.invoke(ctx, event, h)
		}
	} else {
		// Wait for all, regardless of individual outcome: handlers are
		// independent consumers and one failure must not starve the rest.
		var wg sync.WaitGroup
		for i, h := range batch {
			wg.Add(1)
			go func(i int, h Handler) {
				defer wg.Done()
				results[i] = b.invoke(ctx, event, h)
			}(i, h)
		}
		wg.Wait()
	}

	b.stats.batchProcessed(results, time.Since(start))
	b.cascade(ctx, event, results, depth)

	return results
}

// invoke runs a single handler with retry and timeout policy applied, then
// fires the handler's outcome hook. Hook panics are swallowed and logged.
func (b *Bus) invoke(ctx context.Context, event Event, h Handler) ExecutionResult {
	timeout := h.Timeout()
	if timeout <= 0 {
		timeout = b.cfg.HandlerTimeout
	}

	start := time.Now()
	var generated []Event
	var err error

	delay := b.cfg.RetryDelay
	for attempt := 0; ; attempt++ {
		event.RetryCount = attempt
		generated, err = b.attempt(ctx, event, h, timeout)
		if err == nil || attempt >= b.cfg.MaxRetryAttempts {
			break
		}
		// Timeouts are not retried: the previous attempt may still be
		// running and a second concurrent invocation would compound the load.
		if errors.Is(err, ErrHandlerTimeout) || errors.Is(err, context.Canceled) {
			break
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(delay):
			delay *= 2
			continue
		}
		break
	}

	result := ExecutionResult{
		HandlerName:     h.Name(),
		Success:         err == nil,
		Duration:        time.Since(start),
		GeneratedEvents: generated,
		Err:             err,
	}

	b.notifyHooks(ctx, event, h, result)

	if err != nil {
		b.logger.ErrorContext(ctx, "event handler failed",
			slog.String("event_id", event.ID),
			slog.String("event_name", event.Name),
			slog.String("handler", h.Name()),
			slog.Duration("duration", result.Duration),
			slog.String("error", err.Error()))
	} else {
		b.logger.DebugContext(ctx, "event handler completed",
			slog.String("event_id", event.ID),
			slog.String("event_name", event.Name),
			slog.String("handler", h.Name()),
			slog.Duration("duration", result.Duration))
	}

	return result
}

// attempt races one handler invocation against its timeout. The timeout is
// propagated into the handler's context for cooperative cancellation; a
// handler that ignores it keeps running in the background while the bus
// records the invocation as failed and discards its eventual result.
func (b *Bus) attempt(ctx context.Context, event Event, h Handler, timeout time.Duration) ([]Event, error) {
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	future := async.Async(hctx, event, func(ctx context.Context, evt Event) (generated []Event, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panicked: %v", r)
			}
		}()
		return h.Handle(ctx, evt)
	})

	generated, err := future.AwaitWithTimeout(timeout)
	if errors.Is(err, async.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrHandlerTimeout, timeout)
	}
	return generated, err
}

func (b *Bus) notifyHooks(ctx context.Context, event Event, h Handler, result ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WarnContext(ctx, "handler hook panicked",
				slog.String("event_id", event.ID),
				slog.String("handler", h.Name()),
				slog.Any("panic", r))
		}
	}()

	if result.Success {
		h.OnSuccess(ctx, event, result.GeneratedEvents)
	} else {
		h.OnError(ctx, event, result.Err)
	}
}

// cascade publishes events generated by successful handlers once their
// parent batch has fully settled, so a cascade can never be observed before
// its cause. Generations past MaxCascadeDepth are dropped and counted as
// errors instead of recursing without bound.
func (b *Bus) cascade(ctx context.Context, parent Event, results []ExecutionResult, depth int) {
	var generated []Event
	for _, res := range results {
		if res.Success {
			generated = append(generated, res.GeneratedEvents...)
		}
	}
	if len(generated) == 0 {
		return
	}

	if depth+1 >= b.cfg.MaxCascadeDepth {
		b.stats.errorRecorded()
		b.logger.WarnContext(ctx, "cascade depth exceeded, dropping generated events",
			slog.String("event_id", parent.ID),
			slog.String("event_name", parent.Name),
			slog.String("correlation_id", parent.CorrelationID),
			slog.Int("depth", depth+1),
			slog.Int("dropped", len(generated)),
			slog.String("error", ErrCascadeDepthExceeded.Error()))
		return
	}

	bctx := context.WithoutCancel(ctx)

	for _, child := range generated {
		child = correlate(parent, child)
		if err := validate(child); err != nil {
			b.stats.errorRecorded()
			b.logger.ErrorContext(ctx, "discarding invalid generated event",
				slog.String("parent_event_id", parent.ID),
				slog.String("error", err.Error()))
			continue
		}

		b.stats.eventPublished()

		batch := b.resolve(child)
		if len(batch) == 0 {
			continue
		}

		b.wg.Add(1)
		go func(child Event) {
			defer b.wg.Done()
			b.runBatch(bctx, child, batch, depth+1)
		}(child)
	}
}
