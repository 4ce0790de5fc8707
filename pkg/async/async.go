package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when AwaitWithTimeout exceeds its duration.
	ErrTimeout = errors.New("async operation timed out")

	// ErrNoFutures is returned when a coordination helper is called with no futures.
	ErrNoFutures = errors.New("no futures provided")
)

// Future represents the result of an asynchronous computation returning a value of type R.
type Future[R any] struct {
	result R
	err    error
	once   sync.Once
	done   chan struct{}
}

// Await blocks until the computation completes and returns its result.
func (f *Future[R]) Await() (R, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout blocks until the computation completes or the timeout elapses.
// On timeout it returns ErrTimeout and a zero value; the underlying goroutine
// keeps running and its eventual result is discarded by the caller.
func (f *Future[R]) AwaitWithTimeout(timeout time.Duration) (R, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero R
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[R]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn in a new goroutine and returns a Future for its result.
// If ctx is already cancelled the future resolves immediately with the
// context error and fn is never invoked.
func Async[T, R any](ctx context.Context, param T, fn func(context.Context, T) (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-cancelled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		result, err := fn(ctx, param)

		f.once.Do(func() {
			f.result = result
			f.err = err
		})
	}()

	return f
}

// AwaitAll waits for every future to complete and returns their results in
// order. Errors are aggregated with errors.Join; a nil error means all
// futures succeeded.
func AwaitAll[R any](futures ...*Future[R]) ([]R, error) {
	if len(futures) == 0 {
		return nil, ErrNoFutures
	}

	results := make([]R, len(futures))
	var errs []error

	for i, future := range futures {
		result, err := future.Await()
		results[i] = result
		if err != nil {
			errs = append(errs, err)
		}
	}

	return results, errors.Join(errs...)
}
