// Package async provides a minimal Future pattern for coordinating
// asynchronous computations with timeout support.
//
// Future[R] represents the in-flight result of a computation started with
// Async. Callers wait for completion with Await, poll with IsComplete, or
// bound the wait with AwaitWithTimeout. A timed-out wait discards the result
// but does not stop the underlying goroutine; cancellation, when required,
// must be propagated through the context passed to Async.
//
// Basic usage:
//
//	future := async.Async(ctx, req, func(ctx context.Context, r Request) (Response, error) {
//		return client.Do(ctx, r)
//	})
//
//	resp, err := future.AwaitWithTimeout(5 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//		// result discarded, work may still be running
//	}
//
// AwaitAll joins a batch of futures and aggregates their errors with
// errors.Join, preserving result order.
//
// All operations are safe for concurrent use. Each Async call spawns exactly
// one goroutine; a pre-cancelled context resolves the future immediately
// without invoking the function.
package async
