package push

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// SSEStream is a Sender backed by a Server-Sent Events response stream.
// Send enqueues into a bounded buffer consumed by Serve; a full buffer is a
// failed send, so slow consumers get pruned instead of blocking broadcasts.
type SSEStream struct {
	buf       chan Message
	done      chan struct{}
	closed    atomic.Bool
	keepAlive time.Duration
}

// SSEOption configures an SSEStream.
type SSEOption func(*SSEStream)

// WithSSEBuffer sets the outbound buffer size. Default is 64.
func WithSSEBuffer(size int) SSEOption {
	return func(s *SSEStream) {
		if size > 0 {
			s.buf = make(chan Message, size)
		}
	}
}

// WithSSEKeepAlive sets the keep-alive comment interval. Default is 30s.
func WithSSEKeepAlive(interval time.Duration) SSEOption {
	return func(s *SSEStream) {
		if interval > 0 {
			s.keepAlive = interval
		}
	}
}

// NewSSEStream creates an SSE-backed sender. The caller registers it as a
// connection and runs Serve on the HTTP response goroutine:
//
//	stream := push.NewSSEStream()
//	conn := push.NewConnection("", userID, stream)
//	if err := registry.Add(conn); err != nil { ... }
//	defer registry.Remove(conn.ID())
//
//	return stream.Serve(w, r)
func NewSSEStream(opts ...SSEOption) *SSEStream {
	s := &SSEStream{
		buf:       make(chan Message, DefaultConfig().SendBuffer),
		done:      make(chan struct{}),
		keepAlive: DefaultConfig().KeepAliveInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send enqueues a message for the stream. Returns ErrConnectionClosed after
// Close and ErrBufferFull when the consumer cannot keep up.
func (s *SSEStream) Send(ctx context.Context, msg Message) error {
	if s.closed.Load() {
		return ErrConnectionClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrConnectionClosed
	case s.buf <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Alive reports whether the stream is still serving.
func (s *SSEStream) Alive() bool {
	return !s.closed.Load()
}

// Close stops the stream; a running Serve loop exits. Idempotent.
func (s *SSEStream) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}

// Serve writes queued messages to w as SSE frames until the request ends or
// the stream is closed. It owns the wire framing: one "event:" line, one
// "data:" line per message, blank-line terminated, with periodic keep-alive
// comments in between.
func (s *SSEStream) Serve(w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		s.Close()
		return fmt.Errorf("failed to write connection preamble: %w", err)
	}
	flusher.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()
	defer s.Close()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-s.done:
			return nil
		case msg := <-s.buf:
			if err := msg.WriteSSE(w); err != nil {
				return err
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return fmt.Errorf("failed to write keep-alive: %w", err)
			}
			flusher.Flush()
		}
	}
}
