package push

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSSender is a Sender backed by an upgraded gorilla/websocket connection.
// The first write error marks the sender dead; the registry prunes it on
// the next send or cleanup sweep.
type WSSender struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	dead   atomic.Bool
	closed atomic.Bool
}

// WSOption configures a WSSender.
type WSOption func(*WSSender)

// WithWSWriteTimeout bounds each message write. Default is 5s.
func WithWSWriteTimeout(d time.Duration) WSOption {
	return func(s *WSSender) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// NewWSSender wraps an already-upgraded WebSocket connection. The caller
// keeps ownership of the read side (subscribe/unsubscribe requests, pong
// handling); this sender only writes.
func NewWSSender(conn *websocket.Conn, opts ...WSOption) *WSSender {
	s := &WSSender{
		conn:         conn,
		writeTimeout: DefaultConfig().WriteTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send writes the message as one JSON text frame.
func (s *WSSender) Send(ctx context.Context, msg Message) error {
	if s.closed.Load() || s.dead.Load() {
		return ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// gorilla/websocket allows one concurrent writer only
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.dead.Store(true)
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.dead.Store(true)
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Alive reports whether the socket has seen no write failures and has not
// been closed.
func (s *WSSender) Alive() bool {
	return !s.dead.Load() && !s.closed.Load()
}

// Close sends a close frame on a best-effort basis and closes the socket.
// Idempotent.
func (s *WSSender) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(s.writeTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return s.conn.Close()
}
