package push

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/gamekit/pkg/logger"
)

// ConnectionRegistry owns the set of live push connections, indexed by
// connection id and by owning user. It is safe for concurrent use.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	byUser map[string]map[string]*Connection

	log *slog.Logger
}

// ConnectionRegistryOption configures a ConnectionRegistry.
type ConnectionRegistryOption func(*ConnectionRegistry)

// WithConnectionLogger configures structured logging for registry operations.
// Logging is disabled by default.
func WithConnectionLogger(log *slog.Logger) ConnectionRegistryOption {
	return func(r *ConnectionRegistry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewConnectionRegistry creates an empty connection registry.
func NewConnectionRegistry(opts ...ConnectionRegistryOption) *ConnectionRegistry {
	r := &ConnectionRegistry{
		conns:  make(map[string]*Connection),
		byUser: make(map[string]map[string]*Connection),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add registers a connection. Connections declaring an owner user are also
// indexed under that user for GetByUser lookups.
func (r *ConnectionRegistry) Add(conn *Connection) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[conn.id]; exists {
		return ErrConnectionExists
	}

	r.conns[conn.id] = conn
	if conn.userID != "" {
		userConns, ok := r.byUser[conn.userID]
		if !ok {
			userConns = make(map[string]*Connection)
			r.byUser[conn.userID] = userConns
		}
		userConns[conn.id] = conn
	}

	r.log.Debug("connection registered",
		logger.ConnectionID(conn.id),
		slog.String("user_id", conn.userID))

	return nil
}

// Remove unregisters the connection from both indexes and closes its
// sender. Channel memberships held by the connection are left to the
// channel registry's lazy pruning and periodic cleanup. Returns false if
// the id is unknown.
func (r *ConnectionRegistry) Remove(connID string) bool {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
		if conn.userID != "" {
			userConns := r.byUser[conn.userID]
			delete(userConns, connID)
			if len(userConns) == 0 {
				delete(r.byUser, conn.userID)
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	_ = conn.Close()
	r.log.Debug("connection removed", logger.ConnectionID(connID))
	return true
}

// Get returns the connection registered under id.
func (r *ConnectionRegistry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

// GetByUser returns every connection owned by the given user.
func (r *ConnectionRegistry) GetByUser(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userConns := r.byUser[userID]
	conns := make([]*Connection, 0, len(userConns))
	for _, conn := range userConns {
		conns = append(conns, conn)
	}
	return conns
}

// Send attempts delivery to one connection. It returns false when the
// connection is unknown, dead, or the write fails; failed connections are
// unregistered immediately so later broadcasts skip them. Callers prune
// their own references when Send reports false.
func (r *ConnectionRegistry) Send(ctx context.Context, connID string, msg Message) bool {
	conn, ok := r.Get(connID)
	if !ok {
		return false
	}

	if !conn.Alive() {
		r.Remove(connID)
		return false
	}

	if err := conn.send(ctx, msg); err != nil {
		r.log.Debug("send failed, evicting connection",
			logger.ConnectionID(connID),
			logger.Error(err))
		r.Remove(connID)
		return false
	}

	return true
}

// Cleanup evicts every connection whose liveness check fails and returns
// the number evicted. Intended to run periodically, independent of any
// single broadcast.
func (r *ConnectionRegistry) Cleanup() int {
	r.mu.RLock()
	dead := make([]string, 0)
	for id, conn := range r.conns {
		if !conn.Alive() {
			dead = append(dead, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range dead {
		r.Remove(id)
	}

	if len(dead) > 0 {
		r.log.Info("evicted dead connections", logger.Count("evicted", len(dead)))
	}

	return len(dead)
}

// Len returns the number of registered connections.
func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
