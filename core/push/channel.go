package push

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/gamekit/pkg/logger"
)

// ChannelRegistry groups connections into named broadcast channels. It
// holds only connection ids, never connections: the ConnectionRegistry
// remains the single owner, and every membership is validated against it
// before delivery.
//
// Channels exist only while they have members. The registry creates them
// lazily on first subscribe and deletes them as soon as the last member
// leaves, whether by explicit unsubscribe or by failed-send pruning.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]map[string]struct{}

	conns *ConnectionRegistry
	log   *slog.Logger
}

// ChannelRegistryOption configures a ChannelRegistry.
type ChannelRegistryOption func(*ChannelRegistry)

// WithChannelLogger configures structured logging for channel operations.
// Logging is disabled by default.
func WithChannelLogger(log *slog.Logger) ChannelRegistryOption {
	return func(r *ChannelRegistry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewChannelRegistry creates a channel registry backed by the given
// connection registry.
func NewChannelRegistry(conns *ConnectionRegistry, opts ...ChannelRegistryOption) *ChannelRegistry {
	r := &ChannelRegistry{
		channels: make(map[string]map[string]struct{}),
		conns:    conns,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create ensures a channel exists. Idempotent; mostly useful for
// pre-warming fixed global channels, since Subscribe creates lazily anyway.
func (r *ChannelRegistry) Create(name string) error {
	if name == "" {
		return ErrEmptyChannelName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[name]; !ok {
		r.channels[name] = make(map[string]struct{})
	}
	return nil
}

// Subscribe adds a connection to a channel, creating the channel if needed.
// The membership is mirrored into the connection's own channel set so both
// registries stay consistent from the caller's perspective. Fails when the
// connection is unknown or not alive.
func (r *ChannelRegistry) Subscribe(name, connID string) error {
	if name == "" {
		return ErrEmptyChannelName
	}

	conn, ok := r.conns.Get(connID)
	if !ok {
		return ErrUnknownConnection
	}
	if !conn.Alive() {
		return ErrConnectionDead
	}

	r.mu.Lock()
	members, ok := r.channels[name]
	if !ok {
		members = make(map[string]struct{})
		r.channels[name] = members
	}
	members[connID] = struct{}{}
	r.mu.Unlock()

	conn.addChannel(name)

	r.log.Debug("subscribed to channel",
		logger.Channel(name),
		logger.ConnectionID(connID))

	return nil
}

// Unsubscribe removes the membership both ways and deletes the channel if
// it becomes empty. Returns false if the membership did not exist.
func (r *ChannelRegistry) Unsubscribe(name, connID string) bool {
	r.mu.Lock()
	members, ok := r.channels[name]
	if ok {
		_, ok = members[connID]
		if ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.channels, name)
			}
		}
	}
	r.mu.Unlock()

	if conn, found := r.conns.Get(connID); found {
		conn.removeChannel(name)
	}

	return ok
}

// Broadcast delivers the message to every member of the channel. Sends run
// concurrently since each is independent I/O; members whose send fails are
// pruned from the channel, and the channel is deleted if that empties it.
// Broadcasting to a channel nobody subscribed to is a benign no-op.
//
// Each alive member receives the message at most once per call; delivery
// order across members is not defined.
func (r *ChannelRegistry) Broadcast(ctx context.Context, name string, msg Message) int {
	r.mu.RLock()
	members, ok := r.channels[name]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	if !ok || len(ids) == 0 {
		return 0
	}

	msg.Channel = name

	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []string
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if !r.conns.Send(ctx, id, msg) {
				failedMu.Lock()
				failed = append(failed, id)
				failedMu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if len(failed) > 0 {
		r.prune(name, failed)
	}

	delivered := len(ids) - len(failed)
	r.log.Debug("broadcast finished",
		logger.Channel(name),
		logger.Count("delivered", delivered),
		logger.Count("pruned", len(failed)))

	return delivered
}

// Cleanup recomputes every channel's membership by intersecting it with
// currently registered, alive connections, catching members that died
// without a failed send. Channels that end up empty are deleted.
func (r *ChannelRegistry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, members := range r.channels {
		for id := range members {
			conn, ok := r.conns.Get(id)
			if !ok || !conn.Alive() {
				delete(members, id)
			}
		}
		if len(members) == 0 {
			delete(r.channels, name)
		}
	}
}

// Channels returns the names of all channels that currently have members.
func (r *ChannelRegistry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}

// MemberCount returns the number of members in a channel, 0 if it does not exist.
func (r *ChannelRegistry) MemberCount(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[name])
}

// ChannelsOf returns the channels a connection currently belongs to.
func (r *ChannelRegistry) ChannelsOf(connID string) []string {
	conn, ok := r.conns.Get(connID)
	if !ok {
		return nil
	}
	return conn.Channels()
}

// Len returns the number of non-empty channels.
func (r *ChannelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

func (r *ChannelRegistry) prune(name string, connIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[name]
	if !ok {
		return
	}

	for _, id := range connIDs {
		delete(members, id)
	}
	if len(members) == 0 {
		delete(r.channels, name)
	}
}
