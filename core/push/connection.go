package push

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender abstracts the wire behind a connection: WebSocket, SSE stream, or
// a test double. Send must be safe for concurrent use.
type Sender interface {
	// Send delivers one message. A returned error marks the connection as
	// undeliverable and triggers pruning by the caller.
	Send(ctx context.Context, msg Message) error

	// Alive reports whether the underlying wire is still usable.
	Alive() bool

	// Close releases the underlying wire. Safe to call more than once.
	Close() error
}

// Connection is a long-lived client session capable of receiving pushed
// messages. The ConnectionRegistry exclusively owns Connection objects;
// channel registries hold only connection ids.
type Connection struct {
	id     string
	userID string
	sender Sender

	mu           sync.RWMutex
	channels     map[string]struct{}
	lastActivity time.Time
}

// NewConnection wraps a sender into a registered-able connection. An empty
// id is replaced with a generated UUID. userID may be empty for anonymous
// sessions; non-empty values enable per-user lookup.
func NewConnection(id, userID string, sender Sender) *Connection {
	if id == "" {
		id = uuid.New().String()
	}
	return &Connection{
		id:           id,
		userID:       userID,
		sender:       sender,
		channels:     make(map[string]struct{}),
		lastActivity: time.Now(),
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the owning user's id, or empty for anonymous connections.
func (c *Connection) UserID() string { return c.userID }

// Alive reports whether the underlying sender can still deliver.
func (c *Connection) Alive() bool { return c.sender.Alive() }

// LastActivity returns the time of the last successful send or touch.
func (c *Connection) LastActivity() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivity
}

// Channels returns the names of the channels this connection is currently
// subscribed to. This set is the source of truth for what the connection
// receives and is kept in sync with the channel registry.
func (c *Connection) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	return names
}

// Close releases the underlying sender.
func (c *Connection) Close() error {
	return c.sender.Close()
}

func (c *Connection) send(ctx context.Context, msg Message) error {
	if err := c.sender.Send(ctx, msg); err != nil {
		return err
	}
	c.touch()
	return nil
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Connection) addChannel(name string) {
	c.mu.Lock()
	c.channels[name] = struct{}{}
	c.mu.Unlock()
}

func (c *Connection) removeChannel(name string) {
	c.mu.Lock()
	delete(c.channels, name)
	c.mu.Unlock()
}
