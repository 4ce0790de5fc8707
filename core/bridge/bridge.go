package bridge

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/gamekit/core/bus"
	"github.com/dmitrymomot/gamekit/core/game"
	"github.com/dmitrymomot/gamekit/core/push"
	"github.com/dmitrymomot/gamekit/pkg/logger"
)

// DefaultPriority places the bridge after domain handlers (persistence,
// validation) when the bus runs sequentially, so clients are notified about
// state that has already been recorded.
const DefaultPriority = 100

// Broadcastable is the explicit allow-list of event types pushed to
// clients. Events outside this list never reach the transport, no matter
// who publishes them; internal bookkeeping events stay internal.
func Broadcastable() []string {
	return []string{
		game.EventLobbyCreated,
		game.EventLobbyUpdated,
		game.EventLobbyDeleted,
		game.EventLobbyStatusChanged,
		game.EventPlayerJoined,
		game.EventPlayerLeft,
		game.EventGameStarted,
		game.EventGameTurnChanged,
		game.EventGameFinished,
		game.EventUserLoggedIn,
	}
}

// Bridge is the bus handler that converts domain events into transport
// messages and routes them to push channels. Delivery problems are never
// reported as handler failure: a channel with no subscribers is not an
// error condition.
type Bridge struct {
	bus.BaseHandler

	channels *push.ChannelRegistry
	allowed  []string
	priority int
	log      *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger configures structured logging for bridge operations.
// Logging is disabled by default.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// WithBroadcastable replaces the default allow-list of pushed event types.
func WithBroadcastable(eventNames ...string) Option {
	return func(b *Bridge) {
		if len(eventNames) > 0 {
			b.allowed = eventNames
		}
	}
}

// WithBridgePriority overrides the bridge's handler priority.
func WithBridgePriority(priority int) Option {
	return func(b *Bridge) {
		b.priority = priority
	}
}

// New creates a Bridge that broadcasts through the given channel registry.
func New(channels *push.ChannelRegistry, opts ...Option) *Bridge {
	b := &Bridge{
		channels: channels,
		allowed:  Broadcastable(),
		priority: DefaultPriority,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Register subscribes the bridge to every event type on its allow-list and
// returns the combined unsubscribe capability.
func (b *Bridge) Register(eventBus *bus.Bus) bus.UnsubscribeFunc {
	return eventBus.SubscribeToMultiple(b.allowed, b)
}

// Name identifies the bridge in bus stats and logs.
func (b *Bridge) Name() string { return "transport-bridge" }

// Priority runs the bridge after default-priority domain handlers.
func (b *Bridge) Priority() int { return b.priority }

// Match admits only allow-listed event types.
func (b *Bridge) Match(event bus.Event) bool {
	return slices.Contains(b.allowed, event.Name)
}

// Handle serializes the event into a transport message and broadcasts it to
// every derived target channel. It generates no cascade events and returns
// an error only when the event defies serialization entirely, which the
// exhaustive transform with its envelope fallback prevents.
func (b *Bridge) Handle(ctx context.Context, event bus.Event) ([]bus.Event, error) {
	msg, targets := b.transform(event)

	if len(targets) == 0 {
		b.log.DebugContext(ctx, "no target channels for event",
			logger.EventID(event.ID),
			logger.EventName(event.Name))
		return nil, nil
	}

	for _, target := range targets {
		delivered := b.channels.Broadcast(ctx, target, msg)
		b.log.DebugContext(ctx, "event broadcast",
			logger.EventName(event.Name),
			logger.Channel(target),
			logger.Count("delivered", delivered))
	}

	return nil, nil
}
