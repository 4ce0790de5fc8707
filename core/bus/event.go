package bus

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Payload is the capability every domain event payload implements.
// The returned type name is the routing key handlers subscribe to,
// e.g. "lobby.player.joined".
type Payload interface {
	EventType() string
}

// Event represents a domain event with metadata and a typed payload.
// Events are immutable once published; the bus never mutates them.
type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CorrelationID string    `json:"correlation_id"`
	CausationID   string    `json:"causation_id,omitempty"`
	RetryCount    int       `json:"retry_count"`
	Tags          []string  `json:"tags,omitempty"`
	Payload       Payload   `json:"payload"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEvent creates a new Event with an auto-generated ID and timestamp.
// The event name comes from the payload's EventType. CorrelationID defaults
// to the event's own ID so a causal chain started by this event can be traced.
//
// Example:
//
//	evt := bus.NewEvent(game.PlayerJoined{LobbyID: "L1", Player: p})
//	// evt.Name == "lobby.player.joined"
func NewEvent(payload Payload) Event {
	id := uuid.New().String()
	return Event{
		ID:            id,
		Name:          payload.EventType(),
		CorrelationID: id,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

// NewChildEvent creates an event caused by parent. The parent's
// CorrelationID is propagated unchanged and CausationID is set to the
// parent's ID, linking the whole cascade to its root cause.
func NewChildEvent(parent Event, payload Payload) Event {
	evt := NewEvent(payload)
	evt.CorrelationID = parent.CorrelationID
	evt.CausationID = parent.ID
	return evt
}

// WithTags returns a copy of the event with the given tags appended.
func (e Event) WithTags(tags ...string) Event {
	e.Tags = append(slices.Clone(e.Tags), tags...)
	return e
}

// HasTag reports whether the event carries the given tag.
func (e Event) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// correlate fills in missing causal metadata on a cascade-generated event.
// Events built with NewChildEvent pass through unchanged.
func correlate(parent, child Event) Event {
	if child.CorrelationID == "" || child.CorrelationID == child.ID {
		child.CorrelationID = parent.CorrelationID
	}
	if child.CausationID == "" {
		child.CausationID = parent.ID
	}
	return child
}
