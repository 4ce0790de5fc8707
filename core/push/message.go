package push

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Message is the serialized transport envelope delivered to connections.
// Channel is stamped by the channel registry at broadcast time.
type Message struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a transport message with a generated ID and timestamp.
func NewMessage(msgType string, payload any) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// WriteSSE writes the message as one Server-Sent Events frame: an
// "event:" line carrying the message type, a "data:" line with the JSON
// body, and a blank terminator line.
func (m Message) WriteSSE(w io.Writer) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", m.ID, err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", m.Type, data); err != nil {
		return fmt.Errorf("failed to write sse frame: %w", err)
	}
	return nil
}
