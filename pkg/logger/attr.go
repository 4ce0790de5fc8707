package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit
// nil checks, following the principle of making zero values useful.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for an elapsed duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component tags a log record with the emitting component's name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// EventID creates an attribute for an event identifier.
func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

// EventName creates an attribute for an event type name.
func EventName(name string) slog.Attr {
	return slog.String("event_name", name)
}

// Channel creates an attribute for a broadcast channel name.
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// ConnectionID creates an attribute for a push connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String("connection_id", id)
}

// Count creates an integer attribute under the given key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}
