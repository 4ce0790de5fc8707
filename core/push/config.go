package push

import "time"

// Config holds tuning knobs for the push transport layer.
type Config struct {
	// CleanupInterval is how often the janitor sweeps dead connections and
	// recomputes channel memberships.
	CleanupInterval time.Duration `env:"PUSH_CLEANUP_INTERVAL" envDefault:"30s"`

	// SendBuffer is the per-connection outbound buffer for stream senders.
	// A connection whose buffer overflows is treated as dead.
	SendBuffer int `env:"PUSH_SEND_BUFFER" envDefault:"64"`

	// WriteTimeout bounds a single write on socket-backed senders.
	WriteTimeout time.Duration `env:"PUSH_WRITE_TIMEOUT" envDefault:"5s"`

	// KeepAliveInterval is how often stream senders emit keep-alive comments
	// when no messages flow.
	KeepAliveInterval time.Duration `env:"PUSH_KEEPALIVE_INTERVAL" envDefault:"30s"`
}

// DefaultConfig returns the defaults used when no configuration is loaded.
func DefaultConfig() Config {
	return Config{
		CleanupInterval:   30 * time.Second,
		SendBuffer:        64,
		WriteTimeout:      5 * time.Second,
		KeepAliveInterval: 30 * time.Second,
	}
}
