package bus

import "time"

// Config controls bus-wide execution policy. Load it from the environment
// with the config package, or rely on DefaultConfig and override specific
// values with options.
type Config struct {
	// HandlerTimeout bounds each handler invocation unless the handler
	// declares its own timeout.
	HandlerTimeout time.Duration `env:"EVENT_BUS_HANDLER_TIMEOUT" envDefault:"10s"`

	// Sequential runs a batch's handlers one at a time in priority order
	// instead of concurrently.
	Sequential bool `env:"EVENT_BUS_SEQUENTIAL" envDefault:"false"`

	// MaxCascadeDepth caps how many generations of handler-generated events
	// are published before the bus drops the chain. Guards against handlers
	// that directly or transitively re-trigger themselves.
	MaxCascadeDepth int `env:"EVENT_BUS_MAX_CASCADE_DEPTH" envDefault:"10"`

	// MaxRetryAttempts is the number of retries after a failed invocation.
	// Zero disables retries. Timeouts and context cancellation are never retried.
	MaxRetryAttempts int `env:"EVENT_BUS_MAX_RETRY_ATTEMPTS" envDefault:"0"`

	// RetryDelay is the initial backoff between retry attempts; it doubles
	// after every failed attempt.
	RetryDelay time.Duration `env:"EVENT_BUS_RETRY_DELAY" envDefault:"100ms"`
}

// DefaultConfig returns the configuration used when no options are given:
// parallel execution, 10s handler timeout, cascade depth 10, no retries.
func DefaultConfig() Config {
	return Config{
		HandlerTimeout:  10 * time.Second,
		MaxCascadeDepth: 10,
		RetryDelay:      100 * time.Millisecond,
	}
}

func (c Config) normalized() Config {
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 10 * time.Second
	}
	if c.MaxCascadeDepth <= 0 {
		c.MaxCascadeDepth = 10
	}
	if c.MaxRetryAttempts < 0 {
		c.MaxRetryAttempts = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 100 * time.Millisecond
	}
	return c
}
