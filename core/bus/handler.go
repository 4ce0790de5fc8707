package bus

import (
	"context"
	"time"
)

// Handler consumes events published through the Bus. Implementations are
// registered with Subscribe for one or more event type names.
//
// Handle may return newly generated events; the bus publishes them through
// itself after the current batch completes (cascading). OnSuccess and
// OnError are notification hooks invoked after the bus has recorded the
// outcome; embed BaseHandler to inherit no-op defaults instead of
// implementing every method.
type Handler interface {
	// Name identifies the handler in stats and logs.
	Name() string

	// Priority orders handlers within one event's batch; 0 is highest.
	Priority() int

	// Match is the handler's predicate. Handlers are only executed for
	// events of a subscribed type for which Match returns true.
	Match(event Event) bool

	// Timeout bounds a single invocation. Zero means the bus default.
	Timeout() time.Duration

	// Handle processes the event and optionally returns generated events.
	Handle(ctx context.Context, event Event) ([]Event, error)

	// OnSuccess is called after a successful invocation with the events it generated.
	OnSuccess(ctx context.Context, event Event, generated []Event)

	// OnError is called after a failed invocation with the recorded error.
	OnError(ctx context.Context, event Event, err error)
}

// HandlerFunc is the function signature for closure-based handlers.
type HandlerFunc func(ctx context.Context, event Event) ([]Event, error)

// BaseHandler provides no-op defaults for the optional parts of Handler.
// Embed it and implement Name and Handle:
//
//	type auditHandler struct {
//		bus.BaseHandler
//	}
//
//	func (auditHandler) Name() string { return "audit" }
//	func (auditHandler) Handle(ctx context.Context, evt bus.Event) ([]bus.Event, error) { ... }
type BaseHandler struct{}

// Priority returns 0, the highest priority.
func (BaseHandler) Priority() int { return 0 }

// Match accepts every event.
func (BaseHandler) Match(Event) bool { return true }

// Timeout returns 0, deferring to the bus-wide default.
func (BaseHandler) Timeout() time.Duration { return 0 }

// OnSuccess is a no-op.
func (BaseHandler) OnSuccess(context.Context, Event, []Event) {}

// OnError is a no-op.
func (BaseHandler) OnError(context.Context, Event, error) {}

// funcHandler adapts a HandlerFunc plus options into a Handler.
type funcHandler struct {
	name      string
	priority  int
	timeout   time.Duration
	match     func(Event) bool
	fn        HandlerFunc
	onSuccess func(context.Context, Event, []Event)
	onError   func(context.Context, Event, error)
}

// HandlerOption configures a handler built with NewHandlerFunc.
type HandlerOption func(*funcHandler)

// WithPriority sets the handler's priority; 0 (the default) is highest.
func WithPriority(priority int) HandlerOption {
	return func(h *funcHandler) {
		h.priority = priority
	}
}

// WithMatch sets the handler's predicate. Events failing the predicate are
// skipped without affecting the handler's stats.
func WithMatch(match func(Event) bool) HandlerOption {
	return func(h *funcHandler) {
		if match != nil {
			h.match = match
		}
	}
}

// WithTimeout overrides the bus-wide handler timeout for this handler.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *funcHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithOnSuccess sets the success hook.
func WithOnSuccess(fn func(ctx context.Context, event Event, generated []Event)) HandlerOption {
	return func(h *funcHandler) {
		h.onSuccess = fn
	}
}

// WithOnError sets the error hook.
func WithOnError(fn func(ctx context.Context, event Event, err error)) HandlerOption {
	return func(h *funcHandler) {
		h.onError = fn
	}
}

// NewHandlerFunc builds a Handler from a closure.
//
// Example:
//
//	handler := bus.NewHandlerFunc("notify-webhook", notifyFn,
//		bus.WithPriority(5),
//		bus.WithTimeout(2*time.Second),
//	)
//	unsubscribe := eventBus.Subscribe("lobby.created", handler)
func NewHandlerFunc(name string, fn HandlerFunc, opts ...HandlerOption) Handler {
	h := &funcHandler{
		name:  name,
		match: func(Event) bool { return true },
		fn:    fn,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *funcHandler) Name() string           { return h.name }
func (h *funcHandler) Priority() int          { return h.priority }
func (h *funcHandler) Match(event Event) bool { return h.match(event) }
func (h *funcHandler) Timeout() time.Duration { return h.timeout }

func (h *funcHandler) Handle(ctx context.Context, event Event) ([]Event, error) {
	return h.fn(ctx, event)
}

func (h *funcHandler) OnSuccess(ctx context.Context, event Event, generated []Event) {
	if h.onSuccess != nil {
		h.onSuccess(ctx, event, generated)
	}
}

func (h *funcHandler) OnError(ctx context.Context, event Event, err error) {
	if h.onError != nil {
		h.onError(ctx, event, err)
	}
}
