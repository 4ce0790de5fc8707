package bus

import "errors"

var (
	// ErrInvalidEvent is returned when a published event has no type name.
	ErrInvalidEvent = errors.New("event has no type name")

	// ErrNilPayload is returned when a published event carries no payload.
	ErrNilPayload = errors.New("event payload is nil")

	// ErrNilHandler is returned when Subscribe is called with a nil handler.
	ErrNilHandler = errors.New("handler is nil")

	// ErrHandlerTimeout marks an execution result whose handler exceeded its timeout.
	ErrHandlerTimeout = errors.New("handler timed out")

	// ErrCascadeDepthExceeded marks generated events dropped past the cascade depth cap.
	ErrCascadeDepthExceeded = errors.New("cascade depth exceeded")

	// ErrHealthcheckFailed is returned when the bus health check fails.
	ErrHealthcheckFailed = errors.New("event bus healthcheck failed")
)
