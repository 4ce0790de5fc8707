package push

import "errors"

var (
	// ErrNilConnection is returned when registering a nil connection.
	ErrNilConnection = errors.New("connection is nil")

	// ErrConnectionExists is returned when a connection id is already registered.
	ErrConnectionExists = errors.New("connection already registered")

	// ErrUnknownConnection is returned when an operation references an unregistered connection id.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrConnectionDead is returned when an operation requires a live connection.
	ErrConnectionDead = errors.New("connection is not alive")

	// ErrConnectionClosed is returned by senders after Close.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrBufferFull is returned when a connection's outbound buffer is full.
	// A full buffer is treated as a failed send: the consumer is too slow
	// to keep its subscription.
	ErrBufferFull = errors.New("send buffer is full")

	// ErrEmptyChannelName is returned when a channel operation is given an empty name.
	ErrEmptyChannelName = errors.New("channel name is empty")

	// ErrHealthcheckFailed is returned when the push health check fails.
	ErrHealthcheckFailed = errors.New("push healthcheck failed")

	// ErrJanitorNotRunning indicates the cleanup loop is not active.
	ErrJanitorNotRunning = errors.New("janitor is not running")
)
