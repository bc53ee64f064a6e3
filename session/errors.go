package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by Send outside the Open state
	ErrNotConnected = errors.New("WebSocket not connected")

	// ErrSendQueueFull is returned when outbound frames pile up faster than they are written
	ErrSendQueueFull = errors.New("send queue full")
)

// TransportError is a terminal failure of the session's transport
type TransportError struct {
	Op  string // "dial", "read" or "write"
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("websocket %s failed", e.Op)
	}
	return fmt.Sprintf("websocket %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
