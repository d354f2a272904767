package web

import "errors"

var (
	// ErrUnknownItem is returned when a connection names no registered item.
	ErrUnknownItem = errors.New("web: unknown item")

	// ErrMalformedMessage is returned for inbound frames that are not JSON
	// objects with a type.
	ErrMalformedMessage = errors.New("web: malformed message")

	// ErrServerClosed is returned by Serve after Shutdown.
	ErrServerClosed = errors.New("web: server closed")
)
