package a2ui

import "errors"

var (
	// ErrUnknownMessageType is returned when decoding a message whose type tag
	// is not recognized. Callers are expected to log and skip the message so
	// that new message kinds degrade gracefully on old consumers.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrMissingSurfaceID is returned when a decoded message has no surface id.
	ErrMissingSurfaceID = errors.New("missing surface id")

	// ErrInvalidPropValue is returned when a property value does not match any
	// of the four PropValue shapes.
	ErrInvalidPropValue = errors.New("invalid prop value")
)
