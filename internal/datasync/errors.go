package datasync

import "errors"

var (
	// ErrQueueClosed indicates a mutation submitted after shutdown began.
	ErrQueueClosed = errors.New("operation queue is closed")
	// ErrMissingID indicates a mutation without a record identifier.
	ErrMissingID = errors.New("record identifier is required")
	// ErrNotFound indicates an update against an unknown identifier.
	ErrNotFound = errors.New("record not found")
	// ErrNotConnected indicates a live subscription attempt without an
	// authenticated backend.
	ErrNotConnected = errors.New("remote backend is not connected")
)
