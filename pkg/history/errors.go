package history

import "errors"

var (
	// ErrInvalidPrice indicates a non-positive observation; no state is mutated.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrEmptyKey indicates a missing product key.
	ErrEmptyKey = errors.New("product key cannot be empty")
	// ErrNotFound indicates that no history exists for the key.
	ErrNotFound = errors.New("no history for product key")
	// ErrCorruptRecord indicates that a persisted record could not be decoded.
	ErrCorruptRecord = errors.New("corrupt history record")
)
