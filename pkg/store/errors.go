package store

import "errors"

var (
	// ErrPersistence indicates that a store operation failed. Callers must
	// assume no partial write happened.
	ErrPersistence = errors.New("persistence failure")
	// ErrStoreClosed indicates use after Close.
	ErrStoreClosed = errors.New("store is closed")
)
