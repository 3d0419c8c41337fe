package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrStorageUnavailable is returned when the backing store cannot complete
	// a read or write. Failures are terminal for the attempted operation.
	ErrStorageUnavailable = errors.New("persistence: storage unavailable")
)
