package storage

import "errors"

// ErrInvalidKey is returned when a key or tab ID is empty.
var ErrInvalidKey = errors.New("invalid storage key")
