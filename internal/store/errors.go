package store

import "errors"

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("store: not found")
