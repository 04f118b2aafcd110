package app

import "errors"

// ErrSessionNotFound is returned when closing an unknown or already
// closed session ID.
var ErrSessionNotFound = errors.New("session not found")
