package domain

import "errors"

var (
	// ErrNoDisplayRootResolver is returned when a session requests a
	// per-display hint but the coordinator was built without a resolver.
	// This is a wiring bug in the caller, not a runtime condition.
	ErrNoDisplayRootResolver = errors.New("per-display hints require a display root resolver")
	// ErrNoLoadHintChannel is returned when a session requests an ADPF
	// boost while no load-hint channel is configured.
	ErrNoLoadHintChannel = errors.New("adpf hints require a load-hint channel")
	// ErrSinkUnavailable is returned by sink commits when the backing
	// transport is down.
	ErrSinkUnavailable = errors.New("display hint sink unavailable")
)
