// Package hinter implements the performance-hint session coordinator.
//
// The coordinator owns the set of active boost sessions and keeps the
// externally visible hint state equal to the per-scope union of flags
// across those sessions. On every start and close it recomputes the
// aggregates and applies only the per-bit edges to the display sink and
// the load-hint channel, so overlapping sessions sharing a flag never
// re-apply or prematurely retract a hint.
package hinter
