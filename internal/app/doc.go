// Package app is the application layer: it provides the external
// synchronization the coordinator requires and the orchestration around
// it (handle tracking for the debug API, the session leak monitor).
package app
