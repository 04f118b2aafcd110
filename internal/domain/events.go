package domain

import "time"

// HintEventKind distinguishes aggregate transitions on the event stream.
type HintEventKind string

const (
	// HintEnabled means a flag's aggregate transitioned 0 -> 1.
	HintEnabled HintEventKind = "enabled"
	// HintDisabled means a flag's aggregate transitioned 1 -> 0.
	HintDisabled HintEventKind = "disabled"
)

// HintEvent describes one aggregate flag transition. Events are emitted
// only on edges, never for sessions that join or leave an already-active
// aggregate.
type HintEvent struct {
	Kind    HintEventKind `json:"kind"`
	Flag    HintFlags     `json:"flag"`
	Display DisplayID     `json:"display"`
	Reason  string        `json:"reason"`
	At      time.Time     `json:"at"`
}

// EventPublisher receives aggregate transitions for operational
// observers. Publishing is best-effort; implementations must not block
// the coordinator.
type EventPublisher interface {
	PublishHintEvent(event HintEvent)
}
