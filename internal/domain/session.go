package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionInfo is a read-only snapshot of an active hint session, used for
// dumps and the debug API.
type SessionInfo struct {
	ID         uuid.UUID `json:"id"`
	Reason     string    `json:"reason"`
	Flags      HintFlags `json:"flags"`
	FlagNames  string    `json:"flag_names"`
	Display    DisplayID `json:"display"`
	TraceToken int32     `json:"trace_token"`
	StartedAt  time.Time `json:"started_at"`
	// Inert marks the no-op variant handed out when a display root was
	// unresolvable; inert sessions never appear in dumps.
	Inert bool `json:"inert,omitempty"`
}
