package domain

// DisplayRootResolver resolves the compositor surface root for a display.
// A display may momentarily have no root while it is being torn down;
// callers must treat absence as a normal condition, not an error.
type DisplayRootResolver interface {
	RootForDisplay(id DisplayID) (RootHandle, bool)
}

// DisplayHintSink receives display-side hint mutations. Mutations queue
// inside the sink until Commit, which applies everything queued since the
// last Commit as one atomic batch.
type DisplayHintSink interface {
	BeginEarlyWakeup()
	EndEarlyWakeup()
	// SetFrameRateOverride overrides (or restores) child-controlled frame
	// rate selection on the given display root.
	SetFrameRateOverride(root RootHandle, overridden bool)
	Commit() error
}

// LoadHintChannel carries CPU/GPU load hints to the platform power
// service. Sends are fire-and-forget from the coordinator's point of
// view; errors are reported for logging only.
type LoadHintChannel interface {
	SendHint(hint LoadHint) error
}

// LoadHintSource yields the current load-hint channel. The channel is
// hot-swappable by the owning process, so consumers must resolve it
// through the source on every use and never cache the result.
// Current returns nil when no channel is configured.
type LoadHintSource interface {
	Current() LoadHintChannel
}

// Tracer emits diagnostic trace marks. All methods are best-effort:
// implementations swallow failures and must never block meaningfully.
type Tracer interface {
	BeginAsync(label string, token int32)
	EndAsync(label string, token int32)
	Instant(label string)
}

// NopTracer discards all trace marks.
type NopTracer struct{}

func (NopTracer) BeginAsync(string, int32) {}
func (NopTracer) EndAsync(string, int32)   {}
func (NopTracer) Instant(string)           {}
