package hinter

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/metrics"
)

// Hinter coordinates performance-boost sessions across global and
// per-display scopes.
//
// Hinter is designed for single-threaded, externally synchronized use:
// all calls (StartSession, Session.Close, Dump) must come from one
// logical thread, or be guarded by the caller's mutex. No internal
// locking is performed. The injected resolver and load-hint source may
// themselves be shared with other threads; they are only queried, never
// mutated.
type Hinter struct {
	sink      domain.DisplayHintSink
	roots     domain.DisplayRootResolver
	loadHints domain.LoadHintSource
	tracer    domain.Tracer
	events    domain.EventPublisher
	clock     clockwork.Clock

	// Insertion order is kept for dump output only; aggregates are
	// order-independent.
	sessions []*Session
}

// New creates a coordinator writing to the given display sink.
//
// roots may be nil if no per-display hint is ever requested; loadHints
// may be nil if HintADPFBoost is never requested. tracer and events may
// be nil; clock may be nil to use the real clock.
func New(sink domain.DisplayHintSink, roots domain.DisplayRootResolver, loadHints domain.LoadHintSource, tracer domain.Tracer, events domain.EventPublisher, clock clockwork.Clock) *Hinter {
	if tracer == nil {
		tracer = domain.NopTracer{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Hinter{
		sink:      sink,
		roots:     roots,
		loadHints: loadHints,
		tracer:    tracer,
		events:    events,
		clock:     clock,
	}
}

// Session is a live request for one or more performance hints. Sessions
// are immutable after creation; the only lifecycle operation is Close.
type Session struct {
	owner      *Hinter
	id         uuid.UUID
	flags      domain.HintFlags
	display    domain.DisplayID
	reason     string
	traceToken int32
	startedAt  time.Time

	// inert marks the no-op variant handed out when a per-display
	// request raced with display teardown, or when no flags were
	// requested. Inert sessions are never registered and Close does
	// nothing.
	inert  bool
	closed bool
}

// ID returns the session's handle identity.
func (s *Session) ID() uuid.UUID { return s.id }

// Flags returns the requested hint flags. Inert sessions report zero.
func (s *Session) Flags() domain.HintFlags {
	if s.inert {
		return 0
	}
	return s.flags
}

// Inert reports whether this session is the no-op variant.
func (s *Session) Inert() bool { return s.inert }

// Info returns a read-only snapshot for dumps.
func (s *Session) Info() domain.SessionInfo {
	return domain.SessionInfo{
		ID:         s.id,
		Reason:     s.reason,
		Flags:      s.Flags(),
		FlagNames:  s.Flags().String(),
		Display:    s.display,
		TraceToken: s.traceToken,
		StartedAt:  s.startedAt,
		Inert:      s.inert,
	}
}

// Close ends the session. It is idempotent, never panics, and is a no-op
// on inert sessions, so it is safe to call from cleanup paths
// unconditionally and more than once.
func (s *Session) Close() {
	if s == nil || s.inert || s.closed {
		return
	}
	s.closed = true
	s.owner.unregister(s)
}

// StartSession registers a session requesting the given hints.
//
// display is the scope for per-display hints and should be
// domain.GlobalDisplay when flags contains none. reason is a diagnostic
// label carried into traces and dumps.
//
// Requesting a per-display hint without a resolver, or an ADPF boost
// without a configured load-hint channel, is a wiring bug and fails with
// the corresponding sentinel error. A per-display request whose display
// root cannot be resolved right now does not fail: display teardown races
// with hint requests, so the caller gets an inert session back instead.
func (h *Hinter) StartSession(flags domain.HintFlags, display domain.DisplayID, reason string) (*Session, error) {
	if flags&domain.HintPerDisplay != 0 && h.roots == nil {
		return nil, domain.ErrNoDisplayRootResolver
	}
	if flags&domain.HintADPFBoost != 0 && h.currentChannel() == nil {
		return nil, domain.ErrNoLoadHintChannel
	}
	if flags&domain.HintPerDisplay != 0 {
		if _, ok := h.roots.RootForDisplay(display); !ok {
			slog.Debug("No display root, handing out inert session", "display", display, "reason", reason)
			h.tracer.Instant(fmt.Sprintf("PerfHint-NoDisplayRoot: %d", display))
			metrics.SessionsDegraded.Inc()
			return h.newInertSession(display, reason), nil
		}
	}

	s := &Session{
		owner:      h,
		id:         uuid.New(),
		flags:      flags,
		display:    display,
		reason:     reason,
		traceToken: rand.Int32(),
		startedAt:  h.clock.Now(),
	}
	if flags == 0 {
		s.inert = true
		return s, nil
	}

	h.register(s)
	metrics.SessionsStarted.WithLabelValues(scopeLabel(flags)).Inc()
	metrics.SessionsActive.Set(float64(len(h.sessions)))
	return s, nil
}

func (h *Hinter) newInertSession(display domain.DisplayID, reason string) *Session {
	return &Session{
		id:        uuid.New(),
		display:   display,
		reason:    reason,
		startedAt: h.clock.Now(),
		inert:     true,
	}
}

// register inserts the session and applies the enable edges.
func (h *Hinter) register(s *Session) {
	oldGlobal := h.aggregate(domain.HintGlobal)
	oldDisplay := h.aggregateForDisplay(domain.HintPerDisplay, s.display)
	h.sessions = append(h.sessions, s)
	newGlobal := h.aggregate(domain.HintGlobal)
	newDisplay := h.aggregateForDisplay(domain.HintPerDisplay, s.display)

	dirty := false
	if nowEnabled(oldDisplay, newDisplay, domain.HintFrameRate) {
		if root, ok := h.roots.RootForDisplay(s.display); ok {
			h.sink.SetFrameRateOverride(root, true)
			dirty = true
		}
		h.tracer.BeginAsync("PerfHint-framerate-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintEnabled, domain.HintFrameRate, s)
	}
	if nowEnabled(oldGlobal, newGlobal, domain.HintEarlyWakeup) {
		h.sink.BeginEarlyWakeup()
		dirty = true
		h.tracer.BeginAsync("PerfHint-early_wakeup-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintEnabled, domain.HintEarlyWakeup, s)
	}
	if nowEnabled(oldGlobal, newGlobal, domain.HintADPFBoost) {
		h.sendLoadHint(domain.LoadUp)
		h.tracer.BeginAsync("PerfHint-adpf-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintEnabled, domain.HintADPFBoost, s)
	}
	if dirty {
		h.commit()
	}
}

// unregister removes the session and applies the disable edges,
// mirroring register.
func (h *Hinter) unregister(s *Session) {
	oldGlobal := h.aggregate(domain.HintGlobal)
	oldDisplay := h.aggregateForDisplay(domain.HintPerDisplay, s.display)
	idx := slices.Index(h.sessions, s)
	if idx < 0 {
		return
	}
	h.sessions = slices.Delete(h.sessions, idx, idx+1)
	newGlobal := h.aggregate(domain.HintGlobal)
	newDisplay := h.aggregateForDisplay(domain.HintPerDisplay, s.display)

	dirty := false
	if nowDisabled(oldDisplay, newDisplay, domain.HintFrameRate) {
		// The display may have been torn down while the session was
		// alive; there is nothing to restore on a gone root.
		if root, ok := h.roots.RootForDisplay(s.display); ok {
			h.sink.SetFrameRateOverride(root, false)
			dirty = true
		}
		h.tracer.EndAsync("PerfHint-framerate-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintDisabled, domain.HintFrameRate, s)
	}
	if nowDisabled(oldGlobal, newGlobal, domain.HintEarlyWakeup) {
		h.sink.EndEarlyWakeup()
		dirty = true
		h.tracer.EndAsync("PerfHint-early_wakeup-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintDisabled, domain.HintEarlyWakeup, s)
	}
	if nowDisabled(oldGlobal, newGlobal, domain.HintADPFBoost) {
		h.sendLoadHint(domain.LoadReset)
		h.tracer.EndAsync("PerfHint-adpf-"+s.reason, s.traceToken)
		h.noteTransition(domain.HintDisabled, domain.HintADPFBoost, s)
	}
	if dirty {
		h.commit()
	}
	metrics.SessionsClosed.Inc()
	metrics.SessionsActive.Set(float64(len(h.sessions)))
}

// aggregate returns the union of flags across all sessions, filtered by
// filter.
func (h *Hinter) aggregate(filter domain.HintFlags) domain.HintFlags {
	var flags domain.HintFlags
	for _, s := range h.sessions {
		flags |= s.flags & filter
	}
	return flags
}

// aggregateForDisplay is aggregate restricted to sessions scoped to the
// given display.
func (h *Hinter) aggregateForDisplay(filter domain.HintFlags, display domain.DisplayID) domain.HintFlags {
	var flags domain.HintFlags
	for _, s := range h.sessions {
		if s.display == display {
			flags |= s.flags & filter
		}
	}
	return flags
}

// nowEnabled reports whether check was previously clear and is now set.
func nowEnabled(oldFlags, newFlags, check domain.HintFlags) bool {
	return oldFlags&check == 0 && newFlags&check != 0
}

// nowDisabled reports whether check was previously set and is now clear.
func nowDisabled(oldFlags, newFlags, check domain.HintFlags) bool {
	return oldFlags&check != 0 && newFlags&check == 0
}

func (h *Hinter) commit() {
	metrics.Commits.Inc()
	if err := h.sink.Commit(); err != nil {
		metrics.CommitErrors.Inc()
		slog.Warn("Display hint commit failed", "error", err)
	}
}

// sendLoadHint resolves the channel at call time; it may have been
// swapped or removed since the session started.
func (h *Hinter) sendLoadHint(hint domain.LoadHint) {
	ch := h.currentChannel()
	if ch == nil {
		slog.Warn("Load-hint channel gone, dropping hint", "hint", hint.String())
		return
	}
	if err := ch.SendHint(hint); err != nil {
		metrics.LoadHintErrors.Inc()
		slog.Warn("Load-hint send failed", "hint", hint.String(), "error", err)
	}
}

func (h *Hinter) currentChannel() domain.LoadHintChannel {
	if h.loadHints == nil {
		return nil
	}
	return h.loadHints.Current()
}

func (h *Hinter) noteTransition(kind domain.HintEventKind, flag domain.HintFlags, s *Session) {
	metrics.Transitions.WithLabelValues(flag.String(), string(kind)).Inc()
	if h.events != nil {
		h.events.PublishHintEvent(domain.HintEvent{
			Kind:    kind,
			Flag:    flag,
			Display: s.display,
			Reason:  s.reason,
			At:      h.clock.Now(),
		})
	}
}

func scopeLabel(flags domain.HintFlags) string {
	if flags&domain.HintPerDisplay != 0 {
		return "display"
	}
	return "global"
}

// Dump returns snapshots of all active sessions in insertion order.
func (h *Hinter) Dump() []domain.SessionInfo {
	infos := make([]domain.SessionInfo, 0, len(h.sessions))
	for _, s := range h.sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// DumpTo writes a human-readable session listing, for debug endpoints
// and signal handlers.
func (h *Hinter) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "Active sessions (%d):\n", len(h.sessions))
	for _, s := range h.sessions {
		fmt.Fprintf(w, "  reason=%s flags=%s display=%d started=%s\n",
			s.reason, s.flags.String(), s.display, s.startedAt.Format(time.RFC3339))
	}
}
