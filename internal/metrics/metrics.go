package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Coordinator Metrics
var (
	// SessionsStarted tracks started sessions by scope (global/display)
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hinter_sessions_started_total",
			Help: "Total hint sessions started, by scope",
		},
		[]string{"scope"},
	)

	// SessionsClosed tracks closed sessions
	SessionsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_sessions_closed_total",
			Help: "Total hint sessions closed",
		},
	)

	// SessionsActive tracks the number of currently registered sessions
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hinter_sessions_active",
			Help: "Number of currently active hint sessions",
		},
	)

	// SessionsDegraded tracks per-display requests degraded to no-op
	// sessions because the display root was gone
	SessionsDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_sessions_degraded_total",
			Help: "Hint sessions degraded to no-ops due to a missing display root",
		},
	)

	// Transitions tracks aggregate flag edges by hint and direction
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hinter_transitions_total",
			Help: "Aggregate hint flag transitions by hint and direction (enabled/disabled)",
		},
		[]string{"hint", "direction"},
	)

	// Commits tracks display sink transaction commits
	Commits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_commits_total",
			Help: "Display hint sink transaction commits",
		},
	)

	// CommitErrors tracks failed display sink commits
	CommitErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_commit_errors_total",
			Help: "Display hint sink commits that returned an error",
		},
	)

	// LoadHintErrors tracks failed load-hint sends
	LoadHintErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_load_hint_errors_total",
			Help: "Load-hint channel sends that returned an error",
		},
	)

	// TraceFailures tracks trace marker writes that failed
	TraceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_trace_failures_total",
			Help: "Trace marker writes that failed",
		},
	)

	// SessionsLongLived tracks sessions flagged by the leak monitor
	SessionsLongLived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_sessions_long_lived_total",
			Help: "Sessions observed alive beyond the leak warning threshold",
		},
	)
)

// Event Stream Metrics
var (
	// EventClients tracks connected websocket event observers
	EventClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hinter_event_clients",
			Help: "Connected websocket event stream clients",
		},
	)

	// EventClientsEvicted tracks slow observers evicted due to full buffers
	EventClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_event_clients_evicted_total",
			Help: "Event stream clients evicted because their send buffer filled",
		},
	)

	// EventsDropped tracks events dropped because the hub queue was full
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hinter_events_dropped_total",
			Help: "Hint events dropped because the hub command queue was full",
		},
	)
)

// Load-Hint Channel Metrics
var (
	// ChannelBreakerState tracks the perf channel circuit breaker state
	// (0=closed, 1=half-open, 2=open)
	ChannelBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hinter_channel_breaker_state",
			Help: "Load-hint channel circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// ChannelBreakerStateChanges tracks breaker state transitions
	ChannelBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hinter_channel_breaker_state_changes_total",
			Help: "Load-hint channel circuit breaker state transitions by new state",
		},
		[]string{"state"},
	)
)
