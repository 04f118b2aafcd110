package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/metrics"
)

// sessionDumper is the slice of Service the monitor needs.
type sessionDumper interface {
	Dump() []domain.SessionInfo
}

// LeakMonitor periodically scans active sessions and flags ones alive
// beyond the warning threshold. Boost sessions are meant to be
// short-lived; a session held for minutes usually means a caller lost its
// handle. The monitor only warns and counts - it never closes sessions,
// since a long-lived session can be legitimate.
type LeakMonitor struct {
	sessions  sessionDumper
	clock     clockwork.Clock
	warnAfter time.Duration
	interval  time.Duration

	warned map[uuid.UUID]struct{}
}

func NewLeakMonitor(sessions sessionDumper, clock clockwork.Clock, warnAfter, interval time.Duration) *LeakMonitor {
	return &LeakMonitor{
		sessions:  sessions,
		clock:     clock,
		warnAfter: warnAfter,
		interval:  interval,
		warned:    make(map[uuid.UUID]struct{}),
	}
}

// Run starts the periodic scan loop. It blocks until ctx is cancelled.
func (m *LeakMonitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.scan()
		}
	}
}

func (m *LeakMonitor) scan() {
	infos := m.sessions.Dump()

	active := make(map[uuid.UUID]struct{}, len(infos))
	for _, info := range infos {
		active[info.ID] = struct{}{}

		age := m.clock.Since(info.StartedAt)
		if age < m.warnAfter {
			continue
		}
		if _, already := m.warned[info.ID]; already {
			continue
		}
		m.warned[info.ID] = struct{}{}
		metrics.SessionsLongLived.Inc()
		slog.Warn("Hint session alive beyond threshold",
			"session", info.ID,
			"reason", info.Reason,
			"flags", info.FlagNames,
			"display", info.Display,
			"age", age,
		)
	}

	// Forget closed sessions so the map does not grow unbounded.
	for id := range m.warned {
		if _, ok := active[id]; !ok {
			delete(m.warned, id)
		}
	}
}
