package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/hinter"
)

// Service serializes access to the coordinator. The coordinator itself is
// single-threaded by contract; this is the one place that contract is
// enforced, so everything above (debug API, monitor, shutdown path) can
// call in concurrently. It also tracks open handles so sessions can be
// closed by ID.
type Service struct {
	mu     sync.Mutex
	hinter *hinter.Hinter
	open   map[uuid.UUID]*hinter.Session
}

func NewService(h *hinter.Hinter) *Service {
	return &Service{
		hinter: h,
		open:   make(map[uuid.UUID]*hinter.Session),
	}
}

// StartSession starts a session and tracks its handle. Inert sessions are
// returned to the caller but not tracked: there is nothing to close.
func (s *Service) StartSession(flags domain.HintFlags, display domain.DisplayID, reason string) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.hinter.StartSession(flags, display, reason)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if !session.Inert() {
		s.open[session.ID()] = session
	}
	return session.Info(), nil
}

// CloseSession closes the tracked session with the given ID. Unknown and
// already-closed IDs return ErrSessionNotFound.
func (s *Service) CloseSession(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.open[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.open, id)
	session.Close()
	return nil
}

// CloseAll closes every tracked session. Used on shutdown so no hint is
// left asserted at the sinks.
func (s *Service) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.open {
		session.Close()
		delete(s.open, id)
	}
}

// Dump returns snapshots of all active sessions.
func (s *Service) Dump() []domain.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hinter.Dump()
}

// DumpTo writes the human-readable session listing.
func (s *Service) DumpTo(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hinter.DumpTo(w)
}
