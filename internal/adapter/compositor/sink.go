// Package compositor implements the display hint sink over the
// compositor's hint IPC: a unix socket speaking newline-delimited JSON
// frames. Mutations queue locally and a commit ships everything queued
// since the last commit as a single frame, which the compositor applies
// atomically.
package compositor

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/pscheid92/hintd/internal/domain"
)

const writeTimeout = 200 * time.Millisecond

type mutation struct {
	Op         string            `json:"op"`
	Root       domain.RootHandle `json:"root,omitempty"`
	Overridden bool              `json:"overridden,omitempty"`
}

type frame struct {
	Mutations []mutation `json:"mutations"`
}

// Sink implements domain.DisplayHintSink. Like the coordinator it is
// single-threaded by contract: the coordinator is its only caller.
type Sink struct {
	conn    net.Conn
	pending []mutation
}

// Dial connects to the compositor hint socket.
func Dial(socketPath string) (*Sink, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial compositor socket: %w", err)
	}
	return New(conn), nil
}

// New wraps an established connection. Used by Dial and by tests.
func New(conn net.Conn) *Sink {
	return &Sink{conn: conn}
}

func (s *Sink) BeginEarlyWakeup() {
	s.pending = append(s.pending, mutation{Op: "early_wakeup_begin"})
}

func (s *Sink) EndEarlyWakeup() {
	s.pending = append(s.pending, mutation{Op: "early_wakeup_end"})
}

func (s *Sink) SetFrameRateOverride(root domain.RootHandle, overridden bool) {
	s.pending = append(s.pending, mutation{Op: "frame_rate_override", Root: root, Overridden: overridden})
}

// Commit ships all queued mutations as one frame. The queue is cleared
// even on failure: the compositor rebroadcasts display state on
// reconnect, so replaying a stale batch would do more harm than dropping
// it.
func (s *Sink) Commit() error {
	if len(s.pending) == 0 {
		return nil
	}
	payload, err := json.Marshal(frame{Mutations: s.pending})
	s.pending = nil
	if err != nil {
		return fmt.Errorf("encode hint frame: %w", err)
	}
	payload = append(payload, '\n')

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkUnavailable, err)
	}
	return nil
}

func (s *Sink) Close() error {
	return s.conn.Close()
}

var _ domain.DisplayHintSink = (*Sink)(nil)
