// Package ftrace emits atrace-format marks to the kernel trace_marker
// file, where they show up alongside scheduler events in perfetto and
// trace-cmd captures. Everything here is best-effort: a missing tracefs,
// a permission error, or a short write never reaches the caller.
package ftrace

import (
	"fmt"
	"os"
	"sync"

	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/metrics"
)

// Tracer implements domain.Tracer over trace_marker.
type Tracer struct {
	mu   sync.Mutex
	file *os.File
	pid  int
}

// Open opens the trace marker at path (usually
// /sys/kernel/tracing/trace_marker). The returned tracer is shared
// between the coordinator thread and the debug server, so writes are
// serialized internally.
func Open(path string) (*Tracer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open trace marker: %w", err)
	}
	return &Tracer{file: f, pid: os.Getpid()}, nil
}

// BeginAsync opens an async span. The token ties the matching end mark
// to this begin across interleaved spans with the same label.
func (t *Tracer) BeginAsync(label string, token int32) {
	t.write(fmt.Sprintf("S|%d|%s|%d", t.pid, label, token))
}

// EndAsync closes the async span opened with the same label and token.
func (t *Tracer) EndAsync(label string, token int32) {
	t.write(fmt.Sprintf("F|%d|%s|%d", t.pid, label, token))
}

// Instant emits a single instant mark.
func (t *Tracer) Instant(label string) {
	t.write(fmt.Sprintf("I|%d|%s", t.pid, label))
}

func (t *Tracer) write(mark string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Tracing failures are swallowed; they must never affect hints.
	if _, err := t.file.WriteString(mark); err != nil {
		metrics.TraceFailures.Inc()
	}
}

func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

var _ domain.Tracer = (*Tracer)(nil)
