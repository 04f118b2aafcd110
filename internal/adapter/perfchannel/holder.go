package perfchannel

import (
	"sync"

	"github.com/pscheid92/hintd/internal/domain"
)

// Holder is a hot-swappable domain.LoadHintSource. The owning process
// replaces the channel when the power HAL reconnects; the coordinator
// resolves through Current on every send and therefore never holds a
// stale channel.
type Holder struct {
	mu sync.RWMutex
	ch domain.LoadHintChannel
}

// NewHolder creates a holder around ch, which may be nil.
func NewHolder(ch domain.LoadHintChannel) *Holder {
	return &Holder{ch: ch}
}

// Swap replaces the channel and returns the previous one so the caller
// can close it. Passing nil removes the channel.
func (h *Holder) Swap(ch domain.LoadHintChannel) domain.LoadHintChannel {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.ch
	h.ch = ch
	return prev
}

// Current implements domain.LoadHintSource.
func (h *Holder) Current() domain.LoadHintChannel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ch
}

var _ domain.LoadHintSource = (*Holder)(nil)
