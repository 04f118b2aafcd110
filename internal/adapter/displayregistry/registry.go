// Package displayregistry tracks the compositor surface roots of attached
// displays. The window management side registers a root when a display
// comes up and unregisters it on teardown; the coordinator resolves roots
// through it at hint-application time.
package displayregistry

import (
	"log/slog"
	"sync"

	"github.com/pscheid92/hintd/internal/domain"
)

// Registry is a thread-safe DisplayRootResolver. Unlike the coordinator
// it is safe for concurrent use: display hotplug events arrive on a
// different thread than hint requests.
type Registry struct {
	mu    sync.RWMutex
	roots map[domain.DisplayID]domain.RootHandle
}

func New() *Registry {
	return &Registry{roots: make(map[domain.DisplayID]domain.RootHandle)}
}

// Register associates a display with its root surface, replacing any
// previous root for that display.
func (r *Registry) Register(id domain.DisplayID, root domain.RootHandle) {
	r.mu.Lock()
	r.roots[id] = root
	r.mu.Unlock()
	slog.Debug("Display root registered", "display", id, "root", root)
}

// Unregister removes the display's root. Resolutions after this return
// absent until a new root is registered.
func (r *Registry) Unregister(id domain.DisplayID) {
	r.mu.Lock()
	delete(r.roots, id)
	r.mu.Unlock()
	slog.Debug("Display root unregistered", "display", id)
}

// RootForDisplay implements domain.DisplayRootResolver.
func (r *Registry) RootForDisplay(id domain.DisplayID) (domain.RootHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	root, ok := r.roots[id]
	return root, ok
}

// Displays returns the IDs of all displays with a registered root.
func (r *Registry) Displays() []domain.DisplayID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]domain.DisplayID, 0, len(r.roots))
	for id := range r.roots {
		ids = append(ids, id)
	}
	return ids
}
