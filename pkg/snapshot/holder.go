package snapshot

import (
	"sync"
	"time"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Holder owns the current immutable snapshot. The filter pipeline only
// ever reads whatever snapshot is current; only a successful load may
// replace it, so a failed fetch can never clobber good data.
type Holder struct {
	mu       sync.RWMutex
	snap     *model.Snapshot
	origin   string
	loadedAt time.Time
}

// NewHolder creates an empty holder (waiting-for-data state)
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the current snapshot, or nil if none is loaded
func (h *Holder) Current() *model.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Replace installs a new snapshot wholesale. Any layout positions
// computed against the previous snapshot are invalidated by definition.
func (h *Holder) Replace(snap *model.Snapshot, origin string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snap = snap
	h.origin = origin
	h.loadedAt = time.Now()
}

// Info returns the origin and load time of the current snapshot
func (h *Holder) Info() (origin string, loadedAt time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.origin, h.loadedAt
}
