package snapshot

import (
	"context"
	"sync"

	"github.com/iapioniers/evasion-backend/internal/platform/logger"
)

// Holder keeps the most recently loaded snapshot in memory and swaps it
// atomically. Handlers read through the holder instead of touching the store;
// a forced reload re-reads from disk, which is how a freshly written run
// becomes visible to a long-running server.
type Holder struct {
	mu      sync.RWMutex
	store   Store
	log     *logger.Logger
	current *Snapshot
}

func NewHolder(store Store, baseLog *logger.Logger) *Holder {
	return &Holder{
		store: store,
		log:   baseLog.With("component", "SnapshotHolder"),
	}
}

// Get returns the in-memory snapshot, loading from the store on first use or
// when forceReload is set. Returns ErrNoSnapshot when no run exists yet.
func (h *Holder) Get(ctx context.Context, forceReload bool) (*Snapshot, error) {
	if !forceReload {
		h.mu.RLock()
		snap := h.current
		h.mu.RUnlock()
		if snap != nil {
			return snap, nil
		}
	}

	snap, err := h.store.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.current = snap
	h.mu.Unlock()
	h.log.Info("Snapshot loaded into memory",
		"run_id", snap.RunID,
		"events", len(snap.RawEvents),
		"rows", len(snap.ScoredRows),
	)
	return snap, nil
}
