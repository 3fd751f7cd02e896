package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/quick-event-planner/internal/models"
	appErrors "github.com/noah-isme/quick-event-planner/pkg/errors"
)

type memoryEntry struct {
	selection models.Selection
	expiresAt time.Time
}

// MemorySelectionRepository keeps selections in process memory. Expired
// entries are hidden from reads and dropped by Purge.
type MemorySelectionRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySelectionRepository constructs an empty in-memory store.
func NewMemorySelectionRepository() *MemorySelectionRepository {
	return &MemorySelectionRepository{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored selection.
func (r *MemorySelectionRepository) Get(ctx context.Context, id string) (*models.Selection, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || !r.now().Before(entry.expiresAt) {
		return nil, appErrors.ErrCacheMiss
	}
	sel := entry.selection
	sel.Dates = append(sel.Dates[:0:0], entry.selection.Dates...)
	return &sel, nil
}

// Save stores a copy of sel valid for ttl.
func (r *MemorySelectionRepository) Save(ctx context.Context, sel *models.Selection, ttl time.Duration) error {
	stored := *sel
	stored.Dates = append(sel.Dates[:0:0], sel.Dates...)

	r.mu.Lock()
	r.entries[sel.ID] = memoryEntry{selection: stored, expiresAt: r.now().Add(ttl)}
	r.mu.Unlock()
	return nil
}

// Delete removes a selection if present.
func (r *MemorySelectionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	return nil
}

// Purge drops every entry expired at now and reports how many were removed.
func (r *MemorySelectionRepository) Purge(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (r *MemorySelectionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
