package db

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/spacesedan/mindnest/internal/models"
)

// MemoryJournalStore keeps entries in process memory. It backs local
// development when no DynamoDB endpoint is available and follows the same
// key rules as JournalStore: a put with an existing key replaces the entry.
type MemoryJournalStore struct {
	mu     sync.RWMutex
	byUser map[string][]models.JournalEntry
}

func NewMemoryJournalStore() *MemoryJournalStore {
	return &MemoryJournalStore{byUser: make(map[string][]models.JournalEntry)}
}

func (m *MemoryJournalStore) PutEntry(_ context.Context, entry models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.byUser[entry.UserID]
	if i := slices.IndexFunc(entries, func(e models.JournalEntry) bool {
		return e.CreatedAt == entry.CreatedAt && e.EntryID == entry.EntryID
	}); i >= 0 {
		entries[i] = entry
		return nil
	}
	m.byUser[entry.UserID] = append(entries, entry)
	return nil
}

func (m *MemoryJournalStore) BatchPutEntries(ctx context.Context, entries []models.JournalEntry) error {
	for _, e := range entries {
		if err := m.PutEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryJournalStore) QueryEntries(_ context.Context, userID string, ascending bool) ([]models.JournalEntry, error) {
	m.mu.RLock()
	out := slices.Clone(m.byUser[userID])
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.JournalEntry) int {
		if !ascending {
			a, b = b, a
		}
		return cmp.Or(cmp.Compare(a.CreatedAt, b.CreatedAt), cmp.Compare(a.EntryID, b.EntryID))
	})
	return out, nil
}

