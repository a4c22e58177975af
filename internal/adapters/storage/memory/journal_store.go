package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

// JournalStore is a simple in-memory implementation of domain.JournalStore.
// It is NOT persistent and is only suitable for development / local mode.
type JournalStore struct {
	mu       sync.RWMutex
	entries  map[domain.JournalEntryID]*domain.JournalEntry
	byUserID map[domain.UserID][]domain.JournalEntryID
}

// NewJournalStore creates a new in-memory JournalStore.
func NewJournalStore() *JournalStore {
	return &JournalStore{
		entries:  make(map[domain.JournalEntryID]*domain.JournalEntry),
		byUserID: make(map[domain.UserID][]domain.JournalEntryID),
	}
}

// AppendJournalEntry saves a new journal entry.
func (s *JournalStore) AppendJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	if entry == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, exists := s.entries[entry.ID]; !exists {
		s.byUserID[entry.UserID] = append(s.byUserID[entry.UserID], entry.ID)
	}
	s.entries[entry.ID] = entry

	return nil
}

// ListRecentJournalEntries returns the user's entries created at or after
// since, oldest first.
func (s *JournalStore) ListRecentJournalEntries(
	_ context.Context,
	userID domain.UserID,
	since time.Time,
) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.JournalEntry{}
	for _, id := range s.byUserID[userID] {
		e, ok := s.entries[id]
		if !ok || e.CreatedAt.Before(since) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
