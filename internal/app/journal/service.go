package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// ErrEmptyEntry is returned when an entry has no body.
var ErrEmptyEntry = errors.New("journal entry body is required")

// Service holds the logic of recording and reading journal entries
type Service struct {
	store domain.JournalStore
	now   func() time.Time
}

// NewService creates a journal service from a JournalStore
func NewService(store domain.JournalStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Record validates and stores a new entry for userID.
func (s *Service) Record(ctx context.Context, userID domain.UserID, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	if entry == nil || strings.TrimSpace(entry.Body) == "" {
		return nil, ErrEmptyEntry
	}

	e := *entry
	e.UserID = userID
	if e.ID == "" {
		e.ID = domain.JournalEntryID(uuid.NewString())
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if e.LinkedLifeAreas == nil {
		e.LinkedLifeAreas = []string{}
	}

	if err := s.store.AppendJournalEntry(ctx, &e); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to append journal entry",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("append journal entry: %w", err)
	}
	return &e, nil
}

// ListRecentJournalEntries implements domain.JournalSource. Storage errors
// are reported as domain.ErrSourceUnavailable.
func (s *Service) ListRecentJournalEntries(
	ctx context.Context,
	userID domain.UserID,
	since time.Time,
) ([]*domain.JournalEntry, error) {
	if s.store == nil {
		return []*domain.JournalEntry{}, nil
	}

	entries, err := s.store.ListRecentJournalEntries(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return entries, nil
}
