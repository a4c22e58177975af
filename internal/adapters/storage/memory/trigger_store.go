package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

// TriggerStore keeps per-user trigger configuration in memory.
// Users without an override get the defaults it was built with.
type TriggerStore struct {
	mu       sync.RWMutex
	defaults []domain.CoachingTrigger
	byUser   map[domain.UserID][]domain.CoachingTrigger
}

func NewTriggerStore(defaults []domain.CoachingTrigger) *TriggerStore {
	return &TriggerStore{
		defaults: defaults,
		byUser:   make(map[domain.UserID][]domain.CoachingTrigger),
	}
}

func (s *TriggerStore) SetTriggers(userID domain.UserID, triggers []domain.CoachingTrigger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byUser[userID] = append([]domain.CoachingTrigger(nil), triggers...)
}

func (s *TriggerStore) LoadTriggerConfig(_ context.Context, userID domain.UserID) ([]domain.CoachingTrigger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.byUser[userID]; ok {
		return append([]domain.CoachingTrigger(nil), t...), nil
	}
	return append([]domain.CoachingTrigger(nil), s.defaults...), nil
}
