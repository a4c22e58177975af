package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.CoachingSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.CoachingSession),
	}
}

// SaveSession upserts by session ID.
func (s *SessionStore) SaveSession(_ context.Context, session *domain.CoachingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id domain.SessionID) (*domain.CoachingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	cp := *sess
	return &cp, nil
}

// ListSessionsByUser returns the newest sessions first.
func (s *SessionStore) ListSessionsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.CoachingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.filter(func(sess *domain.CoachingSession) bool {
		return sess.UserID == userID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *SessionStore) ListActiveSessions(_ context.Context, userID domain.UserID) ([]*domain.CoachingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter(func(sess *domain.CoachingSession) bool {
		return sess.UserID == userID && sess.Status == domain.SessionActive
	}), nil
}

// filter must be called with the read lock held.
func (s *SessionStore) filter(keep func(*domain.CoachingSession) bool) []*domain.CoachingSession {
	result := []*domain.CoachingSession{}
	for _, sess := range s.sessions {
		if keep(sess) {
			cp := *sess
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
