package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (WISDOM_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("coaching_sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) triggerDoc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("coaching_triggers").Doc(string(userID))
}

func (s *Store) collect(iter *firestore.DocumentIterator, op string) ([]*domain.CoachingSession, error) {
	defer iter.Stop()

	out := []*domain.CoachingSession{}
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore %s: %w", op, err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		out = append(out, doc.toDomain(domain.SessionID(snap.Ref.ID)))
	}
	return out, nil
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

// SaveSession upserts the session with its insights and recommendations
// embedded in a single document.
func (s *Store) SaveSession(ctx context.Context, session *domain.CoachingSession) error {
	if session == nil {
		return fmt.Errorf("firestore SaveSession: nil session")
	}

	_, err := s.sessionDoc(session.ID).Set(ctx, newSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore SaveSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.CoachingSession, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return doc.toDomain(id), nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.CoachingSession, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.collect(q.Documents(ctx), "ListSessionsByUser")
}

func (s *Store) ListActiveSessions(ctx context.Context, userID domain.UserID) ([]*domain.CoachingSession, error) {
	q := s.sessionsCol().
		Where("user_id", "==", string(userID)).
		Where("status", "==", string(domain.SessionActive))
	return s.collect(q.Documents(ctx), "ListActiveSessions")
}

// ─────────────────────────────────────────
// TriggerConfigLoader implementation
// ─────────────────────────────────────────

// LoadTriggerConfig reads coaching_triggers/{userID}. A missing document
// yields an empty list so the caller falls back to its defaults.
func (s *Store) LoadTriggerConfig(ctx context.Context, userID domain.UserID) ([]domain.CoachingTrigger, error) {
	snap, err := s.triggerDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []domain.CoachingTrigger{}, nil
		}
		return nil, fmt.Errorf("firestore LoadTriggerConfig: %w", err)
	}

	var doc triggerConfigDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore LoadTriggerConfig decode: %w", err)
	}
	return doc.toDomain(), nil
}

// SaveTriggerConfig replaces the user's trigger configuration.
func (s *Store) SaveTriggerConfig(ctx context.Context, userID domain.UserID, triggers []domain.CoachingTrigger) error {
	_, err := s.triggerDoc(userID).Set(ctx, newTriggerConfigDoc(triggers, time.Now()))
	if err != nil {
		return fmt.Errorf("firestore SaveTriggerConfig: %w", err)
	}
	return nil
}
