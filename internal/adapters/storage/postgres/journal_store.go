package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// Cipher encrypts journal bodies at rest.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// JournalStore reads and writes journal entries in Postgres.
type JournalStore struct {
	db     *sql.DB
	cipher Cipher
}

type Option func(*JournalStore)

// WithCipher encrypts new bodies and decrypts rows flagged as encrypted.
func WithCipher(c Cipher) Option {
	return func(s *JournalStore) { s.cipher = c }
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	return db, nil
}

func NewJournalStore(db *sql.DB, opts ...Option) *JournalStore {
	s := &JournalStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entries (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		mood TEXT NOT NULL DEFAULT '',
		mood_score DOUBLE PRECISION,
		linked_life_areas TEXT[] NOT NULL DEFAULT '{}',
		encrypted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS journal_entries_user_created_idx
		ON journal_entries (user_id, created_at)`,
}

// CreateSchema creates the journal table if it does not exist.
func (s *JournalStore) CreateSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

const insertEntry = `INSERT INTO journal_entries
	(id, user_id, title, body, mood, mood_score, linked_life_areas, encrypted, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// AppendJournalEntry inserts entry, assigning an id and timestamp when unset.
func (s *JournalStore) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	body := entry.Body
	encrypted := false
	if s.cipher != nil {
		ct, err := s.cipher.Encrypt(ctx, entry.Body)
		if err != nil {
			return fmt.Errorf("encrypt journal body: %w", err)
		}
		body, encrypted = ct, true
	}

	var score sql.NullFloat64
	if entry.MoodScore != nil {
		score = sql.NullFloat64{Float64: *entry.MoodScore, Valid: true}
	}
	areas := entry.LinkedLifeAreas
	if areas == nil {
		areas = []string{}
	}

	_, err := s.db.ExecContext(ctx, insertEntry,
		string(entry.ID),
		string(entry.UserID),
		entry.Title,
		body,
		string(entry.Mood),
		score,
		pq.Array(areas),
		encrypted,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

const selectRecent = `SELECT id, user_id, title, body, mood, mood_score, linked_life_areas, encrypted, created_at
	FROM journal_entries
	WHERE user_id = $1 AND created_at >= $2
	ORDER BY created_at ASC`

// ListRecentJournalEntries returns the user's entries created at or after
// since, oldest first. An encrypted row that cannot be decrypted is returned
// with an empty body.
func (s *JournalStore) ListRecentJournalEntries(
	ctx context.Context,
	userID domain.UserID,
	since time.Time,
) ([]*domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectRecent, string(userID), since)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	out := []*domain.JournalEntry{}
	for rows.Next() {
		entry, encrypted, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if encrypted {
			s.decryptBody(ctx, entry)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return out, nil
}

func (s *JournalStore) decryptBody(ctx context.Context, entry *domain.JournalEntry) {
	if s.cipher == nil {
		observability.LoggerFromContext(ctx).Warn("encrypted journal entry but no cipher configured",
			"entry_id", entry.ID)
		entry.Body = ""
		return
	}

	plain, err := s.cipher.Decrypt(ctx, entry.Body)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to decrypt journal entry",
			"entry_id", entry.ID,
			"error", err)
		entry.Body = ""
		return
	}
	entry.Body = plain
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.JournalEntry, bool, error) {
	var (
		id, userID, title, body, mood string
		score                         sql.NullFloat64
		areas                         []string
		encrypted                     bool
		createdAt                     time.Time
	)
	err := row.Scan(&id, &userID, &title, &body, &mood, &score, pq.Array(&areas), &encrypted, &createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("scan journal entry: %w", err)
	}

	entry := &domain.JournalEntry{
		ID:              domain.JournalEntryID(id),
		UserID:          domain.UserID(userID),
		Title:           title,
		Body:            body,
		Mood:            domain.Mood(mood),
		LinkedLifeAreas: areas,
		CreatedAt:       createdAt,
	}
	if score.Valid {
		v := score.Float64
		entry.MoodScore = &v
	}
	if entry.LinkedLifeAreas == nil {
		entry.LinkedLifeAreas = []string{}
	}
	return entry, encrypted, nil
}
