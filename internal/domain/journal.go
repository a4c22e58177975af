package domain

import (
	"context"
	"time"
)

// JournalEntryID identifies a journal entry
type JournalEntryID string

// Mood is the self-reported mood attached to an entry.
type Mood string

const (
	MoodHappy       Mood = "happy"
	MoodGrateful    Mood = "grateful"
	MoodCalm        Mood = "calm"
	MoodExcited     Mood = "excited"
	MoodNeutral     Mood = "neutral"
	MoodTired       Mood = "tired"
	MoodSad         Mood = "sad"
	MoodAngry       Mood = "angry"
	MoodAnxious     Mood = "anxious"
	MoodFrustrated  Mood = "frustrated"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodStressed    Mood = "stressed"
	MoodDepressed   Mood = "depressed"
	MoodLonely      Mood = "lonely"
)

// JournalEntry is a single journal entry written by the user.
// The coaching core only reads entries, it never mutates them.
type JournalEntry struct {
	ID     JournalEntryID `json:"id"`
	UserID UserID         `json:"user_id"`
	Title  string         `json:"title,omitempty"`
	Body   string         `json:"body"`
	Mood   Mood           `json:"mood,omitempty"`

	// MoodScore is optional; nil means the user did not rate the entry.
	MoodScore *float64 `json:"mood_score,omitempty"`

	LinkedLifeAreas []string  `json:"linked_life_areas"`
	CreatedAt       time.Time `json:"created_at"`
}

// JournalSource is the read-only journal port used by the coaching core.
type JournalSource interface {
	ListRecentJournalEntries(ctx context.Context, userID UserID, since time.Time) ([]*JournalEntry, error)
}

// JournalStore defines the minimum operations to persist the journal
type JournalStore interface {
	JournalSource
	AppendJournalEntry(ctx context.Context, entry *JournalEntry) error
}
