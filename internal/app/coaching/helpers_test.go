package coaching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/wisdom-coach/internal/adapters/storage/memory"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func daysAgo(d float64) time.Time {
	return testNow.Add(-time.Duration(d * float64(24*time.Hour)))
}

func score(v float64) *float64 { return &v }

func seedJournal(t *testing.T, entries ...*domain.JournalEntry) *memory.JournalStore {
	t.Helper()
	store := memory.NewJournalStore()
	for _, e := range entries {
		if e.UserID == "" {
			e.UserID = "u1"
		}
		require.NoError(t, store.AppendJournalEntry(context.Background(), e))
	}
	return store
}

type failingSource struct{}

func (failingSource) ListRecentJournalEntries(context.Context, domain.UserID, time.Time) ([]*domain.JournalEntry, error) {
	return nil, errors.New("connection refused")
}

type failingSessions struct {
	*memory.SessionStore
}

func (failingSessions) SaveSession(context.Context, *domain.CoachingSession) error {
	return errors.New("disk full")
}

type panickyExtractor struct{}

func (panickyExtractor) ExtractPeopleMentions(string) []string {
	panic("boom")
}

type fixedTrends []domain.LifeAreaTrend

func (f fixedTrends) LifeAreaTrends(context.Context, domain.UserID, []domain.RecentEntry, time.Time) ([]domain.LifeAreaTrend, error) {
	return f, nil
}

type brokenPatterns struct{}

func (brokenPatterns) BehavioralPatterns(context.Context, domain.UserID, []domain.RecentEntry, time.Time) ([]domain.BehavioralPattern, error) {
	return nil, errors.New("not ready")
}

type fixedGoals []domain.GoalProgress

func (f fixedGoals) GoalProgress(context.Context, domain.UserID, time.Time) ([]domain.GoalProgress, error) {
	return f, nil
}

func onlyTrigger(tt domain.TriggerType, occurrences, timeframe int) []domain.CoachingTrigger {
	var out []domain.CoachingTrigger
	for _, t := range DefaultTriggers() {
		t.Enabled = t.Type == tt
		if t.Enabled {
			t.Threshold = domain.TriggerThreshold{Occurrences: occurrences, Timeframe: timeframe}
		}
		out = append(out, t)
	}
	return out
}
