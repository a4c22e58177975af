package coaching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/wisdom-coach/internal/app/signals"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

func TestBuildFiltersLookbackWindow(t *testing.T) {
	store := seedJournal(t,
		&domain.JournalEntry{ID: "old", Body: "good", CreatedAt: daysAgo(20)},
		&domain.JournalEntry{ID: "recent", Body: "good good bad", CreatedAt: daysAgo(2)},
		&domain.JournalEntry{ID: "edge", Body: "", CreatedAt: daysAgo(13.9)},
	)
	b := NewContextBuilder(store, nil, WithClock(fixedClock))

	cctx, err := b.Build(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultLookbackDays, cctx.LookbackDays)
	require.Len(t, cctx.RecentEntries, 2)
	assert.Equal(t, domain.JournalEntryID("edge"), cctx.RecentEntries[0].ID)
	assert.Equal(t, domain.JournalEntryID("recent"), cctx.RecentEntries[1].ID)
	assert.Equal(t, 1, cctx.RecentEntries[1].Sentiment)
	assert.Equal(t, []string{}, cctx.RecentEntries[0].LifeAreas)

	assert.NotNil(t, cctx.LifeAreaTrends)
	assert.NotNil(t, cctx.BehavioralPatterns)
	assert.NotNil(t, cctx.GoalProgress)
}

func TestBuildRelationshipDynamics(t *testing.T) {
	store := seedJournal(t,
		&domain.JournalEntry{ID: "e1", Body: "argued with Sarah again, so angry and upset", CreatedAt: daysAgo(5)},
		&domain.JournalEntry{ID: "e2", Body: "dinner with Sarah was awful and sad, felt hurt", CreatedAt: daysAgo(3)},
		&domain.JournalEntry{ID: "e3", Body: "great walk with Tom, happy and calm", CreatedAt: daysAgo(2)},
		&domain.JournalEntry{ID: "e4", Body: "called Ana", CreatedAt: daysAgo(1)},
	)
	b := NewContextBuilder(store, signals.NewNameExtractor(), WithClock(fixedClock))

	cctx, err := b.Build(context.Background(), "u1", 14)
	require.NoError(t, err)
	require.Len(t, cctx.RelationshipDynamics, 3)

	ana, sarah, tom := cctx.RelationshipDynamics[0], cctx.RelationshipDynamics[1], cctx.RelationshipDynamics[2]

	assert.Equal(t, "Ana", ana.Person)
	assert.Equal(t, domain.SentimentNeutral, ana.SentimentTrend)

	assert.Equal(t, "Sarah", sarah.Person)
	assert.Equal(t, 2, sarah.MentionFrequency)
	assert.Equal(t, domain.SentimentNegative, sarah.SentimentTrend)
	assert.Equal(t, daysAgo(3), sarah.LastMentioned)
	assert.Equal(t, []domain.JournalEntryID{"e1", "e2"}, sarah.EntryIDs)

	assert.Equal(t, "Tom", tom.Person)
	assert.Equal(t, domain.SentimentPositive, tom.SentimentTrend)
}

func TestBuildToleratesPanickingExtractor(t *testing.T) {
	store := seedJournal(t, &domain.JournalEntry{ID: "e1", Body: "saw Sarah", CreatedAt: daysAgo(1)})
	b := NewContextBuilder(store, panickyExtractor{}, WithClock(fixedClock))

	cctx, err := b.Build(context.Background(), "u1", 14)
	require.NoError(t, err)
	assert.Len(t, cctx.RecentEntries, 1)
	assert.Empty(t, cctx.RelationshipDynamics)
}

func TestBuildSourceUnavailable(t *testing.T) {
	b := NewContextBuilder(failingSource{}, nil, WithClock(fixedClock))

	cctx, err := b.Build(context.Background(), "u1", 14)
	assert.Nil(t, cctx)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestBuildPluggableProducers(t *testing.T) {
	trends := fixedTrends{{LifeArea: "health", Trend: domain.TrendDeclining, DaysSinceRitual: 3}}
	goals := fixedGoals{{GoalID: "g1", Title: "Run 5k", Progress: 0.4}}
	b := NewContextBuilder(seedJournal(t), nil,
		WithClock(fixedClock),
		WithLifeAreaTrends(trends),
		WithBehavioralPatterns(brokenPatterns{}),
		WithGoalProgress(goals),
	)

	cctx, err := b.Build(context.Background(), "u1", 14)
	require.NoError(t, err)
	assert.Equal(t, []domain.LifeAreaTrend(trends), cctx.LifeAreaTrends)
	assert.Equal(t, []domain.GoalProgress(goals), cctx.GoalProgress)
	assert.Empty(t, cctx.BehavioralPatterns)
}

func TestBuildMergesIncludedEntry(t *testing.T) {
	store := seedJournal(t, &domain.JournalEntry{ID: "e1", Body: "fine", CreatedAt: daysAgo(1)})
	b := NewContextBuilder(store, nil, WithClock(fixedClock))
	fresh := &domain.JournalEntry{ID: "e2", UserID: "u1", Body: "hopeless", CreatedAt: testNow}

	cctx, err := b.Build(context.Background(), "u1", 7, fresh, &domain.JournalEntry{ID: "e1", CreatedAt: testNow})
	require.NoError(t, err)
	require.Len(t, cctx.RecentEntries, 2)
	assert.True(t, cctx.HasEntry("e2"))
	assert.Equal(t, "fine", cctx.RecentEntries[0].Body)
}
