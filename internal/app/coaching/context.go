package coaching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PabloGalante/wisdom-coach/internal/app/signals"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

const (
	DefaultLookbackDays = 14
	UrgentLookbackDays  = 7

	day = 24 * time.Hour
)

// ContextBuilder aggregates a user's recent journal entries into a
// domain.CoachingContext.
type ContextBuilder struct {
	source domain.JournalSource
	people domain.PeopleExtractor

	lifeAreas domain.LifeAreaTrendProducer
	patterns  domain.BehavioralPatternProducer
	goals     domain.GoalProgressProducer

	now func() time.Time
}

// BuilderOption plugs optional producers into a ContextBuilder.
type BuilderOption func(*ContextBuilder)

func WithLifeAreaTrends(p domain.LifeAreaTrendProducer) BuilderOption {
	return func(b *ContextBuilder) { b.lifeAreas = p }
}

func WithBehavioralPatterns(p domain.BehavioralPatternProducer) BuilderOption {
	return func(b *ContextBuilder) { b.patterns = p }
}

func WithGoalProgress(p domain.GoalProgressProducer) BuilderOption {
	return func(b *ContextBuilder) { b.goals = p }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *ContextBuilder) { b.now = now }
}

// NewContextBuilder creates a builder reading from source. A nil people
// extractor falls back to signals.NameExtractor.
func NewContextBuilder(source domain.JournalSource, people domain.PeopleExtractor, opts ...BuilderOption) *ContextBuilder {
	if people == nil {
		people = signals.NewNameExtractor()
	}
	b := &ContextBuilder{
		source: source,
		people: people,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build fetches the lookback window for userID and derives the context.
// Entries passed in include are merged into the window when the source does
// not return them yet (the entry being processed right now, typically).
func (b *ContextBuilder) Build(
	ctx context.Context,
	userID domain.UserID,
	lookbackDays int,
	include ...*domain.JournalEntry,
) (*domain.CoachingContext, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	now := b.now()
	since := now.Add(-time.Duration(lookbackDays) * day)

	entries, err := b.source.ListRecentJournalEntries(ctx, userID, since)
	if err != nil {
		if errors.Is(err, domain.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	entries = mergeEntries(entries, include)

	cctx := &domain.CoachingContext{
		UserID:               userID,
		LookbackDays:         lookbackDays,
		BuiltAt:              now,
		RecentEntries:        []domain.RecentEntry{},
		LifeAreaTrends:       []domain.LifeAreaTrend{},
		RelationshipDynamics: []domain.RelationshipDynamic{},
		BehavioralPatterns:   []domain.BehavioralPattern{},
		GoalProgress:         []domain.GoalProgress{},
	}

	mentions := make(map[domain.JournalEntryID][]string)
	for _, e := range entries {
		if e == nil || e.CreatedAt.Before(since) {
			continue
		}
		cctx.RecentEntries = append(cctx.RecentEntries, toRecentEntry(e))
		mentions[e.ID] = b.safeMentions(ctx, e.Body)
	}
	sort.SliceStable(cctx.RecentEntries, func(i, j int) bool {
		return cctx.RecentEntries[i].Date.Before(cctx.RecentEntries[j].Date)
	})

	cctx.RelationshipDynamics = relationshipDynamics(cctx.RecentEntries, mentions)
	b.runProducers(ctx, cctx, now)

	return cctx, nil
}

func (b *ContextBuilder) runProducers(ctx context.Context, cctx *domain.CoachingContext, now time.Time) {
	log := observability.LoggerFromContext(ctx).With("user_id", cctx.UserID)

	if b.lifeAreas != nil {
		trends, err := b.lifeAreas.LifeAreaTrends(ctx, cctx.UserID, cctx.RecentEntries, now)
		if err != nil {
			log.Warn("life area trend producer failed", "error", err)
		} else if trends != nil {
			cctx.LifeAreaTrends = trends
		}
	}
	if b.patterns != nil {
		patterns, err := b.patterns.BehavioralPatterns(ctx, cctx.UserID, cctx.RecentEntries, now)
		if err != nil {
			log.Warn("behavioral pattern producer failed", "error", err)
		} else if patterns != nil {
			cctx.BehavioralPatterns = patterns
		}
	}
	if b.goals != nil {
		progress, err := b.goals.GoalProgress(ctx, cctx.UserID, now)
		if err != nil {
			log.Warn("goal progress producer failed", "error", err)
		} else if progress != nil {
			cctx.GoalProgress = progress
		}
	}
}

// safeMentions shields the build from a misbehaving extractor.
func (b *ContextBuilder) safeMentions(ctx context.Context, text string) (people []string) {
	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Warn("people extractor panicked", "panic", r)
			people = nil
		}
	}()
	return b.people.ExtractPeopleMentions(text)
}

func toRecentEntry(e *domain.JournalEntry) domain.RecentEntry {
	areas := e.LinkedLifeAreas
	if areas == nil {
		areas = []string{}
	}
	return domain.RecentEntry{
		ID:        e.ID,
		Title:     e.Title,
		Body:      e.Body,
		Mood:      e.Mood,
		LifeAreas: areas,
		Sentiment: signals.SentimentScore(e.Body),
		Date:      e.CreatedAt,
	}
}

type mentionTally struct {
	count int
	sum   int
	last  time.Time
	ids   []domain.JournalEntryID
}

func relationshipDynamics(entries []domain.RecentEntry, mentions map[domain.JournalEntryID][]string) []domain.RelationshipDynamic {
	tallies := make(map[string]*mentionTally)
	for _, e := range entries {
		counted := make(map[string]struct{})
		for _, person := range mentions[e.ID] {
			if _, dup := counted[person]; dup || person == "" {
				continue
			}
			counted[person] = struct{}{}

			t, ok := tallies[person]
			if !ok {
				t = &mentionTally{}
				tallies[person] = t
			}
			t.count++
			t.sum += e.Sentiment
			t.ids = append(t.ids, e.ID)
			if e.Date.After(t.last) {
				t.last = e.Date
			}
		}
	}

	out := make([]domain.RelationshipDynamic, 0, len(tallies))
	for person, t := range tallies {
		out = append(out, domain.RelationshipDynamic{
			Person:           person,
			MentionFrequency: t.count,
			SentimentTrend:   sentimentTrend(float64(t.sum) / float64(t.count)),
			LastMentioned:    t.last,
			EntryIDs:         t.ids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Person < out[j].Person })
	return out
}

func sentimentTrend(avg float64) domain.SentimentTrend {
	switch {
	case avg > 1:
		return domain.SentimentPositive
	case avg < -1:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func mergeEntries(entries []*domain.JournalEntry, include []*domain.JournalEntry) []*domain.JournalEntry {
	if len(include) == 0 {
		return entries
	}
	seen := make(map[domain.JournalEntryID]struct{}, len(entries))
	for _, e := range entries {
		if e != nil {
			seen[e.ID] = struct{}{}
		}
	}
	for _, e := range include {
		if e == nil {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}
	return entries
}
