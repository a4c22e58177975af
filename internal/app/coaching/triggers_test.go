package coaching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

func moodEntries(moods map[domain.Mood][]float64) []domain.RecentEntry {
	var out []domain.RecentEntry
	for mood, ages := range moods {
		for _, age := range ages {
			out = append(out, domain.RecentEntry{Mood: mood, Date: daysAgo(age)})
		}
	}
	return out
}

func TestNegativeMoodPatternThreshold(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	triggers := onlyTrigger(domain.TriggerNegativeMoodPattern, 3, 7)

	tests := []struct {
		name    string
		entries []domain.RecentEntry
		fires   bool
	}{
		{
			name:    "three negative within timeframe",
			entries: moodEntries(map[domain.Mood][]float64{domain.MoodAngry: {1, 2}, domain.MoodSad: {6}}),
			fires:   true,
		},
		{
			name:    "only two negative",
			entries: moodEntries(map[domain.Mood][]float64{domain.MoodAngry: {1, 2}, domain.MoodHappy: {3}}),
			fires:   false,
		},
		{
			name:    "third one outside timeframe",
			entries: moodEntries(map[domain.Mood][]float64{domain.MoodAnxious: {1, 2, 9}}),
			fires:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cctx := &domain.CoachingContext{RecentEntries: tt.entries}
			_, fired := ev.Evaluate(context.Background(), cctx, triggers)
			assert.Equal(t, tt.fires, fired)
		})
	}
}

func TestLifeAreaDecline(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	triggers := onlyTrigger(domain.TriggerLifeAreaDecline, 2, 14)

	cctx := &domain.CoachingContext{LifeAreaTrends: []domain.LifeAreaTrend{
		{LifeArea: "health", Trend: domain.TrendDeclining},
		{LifeArea: "work", Trend: domain.TrendStable},
	}}
	_, fired := ev.Evaluate(context.Background(), cctx, triggers)
	assert.False(t, fired)

	cctx.LifeAreaTrends = append(cctx.LifeAreaTrends, domain.LifeAreaTrend{LifeArea: "money", Trend: domain.TrendDeclining})
	got, fired := ev.Evaluate(context.Background(), cctx, triggers)
	assert.True(t, fired)
	assert.Equal(t, domain.TriggerLifeAreaDecline, got.Type)
}

func TestRelationshipStress(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	triggers := onlyTrigger(domain.TriggerRelationshipStress, 3, 7)

	cctx := &domain.CoachingContext{RelationshipDynamics: []domain.RelationshipDynamic{
		{Person: "Sarah", MentionFrequency: 2, SentimentTrend: domain.SentimentNegative},
		{Person: "Tom", MentionFrequency: 5, SentimentTrend: domain.SentimentPositive},
	}}
	_, fired := ev.Evaluate(context.Background(), cctx, triggers)
	assert.False(t, fired)

	cctx.RelationshipDynamics[0].MentionFrequency = 3
	_, fired = ev.Evaluate(context.Background(), cctx, triggers)
	assert.True(t, fired)
}

func TestBoundaryViolationKeyword(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	triggers := onlyTrigger(domain.TriggerBoundaryViolation, 1, 7)

	cctx := &domain.CoachingContext{RecentEntries: []domain.RecentEntry{
		{ID: "e1", Body: "My boss disrespected me in the meeting", Date: daysAgo(1)},
	}}
	got, fired := ev.Evaluate(context.Background(), cctx, triggers)
	assert.True(t, fired)
	assert.Equal(t, domain.TriggerBoundaryViolation, got.Type)

	cctx.RecentEntries[0].Date = daysAgo(8)
	_, fired = ev.Evaluate(context.Background(), cctx, triggers)
	assert.False(t, fired)
}

func TestEvaluateShortCircuitsInDeclarationOrder(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	cctx := &domain.CoachingContext{RecentEntries: []domain.RecentEntry{
		{ID: "e1", Mood: domain.MoodAngry, Body: "I felt used", Date: daysAgo(1)},
	}}
	mood := domain.CoachingTrigger{Type: domain.TriggerNegativeMoodPattern, Enabled: true, Threshold: domain.TriggerThreshold{Occurrences: 1, Timeframe: 7}}
	boundary := domain.CoachingTrigger{Type: domain.TriggerBoundaryViolation, Enabled: true, Threshold: domain.TriggerThreshold{Occurrences: 1, Timeframe: 7}}

	got, fired := ev.Evaluate(context.Background(), cctx, []domain.CoachingTrigger{boundary, mood})
	assert.True(t, fired)
	assert.Equal(t, domain.TriggerBoundaryViolation, got.Type)

	got, fired = ev.Evaluate(context.Background(), cctx, []domain.CoachingTrigger{mood, boundary})
	assert.True(t, fired)
	assert.Equal(t, domain.TriggerNegativeMoodPattern, got.Type)
}

func TestEvaluateSkipsInvalidAndUnknownTriggers(t *testing.T) {
	ev := NewEvaluator(fixedClock)
	cctx := &domain.CoachingContext{RecentEntries: []domain.RecentEntry{
		{ID: "e1", Mood: domain.MoodSad, Body: "overwhelmed", Date: daysAgo(1)},
	}}
	triggers := []domain.CoachingTrigger{
		{Type: domain.TriggerBoundaryViolation, Enabled: true, Threshold: domain.TriggerThreshold{Occurrences: 1, Timeframe: -1}},
		{Type: domain.TriggerNegativeMoodPattern, Enabled: true, Threshold: domain.TriggerThreshold{Occurrences: -3, Timeframe: 7}},
		{Type: "astrology", Enabled: true},
		{Type: domain.TriggerNegativeMoodPattern, Enabled: false, Threshold: domain.TriggerThreshold{Occurrences: 1, Timeframe: 7}},
	}

	_, fired := ev.Evaluate(context.Background(), cctx, triggers)
	assert.False(t, fired)

	_, fired = ev.Evaluate(context.Background(), nil, DefaultTriggers())
	assert.False(t, fired)
}

func TestTriggeredByFor(t *testing.T) {
	assert.Equal(t, domain.TriggeredByMoodTrend, TriggeredByFor(domain.TriggerNegativeMoodPattern))
	assert.Equal(t, domain.TriggeredByLifeAreaCollapse, TriggeredByFor(domain.TriggerLifeAreaDecline))
	assert.Equal(t, domain.TriggeredByUpset, TriggeredByFor(domain.TriggerRelationshipStress))
	assert.Equal(t, domain.TriggeredByManual, TriggeredByFor(domain.TriggerBoundaryViolation))
}
