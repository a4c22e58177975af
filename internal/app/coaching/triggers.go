package coaching

import (
	"context"
	"time"

	"github.com/PabloGalante/wisdom-coach/internal/app/signals"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

var negativeMoods = map[domain.Mood]struct{}{
	domain.MoodSad:         {},
	domain.MoodAngry:       {},
	domain.MoodAnxious:     {},
	domain.MoodFrustrated:  {},
	domain.MoodOverwhelmed: {},
	domain.MoodStressed:    {},
	domain.MoodDepressed:   {},
	domain.MoodLonely:      {},
}

var boundaryKeywords = []string{
	"boundary", "violated", "overwhelmed", "used", "taken advantage", "disrespected",
}

// predicate decides whether one trigger fires for a context.
type predicate func(t domain.CoachingTrigger, cctx *domain.CoachingContext, now time.Time) bool

// predicates is the trigger table. A new trigger type is one more entry here.
var predicates = map[domain.TriggerType]predicate{
	domain.TriggerNegativeMoodPattern: negativeMoodPattern,
	domain.TriggerLifeAreaDecline:     lifeAreaDecline,
	domain.TriggerRelationshipStress:  relationshipStress,
	domain.TriggerBoundaryViolation:   boundaryViolation,
}

// triggeredBy maps a trigger type to the session origin it produces.
var triggeredBy = map[domain.TriggerType]domain.TriggeredBy{
	domain.TriggerNegativeMoodPattern: domain.TriggeredByMoodTrend,
	domain.TriggerLifeAreaDecline:     domain.TriggeredByLifeAreaCollapse,
	domain.TriggerRelationshipStress:  domain.TriggeredByUpset,
}

// TriggeredByFor returns the session origin for a trigger type.
func TriggeredByFor(t domain.TriggerType) domain.TriggeredBy {
	if tb, ok := triggeredBy[t]; ok {
		return tb
	}
	return domain.TriggeredByManual
}

// DefaultTriggers is the trigger configuration used when a user has none.
func DefaultTriggers() []domain.CoachingTrigger {
	return []domain.CoachingTrigger{
		{
			Type:        domain.TriggerNegativeMoodPattern,
			Enabled:     true,
			Threshold:   domain.TriggerThreshold{Occurrences: 3, Timeframe: 7},
			Description: "Multiple negative mood entries detected in the past week",
		},
		{
			Type:        domain.TriggerLifeAreaDecline,
			Enabled:     true,
			Threshold:   domain.TriggerThreshold{Occurrences: 2, Timeframe: 14},
			Description: "Several life areas are declining",
		},
		{
			Type:        domain.TriggerRelationshipStress,
			Enabled:     true,
			Threshold:   domain.TriggerThreshold{Occurrences: 3, Timeframe: 7},
			Description: "Recurring tension with someone close to you",
		},
		{
			Type:        domain.TriggerBoundaryViolation,
			Enabled:     true,
			Threshold:   domain.TriggerThreshold{Occurrences: 1, Timeframe: 3},
			Description: "Possible boundary violation mentioned in your journal",
		},
	}
}

// Evaluator runs the trigger table against a context.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now}
}

// Evaluate returns the first enabled trigger, in declaration order, whose
// predicate holds. Invalid or unknown triggers are skipped.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	cctx *domain.CoachingContext,
	triggers []domain.CoachingTrigger,
) (domain.CoachingTrigger, bool) {
	if cctx == nil {
		return domain.CoachingTrigger{}, false
	}
	log := observability.LoggerFromContext(ctx).With("user_id", cctx.UserID)
	now := e.now()

	for _, t := range triggers {
		if !t.Enabled {
			continue
		}
		if !t.Valid() {
			log.Warn("skipping trigger", "trigger_type", t.Type, "error", domain.ErrInvalidTriggerConfig)
			continue
		}
		pred, ok := predicates[t.Type]
		if !ok {
			log.Warn("unknown trigger type", "trigger_type", t.Type)
			continue
		}
		if pred(t, cctx, now) {
			log.Debug("trigger fired", "trigger_type", t.Type)
			return t, true
		}
	}
	return domain.CoachingTrigger{}, false
}

func negativeMoodPattern(t domain.CoachingTrigger, cctx *domain.CoachingContext, now time.Time) bool {
	cutoff := now.Add(-time.Duration(t.Threshold.Timeframe) * day)
	count := 0
	for _, e := range cctx.RecentEntries {
		if _, negative := negativeMoods[e.Mood]; negative && !e.Date.Before(cutoff) {
			count++
		}
	}
	return count >= t.Threshold.Occurrences
}

func lifeAreaDecline(t domain.CoachingTrigger, cctx *domain.CoachingContext, _ time.Time) bool {
	count := 0
	for _, trend := range cctx.LifeAreaTrends {
		if trend.Trend == domain.TrendDeclining {
			count++
		}
	}
	return count >= t.Threshold.Occurrences
}

func relationshipStress(t domain.CoachingTrigger, cctx *domain.CoachingContext, _ time.Time) bool {
	for _, rel := range cctx.RelationshipDynamics {
		if rel.SentimentTrend == domain.SentimentNegative && rel.MentionFrequency >= t.Threshold.Occurrences {
			return true
		}
	}
	return false
}

func boundaryViolation(t domain.CoachingTrigger, cctx *domain.CoachingContext, now time.Time) bool {
	cutoff := now.Add(-time.Duration(t.Threshold.Timeframe) * day)
	for _, e := range cctx.RecentEntries {
		if e.Date.Before(cutoff) {
			continue
		}
		if signals.ContainsAny(e.Title+"\n"+e.Body, boundaryKeywords) {
			return true
		}
	}
	return false
}
