package coaching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// FallbackGuidance replaces the generated text when generation fails.
const FallbackGuidance = "I'm here to help you reflect on what you've been going through. " +
	"Take a moment to notice how you feel right now, and be gentle with yourself."

const (
	DefaultSummaryLimit      = 500
	DefaultGenerationTimeout = 20 * time.Second

	baseInsightConfidence = 85
	resetRitualDays       = 14
)

// Synthesizer turns generated guidance plus context into insights and
// recommendations.
type Synthesizer struct {
	gen          domain.TextGenerator
	timeout      time.Duration
	summaryLimit int
	now          func() time.Time
}

func NewSynthesizer(gen domain.TextGenerator, timeout time.Duration, summaryLimit int, now func() time.Time) *Synthesizer {
	if summaryLimit <= 0 {
		summaryLimit = DefaultSummaryLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{
		gen:          gen,
		timeout:      timeout,
		summaryLimit: summaryLimit,
		now:          now,
	}
}

// Populate fills session.Insights and session.Recommendations. focus is the
// entry that triggered the session, if any. Generation failures degrade to
// FallbackGuidance and never fail the session.
func (s *Synthesizer) Populate(
	ctx context.Context,
	session *domain.CoachingSession,
	cctx *domain.CoachingContext,
	focus *domain.RecentEntry,
	templateID domain.PromptTemplateID,
) {
	text := s.generate(ctx, session, cctx, focus, templateID)
	now := s.now()

	var insights []domain.CoachingInsight
	if focus != nil && templateID == domain.PromptUrgentSupport {
		insights = append(insights, urgentInsight(*focus, cctx.HasEntry(focus.ID), now))
	}
	insights = append(insights, s.baseInsight(session, cctx, focus, text, now))
	insights = append(insights, relationshipInsights(cctx, now)...)

	recs := make([]domain.CoachingRecommendation, 0, len(insights)+1)
	for _, in := range insights {
		if in.Priority.IsElevated() {
			recs = append(recs, recommendationFor(session.ID, in, now))
		}
	}
	if rec, ok := boundaryReset(session.ID, cctx, now); ok {
		recs = append(recs, rec)
	}

	session.Insights = insights
	session.Recommendations = recs
}

func (s *Synthesizer) generate(
	ctx context.Context,
	session *domain.CoachingSession,
	cctx *domain.CoachingContext,
	focus *domain.RecentEntry,
	templateID domain.PromptTemplateID,
) string {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_id", session.UserID,
		"template", templateID,
	)
	if s.gen == nil {
		log.Warn("no text generator configured, using fallback")
		return FallbackGuidance
	}

	genCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.gen.Generate(genCtx, templateID, domain.PromptPayload{
		UserID:      session.UserID,
		TriggeredBy: session.TriggeredBy,
		TriggerNote: session.TriggerData.Context,
		FocusEntry:  focus,
		Context:     cctx,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		log.Warn("generation failed, using fallback",
			"error", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err),
			"elapsed_ms", time.Since(start).Milliseconds())
		return FallbackGuidance
	}

	log.Info("guidance generated", "elapsed_ms", time.Since(start).Milliseconds())
	return text
}

func (s *Synthesizer) baseInsight(
	session *domain.CoachingSession,
	cctx *domain.CoachingContext,
	focus *domain.RecentEntry,
	text string,
	now time.Time,
) domain.CoachingInsight {
	evidence := []domain.JournalEntryID{}
	areas := []string{}
	if focus != nil && cctx.HasEntry(focus.ID) {
		evidence = append(evidence, focus.ID)
		areas = append(areas, focus.LifeAreas...)
	} else {
		areas = lifeAreasOf(cctx.RecentEntries)
	}

	return domain.CoachingInsight{
		ID:                domain.InsightID(uuid.NewString()),
		Type:              domain.InsightPattern,
		Title:             insightTitle(session.TriggeredBy),
		Description:       truncate(strings.TrimSpace(text), s.summaryLimit),
		Confidence:        baseInsightConfidence,
		Evidence:          evidence,
		LifeAreasAffected: areas,
		Priority:          domain.PriorityMedium,
		CreatedAt:         now,
	}
}

// urgentInsight cites the focus entry only when it sits inside the window.
func urgentInsight(focus domain.RecentEntry, inWindow bool, now time.Time) domain.CoachingInsight {
	evidence := []domain.JournalEntryID{}
	if inWindow {
		evidence = append(evidence, focus.ID)
	}
	return domain.CoachingInsight{
		ID:                domain.InsightID(uuid.NewString()),
		Type:              domain.InsightEmotional,
		Title:             "You're going through something heavy",
		Description:       "Your latest entry shows signs of acute distress. Reaching out for support right now matters more than anything else.",
		Confidence:        90,
		Evidence:          evidence,
		LifeAreasAffected: append([]string{}, focus.LifeAreas...),
		Priority:          domain.PriorityUrgent,
		CreatedAt:         now,
	}
}

func relationshipInsights(cctx *domain.CoachingContext, now time.Time) []domain.CoachingInsight {
	var out []domain.CoachingInsight
	for _, rel := range cctx.RelationshipDynamics {
		if rel.SentimentTrend != domain.SentimentNegative {
			continue
		}
		evidence := make([]domain.JournalEntryID, 0, len(rel.EntryIDs))
		for _, id := range rel.EntryIDs {
			if cctx.HasEntry(id) {
				evidence = append(evidence, id)
			}
		}
		out = append(out, domain.CoachingInsight{
			ID:    domain.InsightID(uuid.NewString()),
			Type:  domain.InsightRelationship,
			Title: fmt.Sprintf("Tension around %s", rel.Person),
			Description: fmt.Sprintf(
				"%s came up in %d recent entries, mostly alongside difficult feelings.",
				rel.Person, rel.MentionFrequency),
			Confidence:        confidenceFor(rel.MentionFrequency),
			Evidence:          evidence,
			LifeAreasAffected: []string{"relationships"},
			Priority:          domain.PriorityHigh,
			CreatedAt:         now,
		})
	}
	return out
}

// recommendationFor maps one elevated insight to exactly one recommendation.
func recommendationFor(sessionID domain.SessionID, in domain.CoachingInsight, now time.Time) domain.CoachingRecommendation {
	rec := domain.CoachingRecommendation{
		ID:        domain.RecommendationID(uuid.NewString()),
		SessionID: sessionID,
		Status:    domain.RecommendationSuggested,
		CreatedAt: now,
	}

	switch {
	case in.Type == domain.InsightEmotional && in.Priority == domain.PriorityUrgent:
		rec.Type = domain.RecommendationSupportOutreach
		rec.Title = "Reach out for support today"
		rec.Description = "Talk to someone you trust or a professional. You don't have to carry this alone."
		rec.Timeframe = "today"
		rec.Difficulty = domain.DifficultyModerate
		rec.ExpectedImpact = domain.ImpactHigh
		rec.ActionSteps = []domain.ActionStep{
			newStep(1, "Contact someone you trust", "Call or message a friend, family member or counselor.", "15 minutes", true),
			newStep(2, "Write down what you need", "Name one thing that would make the next hour easier.", "5 minutes", false),
		}
	case in.Type == domain.InsightEmotional:
		rec.Type = domain.RecommendationSelfCare
		rec.Title = "Make room for self-care"
		rec.Description = "Schedule a small restorative activity before the day ends."
		rec.Timeframe = "this week"
		rec.Difficulty = domain.DifficultyEasy
		rec.ExpectedImpact = domain.ImpactMedium
		rec.ActionSteps = []domain.ActionStep{
			newStep(1, "Pick one restorative activity", "A walk, a bath, music, anything that calms you.", "10 minutes", true),
		}
	case in.Type == domain.InsightRelationship:
		rec.Type = domain.RecommendationCommunication
		rec.Title = "Clarify what you need in this relationship"
		rec.Description = in.Description
		rec.Timeframe = "this week"
		rec.Difficulty = domain.DifficultyModerate
		rec.ExpectedImpact = domain.ImpactHigh
		rec.ActionSteps = []domain.ActionStep{
			newStep(1, "Journal about the pattern", "Write what happens before and after these moments.", "15 minutes", true),
			newStep(2, "Plan one honest conversation", "Decide what you want to say and when.", "20 minutes", false),
		}
	default:
		rec.Type = domain.RecommendationMindsetShift
		rec.Title = "Reframe the pattern"
		rec.Description = in.Description
		rec.Timeframe = "this week"
		rec.Difficulty = domain.DifficultyModerate
		rec.ExpectedImpact = domain.ImpactMedium
		rec.ActionSteps = []domain.ActionStep{
			newStep(1, "Notice the recurring thought", "Write it down the next time it shows up.", "5 minutes", true),
			newStep(2, "Write a kinder alternative", "Reword the thought as you would for a friend.", "10 minutes", false),
		}
	}
	return rec
}

// boundaryReset fires once when any life area is declining and its last
// ritual is older than resetRitualDays.
func boundaryReset(sessionID domain.SessionID, cctx *domain.CoachingContext, now time.Time) (domain.CoachingRecommendation, bool) {
	for _, trend := range cctx.LifeAreaTrends {
		if trend.Trend != domain.TrendDeclining || trend.DaysSinceRitual <= resetRitualDays {
			continue
		}
		return domain.CoachingRecommendation{
			ID:          domain.RecommendationID(uuid.NewString()),
			SessionID:   sessionID,
			Type:        domain.RecommendationBoundaryReset,
			Title:       "Time for a boundary reset",
			Description: "Some areas of your life have been declining without a reset ritual. A short reset can help you reclaim them.",
			ActionSteps: []domain.ActionStep{
				newStep(1, "Start Reset Ritual", "Set aside quiet time to review your boundaries and recommit to one.", "30 minutes", true),
			},
			Timeframe:      "this week",
			Difficulty:     domain.DifficultyModerate,
			ExpectedImpact: domain.ImpactHigh,
			Status:         domain.RecommendationSuggested,
			CreatedAt:      now,
		}, true
	}
	return domain.CoachingRecommendation{}, false
}

func newStep(order int, title, description, estimated string, required bool) domain.ActionStep {
	return domain.ActionStep{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   description,
		Order:         order,
		EstimatedTime: estimated,
		Required:      required,
		Completed:     false,
	}
}

func insightTitle(tb domain.TriggeredBy) string {
	switch tb {
	case domain.TriggeredByMoodTrend:
		return "A difficult stretch in your mood"
	case domain.TriggeredByLifeAreaCollapse:
		return "Parts of your life need attention"
	case domain.TriggeredByUpset:
		return "Relationship stress is building"
	case domain.TriggeredByJournal:
		return "Reflecting on your latest entry"
	default:
		return "Coaching insight"
	}
}

func confidenceFor(mentions int) int {
	c := 60 + 5*mentions
	if c > 95 {
		c = 95
	}
	return c
}

func lifeAreasOf(entries []domain.RecentEntry) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range entries {
		for _, a := range e.LifeAreas {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// truncate returns at most limit runes of s.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
