package firestore

import (
	"time"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

type sessionDoc struct {
	UserID          string              `firestore:"user_id"`
	TriggeredBy     string              `firestore:"triggered_by"`
	TriggerEntryID  *string             `firestore:"trigger_entry_id"`
	TriggerContext  string              `firestore:"trigger_context"`
	Status          string              `firestore:"status"`
	CreatedAt       time.Time           `firestore:"created_at"`
	Insights        []insightDoc        `firestore:"insights"`
	Recommendations []recommendationDoc `firestore:"recommendations"`
}

type insightDoc struct {
	ID                string    `firestore:"id"`
	Type              string    `firestore:"type"`
	Title             string    `firestore:"title"`
	Description       string    `firestore:"description"`
	Confidence        int       `firestore:"confidence"`
	Evidence          []string  `firestore:"evidence"`
	LifeAreasAffected []string  `firestore:"life_areas_affected"`
	Priority          string    `firestore:"priority"`
	CreatedAt         time.Time `firestore:"created_at"`
}

type actionStepDoc struct {
	ID            string `firestore:"id"`
	Title         string `firestore:"title"`
	Description   string `firestore:"description"`
	Order         int    `firestore:"order"`
	EstimatedTime string `firestore:"estimated_time"`
	Required      bool   `firestore:"required"`
	Completed     bool   `firestore:"completed"`
}

type recommendationDoc struct {
	ID             string          `firestore:"id"`
	Type           string          `firestore:"type"`
	Title          string          `firestore:"title"`
	Description    string          `firestore:"description"`
	ActionSteps    []actionStepDoc `firestore:"action_steps"`
	Timeframe      string          `firestore:"timeframe"`
	Difficulty     string          `firestore:"difficulty"`
	ExpectedImpact string          `firestore:"expected_impact"`
	Status         string          `firestore:"status"`
	CreatedAt      time.Time       `firestore:"created_at"`
}

type triggerDoc struct {
	Type        string `firestore:"type"`
	Enabled     bool   `firestore:"enabled"`
	Occurrences int    `firestore:"occurrences"`
	Timeframe   int    `firestore:"timeframe"`
	Description string `firestore:"description"`
}

type triggerConfigDoc struct {
	Triggers  []triggerDoc `firestore:"triggers"`
	UpdatedAt time.Time    `firestore:"updated_at"`
}

func newSessionDoc(s *domain.CoachingSession) sessionDoc {
	doc := sessionDoc{
		UserID:          string(s.UserID),
		TriggeredBy:     string(s.TriggeredBy),
		TriggerContext:  s.TriggerData.Context,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		Insights:        make([]insightDoc, 0, len(s.Insights)),
		Recommendations: make([]recommendationDoc, 0, len(s.Recommendations)),
	}
	if s.TriggerData.EntryID != nil {
		v := string(*s.TriggerData.EntryID)
		doc.TriggerEntryID = &v
	}

	for _, in := range s.Insights {
		evidence := make([]string, 0, len(in.Evidence))
		for _, id := range in.Evidence {
			evidence = append(evidence, string(id))
		}
		doc.Insights = append(doc.Insights, insightDoc{
			ID:                string(in.ID),
			Type:              string(in.Type),
			Title:             in.Title,
			Description:       in.Description,
			Confidence:        in.Confidence,
			Evidence:          evidence,
			LifeAreasAffected: in.LifeAreasAffected,
			Priority:          string(in.Priority),
			CreatedAt:         in.CreatedAt,
		})
	}

	for _, r := range s.Recommendations {
		steps := make([]actionStepDoc, 0, len(r.ActionSteps))
		for _, st := range r.ActionSteps {
			steps = append(steps, actionStepDoc(st))
		}
		doc.Recommendations = append(doc.Recommendations, recommendationDoc{
			ID:             string(r.ID),
			Type:           string(r.Type),
			Title:          r.Title,
			Description:    r.Description,
			ActionSteps:    steps,
			Timeframe:      r.Timeframe,
			Difficulty:     string(r.Difficulty),
			ExpectedImpact: string(r.ExpectedImpact),
			Status:         string(r.Status),
			CreatedAt:      r.CreatedAt,
		})
	}
	return doc
}

func (d sessionDoc) toDomain(id domain.SessionID) *domain.CoachingSession {
	s := &domain.CoachingSession{
		ID:          id,
		UserID:      domain.UserID(d.UserID),
		TriggeredBy: domain.TriggeredBy(d.TriggeredBy),
		TriggerData: domain.TriggerData{
			Context: d.TriggerContext,
		},
		Status:          domain.SessionStatus(d.Status),
		CreatedAt:       d.CreatedAt,
		Insights:        make([]domain.CoachingInsight, 0, len(d.Insights)),
		Recommendations: make([]domain.CoachingRecommendation, 0, len(d.Recommendations)),
	}
	if d.TriggerEntryID != nil {
		eid := domain.JournalEntryID(*d.TriggerEntryID)
		s.TriggerData.EntryID = &eid
	}

	for _, in := range d.Insights {
		evidence := make([]domain.JournalEntryID, 0, len(in.Evidence))
		for _, e := range in.Evidence {
			evidence = append(evidence, domain.JournalEntryID(e))
		}
		areas := in.LifeAreasAffected
		if areas == nil {
			areas = []string{}
		}
		s.Insights = append(s.Insights, domain.CoachingInsight{
			ID:                domain.InsightID(in.ID),
			Type:              domain.InsightType(in.Type),
			Title:             in.Title,
			Description:       in.Description,
			Confidence:        in.Confidence,
			Evidence:          evidence,
			LifeAreasAffected: areas,
			Priority:          domain.Priority(in.Priority),
			CreatedAt:         in.CreatedAt,
		})
	}

	for _, r := range d.Recommendations {
		steps := make([]domain.ActionStep, 0, len(r.ActionSteps))
		for _, st := range r.ActionSteps {
			steps = append(steps, domain.ActionStep(st))
		}
		s.Recommendations = append(s.Recommendations, domain.CoachingRecommendation{
			ID:             domain.RecommendationID(r.ID),
			SessionID:      id,
			Type:           domain.RecommendationType(r.Type),
			Title:          r.Title,
			Description:    r.Description,
			ActionSteps:    steps,
			Timeframe:      r.Timeframe,
			Difficulty:     domain.Difficulty(r.Difficulty),
			ExpectedImpact: domain.Impact(r.ExpectedImpact),
			Status:         domain.RecommendationStatus(r.Status),
			CreatedAt:      r.CreatedAt,
		})
	}
	return s
}

func newTriggerConfigDoc(triggers []domain.CoachingTrigger, now time.Time) triggerConfigDoc {
	doc := triggerConfigDoc{
		Triggers:  make([]triggerDoc, 0, len(triggers)),
		UpdatedAt: now,
	}
	for _, t := range triggers {
		doc.Triggers = append(doc.Triggers, triggerDoc{
			Type:        string(t.Type),
			Enabled:     t.Enabled,
			Occurrences: t.Threshold.Occurrences,
			Timeframe:   t.Threshold.Timeframe,
			Description: t.Description,
		})
	}
	return doc
}

func (d triggerConfigDoc) toDomain() []domain.CoachingTrigger {
	out := make([]domain.CoachingTrigger, 0, len(d.Triggers))
	for _, t := range d.Triggers {
		out = append(out, domain.CoachingTrigger{
			Type:    domain.TriggerType(t.Type),
			Enabled: t.Enabled,
			Threshold: domain.TriggerThreshold{
				Occurrences: t.Occurrences,
				Timeframe:   t.Timeframe,
			},
			Description: t.Description,
		})
	}
	return out
}
