package domain

import (
	"context"
	"time"
)

// PromptTemplateID selects the prompt template used for a generation call.
type PromptTemplateID string

const (
	PromptPeriodicCoaching PromptTemplateID = "coaching.periodic"
	PromptUrgentSupport    PromptTemplateID = "coaching.urgent"
)

// PromptPayload is the context handed to the text generator.
type PromptPayload struct {
	UserID      UserID
	TriggeredBy TriggeredBy
	TriggerNote string
	FocusEntry  *RecentEntry
	Context     *CoachingContext
}

// TextGenerator is the black-box natural-language capability.
type TextGenerator interface {
	Generate(ctx context.Context, templateID PromptTemplateID, payload PromptPayload) (string, error)
}

// PeopleExtractor finds the distinct people mentioned in a text.
type PeopleExtractor interface {
	ExtractPeopleMentions(text string) []string
}

// TriggerConfigLoader returns the triggers configured for a user,
// in declaration order. Defaults apply when the user has none.
type TriggerConfigLoader interface {
	LoadTriggerConfig(ctx context.Context, userID UserID) ([]CoachingTrigger, error)
}

// SessionStore defines coaching session persistence.
// SaveSession is an upsert keyed by session.ID.
type SessionStore interface {
	SaveSession(ctx context.Context, session *CoachingSession) error
	GetSession(ctx context.Context, id SessionID) (*CoachingSession, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*CoachingSession, error)
	ListActiveSessions(ctx context.Context, userID UserID) ([]*CoachingSession, error)
}

// LifeAreaTrendProducer populates CoachingContext.LifeAreaTrends.
type LifeAreaTrendProducer interface {
	LifeAreaTrends(ctx context.Context, userID UserID, entries []RecentEntry, now time.Time) ([]LifeAreaTrend, error)
}

// BehavioralPatternProducer populates CoachingContext.BehavioralPatterns.
type BehavioralPatternProducer interface {
	BehavioralPatterns(ctx context.Context, userID UserID, entries []RecentEntry, now time.Time) ([]BehavioralPattern, error)
}

// GoalProgressProducer populates CoachingContext.GoalProgress.
type GoalProgressProducer interface {
	GoalProgress(ctx context.Context, userID UserID, now time.Time) ([]GoalProgress, error)
}
