package domain

import "time"

// ─────────────────────────────────────────
// Context (derived, rebuilt every cycle)
// ─────────────────────────────────────────

// RecentEntry is the per-entry view used by triggers and the synthesizer.
type RecentEntry struct {
	ID        JournalEntryID `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"-"`
	Mood      Mood           `json:"mood"`
	LifeAreas []string       `json:"life_areas"`
	Sentiment int            `json:"sentiment"`
	Date      time.Time      `json:"date"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// LifeAreaTrend describes how one life area is evolving.
type LifeAreaTrend struct {
	LifeArea        string         `json:"life_area"`
	Trend           TrendDirection `json:"trend"`
	DaysSinceRitual int            `json:"days_since_ritual"`
}

type SentimentTrend string

const (
	SentimentPositive SentimentTrend = "positive"
	SentimentNegative SentimentTrend = "negative"
	SentimentNeutral  SentimentTrend = "neutral"
)

// RelationshipDynamic aggregates every mention of one person in the window.
type RelationshipDynamic struct {
	Person           string           `json:"person"`
	MentionFrequency int              `json:"mention_frequency"`
	SentimentTrend   SentimentTrend   `json:"sentiment_trend"`
	LastMentioned    time.Time        `json:"last_mentioned"`
	EntryIDs         []JournalEntryID `json:"entry_ids"`
}

// BehavioralPattern is a recurring behaviour detected by a pluggable producer.
type BehavioralPattern struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Occurrences int              `json:"occurrences"`
	Evidence    []JournalEntryID `json:"evidence,omitempty"`
}

// GoalProgress reports progress of one user goal.
type GoalProgress struct {
	GoalID   string  `json:"goal_id"`
	Title    string  `json:"title"`
	Progress float64 `json:"progress"` // 0..1
}

// CoachingContext is the aggregated view of a user's recent journaling.
type CoachingContext struct {
	UserID       UserID    `json:"user_id"`
	LookbackDays int       `json:"lookback_days"`
	BuiltAt      time.Time `json:"built_at"`

	RecentEntries        []RecentEntry         `json:"recent_entries"`
	LifeAreaTrends       []LifeAreaTrend       `json:"life_area_trends"`
	RelationshipDynamics []RelationshipDynamic `json:"relationship_dynamics"`
	BehavioralPatterns   []BehavioralPattern   `json:"behavioral_patterns"`
	GoalProgress         []GoalProgress        `json:"goal_progress"`
}

// HasEntry reports whether the entry id was part of the context window.
func (c *CoachingContext) HasEntry(id JournalEntryID) bool {
	for _, e := range c.RecentEntries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────
// Triggers
// ─────────────────────────────────────────

type TriggerType string

const (
	TriggerNegativeMoodPattern TriggerType = "negative_mood_pattern"
	TriggerLifeAreaDecline     TriggerType = "life_area_decline"
	TriggerRelationshipStress  TriggerType = "relationship_stress"
	TriggerBoundaryViolation   TriggerType = "boundary_violation"
)

// TriggerThreshold bounds when a trigger fires.
// Timeframe is expressed in days.
type TriggerThreshold struct {
	Occurrences int `json:"occurrences" yaml:"occurrences"`
	Timeframe   int `json:"timeframe" yaml:"timeframe"`
}

// CoachingTrigger is one configured rule.
type CoachingTrigger struct {
	Type        TriggerType      `json:"type" yaml:"type"`
	Enabled     bool             `json:"enabled" yaml:"enabled"`
	Threshold   TriggerThreshold `json:"threshold" yaml:"threshold"`
	Description string           `json:"description" yaml:"description"`
}

// Valid reports whether the threshold values are usable.
func (t CoachingTrigger) Valid() bool {
	return t.Threshold.Occurrences >= 0 && t.Threshold.Timeframe >= 0
}

// ─────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────

type TriggeredBy string

const (
	TriggeredByJournal          TriggeredBy = "journal"
	TriggeredByUpset            TriggeredBy = "upset"
	TriggeredByMoodTrend        TriggeredBy = "mood_trend"
	TriggeredByLifeAreaCollapse TriggeredBy = "life_area_collapse"
	TriggeredByManual           TriggeredBy = "manual"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// TriggerData records what started a session.
type TriggerData struct {
	EntryID *JournalEntryID `json:"entry_id,omitempty"`
	Context string          `json:"context"`
}

// CoachingSession is created once per firing event.
type CoachingSession struct {
	ID              SessionID                `json:"id"`
	UserID          UserID                   `json:"user_id"`
	TriggeredBy     TriggeredBy              `json:"triggered_by"`
	TriggerData     TriggerData              `json:"trigger_data"`
	Status          SessionStatus            `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
	Insights        []CoachingInsight        `json:"insights"`
	Recommendations []CoachingRecommendation `json:"recommendations"`
}

type InsightType string

const (
	InsightPattern      InsightType = "pattern"
	InsightRelationship InsightType = "relationship"
	InsightEmotional    InsightType = "emotional"
	InsightLifeArea     InsightType = "life_area"
	InsightGrowth       InsightType = "growth"
)

// CoachingInsight is an evidence-backed observation. Immutable once created.
type CoachingInsight struct {
	ID                InsightID        `json:"id"`
	Type              InsightType      `json:"type"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Confidence        int              `json:"confidence"` // 0..100
	Evidence          []JournalEntryID `json:"evidence"`
	LifeAreasAffected []string         `json:"life_areas_affected"`
	Priority          Priority         `json:"priority"`
	CreatedAt         time.Time        `json:"created_at"`
}

type RecommendationType string

const (
	RecommendationMindsetShift    RecommendationType = "mindset_shift"
	RecommendationBoundaryReset   RecommendationType = "boundary_reset"
	RecommendationSelfCare        RecommendationType = "self_care"
	RecommendationSupportOutreach RecommendationType = "support_outreach"
	RecommendationCommunication   RecommendationType = "communication"
)

type RecommendationStatus string

const (
	RecommendationSuggested  RecommendationStatus = "suggested"
	RecommendationAccepted   RecommendationStatus = "accepted"
	RecommendationInProgress RecommendationStatus = "in_progress"
	RecommendationCompleted  RecommendationStatus = "completed"
)

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// ActionStep is one step of a recommendation.
type ActionStep struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Order         int    `json:"order"`
	EstimatedTime string `json:"estimated_time"`
	Required      bool   `json:"required"`
	Completed     bool   `json:"completed"`
}

// CoachingRecommendation is an actionable suggestion tied to a session.
type CoachingRecommendation struct {
	ID             RecommendationID     `json:"id"`
	SessionID      SessionID            `json:"session_id"`
	Type           RecommendationType   `json:"type"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	ActionSteps    []ActionStep         `json:"action_steps"`
	Timeframe      string               `json:"timeframe"`
	Difficulty     Difficulty           `json:"difficulty"`
	ExpectedImpact Impact               `json:"expected_impact"`
	Status         RecommendationStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
}
