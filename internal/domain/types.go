package domain

type SessionID string
type UserID string
type InsightID string
type RecommendationID string

// Priority ranks how pressing an insight is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsElevated reports whether the priority demands a follow-up recommendation.
func (p Priority) IsElevated() bool {
	return p == PriorityHigh || p == PriorityUrgent
}
