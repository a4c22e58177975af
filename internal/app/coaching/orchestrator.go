package coaching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/wisdom-coach/internal/app/signals"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

var urgentKeywords = []string{
	"crisis", "breakdown", "can't handle", "can’t handle", "giving up", "hopeless",
}

var distressMoods = map[domain.Mood]struct{}{
	domain.MoodSad:         {},
	domain.MoodAngry:       {},
	domain.MoodAnxious:     {},
	domain.MoodOverwhelmed: {},
	domain.MoodDepressed:   {},
	domain.MoodStressed:    {},
	domain.MoodLonely:      {},
}

const distressMoodScore = 3

// ActiveSessionPolicy controls whether a user may hold several active
// sessions at once.
type ActiveSessionPolicy string

const (
	PolicyAllowConcurrent ActiveSessionPolicy = "allow_concurrent"
	PolicySingleActive    ActiveSessionPolicy = "single_active"
)

// ParsePolicy maps a config string to a policy, defaulting to concurrent.
func ParsePolicy(s string) ActiveSessionPolicy {
	if ActiveSessionPolicy(s) == PolicySingleActive {
		return PolicySingleActive
	}
	return PolicyAllowConcurrent
}

// Dependencies are the collaborators the orchestrator needs.
type Dependencies struct {
	Journal   domain.JournalSource
	Generator domain.TextGenerator
	People    domain.PeopleExtractor
	Triggers  domain.TriggerConfigLoader
	Sessions  domain.SessionStore

	LifeAreas domain.LifeAreaTrendProducer
	Patterns  domain.BehavioralPatternProducer
	Goals     domain.GoalProgressProducer
}

// Options tune the coaching cycle.
type Options struct {
	LookbackDays       int
	UrgentLookbackDays int
	GenerationTimeout  time.Duration
	SummaryLimit       int
	Policy             ActiveSessionPolicy
	Now                func() time.Time
}

// Orchestrator owns the coaching session lifecycle.
type Orchestrator struct {
	builder   *ContextBuilder
	evaluator *Evaluator
	synth     *Synthesizer
	triggers  domain.TriggerConfigLoader
	sessions  domain.SessionStore

	lookbackDays       int
	urgentLookbackDays int
	policy             ActiveSessionPolicy
	now                func() time.Time
}

func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.UrgentLookbackDays <= 0 {
		opts.UrgentLookbackDays = UrgentLookbackDays
	}
	if opts.GenerationTimeout == 0 {
		opts.GenerationTimeout = DefaultGenerationTimeout
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAllowConcurrent
	}

	builder := NewContextBuilder(deps.Journal, deps.People,
		WithLifeAreaTrends(deps.LifeAreas),
		WithBehavioralPatterns(deps.Patterns),
		WithGoalProgress(deps.Goals),
		WithClock(now),
	)

	return &Orchestrator{
		builder:            builder,
		evaluator:          NewEvaluator(now),
		synth:              NewSynthesizer(deps.Generator, opts.GenerationTimeout, opts.SummaryLimit, now),
		triggers:           deps.Triggers,
		sessions:           deps.Sessions,
		lookbackDays:       opts.LookbackDays,
		urgentLookbackDays: opts.UrgentLookbackDays,
		policy:             opts.Policy,
		now:                now,
	}
}

// CheckTriggers runs one periodic cycle for userID. It returns nil when no
// trigger fires. A persistence failure returns both the session and an error
// wrapping domain.ErrPersistence.
func (o *Orchestrator) CheckTriggers(ctx context.Context, userID domain.UserID) (*domain.CoachingSession, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID, "path", "periodic")
	start := time.Now()

	if blocked, err := o.blockedByActiveSession(ctx, userID); err != nil || blocked {
		return nil, err
	}

	triggers := o.loadTriggers(ctx, userID)

	cctx, err := o.builder.Build(ctx, userID, o.lookbackDays)
	if err != nil {
		log.Error("failed to build coaching context", "error", err)
		return nil, err
	}

	trigger, fired := o.evaluator.Evaluate(ctx, cctx, triggers)
	if !fired {
		log.Info("no trigger fired",
			"entries", len(cctx.RecentEntries),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil
	}

	session := o.newSession(userID, TriggeredByFor(trigger.Type), domain.TriggerData{
		Context: trigger.Description,
	})
	log = log.With("session_id", session.ID, "trigger_type", trigger.Type)
	log.Info("trigger fired, creating session")

	o.synth.Populate(ctx, session, cctx, nil, domain.PromptPeriodicCoaching)

	err = o.PersistSession(ctx, session)
	log.Info("coaching cycle end",
		"insights", len(session.Insights),
		"recommendations", len(session.Recommendations),
		"elapsed_ms", time.Since(start).Milliseconds())
	return session, err
}

// ProcessJournalEntry runs the immediate path for a freshly written entry.
// It returns nil unless the entry signals acute distress.
func (o *Orchestrator) ProcessJournalEntry(
	ctx context.Context,
	userID domain.UserID,
	entry *domain.JournalEntry,
) (*domain.CoachingSession, error) {
	if entry == nil || !IsUrgent(entry) {
		return nil, nil
	}

	log := observability.LoggerFromContext(ctx).With(
		"user_id", userID,
		"entry_id", entry.ID,
		"path", "urgent",
	)
	start := time.Now()

	if blocked, err := o.blockedByActiveSession(ctx, userID); err != nil || blocked {
		return nil, err
	}

	if entry.CreatedAt.IsZero() {
		stamped := *entry
		stamped.CreatedAt = o.now()
		entry = &stamped
	}

	cctx, err := o.builder.Build(ctx, userID, o.urgentLookbackDays, entry)
	if err != nil {
		log.Error("failed to build urgent context", "error", err)
		return nil, err
	}

	focus := toRecentEntry(entry)
	entryID := entry.ID
	session := o.newSession(userID, domain.TriggeredByJournal, domain.TriggerData{
		EntryID: &entryID,
		Context: "Urgent support needed based on journal entry",
	})
	log = log.With("session_id", session.ID)
	log.Warn("urgent journal entry, creating session")

	o.synth.Populate(ctx, session, cctx, &focus, domain.PromptUrgentSupport)

	err = o.PersistSession(ctx, session)
	log.Info("urgent cycle end",
		"insights", len(session.Insights),
		"recommendations", len(session.Recommendations),
		"elapsed_ms", time.Since(start).Milliseconds())
	return session, err
}

// PersistSession writes the session through to the store (upsert by id).
func (o *Orchestrator) PersistSession(ctx context.Context, session *domain.CoachingSession) error {
	if session == nil {
		return fmt.Errorf("%w: nil session", domain.ErrPersistence)
	}
	if err := o.sessions.SaveSession(ctx, session); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to persist session",
			"session_id", session.ID,
			"user_id", session.UserID,
			"error", err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// IsUrgent reports whether an entry must bypass the periodic cycle.
func IsUrgent(entry *domain.JournalEntry) bool {
	if entry == nil {
		return false
	}
	if signals.ContainsAny(entry.Title+"\n"+entry.Body, urgentKeywords) {
		return true
	}
	_, distressed := distressMoods[entry.Mood]
	return distressed && entry.MoodScore != nil && *entry.MoodScore <= distressMoodScore
}

func (o *Orchestrator) newSession(userID domain.UserID, tb domain.TriggeredBy, data domain.TriggerData) *domain.CoachingSession {
	return &domain.CoachingSession{
		ID:              domain.SessionID(uuid.NewString()),
		UserID:          userID,
		TriggeredBy:     tb,
		TriggerData:     data,
		Status:          domain.SessionActive,
		CreatedAt:       o.now(),
		Insights:        []domain.CoachingInsight{},
		Recommendations: []domain.CoachingRecommendation{},
	}
}

func (o *Orchestrator) loadTriggers(ctx context.Context, userID domain.UserID) []domain.CoachingTrigger {
	if o.triggers == nil {
		return DefaultTriggers()
	}
	triggers, err := o.triggers.LoadTriggerConfig(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to load trigger config, using defaults",
			"user_id", userID,
			"error", err)
		return DefaultTriggers()
	}
	if len(triggers) == 0 {
		return DefaultTriggers()
	}
	return triggers
}

func (o *Orchestrator) blockedByActiveSession(ctx context.Context, userID domain.UserID) (bool, error) {
	if o.policy != PolicySingleActive {
		return false, nil
	}
	active, err := o.sessions.ListActiveSessions(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list active sessions: %w", err)
	}
	if len(active) > 0 {
		observability.LoggerFromContext(ctx).Info("active session exists, skipping",
			"user_id", userID,
			"active_session_id", active[0].ID)
		return true, nil
	}
	return false, nil
}
