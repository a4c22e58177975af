package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

// MockGenerator is a deterministic domain.TextGenerator for tests and local mode.
type MockGenerator struct {
	// Reply, when set, is returned verbatim.
	Reply string
	// Err, when set, is returned instead of a reply.
	Err error

	mu    sync.Mutex
	calls []domain.PromptTemplateID
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Calls returns the templates requested so far, in order.
func (m *MockGenerator) Calls() []domain.PromptTemplateID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PromptTemplateID(nil), m.calls...)
}

func (m *MockGenerator) Generate(ctx context.Context, templateID domain.PromptTemplateID, payload domain.PromptPayload) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, templateID)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}

	entries := 0
	if payload.Context != nil {
		entries = len(payload.Context.RecentEntries)
	}
	return fmt.Sprintf(
		"I notice %d recent entries and a session started by %s. What feels most important to look at first?",
		entries, payload.TriggeredBy,
	), nil
}
