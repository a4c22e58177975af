package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// ErrBudgetExceeded is returned when a user's daily generation budget is spent.
var ErrBudgetExceeded = errors.New("daily generation budget exceeded")

// SpendCheck is the outcome of a budget check.
type SpendCheck struct {
	Allowed     bool    `json:"allowed"`
	Remaining   float64 `json:"remaining"`
	CurrentCost float64 `json:"current_cost"`
	DailyLimit  float64 `json:"daily_limit"`
	Reason      string  `json:"reason,omitempty"`
}

// SpendLedger tracks generation spend per user per day.
type SpendLedger interface {
	CheckSpendLimit(ctx context.Context, userID string, estimatedCost float64) (*SpendCheck, error)
	RecordSpend(ctx context.Context, userID string, cost float64) error
}

// BudgetedGenerator guards a TextGenerator with a per-user daily spend limit.
type BudgetedGenerator struct {
	next         domain.TextGenerator
	ledger       SpendLedger
	model        string
	outputTokens int
}

func NewBudgetedGenerator(next domain.TextGenerator, ledger SpendLedger, model string) *BudgetedGenerator {
	return &BudgetedGenerator{
		next:         next,
		ledger:       ledger,
		model:        model,
		outputTokens: 600,
	}
}

func (g *BudgetedGenerator) Generate(
	ctx context.Context,
	templateID domain.PromptTemplateID,
	payload domain.PromptPayload,
) (string, error) {
	userID := string(payload.UserID)
	prompt := BuildPrompt(templateID, payload)
	// roughly four characters per token
	inputTokens := (len(prompt.System) + len(prompt.User)) / 4
	cost := EstimateCost(inputTokens, g.outputTokens, g.model)

	check, err := g.ledger.CheckSpendLimit(ctx, userID, cost)
	if err != nil {
		return "", fmt.Errorf("check spend limit: %w", err)
	}
	if !check.Allowed {
		return "", fmt.Errorf("%w: %s", ErrBudgetExceeded, check.Reason)
	}

	text, err := g.next.Generate(ctx, templateID, payload)
	if err != nil {
		return "", err
	}

	if err := g.ledger.RecordSpend(ctx, userID, cost); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to record generation spend",
			"user_id", userID,
			"error", err)
	}
	return text, nil
}

type tokenPrice struct {
	input  float64
	output float64
}

// Cost per 1K tokens.
var modelPrices = map[string]tokenPrice{
	"gemini-2.5-flash":      {input: 0.0003, output: 0.0025},
	"gemini-2.5-flash-lite": {input: 0.0001, output: 0.0004},
	"gemini-2.5-pro":        {input: 0.00125, output: 0.01},
}

// EstimateCost estimates the cost of one call. Unknown models are priced
// like gemini-2.5-flash.
func EstimateCost(inputTokens, outputTokens int, model string) float64 {
	price, ok := modelPrices[model]
	if !ok {
		price = modelPrices["gemini-2.5-flash"]
	}
	return float64(inputTokens)/1000.0*price.input + float64(outputTokens)/1000.0*price.output
}
