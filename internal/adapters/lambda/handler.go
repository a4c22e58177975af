package lambdaadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/PabloGalante/wisdom-coach/internal/app/journal"
	"github.com/PabloGalante/wisdom-coach/internal/auth"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// Coach runs the immediate path for a new entry.
type Coach interface {
	ProcessJournalEntry(ctx context.Context, userID domain.UserID, entry *domain.JournalEntry) (*domain.CoachingSession, error)
}

type JournalRecorder interface {
	Record(ctx context.Context, userID domain.UserID, entry *domain.JournalEntry) (*domain.JournalEntry, error)
}

type journalEntryRequest struct {
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Mood            string    `json:"mood,omitempty"`
	MoodScore       *float64  `json:"mood_score,omitempty"`
	LinkedLifeAreas []string  `json:"linked_life_areas,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

type journalEntryResponse struct {
	Entry   *domain.JournalEntry    `json:"entry"`
	Session *domain.CoachingSession `json:"session"`
	Error   string                  `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JournalEntryHandler serves POST /journal-entries behind API Gateway.
// The user comes from the bearer token.
type JournalEntryHandler struct {
	coach   Coach
	journal JournalRecorder
	auth    *auth.Authenticator
}

func NewJournalEntryHandler(coach Coach, recorder JournalRecorder, authn *auth.Authenticator) *JournalEntryHandler {
	return &JournalEntryHandler{coach: coach, journal: recorder, auth: authn}
}

func (h *JournalEntryHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = observability.WithRequestID(ctx, req.RequestContext.RequestID)
	log := observability.LoggerFromContext(ctx)

	userID, err := h.userFromRequest(req)
	if err != nil {
		log.Warn("rejected journal entry request", "error", err)
		return errorResult(http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing authentication token"), nil
	}
	ctx = observability.WithUserID(ctx, userID)

	var body journalEntryRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return errorResult(http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON in request body"), nil
	}
	if strings.TrimSpace(body.Body) == "" {
		return errorResult(http.StatusBadRequest, "VALIDATION_ERROR", "body is required"), nil
	}

	entry, err := h.journal.Record(ctx, domain.UserID(userID), &domain.JournalEntry{
		Title:           body.Title,
		Body:            body.Body,
		Mood:            domain.Mood(strings.ToLower(strings.TrimSpace(body.Mood))),
		MoodScore:       body.MoodScore,
		LinkedLifeAreas: body.LinkedLifeAreas,
		CreatedAt:       body.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, journal.ErrEmptyEntry) {
			return errorResult(http.StatusBadRequest, "VALIDATION_ERROR", err.Error()), nil
		}
		log.Error("failed to record journal entry", "user_id", userID, "error", err)
		return errorResult(http.StatusInternalServerError, "PROCESSING_ERROR", "failed to record journal entry"), nil
	}

	session, err := h.coach.ProcessJournalEntry(ctx, domain.UserID(userID), entry)
	resp := journalEntryResponse{Entry: entry, Session: session}
	status := http.StatusCreated
	if err != nil {
		resp.Error = err.Error()
		status = statusFor(err)
	}
	return jsonResult(status, resp), nil
}

func (h *JournalEntryHandler) userFromRequest(req events.APIGatewayProxyRequest) (string, error) {
	header := req.Headers["Authorization"]
	if header == "" {
		header = req.Headers["authorization"]
	}
	token, err := auth.BearerToken(header)
	if err != nil {
		return "", err
	}
	claims, err := h.auth.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func jsonResult(status int, v any) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}
}

func errorResult(status int, code, message string) events.APIGatewayProxyResponse {
	return jsonResult(status, errorResponse{Error: message, Code: code})
}
