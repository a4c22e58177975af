package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/wisdom-coach/internal/app/journal"
	"github.com/PabloGalante/wisdom-coach/internal/auth"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

const defaultSessionLimit = 20

// Coach runs the coaching cycles.
type Coach interface {
	CheckTriggers(ctx context.Context, userID domain.UserID) (*domain.CoachingSession, error)
	ProcessJournalEntry(ctx context.Context, userID domain.UserID, entry *domain.JournalEntry) (*domain.CoachingSession, error)
}

// JournalRecorder stores new journal entries.
type JournalRecorder interface {
	Record(ctx context.Context, userID domain.UserID, entry *domain.JournalEntry) (*domain.JournalEntry, error)
}

type Deps struct {
	Coach    Coach
	Journal  JournalRecorder
	Sessions domain.SessionStore
	// Auth is optional; when nil requests are not authenticated.
	Auth *auth.Authenticator
}

type Server struct {
	coach    Coach
	journal  JournalRecorder
	sessions domain.SessionStore
	auth     *auth.Authenticator
}

func NewServer(deps Deps) http.Handler {
	s := &Server{
		coach:    deps.Coach,
		journal:  deps.Journal,
		sessions: deps.Sessions,
		auth:     deps.Auth,
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// /users/{userId}/journal-entries → record entry + urgent path
	mux.Handle("POST /users/{userId}/journal-entries", s.requireUser(s.handleCreateJournalEntry))
	// /users/{userId}/coaching/check → periodic cycle
	mux.Handle("POST /users/{userId}/coaching/check", s.requireUser(s.handleCheck))
	mux.Handle("GET /users/{userId}/coaching/sessions", s.requireUser(s.handleListSessions))

	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createJournalEntryRequest struct {
	ID              string    `json:"id,omitempty"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Mood            string    `json:"mood,omitempty"`
	MoodScore       *float64  `json:"mood_score,omitempty"`
	LinkedLifeAreas []string  `json:"linked_life_areas,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

type createJournalEntryResponse struct {
	Entry   *domain.JournalEntry    `json:"entry"`
	Session *domain.CoachingSession `json:"session"`
	Error   string                  `json:"error,omitempty"`
}

type checkResponse struct {
	Session *domain.CoachingSession `json:"session"`
	Error   string                  `json:"error,omitempty"`
}

type listSessionsResponse struct {
	Sessions []*domain.CoachingSession `json:"sessions"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userId"))

	var req createJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		badRequest(w, "body is required")
		return
	}

	entry, err := s.journal.Record(r.Context(), userID, &domain.JournalEntry{
		ID:              domain.JournalEntryID(req.ID),
		Title:           req.Title,
		Body:            req.Body,
		Mood:            domain.Mood(strings.ToLower(strings.TrimSpace(req.Mood))),
		MoodScore:       req.MoodScore,
		LinkedLifeAreas: req.LinkedLifeAreas,
		CreatedAt:       req.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, journal.ErrEmptyEntry) {
			badRequest(w, err.Error())
			return
		}
		internalError(w, r, err)
		return
	}

	session, err := s.coach.ProcessJournalEntry(r.Context(), userID, entry)
	resp := createJournalEntryResponse{Entry: entry, Session: session}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userId"))

	session, err := s.coach.CheckTriggers(r.Context(), userID)
	if err != nil {
		writeJSON(w, statusFor(err), checkResponse{Session: session, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Session: session})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userId"))

	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := s.sessions.ListSessionsByUser(r.Context(), userID, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(r.PathValue("id"))

	// sessions are private to their owner when auth is on
	var caller string
	if s.auth != nil {
		claims, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		caller = claims.UserID
	}

	session, err := s.sessions.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			notFound(w)
			return
		}
		internalError(w, r, err)
		return
	}
	if s.auth != nil && caller != string(session.UserID) {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// statusFor maps coaching errors to response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
