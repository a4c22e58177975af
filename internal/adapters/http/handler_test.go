package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/wisdom-coach/internal/adapters/http"
	"github.com/PabloGalante/wisdom-coach/internal/adapters/llm"
	"github.com/PabloGalante/wisdom-coach/internal/adapters/storage/memory"
	"github.com/PabloGalante/wisdom-coach/internal/app/coaching"
	journalapp "github.com/PabloGalante/wisdom-coach/internal/app/journal"
	"github.com/PabloGalante/wisdom-coach/internal/auth"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

type testServer struct {
	handler  http.Handler
	sessions *memory.SessionStore
	journal  *memory.JournalStore
}

func newTestServer(t *testing.T, authn *auth.Authenticator) *testServer {
	t.Helper()

	journalStore := memory.NewJournalStore()
	sessionStore := memory.NewSessionStore()
	journalSvc := journalapp.NewService(journalStore)

	orch := coaching.NewOrchestrator(coaching.Dependencies{
		Journal:   journalSvc,
		Generator: llm.NewMockGenerator(),
		Triggers:  memory.NewTriggerStore(coaching.DefaultTriggers()),
		Sessions:  sessionStore,
	}, coaching.Options{})

	return &testServer{
		handler: httpadapter.NewServer(httpadapter.Deps{
			Coach:    orch,
			Journal:  journalSvc,
			Sessions: sessionStore,
			Auth:     authn,
		}),
		sessions: sessionStore,
		journal:  journalStore,
	}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

type entryResponse struct {
	Entry   *domain.JournalEntry    `json:"entry"`
	Session *domain.CoachingSession `json:"session"`
	Error   string                  `json:"error"`
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateJournalEntryCalm(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodPost, "/users/u1/journal-entries",
		`{"title":"Walk","body":"A calm walk by the river","mood":"calm"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Entry)
	assert.Equal(t, domain.UserID("u1"), resp.Entry.UserID)
	assert.Nil(t, resp.Session)
}

func TestCreateJournalEntryUrgent(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodPost, "/users/u1/journal-entries",
		`{"body":"I feel hopeless and I can't handle this","mood":"overwhelmed","mood_score":2}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	assert.Equal(t, domain.TriggeredByJournal, resp.Session.TriggeredBy)
	require.NotNil(t, resp.Session.TriggerData.EntryID)
	assert.Equal(t, resp.Entry.ID, *resp.Session.TriggerData.EntryID)

	// persisted and retrievable
	w = srv.do(http.MethodGet, "/sessions/"+string(resp.Session.ID), "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodGet, "/users/u1/coaching/sessions?limit=5", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Sessions []*domain.CoachingSession `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Sessions, 1)
}

func TestCreateJournalEntryValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodPost, "/users/u1/journal-entries", `{"body":"  "}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPost, "/users/u1/journal-entries", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckWithNoHistory(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodPost, "/users/nobody/coaching/check", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":null}`, w.Body.String())
}

func TestCheckCreatesSession(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, srv.journal.AppendJournalEntry(ctx, &domain.JournalEntry{
			UserID:    "u1",
			Body:      "everything is irritating",
			Mood:      domain.MoodFrustrated,
			CreatedAt: time.Now().Add(-time.Duration(i+1) * time.Hour),
		}))
	}

	w := srv.do(http.MethodPost, "/users/u1/coaching/check", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Session *domain.CoachingSession `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Session)
	assert.Equal(t, domain.TriggeredByMoodTrend, resp.Session.TriggeredBy)
	assert.NotEmpty(t, resp.Session.Insights)
}

func TestGetSessionNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodGet, "/sessions/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSessionsBadLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodGet, "/users/u1/coaching/sessions?limit=zero", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	authn := auth.NewAuthenticator("secret")
	srv := newTestServer(t, authn)

	w := srv.do(http.MethodPost, "/users/u1/coaching/check", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := authn.Issue("u2", time.Hour)
	require.NoError(t, err)
	w = srv.do(http.MethodPost, "/users/u1/coaching/check", "", other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	mine, err := authn.Issue("u1", time.Hour)
	require.NoError(t, err)
	w = srv.do(http.MethodPost, "/users/u1/coaching/check", "", mine)
	assert.Equal(t, http.StatusOK, w.Code)

	// healthz stays public
	w = srv.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSessionHiddenFromOtherUsers(t *testing.T) {
	authn := auth.NewAuthenticator("secret")
	srv := newTestServer(t, authn)
	require.NoError(t, srv.sessions.SaveSession(context.Background(), &domain.CoachingSession{
		ID:     "s1",
		UserID: "u1",
		Status: domain.SessionActive,
	}))

	other, err := authn.Issue("u2", time.Hour)
	require.NoError(t, err)
	w := srv.do(http.MethodGet, "/sessions/s1", "", other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mine, err := authn.Issue("u1", time.Hour)
	require.NoError(t, err)
	w = srv.do(http.MethodGet, "/sessions/s1", "", mine)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSessionRequiresTokenBeforeLookup(t *testing.T) {
	srv := newTestServer(t, auth.NewAuthenticator("secret"))
	require.NoError(t, srv.sessions.SaveSession(context.Background(), &domain.CoachingSession{
		ID:     "s1",
		UserID: "u1",
		Status: domain.SessionActive,
	}))

	// existing and unknown ids look the same without a token
	w := srv.do(http.MethodGet, "/sessions/s1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = srv.do(http.MethodGet, "/sessions/missing", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingCoach struct{ err error }

func (f failingCoach) CheckTriggers(context.Context, domain.UserID) (*domain.CoachingSession, error) {
	return &domain.CoachingSession{ID: "s9", UserID: "u1"}, f.err
}

func (f failingCoach) ProcessJournalEntry(context.Context, domain.UserID, *domain.JournalEntry) (*domain.CoachingSession, error) {
	return nil, f.err
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"persistence", domain.ErrPersistence, http.StatusBadGateway},
		{"source", domain.ErrSourceUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := httpadapter.NewServer(httpadapter.Deps{
				Coach:    failingCoach{err: tc.err},
				Journal:  journalapp.NewService(memory.NewJournalStore()),
				Sessions: memory.NewSessionStore(),
			})
			req := httptest.NewRequest(http.MethodPost, "/users/u1/coaching/check", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), `"s9"`)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(http.MethodOptions, "/users/u1/coaching/check", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
