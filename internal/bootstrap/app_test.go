package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/wisdom-coach/internal/config"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

func localConfig() *config.Config {
	return &config.Config{
		Mode:                config.ModeLocal,
		StorageBackend:      "memory",
		JournalBackend:      "memory",
		UseMockLLM:          true,
		ActiveSessionPolicy: "allow_concurrent",
	}
}

func TestBuildLocal(t *testing.T) {
	app, err := Build(context.Background(), localConfig())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Coach)
	assert.Nil(t, app.Auth)
	assert.Nil(t, app.TriggerFile)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildWithTriggerFileAndAuth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
defaults:
  - type: boundary_violation
    enabled: true
    threshold: {occurrences: 1, timeframe: 3}
`), 0o600))

	cfg := localConfig()
	cfg.TriggerConfigPath = path
	cfg.JWTSecret = "secret"

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.TriggerFile)
	assert.NotNil(t, app.Auth)

	triggers, err := app.TriggerFile.LoadTriggerConfig(context.Background(), "anyone")
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, domain.TriggerBoundaryViolation, triggers[0].Type)
}

func TestBuildMissingTriggerFile(t *testing.T) {
	cfg := localConfig()
	cfg.TriggerConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidTriggerConfig)
}

func TestBuildPostgresRequiresURL(t *testing.T) {
	cfg := localConfig()
	cfg.JournalBackend = "postgres"

	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	app := &App{}
	calls := 0
	app.closers = append(app.closers, func() error { calls++; return nil })

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
	assert.Equal(t, 1, calls)
}
