package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, level.Level())

	SetLevel("WARN")
	assert.Equal(t, slog.LevelWarn, level.Level())

	SetLevel("nonsense")
	assert.Equal(t, slog.LevelInfo, level.Level())
}

func TestContextValues(t *testing.T) {
	var buf bytes.Buffer
	saved := logger
	logger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { logger = saved })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u-1")
	LoggerFromContext(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "u-1", line["auth_user_id"])

	assert.Same(t, Logger(), LoggerFromContext(context.Background()))
}
