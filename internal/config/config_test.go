package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/wisdom-coach/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.UseMockLLM)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 20*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, "allow_concurrent", cfg.ActiveSessionPolicy)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WISDOM_MODE", "gcp")
	t.Setenv("WISDOM_GCP_PROJECT", "my-project")
	t.Setenv("WISDOM_COACHING_ACTIVE_SESSION_POLICY", "single_active")
	t.Setenv("WISDOM_LLM_MOCK", "true")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ModeGCP, cfg.Mode)
	assert.Equal(t, "my-project", cfg.GCPProjectID)
	assert.Equal(t, "single_active", cfg.ActiveSessionPolicy)
	assert.True(t, cfg.UseMockLLM)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("WISDOM_JOURNAL_BACKEND", "postgres")

	v, err := New("")
	require.NoError(t, err)
	_, err = Load(v)
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisdom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\ncoaching:\n  summary_limit: 120\n"), 0o644))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 120, cfg.SummaryLimit)
}

const triggerYAML = `
defaults:
  - type: negative_mood_pattern
    enabled: true
    threshold: {occurrences: 3, timeframe: 7}
    description: Multiple negative moods
  - type: boundary_violation
    enabled: true
    threshold: {occurrences: 1, timeframe: -2}
users:
  u-42:
    - type: relationship_stress
      enabled: true
      threshold: {occurrences: 2, timeframe: 7}
`

func TestParseTriggerFile(t *testing.T) {
	tf, err := ParseTriggerFile([]byte(triggerYAML))
	require.NoError(t, err)

	require.Len(t, tf.Defaults, 2)
	assert.Equal(t, domain.TriggerNegativeMoodPattern, tf.Defaults[0].Type)
	assert.Equal(t, 3, tf.Defaults[0].Threshold.Occurrences)
	assert.True(t, tf.Defaults[0].Enabled)
	assert.False(t, tf.Defaults[1].Enabled, "negative timeframe disables the trigger")

	_, err = ParseTriggerFile([]byte("defaults: [unclosed"))
	assert.Error(t, err)
}

func TestFileTriggerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(triggerYAML), 0o644))

	fallback := []domain.CoachingTrigger{{Type: domain.TriggerLifeAreaDecline, Enabled: true}}
	c, err := NewFileTriggerConfig(path, fallback)
	require.NoError(t, err)

	got, err := c.LoadTriggerConfig(context.Background(), "u-42")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.TriggerRelationshipStress, got[0].Type)

	got, err = c.LoadTriggerConfig(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, os.WriteFile(path, []byte("users: {}\n"), 0o644))
	require.NoError(t, c.Reload())

	got, err = c.LoadTriggerConfig(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Equal(t, fallback, got)
}

func TestFileTriggerConfigWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: {}\n"), 0o644))

	c, err := NewFileTriggerConfig(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte(triggerYAML), 0o644))

	assert.Eventually(t, func() bool {
		got, err := c.LoadTriggerConfig(context.Background(), "u-42")
		return err == nil && len(got) == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestNewFileTriggerConfigMissingFile(t *testing.T) {
	_, err := NewFileTriggerConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}
