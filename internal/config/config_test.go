package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 500*time.Millisecond, cfg.Progress.MinInterval)
	assert.Equal(t, 0.6, cfg.Scoring.BaseWeight)
	assert.Equal(t, 0.4, cfg.Scoring.FactCheckWeight)
	assert.Equal(t, "memory", cfg.App.SessionStore)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROGRESS_MIN_INTERVAL", "250ms")
	t.Setenv("SCORE_BASE_WEIGHT", "0.5")
	t.Setenv("SOURCES_MAX_FROM_KB", "3")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 250*time.Millisecond, cfg.ProgressBus().MinInterval)
	assert.Equal(t, 0.5, cfg.ScoringEngine().BaseWeight)
	assert.Equal(t, 3, cfg.SourcePolicy().MaxFromKB)
	assert.True(t, cfg.App.OtelEnabled)
	assert.True(t, cfg.IsProduction())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("PHASE_TIMEOUT", "soon")
	t.Setenv("RUN_WORKERS", "many")

	cfg := Load()

	assert.Equal(t, 60*time.Second, cfg.Pipeline.PhaseTimeout)
	assert.Equal(t, 8, cfg.Pipeline.RunWorkers)
}
