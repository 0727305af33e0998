package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Deterministic)
	assert.Equal(t, 1, cfg.DeviceCount)
	assert.Equal(t, "plots", cfg.OutputDir)
	assert.InDelta(t, 0.5, cfg.OverlayAlpha, 1e-12)
	assert.InDelta(t, 30, cfg.Perplexity, 1e-12)
	assert.Equal(t, 500, cfg.Iterations)
	assert.False(t, cfg.Compress)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("EVAL_SEED", "7")
	t.Setenv("EVAL_DETERMINISTIC", "false")
	t.Setenv("EVAL_TSNE_PERPLEXITY", "5")
	t.Setenv("EVAL_REPORT_COMPRESS", "true")
	t.Setenv("ENVIRONMENT", "dev")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.False(t, cfg.Deterministic)
	assert.InDelta(t, 5, cfg.Perplexity, 1e-12)
	assert.True(t, cfg.Compress)
	assert.Equal(t, "dev", cfg.Environment)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("EVAL_SEED", "not-a-number")

	_, err := LoadConfig(context.Background())
	assert.Error(t, err)
}
