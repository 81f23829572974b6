package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "greedy-tabu", cfg.Engine.Algorithm)
	assert.True(t, cfg.Engine.StrictSkillMatch)
	assert.True(t, cfg.Engine.FlexCoversRegular)
	assert.Equal(t, 200, cfg.Engine.MaxIterations)
	assert.Equal(t, 3000, cfg.Engine.TimeBudget)
	assert.Equal(t, 5, cfg.Engine.CandidateCount)
	assert.Equal(t, 1.0, cfg.Engine.FairnessWeight)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ENGINE_ALGORITHM", "multi-objective")
	t.Setenv("ENGINE_CANDIDATE_COUNT", "8")
	t.Setenv("ENGINE_SEED", "42")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "multi-objective", cfg.Engine.Algorithm)
	assert.Equal(t, 8, cfg.Engine.CandidateCount)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, "8080", cfg.Server.Port)
}
