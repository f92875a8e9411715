package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrNoConfigFile)
	require.NotNil(t, cfg)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoad_OverridesOnTopOfPreset(t *testing.T) {
	path := writeFile(t, `
seed: 42
tick_interval: 250ms
difficulty: hard
balance:
  theft_chance: 0.07
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "hard", cfg.Difficulty)
	assert.Equal(t, 0.07, cfg.Balance.TheftChance)
	// Untouched keys come from the hard preset.
	assert.Equal(t, Hard().StartingCash, cfg.Balance.StartingCash)
	assert.Equal(t, uint64(30), cfg.WorldEventEvery)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "seed: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoConfigFile)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STORESIM_SEED", "7")
	t.Setenv("STORESIM_TICK_INTERVAL", "100ms")
	t.Setenv("STORESIM_API_PORT", "9090")
	t.Setenv("STORESIM_DIFFICULTY", "casual")
	t.Setenv("STORESIM_STARTING_CASH", "1234.5")
	t.Setenv("STORESIM_ADMIN_KEY", "secret")

	cfg := Defaults()
	cfg.ApplyEnv()

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "casual", cfg.Difficulty)
	assert.Equal(t, 1234.5, cfg.Balance.StartingCash)
	assert.Equal(t, Casual().TheftChance, cfg.Balance.TheftChance)
	assert.Equal(t, "secret", cfg.AdminKey)
}

func TestApplyEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("STORESIM_SEED", "not-a-number")
	t.Setenv("STORESIM_TICK_INTERVAL", "-5s")
	cfg := Defaults()
	cfg.ApplyEnv()
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, time.Second, cfg.TickInterval)
}

func TestBalanceValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.NoError(t, Casual().Validate())
	require.NoError(t, Hard().Validate())

	b := Default()
	b.TheftChance = 1.5
	b.PriceToleranceMin = 4
	b.EconomyFloor = 0
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theft_chance")
	assert.Contains(t, err.Error(), "price_tolerance_min")
	assert.Contains(t, err.Error(), "economy_floor")
}

func TestForDifficulty(t *testing.T) {
	assert.Equal(t, Default(), ForDifficulty("normal"))
	assert.Equal(t, Casual(), ForDifficulty("casual"))
	assert.Equal(t, Hard(), ForDifficulty("hard"))
	assert.Equal(t, Default(), ForDifficulty(""))
}
