package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0.05, cfg.BaseChance)
	assert.Equal(t, 10*time.Second, cfg.TimeoutUnit)
	assert.Equal(t, 30*time.Second, cfg.BoomCooldown)
	assert.Equal(t, 3.0, cfg.AtRiskMultiplier)
	assert.True(t, cfg.CooldownEnabled)
	assert.Equal(t, 7*24*time.Hour, cfg.SpinReward)
	assert.Equal(t, 7*24*time.Hour, cfg.SpinPenalty)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CHANCE", "0.2")
	t.Setenv("TIMEOUT_MS", "5000")
	t.Setenv("CHANNEL_ALLOW", "c1, c2 ,c3")
	t.Setenv("EXEMPT_ROLES", "mod,admin")
	t.Setenv("ROLL_ENABLED", "false")

	cfg := LoadConfig()
	assert.Equal(t, 0.2, cfg.BaseChance)
	assert.Equal(t, 5*time.Second, cfg.TimeoutUnit)
	assert.Equal(t, []string{"c1", "c2", "c3"}, cfg.WatchChannels)
	assert.Equal(t, []string{"mod", "admin"}, cfg.ExemptRoles)
	assert.False(t, cfg.CooldownEnabled)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CHANCE", "lots")
	t.Setenv("TIMEOUT_MS", "soon")
	t.Setenv("ROLL_ENABLED", "maybe")

	cfg := LoadConfig()
	assert.Equal(t, 0.05, cfg.BaseChance)
	assert.Equal(t, 10*time.Second, cfg.TimeoutUnit)
	assert.True(t, cfg.CooldownEnabled)
}

func TestRoleOverridesParseOrdered(t *testing.T) {
	t.Setenv("ROLE_CHANCE_OVERRIDES", "r1:0.5,r2:0.1,bad,r3:2.0")

	cfg := LoadConfig()
	require.Len(t, cfg.RoleOverrides, 2)
	assert.Equal(t, RoleChance{RoleID: "r1", Chance: 0.5}, cfg.RoleOverrides[0])
	assert.Equal(t, RoleChance{RoleID: "r2", Chance: 0.1}, cfg.RoleOverrides[1])
}

func TestWatchesChannel(t *testing.T) {
	open := &Config{}
	assert.True(t, open.WatchesChannel("anything"))

	scoped := &Config{WatchChannels: []string{"c1", "c2"}}
	assert.True(t, scoped.WatchesChannel("c1"))
	assert.False(t, scoped.WatchesChannel("c3"))
}
