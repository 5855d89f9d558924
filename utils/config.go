package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// RoleChance is a per-role trigger-chance override. Overrides are kept in
// configuration order because the first role the member holds wins.
type RoleChance struct {
	RoleID string
	Chance float64
}

// Config holds the environment-driven settings. Loaded once at startup and
// passed to every handler that needs it.
type Config struct {
	Token   string
	DataDir string
	Port    string

	// Passive explosion trigger
	BaseChance       float64
	TimeoutUnit      time.Duration
	BoomCooldown     time.Duration
	WatchChannels    []string
	ExemptRoles      []string
	AtRiskRole       string
	AtRiskMultiplier float64
	RoleOverrides    []RoleChance

	// Roll charge gate
	CooldownEnabled bool

	// Spin wheel
	SpinRole    string
	SpinReward  time.Duration
	SpinPenalty time.Duration
}

// LoadConfig reads settings from the environment. Call godotenv.Load first
// so a local .env is honored.
func LoadConfig() *Config {
	cfg := &Config{
		Token:   os.Getenv("BOT_TOKEN"),
		DataDir: envString("DATA_DIR", "data"),
		Port:    envString("PORT", "8080"),

		BaseChance:       envFloat("CHANCE", 0.05),
		TimeoutUnit:      envMillis("TIMEOUT_MS", 10000),
		BoomCooldown:     envMillis("COOLDOWN_MS", 30000),
		WatchChannels:    envList("CHANNEL_ALLOW"),
		ExemptRoles:      envList("EXEMPT_ROLES"),
		AtRiskRole:       os.Getenv("AT_RISK_ROLE"),
		AtRiskMultiplier: envFloat("AT_RISK_MULTIPLIER", 3.0),
		RoleOverrides:    envRoleOverrides("ROLE_CHANCE_OVERRIDES"),

		CooldownEnabled: envBool("ROLL_ENABLED", true),

		SpinRole:    os.Getenv("SPIN_ROLE"),
		SpinReward:  envMillis("SPIN_REWARD_MS", int64(7*24*time.Hour/time.Millisecond)),
		SpinPenalty: envMillis("SPIN_PENALTY_MS", int64(7*24*time.Hour/time.Millisecond)),
	}
	return cfg
}

// WatchesChannel reports whether the passive hook should consider messages
// from the given channel. An empty allowlist watches everything.
func (c *Config) WatchesChannel(channelID string) bool {
	if len(c.WatchChannels) == 0 {
		return true
	}
	for _, id := range c.WatchChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warnf("invalid %s=%q, using default %v", key, v, fallback)
		return fallback
	}
	return f
}

func envMillis(key string, fallback int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Millisecond
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warnf("invalid %s=%q, using default %dms", key, v, fallback)
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("invalid %s=%q, using default %v", key, v, fallback)
		return fallback
	}
	return b
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envRoleOverrides parses "roleID:chance,roleID:chance" preserving order.
func envRoleOverrides(key string) []RoleChance {
	var out []RoleChance
	for _, part := range envList(key) {
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			log.Warnf("invalid role override %q, expected roleID:chance", part)
			continue
		}
		chance, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || chance < 0 || chance > 1 {
			log.Warnf("invalid role override chance %q", part)
			continue
		}
		out = append(out, RoleChance{RoleID: fields[0], Chance: chance})
	}
	return out
}
