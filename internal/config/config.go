// Package config loads process configuration from the environment into a
// plain struct, rather than reaching for a flags/viper library.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Envs holds every environment-derived setting the process needs. Load
// populates it once at startup.
type Envs struct {
	Port            string
	RedisAddr       string
	RedisPassword   string
	JWTSigningKey   []byte
	InstanceID      string
	AllowedOrigins  []string
	TokenTTL        time.Duration
	SessionTTL      time.Duration
	LeaderLeaseTTL  time.Duration
	LeaderRenewTick time.Duration
}

// Load reads a .env file if present (ignored if missing — godotenv.Load
// returns an error for a missing file that most callers silently swallow)
// and then fills Envs from the process environment, applying sensible
// defaults for TTLs.
func Load() Envs {
	_ = godotenv.Load()

	return Envs{
		Port:            getOr("PORT", "8080"),
		RedisAddr:       getOr("REDIS_ADDR", ""),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSigningKey:   []byte(getOr("JWT_SIGNING_KEY", "dev-insecure-signing-key")),
		InstanceID:      getOr("INSTANCE_ID", ids32()),
		AllowedOrigins:  splitCSV(os.Getenv("ALLOWED_ORIGINS")),
		TokenTTL:        durOr("TOKEN_TTL", 24*time.Hour),
		SessionTTL:      durOr("SESSION_TTL", 25*time.Hour),
		LeaderLeaseTTL:  durOr("LEADER_LEASE_TTL", 10*time.Second),
		LeaderRenewTick: durOr("LEADER_RENEW_TICK", 3*time.Second),
	}
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// ids32 is a tiny fallback so an instance that never set INSTANCE_ID still
// gets a stable-for-this-process identity instead of an empty string.
func ids32() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "instance"
	}
	return host
}
