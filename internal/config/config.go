// Package config loads service configuration from the environment. Secrets
// stay inside the process; only the Client subset may ever be sent to a
// browser.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ClientConfig is the explicitly public subset of configuration served to
// browsers via /api/client-config. Nothing else leaves the process.
type ClientConfig struct {
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

type Config struct {
	Env  string
	Port string

	DatabaseURL string

	RedisAddr     string // empty disables the cache and audit queue
	RedisPassword string
	RedisDB       int

	// PackAuditQueue is the Redis list pack-open records are pushed to.
	PackAuditQueue string
	// CardCacheTTL bounds how stale a cached card-pool snapshot may be.
	CardCacheTTL time.Duration

	// SessionTTL is the session cookie lifetime.
	SessionTTL time.Duration

	Client ClientConfig
}

// Load reads configuration from environment variables, applying defaults for
// everything except the database URL.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		PackAuditQueue: getEnv("PACK_AUDIT_QUEUE", "tcg_pack_opens"),
		CardCacheTTL:   getEnvDuration("CARD_CACHE_TTL", 5*time.Minute),
		SessionTTL:     getEnvDuration("SESSION_TTL", 5*24*time.Hour),
		Client: ClientConfig{
			AuthDomain:        os.Getenv("PUBLIC_AUTH_DOMAIN"),
			ProjectID:         os.Getenv("PUBLIC_PROJECT_ID"),
			StorageBucket:     os.Getenv("PUBLIC_STORAGE_BUCKET"),
			MessagingSenderID: os.Getenv("PUBLIC_MESSAGING_SENDER_ID"),
			AppID:             os.Getenv("PUBLIC_APP_ID"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
