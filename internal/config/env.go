package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig holds overrides read from the environment. Empty values are
// treated as unset.
type EnvConfig struct {
	WebhookURL string `env:"STAFFAPP_WEBHOOK_URL"`
	Mention    string `env:"STAFFAPP_WEBHOOK_MENTION"`
	Flow       string `env:"STAFFAPP_FLOW"`
	Storage    string `env:"STAFFAPP_STORAGE"`
	DBPath     string `env:"STAFFAPP_DB_PATH"`
	RedisURL   string `env:"STAFFAPP_REDIS_URL"`
}

// LoadEnv loads the given .env files, skipping missing ones, and parses
// the environment. Variables already set are not overwritten.
func LoadEnv(dotenvPaths ...string) (EnvConfig, error) {
	for _, path := range dotenvPaths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
