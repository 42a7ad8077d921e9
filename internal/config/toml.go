// Package config loads settings from the TOML file, .env files and the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Webhook WebhookConfig     `toml:"webhook"`
	Flow    FlowConfig        `toml:"flow"`
	Limits  LimitsConfig      `toml:"limits"`
	Storage StorageConfig     `toml:"storage"`
	Answers map[string]string `toml:"answers"`
}

// WebhookConfig maps delivery settings.
type WebhookConfig struct {
	URL     *string `toml:"url"`
	Mention *string `toml:"mention"`
	Timeout *string `toml:"timeout"`
}

// FlowConfig selects the step list.
type FlowConfig struct {
	Variant *string `toml:"variant"`
}

// LimitsConfig maps timing thresholds. Values use Go duration syntax.
type LimitsConfig struct {
	Cooldown        *string `toml:"cooldown"`
	SuspiciousBelow *string `toml:"suspicious-below"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend  *string `toml:"backend"`
	Path     *string `toml:"path"`
	RedisURL *string `toml:"redis-url"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written when the config command creates a new file.
const Template = `# staffapp configuration

[webhook]
# url = "https://discord.com/api/webhooks/..."
# mention = "<@&role-id>"
# timeout = "10s"

[flow]
# variant = "full"  # or "classic"

[limits]
# cooldown = "24h"
# suspicious-below = "45s"

[storage]
# backend = "sqlite"  # sqlite, redis or memory
# path = "~/.local/share/staffapp/staffapp.db"
# redis-url = "redis://localhost:6379/0"

[answers]
# teamLimit = "5"
`
