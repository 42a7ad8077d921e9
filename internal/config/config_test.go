package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Webhook.URL)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[webhook]
url = "https://example.com/hook"
timeout = "3s"

[flow]
variant = "classic"

[limits]
cooldown = "12h"

[storage]
backend = "memory"

[answers]
teamLimit = "3"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	s, err := Resolve(cfg, EnvConfig{}, quiz.Default())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", s.WebhookURL)
	assert.Equal(t, 3*time.Second, s.WebhookTimeout)
	assert.Equal(t, "classic", s.Flow)
	assert.Equal(t, 12*time.Hour, s.Cooldown)
	assert.Equal(t, 45*time.Second, s.SuspiciousBelow)
	assert.Equal(t, StorageMemory, s.Storage)
	assert.Equal(t, "3", s.AnswerKey[model.FieldTeamLimit])
	assert.Equal(t, "permban", s.AnswerKey[model.FieldDeanonPunishment])
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[webhook\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestTemplateDecodes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", Template)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	_, err = Resolve(cfg, EnvConfig{}, quiz.Default())
	assert.NoError(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	url := "https://file.example.com"
	file := FileConfig{Webhook: WebhookConfig{URL: &url}}
	s, err := Resolve(file, EnvConfig{WebhookURL: "https://env.example.com", Storage: "REDIS", RedisURL: "redis://localhost:6379"}, quiz.Default())
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", s.WebhookURL)
	assert.Equal(t, StorageRedis, s.Storage)
}

func TestResolveRejectsInvalid(t *testing.T) {
	bad := func(v string) *string { return &v }
	cases := []struct {
		name string
		file FileConfig
		env  EnvConfig
	}{
		{"flow", FileConfig{Flow: FlowConfig{Variant: bad("turbo")}}, EnvConfig{}},
		{"duration", FileConfig{Limits: LimitsConfig{Cooldown: bad("soon")}}, EnvConfig{}},
		{"zero cooldown", FileConfig{Limits: LimitsConfig{Cooldown: bad("0s")}}, EnvConfig{}},
		{"webhook url", FileConfig{Webhook: WebhookConfig{URL: bad("not a url")}}, EnvConfig{}},
		{"storage", FileConfig{}, EnvConfig{Storage: "s3"}},
		{"redis without url", FileConfig{}, EnvConfig{Storage: "redis"}},
		{"redis scheme", FileConfig{}, EnvConfig{Storage: "redis", RedisURL: "http://x"}},
		{"answer field", FileConfig{Answers: map[string]string{"bogus": "x"}}, EnvConfig{}},
		{"answer not quiz", FileConfig{Answers: map[string]string{"nickname": "x"}}, EnvConfig{}},
		{"answer option", FileConfig{Answers: map[string]string{"teamLimit": "7"}}, EnvConfig{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.file, tc.env, quiz.Default())
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvReadsDotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "STAFFAPP_FLOW=classic\nSTAFFAPP_WEBHOOK_MENTION=<@&1>\n")
	t.Setenv("STAFFAPP_FLOW", "")
	require.NoError(t, os.Unsetenv("STAFFAPP_FLOW"))
	t.Setenv("STAFFAPP_WEBHOOK_MENTION", "<@&2>")

	cfg, err := LoadEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, "classic", cfg.Flow)
	assert.Equal(t, "<@&2>", cfg.Mention)
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	assert.Equal(t, filepath.Join("/tmp/cfg", "staffapp", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "staffapp", "staffapp.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/tmp/data", "staffapp", "staffapp.log"), DefaultLogPath())
	assert.Equal(t, filepath.Join("/tmp/cfg", "staffapp", ".env"), DefaultEnvPath())
}

func TestReportSettings(t *testing.T) {
	s := Defaults()
	s.Mention = "<@&9>"
	rs := s.ReportSettings()
	assert.Equal(t, "<@&9>", rs.Mention)
	assert.Equal(t, s.AnswerKey, rs.AnswerKey)
}
