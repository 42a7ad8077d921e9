package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/quiz"
	"github.com/verte-zerg/staffapp/internal/ratelimit"
	"github.com/verte-zerg/staffapp/internal/report"
	"github.com/verte-zerg/staffapp/internal/validate"
	"github.com/verte-zerg/staffapp/internal/webhook"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Settings is the resolved configuration.
type Settings struct {
	WebhookURL      string        `validate:"omitempty,url"`
	Mention         string        `validate:"max=100"`
	WebhookTimeout  time.Duration `validate:"gt=0"`
	Flow            string        `validate:"oneof=full classic"`
	Cooldown        time.Duration `validate:"gt=0"`
	SuspiciousBelow time.Duration `validate:"gte=0"`
	Storage         string        `validate:"oneof=sqlite redis memory"`
	DBPath          string
	RedisURL        string `validate:"omitempty,startswith=redis"`
	AnswerKey       map[model.Field]string
}

// Defaults returns settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		WebhookTimeout:  webhook.DefaultTimeout,
		Flow:            validate.FlowFull,
		Cooldown:        ratelimit.DefaultWindow,
		SuspiciousBelow: report.DefaultSuspiciousBelow,
		Storage:         StorageSQLite,
		DBPath:          DefaultDBPath(),
		AnswerKey:       report.DefaultAnswerKey(),
	}
}

// Resolve layers the file and environment over the defaults and validates
// the result.
func Resolve(file FileConfig, envCfg EnvConfig, catalog quiz.Catalog) (Settings, error) {
	s := Defaults()

	applyString(&s.WebhookURL, file.Webhook.URL)
	applyString(&s.Mention, file.Webhook.Mention)
	applyString(&s.Flow, file.Flow.Variant)
	applyString(&s.Storage, file.Storage.Backend)
	applyString(&s.DBPath, file.Storage.Path)
	applyString(&s.RedisURL, file.Storage.RedisURL)

	var err error
	if s.WebhookTimeout, err = applyDuration(s.WebhookTimeout, file.Webhook.Timeout, "webhook.timeout"); err != nil {
		return Settings{}, err
	}
	if s.Cooldown, err = applyDuration(s.Cooldown, file.Limits.Cooldown, "limits.cooldown"); err != nil {
		return Settings{}, err
	}
	if s.SuspiciousBelow, err = applyDuration(s.SuspiciousBelow, file.Limits.SuspiciousBelow, "limits.suspicious-below"); err != nil {
		return Settings{}, err
	}

	for name, value := range file.Answers {
		field, err := model.ParseField(name)
		if err != nil {
			return Settings{}, fmt.Errorf("answers: %w", err)
		}
		if field.Kind() != model.KindChoice {
			return Settings{}, fmt.Errorf("answers: %q is not a quiz field", name)
		}
		if !catalog.ValidOption(field, value) {
			return Settings{}, fmt.Errorf("answers: %q is not an option of %q", value, name)
		}
		s.AnswerKey[field] = value
	}

	overrideString(&s.WebhookURL, envCfg.WebhookURL)
	overrideString(&s.Mention, envCfg.Mention)
	overrideString(&s.Flow, envCfg.Flow)
	overrideString(&s.Storage, envCfg.Storage)
	overrideString(&s.DBPath, envCfg.DBPath)
	overrideString(&s.RedisURL, envCfg.RedisURL)

	s.Flow = strings.ToLower(strings.TrimSpace(s.Flow))
	s.Storage = strings.ToLower(strings.TrimSpace(s.Storage))

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks field constraints.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	switch s.Storage {
	case StorageRedis:
		if s.RedisURL == "" {
			return errors.New("invalid settings: redis storage needs redis-url")
		}
	case StorageSQLite:
		if s.DBPath == "" {
			return errors.New("invalid settings: sqlite storage needs a path")
		}
	}
	return nil
}

// ReportSettings builds the report assembler settings.
func (s Settings) ReportSettings() report.Settings {
	rs := report.DefaultSettings()
	rs.AnswerKey = s.AnswerKey
	rs.SuspiciousBelow = s.SuspiciousBelow
	rs.Mention = s.Mention
	return rs
}

func applyString(target *string, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func overrideString(target *string, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	*target = value
}

func applyDuration(current time.Duration, value *string, name string) (time.Duration, error) {
	if value == nil {
		return current, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
