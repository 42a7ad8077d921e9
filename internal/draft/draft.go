// Package draft persists the in-progress application between sessions.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/store"
)

// Key is the storage key of the draft snapshot.
const Key = "staffapp:draft"

// Store saves and restores the application snapshot.
type Store struct {
	kv  store.KV
	log *slog.Logger
}

// New returns a draft store over kv.
func New(kv store.KV, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, log: log}
}

// Load returns the saved draft. A missing, unreadable or corrupt draft is
// reported as absent. Keys missing from the snapshot keep their defaults.
func (s *Store) Load(ctx context.Context) (model.Application, bool) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultApplication(), false
	}
	if err != nil {
		s.log.Warn("draft read failed", "err", err)
		return model.DefaultApplication(), false
	}
	app := model.DefaultApplication()
	if err := json.Unmarshal([]byte(raw), &app); err != nil {
		s.log.Warn("draft is corrupt, ignoring", "err", err)
		return model.DefaultApplication(), false
	}
	return app, true
}

// Save writes app as the current draft.
func (s *Store) Save(ctx context.Context, app model.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Clear removes the draft. Clearing twice is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
