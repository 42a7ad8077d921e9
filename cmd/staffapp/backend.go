package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/staffapp/internal/config"
	"github.com/verte-zerg/staffapp/internal/store"
	"github.com/verte-zerg/staffapp/internal/wizard"
)

// backend is the storage selected by configuration. The journal is always
// the local SQLite database unless the session is ephemeral.
type backend struct {
	kv      store.KV
	journal wizard.Journal
	closers []func() error
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if cerr := b.closers[i](); cerr != nil {
			logErrf("failed to close storage: %v\n", cerr)
		}
	}
}

func openBackend(ctx context.Context, settings config.Settings, log *slog.Logger) (*backend, error) {
	switch settings.Storage {
	case config.StorageMemory:
		log.Info("using in-memory storage")
		return &backend{kv: store.NewMemory()}, nil
	case config.StorageRedis:
		st, err := store.Open(settings.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		rdb, err := store.OpenRedis(ctx, settings.RedisURL)
		if err != nil {
			if cerr := st.Close(); cerr != nil {
				_ = cerr
			}
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("using redis storage")
		return &backend{kv: rdb, journal: st, closers: []func() error{st.Close, rdb.Close}}, nil
	default:
		st, err := store.Open(settings.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return &backend{kv: st, journal: st, closers: []func() error{st.Close}}, nil
	}
}
