// Package ratelimit enforces the cooldown between submissions.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/staffapp/internal/store"
)

// Key is the storage key of the last successful submission time.
const Key = "staffapp:last_submission"

// DefaultWindow is the cooldown after a successful submission.
const DefaultWindow = 24 * time.Hour

// Status is the result of a limiter check.
type Status struct {
	Limited   bool
	Remaining time.Duration
}

// Hours returns the whole hours left.
func (s Status) Hours() int {
	return int(s.Remaining / time.Hour)
}

// Minutes returns the whole minutes left after Hours.
func (s Status) Minutes() int {
	return int((s.Remaining % time.Hour) / time.Minute)
}

// Limiter reads and writes the last submission time.
type Limiter struct {
	kv     store.KV
	window time.Duration
	log    *slog.Logger
}

// New returns a limiter. A non-positive window falls back to DefaultWindow.
func New(kv store.KV, window time.Duration, log *slog.Logger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Limiter{kv: kv, window: window, log: log}
}

// Window returns the configured cooldown.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Last returns the stored submission time. The bool is false when nothing
// usable is stored.
func (l *Limiter) Last(ctx context.Context) (time.Time, bool) {
	raw, err := l.kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, false
	}
	if err != nil {
		l.log.Warn("rate limit read failed", "err", err)
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		l.log.Warn("rate limit record is corrupt, ignoring", "value", raw, "err", err)
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Check reports whether a submission at now falls inside the window.
func (l *Limiter) Check(ctx context.Context, now time.Time) Status {
	last, ok := l.Last(ctx)
	if !ok {
		return Status{}
	}
	elapsed := now.Sub(last)
	if elapsed >= l.window {
		return Status{}
	}
	// A clock that moved backwards still counts as limited for the full window.
	if elapsed < 0 {
		elapsed = 0
	}
	return Status{Limited: true, Remaining: l.window - elapsed}
}

// Record stores t as the last successful submission.
func (l *Limiter) Record(ctx context.Context, t time.Time) error {
	if err := l.kv.Set(ctx, Key, strconv.FormatInt(t.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("record submission time: %w", err)
	}
	return nil
}
