package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/staffapp/internal/model"
	"github.com/verte-zerg/staffapp/internal/store"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (failingKV) Set(context.Context, string, string) error   { return errors.New("disk gone") }
func (failingKV) Delete(context.Context, string) error        { return errors.New("disk gone") }

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory(), nil)

	_, ok := s.Load(ctx)
	assert.False(t, ok)

	app := model.DefaultApplication()
	app.Nickname = "Steve"
	app.ActiveTime = "22:00-23:00"
	app.PunishmentTestPassed = true
	app.PunishmentTestMistakes = 2
	require.NoError(t, s.Save(ctx, app))

	got, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv, nil)
	require.NoError(t, s.Save(ctx, model.DefaultApplication()))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	_, ok := s.Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, kv.Len())
}

func TestCorruptDraftIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, Key, "{not json"))
	app, ok := New(kv, nil).Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, model.DefaultApplication(), app)
}

func TestPartialDraftKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, Key, `{"nickname":"Alex","unknownKey":1}`))
	app, ok := New(kv, nil).Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "Alex", app.Nickname)
	assert.Equal(t, "no", app.RecordCheckAllowed)
}

func TestReadFailureIsAbsent(t *testing.T) {
	s := New(failingKV{}, nil)
	_, ok := s.Load(context.Background())
	assert.False(t, ok)
	assert.Error(t, s.Save(context.Background(), model.DefaultApplication()))
	assert.Error(t, s.Clear(context.Background()))
}
