package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officescheduler/models"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess := &models.ScheduleSession{
		ID:       "s-store",
		Team:     "VietQ Media",
		Selected: []models.BlockKey{{Day: models.Monday, StartHour: 10}},
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s-store")
	require.NoError(t, err)
	assert.Equal(t, sess.Selected, got.Selected)

	got.Selected[0].StartHour = 12
	again, err := store.Get(ctx, "s-store")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Selected[0].StartHour, "callers never share state with the store")

	ok, err := store.AcquireSubmit(ctx, "s-store")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.AcquireSubmit(ctx, "s-store")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.ReleaseSubmit(ctx, "s-store"))
	ok, err = store.AcquireSubmit(ctx, "s-store")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "s-store"))
	_, err = store.Get(ctx, "s-store")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh := old.Add(2 * time.Hour)

	require.NoError(t, store.Save(ctx, &models.ScheduleSession{ID: "old", UpdatedAt: old}))
	require.NoError(t, store.Save(ctx, &models.ScheduleSession{ID: "busy", UpdatedAt: old}))
	require.NoError(t, store.Save(ctx, &models.ScheduleSession{ID: "fresh", UpdatedAt: fresh}))
	_, err := store.AcquireSubmit(ctx, "busy")
	require.NoError(t, err)

	assert.Equal(t, 1, store.Sweep(old.Add(time.Hour)))
	assert.Equal(t, 2, store.Len())
	_, err = store.Get(ctx, "busy")
	assert.NoError(t, err)
}

// TestRedisStore runs against a real server when REDIS_TEST_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	exerciseStore(t, NewRedisStore(client, time.Minute))
}
