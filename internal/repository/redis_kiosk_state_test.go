package repository

import (
	"context"
	"testing"
	"time"

	"carekiosk/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKioskStateRepo) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKioskStateRepo(client)
}

func TestKioskStateGet_MissingKeyReturnsIdle(t *testing.T) {
	_, repo := setupTestRedis(t)

	state, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultKioskID, state.KioskID)
	assert.Equal(t, domain.ViewIdle, state.CurrentView)
	assert.Nil(t, state.CurrentReminderID)
}

func TestKioskStatePutGet_Roundtrip(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	id := "7b0f6c1e-0000-0000-0000-000000000001"
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	state := domain.NewKioskState()
	state.CurrentReminderID = &id
	state.CurrentView = domain.ViewReminder
	state.LastActivity = now
	state.ConnectedAt = &now
	state.UpdatedAt = now
	// 展开字段不落库
	state.CurrentReminder = &domain.Reminder{ID: id}

	require.NoError(t, repo.Put(ctx, state))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentReminderID)
	assert.Equal(t, id, *got.CurrentReminderID)
	assert.Equal(t, domain.ViewReminder, got.CurrentView)
	assert.True(t, got.LastActivity.Equal(now))
	assert.Nil(t, got.CurrentReminder)
}

func TestKioskStateMarkAnnounced_DedupesPerMinute(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()

	first, err := repo.MarkAnnounced(ctx, "r1", "2026-01-05T08:00")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkAnnounced(ctx, "r1", "2026-01-05T08:00")
	require.NoError(t, err)
	assert.False(t, again)

	// 不同分钟、不同提醒各自独立
	next, err := repo.MarkAnnounced(ctx, "r1", "2026-01-05T08:01")
	require.NoError(t, err)
	assert.True(t, next)
	other, err := repo.MarkAnnounced(ctx, "r2", "2026-01-05T08:00")
	require.NoError(t, err)
	assert.True(t, other)

	// 标记过期后可以重新宣告
	mr.FastForward(3 * time.Minute)
	expired, err := repo.MarkAnnounced(ctx, "r1", "2026-01-05T08:00")
	require.NoError(t, err)
	assert.True(t, expired)
}
