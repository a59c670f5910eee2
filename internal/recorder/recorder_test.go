package recorder

import (
	"context"
	"testing"
	"time"

	"carekiosk/internal/bus"
	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/kiosk"
	"carekiosk/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRecorder(t *testing.T, now time.Time) (*Recorder, *repository.MemoryReminderRepo, *repository.MemoryCompletionRepo, *bus.Bus) {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.NewFake(now)
	reminders := repository.NewMemoryReminderRepo()
	completions := repository.NewMemoryCompletionRepo()
	b := bus.New(logger)
	store := kiosk.NewStateStore(repository.NewMemoryKioskStateRepo(), reminders, b, clk, logger)
	return New(reminders, completions, store, b, clk, logger), reminders, completions, b
}

func TestRecord_Success(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 2, 30, 0, time.Local)
	rec, reminders, completions, b := setupRecorder(t, now)
	ctx := context.Background()

	sub := b.Subscribe(bus.RoleCaregiver)
	defer sub.Close()

	r := &domain.Reminder{
		ID:     uuid.NewString(),
		Title:  "Morning pills",
		Time:   "08:00",
		Days:   domain.AllDays,
		Type:   domain.ReminderMedication,
		Active: true,
	}
	require.NoError(t, reminders.Create(ctx, r))

	c, err := rec.Record(ctx, r.ID, domain.StatusCompleted, "taken with breakfast")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, r.ID, c.ReminderID)
	assert.Equal(t, domain.StatusCompleted, c.Status)
	// scheduledFor 固定为今天零点 + 提醒时刻，不是动作时刻
	assert.Equal(t, time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local), c.ScheduledFor)
	assert.Equal(t, now, c.CompletedAt)
	assert.Equal(t, "taken with breakfast", c.Notes)
	require.NotNil(t, c.Reminder)
	assert.Equal(t, r.Title, c.Reminder.Title)

	stored, err := completions.ListDay(ctx, "2026-01-05")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// 两侧 surface 都被通知
	ev := <-sub.Events()
	assert.Equal(t, bus.TopicRemindersUpdated, ev.Topic)
	ev = <-sub.Events()
	assert.Equal(t, bus.TopicKioskStateUpdate, ev.Topic)
}

func TestRecord_UnknownReminder(t *testing.T) {
	rec, _, _, _ := setupRecorder(t, time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local))

	_, err := rec.Record(context.Background(), uuid.NewString(), domain.StatusCompleted, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecord_SecondRecordSameDayConflicts(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)
	rec, reminders, completions, _ := setupRecorder(t, now)
	ctx := context.Background()

	r := &domain.Reminder{
		ID: uuid.NewString(), Title: "Walk", Time: "08:00",
		Days: domain.AllDays, Type: domain.ReminderTask, Active: true,
	}
	require.NoError(t, reminders.Create(ctx, r))

	_, err := rec.Record(ctx, r.ID, domain.StatusCompleted, "")
	require.NoError(t, err)

	// 换个状态也不行：每个 (reminder, 本地日) 至多一条
	_, err = rec.Record(ctx, r.ID, domain.StatusSkipped, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyRecorded)

	stored, err := completions.ListDay(ctx, "2026-01-05")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.StatusCompleted, stored[0].Status)
}

func TestRecord_NextDayAllowedAgain(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)
	clk := clock.NewFake(now)
	logger := zap.NewNop()
	reminders := repository.NewMemoryReminderRepo()
	completions := repository.NewMemoryCompletionRepo()
	b := bus.New(logger)
	store := kiosk.NewStateStore(repository.NewMemoryKioskStateRepo(), reminders, b, clk, logger)
	rec := New(reminders, completions, store, b, clk, logger)
	ctx := context.Background()

	r := &domain.Reminder{
		ID: uuid.NewString(), Title: "Walk", Time: "08:00",
		Days: domain.AllDays, Type: domain.ReminderTask, Active: true,
	}
	require.NoError(t, reminders.Create(ctx, r))

	_, err := rec.Record(ctx, r.ID, domain.StatusCompleted, "")
	require.NoError(t, err)

	clk.Advance(24 * time.Hour)
	c, err := rec.Record(ctx, r.ID, domain.StatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-06", clock.DateKey(c.ScheduledFor))
}
