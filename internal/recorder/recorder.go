// Package recorder 追加单次提醒的完成记录。
// 双击等重复提交按幂等 upsert 处理：第二次是 no-op，
// 以 ErrAlreadyRecorded 告知调用方。
package recorder

import (
	"context"
	"fmt"

	"carekiosk/internal/bus"
	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/kiosk"
	"carekiosk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder 完成记录服务
type Recorder struct {
	reminders   repository.ReminderRepo
	completions repository.CompletionRepo
	store       *kiosk.StateStore
	bus         *bus.Bus
	clk         clock.Clock
	logger      *zap.Logger
}

// New 创建完成记录服务
func New(
	reminders repository.ReminderRepo,
	completions repository.CompletionRepo,
	store *kiosk.StateStore,
	b *bus.Bus,
	clk clock.Clock,
	logger *zap.Logger,
) *Recorder {
	return &Recorder{
		reminders:   reminders,
		completions: completions,
		store:       store,
		bus:         b,
		clk:         clk,
		logger:      logger,
	}
}

var _ kiosk.Recorder = (*Recorder)(nil)

// Record 为提醒的今日发生追加一条记录。
// scheduledFor 固定为今天本地零点 + 提醒的 HH:MM。
func (r *Recorder) Record(ctx context.Context, reminderID string, status domain.CompletionStatus, notes string) (*domain.Completion, error) {
	rem, err := r.reminders.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	now := r.clk.Now()
	scheduledFor, err := clock.AtTime(now, rem.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	c := &domain.Completion{
		ID:           uuid.NewString(),
		ReminderID:   rem.ID,
		Status:       status,
		ScheduledFor: scheduledFor,
		CompletedAt:  now,
		Notes:        notes,
	}

	inserted, err := r.completions.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("reminder %s on %s: %w",
			reminderID, clock.DateKey(scheduledFor), domain.ErrAlreadyRecorded)
	}

	r.logger.Info("completion recorded",
		zap.String("reminder_id", rem.ID),
		zap.String("status", string(status)),
	)

	// 今日投影已变化：先通知提醒侧，再广播 kiosk 状态
	r.bus.Publish(bus.TopicRemindersUpdated, nil)
	r.store.Broadcast(ctx)

	c.Reminder = rem
	return c, nil
}
