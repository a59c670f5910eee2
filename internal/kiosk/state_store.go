package kiosk

import (
	"context"
	"errors"
	"fmt"

	"carekiosk/internal/bus"
	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/repository"

	"go.uber.org/zap"
)

// StateStore kiosk 状态单例的读写 + 广播
// 所有写入都走原子 upsert-by-key；广播失败只记日志，不向调用方冒泡
type StateStore struct {
	states    repository.KioskStateRepo
	reminders repository.ReminderRepo
	bus       *bus.Bus
	clk       clock.Clock
	logger    *zap.Logger
}

// NewStateStore 创建状态存取器
func NewStateStore(
	states repository.KioskStateRepo,
	reminders repository.ReminderRepo,
	b *bus.Bus,
	clk clock.Clock,
	logger *zap.Logger,
) *StateStore {
	return &StateStore{
		states:    states,
		reminders: reminders,
		bus:       b,
		clk:       clk,
		logger:    logger,
	}
}

// Current 读取状态并展开 CurrentReminderID
func (s *StateStore) Current(ctx context.Context) (*domain.KioskState, error) {
	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.dereference(ctx, state)
	return state, nil
}

func (s *StateStore) dereference(ctx context.Context, state *domain.KioskState) {
	state.CurrentReminder = nil
	if state.CurrentReminderID == nil {
		return
	}
	r, err := s.reminders.Get(ctx, *state.CurrentReminderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to dereference current reminder", zap.Error(err))
		}
		return
	}
	state.CurrentReminder = r
}

// Update 读-改-写整个快照
func (s *StateStore) Update(ctx context.Context, mutate func(*domain.KioskState)) (*domain.KioskState, error) {
	state, err := s.states.Get(ctx)
	if err != nil {
		return nil, err
	}
	mutate(state)
	state.UpdatedAt = s.clk.Now()
	if err := s.states.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist kiosk state: %w", err)
	}
	return state, nil
}

// Broadcast 把展开后的状态发布到 kiosk-state-update
func (s *StateStore) Broadcast(ctx context.Context) {
	state, err := s.Current(ctx)
	if err != nil {
		s.logger.Warn("failed to load kiosk state for broadcast", zap.Error(err))
		return
	}
	s.bus.Publish(bus.TopicKioskStateUpdate, state)
}

// Touch 记录一次触摸心跳（只更新 lastActivity）
func (s *StateStore) Touch(ctx context.Context) error {
	_, err := s.Update(ctx, func(st *domain.KioskState) {
		st.LastActivity = s.clk.Now()
	})
	if err != nil {
		return err
	}
	s.Broadcast(ctx)
	return nil
}

// Connect kiosk/mirror surface 接入：更新连接时间并立即推送状态快照
func (s *StateStore) Connect(ctx context.Context) error {
	now := s.clk.Now()
	_, err := s.Update(ctx, func(st *domain.KioskState) {
		st.ConnectedAt = &now
		st.LastActivity = now
	})
	if err != nil {
		return err
	}
	s.Broadcast(ctx)
	return nil
}

// ApplyChange surface 上报的状态变更（kiosk-state-change 事件）
func (s *StateStore) ApplyChange(ctx context.Context, currentReminderID *string, view domain.KioskView) error {
	if view != "" && !domain.ValidKioskView(view) {
		return fmt.Errorf("%w: unknown view %q", domain.ErrValidation, view)
	}
	_, err := s.Update(ctx, func(st *domain.KioskState) {
		st.CurrentReminderID = currentReminderID
		if view != "" {
			st.CurrentView = view
		}
		st.LastActivity = s.clk.Now()
	})
	if err != nil {
		return err
	}
	s.Broadcast(ctx)
	return nil
}

// MarkAnnounced reminder-due 去重标记透传
func (s *StateStore) MarkAnnounced(ctx context.Context, reminderID, minute string) (bool, error) {
	return s.states.MarkAnnounced(ctx, reminderID, minute)
}
