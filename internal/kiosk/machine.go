package kiosk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carekiosk/internal/bus"
	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/repository"
	"carekiosk/internal/schedule"

	"go.uber.org/zap"
)

// Recorder 完成记录服务（由 recorder 包实现）
type Recorder interface {
	Record(ctx context.Context, reminderID string, status domain.CompletionStatus, notes string) (*domain.Completion, error)
}

// DefaultBannerDuration 完成画面停留时长
const DefaultBannerDuration = 5 * time.Second

// Machine 单一逻辑 kiosk 的呈现状态机。
// 事件（tick、用户动作、配置变更）串行处理：上一个处理器返回前
// 不处理下一个事件。所有时间判断基于注入的时钟。
type Machine struct {
	reminders   repository.ReminderRepo
	completions repository.CompletionRepo
	settings    repository.SettingsRepo
	store       *StateStore
	rec         Recorder
	bus         *bus.Bus
	clk         clock.Clock
	logger      *zap.Logger
	banner      time.Duration

	mu sync.Mutex
	// 呈现状态（仅在持锁时访问）
	view          domain.KioskView
	current       *domain.Reminder
	reminderStart time.Time // 进入 reminder(R) 的时刻，喂给 auto-skip
	completedAt   time.Time // 进入 completed(R) 的时刻

	// wake 给状态机安排一次亚分钟级的提前唤醒（banner 到期、auto-skip
	// 到期）。粗粒度 tick 仍然兜底；测试置 nil 后手动驱动 Tick。
	wake  func(d time.Duration)
	timer *time.Timer
}

// NewMachine 创建状态机（初始 idle）
func NewMachine(
	reminders repository.ReminderRepo,
	completions repository.CompletionRepo,
	settings repository.SettingsRepo,
	store *StateStore,
	rec Recorder,
	b *bus.Bus,
	clk clock.Clock,
	logger *zap.Logger,
) *Machine {
	m := &Machine{
		reminders:   reminders,
		completions: completions,
		settings:    settings,
		store:       store,
		rec:         rec,
		bus:         b,
		clk:         clk,
		logger:      logger,
		banner:      DefaultBannerDuration,
		view:        domain.ViewIdle,
	}
	m.wake = m.wakeAfter
	return m
}

func (m *Machine) wakeAfter(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(d, func() {
		if err := m.Tick(context.Background()); err != nil {
			m.logger.Warn("wake tick failed", zap.Error(err))
		}
	})
}

// View 当前画面（诊断用）
func (m *Machine) View() domain.KioskView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// CurrentReminder 当前展示的提醒（诊断用）
func (m *Machine) CurrentReminder() *domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Tick 一次调度评估：到期选择、碰撞规则、auto-skip、banner 超时。
// 幂等：同一分钟内的重复 tick 不产生新副作用。
func (m *Machine) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluate(ctx)
}

// SettingsChanged 配置变更：对同一 reminderStart 重新评估 auto-skip
func (m *Machine) SettingsChanged(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluate(ctx)
}

// Activity 触摸心跳，只更新 lastActivity
func (m *Machine) Activity(ctx context.Context) error {
	return m.store.Touch(ctx)
}

func (m *Machine) evaluate(ctx context.Context) error {
	now := m.clk.Now()

	// completed banner：停留期内不评估新的到期项
	if m.view == domain.ViewCompleted {
		if now.Sub(m.completedAt) < m.banner {
			if m.wake != nil {
				m.wake(m.completedAt.Add(m.banner).Sub(now))
			}
			return nil
		}
		return m.toIdle(ctx)
	}

	reminders, err := m.reminders.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}
	settings, err := m.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	completions, err := m.completions.ListDay(ctx, clock.DateKey(now))
	if err != nil {
		return fmt.Errorf("failed to load completions: %w", err)
	}

	due := schedule.Resolve(reminders, completions, settings, now).Due

	switch m.view {
	case domain.ViewIdle:
		if due != nil {
			return m.show(ctx, due, settings)
		}
		return nil

	case domain.ViewReminder:
		if due == nil {
			// 离开时间窗口，未回答的留给统计侧推导为 missed
			return m.toIdle(ctx)
		}
		if due.ID == m.current.ID {
			return m.maybeAutoSkip(ctx, settings, now)
		}
		return m.collide(ctx, due, settings)
	}
	return nil
}

// maybeAutoSkip R 在屏幕上停留 ≥ autoSkipTimeout 时记 skipped 并回到 idle
func (m *Machine) maybeAutoSkip(ctx context.Context, settings *domain.Settings, now time.Time) error {
	if settings.AutoSkipTimeout <= 0 || settings.DisplayOnly {
		return nil
	}
	timeout := time.Duration(settings.AutoSkipTimeout) * time.Minute
	elapsed := now.Sub(m.reminderStart)
	if elapsed < timeout {
		if m.wake != nil {
			m.wake(timeout - elapsed)
		}
		return nil
	}
	if err := m.record(ctx, m.current.ID, domain.StatusSkipped); err != nil {
		return err
	}
	return m.toIdle(ctx)
}

// collide 新的到期项 R' 顶掉当前 R：
//   - display-only：用户从不按键，新提醒到来意味着上一条已执行 → R 记 completed
//   - 交互模式、同类别：明确信号上一条被错过 → R 记 skipped
//   - 交互模式、不同类别：含义不明，R 留待手动处理（不记录）
func (m *Machine) collide(ctx context.Context, next *domain.Reminder, settings *domain.Settings) error {
	switch {
	case settings.DisplayOnly:
		if err := m.record(ctx, m.current.ID, domain.StatusCompleted); err != nil {
			return err
		}
	case next.Type == m.current.Type:
		if err := m.record(ctx, m.current.ID, domain.StatusSkipped); err != nil {
			return err
		}
	}
	return m.show(ctx, next, settings)
}

// record 状态机内部的记录：重复记录视为 no-op；提醒已被删除时
// 该次发生无从回答，同样视为 no-op，迁移照常进行。存储失败中止迁移。
func (m *Machine) record(ctx context.Context, reminderID string, status domain.CompletionStatus) error {
	_, err := m.rec.Record(ctx, reminderID, status, "")
	if err != nil && !errors.Is(err, domain.ErrAlreadyRecorded) && !errors.Is(err, domain.ErrNotFound) {
		// 迁移中止：内存状态不变，重发 reminders-updated 让 surface 重新同步
		m.bus.Publish(bus.TopicRemindersUpdated, nil)
		return fmt.Errorf("failed to record %s for reminder %s: %w", status, reminderID, err)
	}
	return nil
}

// show 进入 reminder(R)：持久化、广播，首次进入时发 reminder-due
func (m *Machine) show(ctx context.Context, r *domain.Reminder, settings *domain.Settings) error {
	now := m.clk.Now()
	id := r.ID
	if _, err := m.store.Update(ctx, func(st *domain.KioskState) {
		st.CurrentReminderID = &id
		st.CurrentView = domain.ViewReminder
	}); err != nil {
		m.bus.Publish(bus.TopicRemindersUpdated, nil)
		return err
	}

	m.view = domain.ViewReminder
	m.current = r
	m.reminderStart = now

	// 同一分钟内的重复 tick 只发一次 reminder-due
	minute := clock.DateKey(now) + "T" + clock.FormatHHMM(now)
	if first, err := m.store.MarkAnnounced(ctx, r.ID, minute); err != nil {
		m.logger.Warn("failed to mark reminder due", zap.Error(err))
	} else if first {
		m.bus.Publish(bus.TopicReminderDue, r)
	}

	m.store.Broadcast(ctx)

	if settings.AutoSkipTimeout > 0 && !settings.DisplayOnly && m.wake != nil {
		m.wake(time.Duration(settings.AutoSkipTimeout) * time.Minute)
	}
	return nil
}

// toIdle 回到空闲：清空当前项并广播
func (m *Machine) toIdle(ctx context.Context) error {
	if _, err := m.store.Update(ctx, func(st *domain.KioskState) {
		st.CurrentReminderID = nil
		st.CurrentView = domain.ViewIdle
	}); err != nil {
		m.bus.Publish(bus.TopicRemindersUpdated, nil)
		return err
	}
	m.view = domain.ViewIdle
	m.current = nil
	m.reminderStart = time.Time{}
	m.completedAt = time.Time{}
	m.store.Broadcast(ctx)
	return nil
}

// UserComplete 用户确认完成。当前展示该提醒时进入 completed(R)，
// 否则只记录（与 surface 直接调用 API 的行为一致）。
func (m *Machine) UserComplete(ctx context.Context, reminderID string) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.rec.Record(ctx, reminderID, domain.StatusCompleted, "")
	if err != nil {
		return nil, err
	}

	if m.view == domain.ViewReminder && m.current != nil && m.current.ID == reminderID {
		now := m.clk.Now()
		id := reminderID
		if _, err := m.store.Update(ctx, func(st *domain.KioskState) {
			st.CurrentReminderID = &id
			st.CurrentView = domain.ViewCompleted
		}); err != nil {
			m.bus.Publish(bus.TopicRemindersUpdated, nil)
			return c, err
		}
		m.view = domain.ViewCompleted
		m.completedAt = now
		m.store.Broadcast(ctx)
		if m.wake != nil {
			m.wake(m.banner)
		}
	}
	return c, nil
}

// UserSkip 用户跳过。display-only 模式下没有按键，拒绝该动作。
func (m *Machine) UserSkip(ctx context.Context, reminderID string) (*domain.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, err := m.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.DisplayOnly {
		return nil, fmt.Errorf("%w: kiosk is in display-only mode", domain.ErrValidation)
	}

	c, err := m.rec.Record(ctx, reminderID, domain.StatusSkipped, "")
	if err != nil {
		return nil, err
	}

	if m.view == domain.ViewReminder && m.current != nil && m.current.ID == reminderID {
		if err := m.toIdle(ctx); err != nil {
			return c, err
		}
	}
	return c, nil
}

// DisableWake 关闭亚分钟级唤醒（测试手动驱动 Tick）
func (m *Machine) DisableWake() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wake = nil
	if m.timer != nil {
		m.timer.Stop()
	}
}

// SetBannerDuration 覆盖完成画面停留时长
func (m *Machine) SetBannerDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banner = d
}
