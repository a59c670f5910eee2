package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carekiosk/internal/domain"
)

// MemoryReminderRepo: 用于 DB 未就绪时的联测和单元测试
// 与 Postgres 实现同语义（排序、ErrNotFound、幂等插入）
type MemoryReminderRepo struct {
	mu        sync.RWMutex
	reminders map[string]*domain.Reminder
}

func NewMemoryReminderRepo() *MemoryReminderRepo {
	return &MemoryReminderRepo{reminders: map[string]*domain.Reminder{}}
}

var _ ReminderRepo = (*MemoryReminderRepo)(nil)

func (r *MemoryReminderRepo) List(_ context.Context) ([]*domain.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Reminder, 0, len(r.reminders))
	for _, rem := range r.reminders {
		cp := *rem
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryReminderRepo) Get(_ context.Context, id string) (*domain.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	cp := *rem
	return &cp, nil
}

func (r *MemoryReminderRepo) Create(_ context.Context, rem *domain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	rem.CreatedAt = now
	rem.UpdatedAt = now
	cp := *rem
	r.reminders[rem.ID] = &cp
	return nil
}

func (r *MemoryReminderRepo) Update(_ context.Context, id string, patch ReminderPatch) (*domain.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	if patch.Title != nil {
		rem.Title = *patch.Title
	}
	if patch.Description != nil {
		rem.Description = *patch.Description
	}
	if patch.Time != nil {
		rem.Time = *patch.Time
	}
	if patch.Days != nil {
		rem.Days = append([]string{}, (*patch.Days)...)
	}
	if patch.Type != nil {
		rem.Type = *patch.Type
	}
	if patch.Active != nil {
		rem.Active = *patch.Active
	}
	rem.UpdatedAt = time.Now()
	cp := *rem
	return &cp, nil
}

func (r *MemoryReminderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reminders[id]; !ok {
		return fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.reminders, id)
	return nil
}

// MemoryCompletionRepo 完成记录的内存实现
type MemoryCompletionRepo struct {
	mu          sync.RWMutex
	completions []*domain.Completion
	// occurrences (reminderID + "|" + day) -> true，模拟唯一索引
	occurrences map[string]bool
}

func NewMemoryCompletionRepo() *MemoryCompletionRepo {
	return &MemoryCompletionRepo{occurrences: map[string]bool{}}
}

var _ CompletionRepo = (*MemoryCompletionRepo)(nil)

func occurrenceKey(reminderID string, scheduledFor time.Time) string {
	return reminderID + "|" + scheduledFor.Format("2006-01-02")
}

func (r *MemoryCompletionRepo) Insert(_ context.Context, c *domain.Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := occurrenceKey(c.ReminderID, c.ScheduledFor)
	if r.occurrences[key] {
		return false, nil
	}
	c.CreatedAt = time.Now()
	cp := *c
	r.completions = append(r.completions, &cp)
	r.occurrences[key] = true
	return true, nil
}

func (r *MemoryCompletionRepo) ListSince(_ context.Context, since time.Time) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Completion
	for _, c := range r.completions {
		if !c.ScheduledFor.Before(since) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledFor.After(out[j].ScheduledFor)
	})
	return out, nil
}

func (r *MemoryCompletionRepo) ListDay(_ context.Context, day string) ([]*domain.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Completion
	for _, c := range r.completions {
		if c.ScheduledFor.Format("2006-01-02") == day {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out, nil
}

// MemorySettingsRepo 配置单例的内存实现
type MemorySettingsRepo struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{}
}

var _ SettingsRepo = (*MemorySettingsRepo)(nil)

func (r *MemorySettingsRepo) Get(_ context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		r.settings = domain.DefaultSettings()
		r.settings.UpdatedAt = time.Now()
	}
	cp := *r.settings
	return &cp, nil
}

func (r *MemorySettingsRepo) Update(_ context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settings == nil {
		r.settings = domain.DefaultSettings()
	}
	patch.Apply(r.settings)
	r.settings.UpdatedAt = time.Now()
	cp := *r.settings
	return &cp, nil
}

// MemoryKioskStateRepo kiosk 状态单例的内存实现
type MemoryKioskStateRepo struct {
	mu        sync.Mutex
	state     *domain.KioskState
	announced map[string]bool
}

func NewMemoryKioskStateRepo() *MemoryKioskStateRepo {
	return &MemoryKioskStateRepo{announced: map[string]bool{}}
}

var _ KioskStateRepo = (*MemoryKioskStateRepo)(nil)

func (r *MemoryKioskStateRepo) Get(_ context.Context) (*domain.KioskState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return domain.NewKioskState(), nil
	}
	cp := *r.state
	return &cp, nil
}

func (r *MemoryKioskStateRepo) Put(_ context.Context, s *domain.KioskState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.CurrentReminder = nil // derived, not stored
	r.state = &cp
	return nil
}

func (r *MemoryKioskStateRepo) MarkAnnounced(_ context.Context, reminderID, minute string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reminderID + "|" + minute
	if r.announced[key] {
		return false, nil
	}
	r.announced[key] = true
	return true, nil
}
