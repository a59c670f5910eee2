package repository

import (
	"context"
	"time"

	"carekiosk/internal/domain"
)

// ReminderPatch 提醒部分更新（nil 字段保持原值）
type ReminderPatch struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Time        *string              `json:"time"`
	Days        *[]string            `json:"days"`
	Type        *domain.ReminderType `json:"type"`
	Active      *bool                `json:"active"`
}

// ReminderRepo 提醒仓库
type ReminderRepo interface {
	// List 全部提醒，按 time 升序
	List(ctx context.Context) ([]*domain.Reminder, error)
	Get(ctx context.Context, id string) (*domain.Reminder, error)
	Create(ctx context.Context, r *domain.Reminder) error
	// Update 部分更新；不存在返回 domain.ErrNotFound
	Update(ctx context.Context, id string, patch ReminderPatch) (*domain.Reminder, error)
	Delete(ctx context.Context, id string) error
}

// CompletionRepo 完成记录仓库
type CompletionRepo interface {
	// Insert 幂等插入：同一 (reminder, 本地日期) 已存在时不写入并返回 false
	Insert(ctx context.Context, c *domain.Completion) (bool, error)
	// ListSince scheduled_for >= since 的记录，最新在前
	ListSince(ctx context.Context, since time.Time) ([]*domain.Completion, error)
	// ListDay 指定本地日期（"YYYY-MM-DD"）的记录
	ListDay(ctx context.Context, day string) ([]*domain.Completion, error)
}

// SettingsRepo 配置单例仓库
type SettingsRepo interface {
	// Get 读取单例；不存在时用默认值创建
	Get(ctx context.Context) (*domain.Settings, error)
	// Update 原子 upsert（按固定主键）
	Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error)
}

// KioskStateRepo kiosk 展示状态单例仓库
type KioskStateRepo interface {
	// Get 读取单例；不存在时返回初始空闲状态
	Get(ctx context.Context) (*domain.KioskState, error)
	// Put 原子写入整个快照
	Put(ctx context.Context, s *domain.KioskState) error
	// MarkAnnounced 记录某分钟已对提醒发过 reminder-due；返回是否首次
	// 同一分钟内的重复 tick 据此去重
	MarkAnnounced(ctx context.Context, reminderID, minute string) (bool, error)
}
