package domain

import "time"

// DefaultKioskID 单一逻辑 kiosk 的固定标识
const DefaultKioskID = "default"

// KioskView kiosk 当前展示的画面
type KioskView string

const (
	ViewIdle      KioskView = "idle"
	ViewReminder  KioskView = "reminder"
	ViewCompleted KioskView = "completed"
)

// ValidKioskView 校验画面取值
func ValidKioskView(v KioskView) bool {
	switch v {
	case ViewIdle, ViewReminder, ViewCompleted:
		return true
	}
	return false
}

// KioskState kiosk 展示状态单例（状态机持有，存 Redis，kiosk_id='default'）
type KioskState struct {
	KioskID           string     `json:"kioskId"`
	CurrentReminderID *string    `json:"currentReminderId"` // nullable
	CurrentView       KioskView  `json:"currentView"`
	LastActivity      time.Time  `json:"lastActivity"`
	ConnectedAt       *time.Time `json:"connectedAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// CurrentReminder 广播和查询时展开 CurrentReminderID
	CurrentReminder *Reminder `json:"currentReminder,omitempty"`
}

// NewKioskState 初始空闲状态
func NewKioskState() *KioskState {
	return &KioskState{
		KioskID:     DefaultKioskID,
		CurrentView: ViewIdle,
	}
}
