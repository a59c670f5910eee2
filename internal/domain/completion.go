package domain

import "time"

// CompletionStatus 完成记录状态
// missed 由查询侧推导、snoozed 预留，核心流程只写 completed / skipped
type CompletionStatus string

const (
	StatusCompleted CompletionStatus = "completed"
	StatusSkipped   CompletionStatus = "skipped"
	StatusMissed    CompletionStatus = "missed"
	StatusSnoozed   CompletionStatus = "snoozed"
)

// Completion 单次提醒的用户响应（对应 completions 表）
// 不变式：每个 (reminder_id, scheduled_for 的本地日期) 至多一条
type Completion struct {
	ID           string           `db:"completion_id" json:"id"`
	ReminderID   string           `db:"reminder_id" json:"reminderId"`
	Status       CompletionStatus `db:"status" json:"status"`
	ScheduledFor time.Time        `db:"scheduled_for" json:"scheduledFor"` // local date + reminder time
	CompletedAt  time.Time        `db:"completed_at" json:"completedAt"`   // wall-clock of the action
	Notes        string           `db:"notes" json:"notes"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`

	// Reminder 关联的提醒（查询时展开，不落库）
	Reminder *Reminder `db:"-" json:"reminder,omitempty"`
}
