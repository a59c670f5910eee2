package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReminderType 分类：用药、日常任务、预约
type ReminderType string

const (
	ReminderMedication  ReminderType = "medication"
	ReminderTask        ReminderType = "task"
	ReminderAppointment ReminderType = "appointment"
)

// WeekdayAbbrs 星期缩写（index 对应 time.Weekday：0=Sunday）
var WeekdayAbbrs = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// AllDays 新建提醒未指定 days 时的默认值（每天）
var AllDays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Reminder 提醒领域模型（对应 reminders 表）
type Reminder struct {
	ID          string       `db:"reminder_id" json:"id"`
	Title       string       `db:"title" json:"title"`             // NOT NULL
	Description string       `db:"description" json:"description"` // DEFAULT ''
	Time        string       `db:"remind_time" json:"time"`        // "HH:MM" 24-hour, local
	Days        []string     `db:"days" json:"days"`               // subset of WeekdayAbbrs
	Type        ReminderType `db:"reminder_type" json:"type"`
	Active      bool         `db:"active" json:"active"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ScheduledOn reports whether the reminder recurs on the given weekday.
func (r *Reminder) ScheduledOn(day string) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}

// ValidReminderType 校验提醒类型
func ValidReminderType(t ReminderType) bool {
	switch t {
	case ReminderMedication, ReminderTask, ReminderAppointment:
		return true
	}
	return false
}

// ValidDay 校验星期缩写
func ValidDay(day string) bool {
	for _, d := range WeekdayAbbrs {
		if d == day {
			return true
		}
	}
	return false
}

// Validate 校验提醒的不变式（title 非空、time 可解析、days/type 合法）
func (r *Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if _, _, err := ParseHHMM(r.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !ValidReminderType(r.Type) {
		return fmt.Errorf("%w: unknown reminder type %q", ErrValidation, r.Type)
	}
	for _, d := range r.Days {
		if !ValidDay(d) {
			return fmt.Errorf("%w: unknown day %q", ErrValidation, d)
		}
	}
	return nil
}

// ParseHHMM 解析 "HH:MM"（24 小时制），返回时、分
func ParseHHMM(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	// 逐位校验数字，拒绝 "01:3a" 这类混入非数字的输入
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, minute, nil
}
