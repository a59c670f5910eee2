package domain

import (
	"fmt"
	"time"
)

// DefaultSettingsID settings 单例的固定主键
const DefaultSettingsID = "default"

// Settings 看护者可配置项（单例，settings_id='default'）
type Settings struct {
	SettingsID       string    `db:"settings_id" json:"settingsId"`
	ReminderLeadTime int       `db:"reminder_lead_time" json:"reminderLeadTime"` // 分钟，0-120
	DisplayOnly      bool      `db:"display_only" json:"displayOnly"`
	AutoSkipTimeout  int       `db:"auto_skip_timeout" json:"autoSkipTimeout"` // 分钟，0 表示禁用
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultSettings 首次访问时自动创建的默认配置
func DefaultSettings() *Settings {
	return &Settings{
		SettingsID:       DefaultSettingsID,
		ReminderLeadTime: 30,
		DisplayOnly:      false,
		AutoSkipTimeout:  0,
	}
}

// SettingsPatch 部分更新（nil 字段保持原值）
type SettingsPatch struct {
	ReminderLeadTime *int  `json:"reminderLeadTime"`
	DisplayOnly      *bool `json:"displayOnly"`
	AutoSkipTimeout  *int  `json:"autoSkipTimeout"`
}

// Validate 校验可配置项的取值范围
func (p *SettingsPatch) Validate() error {
	if p.ReminderLeadTime != nil && (*p.ReminderLeadTime < 0 || *p.ReminderLeadTime > 120) {
		return fmt.Errorf("%w: reminderLeadTime must be between 0 and 120 minutes", ErrValidation)
	}
	if p.AutoSkipTimeout != nil && *p.AutoSkipTimeout < 0 {
		return fmt.Errorf("%w: autoSkipTimeout must not be negative", ErrValidation)
	}
	return nil
}

// Apply 将补丁应用到现有配置
func (p *SettingsPatch) Apply(s *Settings) {
	if p.ReminderLeadTime != nil {
		s.ReminderLeadTime = *p.ReminderLeadTime
	}
	if p.DisplayOnly != nil {
		s.DisplayOnly = *p.DisplayOnly
	}
	if p.AutoSkipTimeout != nil {
		s.AutoSkipTimeout = *p.AutoSkipTimeout
	}
}
