package database

import (
	"database/sql"
	"fmt"
)

// schema carekiosk 的三张持久化表
// kiosk_state 单例存 Redis（易变的展示状态），不在此处
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reminders (
		reminder_id   UUID PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		remind_time   CHAR(5) NOT NULL,
		days          TEXT[] NOT NULL,
		reminder_type VARCHAR(20) NOT NULL DEFAULT 'medication'
			CHECK (reminder_type IN ('medication', 'task', 'appointment')),
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS completions (
		completion_id UUID PRIMARY KEY,
		reminder_id   UUID NOT NULL REFERENCES reminders(reminder_id) ON DELETE CASCADE,
		status        VARCHAR(20) NOT NULL
			CHECK (status IN ('completed', 'missed', 'snoozed', 'skipped')),
		scheduled_for TIMESTAMPTZ NOT NULL,
		scheduled_day DATE NOT NULL,
		completed_at  TIMESTAMPTZ NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_completions_scheduled_for
		ON completions (scheduled_for DESC)`,
	// 每个 (reminder, 本地日期) 至多一条完成记录
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_completions_occurrence
		ON completions (reminder_id, scheduled_day)`,
	`CREATE TABLE IF NOT EXISTS settings (
		settings_id        VARCHAR(32) PRIMARY KEY,
		reminder_lead_time INT NOT NULL DEFAULT 30
			CHECK (reminder_lead_time BETWEEN 0 AND 120),
		display_only       BOOLEAN NOT NULL DEFAULT FALSE,
		auto_skip_timeout  INT NOT NULL DEFAULT 0
			CHECK (auto_skip_timeout >= 0),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema 启动时应用建表语句（幂等）
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
