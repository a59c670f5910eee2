package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carekiosk/internal/domain"
)

// PostgresSettingsRepo 配置单例仓库 PostgreSQL 实现
type PostgresSettingsRepo struct {
	db *sql.DB
}

// NewPostgresSettingsRepo 创建配置仓库
func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

var _ SettingsRepo = (*PostgresSettingsRepo)(nil)

// Get 读取单例；不存在时按默认值创建（lazy init）
func (repo *PostgresSettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	def := domain.DefaultSettings()

	// ON CONFLICT DO UPDATE 保证已有行原样返回，不覆盖
	query := `
		INSERT INTO settings (settings_id, reminder_lead_time, display_only, auto_skip_timeout)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (settings_id) DO UPDATE SET settings_id = EXCLUDED.settings_id
		RETURNING settings_id, reminder_lead_time, display_only, auto_skip_timeout, updated_at`

	var s domain.Settings
	err := repo.db.QueryRowContext(ctx, query,
		def.SettingsID, def.ReminderLeadTime, def.DisplayOnly, def.AutoSkipTimeout,
	).Scan(&s.SettingsID, &s.ReminderLeadTime, &s.DisplayOnly, &s.AutoSkipTimeout, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// Update 原子 upsert：按固定主键合并补丁
func (repo *PostgresSettingsRepo) Update(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	current, err := repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	patch.Apply(current)

	query := `
		UPDATE settings
		SET reminder_lead_time = $2,
		    display_only = $3,
		    auto_skip_timeout = $4,
		    updated_at = now()
		WHERE settings_id = $1
		RETURNING settings_id, reminder_lead_time, display_only, auto_skip_timeout, updated_at`

	var s domain.Settings
	err = repo.db.QueryRowContext(ctx, query,
		current.SettingsID, current.ReminderLeadTime, current.DisplayOnly, current.AutoSkipTimeout,
	).Scan(&s.SettingsID, &s.ReminderLeadTime, &s.DisplayOnly, &s.AutoSkipTimeout, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("settings: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return &s, nil
}
