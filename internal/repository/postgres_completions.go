package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carekiosk/internal/domain"
)

// PostgresCompletionRepo 完成记录仓库 PostgreSQL 实现
type PostgresCompletionRepo struct {
	db *sql.DB
}

// NewPostgresCompletionRepo 创建完成记录仓库
func NewPostgresCompletionRepo(db *sql.DB) *PostgresCompletionRepo {
	return &PostgresCompletionRepo{db: db}
}

var _ CompletionRepo = (*PostgresCompletionRepo)(nil)

const completionColumns = `
	completion_id::text,
	reminder_id::text,
	status,
	scheduled_for,
	completed_at,
	notes,
	created_at`

func scanCompletion(row interface{ Scan(...any) error }) (*domain.Completion, error) {
	var c domain.Completion
	err := row.Scan(
		&c.ID,
		&c.ReminderID,
		&c.Status,
		&c.ScheduledFor,
		&c.CompletedAt,
		&c.Notes,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert 幂等插入：唯一索引 (reminder_id, scheduled_day) 冲突时不写入
func (repo *PostgresCompletionRepo) Insert(ctx context.Context, c *domain.Completion) (bool, error) {
	query := `
		INSERT INTO completions (completion_id, reminder_id, status, scheduled_for, scheduled_day, completed_at, notes)
		VALUES ($1::uuid, $2::uuid, $3, $4, $4::date, $5, $6)
		ON CONFLICT (reminder_id, scheduled_day) DO NOTHING`

	res, err := repo.db.ExecContext(ctx, query,
		c.ID, c.ReminderID, c.Status, c.ScheduledFor, c.CompletedAt, c.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to insert completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert completion: %w", err)
	}
	return affected > 0, nil
}

// ListSince scheduled_for >= since 的记录，最新在前（走 scheduled_for 索引）
func (repo *PostgresCompletionRepo) ListSince(ctx context.Context, since time.Time) ([]*domain.Completion, error) {
	query := `SELECT` + completionColumns + `
		FROM completions
		WHERE scheduled_for >= $1
		ORDER BY scheduled_for DESC`

	rows, err := repo.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListDay 指定本地日期的记录
func (repo *PostgresCompletionRepo) ListDay(ctx context.Context, day string) ([]*domain.Completion, error) {
	query := `SELECT` + completionColumns + `
		FROM completions
		WHERE scheduled_day = $1::date
		ORDER BY scheduled_for ASC`

	rows, err := repo.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions for day: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func collectCompletions(rows *sql.Rows) ([]*domain.Completion, error) {
	var completions []*domain.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
