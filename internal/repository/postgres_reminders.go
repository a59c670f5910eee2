package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carekiosk/internal/domain"

	"github.com/lib/pq"
)

// PostgresReminderRepo 提醒仓库 PostgreSQL 实现
type PostgresReminderRepo struct {
	db *sql.DB
}

// NewPostgresReminderRepo 创建提醒仓库
func NewPostgresReminderRepo(db *sql.DB) *PostgresReminderRepo {
	return &PostgresReminderRepo{db: db}
}

var _ ReminderRepo = (*PostgresReminderRepo)(nil)

const reminderColumns = `
	reminder_id::text,
	title,
	description,
	remind_time,
	days,
	reminder_type,
	active,
	created_at,
	updated_at`

func scanReminder(row interface{ Scan(...any) error }) (*domain.Reminder, error) {
	var r domain.Reminder
	var days pq.StringArray
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Time,
		&days,
		&r.Type,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Time = strings.TrimSpace(r.Time) // CHAR(5) padding
	r.Days = []string(days)
	return &r, nil
}

// List 全部提醒，按 time 升序
func (repo *PostgresReminderRepo) List(ctx context.Context) ([]*domain.Reminder, error) {
	query := `SELECT` + reminderColumns + `
		FROM reminders
		ORDER BY remind_time ASC, created_at ASC`

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// Get 按 reminder_id 读取
func (repo *PostgresReminderRepo) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	query := `SELECT` + reminderColumns + `
		FROM reminders
		WHERE reminder_id = $1::uuid`

	r, err := scanReminder(repo.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// Create 插入新提醒
func (repo *PostgresReminderRepo) Create(ctx context.Context, r *domain.Reminder) error {
	query := `
		INSERT INTO reminders (reminder_id, title, description, remind_time, days, reminder_type, active)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := repo.db.QueryRowContext(ctx, query,
		r.ID, r.Title, r.Description, r.Time, pq.Array(r.Days), r.Type, r.Active,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// Update 部分更新，只拼接出现的字段
func (repo *PostgresReminderRepo) Update(ctx context.Context, id string, patch ReminderPatch) (*domain.Reminder, error) {
	set := []string{}
	args := []any{}
	i := 1

	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Time != nil {
		add("remind_time", *patch.Time)
	}
	if patch.Days != nil {
		add("days", pq.Array(*patch.Days))
	}
	if patch.Type != nil {
		add("reminder_type", *patch.Type)
	}
	if patch.Active != nil {
		add("active", *patch.Active)
	}
	set = append(set, "updated_at = now()")

	query := fmt.Sprintf(`
		UPDATE reminders SET %s
		WHERE reminder_id = $%d::uuid
		RETURNING`+reminderColumns,
		strings.Join(set, ", "), i)
	args = append(args, id)

	r, err := scanReminder(repo.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return r, nil
}

// Delete 删除提醒（完成记录级联删除）
func (repo *PostgresReminderRepo) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE reminder_id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
