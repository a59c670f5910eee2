package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"carekiosk/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockCompletionDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresCompletionRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresCompletionRepo(db)
}

var completionCols = []string{
	"completion_id", "reminder_id", "status",
	"scheduled_for", "completed_at", "notes", "created_at",
}

func sampleCompletion() *domain.Completion {
	scheduled := time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)
	return &domain.Completion{
		ID:           uuid.New().String(),
		ReminderID:   uuid.New().String(),
		Status:       domain.StatusCompleted,
		ScheduledFor: scheduled,
		CompletedAt:  scheduled.Add(2 * time.Minute),
	}
}

func TestCompletionInsert_New(t *testing.T) {
	db, mock, repo := setupMockCompletionDB(t)
	defer db.Close()

	c := sampleCompletion()
	mock.ExpectExec(`INSERT INTO completions`).
		WithArgs(c.ID, c.ReminderID, c.Status, c.ScheduledFor, c.CompletedAt, c.Notes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Insert(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletionInsert_ConflictIsNoop(t *testing.T) {
	db, mock, repo := setupMockCompletionDB(t)
	defer db.Close()

	c := sampleCompletion()
	// 唯一索引 (reminder_id, scheduled_day) 冲突：DO NOTHING，0 行受影响
	mock.ExpectExec(`INSERT INTO completions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Insert(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletionListSince(t *testing.T) {
	db, mock, repo := setupMockCompletionDB(t)
	defer db.Close()

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	id := uuid.New().String()
	reminderID := uuid.New().String()
	scheduled := time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)

	rows := sqlmock.NewRows(completionCols).
		AddRow(id, reminderID, "skipped", scheduled, scheduled, "", scheduled)

	mock.ExpectQuery(`SELECT`).WithArgs(since).WillReturnRows(rows)

	completions, err := repo.ListSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.Equal(t, id, completions[0].ID)
	assert.Equal(t, reminderID, completions[0].ReminderID)
	assert.Equal(t, domain.StatusSkipped, completions[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletionListDay(t *testing.T) {
	db, mock, repo := setupMockCompletionDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("2026-01-05").
		WillReturnRows(sqlmock.NewRows(completionCols))

	completions, err := repo.ListDay(context.Background(), "2026-01-05")
	require.NoError(t, err)
	assert.Empty(t, completions)
	require.NoError(t, mock.ExpectationsWereMet())
}
