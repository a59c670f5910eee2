package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"carekiosk/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockReminderDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresReminderRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresReminderRepo(db)
}

var reminderCols = []string{
	"reminder_id", "title", "description", "remind_time",
	"days", "reminder_type", "active", "created_at", "updated_at",
}

func TestReminderList_Success(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id1 := uuid.New().String()
	id2 := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows(reminderCols).
		AddRow(id1, "Morning pills", "with water", "08:00", "{mon,tue,wed,thu,fri,sat,sun}", "medication", true, now, now).
		AddRow(id2, "Walk", "", "09:30", "{mon,wed,fri}", "task", true, now, now)

	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	reminders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	assert.Equal(t, id1, reminders[0].ID)
	assert.Equal(t, "Morning pills", reminders[0].Title)
	assert.Equal(t, "08:00", reminders[0].Time)
	assert.Equal(t, domain.AllDays, reminders[0].Days)
	assert.Equal(t, domain.ReminderMedication, reminders[0].Type)
	assert.True(t, reminders[0].Active)

	assert.Equal(t, []string{"mon", "wed", "fri"}, reminders[1].Days)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderGet_TrimsCharPadding(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	now := time.Now()

	// CHAR(5) 列可能带尾随空格
	rows := sqlmock.NewRows(reminderCols).
		AddRow(id, "Walk", "", "09:30", "{mon}", "task", true, now, now)

	mock.ExpectQuery(`SELECT`).WithArgs(id).WillReturnRows(rows)

	r, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "09:30", r.Time)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	mock.ExpectQuery(`SELECT`).WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderCreate_Success(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	r := &domain.Reminder{
		ID:     uuid.New().String(),
		Title:  "Morning pills",
		Time:   "08:00",
		Days:   []string{"mon", "tue"},
		Type:   domain.ReminderMedication,
		Active: true,
	}

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO reminders`).
		WithArgs(r.ID, r.Title, r.Description, r.Time, pq.Array(r.Days), r.Type, r.Active).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), r))
	assert.Equal(t, now, r.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderUpdate_PartialPatch(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	now := time.Now()
	active := false

	rows := sqlmock.NewRows(reminderCols).
		AddRow(id, "Walk", "", "09:30", "{mon}", "task", false, now, now)

	// 只有 active 出现在 SET 子句里
	mock.ExpectQuery(`UPDATE reminders SET active = \$1, updated_at = now\(\)`).
		WithArgs(active, id).
		WillReturnRows(rows)

	r, err := repo.Update(context.Background(), id, ReminderPatch{Active: &active})
	require.NoError(t, err)
	assert.False(t, r.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderUpdate_NotFound(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	title := "New title"
	mock.ExpectQuery(`UPDATE reminders SET`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), id, ReminderPatch{Title: &title})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReminderDelete(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	mock.ExpectExec(`DELETE FROM reminders`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderDelete_NotFound(t *testing.T) {
	db, mock, repo := setupMockReminderDB(t)
	defer db.Close()

	id := uuid.New().String()
	mock.ExpectExec(`DELETE FROM reminders`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
