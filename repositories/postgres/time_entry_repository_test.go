package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &DB{DB: sqlDB, logger: zap.NewNop()}, mock
}

func timeEntryRows(entries ...*models.TimeEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "project_id", "task_id", "date",
		"start_time", "end_time", "duration", "description",
		"created_at", "updated_at",
	})
	for _, e := range entries {
		rows.AddRow(e.ID, e.UserID, e.ProjectID, e.TaskID, e.Date,
			e.StartTime, e.EndTime, e.Duration, e.Description,
			e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func sampleEntry(userID uuid.UUID) *models.TimeEntry {
	now := time.Now()
	return &models.TimeEntry{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: uuid.New(),
		TaskID:    uuid.New(),
		Date:      time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "17:00",
		Duration:  8.0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTimeEntryList(t *testing.T) {
	t.Run("employee list is filtered to own rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		entry := sampleEntry(scope.UserID)

		mock.ExpectQuery(`SELECT (.+) FROM time_entries WHERE user_id = \$1 ORDER BY date DESC, start_time DESC LIMIT \$2`).
			WithArgs(scope.UserID, 100).
			WillReturnRows(timeEntryRows(entry))

		list, err := repo.List(context.Background(), scope, repositories.TimeEntryFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, entry.ID, list[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("manager list is unfiltered", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleManager}

		mock.ExpectQuery(`SELECT (.+) FROM time_entries WHERE TRUE ORDER BY date DESC, start_time DESC LIMIT \$1`).
			WithArgs(100).
			WillReturnRows(timeEntryRows(sampleEntry(uuid.New()), sampleEntry(uuid.New())))

		list, err := repo.List(context.Background(), scope, repositories.TimeEntryFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters are ANDed onto the visibility condition", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		filter := repositories.TimeEntryFilter{}
		other := uuid.New()
		filter.UserID = &other

		// The employee's own-rows condition stays; the filter can only
		// narrow further, so probing another user's id yields nothing.
		mock.ExpectQuery(`WHERE user_id = \$1 AND user_id = \$2`).
			WithArgs(scope.UserID, other, 100).
			WillReturnRows(timeEntryRows())

		list, err := repo.List(context.Background(), scope, filter)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeEntryGetByID(t *testing.T) {
	t.Run("row outside visibility reads as not-found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM time_entries WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id, scope.UserID).
			WillReturnRows(timeEntryRows())

		_, err := repo.GetByID(context.Background(), scope, id)
		assert.ErrorIs(t, err, services.ErrTimeEntryNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeEntryCreate(t *testing.T) {
	t.Run("viewer cannot create", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleViewer}
		err := repo.Create(context.Background(), scope, sampleEntry(scope.UserID))
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
	})

	t.Run("non-admin cannot create for someone else", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		err := repo.Create(context.Background(), scope, sampleEntry(uuid.New()))
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
	})

	t.Run("admin creates for any user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
		entry := sampleEntry(uuid.New())

		mock.ExpectExec(`INSERT INTO time_entries`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.Background(), scope, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeEntryUpdate(t *testing.T) {
	t.Run("zero rows affected reports not-found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		entry := sampleEntry(uuid.New()) // someone else's entry

		mock.ExpectExec(`UPDATE time_entries`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), scope, entry)
		assert.ErrorIs(t, err, services.ErrTimeEntryNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("viewer is refused before any query", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleViewer}
		err := repo.Update(context.Background(), scope, sampleEntry(scope.UserID))
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTimeEntryDelete(t *testing.T) {
	t.Run("employee delete is scoped to own rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM time_entries WHERE id = \$1 AND user_id = \$2`).
			WithArgs(id, scope.UserID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), scope, id)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin delete reaches any row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTimeEntryRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM time_entries WHERE id = \$1 AND TRUE`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), scope, id)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
