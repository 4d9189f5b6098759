package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timetrackerpro/backend/rbac"
	"go.uber.org/zap"
)

func singleValueRows(column string, value interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{column}).AddRow(value)
}

func TestDashboardStats(t *testing.T) {
	// Wednesday 2025-06-04; the week starts Monday 2025-06-02, the month on
	// 2025-06-01.
	now := time.Date(2025, time.June, 4, 15, 30, 0, 0, time.UTC)
	today := time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	t.Run("employee aggregates stay scoped to own rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDashboardRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}

		// The same own-rows condition appears in every sum, matching the
		// list queries.
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(duration\), 0\)\s+FROM time_entries\s+WHERE date >= \$1 AND date <= \$2 AND user_id = \$3`).
			WithArgs(today, today, scope.UserID).
			WillReturnRows(singleValueRows("sum", 4.5))
		mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 AND user_id = \$3`).
			WithArgs(weekStart, today, scope.UserID).
			WillReturnRows(singleValueRows("sum", 16.0))
		mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 AND user_id = \$3`).
			WithArgs(monthStart, today, scope.UserID).
			WillReturnRows(singleValueRows("sum", 20.25))

		mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM projects`).
			WillReturnRows(singleValueRows("count", 3))

		mock.ExpectQuery(`FROM time_entries te\s+JOIN projects p ON p\.id = te\.project_id\s+WHERE te\.date >= \$1 AND te\.user_id = \$2`).
			WithArgs(monthStart, scope.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"project_id", "name", "sum"}).
				AddRow(uuid.New(), "Platform migration", 20.25))

		stats, err := repo.Stats(context.Background(), scope, now)
		require.NoError(t, err)
		assert.Equal(t, 4.5, stats.TodayHours)
		assert.Equal(t, 16.0, stats.WeekHours)
		assert.Equal(t, 20.25, stats.MonthHours)
		assert.Equal(t, 3, stats.ActiveProjects)
		require.Len(t, stats.ByProject, 1)
		// No department breakdown for an employee.
		assert.Nil(t, stats.ByDepartment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("manager gets the department breakdown over all rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDashboardRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleManager}

		mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 AND TRUE`).
			WithArgs(today, today).
			WillReturnRows(singleValueRows("sum", 40.0))
		mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 AND TRUE`).
			WithArgs(weekStart, today).
			WillReturnRows(singleValueRows("sum", 120.0))
		mock.ExpectQuery(`WHERE date >= \$1 AND date <= \$2 AND TRUE`).
			WithArgs(monthStart, today).
			WillReturnRows(singleValueRows("sum", 160.0))

		mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM projects`).
			WillReturnRows(singleValueRows("count", 7))

		mock.ExpectQuery(`WHERE te\.date >= \$1 AND TRUE`).
			WithArgs(monthStart).
			WillReturnRows(sqlmock.NewRows([]string{"project_id", "name", "sum"}))

		mock.ExpectQuery(`JOIN employees e ON e\.user_id = te\.user_id`).
			WithArgs(monthStart).
			WillReturnRows(sqlmock.NewRows([]string{"department", "sum"}).
				AddRow("Engineering", 100.0).
				AddRow("Design", 60.0))

		stats, err := repo.Stats(context.Background(), scope, now)
		require.NoError(t, err)
		assert.Equal(t, 160.0, stats.MonthHours)
		require.Len(t, stats.ByDepartment, 2)
		assert.Equal(t, "Engineering", stats.ByDepartment[0].Department)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("week start rolls back to Monday across month boundaries", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewDashboardRepository(db, zap.NewNop())

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}

		// Sunday 2025-06-01: the week began Monday 2025-05-26.
		sunday := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
		sundayDay := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		mondayPrior := time.Date(2025, time.May, 26, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT COALESCE`).
			WithArgs(sundayDay, sundayDay, scope.UserID).
			WillReturnRows(singleValueRows("sum", 0.0))
		mock.ExpectQuery(`SELECT COALESCE`).
			WithArgs(mondayPrior, sundayDay, scope.UserID).
			WillReturnRows(singleValueRows("sum", 0.0))
		mock.ExpectQuery(`SELECT COALESCE`).
			WithArgs(sundayDay, sundayDay, scope.UserID).
			WillReturnRows(singleValueRows("sum", 0.0))
		mock.ExpectQuery(`SELECT COUNT`).
			WillReturnRows(singleValueRows("count", 0))
		mock.ExpectQuery(`JOIN projects`).
			WithArgs(sundayDay, scope.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"project_id", "name", "sum"}))

		_, err := repo.Stats(context.Background(), scope, sunday)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
