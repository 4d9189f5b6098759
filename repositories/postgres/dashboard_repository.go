package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"go.uber.org/zap"
)

// DashboardRepository implements the repositories.DashboardRepository
// interface. Every aggregate is computed over the same visibility condition
// the time-entry list queries use (timeEntryVisibility), so the dashboard can
// never show a total the actor could not reconstruct from the list endpoints.
type DashboardRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *DB, logger *zap.Logger) repositories.DashboardRepository {
	return &DashboardRepository{
		db:     db,
		logger: logger,
	}
}

// Stats computes the dashboard aggregates as of now
func (r *DashboardRepository) Stats(ctx context.Context, scope rbac.Scope, now time.Time) (*repositories.DashboardStats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Week starts on Monday
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &repositories.DashboardStats{}

	var err error
	if stats.TodayHours, err = r.sumHours(ctx, scope, today, today); err != nil {
		return nil, err
	}
	if stats.WeekHours, err = r.sumHours(ctx, scope, weekStart, today); err != nil {
		return nil, err
	}
	if stats.MonthHours, err = r.sumHours(ctx, scope, monthStart, today); err != nil {
		return nil, err
	}

	if stats.ActiveProjects, err = r.countActiveProjects(ctx, scope); err != nil {
		return nil, err
	}

	if stats.ByProject, err = r.hoursByProject(ctx, scope, monthStart); err != nil {
		return nil, err
	}

	// Department breakdown only for roles with department-level visibility
	if scope.ViewDepartmentData() || scope.CanManageSystem() {
		if stats.ByDepartment, err = r.hoursByDepartment(ctx, monthStart); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (r *DashboardRepository) sumHours(ctx context.Context, scope rbac.Scope, from, to time.Time) (float64, error) {
	args := []interface{}{from, to}
	condition, args := timeEntryVisibility(scope, "user_id", args)

	query := `
		SELECT COALESCE(SUM(duration), 0)
		FROM time_entries
		WHERE date >= $1 AND date <= $2 AND ` + condition

	executor := GetExecutor(ctx, r.db)
	var hours float64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&hours); err != nil {
		return 0, fmt.Errorf("failed to sum hours: %w", err)
	}
	return hours, nil
}

func (r *DashboardRepository) countActiveProjects(ctx context.Context, scope rbac.Scope) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM projects
		WHERE (start_date IS NULL OR start_date <= CURRENT_DATE)
		  AND (end_date IS NULL OR end_date >= CURRENT_DATE)
		  AND ` + projectVisibility(scope, "")

	executor := GetExecutor(ctx, r.db)
	var count int
	if err := executor.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active projects: %w", err)
	}
	return count, nil
}

func (r *DashboardRepository) hoursByProject(ctx context.Context, scope rbac.Scope, since time.Time) ([]repositories.ProjectHours, error) {
	args := []interface{}{since}
	condition, args := timeEntryVisibility(scope, "te.user_id", args)

	query := `
		SELECT te.project_id, p.name, COALESCE(SUM(te.duration), 0)
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
		WHERE te.date >= $1 AND ` + condition + `
		GROUP BY te.project_id, p.name
		ORDER BY 3 DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hours by project: %w", err)
	}
	defer rows.Close()

	var breakdown []repositories.ProjectHours
	for rows.Next() {
		var row repositories.ProjectHours
		if err := rows.Scan(&row.ProjectID, &row.ProjectName, &row.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan project hours: %w", err)
		}
		breakdown = append(breakdown, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project hours rows: %w", err)
	}

	return breakdown, nil
}

func (r *DashboardRepository) hoursByDepartment(ctx context.Context, since time.Time) ([]repositories.DepartmentHours, error) {
	query := `
		SELECT e.department, COALESCE(SUM(te.duration), 0)
		FROM time_entries te
		JOIN employees e ON e.user_id = te.user_id
		WHERE te.date >= $1 AND e.department <> ''
		GROUP BY e.department
		ORDER BY 2 DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query hours by department: %w", err)
	}
	defer rows.Close()

	var breakdown []repositories.DepartmentHours
	for rows.Next() {
		var row repositories.DepartmentHours
		if err := rows.Scan(&row.Department, &row.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan department hours: %w", err)
		}
		breakdown = append(breakdown, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department hours rows: %w", err)
	}

	return breakdown, nil
}
