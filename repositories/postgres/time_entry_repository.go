package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"go.uber.org/zap"
)

// TimeEntryRepository implements the repositories.TimeEntryRepository interface
type TimeEntryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *DB, logger *zap.Logger) repositories.TimeEntryRepository {
	return &TimeEntryRepository{
		db:     db,
		logger: logger,
	}
}

const timeEntryColumns = "id, user_id, project_id, task_id, date, start_time, end_time, duration, description, created_at, updated_at"

func scanTimeEntry(row interface{ Scan(...interface{}) error }) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ProjectID,
		&entry.TaskID,
		&entry.Date,
		&entry.StartTime,
		&entry.EndTime,
		&entry.Duration,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// mutationCondition limits a write to rows the actor may mutate: admins reach
// every row, everyone else only their own.
func mutationCondition(scope rbac.Scope, args []interface{}) (string, []interface{}, error) {
	if scope.EffectiveRole().IsViewer() {
		return "", nil, services.ErrInsufficientPermissions
	}
	if scope.EffectiveRole().IsAdmin() {
		return "TRUE", args, nil
	}
	args = append(args, scope.UserID)
	return fmt.Sprintf("user_id = $%d", len(args)), args, nil
}

// Create inserts a new entry. Ownership is re-checked here: a non-admin can
// only insert an entry recorded against their own user ID.
func (r *TimeEntryRepository) Create(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error {
	if scope.EffectiveRole().IsViewer() {
		return services.ErrInsufficientPermissions
	}
	if !scope.EffectiveRole().IsAdmin() && entry.UserID != scope.UserID {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO time_entries (id, user_id, project_id, task_id, date, start_time, end_time, duration, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ProjectID,
		entry.TaskID,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.Duration,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	r.logger.Debug("time entry created",
		zap.String("id", entry.ID.String()),
		zap.String("user_id", entry.UserID.String()),
		zap.Float64("duration", entry.Duration))
	return nil
}

// GetByID retrieves an entry visible to the actor
func (r *TimeEntryRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.TimeEntry, error) {
	args := []interface{}{id}
	condition, args := timeEntryVisibility(scope, "user_id", args)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1 AND ` + condition

	executor := GetExecutor(ctx, r.db)
	entry, err := scanTimeEntry(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrTimeEntryNotFound
		}
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}

	return entry, nil
}

// List retrieves entries visible to the actor, newest first. The filter can
// only narrow within the visible set: every clause is ANDed onto the
// visibility condition.
func (r *TimeEntryRepository) List(ctx context.Context, scope rbac.Scope, filter repositories.TimeEntryFilter) ([]*models.TimeEntry, error) {
	var args []interface{}
	condition, args := timeEntryVisibility(scope, "user_id", args)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE ` + condition

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY date DESC, start_time DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entry rows: %w", err)
	}

	return entries, nil
}

// Update updates an entry the actor may mutate. An entry outside the actor's
// reach updates zero rows and reports not-found.
func (r *TimeEntryRepository) Update(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error {
	args := []interface{}{
		entry.ID,
		entry.ProjectID,
		entry.TaskID,
		entry.Date,
		entry.StartTime,
		entry.EndTime,
		entry.Duration,
		entry.Description,
		time.Now(),
	}
	condition, args, err := mutationCondition(scope, args)
	if err != nil {
		return err
	}

	query := `
		UPDATE time_entries
		SET project_id = $2,
		    task_id = $3,
		    date = $4,
		    start_time = $5,
		    end_time = $6,
		    duration = $7,
		    description = $8,
		    updated_at = $9
		WHERE id = $1 AND ` + condition

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrTimeEntryNotFound
	}

	r.logger.Debug("time entry updated", zap.String("id", entry.ID.String()))
	return nil
}

// Delete removes an entry the actor may mutate
func (r *TimeEntryRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	args := []interface{}{id}
	condition, args, err := mutationCondition(scope, args)
	if err != nil {
		return err
	}

	query := `DELETE FROM time_entries WHERE id = $1 AND ` + condition

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrTimeEntryNotFound
	}

	r.logger.Debug("time entry deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *TimeEntryRepository) WithTx(tx repositories.Transaction) repositories.TimeEntryRepository {
	return &TimeEntryRepository{
		db:     r.db,
		logger: r.logger,
	}
}
