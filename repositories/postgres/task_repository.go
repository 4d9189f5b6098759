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

// TaskRepository implements the repositories.TaskRepository interface
type TaskRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB, logger *zap.Logger) repositories.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

const taskColumns = "t.id, t.project_id, t.name, t.description, t.status, t.created_at, t.updated_at"

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Name,
		&task.Description,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, scope rbac.Scope, task *models.Task) error {
	if !scope.Permissions().CanCreateTasks {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO tasks (id, project_id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Name,
		task.Description,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	r.logger.Debug("task created",
		zap.String("id", task.ID.String()),
		zap.String("project_id", task.ProjectID.String()))
	return nil
}

// GetByID retrieves a task. A task is visible when its parent project is.
func (r *TaskRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1 AND ` + projectVisibility(scope, "p")

	executor := GetExecutor(ctx, r.db)
	task, err := scanTask(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListByProject retrieves tasks for a project
func (r *TaskRepository) ListByProject(ctx context.Context, scope rbac.Scope, projectID uuid.UUID, includeArchived bool) ([]*models.Task, error) {
	statusCondition := "TRUE"
	if !includeArchived {
		statusCondition = fmt.Sprintf("t.status <> '%s'", models.TaskStatusArchived)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.project_id = $1 AND ` + statusCondition + ` AND ` + projectVisibility(scope, "p") + `
		ORDER BY t.created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// Update updates a task
func (r *TaskRepository) Update(ctx context.Context, scope rbac.Scope, task *models.Task) error {
	if !scope.Permissions().CanEditTasks {
		return services.ErrTaskNotFound
	}

	query := `
		UPDATE tasks
		SET name = $2,
		    description = $3,
		    status = $4,
		    updated_at = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.Status,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrTaskNotFound
	}

	r.logger.Debug("task updated", zap.String("id", task.ID.String()))
	return nil
}

// SetStatus transitions a task's lifecycle status
func (r *TaskRepository) SetStatus(ctx context.Context, scope rbac.Scope, id uuid.UUID, status models.TaskStatus) error {
	if !scope.Permissions().CanEditTasks {
		return services.ErrTaskNotFound
	}

	query := `UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrTaskNotFound
	}

	r.logger.Debug("task status updated",
		zap.String("id", id.String()),
		zap.String("status", string(status)))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *TaskRepository) WithTx(tx repositories.Transaction) repositories.TaskRepository {
	return &TaskRepository{
		db:     r.db,
		logger: r.logger,
	}
}
