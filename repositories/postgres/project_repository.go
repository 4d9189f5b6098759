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

// ProjectRepository implements the repositories.ProjectRepository interface
type ProjectRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB, logger *zap.Logger) repositories.ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

const projectColumns = "id, user_id, org_id, name, description, start_date, end_date, created_at, updated_at"

func scanProject(row interface{ Scan(...interface{}) error }) (*models.Project, error) {
	project := &models.Project{}
	var orgID uuid.NullUUID
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&orgID,
		&project.Name,
		&project.Description,
		&project.StartDate,
		&project.EndDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orgID.Valid {
		project.OrgID = orgID.UUID
	}
	return project, nil
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, scope rbac.Scope, project *models.Project) error {
	if !scope.CanCreateProject() {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO projects (id, user_id, org_id, name, description, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var orgID interface{}
	if project.OrgID != uuid.Nil {
		orgID = project.OrgID
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		orgID,
		project.Name,
		project.Description,
		project.StartDate,
		project.EndDate,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	r.logger.Debug("project created",
		zap.String("id", project.ID.String()),
		zap.String("name", project.Name))
	return nil
}

// GetByID retrieves a project visible to the actor
func (r *ProjectRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND ` + projectVisibility(scope, "")

	executor := GetExecutor(ctx, r.db)
	project, err := scanProject(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// List retrieves projects visible to the actor
func (r *ProjectRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + projectVisibility(scope, "") + ` ORDER BY created_at DESC`

	return r.queryProjects(ctx, query)
}

// ListActiveOn retrieves projects whose date window covers day
func (r *ProjectRepository) ListActiveOn(ctx context.Context, scope rbac.Scope, day time.Time) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE (start_date IS NULL OR start_date <= $1)
		  AND (end_date IS NULL OR end_date >= $1)
		ORDER BY name
	`

	return r.queryProjects(ctx, query, day)
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*models.Project, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Update updates a project. The edit capability is role-global: any actor
// holding it edits any project, regardless of who created it.
func (r *ProjectRepository) Update(ctx context.Context, scope rbac.Scope, project *models.Project) error {
	if !scope.CanEditProject() {
		return services.ErrProjectNotFound
	}

	query := `
		UPDATE projects
		SET name = $2,
		    description = $3,
		    start_date = $4,
		    end_date = $5,
		    updated_at = $6
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.StartDate,
		project.EndDate,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrProjectNotFound
	}

	r.logger.Debug("project updated", zap.String("id", project.ID.String()))
	return nil
}

// Delete deletes a project
func (r *ProjectRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if !scope.CanDeleteProject() {
		return services.ErrProjectNotFound
	}

	query := `DELETE FROM projects WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrProjectNotFound
	}

	r.logger.Debug("project deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *ProjectRepository) WithTx(tx repositories.Transaction) repositories.ProjectRepository {
	return &ProjectRepository{
		db:     r.db,
		logger: r.logger,
	}
}
