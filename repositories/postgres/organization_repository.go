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

// OrganizationRepository implements the repositories.OrganizationRepository interface
type OrganizationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB, logger *zap.Logger) repositories.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, scope rbac.Scope, org *models.Organization) error {
	if !scope.CanManageSystem() {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO organizations (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	r.logger.Debug("organization created",
		zap.String("id", org.ID.String()),
		zap.String("slug", org.Slug))
	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	org := &models.Organization{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// List retrieves all organizations
func (r *OrganizationRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.Organization, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM organizations
		ORDER BY name
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Slug,
			&org.CreatedAt,
			&org.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization rows: %w", err)
	}

	return orgs, nil
}

// Update updates an organization
func (r *OrganizationRepository) Update(ctx context.Context, scope rbac.Scope, org *models.Organization) error {
	if !scope.CanManageSystem() {
		return services.ErrOrganizationNotFound
	}

	query := `
		UPDATE organizations
		SET name = $2,
		    slug = $3,
		    updated_at = $4
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrOrganizationNotFound
	}

	r.logger.Debug("organization updated", zap.String("id", org.ID.String()))
	return nil
}

// Delete deletes an organization
func (r *OrganizationRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if !scope.CanManageSystem() {
		return services.ErrOrganizationNotFound
	}

	query := `DELETE FROM organizations WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrOrganizationNotFound
	}

	r.logger.Debug("organization deleted", zap.String("id", id.String()))
	return nil
}

// CreateDepartment creates a department under an organization
func (r *OrganizationRepository) CreateDepartment(ctx context.Context, scope rbac.Scope, dept *models.Department) error {
	if !scope.CanManageSystem() {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO departments (id, org_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		dept.ID,
		dept.OrgID,
		dept.Name,
		dept.CreatedAt,
		dept.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}

	r.logger.Debug("department created",
		zap.String("id", dept.ID.String()),
		zap.String("name", dept.Name))
	return nil
}

// ListDepartments retrieves departments for an organization
func (r *OrganizationRepository) ListDepartments(ctx context.Context, scope rbac.Scope, orgID uuid.UUID) ([]*models.Department, error) {
	query := `
		SELECT id, org_id, name, created_at, updated_at
		FROM departments
		WHERE org_id = $1
		ORDER BY name
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var depts []*models.Department
	for rows.Next() {
		dept := &models.Department{}
		err := rows.Scan(
			&dept.ID,
			&dept.OrgID,
			&dept.Name,
			&dept.CreatedAt,
			&dept.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		depts = append(depts, dept)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department rows: %w", err)
	}

	return depts, nil
}

// DeleteDepartment removes a department
func (r *OrganizationRepository) DeleteDepartment(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if !scope.CanManageSystem() {
		return services.ErrDepartmentNotFound
	}

	query := `DELETE FROM departments WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrDepartmentNotFound
	}

	r.logger.Debug("department deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *OrganizationRepository) WithTx(tx repositories.Transaction) repositories.OrganizationRepository {
	return &OrganizationRepository{
		db:     r.db,
		logger: r.logger,
	}
}
