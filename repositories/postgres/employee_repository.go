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

// EmployeeRepository implements the repositories.EmployeeRepository interface
type EmployeeRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *DB, logger *zap.Logger) repositories.EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

const employeeColumns = "id, user_id, first_name, last_name, email, department, position, hire_date, created_at, updated_at"

func scanEmployee(row interface{ Scan(...interface{}) error }) (*models.Employee, error) {
	employee := &models.Employee{}
	err := row.Scan(
		&employee.ID,
		&employee.UserID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.Department,
		&employee.Position,
		&employee.HireDate,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// Create creates a new employee profile
func (r *EmployeeRepository) Create(ctx context.Context, scope rbac.Scope, employee *models.Employee) error {
	if !scope.CanManageEmployees() {
		return services.ErrInsufficientPermissions
	}

	query := `
		INSERT INTO employees (id, user_id, first_name, last_name, email, department, position, hire_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		employee.ID,
		employee.UserID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Department,
		employee.Position,
		employee.HireDate,
		employee.CreatedAt,
		employee.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	r.logger.Debug("employee created",
		zap.String("id", employee.ID.String()),
		zap.String("department", employee.Department))
	return nil
}

// GetByID retrieves an employee visible to the actor
func (r *EmployeeRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Employee, error) {
	args := []interface{}{id}
	condition, args := employeeVisibility(scope, "user_id", args)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND ` + condition

	executor := GetExecutor(ctx, r.db)
	employee, err := scanEmployee(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, nil
}

// GetByUserID retrieves the profile linked to a user account
func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1`

	executor := GetExecutor(ctx, r.db)
	employee, err := scanEmployee(executor.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, nil
}

// List retrieves employees visible to the actor
func (r *EmployeeRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.Employee, error) {
	var args []interface{}
	condition, args := employeeVisibility(scope, "user_id", args)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ` + condition + ` ORDER BY last_name, first_name`

	return r.queryEmployees(ctx, query, args...)
}

// ListByDepartment retrieves visible employees in one department
func (r *EmployeeRepository) ListByDepartment(ctx context.Context, scope rbac.Scope, department string) ([]*models.Employee, error) {
	args := []interface{}{department}
	condition, args := employeeVisibility(scope, "user_id", args)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE department = $1 AND ` + condition + ` ORDER BY last_name, first_name`

	return r.queryEmployees(ctx, query, args...)
}

func (r *EmployeeRepository) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]*models.Employee, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee rows: %w", err)
	}

	return employees, nil
}

// Update updates an employee profile
func (r *EmployeeRepository) Update(ctx context.Context, scope rbac.Scope, employee *models.Employee) error {
	if !scope.CanManageEmployees() {
		return services.ErrEmployeeNotFound
	}

	query := `
		UPDATE employees
		SET first_name = $2,
		    last_name = $3,
		    email = $4,
		    department = $5,
		    position = $6,
		    hire_date = $7,
		    updated_at = $8
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Department,
		employee.Position,
		employee.HireDate,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrEmployeeNotFound
	}

	r.logger.Debug("employee updated", zap.String("id", employee.ID.String()))
	return nil
}

// LinkUser sets or clears the 1:1 user link
func (r *EmployeeRepository) LinkUser(ctx context.Context, scope rbac.Scope, employeeID uuid.UUID, userID *uuid.UUID) error {
	if !scope.CanManageEmployees() {
		return services.ErrEmployeeNotFound
	}

	query := `UPDATE employees SET user_id = $2, updated_at = $3 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, employeeID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link employee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrEmployeeNotFound
	}

	r.logger.Debug("employee link updated", zap.String("id", employeeID.String()))
	return nil
}

// Delete removes an employee profile
func (r *EmployeeRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if !scope.CanManageEmployees() {
		return services.ErrEmployeeNotFound
	}

	query := `DELETE FROM employees WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return services.ErrEmployeeNotFound
	}

	r.logger.Debug("employee deleted", zap.String("id", id.String()))
	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *EmployeeRepository) WithTx(tx repositories.Transaction) repositories.EmployeeRepository {
	return &EmployeeRepository{
		db:     r.db,
		logger: r.logger,
	}
}
