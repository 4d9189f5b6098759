package employees

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// Service manages employee profiles
type Service struct {
	employees repositories.EmployeeRepository
	audits    *audit.AuditService
	logger    *zap.Logger
}

// NewService creates a new employee service
func NewService(employees repositories.EmployeeRepository, audits *audit.AuditService, logger *zap.Logger) *Service {
	return &Service{
		employees: employees,
		audits:    audits,
		logger:    logger,
	}
}

// Input carries the writable fields of an employee profile
type Input struct {
	FirstName  string `validate:"required,min=1,max=255"`
	LastName   string `validate:"required,min=1,max=255"`
	Email      string `validate:"required,email"`
	Department string `validate:"max=255"`
	Position   string `validate:"max=255"`
	HireDate   *time.Time
}

// List retrieves employees visible to the actor
func (s *Service) List(ctx context.Context, scope rbac.Scope) ([]*models.Employee, error) {
	employees, err := s.employees.List(ctx, scope)
	if err != nil {
		return nil, services.WrapInternal("failed to list employees", err)
	}
	return employees, nil
}

// ListByDepartment retrieves visible employees in one department
func (s *Service) ListByDepartment(ctx context.Context, scope rbac.Scope, department string) ([]*models.Employee, error) {
	employees, err := s.employees.ListByDepartment(ctx, scope, department)
	if err != nil {
		return nil, services.WrapInternal("failed to list employees", err)
	}
	return employees, nil
}

// Get retrieves one employee visible to the actor
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Employee, error) {
	employee, err := s.employees.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrEmployeeNotFound
		}
		return nil, services.WrapInternal("failed to get employee", err)
	}
	return employee, nil
}

// Create creates a new employee profile
func (s *Service) Create(ctx context.Context, scope rbac.Scope, input Input) (*models.Employee, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	employee := models.NewEmployee(input.FirstName, input.LastName, input.Email, input.Department)
	employee.Position = input.Position
	employee.HireDate = input.HireDate

	if err := s.employees.Create(ctx, scope, employee); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create employee", err)
	}

	if err := s.audits.LogEmployeeMutation(models.AuditActionEmployeeCreated, scope, employee.ID, map[string]interface{}{
		"department": employee.Department,
	}); err != nil {
		s.logger.Warn("failed to queue employee audit event", zap.Error(err))
	}

	return employee, nil
}

// Update replaces an employee profile's writable fields
func (s *Service) Update(ctx context.Context, scope rbac.Scope, id uuid.UUID, input Input) (*models.Employee, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	employee, err := s.employees.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrEmployeeNotFound
		}
		return nil, services.WrapInternal("failed to get employee", err)
	}

	employee.FirstName = input.FirstName
	employee.LastName = input.LastName
	employee.Email = input.Email
	employee.Department = input.Department
	employee.Position = input.Position
	employee.HireDate = input.HireDate

	if err := s.employees.Update(ctx, scope, employee); err != nil {
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update employee", err)
	}

	if err := s.audits.LogEmployeeMutation(models.AuditActionEmployeeUpdated, scope, employee.ID, map[string]interface{}{
		"department": employee.Department,
	}); err != nil {
		s.logger.Warn("failed to queue employee audit event", zap.Error(err))
	}

	return employee, nil
}

// LinkUser sets or clears the 1:1 link between a profile and a user account
func (s *Service) LinkUser(ctx context.Context, scope rbac.Scope, employeeID uuid.UUID, userID *uuid.UUID) error {
	if err := s.employees.LinkUser(ctx, scope, employeeID, userID); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrEmployeeNotFound
		}
		return services.WrapInternal("failed to link employee", err)
	}
	return nil
}

// Delete removes an employee profile
func (s *Service) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if err := s.employees.Delete(ctx, scope, id); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrEmployeeNotFound
		}
		return services.WrapInternal("failed to delete employee", err)
	}
	return nil
}
