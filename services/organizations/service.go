package organizations

import (
	"context"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// Service manages organizations and their departments
type Service struct {
	orgs   repositories.OrganizationRepository
	logger *zap.Logger
}

// NewService creates a new organization service
func NewService(orgs repositories.OrganizationRepository, logger *zap.Logger) *Service {
	return &Service{
		orgs:   orgs,
		logger: logger,
	}
}

// Input carries the writable fields of an organization
type Input struct {
	Name string `validate:"required,min=1,max=255"`
	Slug string `validate:"required,min=1,max=100"`
}

// List retrieves all organizations
func (s *Service) List(ctx context.Context, scope rbac.Scope) ([]*models.Organization, error) {
	orgs, err := s.orgs.List(ctx, scope)
	if err != nil {
		return nil, services.WrapInternal("failed to list organizations", err)
	}
	return orgs, nil
}

// Get retrieves one organization
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrOrganizationNotFound
		}
		return nil, services.WrapInternal("failed to get organization", err)
	}
	return org, nil
}

// Create creates a new organization
func (s *Service) Create(ctx context.Context, scope rbac.Scope, input Input) (*models.Organization, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	org := models.NewOrganization(input.Name, input.Slug)
	if err := s.orgs.Create(ctx, scope, org); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create organization", err)
	}

	s.logger.Info("organization created",
		zap.String("id", org.ID.String()),
		zap.String("slug", org.Slug))

	return org, nil
}

// Update replaces an organization's writable fields
func (s *Service) Update(ctx context.Context, scope rbac.Scope, id uuid.UUID, input Input) (*models.Organization, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	org, err := s.orgs.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrOrganizationNotFound
		}
		return nil, services.WrapInternal("failed to get organization", err)
	}

	org.Name = input.Name
	org.Slug = input.Slug

	if err := s.orgs.Update(ctx, scope, org); err != nil {
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update organization", err)
	}

	return org, nil
}

// Delete removes an organization
func (s *Service) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if err := s.orgs.Delete(ctx, scope, id); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrOrganizationNotFound
		}
		return services.WrapInternal("failed to delete organization", err)
	}
	return nil
}

// CreateDepartment creates a department under an organization
func (s *Service) CreateDepartment(ctx context.Context, scope rbac.Scope, orgID uuid.UUID, name string) (*models.Department, error) {
	if err := utils.ValidateRequired(name, "name"); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	if _, err := s.orgs.GetByID(ctx, scope, orgID); err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrOrganizationNotFound
		}
		return nil, services.WrapInternal("failed to get organization", err)
	}

	dept := models.NewDepartment(orgID, name)
	if err := s.orgs.CreateDepartment(ctx, scope, dept); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create department", err)
	}

	return dept, nil
}

// ListDepartments retrieves departments for an organization
func (s *Service) ListDepartments(ctx context.Context, scope rbac.Scope, orgID uuid.UUID) ([]*models.Department, error) {
	depts, err := s.orgs.ListDepartments(ctx, scope, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to list departments", err)
	}
	return depts, nil
}

// DeleteDepartment removes a department
func (s *Service) DeleteDepartment(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if err := s.orgs.DeleteDepartment(ctx, scope, id); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrDepartmentNotFound
		}
		return services.WrapInternal("failed to delete department", err)
	}
	return nil
}
