package projects

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

// Service manages projects. Edit and delete are capability-gated, not
// ownership-gated: an actor holding the edit capability edits any project,
// including ones created by someone else.
type Service struct {
	projects repositories.ProjectRepository
	audits   *audit.AuditService
	logger   *zap.Logger
}

// NewService creates a new project service
func NewService(projects repositories.ProjectRepository, audits *audit.AuditService, logger *zap.Logger) *Service {
	return &Service{
		projects: projects,
		audits:   audits,
		logger:   logger,
	}
}

// Input carries the writable fields of a project
type Input struct {
	Name        string `validate:"required,min=1,max=255"`
	Description string `validate:"max=4000"`
	StartDate   *time.Time
	EndDate     *time.Time
}

// List retrieves projects visible to the actor
func (s *Service) List(ctx context.Context, scope rbac.Scope) ([]*models.Project, error) {
	projects, err := s.projects.List(ctx, scope)
	if err != nil {
		return nil, services.WrapInternal("failed to list projects", err)
	}
	return projects, nil
}

// Get retrieves one project visible to the actor
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrProjectNotFound
		}
		return nil, services.WrapInternal("failed to get project", err)
	}
	return project, nil
}

// Create creates a new project with the actor as creator
func (s *Service) Create(ctx context.Context, scope rbac.Scope, input Input) (*models.Project, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, services.ErrInvalidInput.WithDetail("end_date", "end date is before start date")
	}

	project := models.NewProject(scope.UserID, scope.OrganizationID, input.Name, input.Description)
	project.StartDate = input.StartDate
	project.EndDate = input.EndDate

	if err := s.projects.Create(ctx, scope, project); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create project", err)
	}

	if err := s.audits.LogProjectMutation(models.AuditActionProjectCreated, scope, project.ID, map[string]interface{}{
		"name": project.Name,
	}); err != nil {
		s.logger.Warn("failed to queue project audit event", zap.Error(err))
	}

	return project, nil
}

// Update replaces a project's writable fields
func (s *Service) Update(ctx context.Context, scope rbac.Scope, id uuid.UUID, input Input) (*models.Project, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, services.ErrInvalidInput.WithDetail("end_date", "end date is before start date")
	}

	project, err := s.projects.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrProjectNotFound
		}
		return nil, services.WrapInternal("failed to get project", err)
	}

	project.Name = input.Name
	project.Description = input.Description
	project.StartDate = input.StartDate
	project.EndDate = input.EndDate

	if err := s.projects.Update(ctx, scope, project); err != nil {
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update project", err)
	}

	if err := s.audits.LogProjectMutation(models.AuditActionProjectUpdated, scope, project.ID, map[string]interface{}{
		"name": project.Name,
	}); err != nil {
		s.logger.Warn("failed to queue project audit event", zap.Error(err))
	}

	return project, nil
}

// Delete removes a project
func (s *Service) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, scope, id); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrProjectNotFound
		}
		return services.WrapInternal("failed to delete project", err)
	}

	if err := s.audits.LogProjectMutation(models.AuditActionProjectDeleted, scope, id, nil); err != nil {
		s.logger.Warn("failed to queue project audit event", zap.Error(err))
	}

	return nil
}
