package tasks

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

// Service manages tasks inside projects
type Service struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
	logger   *zap.Logger
}

// NewService creates a new task service
func NewService(tasks repositories.TaskRepository, projects repositories.ProjectRepository, logger *zap.Logger) *Service {
	return &Service{
		tasks:    tasks,
		projects: projects,
		logger:   logger,
	}
}

// Input carries the writable fields of a task
type Input struct {
	Name        string `validate:"required,min=1,max=255"`
	Description string `validate:"max=4000"`
}

// ListByProject retrieves a project's tasks. Archived tasks are excluded
// unless requested; the entry-form selector never shows them.
func (s *Service) ListByProject(ctx context.Context, scope rbac.Scope, projectID uuid.UUID, includeArchived bool) ([]*models.Task, error) {
	// Resolve the project through the scope first so an invisible project
	// reads as not-found rather than an empty task list.
	if _, err := s.projects.GetByID(ctx, scope, projectID); err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrProjectNotFound
		}
		return nil, services.WrapInternal("failed to get project", err)
	}

	tasks, err := s.tasks.ListByProject(ctx, scope, projectID, includeArchived)
	if err != nil {
		return nil, services.WrapInternal("failed to list tasks", err)
	}
	return tasks, nil
}

// Get retrieves one task
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrTaskNotFound
		}
		return nil, services.WrapInternal("failed to get task", err)
	}
	return task, nil
}

// Create creates a new task under a project
func (s *Service) Create(ctx context.Context, scope rbac.Scope, projectID uuid.UUID, input Input) (*models.Task, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	if _, err := s.projects.GetByID(ctx, scope, projectID); err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrProjectNotFound
		}
		return nil, services.WrapInternal("failed to get project", err)
	}

	task := models.NewTask(projectID, input.Name, input.Description)
	if err := s.tasks.Create(ctx, scope, task); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create task", err)
	}

	return task, nil
}

// Update replaces a task's writable fields
func (s *Service) Update(ctx context.Context, scope rbac.Scope, id uuid.UUID, input Input) (*models.Task, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, services.WrapError(services.ErrorTypeValidation, err.Error(), err)
	}

	task, err := s.tasks.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrTaskNotFound
		}
		return nil, services.WrapInternal("failed to get task", err)
	}

	task.Name = input.Name
	task.Description = input.Description

	if err := s.tasks.Update(ctx, scope, task); err != nil {
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update task", err)
	}

	return task, nil
}

// SetStatus transitions a task's lifecycle status. Archiving a task freezes
// its time entries for everyone below admin.
func (s *Service) SetStatus(ctx context.Context, scope rbac.Scope, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	switch status {
	case models.TaskStatusActive, models.TaskStatusCompleted, models.TaskStatusArchived:
	default:
		return nil, services.ErrInvalidInput.WithDetail("status", "unknown task status")
	}

	task, err := s.tasks.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrTaskNotFound
		}
		return nil, services.WrapInternal("failed to get task", err)
	}

	if err := s.tasks.SetStatus(ctx, scope, id, status); err != nil {
		if services.IsNotFoundError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update task status", err)
	}
	task.Status = status

	s.logger.Info("task status changed",
		zap.String("task_id", id.String()),
		zap.String("status", string(status)))

	return task, nil
}
