package timeentries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"go.uber.org/zap"
)

// Service manages time entries. Every mutation re-validates the full rule
// chain: the actor may touch the entry, the parent project's date window
// covers the entry date, and the parent task is not archived. Admins bypass
// the window and archive checks but nothing else does.
type Service struct {
	entries  repositories.TimeEntryRepository
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	audits   *audit.AuditService
	logger   *zap.Logger
}

// NewService creates a new time entry service
func NewService(
	entries repositories.TimeEntryRepository,
	projects repositories.ProjectRepository,
	tasks repositories.TaskRepository,
	audits *audit.AuditService,
	logger *zap.Logger,
) *Service {
	return &Service{
		entries:  entries,
		projects: projects,
		tasks:    tasks,
		audits:   audits,
		logger:   logger,
	}
}

// CreateInput carries the fields of a new time entry
type CreateInput struct {
	UserID      uuid.UUID
	ProjectID   uuid.UUID
	TaskID      uuid.UUID
	Date        time.Time
	StartTime   string
	EndTime     string
	Description string
}

// List retrieves entries visible to the actor
func (s *Service) List(ctx context.Context, scope rbac.Scope, filter repositories.TimeEntryFilter) ([]*models.TimeEntry, error) {
	entries, err := s.entries.List(ctx, scope, filter)
	if err != nil {
		return nil, services.WrapInternal("failed to list time entries", err)
	}
	return entries, nil
}

// Get retrieves one entry visible to the actor
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrTimeEntryNotFound
		}
		return nil, services.WrapInternal("failed to get time entry", err)
	}
	return entry, nil
}

// Create records a new time entry. The duration is derived server-side from
// the clock times; a client-supplied duration is never trusted.
func (s *Service) Create(ctx context.Context, scope rbac.Scope, input CreateInput) (*models.TimeEntry, error) {
	owner := input.UserID
	if owner == uuid.Nil {
		owner = scope.UserID
	}

	entry, err := models.NewTimeEntry(owner, input.ProjectID, input.TaskID, input.Date, input.StartTime, input.EndTime, input.Description)
	if err != nil {
		return nil, services.ErrInvalidTimeRange
	}

	if err := s.checkMutationRules(ctx, scope, entry, true); err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, scope, entry); err != nil {
		if services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to create time entry", err)
	}

	if err := s.audits.LogTimeEntryMutation(models.AuditActionEntryCreated, scope, entry.ID, map[string]interface{}{
		"project_id": entry.ProjectID.String(),
		"task_id":    entry.TaskID.String(),
		"duration":   entry.Duration,
	}); err != nil {
		s.logger.Warn("failed to queue entry audit event", zap.Error(err))
	}

	return entry, nil
}

// UpdateInput carries the mutable fields of a time entry
type UpdateInput struct {
	ProjectID   uuid.UUID
	TaskID      uuid.UUID
	Date        time.Time
	StartTime   string
	EndTime     string
	Description string
}

// Update replaces an entry's fields and re-derives its duration. The rule
// chain runs against the new target project and task.
func (s *Service) Update(ctx context.Context, scope rbac.Scope, id uuid.UUID, input UpdateInput) (*models.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrTimeEntryNotFound
		}
		return nil, services.WrapInternal("failed to get time entry", err)
	}

	duration, err := models.DeriveDuration(input.StartTime, input.EndTime)
	if err != nil {
		return nil, services.ErrInvalidTimeRange
	}

	entry.ProjectID = input.ProjectID
	entry.TaskID = input.TaskID
	entry.Date = input.Date
	entry.StartTime = input.StartTime
	entry.EndTime = input.EndTime
	entry.Duration = duration
	entry.Description = input.Description

	if err := s.checkMutationRules(ctx, scope, entry, false); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, scope, entry); err != nil {
		if services.IsNotFoundError(err) || services.IsForbiddenError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update time entry", err)
	}

	if err := s.audits.LogTimeEntryMutation(models.AuditActionEntryUpdated, scope, entry.ID, map[string]interface{}{
		"duration": entry.Duration,
	}); err != nil {
		s.logger.Warn("failed to queue entry audit event", zap.Error(err))
	}

	return entry, nil
}

// Delete removes an entry. The same rule chain applies as for edits: an
// employee cannot delete an entry once its project window has closed or its
// task has been archived.
func (s *Service) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	entry, err := s.entries.GetByID(ctx, scope, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrTimeEntryNotFound
		}
		return services.WrapInternal("failed to get time entry", err)
	}

	if err := s.checkMutationRules(ctx, scope, entry, false); err != nil {
		return err
	}

	if err := s.entries.Delete(ctx, scope, id); err != nil {
		if services.IsNotFoundError(err) || services.IsForbiddenError(err) {
			return err
		}
		return services.WrapInternal("failed to delete time entry", err)
	}

	if err := s.audits.LogTimeEntryMutation(models.AuditActionEntryDeleted, scope, id, nil); err != nil {
		s.logger.Warn("failed to queue entry audit event", zap.Error(err))
	}

	return nil
}

// checkMutationRules validates ownership, the project's active window on the
// entry date, and the task's archive state. creating distinguishes the error
// shape: a create that fails ownership is a permission problem, while an
// existing entry out of reach reads as not-found.
func (s *Service) checkMutationRules(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry, creating bool) error {
	project, err := s.projects.GetByID(ctx, scope, entry.ProjectID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrProjectNotFound
		}
		return services.WrapInternal("failed to get project", err)
	}

	task, err := s.tasks.GetByID(ctx, scope, entry.TaskID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrTaskNotFound
		}
		return services.WrapInternal("failed to get task", err)
	}
	if task.ProjectID != project.ID {
		return services.ErrInvalidInput.WithDetail("task_id", "task does not belong to the project")
	}

	projectActive := project.IsActiveOn(entry.Date)
	taskArchived := task.IsArchived()

	if scope.CanMutateTimeEntry(entry.UserID, projectActive, taskArchived) {
		return nil
	}

	switch {
	case scope.EffectiveRole().IsViewer():
		return services.ErrInsufficientPermissions
	case entry.UserID != scope.UserID:
		if creating {
			return services.ErrInsufficientPermissions
		}
		return services.ErrTimeEntryNotFound
	case !projectActive:
		return services.ErrProjectNotActive
	default:
		return services.ErrTaskArchived
	}
}
