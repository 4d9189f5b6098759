package timeentries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"go.uber.org/zap"
)

// MockTimeEntryRepository is a mock implementation of TimeEntryRepository
type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) Create(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error {
	args := m.Called(ctx, scope, entry)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.TimeEntry, error) {
	args := m.Called(ctx, scope, id)
	if entry := args.Get(0); entry != nil {
		return entry.(*models.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTimeEntryRepository) List(ctx context.Context, scope rbac.Scope, filter repositories.TimeEntryFilter) ([]*models.TimeEntry, error) {
	args := m.Called(ctx, scope, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*models.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTimeEntryRepository) Update(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error {
	args := m.Called(ctx, scope, entry)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) WithTx(tx repositories.Transaction) repositories.TimeEntryRepository {
	return m
}

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, scope rbac.Scope, project *models.Project) error {
	args := m.Called(ctx, scope, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, scope, id)
	if project := args.Get(0); project != nil {
		return project.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.Project, error) {
	args := m.Called(ctx, scope)
	if projects := args.Get(0); projects != nil {
		return projects.([]*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectRepository) ListActiveOn(ctx context.Context, scope rbac.Scope, day time.Time) ([]*models.Project, error) {
	args := m.Called(ctx, scope, day)
	if projects := args.Get(0); projects != nil {
		return projects.([]*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, scope rbac.Scope, project *models.Project) error {
	args := m.Called(ctx, scope, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockProjectRepository) WithTx(tx repositories.Transaction) repositories.ProjectRepository {
	return m
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, scope rbac.Scope, task *models.Task) error {
	args := m.Called(ctx, scope, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, scope, id)
	if task := args.Get(0); task != nil {
		return task.(*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) ListByProject(ctx context.Context, scope rbac.Scope, projectID uuid.UUID, includeArchived bool) ([]*models.Task, error) {
	args := m.Called(ctx, scope, projectID, includeArchived)
	if tasks := args.Get(0); tasks != nil {
		return tasks.([]*models.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, scope rbac.Scope, task *models.Task) error {
	args := m.Called(ctx, scope, task)
	return args.Error(0)
}

func (m *MockTaskRepository) SetStatus(ctx context.Context, scope rbac.Scope, id uuid.UUID, status models.TaskStatus) error {
	args := m.Called(ctx, scope, id, status)
	return args.Error(0)
}

func (m *MockTaskRepository) WithTx(tx repositories.Transaction) repositories.TaskRepository {
	return m
}

type fixture struct {
	entries  *MockTimeEntryRepository
	projects *MockProjectRepository
	tasks    *MockTaskRepository
	service  *Service
}

func newFixture() *fixture {
	entries := new(MockTimeEntryRepository)
	projects := new(MockProjectRepository)
	tasks := new(MockTaskRepository)
	// Unstarted audit service: queue failures are logged, never fatal.
	audits := audit.NewAuditService(nil, zap.NewNop(), audit.DefaultConfig())
	return &fixture{
		entries:  entries,
		projects: projects,
		tasks:    tasks,
		service:  NewService(entries, projects, tasks, audits, zap.NewNop()),
	}
}

func activeProject() *models.Project {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	return &models.Project{ID: uuid.New(), StartDate: &start, EndDate: &end}
}

func endedProject() *models.Project {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	return &models.Project{ID: uuid.New(), StartDate: &start, EndDate: &end}
}

func taskFor(project *models.Project, status models.TaskStatus) *models.Task {
	return &models.Task{ID: uuid.New(), ProjectID: project.ID, Status: status}
}

func entryInput(project *models.Project, task *models.Task) CreateInput {
	return CreateInput{
		ProjectID: project.ID,
		TaskID:    task.ID,
		Date:      time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "12:30",
	}
}

func TestCreate(t *testing.T) {
	t.Run("employee logs hours on an active project", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(project, models.TaskStatusActive)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)
		f.entries.On("Create", mock.Anything, scope, mock.Anything).Return(nil)

		entry, err := f.service.Create(context.Background(), scope, entryInput(project, task))
		require.NoError(t, err)
		assert.Equal(t, scope.UserID, entry.UserID)
		assert.Equal(t, 3.5, entry.Duration)
		f.entries.AssertExpectations(t)
	})

	t.Run("inverted clock range is rejected before any lookup", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		input := entryInput(activeProject(), taskFor(activeProject(), models.TaskStatusActive))
		input.StartTime, input.EndTime = "12:30", "09:00"

		_, err := f.service.Create(context.Background(), scope, input)
		assert.ErrorIs(t, err, services.ErrInvalidTimeRange)
		f.projects.AssertNotCalled(t, "GetByID")
	})

	t.Run("entry date outside the project window is rejected", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := endedProject()
		task := taskFor(project, models.TaskStatusActive)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)

		_, err := f.service.Create(context.Background(), scope, entryInput(project, task))
		assert.ErrorIs(t, err, services.ErrProjectNotActive)
		f.entries.AssertNotCalled(t, "Create")
	})

	t.Run("archived task is rejected", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(project, models.TaskStatusArchived)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)

		_, err := f.service.Create(context.Background(), scope, entryInput(project, task))
		assert.ErrorIs(t, err, services.ErrTaskArchived)
	})

	t.Run("task from another project is rejected", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(activeProject(), models.TaskStatusActive) // different project

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)

		input := entryInput(project, task)
		_, err := f.service.Create(context.Background(), scope, input)
		require.Error(t, err)
		var domainErr *services.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, services.ErrorTypeValidation, domainErr.Type)
	})

	t.Run("creating for someone else is a permission failure", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(project, models.TaskStatusActive)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)

		input := entryInput(project, task)
		input.UserID = uuid.New()

		_, err := f.service.Create(context.Background(), scope, input)
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
	})

	t.Run("admin logs hours on an ended project for another user", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
		project := endedProject()
		task := taskFor(project, models.TaskStatusArchived)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)
		f.entries.On("Create", mock.Anything, scope, mock.Anything).Return(nil)

		input := entryInput(project, task)
		input.UserID = uuid.New()

		entry, err := f.service.Create(context.Background(), scope, input)
		require.NoError(t, err)
		assert.Equal(t, input.UserID, entry.UserID)
	})

	t.Run("invisible project reads as not-found", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(project, models.TaskStatusActive)

		f.projects.On("GetByID", mock.Anything, scope, project.ID).
			Return(nil, services.ErrProjectNotFound)

		_, err := f.service.Create(context.Background(), scope, entryInput(project, task))
		assert.ErrorIs(t, err, services.ErrProjectNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("re-derives the duration from the new clock pair", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := activeProject()
		task := taskFor(project, models.TaskStatusActive)

		existing := &models.TimeEntry{
			ID:        uuid.New(),
			UserID:    scope.UserID,
			ProjectID: project.ID,
			TaskID:    task.ID,
			Date:      time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
			StartTime: "09:00",
			EndTime:   "10:00",
			Duration:  1.0,
		}

		f.entries.On("GetByID", mock.Anything, scope, existing.ID).Return(existing, nil)
		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)
		f.entries.On("Update", mock.Anything, scope, mock.Anything).Return(nil)

		updated, err := f.service.Update(context.Background(), scope, existing.ID, UpdateInput{
			ProjectID: project.ID,
			TaskID:    task.ID,
			Date:      existing.Date,
			StartTime: "09:00",
			EndTime:   "17:15",
		})
		require.NoError(t, err)
		assert.Equal(t, 8.25, updated.Duration)
	})

	t.Run("entry outside visibility reads as not-found", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		id := uuid.New()

		f.entries.On("GetByID", mock.Anything, scope, id).
			Return(nil, services.ErrTimeEntryNotFound)

		_, err := f.service.Update(context.Background(), scope, id, UpdateInput{
			StartTime: "09:00", EndTime: "10:00",
		})
		assert.ErrorIs(t, err, services.ErrTimeEntryNotFound)
	})
}

func TestDelete(t *testing.T) {
	t.Run("closed project window blocks deletion too", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleEmployee}
		project := endedProject()
		task := taskFor(project, models.TaskStatusActive)

		entry := &models.TimeEntry{
			ID:        uuid.New(),
			UserID:    scope.UserID,
			ProjectID: project.ID,
			TaskID:    task.ID,
			Date:      time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		}

		f.entries.On("GetByID", mock.Anything, scope, entry.ID).Return(entry, nil)
		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)

		err := f.service.Delete(context.Background(), scope, entry.ID)
		assert.ErrorIs(t, err, services.ErrProjectNotActive)
		f.entries.AssertNotCalled(t, "Delete")
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		f := newFixture()
		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
		project := endedProject()
		task := taskFor(project, models.TaskStatusArchived)

		entry := &models.TimeEntry{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			ProjectID: project.ID,
			TaskID:    task.ID,
			Date:      time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		}

		f.entries.On("GetByID", mock.Anything, scope, entry.ID).Return(entry, nil)
		f.projects.On("GetByID", mock.Anything, scope, project.ID).Return(project, nil)
		f.tasks.On("GetByID", mock.Anything, scope, task.ID).Return(task, nil)
		f.entries.On("Delete", mock.Anything, scope, entry.ID).Return(nil)

		err := f.service.Delete(context.Background(), scope, entry.ID)
		assert.NoError(t, err)
		f.entries.AssertExpectations(t)
	})
}
