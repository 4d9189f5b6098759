package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
)

// Every domain read, list, aggregate, and mutation takes the acting user's
// rbac.Scope as a mandatory parameter. Row-level filtering happens here, not
// in handlers: a record outside the actor's scope behaves as if it does not
// exist, and a disallowed mutation fails here even when the UI failed to hide
// the control. The only unscoped lookups are the identity-plumbing reads the
// authentication layer itself needs (user by id/email, employee by user id).

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles identity records
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID (identity plumbing, unscoped)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email (login path, unscoped)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users visible to the actor
	List(ctx context.Context, scope rbac.Scope) ([]*models.User, error)

	// UpdateRole atomically replaces the persisted role. The new value must
	// be one of the five known tags; callers gate this on admin capability.
	UpdateRole(ctx context.Context, scope rbac.Scope, userID uuid.UUID, role rbac.Role) error

	// SetActive toggles the account's active flag
	SetActive(ctx context.Context, scope rbac.Scope, userID uuid.UUID, active bool) error

	// RecordLogin stamps last_login_at
	RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// EmployeeRepository handles employee profiles
type EmployeeRepository interface {
	// Create creates a new employee profile
	Create(ctx context.Context, scope rbac.Scope, employee *models.Employee) error

	// GetByID retrieves an employee visible to the actor
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Employee, error)

	// GetByUserID retrieves the profile linked to a user account
	// (identity plumbing for scope resolution, unscoped)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error)

	// List retrieves employees visible to the actor
	List(ctx context.Context, scope rbac.Scope) ([]*models.Employee, error)

	// ListByDepartment retrieves visible employees in one department
	ListByDepartment(ctx context.Context, scope rbac.Scope, department string) ([]*models.Employee, error)

	// Update updates an employee profile
	Update(ctx context.Context, scope rbac.Scope, employee *models.Employee) error

	// LinkUser sets or clears the 1:1 user link
	LinkUser(ctx context.Context, scope rbac.Scope, employeeID uuid.UUID, userID *uuid.UUID) error

	// Delete removes an employee profile
	Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) EmployeeRepository
}

// OrganizationRepository handles organizations and their departments
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, scope rbac.Scope, org *models.Organization) error

	// GetByID retrieves an organization by ID
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Organization, error)

	// List retrieves all organizations
	List(ctx context.Context, scope rbac.Scope) ([]*models.Organization, error)

	// Update updates an organization
	Update(ctx context.Context, scope rbac.Scope, org *models.Organization) error

	// Delete deletes an organization
	Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error

	// CreateDepartment creates a department under an organization
	CreateDepartment(ctx context.Context, scope rbac.Scope, dept *models.Department) error

	// ListDepartments retrieves departments for an organization
	ListDepartments(ctx context.Context, scope rbac.Scope, orgID uuid.UUID) ([]*models.Department, error)

	// DeleteDepartment removes a department
	DeleteDepartment(ctx context.Context, scope rbac.Scope, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) OrganizationRepository
}

// ProjectRepository handles projects
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, scope rbac.Scope, project *models.Project) error

	// GetByID retrieves a project visible to the actor
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Project, error)

	// List retrieves projects visible to the actor: enterprise-wide for
	// roles with the view-all capability, the entry-selection list of
	// currently active projects otherwise.
	List(ctx context.Context, scope rbac.Scope) ([]*models.Project, error)

	// ListActiveOn retrieves projects whose date window covers day
	ListActiveOn(ctx context.Context, scope rbac.Scope, day time.Time) ([]*models.Project, error)

	// Update updates a project
	Update(ctx context.Context, scope rbac.Scope, project *models.Project) error

	// Delete deletes a project
	Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) ProjectRepository
}

// TaskRepository handles tasks
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, scope rbac.Scope, task *models.Task) error

	// GetByID retrieves a task
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Task, error)

	// ListByProject retrieves tasks for a project. Archived tasks are
	// excluded unless includeArchived is set.
	ListByProject(ctx context.Context, scope rbac.Scope, projectID uuid.UUID, includeArchived bool) ([]*models.Task, error)

	// Update updates a task
	Update(ctx context.Context, scope rbac.Scope, task *models.Task) error

	// SetStatus transitions a task's lifecycle status
	SetStatus(ctx context.Context, scope rbac.Scope, id uuid.UUID, status models.TaskStatus) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) TaskRepository
}

// TimeEntryFilter narrows a time-entry listing. The scope still bounds the
// result; a filter can only narrow within the visible set, never widen it.
type TimeEntryFilter struct {
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TimeEntryRepository handles time entries
type TimeEntryRepository interface {
	// Create inserts a new entry owned by the actor (or anyone, for admins)
	Create(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error

	// GetByID retrieves an entry visible to the actor
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.TimeEntry, error)

	// List retrieves entries visible to the actor, newest first
	List(ctx context.Context, scope rbac.Scope, filter TimeEntryFilter) ([]*models.TimeEntry, error)

	// Update updates an entry
	Update(ctx context.Context, scope rbac.Scope, entry *models.TimeEntry) error

	// Delete removes an entry
	Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) TimeEntryRepository
}

// ProjectHours is one row of a per-project hours breakdown
type ProjectHours struct {
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Hours       float64   `json:"hours"`
}

// DepartmentHours is one row of a per-department hours breakdown
type DepartmentHours struct {
	Department string  `json:"department"`
	Hours      float64 `json:"hours"`
}

// DashboardStats aggregates hours over the actor's visible set
type DashboardStats struct {
	TodayHours     float64           `json:"today_hours"`
	WeekHours      float64           `json:"week_hours"`
	MonthHours     float64           `json:"month_hours"`
	ActiveProjects int               `json:"active_projects"`
	ByProject      []ProjectHours    `json:"by_project"`
	ByDepartment   []DepartmentHours `json:"by_department,omitempty"`
}

// DashboardRepository computes dashboard aggregates. Implementations must
// apply the same visibility filter the list endpoints use, so dashboard
// totals always equal the sum of independently listed visible records.
type DashboardRepository interface {
	// Stats computes the dashboard aggregates as of now
	Stats(ctx context.Context, scope rbac.Scope, now time.Time) (*DashboardStats, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByID retrieves an audit log by ID
	GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.AuditLog, error)

	// List retrieves audit logs with pagination, newest first
	List(ctx context.Context, scope rbac.Scope, limit, offset int) ([]*models.AuditLog, error)

	// ListByActor retrieves audit logs for one actor with pagination
	ListByActor(ctx context.Context, scope rbac.Scope, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Employees     EmployeeRepository
	Organizations OrganizationRepository
	Projects      ProjectRepository
	Tasks         TaskRepository
	TimeEntries   TimeEntryRepository
	Dashboard     DashboardRepository
	AuditLogs     AuditRepository
}
