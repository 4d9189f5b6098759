package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/timetrackerpro/backend/auth"
	"github.com/timetrackerpro/backend/config"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.User, error) {
	args := m.Called(ctx, scope)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, scope rbac.Scope, userID uuid.UUID, role rbac.Role) error {
	args := m.Called(ctx, scope, userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, scope rbac.Scope, userID uuid.UUID, active bool) error {
	args := m.Called(ctx, scope, userID, active)
	return args.Error(0)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockUserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return m
}

// MockEmployeeRepository is a mock implementation of EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, scope rbac.Scope, employee *models.Employee) error {
	args := m.Called(ctx, scope, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.Employee, error) {
	args := m.Called(ctx, scope, id)
	if employee := args.Get(0); employee != nil {
		return employee.(*models.Employee), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employee, error) {
	args := m.Called(ctx, userID)
	if employee := args.Get(0); employee != nil {
		return employee.(*models.Employee), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context, scope rbac.Scope) ([]*models.Employee, error) {
	args := m.Called(ctx, scope)
	if employees := args.Get(0); employees != nil {
		return employees.([]*models.Employee), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) ListByDepartment(ctx context.Context, scope rbac.Scope, department string) ([]*models.Employee, error) {
	args := m.Called(ctx, scope, department)
	if employees := args.Get(0); employees != nil {
		return employees.([]*models.Employee), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, scope rbac.Scope, employee *models.Employee) error {
	args := m.Called(ctx, scope, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) LinkUser(ctx context.Context, scope rbac.Scope, employeeID uuid.UUID, userID *uuid.UUID) error {
	args := m.Called(ctx, scope, employeeID, userID)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, scope rbac.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) WithTx(tx repositories.Transaction) repositories.EmployeeRepository {
	return m
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		TokenSecret: "test-secret-at-least-32-bytes-long!",
		TokenTTL:    time.Hour,
		Issuer:      "timetracker-pro-test",
	})
}

func newSessionService(users *MockUserRepository, employees *MockEmployeeRepository) (*Service, *auth.TokenManager) {
	tokens := newTestTokens()
	audits := audit.NewAuditService(nil, zap.NewNop(), audit.DefaultConfig())
	return NewService(users, employees, tokens, audits, zap.NewNop()), tokens
}

func TestLogin(t *testing.T) {
	t.Run("active account receives a verifiable token", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, tokens := newSessionService(users, new(MockEmployeeRepository))

		user := models.NewUser("pm@example.com", rbac.RoleProjectManager)
		users.On("GetByEmail", mock.Anything, "pm@example.com").Return(user, nil)
		users.On("RecordLogin", mock.Anything, user.ID, mock.Anything).Return(nil)

		session, err := svc.Login(context.Background(), "pm@example.com", "req-1", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.User.ID)

		claims, err := tokens.ValidateToken(context.Background(), session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, rbac.RoleProjectManager, claims.Role)
		assert.Empty(t, claims.ActingRole)
		users.AssertExpectations(t)
	})

	t.Run("unknown account reads as unauthorized, not as not-found", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		users.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, services.ErrUserNotFound)

		_, err := svc.Login(context.Background(), "ghost@example.com", "req-2", "10.0.0.1")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})

	t.Run("malformed email is rejected before any lookup", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		_, err := svc.Login(context.Background(), "not-an-email", "req-3", "10.0.0.1")
		assert.ErrorIs(t, err, services.ErrInvalidEmail)
		users.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		user := models.NewUser("gone@example.com", rbac.RoleEmployee)
		user.IsActive = false
		users.On("GetByEmail", mock.Anything, "gone@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), "gone@example.com", "req-4", "10.0.0.1")
		assert.ErrorIs(t, err, services.ErrUserInactive)
		users.AssertNotCalled(t, "RecordLogin")
	})

	t.Run("failed login stamp does not fail the login", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		user := models.NewUser("dev@example.com", rbac.RoleEmployee)
		users.On("GetByEmail", mock.Anything, "dev@example.com").Return(user, nil)
		users.On("RecordLogin", mock.Anything, user.ID, mock.Anything).
			Return(assert.AnError)

		session, err := svc.Login(context.Background(), "dev@example.com", "req-5", "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})
}

func TestActAs(t *testing.T) {
	t.Run("admin receives a token carrying the acting role", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, tokens := newSessionService(users, new(MockEmployeeRepository))

		admin := models.NewUser("admin@example.com", rbac.RoleAdmin)
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)

		scope := rbac.Scope{UserID: admin.ID, Role: rbac.RoleAdmin}
		session, err := svc.ActAs(context.Background(), scope, rbac.RoleViewer)
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(context.Background(), session.Token)
		require.NoError(t, err)
		// The persisted role rides along untouched; only the claim changes.
		assert.Equal(t, rbac.RoleAdmin, claims.Role)
		assert.Equal(t, rbac.RoleViewer, claims.ActingRole)
		users.AssertNotCalled(t, "UpdateRole")
	})

	t.Run("non-admin cannot impersonate", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleManager}
		_, err := svc.ActAs(context.Background(), scope, rbac.RoleEmployee)
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
		users.AssertNotCalled(t, "GetByID")
	})

	t.Run("already-impersonating admin keeps the capability", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		admin := models.NewUser("admin@example.com", rbac.RoleAdmin)
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)

		// ActAs gates on the real role, so an admin currently acting as a
		// viewer can still switch to another role.
		scope := rbac.Scope{UserID: admin.ID, Role: rbac.RoleAdmin}.ActAs(rbac.RoleViewer)
		_, err := svc.ActAs(context.Background(), scope, rbac.RoleManager)
		assert.NoError(t, err)
	})

	t.Run("unknown acting role is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
		_, err := svc.ActAs(context.Background(), scope, rbac.Role("superuser"))
		assert.ErrorIs(t, err, services.ErrInvalidRole)
		users.AssertNotCalled(t, "GetByID")
	})
}

func TestMe(t *testing.T) {
	t.Run("returns the account and its effective capability set", func(t *testing.T) {
		users := new(MockUserRepository)
		svc, _ := newSessionService(users, new(MockEmployeeRepository))

		admin := models.NewUser("admin@example.com", rbac.RoleAdmin)
		users.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)

		scope := rbac.Scope{UserID: admin.ID, Role: rbac.RoleAdmin}.ActAs(rbac.RoleViewer)
		user, perms, err := svc.Me(context.Background(), scope)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, user.ID)
		// Capabilities reflect the acting role, not the persisted one.
		assert.False(t, perms.CanManageSystem)
	})
}

func TestLoadActor(t *testing.T) {
	userID := uuid.New()

	t.Run("linked employee contributes the department", func(t *testing.T) {
		users := new(MockUserRepository)
		employees := new(MockEmployeeRepository)
		svc, _ := newSessionService(users, employees)

		user := models.NewUser("dev@example.com", rbac.RoleManager)
		user.ID = userID
		users.On("GetByID", mock.Anything, userID).Return(user, nil)

		employee := models.NewEmployee("Ada", "Lovelace", "dev@example.com", "Engineering")
		employee.UserID = &userID
		employees.On("GetByUserID", mock.Anything, userID).Return(employee, nil)

		record, err := svc.LoadActor(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, record.UserID)
		assert.Equal(t, "manager", record.Role)
		assert.Equal(t, "Engineering", record.Department)
		assert.True(t, record.IsActive)
	})

	t.Run("account without a profile resolves with an empty department", func(t *testing.T) {
		users := new(MockUserRepository)
		employees := new(MockEmployeeRepository)
		svc, _ := newSessionService(users, employees)

		user := models.NewUser("dev@example.com", rbac.RoleEmployee)
		user.ID = userID
		users.On("GetByID", mock.Anything, userID).Return(user, nil)
		employees.On("GetByUserID", mock.Anything, userID).
			Return(nil, services.ErrEmployeeNotFound)

		record, err := svc.LoadActor(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, record.Department)
	})

	t.Run("profile lookup failures propagate", func(t *testing.T) {
		users := new(MockUserRepository)
		employees := new(MockEmployeeRepository)
		svc, _ := newSessionService(users, employees)

		user := models.NewUser("dev@example.com", rbac.RoleEmployee)
		user.ID = userID
		users.On("GetByID", mock.Anything, userID).Return(user, nil)
		employees.On("GetByUserID", mock.Anything, userID).
			Return(nil, assert.AnError)

		_, err := svc.LoadActor(context.Background(), userID)
		assert.Error(t, err)
	})
}
