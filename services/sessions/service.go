package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/auth"
	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// Service issues and resolves sessions. It is also the guard's actor source:
// every authenticated request reloads the persisted user record here, so a
// role change is visible on the very next request with no cached role in
// between.
type Service struct {
	users     repositories.UserRepository
	employees repositories.EmployeeRepository
	tokens    *auth.TokenManager
	audits    *audit.AuditService
	logger    *zap.Logger
}

// NewService creates a new session service
func NewService(
	users repositories.UserRepository,
	employees repositories.EmployeeRepository,
	tokens *auth.TokenManager,
	audits *audit.AuditService,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:     users,
		employees: employees,
		tokens:    tokens,
		audits:    audits,
		logger:    logger,
	}
}

// Session is the result of a successful login or impersonation request
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login resolves the account for email and issues a session token.
// Deactivated accounts cannot log in.
func (s *Service) Login(ctx context.Context, email, requestID, ipAddress string) (*Session, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return nil, services.ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if services.IsNotFoundError(err) {
			// Same response as a bad credential: no account enumeration.
			return nil, services.ErrUnauthorized
		}
		return nil, services.WrapInternal("failed to load user", err)
	}
	if !user.IsActive {
		return nil, services.ErrUserInactive
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, services.WrapInternal("failed to issue session token", err)
	}

	if err := s.users.RecordLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("failed to record login time",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	if err := s.audits.LogLogin(user, requestID, ipAddress); err != nil {
		s.logger.Warn("failed to queue login audit event", zap.Error(err))
	}

	return &Session{Token: token, User: user}, nil
}

// Logout records the end of a session. Tokens are stateless; the audit line
// is the only server-side effect.
func (s *Service) Logout(ctx context.Context, scope rbac.Scope, requestID, ipAddress string) {
	if err := s.audits.LogLogout(scope, requestID, ipAddress); err != nil {
		s.logger.Warn("failed to queue logout audit event", zap.Error(err))
	}
}

// ActAs issues a session token carrying an acting role. Only an admin may
// impersonate, the target role must be a known tag, and the persisted role is
// never touched: dropping the acting session restores full admin capability.
func (s *Service) ActAs(ctx context.Context, scope rbac.Scope, role rbac.Role) (*Session, error) {
	if !scope.Role.IsAdmin() {
		return nil, services.ErrInsufficientPermissions
	}
	if !role.IsValid() {
		return nil, services.ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, scope.UserID)
	if err != nil {
		return nil, services.WrapInternal("failed to load user", err)
	}

	token, err := s.tokens.IssueActingAs(user.ID, user.Email, user.Role, role)
	if err != nil {
		return nil, services.WrapInternal("failed to issue acting token", err)
	}

	if err := s.audits.LogImpersonation(scope, role); err != nil {
		s.logger.Warn("failed to queue impersonation audit event", zap.Error(err))
	}

	s.logger.Info("impersonation session issued",
		zap.String("admin_id", scope.UserID.String()),
		zap.String("acting_role", string(role)))

	return &Session{Token: token, User: user}, nil
}

// Me returns the account behind the scope together with its capability set
func (s *Service) Me(ctx context.Context, scope rbac.Scope) (*models.User, rbac.PermissionSet, error) {
	user, err := s.users.GetByID(ctx, scope.UserID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, rbac.PermissionSet{}, services.ErrUserNotFound
		}
		return nil, rbac.PermissionSet{}, services.WrapInternal("failed to load user", err)
	}
	return user, scope.Permissions(), nil
}

// LoadActor satisfies the authentication middleware's actor source. The role
// and active flag come from the current user row, the department from the
// linked employee profile when one exists.
func (s *Service) LoadActor(ctx context.Context, userID uuid.UUID) (middleware.ActorRecord, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return middleware.ActorRecord{}, err
	}

	record := middleware.ActorRecord{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
		IsActive: user.IsActive,
	}

	employee, err := s.employees.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, services.ErrEmployeeNotFound) {
			return middleware.ActorRecord{}, err
		}
		// No linked profile: department stays empty.
		return record, nil
	}
	record.Department = employee.Department

	return record, nil
}
