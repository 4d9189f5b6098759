package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/utils"
	"go.uber.org/zap"
)

// Service manages user accounts and role assignment
type Service struct {
	users  repositories.UserRepository
	tx     repositories.TransactionManager
	audits *audit.AuditService
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(users repositories.UserRepository, tx repositories.TransactionManager, audits *audit.AuditService, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tx:     tx,
		audits: audits,
		logger: logger,
	}
}

// List retrieves users visible to the actor
func (s *Service) List(ctx context.Context, scope rbac.Scope) ([]*models.User, error) {
	users, err := s.users.List(ctx, scope)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	return users, nil
}

// Get retrieves one user. Non-management actors only reach their own account.
func (s *Service) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.User, error) {
	if !scope.CanManageSystem() && !scope.CanManageEmployees() && id != scope.UserID {
		return nil, services.ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}
	return user, nil
}

// Create registers a new account with one of the known role tags
func (s *Service) Create(ctx context.Context, scope rbac.Scope, email string, role rbac.Role) (*models.User, error) {
	if !scope.CanManageSystem() {
		return nil, services.ErrInsufficientPermissions
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, services.ErrInvalidEmail
	}
	if !role.IsValid() {
		return nil, services.ErrInvalidRole
	}

	user := models.NewUser(email, role)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("user created",
		zap.String("id", user.ID.String()),
		zap.String("role", string(role)))

	return user, nil
}

// ChangeRole replaces a user's persisted role with a new known tag. Rejecting
// an unknown tag happens before any write: the stored role is never left in a
// state the resolver would have to fall back from. The change takes effect on
// the target's next request, since every request re-reads the persisted role.
func (s *Service) ChangeRole(ctx context.Context, scope rbac.Scope, userID uuid.UUID, newRole rbac.Role) (*models.User, error) {
	if !scope.CanManageSystem() {
		return nil, services.ErrUserNotFound
	}
	if !newRole.IsValid() {
		return nil, services.ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}

	oldRole := user.Role
	// The role write and its audit line share one transaction: a changed
	// role without a trail, or a trail without the change, is never left
	// behind.
	err = s.tx.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		if err := s.users.WithTx(tx).UpdateRole(txCtx, scope, userID, newRole); err != nil {
			return err
		}
		return s.audits.LogRoleChangedTx(txCtx, tx, scope, userID, oldRole, newRole)
	})
	if err != nil {
		if services.IsNotFoundError(err) || services.IsValidationError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to update role", err)
	}
	user.Role = newRole

	s.logger.Info("user role changed",
		zap.String("actor_id", scope.UserID.String()),
		zap.String("target_id", userID.String()),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(newRole)))

	return user, nil
}

// SetActive toggles an account's active flag. A deactivated account fails
// authentication on its next request.
func (s *Service) SetActive(ctx context.Context, scope rbac.Scope, userID uuid.UUID, active bool) error {
	if err := s.users.SetActive(ctx, scope, userID, active); err != nil {
		if services.IsNotFoundError(err) {
			return services.ErrUserNotFound
		}
		return services.WrapInternal("failed to update active flag", err)
	}

	s.logger.Info("user active flag changed",
		zap.String("actor_id", scope.UserID.String()),
		zap.String("target_id", userID.String()),
		zap.Bool("active", active))
	return nil
}
