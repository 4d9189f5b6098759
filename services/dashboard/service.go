package dashboard

import (
	"context"
	"time"

	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"go.uber.org/zap"
)

// Service computes dashboard aggregates. The aggregates run over exactly the
// rows the actor's list endpoints would return: a role sees totals for its
// own visible records, never a company-wide number it could not enumerate.
type Service struct {
	dashboard repositories.DashboardRepository
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new dashboard service
func NewService(dashboard repositories.DashboardRepository, logger *zap.Logger) *Service {
	return &Service{
		dashboard: dashboard,
		now:       time.Now,
		logger:    logger,
	}
}

// Stats computes the actor's dashboard
func (s *Service) Stats(ctx context.Context, scope rbac.Scope) (*repositories.DashboardStats, error) {
	stats, err := s.dashboard.Stats(ctx, scope, s.now())
	if err != nil {
		return nil, services.WrapInternal("failed to compute dashboard stats", err)
	}
	return stats, nil
}
