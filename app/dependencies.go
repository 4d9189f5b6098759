package app

import (
	"context"
	"fmt"
	"time"

	"github.com/timetrackerpro/backend/auth"
	"github.com/timetrackerpro/backend/config"
	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/repositories/postgres"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/services/dashboard"
	"github.com/timetrackerpro/backend/services/employees"
	"github.com/timetrackerpro/backend/services/organizations"
	"github.com/timetrackerpro/backend/services/projects"
	"github.com/timetrackerpro/backend/services/sessions"
	"github.com/timetrackerpro/backend/services/tasks"
	"github.com/timetrackerpro/backend/services/timeentries"
	"github.com/timetrackerpro/backend/services/users"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	Audit         *audit.AuditService
	Sessions      *sessions.Service
	Users         *users.Service
	Employees     *employees.Service
	Organizations *organizations.Service
	Projects      *projects.Service
	Tasks         *tasks.Service
	TimeEntries   *timeentries.Service
	Dashboard     *dashboard.Service

	// Auth
	Tokens         *auth.TokenManager
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection, schema and repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Repos = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initServices wires the domain services on top of the repositories.
// The audit worker pool is started here; Close stops it.
func (d *Dependencies) initServices(cfg *config.Config) error {
	d.Audit = audit.NewAuditService(d.Repos.AuditLogs, d.Logger, audit.DefaultConfig())
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	d.Users = users.NewService(d.Repos.Users, d.TxManager, d.Audit, d.Logger)
	d.Employees = employees.NewService(d.Repos.Employees, d.Audit, d.Logger)
	d.Organizations = organizations.NewService(d.Repos.Organizations, d.Logger)
	d.Projects = projects.NewService(d.Repos.Projects, d.Audit, d.Logger)
	d.Tasks = tasks.NewService(d.Repos.Tasks, d.Repos.Projects, d.Logger)
	d.TimeEntries = timeentries.NewService(d.Repos.TimeEntries, d.Repos.Projects, d.Repos.Tasks, d.Audit, d.Logger)
	d.Dashboard = dashboard.NewService(d.Repos.Dashboard, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initAuth wires the token manager, the session service and the auth
// middleware. The session service doubles as the middleware's actor source so
// every request reads the persisted role fresh.
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Tokens = auth.NewTokenManager(cfg.Auth)
	d.Sessions = sessions.NewService(d.Repos.Users, d.Repos.Employees, d.Tokens, d.Audit, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Sessions, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain pending audit events before the database goes away.
	if d.Audit != nil {
		if err := d.Audit.Stop(5 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
