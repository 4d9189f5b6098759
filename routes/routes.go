package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timetrackerpro/backend/app"
	"github.com/timetrackerpro/backend/handlers"
	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/rbac"
)

// SetupRoutes configures all application routes and middleware.
//
// Route-level guards declare the role/permission gates each resource group
// requires; everything else is enforced inside the data accessors, which
// filter by the actor scope. Reads therefore mostly need only RequireAuth:
// an actor without reach over a record gets not-found from the query itself.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Logger)
	employeeHandler := handlers.NewEmployeeHandler(deps.Employees, deps.Logger)
	orgHandler := handlers.NewOrganizationHandler(deps.Organizations, deps.Logger)
	projectHandler := handlers.NewProjectHandler(deps.Projects, deps.Logger)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Logger)
	entryHandler := handlers.NewTimeEntryHandler(deps.TimeEntries, deps.Logger)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard, deps.Logger)
	auditHandler := handlers.NewAuditHandler(deps.Audit, deps.Logger)

	authMW := deps.AuthMiddleware
	audits := deps.Audit

	// Health and metrics endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)
	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Session endpoints. Login is the only unauthenticated route.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAuth)
				r.Post("/logout", authHandler.HandleLogout)
				r.Get("/me", authHandler.HandleMe)
				// Impersonation checks the real role inside the service, so
				// an admin already acting as another role can switch again.
				r.Post("/act-as", authHandler.HandleActAs)
			})
		})

		// User account management. Mutations are admin territory; reads pass
		// through and the accessor narrows non-managers to their own account.
		r.Route("/users", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", userHandler.HandleList)
			r.Get("/{id}", userHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Guard(middleware.GuardSpec{
					RequiredPermissions: []rbac.Capability{rbac.CapManageSystem},
				}, audits))
				r.Post("/", userHandler.HandleCreate)
				r.Put("/{id}/role", userHandler.HandleChangeRole)
				r.Put("/{id}/active", userHandler.HandleSetActive)
			})
		})

		// Employee profiles
		r.Route("/employees", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", employeeHandler.HandleList)
			r.Get("/{id}", employeeHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Guard(middleware.GuardSpec{
					RequiredPermissions: []rbac.Capability{rbac.CapManageEmployees},
				}, audits))
				r.Post("/", employeeHandler.HandleCreate)
				r.Put("/{id}", employeeHandler.HandleUpdate)
				r.Put("/{id}/user", employeeHandler.HandleLinkUser)
				r.Delete("/{id}", employeeHandler.HandleDelete)
			})
		})

		// Organizations and departments (mutations require system management)
		r.Route("/organizations", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", orgHandler.HandleList)
			r.Get("/{id}", orgHandler.HandleGet)
			r.Get("/{id}/departments", orgHandler.HandleListDepartments)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Guard(middleware.GuardSpec{
					RequiredPermissions: []rbac.Capability{rbac.CapManageSystem},
				}, audits))
				r.Post("/", orgHandler.HandleCreate)
				r.Put("/{id}", orgHandler.HandleUpdate)
				r.Delete("/{id}", orgHandler.HandleDelete)
				r.Post("/{id}/departments", orgHandler.HandleCreateDepartment)
			})
		})
		r.With(authMW.RequireAuth, authMW.Guard(middleware.GuardSpec{
			RequiredPermissions: []rbac.Capability{rbac.CapManageSystem},
		}, audits)).Delete("/departments/{id}", orgHandler.HandleDeleteDepartment)

		// Projects and their tasks
		r.Route("/projects", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", projectHandler.HandleList)
			r.Get("/{id}", projectHandler.HandleGet)
			r.Get("/{id}/tasks", taskHandler.HandleListByProject)

			r.With(authMW.Guard(middleware.GuardSpec{
				RequiredPermissions: []rbac.Capability{rbac.CapCreateProjects},
			}, audits)).Post("/", projectHandler.HandleCreate)
			r.With(authMW.Guard(middleware.GuardSpec{
				RequiredPermissions: []rbac.Capability{rbac.CapEditProjects},
			}, audits)).Put("/{id}", projectHandler.HandleUpdate)
			r.With(authMW.Guard(middleware.GuardSpec{
				RequiredPermissions: []rbac.Capability{rbac.CapDeleteProjects},
			}, audits)).Delete("/{id}", projectHandler.HandleDelete)
			r.With(authMW.Guard(middleware.GuardSpec{
				RequiredPermissions: []rbac.Capability{rbac.CapCreateTasks},
			}, audits)).Post("/{id}/tasks", taskHandler.HandleCreate)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/{id}", taskHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(authMW.Guard(middleware.GuardSpec{
					RequiredPermissions: []rbac.Capability{rbac.CapEditTasks},
				}, audits))
				r.Put("/{id}", taskHandler.HandleUpdate)
				r.Put("/{id}/status", taskHandler.HandleSetStatus)
			})
		})

		// Time entries. No route-level permission gate: ownership, project
		// window and task status rules all live in the service and accessor.
		r.Route("/time-entries", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", entryHandler.HandleList)
			r.Post("/", entryHandler.HandleCreate)
			r.Get("/{id}", entryHandler.HandleGet)
			r.Put("/{id}", entryHandler.HandleUpdate)
			r.Delete("/{id}", entryHandler.HandleDelete)
		})

		// Dashboard aggregates over the actor's visible records
		r.With(authMW.RequireAuth).Get("/dashboard", dashboardHandler.HandleStats)

		// Audit trail (admin only)
		r.Route("/audit-logs", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Use(authMW.Guard(middleware.GuardSpec{
				RequiredRoles: []rbac.Role{rbac.RoleAdmin},
			}, audits))
			r.Get("/", auditHandler.HandleList)
			r.Get("/{id}", auditHandler.HandleGet)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
