package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/timetrackerpro/backend/middleware"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/services/audit"
	"github.com/timetrackerpro/backend/services/users"
	"go.uber.org/zap"
)

func newUserHandler() *UserHandler {
	// The repository is never reached on the rejection paths under test.
	audits := audit.NewAuditService(nil, zap.NewNop(), audit.DefaultConfig())
	svc := users.NewService(nil, nil, audits, zap.NewNop())
	return NewUserHandler(svc, zap.NewNop())
}

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	scope := rbac.Scope{UserID: uuid.New(), Role: rbac.RoleAdmin}
	return req.WithContext(middleware.WithScope(req.Context(), scope))
}

// withPathID attaches the {id} route parameter the chi router would resolve.
func withPathID(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleChangeRole(t *testing.T) {
	t.Run("unknown role tag is a bad request, not a write", func(t *testing.T) {
		h := newUserHandler()
		rec := httptest.NewRecorder()

		id := uuid.New()
		req := withPathID(adminRequest(http.MethodPut,
			"/api/v1/users/"+id.String()+"/role",
			`{"role":"superuser"}`), id)

		h.HandleChangeRole(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unknown role")
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		h := newUserHandler()
		rec := httptest.NewRecorder()

		id := uuid.New()
		req := withPathID(adminRequest(http.MethodPut,
			"/api/v1/users/"+id.String()+"/role",
			`{"role":"viewer","admin":true}`), id)

		h.HandleChangeRole(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("request without a resolved scope is unauthorized", func(t *testing.T) {
		h := newUserHandler()
		rec := httptest.NewRecorder()

		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/x/role",
			strings.NewReader(`{"role":"viewer"}`))

		h.HandleChangeRole(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleCreateUserValidation(t *testing.T) {
	t.Run("unknown role tag is rejected before the service runs", func(t *testing.T) {
		h := newUserHandler()
		rec := httptest.NewRecorder()

		req := adminRequest(http.MethodPost, "/api/v1/users",
			`{"email":"dev@example.com","role":"owner"}`)

		h.HandleCreate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unknown role")
	})

	t.Run("missing email fails struct validation", func(t *testing.T) {
		h := newUserHandler()
		rec := httptest.NewRecorder()

		req := adminRequest(http.MethodPost, "/api/v1/users", `{"role":"viewer"}`)

		h.HandleCreate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
