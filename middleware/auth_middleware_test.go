package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/timetrackerpro/backend/auth"
	"github.com/timetrackerpro/backend/rbac"
	"go.uber.org/zap"
)

// MockTokenValidator is a mock implementation of TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*auth.SessionClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SessionClaims), args.Error(1)
}

// MockActorSource is a mock implementation of ActorSource
type MockActorSource struct {
	mock.Mock
}

func (m *MockActorSource) LoadActor(ctx context.Context, userID uuid.UUID) (ActorRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ActorRecord), args.Error(1)
}

func activeActor(userID uuid.UUID, role string) ActorRecord {
	return ActorRecord{
		UserID:     userID,
		Email:      "actor@example.com",
		Role:       role,
		IsActive:   true,
		Department: "Engineering",
	}
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid token in Authorization header resolves the scope", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		validator.On("ValidateToken", mock.Anything, "valid-token").
			Return(&auth.SessionClaims{UserID: userID}, nil)
		actors.On("LoadActor", mock.Anything, userID).
			Return(activeActor(userID, "manager"), nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := GetScopeFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, userID, scope.UserID)
			assert.Equal(t, rbac.RoleManager, scope.EffectiveRole())
			assert.Equal(t, "Engineering", scope.Department)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		validator.AssertExpectations(t)
		actors.AssertExpectations(t)
	})

	t.Run("valid token in session cookie resolves the scope", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		validator.On("ValidateToken", mock.Anything, "cookie-token").
			Return(&auth.SessionClaims{UserID: userID}, nil)
		actors.On("LoadActor", mock.Anything, userID).
			Return(activeActor(userID, "employee"), nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token returns 401", func(t *testing.T) {
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		validator.On("ValidateToken", mock.Anything, "bad-token").
			Return(nil, errors.New("signature mismatch"))

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account returns 401", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		inactive := activeActor(userID, "admin")
		inactive.IsActive = false

		validator.On("ValidateToken", mock.Anything, "valid-token").
			Return(&auth.SessionClaims{UserID: userID}, nil)
		actors.On("LoadActor", mock.Anything, userID).Return(inactive, nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown stored role resolves to employee capabilities", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		validator.On("ValidateToken", mock.Anything, "valid-token").
			Return(&auth.SessionClaims{UserID: userID}, nil)
		actors.On("LoadActor", mock.Anything, userID).
			Return(activeActor(userID, "superuser"), nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := GetScopeFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, rbac.RoleEmployee, scope.EffectiveRole())
			assert.False(t, scope.CanManageSystem())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("acting role claim substitutes the effective role", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		validator.On("ValidateToken", mock.Anything, "acting-token").
			Return(&auth.SessionClaims{UserID: userID, ActingRole: rbac.RoleViewer}, nil)
		actors.On("LoadActor", mock.Anything, userID).
			Return(activeActor(userID, "admin"), nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, _ := GetScopeFromContext(r.Context())
			assert.Equal(t, rbac.RoleViewer, scope.EffectiveRole())
			assert.Equal(t, rbac.RoleAdmin, scope.Role)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer acting-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("acting role claim is inert once the real role is demoted", func(t *testing.T) {
		userID := uuid.New()
		validator := new(MockTokenValidator)
		actors := new(MockActorSource)
		mw := NewAuthMiddleware(validator, actors, logger)

		// Token still carries an acting role, but the persisted role is no
		// longer admin: impersonation must not survive the demotion.
		validator.On("ValidateToken", mock.Anything, "stale-token").
			Return(&auth.SessionClaims{UserID: userID, ActingRole: rbac.RoleAdmin}, nil)
		actors.On("LoadActor", mock.Anything, userID).
			Return(activeActor(userID, "employee"), nil)

		handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, _ := GetScopeFromContext(r.Context())
			assert.Equal(t, rbac.RoleEmployee, scope.EffectiveRole())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestExtractToken(t *testing.T) {
	t.Run("header takes precedence over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})

		assert.Equal(t, "header-token", extractToken(req))
	})

	t.Run("malformed header falls through to cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})

		assert.Equal(t, "cookie-token", extractToken(req))
	})

	t.Run("neither present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, extractToken(req))
	})
}
