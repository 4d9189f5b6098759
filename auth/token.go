package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/config"
	"github.com/timetrackerpro/backend/rbac"
)

var (
	// ErrInvalidToken indicates a malformed or tampered token
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token's validity window has passed
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims are the claims carried by a session token. Role here is only
// a hint for the client; the middleware re-reads the persisted role on every
// request so a role change takes effect immediately. ActingRole is set by the
// admin-gated impersonation flow and never persisted.
type SessionClaims struct {
	UserID     uuid.UUID `json:"uid"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	ActingRole rbac.Role `json:"acting_role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HMAC-signed session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager creates a TokenManager from auth configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.TokenSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue creates a signed session token for the given identity.
func (m *TokenManager) Issue(userID uuid.UUID, email string, role rbac.Role) (string, error) {
	return m.sign(SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
	})
}

// IssueActingAs creates a signed session token with an impersonated role.
// Callers must have verified that the real identity is an admin.
func (m *TokenManager) IssueActingAs(userID uuid.UUID, email string, role, actingRole rbac.Role) (string, error) {
	return m.sign(SessionClaims{
		UserID:     userID,
		Email:      email,
		Role:       role,
		ActingRole: actingRole,
	})
}

func (m *TokenManager) sign(claims SessionClaims) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token, returning its claims.
func (m *TokenManager) ValidateToken(ctx context.Context, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
