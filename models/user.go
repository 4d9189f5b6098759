package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/rbac"
)

// User represents an identity record. Role is the sole authorization-relevant
// attribute and is mutable only through the admin-gated role-change operation.
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Role        rbac.Role  `json:"role" db:"role"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email string, role rbac.Role) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveRole returns the parsed role, falling back to employee when the
// stored value is not one of the five known tags.
func (u *User) EffectiveRole() (rbac.Role, bool) {
	return rbac.ParseRole(string(u.Role))
}
