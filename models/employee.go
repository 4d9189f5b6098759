package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is an HR profile record. It is optionally linked 1:1 to a User via
// UserID; unlinked employees are a valid, displayed state. Department is a
// plain string reference, matching how department names are entered in the
// employee directory, not a strict foreign key.
type Employee struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Department string     `json:"department" db:"department"`
	Position   string     `json:"position" db:"position"`
	HireDate   *time.Time `json:"hire_date,omitempty" db:"hire_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates a new Employee instance
func NewEmployee(firstName, lastName, email, department string) *Employee {
	now := time.Now()
	return &Employee{
		ID:         uuid.New(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Department: department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsLinked reports whether the employee has a linked user account.
func (e *Employee) IsLinked() bool {
	return e.UserID != nil
}

// FullName returns the display name for the employee.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
