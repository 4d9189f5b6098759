package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is derived from the project's date range, never stored.
type ProjectStatus string

const (
	ProjectStatusUpcoming ProjectStatus = "upcoming"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusEnded    ProjectStatus = "ended"
)

// Project is a unit of work time entries are logged against. UserID records
// the creator for display purposes only; authorization decisions never consult
// it for roles above the employee tier.
type Project struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	OrgID       uuid.UUID  `json:"org_id" db:"org_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a new Project instance
func NewProject(creatorID, orgID uuid.UUID, name, description string) *Project {
	now := time.Now()
	return &Project{
		ID:          uuid.New(),
		UserID:      creatorID,
		OrgID:       orgID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsActiveOn reports whether day falls within [StartDate, EndDate], both
// bounds inclusive. A missing bound is open-ended. Only the calendar date is
// compared; time-of-day components are ignored.
func (p *Project) IsActiveOn(day time.Time) bool {
	d := truncateToDay(day)
	if p.StartDate != nil && d.Before(truncateToDay(*p.StartDate)) {
		return false
	}
	if p.EndDate != nil && d.After(truncateToDay(*p.EndDate)) {
		return false
	}
	return true
}

// StatusOn derives the project activity status for the given day.
func (p *Project) StatusOn(day time.Time) ProjectStatus {
	d := truncateToDay(day)
	if p.StartDate != nil && d.Before(truncateToDay(*p.StartDate)) {
		return ProjectStatusUpcoming
	}
	if p.EndDate != nil && d.After(truncateToDay(*p.EndDate)) {
		return ProjectStatusEnded
	}
	return ProjectStatusActive
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
