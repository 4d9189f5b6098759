package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTimeRange is returned when an entry's end time is not strictly
// after its start time.
var ErrInvalidTimeRange = errors.New("end time must be after start time")

// TimeEntry records hours one user logged against a project/task on a date.
// Duration is derived from the start/end pair, never accepted from input.
type TimeEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ProjectID   uuid.UUID `json:"project_id" db:"project_id"`
	TaskID      uuid.UUID `json:"task_id" db:"task_id"`
	Date        time.Time `json:"date" db:"date"`
	StartTime   string    `json:"start_time" db:"start_time"` // HH:MM, 24h
	EndTime     string    `json:"end_time" db:"end_time"`     // HH:MM, 24h
	Duration    float64   `json:"duration" db:"duration"`     // hours, 2 decimals
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the TimeEntry model
func (TimeEntry) TableName() string {
	return "time_entries"
}

// NewTimeEntry creates a TimeEntry with the duration derived from the
// start/end pair. Returns ErrInvalidTimeRange when end <= start.
func NewTimeEntry(userID, projectID, taskID uuid.UUID, date time.Time, startTime, endTime, description string) (*TimeEntry, error) {
	duration, err := DeriveDuration(startTime, endTime)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &TimeEntry{
		ID:          uuid.New(),
		UserID:      userID,
		ProjectID:   projectID,
		TaskID:      taskID,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		Duration:    duration,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DeriveDuration computes (end - start) in hours rounded to two decimals.
// Both times are HH:MM in a single day; end must be strictly after start.
func DeriveDuration(startTime, endTime string) (float64, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := parseClock(endTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return 0, ErrInvalidTimeRange
	}
	hours := end.Sub(start).Hours()
	return math.Round(hours*100) / 100, nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
