package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestProjectIsActiveOn(t *testing.T) {
	project := &Project{
		ID:        uuid.New(),
		Name:      "Billing revamp",
		StartDate: datePtr(2025, time.January, 10),
		EndDate:   datePtr(2025, time.January, 20),
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		assert.True(t, project.IsActiveOn(date(2025, time.January, 10)))
		assert.True(t, project.IsActiveOn(date(2025, time.January, 15)))
		assert.True(t, project.IsActiveOn(date(2025, time.January, 20)))
	})

	t.Run("outside the window", func(t *testing.T) {
		assert.False(t, project.IsActiveOn(date(2025, time.January, 9)))
		assert.False(t, project.IsActiveOn(date(2025, time.January, 21)))
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		lastMoment := time.Date(2025, time.January, 20, 23, 59, 59, 0, time.UTC)
		assert.True(t, project.IsActiveOn(lastMoment))
	})

	t.Run("missing bounds are open-ended", func(t *testing.T) {
		open := &Project{ID: uuid.New(), Name: "Ops"}
		assert.True(t, open.IsActiveOn(date(1999, time.June, 1)))
		assert.True(t, open.IsActiveOn(date(2099, time.June, 1)))

		noEnd := &Project{StartDate: datePtr(2025, time.January, 10)}
		assert.False(t, noEnd.IsActiveOn(date(2025, time.January, 9)))
		assert.True(t, noEnd.IsActiveOn(date(2099, time.June, 1)))

		noStart := &Project{EndDate: datePtr(2025, time.January, 20)}
		assert.True(t, noStart.IsActiveOn(date(1999, time.June, 1)))
		assert.False(t, noStart.IsActiveOn(date(2025, time.January, 21)))
	})
}

func TestProjectStatusOn(t *testing.T) {
	project := &Project{
		StartDate: datePtr(2025, time.March, 1),
		EndDate:   datePtr(2025, time.March, 31),
	}

	assert.Equal(t, ProjectStatusUpcoming, project.StatusOn(date(2025, time.February, 28)))
	assert.Equal(t, ProjectStatusActive, project.StatusOn(date(2025, time.March, 1)))
	assert.Equal(t, ProjectStatusActive, project.StatusOn(date(2025, time.March, 31)))
	assert.Equal(t, ProjectStatusEnded, project.StatusOn(date(2025, time.April, 1)))
}
