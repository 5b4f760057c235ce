package services

import (
	"testing"
	"time"

	"juris_desk_go/models"

	"github.com/stretchr/testify/assert"
)

func movementOn(id string, movementType string, date time.Time) models.CourtMovement {
	return models.CourtMovement{
		ID:    id,
		Type:  movementType,
		Title: id,
		Date:  date,
	}
}

func TestUpcomingCriticalDates(t *testing.T) {
	today := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	movements := []models.CourtMovement{
		movementOn("yesterday", models.MovementTypeDeadline, today.AddDate(0, 0, -1)),
		movementOn("tomorrow", models.MovementTypeNotification, today.AddDate(0, 0, 1)),
		movementOn("today", models.MovementTypeDeadline, today.Add(-10*time.Hour)), // earlier today still counts
		movementOn("hearing", models.MovementTypeHearing, today.AddDate(0, 0, 2)), // hearings are not critical
	}

	result, total := UpcomingCriticalDates(movements, today, 1, 10)
	assert.Equal(t, 2, total)
	assert.Len(t, result, 2)
	assert.Equal(t, "today", result[0].ID)
	assert.Equal(t, "tomorrow", result[1].ID)
}

func TestUpcomingCriticalDatesPagination(t *testing.T) {
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	var movements []models.CourtMovement
	for i := 0; i < 7; i++ {
		movements = append(movements, movementOn(string(rune('a'+i)), models.MovementTypeDeadline, today.AddDate(0, 0, i)))
	}

	page1, total := UpcomingCriticalDates(movements, today, 1, CriticalDatesPageSize)
	assert.Equal(t, 7, total)
	assert.Len(t, page1, 5)
	assert.Equal(t, "a", page1[0].ID)

	page2, _ := UpcomingCriticalDates(movements, today, 2, CriticalDatesPageSize)
	assert.Len(t, page2, 2)
	assert.Equal(t, "f", page2[0].ID)

	page3, _ := UpcomingCriticalDates(movements, today, 3, CriticalDatesPageSize)
	assert.Empty(t, page3)
}

func TestMonthGrid(t *testing.T) {
	today := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	movements := []models.CourtMovement{
		movementOn("hearing", models.MovementTypeHearing, time.Date(2026, 9, 15, 9, 30, 0, 0, time.UTC)),
		movementOn("deadline", models.MovementTypeDeadline, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)),
		movementOn("other-month", models.MovementTypeHearing, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)),
	}

	weeks := MonthGrid(movements, 2026, time.September, today)

	// September 2026 starts on a Tuesday and ends on a Wednesday: 5 weeks
	assert.Len(t, weeks, 5)
	for _, week := range weeks {
		assert.Len(t, week, 7)
	}

	// First cell is the preceding Sunday (Aug 30)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), weeks[0][0].Date)
	assert.False(t, weeks[0][0].InMonth)

	// Find the 15th and check its movements and today flag
	var found *AgendaDay
	for _, week := range weeks {
		for i := range week {
			if week[i].Date.Day() == 15 && week[i].InMonth {
				found = &week[i]
			}
		}
	}
	assert.NotNil(t, found)
	assert.True(t, found.IsToday)
	assert.Len(t, found.Movements, 2)
}
