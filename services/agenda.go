package services

import (
	"sort"
	"time"

	"juris_desk_go/models"
)

// CriticalDatesPageSize is the fixed page size of the critical-dates sidebar
const CriticalDatesPageSize = 5

// AgendaDay is one cell of the month grid
type AgendaDay struct {
	Date      time.Time              `json:"date"`
	InMonth   bool                   `json:"in_month"`
	IsToday   bool                   `json:"is_today"`
	Movements []models.CourtMovement `json:"movements"`
}

// MonthGrid lays the month out as full weeks (Sunday first), each day carrying
// the movements dated on it. Leading and trailing days of adjacent months fill
// the first and last weeks, flagged with InMonth=false.
func MonthGrid(movements []models.CourtMovement, year int, month time.Month, today time.Time) [][]AgendaDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Walk back to the Sunday on or before the 1st
	start := first.AddDate(0, 0, -int(first.Weekday()))
	last := first.AddDate(0, 1, -1)
	// Walk forward to the Saturday on or after the last day
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	byDay := make(map[string][]models.CourtMovement)
	for _, m := range movements {
		key := m.Date.UTC().Format("2006-01-02")
		byDay[key] = append(byDay[key], m)
	}

	todayKey := today.UTC().Format("2006-01-02")
	var weeks [][]AgendaDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 7) {
		week := make([]AgendaDay, 7)
		for i := 0; i < 7; i++ {
			d := day.AddDate(0, 0, i)
			key := d.Format("2006-01-02")
			week[i] = AgendaDay{
				Date:      d,
				InMonth:   d.Month() == month,
				IsToday:   key == todayKey,
				Movements: byDay[key],
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// UpcomingCriticalDates filters movements down to deadlines and notifications
// dated today or later, sorted ascending by date, and returns the requested
// page (1-based) plus the total count before paging.
func UpcomingCriticalDates(movements []models.CourtMovement, today time.Time, page, pageSize int) ([]models.CourtMovement, int) {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	var critical []models.CourtMovement
	for _, m := range movements {
		if !m.IsCritical() {
			continue
		}
		if m.Date.Before(dayStart) {
			continue
		}
		critical = append(critical, m)
	}
	sort.SliceStable(critical, func(i, j int) bool {
		return critical[i].Date.Before(critical[j].Date)
	})

	total := len(critical)
	if pageSize <= 0 {
		pageSize = CriticalDatesPageSize
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset >= total {
		return nil, total
	}
	limit := offset + pageSize
	if limit > total {
		limit = total
	}
	return critical[offset:limit], total
}
