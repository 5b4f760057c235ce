package handlers

import (
	"net/http"
	"strconv"
	"time"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
)

// GetAgendaHandler returns the month grid for the agenda view. Defaults to
// the current month; ?year= and ?month= select another one.
func GetAgendaHandler(c echo.Context) error {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if yearParam := c.QueryParam("year"); yearParam != "" {
		if y, err := strconv.Atoi(yearParam); err == nil && y >= 1970 && y <= 2200 {
			year = y
		}
	}
	if monthParam := c.QueryParam("month"); monthParam != "" {
		if m, err := strconv.Atoi(monthParam); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	// Fetch the movements overlapping the rendered grid (pad a week each side)
	gridStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).AddDate(0, 0, -7)
	gridEnd := time.Date(year, month, 1, 0, 0, 0, 0, time.Local).AddDate(0, 1, 7)

	var movements []models.CourtMovement
	if err := middleware.UserScopedQuery(c, db.DB).
		Where("date >= ? AND date < ?", gridStart, gridEnd).
		Order("date ASC").
		Find(&movements).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch movements")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": int(month),
		"weeks": services.MonthGrid(movements, year, month, now),
	})
}

// GetCriticalDatesHandler returns upcoming deadlines and notifications,
// paginated five per page
func GetCriticalDatesHandler(c echo.Context) error {
	page := 1
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}

	var movements []models.CourtMovement
	if err := middleware.UserScopedQuery(c, db.DB).
		Preload("Client").
		Order("date ASC").
		Find(&movements).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch movements")
	}

	items, total := services.UpcomingCriticalDates(movements, time.Now(), page, services.CriticalDatesPageSize)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":       items,
		"total":       total,
		"page":        page,
		"page_size":   services.CriticalDatesPageSize,
		"total_pages": (total + services.CriticalDatesPageSize - 1) / services.CriticalDatesPageSize,
	})
}
