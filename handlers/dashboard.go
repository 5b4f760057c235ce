package handlers

import (
	"net/http"
	"time"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
)

// GetDashboardHandler returns the dashboard summary: client counts, the
// financial totals and the next critical dates
func GetDashboardHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var totalClients, activeClients, privateClients, defensoriaClients int64
	base := db.DB.Model(&models.Client{}).Where("user_id = ?", user.ID)
	if err := base.Count(&totalClients).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count clients")
	}
	db.DB.Model(&models.Client{}).Where("user_id = ? AND status = ?", user.ID, models.ClientStatusActive).Count(&activeClients)
	db.DB.Model(&models.Client{}).Where("user_id = ? AND origin = ?", user.ID, models.OriginPrivate).Count(&privateClients)
	db.DB.Model(&models.Client{}).Where("user_id = ? AND origin = ?", user.ID, models.OriginDefensoria).Count(&defensoriaClients)

	lines, err := collectLineItems(c)
	if err != nil {
		return err
	}

	var movements []models.CourtMovement
	if err := middleware.UserScopedQuery(c, db.DB).
		Preload("Client").
		Order("date ASC").
		Find(&movements).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch movements")
	}
	critical, criticalTotal := services.UpcomingCriticalDates(movements, time.Now(), 1, services.CriticalDatesPageSize)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients": map[string]int64{
			"total":      totalClients,
			"active":     activeClients,
			"private":    privateClients,
			"defensoria": defensoriaClients,
		},
		"totals":               services.Aggregate(lines, services.TabGeneral, ""),
		"critical_dates":       critical,
		"critical_dates_total": criticalTotal,
	})
}

// GetRecentActivityHandler returns the user's most recent activity entries
func GetRecentActivityHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	entries, err := services.RecentActivity(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"activity": entries,
		"limit":    services.RecentActivityLimit,
	})
}
