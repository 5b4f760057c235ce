package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// MovementRequest is the create/update payload for a court movement
type MovementRequest struct {
	ClientID    string `json:"client_id" form:"client_id"`
	CaseNumber  string `json:"case_number" form:"case_number"`
	Type        string `json:"type" form:"type"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"` // YYYY-MM-DD
	Location    string `json:"location" form:"location"`
}

// GetMovementsHandler returns the user's court movements with filtering
func GetMovementsHandler(c echo.Context) error {
	movementType := c.QueryParam("type")
	clientID := c.QueryParam("client_id")

	page := 1
	limit := 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	query := middleware.UserScopedQuery(c, db.DB).Model(&models.CourtMovement{})
	if movementType != "" && models.IsValidMovementType(movementType) {
		query = query.Where("type = ?", movementType)
	}
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count movements")
	}

	var movements []models.CourtMovement
	if err := query.
		Preload("Client").
		Order("date ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&movements).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch movements")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements":   movements,
		"total":       total,
		"page":        page,
		"total_pages": int((total + int64(limit) - 1) / int64(limit)),
	})
}

// GetMovementHandler returns a single movement with its resolved client
func GetMovementHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	movement, err := loadOwnedMovement(c, c.Param("id"))
	if err != nil {
		return err
	}

	linked, err := services.ResolveLinkedClient(db.DB, user.ID, movement)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve linked client")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movement":      movement,
		"linked_client": linked,
	})
}

// CreateMovementHandler registers a court movement and pushes it to the
// user's external calendar. A calendar failure never fails the request; it
// is recorded on the movement instead.
func CreateMovementHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	movement, err := movementFromRequest(c, user.ID, &req)
	if err != nil {
		return err
	}

	if err := db.DB.Create(movement).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create movement")
	}

	syncMovement(c, movement)

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionCreate, "CourtMovement", movement.ID, movement.Title,
		fmt.Sprintf("Scheduled %s for %s", models.GetMovementTypeDisplayName(movement.Type), movement.Date.Format("2006-01-02"))); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.JSON(http.StatusCreated, movement)
}

// UpdateMovementHandler updates a movement. The old calendar event is
// removed and a fresh one is created for the new date.
func UpdateMovementHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	movement, err := loadOwnedMovement(c, c.Param("id"))
	if err != nil {
		return err
	}

	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	updated, err := movementFromRequest(c, user.ID, &req)
	if err != nil {
		return err
	}

	// Drop the stale calendar event before the reschedule
	if movement.CalendarEventID != "" {
		removeMovementEvent(c, movement)
	}

	movement.ClientID = updated.ClientID
	movement.CaseNumber = updated.CaseNumber
	movement.Type = updated.Type
	movement.Title = updated.Title
	movement.Description = updated.Description
	movement.Date = updated.Date
	movement.Location = updated.Location
	movement.CalendarEventID = ""
	movement.CalendarSyncError = ""

	if err := db.DB.Save(movement).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update movement")
	}

	syncMovement(c, movement)

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionUpdate, "CourtMovement", movement.ID, movement.Title, "Updated court movement"); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.JSON(http.StatusOK, movement)
}

// DeleteMovementHandler removes a movement and, best effort, its calendar event
func DeleteMovementHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	movement, err := loadOwnedMovement(c, c.Param("id"))
	if err != nil {
		return err
	}

	removeMovementEvent(c, movement)

	if err := db.DB.Delete(movement).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete movement")
	}

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionDelete, "CourtMovement", movement.ID, movement.Title, "Removed court movement"); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// loadOwnedMovement fetches a movement by id scoped to the current user
func loadOwnedMovement(c echo.Context, id string) (*models.CourtMovement, error) {
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Movement id is required")
	}

	var movement models.CourtMovement
	err := middleware.UserScopedQuery(c, db.DB).First(&movement, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Movement not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch movement")
	}
	return &movement, nil
}

func movementFromRequest(c echo.Context, userID string, req *MovementRequest) (*models.CourtMovement, error) {
	if req.Title == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}
	if !models.IsValidMovementType(req.Type) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid movement type")
	}

	date, err := services.ParseDate(req.Date)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid date")
	}

	movement := &models.CourtMovement{
		UserID:      userID,
		CaseNumber:  req.CaseNumber,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
	}

	if req.ClientID != "" {
		// The explicit link must point at a client the user owns
		var client models.Client
		err := db.DB.Where("user_id = ? AND id = ?", userID, req.ClientID).First(&client).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "Linked client not found")
			}
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify linked client")
		}
		movement.ClientID = &client.ID
	}

	return movement, nil
}

func syncMovement(c echo.Context, movement *models.CourtMovement) {
	user := middleware.GetCurrentUser(c)
	provider := GetCalendarProvider(c)
	if provider == nil {
		return
	}

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		c.Logger().Errorf("Failed to load settings for calendar sync: %v", err)
		return
	}

	services.SyncMovementToCalendar(c.Request().Context(), db.DB, provider, settings, movement)
}

func removeMovementEvent(c echo.Context, movement *models.CourtMovement) {
	user := middleware.GetCurrentUser(c)
	provider := GetCalendarProvider(c)
	if provider == nil || movement.CalendarEventID == "" {
		return
	}

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		c.Logger().Errorf("Failed to load settings for calendar delete: %v", err)
		return
	}

	services.RemoveMovementFromCalendar(c.Request().Context(), provider, settings, movement)
}
