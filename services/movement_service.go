package services

import (
	"context"
	"log"

	"juris_desk_go/models"
	"juris_desk_go/services/gcalendar"

	"gorm.io/gorm"
)

// ResolveLinkedClient resolves the client a movement belongs to. ClientID is
// the canonical link; when absent, a case-number match is used as a
// display-only fallback and never written back to the movement.
func ResolveLinkedClient(db *gorm.DB, userID string, movement *models.CourtMovement) (*models.Client, error) {
	if movement.ClientID != nil && *movement.ClientID != "" {
		var client models.Client
		err := db.Where("user_id = ? AND id = ?", userID, *movement.ClientID).First(&client).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, nil
			}
			return nil, err
		}
		return &client, nil
	}

	if movement.CaseNumber == "" {
		return nil, nil
	}
	var client models.Client
	err := db.Where("user_id = ? AND case_number = ?", userID, movement.CaseNumber).
		Order("created_at ASC").
		First(&client).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// SyncMovementToCalendar pushes a movement into the user's external calendar.
// Failures are soft: the movement row records the sync error and the caller
// reports a degraded-but-successful outcome.
func SyncMovementToCalendar(ctx context.Context, db *gorm.DB, provider gcalendar.Provider, settings *models.UserSettings, movement *models.CourtMovement) {
	if provider == nil || settings == nil || !settings.HasCalendarConnection() {
		return
	}

	eventID, err := provider.CreateEvent(ctx, settings, gcalendar.Event{
		Title:       movement.Title,
		Description: movement.Description,
		Location:    movement.Location,
		Start:       movement.Date,
	})
	if err != nil {
		log.Printf("Calendar sync failed for movement %s: %v", movement.ID, err)
		movement.CalendarSyncError = err.Error()
	} else {
		movement.CalendarEventID = eventID
		movement.CalendarSyncError = ""
	}

	if err := db.Model(movement).Select("calendar_event_id", "calendar_sync_error").
		Updates(map[string]interface{}{
			"calendar_event_id":   movement.CalendarEventID,
			"calendar_sync_error": movement.CalendarSyncError,
		}).Error; err != nil {
		log.Printf("Failed to persist calendar sync state for movement %s: %v", movement.ID, err)
	}
}

// RemoveMovementFromCalendar deletes the movement's external event, best
// effort. Returns false when the event could not be removed; the movement
// delete proceeds regardless.
func RemoveMovementFromCalendar(ctx context.Context, provider gcalendar.Provider, settings *models.UserSettings, movement *models.CourtMovement) bool {
	if movement.CalendarEventID == "" {
		return true
	}
	if provider == nil || settings == nil || !settings.HasCalendarConnection() {
		return false
	}

	ok, err := provider.DeleteEvent(ctx, settings, movement.CalendarEventID)
	if err != nil {
		log.Printf("Calendar event delete failed for movement %s: %v", movement.ID, err)
		return false
	}
	return ok
}
