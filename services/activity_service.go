package services

import (
	"fmt"

	"juris_desk_go/models"

	"gorm.io/gorm"
)

// RecentActivityLimit caps how many entries the recent-activity view shows.
// The log itself is persisted without a cap.
const RecentActivityLimit = 20

// LogActivity appends an entry to the user's activity log. Logging is best
// effort: a failure is reported to the caller but should never abort the
// action that triggered it.
func LogActivity(db *gorm.DB, userID string, action models.ActivityAction, entityType, entityID, entityName, description string) error {
	entry := &models.ActivityLog{
		UserID:      userID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityName:  entityName,
		Description: description,
	}
	if err := db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// RecentActivity returns the user's most recent log entries, newest first
func RecentActivity(db *gorm.DB, userID string) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(RecentActivityLimit).
		Find(&entries).Error
	return entries, err
}
