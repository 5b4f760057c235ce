package services

import (
	"fmt"
	"time"

	"juris_desk_go/models"

	"gorm.io/gorm"
)

// GetOrCreateSettings returns the user's settings row, creating an empty one
// on first access. Settings are strictly per user: a user with no logo gets
// no logo, never another user's.
func GetOrCreateSettings(db *gorm.DB, userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings = models.UserSettings{UserID: userID}
	if err := db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return &settings, nil
}

// SettingsUpdate carries the editable settings fields
type SettingsUpdate struct {
	FirmName        string `json:"firm_name"`
	OABRegistration string `json:"oab_registration"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	CalendarID      string `json:"calendar_id"`
}

// SaveSettings upserts the user's settings row with the given fields
func SaveSettings(db *gorm.DB, userID string, update SettingsUpdate) (*models.UserSettings, error) {
	settings, err := GetOrCreateSettings(db, userID)
	if err != nil {
		return nil, err
	}

	settings.FirmName = update.FirmName
	settings.OABRegistration = update.OABRegistration
	settings.Address = update.Address
	settings.Phone = update.Phone
	settings.CalendarID = update.CalendarID

	if err := db.Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

// SaveCalendarToken stores the Google Calendar OAuth token captured from the
// consent callback
func SaveCalendarToken(db *gorm.DB, userID, accessToken, refreshToken string, expiry time.Time) error {
	settings, err := GetOrCreateSettings(db, userID)
	if err != nil {
		return err
	}

	settings.CalendarAccessToken = accessToken
	settings.CalendarRefreshToken = refreshToken
	settings.CalendarTokenExpiry = &expiry
	if settings.CalendarID == "" {
		settings.CalendarID = "primary"
	}

	if err := db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save calendar token: %w", err)
	}
	return nil
}

// DisconnectCalendar clears the stored Google Calendar connection
func DisconnectCalendar(db *gorm.DB, userID string) error {
	settings, err := GetOrCreateSettings(db, userID)
	if err != nil {
		return err
	}

	settings.CalendarAccessToken = ""
	settings.CalendarRefreshToken = ""
	settings.CalendarTokenExpiry = nil

	if err := db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to disconnect calendar: %w", err)
	}
	return nil
}
