package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSettings is the per-user practice profile: letterhead data used by the
// document generator plus the external-calendar connection.
type UserSettings struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// Letterhead / document data
	FirmName        string `json:"firm_name"`
	OABRegistration string `json:"oab_registration"`
	Address         string `gorm:"type:text" json:"address"`
	Phone           string `json:"phone"`
	LogoKey         string `json:"logo_key,omitempty"` // Storage key of the uploaded logo

	// Google Calendar connection (captured from the OAuth callback)
	CalendarAccessToken  string     `json:"-"`
	CalendarRefreshToken string     `json:"-"`
	CalendarTokenExpiry  *time.Time `json:"-"`
	CalendarID           string     `json:"calendar_id,omitempty"` // Target calendar, defaults to "primary"
}

// BeforeCreate hook to generate UUID
func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for UserSettings model
func (UserSettings) TableName() string {
	return "user_settings"
}

// HasCalendarConnection checks if a Google Calendar token is stored
func (s *UserSettings) HasCalendarConnection() bool {
	return s.CalendarAccessToken != "" || s.CalendarRefreshToken != ""
}
