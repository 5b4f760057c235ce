package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Movement type constants
const (
	MovementTypeHearing      = "HEARING"
	MovementTypeDeadline     = "DEADLINE"
	MovementTypeNotification = "NOTIFICATION"
)

// CourtMovement is a scheduled court event: a hearing, a procedural deadline
// or a notification. It may be linked to a client by ClientID; the CaseNumber
// field is kept as a display-only fallback when no explicit link exists.
type CourtMovement struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Ownership
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// Linkage (ClientID is canonical; CaseNumber is display-only fallback)
	ClientID   *string `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client     *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CaseNumber string  `gorm:"index" json:"case_number"`

	Type        string    `gorm:"not null;index" json:"type"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Location    string    `json:"location"`

	// External calendar sync (best effort; failures never block the movement)
	CalendarEventID   string `json:"calendar_event_id,omitempty"`
	CalendarSyncError string `json:"calendar_sync_error,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *CourtMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CourtMovement model
func (CourtMovement) TableName() string {
	return "court_movements"
}

// IsCritical checks if the movement counts as a critical date (deadline or notification)
func (m *CourtMovement) IsCritical() bool {
	return m.Type == MovementTypeDeadline || m.Type == MovementTypeNotification
}

// IsValidMovementType checks if the movement type is valid
func IsValidMovementType(movementType string) bool {
	validTypes := []string{
		MovementTypeHearing,
		MovementTypeDeadline,
		MovementTypeNotification,
	}
	for _, t := range validTypes {
		if t == movementType {
			return true
		}
	}
	return false
}

// GetMovementTypeDisplayName returns human-readable movement type name
func GetMovementTypeDisplayName(movementType string) string {
	names := map[string]string{
		MovementTypeHearing:      "Hearing",
		MovementTypeDeadline:     "Deadline",
		MovementTypeNotification: "Notification",
	}
	if name, ok := names[movementType]; ok {
		return name
	}
	return movementType
}
