package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityAction represents the type of operation performed
type ActivityAction string

const (
	ActivityActionCreate ActivityAction = "CREATE"
	ActivityActionUpdate ActivityAction = "UPDATE"
	ActivityActionDelete ActivityAction = "DELETE"
)

// ActivityLog is an append-only record of create/update/delete actions.
// Rows are never updated or deleted; the recent-activity view caps what it
// shows, the table itself is uncapped.
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_activity_created_at" json:"created_at"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	EntityType string         `gorm:"not null" json:"entity_type"` // e.g. "Client", "CourtMovement"
	EntityID   string         `gorm:"type:uuid;not null" json:"entity_id"`
	EntityName string         `json:"entity_name,omitempty"` // Denormalized for historical accuracy
	Action     ActivityAction `gorm:"not null" json:"action"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
