package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client origin constants (determine which fee plan applies - must remain fixed)
const (
	OriginPrivate    = "PRIVATE"    // Privately retained client
	OriginDefensoria = "DEFENSORIA" // Assigned through the public defender's office
)

// Case type constants
const (
	CaseTypeCivil          = "CIVIL"
	CaseTypeLabor          = "LABOR"
	CaseTypeCriminal       = "CRIMINAL"
	CaseTypeFamily         = "FAMILY"
	CaseTypeTax            = "TAX"
	CaseTypeSocialSecurity = "SOCIAL_SECURITY"
	CaseTypeOther          = "OTHER"
)

// Client status constants
const (
	ClientStatusActive  = "ACTIVE"
	ClientStatusPending = "PENDING"
	ClientStatusClosed  = "CLOSED"
)

// Client represents a client of the practice together with their case custody data
type Client struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Ownership (every row is scoped to the lawyer that created it)
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	// Identity and contact
	Name      string `gorm:"not null;index" json:"name"`
	Document  string `json:"document"` // CPF/CNPJ
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `gorm:"type:text" json:"address"`
	Notes     string `gorm:"type:text" json:"notes"`

	// Case custody
	Origin     string `gorm:"not null;index" json:"origin"`
	CaseType   string `gorm:"not null" json:"case_type"`
	CaseNumber string `gorm:"index" json:"case_number"`
	Court      string `json:"court"`
	Status     string `gorm:"not null;default:ACTIVE;index" json:"status"`

	// Lawyer of record (free-text name, used as an aggregation filter)
	LawyerOfRecord string `json:"lawyer_of_record"`

	// Relationships
	Financials *ClientFinancials `gorm:"foreignKey:ClientID" json:"financials,omitempty"`
	Movements  []CourtMovement   `gorm:"foreignKey:ClientID" json:"movements,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}

// IsPrivate checks if the client was privately retained
func (c *Client) IsPrivate() bool {
	return c.Origin == OriginPrivate
}

// IsDefensoria checks if the client was assigned via the public defender's office
func (c *Client) IsDefensoria() bool {
	return c.Origin == OriginDefensoria
}

// IsValidOrigin checks if the origin is valid
func IsValidOrigin(origin string) bool {
	return origin == OriginPrivate || origin == OriginDefensoria
}

// IsValidCaseType checks if the case type is valid
func IsValidCaseType(caseType string) bool {
	validTypes := []string{
		CaseTypeCivil,
		CaseTypeLabor,
		CaseTypeCriminal,
		CaseTypeFamily,
		CaseTypeTax,
		CaseTypeSocialSecurity,
		CaseTypeOther,
	}
	for _, t := range validTypes {
		if t == caseType {
			return true
		}
	}
	return false
}

// IsValidClientStatus checks if the status is valid
func IsValidClientStatus(status string) bool {
	validStatuses := []string{
		ClientStatusActive,
		ClientStatusPending,
		ClientStatusClosed,
	}
	for _, s := range validStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// GetCaseTypeDisplayName returns human-readable case type name
func GetCaseTypeDisplayName(caseType string) string {
	names := map[string]string{
		CaseTypeCivil:          "Civil",
		CaseTypeLabor:          "Labor",
		CaseTypeCriminal:       "Criminal",
		CaseTypeFamily:         "Family",
		CaseTypeTax:            "Tax",
		CaseTypeSocialSecurity: "Social Security",
		CaseTypeOther:          "Other",
	}
	if name, ok := names[caseType]; ok {
		return name
	}
	return caseType
}

// GetOriginDisplayName returns human-readable origin name
func GetOriginDisplayName(origin string) string {
	names := map[string]string{
		OriginPrivate:    "Private",
		OriginDefensoria: "Public Defender",
	}
	if name, ok := names[origin]; ok {
		return name
	}
	return origin
}
