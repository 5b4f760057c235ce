package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status constants (stored lowercase, matching line item statuses)
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue" // Derived for installments past due date
)

// Defensoria certificate status constants
const (
	CertificateStatusPending    = "pending"    // Certificate requested, not yet issued
	CertificateStatusIssued     = "issued"     // Certificate issued, awaiting payment
	CertificateStatusLiquidated = "liquidated" // Certificate paid out by the institution
)

// Fee plan kinds. Exactly one plan is populated per client, selected by
// origin and case type at creation time and not mixed afterwards.
const (
	PlanKindInstallments = "INSTALLMENTS" // Private: entry payment + installments
	PlanKindSuccessFee   = "SUCCESS_FEE"  // Private labor: percentage of the award
	PlanKindDefensoria   = "DEFENSORIA"   // Public defender certificates
)

// ClientFinancials holds the agreed fee plan for a client. One row per client.
type ClientFinancials struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID string `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`

	// Common
	TotalAgreed float64 `gorm:"not null;default:0" json:"total_agreed"`

	// Entry payment (private plans)
	InitialPayment       float64    `json:"initial_payment"`
	InitialPaymentStatus string     `gorm:"default:paid" json:"initial_payment_status"`
	InitialPaymentPaidAt *time.Time `json:"initial_payment_paid_at,omitempty"`

	// Success fee (private labor plans)
	SuccessFeePercentage float64    `json:"success_fee_percentage"`
	SuccessFeeStatus     string     `gorm:"default:pending" json:"success_fee_status"`
	SuccessFeePaidAt     *time.Time `json:"success_fee_paid_at,omitempty"`
	LaborFinalValue      float64    `json:"labor_final_value"`
	LaborPaymentDate     *time.Time `json:"labor_payment_date,omitempty"`

	// Defensoria certificates. Criminal cases split 70/30; the 30% share only
	// exists when the case went to a recourse stage. Other case types have a
	// single 100% certificate.
	HasRecourse         bool    `json:"has_recourse"`
	DefensoriaValue70   float64 `json:"defensoria_value_70"`
	DefensoriaVoucher70 string  `json:"defensoria_voucher_70"`
	DefensoriaStatus70  string  `json:"defensoria_status_70"`
	DefensoriaMonth70   string  `json:"defensoria_month_70"` // Payment month, YYYY-MM
	DefensoriaValue30   float64 `json:"defensoria_value_30"`
	DefensoriaVoucher30 string  `json:"defensoria_voucher_30"`
	DefensoriaStatus30  string  `json:"defensoria_status_30"`
	DefensoriaMonth30   string  `json:"defensoria_month_30"`
	DefensoriaValue100  float64 `json:"defensoria_value_100"`
	DefensoriaVoucher100 string `json:"defensoria_voucher_100"`
	DefensoriaStatus100  string `json:"defensoria_status_100"`
	DefensoriaMonth100   string `json:"defensoria_month_100"`

	// Relationships
	Installments []Installment `gorm:"foreignKey:FinancialsID" json:"installments,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *ClientFinancials) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ClientFinancials model
func (ClientFinancials) TableName() string {
	return "client_financials"
}

// Installment is one agreed payment of a private fee plan, ordered by Number.
// Values are snapshotted at plan creation from (total - entry) / count and are
// never recomputed when the agreed total changes later.
type Installment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FinancialsID string `gorm:"type:uuid;not null;index" json:"financials_id"`

	Number  int        `gorm:"not null" json:"number"` // 1..N
	Value   float64    `gorm:"not null" json:"value"`
	DueDate time.Time  `gorm:"not null" json:"due_date"`
	Status  string     `gorm:"not null;default:pending" json:"status"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Installment model
func (Installment) TableName() string {
	return "installments"
}

// IsPaid checks if the installment has been paid
func (i *Installment) IsPaid() bool {
	return i.Status == PaymentStatusPaid
}

// PlanKindFor returns the fee plan kind selected by origin and case type.
func PlanKindFor(origin, caseType string) string {
	if origin == OriginDefensoria {
		return PlanKindDefensoria
	}
	if caseType == CaseTypeLabor {
		return PlanKindSuccessFee
	}
	return PlanKindInstallments
}

// Clone returns a deep copy of the financials, installments included. Used by
// the status toggler, which mutates a copy and leaves the original untouched.
func (f *ClientFinancials) Clone() *ClientFinancials {
	if f == nil {
		return nil
	}
	clone := *f
	clone.InitialPaymentPaidAt = cloneTimePtr(f.InitialPaymentPaidAt)
	clone.SuccessFeePaidAt = cloneTimePtr(f.SuccessFeePaidAt)
	clone.LaborPaymentDate = cloneTimePtr(f.LaborPaymentDate)
	clone.Installments = make([]Installment, len(f.Installments))
	for idx, inst := range f.Installments {
		copied := inst
		copied.PaidAt = cloneTimePtr(inst.PaidAt)
		clone.Installments[idx] = copied
	}
	return &clone
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
