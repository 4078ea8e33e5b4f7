package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod represents how a levy payment was received
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCash         PaymentMethod = "cash"
)

// LevyPayment records a payment received against a user's arrears, together
// with how it was allocated across levies (oldest due date first, principal
// before interest).
type LevyPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint `gorm:"index" json:"building_id"`
	UserID     uint `gorm:"index" json:"user_id"`

	Amount     decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	Method     PaymentMethod   `gorm:"type:varchar(30);default:'bank_transfer'" json:"method"`
	Reference  string          `gorm:"type:varchar(100)" json:"reference"`
	ReceivedAt time.Time       `json:"received_at"`

	// Allocations records the per-levy split the payment was applied as.
	Allocations []LevyPaymentAllocation `gorm:"foreignKey:LevyPaymentID" json:"allocations,omitempty"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// LevyPaymentAllocation is the portion of one payment applied to one levy.
type LevyPaymentAllocation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	LevyPaymentID uint `gorm:"index" json:"levy_payment_id"`
	LevyID        uint `gorm:"index" json:"levy_id"`

	Principal decimal.Decimal `gorm:"type:decimal(15,2)" json:"principal"`
	Interest  decimal.Decimal `gorm:"type:decimal(15,2)" json:"interest"`

	// Relationships
	LevyPayment LevyPayment `gorm:"foreignKey:LevyPaymentID" json:"levy_payment,omitempty"`
	Levy        Levy        `gorm:"foreignKey:LevyID" json:"levy,omitempty"`
}
