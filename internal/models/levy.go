package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LevyStatus represents the payment state of a levy
type LevyStatus string

const (
	LevyStatusPending LevyStatus = "pending"
	LevyStatusPaid    LevyStatus = "paid"
	LevyStatusOverdue LevyStatus = "overdue"
)

// LevyType represents the fund a levy contributes to
type LevyType string

const (
	LevyTypeAdministrative LevyType = "administrative"
	LevyTypeCapitalWorks   LevyType = "capital_works"
	LevyTypeSpecial        LevyType = "special"
)

// Levy is a billing obligation for one lot for one period
type Levy struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint `gorm:"index" json:"building_id"`
	LotID      uint `gorm:"index" json:"lot_id"`
	OwnerID    uint `gorm:"index" json:"owner_id"`

	Amount decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`

	// AmountPaid accumulates partial payments applied to this levy.
	AmountPaid decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`

	DueDate     time.Time  `gorm:"index" json:"due_date"`
	Status      LevyStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Type        LevyType   `gorm:"type:varchar(30);default:'administrative'" json:"type"`
	Period      string     `gorm:"type:varchar(100)" json:"period"` // e.g. "Q1 2026"
	Description string     `gorm:"type:text" json:"description"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Lot      Lot      `gorm:"foreignKey:LotID" json:"lot,omitempty"`
	Owner    User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// Outstanding returns the unpaid principal on the levy.
func (l Levy) Outstanding() decimal.Decimal {
	out := l.Amount.Sub(l.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// EffectiveStatus derives the levy status as of now. Overdue is a read-time
// derivation from the due date, never a persisted transition.
func (l Levy) EffectiveStatus(now time.Time) LevyStatus {
	if l.Status == LevyStatusPaid {
		return LevyStatusPaid
	}
	if now.After(l.DueDate) {
		return LevyStatusOverdue
	}
	return LevyStatusPending
}
