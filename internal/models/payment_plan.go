package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentPlanStatus represents the lifecycle state of a payment plan
type PaymentPlanStatus string

const (
	PaymentPlanStatusPending   PaymentPlanStatus = "pending"
	PaymentPlanStatusApproved  PaymentPlanStatus = "approved"
	PaymentPlanStatusActive    PaymentPlanStatus = "active"
	PaymentPlanStatusCompleted PaymentPlanStatus = "completed"
	PaymentPlanStatusCancelled PaymentPlanStatus = "cancelled"
	PaymentPlanStatusRejected  PaymentPlanStatus = "rejected"
)

// InFlight reports whether the plan counts against the one-plan-per-user
// rule (a new request is blocked while such a plan exists).
func (s PaymentPlanStatus) InFlight() bool {
	switch s {
	case PaymentPlanStatusPending, PaymentPlanStatusApproved, PaymentPlanStatusActive:
		return true
	}
	return false
}

// BlocksRecovery reports whether the plan suspends tribunal and court
// action against the owner.
func (s PaymentPlanStatus) BlocksRecovery() bool {
	return s == PaymentPlanStatusApproved || s == PaymentPlanStatusActive
}

// Terminal reports whether the plan has reached a final state.
func (s PaymentPlanStatus) Terminal() bool {
	switch s {
	case PaymentPlanStatusCompleted, PaymentPlanStatusCancelled, PaymentPlanStatusRejected:
		return true
	}
	return false
}

// PaymentPlanFrequency represents the installment cadence
type PaymentPlanFrequency string

const (
	PaymentPlanFrequencyWeekly      PaymentPlanFrequency = "weekly"
	PaymentPlanFrequencyFortnightly PaymentPlanFrequency = "fortnightly"
	PaymentPlanFrequencyMonthly     PaymentPlanFrequency = "monthly"
)

// MaxPlanInstallments is the regulatory maximum plan duration in monthly
// installments.
const MaxPlanInstallments = 12

// PaymentPlan is a proposed or active repayment schedule for one user's
// arrears. At most one plan per user may be in flight at any time; the
// database enforces this with a partial unique index on user_id.
type PaymentPlan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint `gorm:"index" json:"building_id"`
	UserID     uint `gorm:"index" json:"user_id"`
	LotID      uint `gorm:"index" json:"lot_id"`

	Status        PaymentPlanStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Installments  int                  `json:"installments"`
	Frequency     PaymentPlanFrequency `gorm:"type:varchar(20);default:'monthly'" json:"frequency"`
	StartDate     time.Time            `json:"start_date"`
	WaiveInterest bool                 `gorm:"default:false" json:"waive_interest"`
	Notes         string               `gorm:"type:text" json:"notes"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lot      Lot      `gorm:"foreignKey:LotID" json:"lot,omitempty"`
}
