package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecoveryActionType represents one discrete recovery step
type RecoveryActionType string

const (
	RecoveryActionTypeNotice              RecoveryActionType = "notice"
	RecoveryActionTypeReminder            RecoveryActionType = "reminder"
	RecoveryActionTypeTribunalApplication RecoveryActionType = "tribunal_application"
	RecoveryActionTypeCourtAction         RecoveryActionType = "court_action"
)

// Escalated reports whether the action is a tribunal or court step, which
// an approved or active payment plan suspends.
func (t RecoveryActionType) Escalated() bool {
	return t == RecoveryActionTypeTribunalApplication || t == RecoveryActionTypeCourtAction
}

// RecoveryActionStatus represents the resolution state of a recovery action
type RecoveryActionStatus string

const (
	RecoveryActionStatusPending   RecoveryActionStatus = "pending"
	RecoveryActionStatusCompleted RecoveryActionStatus = "completed"
	RecoveryActionStatusCancelled RecoveryActionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s RecoveryActionStatus) Terminal() bool {
	return s == RecoveryActionStatusCompleted || s == RecoveryActionStatusCancelled
}

// RecoveryAction is one recovery step taken against a lot owner. Rows are
// append-only: type, amounts, dates and references never change after
// creation; only the status field moves, pending to completed or cancelled.
type RecoveryAction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint `gorm:"index" json:"building_id"`
	LotID      uint `gorm:"index" json:"lot_id"`
	UserID     uint `gorm:"index" json:"user_id"`

	Type   RecoveryActionType   `gorm:"type:varchar(30)" json:"type"`
	Status RecoveryActionStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	ActionDate time.Time  `json:"action_date"`
	DueDate    *time.Time `json:"due_date"`

	// AmountOwed is the arrears snapshot at the time the action was taken.
	AmountOwed decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount_owed"`

	TribunalOrderNumber string `gorm:"type:varchar(100)" json:"tribunal_order_number"`
	Notes               string `gorm:"type:text" json:"notes"`

	// DocumentRef links the action to a stored notice or order document.
	DocumentRef string `gorm:"type:varchar(100)" json:"document_ref"`

	// ComplianceOverride marks an action recorded despite a compliance
	// warning, with the warning text preserved for the audit trail.
	ComplianceOverride bool   `gorm:"default:false" json:"compliance_override"`
	ComplianceNote     string `gorm:"type:text" json:"compliance_note"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Lot      Lot      `gorm:"foreignKey:LotID" json:"lot,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
