package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a user within a building
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleManager   UserRole = "manager"
	UserRoleCommittee UserRole = "committee"
	UserRoleMember    UserRole = "member"
)

// CanRecordRecovery reports whether the role may record or resolve
// recovery actions.
func (r UserRole) CanRecordRecovery() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleCommittee:
		return true
	}
	return false
}

// CanManageLevies reports whether the role may issue levies and manage
// payment plans on behalf of owners.
func (r UserRole) CanManageLevies() bool {
	return r == UserRoleAdmin || r == UserRoleManager
}

// User represents a member of a building
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string   `gorm:"type:varchar(255)" json:"name"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone        string   `gorm:"type:varchar(50)" json:"phone"`
	PasswordHash string   `gorm:"type:varchar(255)" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	BuildingID   uint     `gorm:"index" json:"building_id"`

	// Relationships
	Building     Building      `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Lots         []Lot         `gorm:"foreignKey:OwnerID" json:"lots,omitempty"`
	PaymentPlans []PaymentPlan `gorm:"foreignKey:UserID" json:"payment_plans,omitempty"`
}
