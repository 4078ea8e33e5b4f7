package models

import (
	"time"

	"gorm.io/gorm"
)

// Building is the tenant boundary. Every finance record is scoped to one
// building via BuildingID.
type Building struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name             string `gorm:"type:varchar(255)" json:"name"`
	Address          string `gorm:"type:varchar(500)" json:"address"`
	StrataPlanNumber string `gorm:"type:varchar(50);uniqueIndex" json:"strata_plan_number"`

	// Relationships
	Lots   []Lot  `gorm:"foreignKey:BuildingID" json:"lots,omitempty"`
	Levies []Levy `gorm:"foreignKey:BuildingID" json:"levies,omitempty"`
}

// Lot is an individually owned unit within a building, the billing unit
// for levies.
type Lot struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint   `gorm:"index" json:"building_id"`
	OwnerID    uint   `gorm:"index" json:"owner_id"`
	LotNumber  string `gorm:"type:varchar(20)" json:"lot_number"`

	// UnitEntitlement is the lot's share of building levies. Levy runs
	// pro-rate scheduled amounts by entitlement.
	UnitEntitlement int `gorm:"default:1" json:"unit_entitlement"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Owner    User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Levies   []Levy   `gorm:"foreignKey:LotID" json:"levies,omitempty"`
}
