package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// LevySchedule describes a recurring levy run for a building. The worker
// expands the RRULE and issues one pending levy per lot, pro-rated by unit
// entitlement, each time an occurrence falls due.
type LevySchedule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BuildingID uint `gorm:"index" json:"building_id"`

	// TotalAmount is the building-wide amount of each run, divided across
	// lots by unit entitlement.
	TotalAmount decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount"`

	Type        LevyType `gorm:"type:varchar(30);default:'administrative'" json:"type"`
	Description string   `gorm:"type:text" json:"description"`

	StartDate         time.Time `json:"start_date"`
	RecurringInterval string    `gorm:"type:text" json:"recurring_interval"` // RFC 5545 RRULE string
	IsActive          bool      `gorm:"default:true" json:"is_active"`

	// LastIssued is the most recent occurrence a run was issued for.
	LastIssued *time.Time `json:"last_issued"`

	// Relationships
	Building Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}

// NextDue returns the next occurrence on or after the given instant.
// Returns the zero time when the rule is invalid or exhausted.
func (s LevySchedule) NextDue(after time.Time) time.Time {
	rule, err := rrule.StrToRRule(s.RecurringInterval)
	if err != nil {
		return time.Time{}
	}
	rule.DTStart(s.StartDate.Truncate(time.Second))
	return rule.After(after.Truncate(time.Second), true)
}

// DueOccurrences returns the occurrences since LastIssued (exclusive) up to
// now (inclusive) that still need a levy run.
func (s LevySchedule) DueOccurrences(now time.Time) []time.Time {
	rule, err := rrule.StrToRRule(s.RecurringInterval)
	if err != nil {
		return nil
	}
	// rrule truncates occurrences to whole seconds, so a sub-second start
	// date would place the first occurrence fractionally before the range
	// and drop it.
	rule.DTStart(s.StartDate.Truncate(time.Second))

	from := s.StartDate.Truncate(time.Second)
	if s.LastIssued != nil {
		from = *s.LastIssued
	}

	var due []time.Time
	for _, occ := range rule.Between(from, now, true) {
		if s.LastIssued != nil && !occ.After(*s.LastIssued) {
			continue
		}
		due = append(due, occ)
	}
	return due
}
