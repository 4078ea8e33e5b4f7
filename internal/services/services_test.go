package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dulili/internal/models"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// setupTestDB opens a uniquely named in-memory sqlite database and runs the
// full migration, partial unique index included.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

// seedBuilding creates a building with one manager, one owner, and the
// owner's lot.
func seedBuilding(t *testing.T, db *gorm.DB) (models.Building, models.User, models.Lot) {
	t.Helper()

	building := models.Building{Name: "Harbourview", StrataPlanNumber: "SP" + t.Name()}
	require.NoError(t, db.Create(&building).Error)

	owner := models.User{
		Name:       "Alex Owner",
		Email:      fmt.Sprintf("owner-%s@example.com", t.Name()),
		Role:       models.UserRoleMember,
		BuildingID: building.ID,
	}
	require.NoError(t, db.Create(&owner).Error)

	lot := models.Lot{
		BuildingID:      building.ID,
		OwnerID:         owner.ID,
		LotNumber:       "12",
		UnitEntitlement: 10,
	}
	require.NoError(t, db.Create(&lot).Error)

	return building, owner, lot
}

// seedLevy creates a pending levy the given number of days overdue.
func seedLevy(t *testing.T, db *gorm.DB, building models.Building, lot models.Lot, amount string, daysOverdue int) models.Levy {
	t.Helper()

	levy := models.Levy{
		BuildingID: building.ID,
		LotID:      lot.ID,
		OwnerID:    lot.OwnerID,
		Amount:     decimal.RequireFromString(amount),
		DueDate:    testNow.AddDate(0, 0, -daysOverdue),
		Status:     models.LevyStatusPending,
		Period:     "Q1 2026",
	}
	require.NoError(t, db.Create(&levy).Error)
	return levy
}
