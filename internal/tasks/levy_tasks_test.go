package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dulili/internal/models"
	"dulili/internal/services"
)

func setupTaskDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, services.AutoMigrate(db))
	return db
}

func TestIssueLeviesProRatesByEntitlement(t *testing.T) {
	db := setupTaskDB(t)

	building := models.Building{Name: "Seaview", StrataPlanNumber: "SP-TASK-1"}
	require.NoError(t, db.Create(&building).Error)

	ownerA := models.User{Email: "a@example.com", BuildingID: building.ID}
	ownerB := models.User{Email: "b@example.com", BuildingID: building.ID}
	require.NoError(t, db.Create(&ownerA).Error)
	require.NoError(t, db.Create(&ownerB).Error)

	lotA := models.Lot{BuildingID: building.ID, OwnerID: ownerA.ID, LotNumber: "1", UnitEntitlement: 3}
	lotB := models.Lot{BuildingID: building.ID, OwnerID: ownerB.ID, LotNumber: "2", UnitEntitlement: 1}
	require.NoError(t, db.Create(&lotA).Error)
	require.NoError(t, db.Create(&lotB).Error)

	// COUNT=3 keeps the occurrence set fixed no matter when the test runs.
	schedule := models.LevySchedule{
		BuildingID:        building.ID,
		TotalAmount:       decimal.NewFromInt(1000),
		Type:              models.LevyTypeAdministrative,
		StartDate:         time.Now().AddDate(0, 0, -70),
		RecurringInterval: "FREQ=MONTHLY;COUNT=3",
		IsActive:          true,
	}
	require.NoError(t, db.Create(&schedule).Error)

	result, err := IssueLeviesHandler(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result["runs"])
	assert.Equal(t, 6, result["levies_issued"])

	var levies []models.Levy
	require.NoError(t, db.Where("lot_id = ?", lotA.ID).Find(&levies).Error)
	require.Len(t, levies, 3)
	for _, l := range levies {
		assert.True(t, l.Amount.Equal(decimal.NewFromInt(750)), "lot A levy = %s", l.Amount)
		assert.Equal(t, models.LevyStatusPending, l.Status)
	}

	require.NoError(t, db.Where("lot_id = ?", lotB.ID).Find(&levies).Error)
	require.Len(t, levies, 3)
	for _, l := range levies {
		assert.True(t, l.Amount.Equal(decimal.NewFromInt(250)), "lot B levy = %s", l.Amount)
	}

	// A second run issues nothing: LastIssued advanced with the runs.
	result, err = IssueLeviesHandler(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result["levies_issued"])

	var total int64
	require.NoError(t, db.Model(&models.Levy{}).Count(&total).Error)
	assert.EqualValues(t, 6, total)
}

func TestIssueLeviesRolledBackRunNotCounted(t *testing.T) {
	db := setupTaskDB(t)

	building := models.Building{Name: "Failwell", StrataPlanNumber: "SP-TASK-3"}
	require.NoError(t, db.Create(&building).Error)

	owner := models.User{Email: "fail@example.com", BuildingID: building.ID}
	require.NoError(t, db.Create(&owner).Error)

	lotA := models.Lot{BuildingID: building.ID, OwnerID: owner.ID, LotNumber: "1", UnitEntitlement: 1}
	lotB := models.Lot{BuildingID: building.ID, OwnerID: owner.ID, LotNumber: "2", UnitEntitlement: 1}
	require.NoError(t, db.Create(&lotA).Error)
	require.NoError(t, db.Create(&lotB).Error)

	schedule := models.LevySchedule{
		BuildingID:        building.ID,
		TotalAmount:       decimal.NewFromInt(400),
		StartDate:         time.Now().AddDate(0, 0, -10),
		RecurringInterval: "FREQ=MONTHLY;COUNT=1",
		IsActive:          true,
	}
	require.NoError(t, db.Create(&schedule).Error)

	// Sink the second insert of the run so the transaction rolls back after
	// the first levy was already created inside it.
	require.NoError(t, db.Exec(fmt.Sprintf(
		"CREATE TRIGGER block_lot_b BEFORE INSERT ON levies WHEN NEW.lot_id = %d BEGIN SELECT RAISE(ABORT, 'blocked'); END",
		lotB.ID)).Error)

	result, err := IssueLeviesHandler(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result["levies_issued"], "rolled-back levies must not be counted")
	assert.Equal(t, 0, result["runs"])

	var total int64
	require.NoError(t, db.Model(&models.Levy{}).Count(&total).Error)
	assert.Zero(t, total)

	var reloaded models.LevySchedule
	require.NoError(t, db.First(&reloaded, schedule.ID).Error)
	assert.Nil(t, reloaded.LastIssued, "failed run must not advance the watermark")
}

func TestIssueLeviesSkipsInactiveSchedules(t *testing.T) {
	db := setupTaskDB(t)

	building := models.Building{Name: "Parkside", StrataPlanNumber: "SP-TASK-2"}
	require.NoError(t, db.Create(&building).Error)

	schedule := models.LevySchedule{
		BuildingID:        building.ID,
		TotalAmount:       decimal.NewFromInt(500),
		StartDate:         time.Now().AddDate(0, 0, -30),
		RecurringInterval: "FREQ=MONTHLY;COUNT=2",
		IsActive:          false,
	}
	require.NoError(t, db.Create(&schedule).Error)

	result, err := IssueLeviesHandler(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result["levies_issued"])
}
