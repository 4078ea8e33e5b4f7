package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dulili/internal/finance"
	"dulili/internal/models"
)

func validPlanRequest(building models.Building, owner models.User, lot models.Lot) PlanRequest {
	return PlanRequest{
		BuildingID:   building.ID,
		UserID:       owner.ID,
		LotID:        lot.ID,
		Installments: 6,
		Frequency:    models.PaymentPlanFrequencyMonthly,
		StartDate:    testNow.AddDate(0, 0, 14),
	}
}

func TestPlanRequestValidation(t *testing.T) {
	db := setupTestDB(t)
	building, owner, lot := seedBuilding(t, db)
	svc := NewPlanService(db)
	ctx := context.Background()

	req := validPlanRequest(building, owner, lot)
	req.Installments = 13
	_, err := svc.Request(ctx, req)
	assert.ErrorIs(t, err, finance.ErrValidation)

	req = validPlanRequest(building, owner, lot)
	req.Installments = 0
	_, err = svc.Request(ctx, req)
	assert.ErrorIs(t, err, finance.ErrValidation)

	req = validPlanRequest(building, owner, lot)
	req.Frequency = "daily"
	_, err = svc.Request(ctx, req)
	assert.ErrorIs(t, err, finance.ErrValidation)
}

func TestPlanRequestBlockedWhileInFlight(t *testing.T) {
	db := setupTestDB(t)
	building, owner, lot := seedBuilding(t, db)
	svc := NewPlanService(db)
	ctx := context.Background()

	first, err := svc.Request(ctx, validPlanRequest(building, owner, lot))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusPending, first.Status)

	_, err = svc.Request(ctx, validPlanRequest(building, owner, lot))
	assert.ErrorIs(t, err, finance.ErrValidation)
	assert.Contains(t, err.Error(), "existing plan in progress")
}

func TestPlanRequestAllowedAfterTerminal(t *testing.T) {
	db := setupTestDB(t)
	building, owner, lot := seedBuilding(t, db)
	svc := NewPlanService(db)
	ctx := context.Background()

	first, err := svc.Request(ctx, validPlanRequest(building, owner, lot))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, first.ID, models.PaymentPlanStatusRejected)
	require.NoError(t, err)

	second, err := svc.Request(ctx, validPlanRequest(building, owner, lot))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPlanUniqueIndexBackstopsRace(t *testing.T) {
	db := setupTestDB(t)
	building, owner, lot := seedBuilding(t, db)

	// Insert directly, bypassing the service's existence check, the way a
	// racing request would.
	plan := models.PaymentPlan{
		BuildingID: building.ID, UserID: owner.ID, LotID: lot.ID,
		Status: models.PaymentPlanStatusActive, Installments: 3,
		Frequency: models.PaymentPlanFrequencyMonthly, StartDate: testNow,
	}
	require.NoError(t, db.Create(&plan).Error)

	dup := models.PaymentPlan{
		BuildingID: building.ID, UserID: owner.ID, LotID: lot.ID,
		Status: models.PaymentPlanStatusPending, Installments: 3,
		Frequency: models.PaymentPlanFrequencyMonthly, StartDate: testNow,
	}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), "expected unique violation, got %v", err)

	// A terminal plan does not hold the index slot.
	require.NoError(t, db.Model(&plan).Update("status", models.PaymentPlanStatusCompleted).Error)
	fresh := models.PaymentPlan{
		BuildingID: building.ID, UserID: owner.ID, LotID: lot.ID,
		Status: models.PaymentPlanStatusPending, Installments: 3,
		Frequency: models.PaymentPlanFrequencyMonthly, StartDate: testNow,
	}
	require.NoError(t, db.Create(&fresh).Error)
}

func TestPlanTransitions(t *testing.T) {
	db := setupTestDB(t)
	building, owner, lot := seedBuilding(t, db)
	svc := NewPlanService(db)
	ctx := context.Background()

	plan, err := svc.Request(ctx, validPlanRequest(building, owner, lot))
	require.NoError(t, err)

	// pending -> active skips approval
	_, err = svc.Transition(ctx, plan.ID, models.PaymentPlanStatusActive)
	assert.ErrorIs(t, err, finance.ErrInvalidTransition)

	plan, err = svc.Transition(ctx, plan.ID, models.PaymentPlanStatusApproved)
	require.NoError(t, err)

	plan, err = svc.Transition(ctx, plan.ID, models.PaymentPlanStatusActive)
	require.NoError(t, err)

	plan, err = svc.Transition(ctx, plan.ID, models.PaymentPlanStatusCompleted)
	require.NoError(t, err)

	// terminal states never transition again
	_, err = svc.Transition(ctx, plan.ID, models.PaymentPlanStatusActive)
	assert.ErrorIs(t, err, finance.ErrInvalidTransition)

	_, err = svc.Transition(ctx, 9999, models.PaymentPlanStatusApproved)
	assert.ErrorIs(t, err, finance.ErrNotFound)
}
