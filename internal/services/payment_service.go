package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dulili/internal/finance"
	"dulili/internal/models"
)

// PaymentService records payments against a user's arrears and applies
// them in the statutory order: oldest overdue levy first, principal before
// interest.
type PaymentService struct {
	db      *gorm.DB
	arrears *ArrearsService
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(db *gorm.DB, arrears *ArrearsService) *PaymentService {
	return &PaymentService{db: db, arrears: arrears}
}

// RecordPaymentInput describes a payment received from an owner.
type RecordPaymentInput struct {
	BuildingID uint
	UserID     uint
	Amount     decimal.Decimal
	Method     models.PaymentMethod
	Reference  string
}

// RecordPayment persists the payment, its per-levy allocation, and the
// updated levy balances in one transaction. Levies settled in full are
// marked paid. The allocation mirrors finance.AllocatePayment exactly.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput, now time.Time) (*models.LevyPayment, *finance.AllocationResult, error) {
	if in.Amount.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: payment amount must be positive, got %s", finance.ErrValidation, in.Amount)
	}

	summary, err := s.arrears.UserSummary(ctx, in.BuildingID, in.UserID, now)
	if err != nil {
		return nil, nil, err
	}

	result, err := finance.AllocatePayment(summary.Levies, in.Amount)
	if err != nil {
		return nil, nil, err
	}

	payment := models.LevyPayment{
		BuildingID: in.BuildingID,
		UserID:     in.UserID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		ReceivedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		for _, alloc := range result.Allocations {
			var levy models.Levy
			if err := tx.First(&levy, alloc.LevyID).Error; err != nil {
				return err
			}

			levy.AmountPaid = levy.AmountPaid.Add(alloc.Principal)
			if levy.Outstanding().IsZero() {
				levy.Status = models.LevyStatusPaid
			}
			if err := tx.Save(&levy).Error; err != nil {
				return err
			}

			record := models.LevyPaymentAllocation{
				LevyPaymentID: payment.ID,
				LevyID:        alloc.LevyID,
				Principal:     alloc.Principal,
				Interest:      alloc.Interest,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.arrears.InvalidateBuildingSummary(ctx, in.BuildingID)
	return &payment, &result, nil
}
