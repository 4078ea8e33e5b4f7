package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"dulili/internal/finance"
	"dulili/internal/models"
)

// PlanService manages payment plan requests and lifecycle transitions.
type PlanService struct {
	db *gorm.DB
}

// NewPlanService creates a PlanService.
func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// PlanRequest is an owner's request for a repayment schedule.
type PlanRequest struct {
	BuildingID   uint
	UserID       uint
	LotID        uint
	Installments int
	Frequency    models.PaymentPlanFrequency
	StartDate    time.Time
	Notes        string
}

func (r PlanRequest) validate() error {
	if r.Installments < 1 || r.Installments > models.MaxPlanInstallments {
		return fmt.Errorf("%w: installments must be between 1 and %d, got %d",
			finance.ErrValidation, models.MaxPlanInstallments, r.Installments)
	}
	switch r.Frequency {
	case models.PaymentPlanFrequencyWeekly, models.PaymentPlanFrequencyFortnightly, models.PaymentPlanFrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", finance.ErrValidation, r.Frequency)
	}
	return nil
}

// Request creates a pending payment plan for the user. The eligibility
// check runs first so the caller gets the rule's reason, but the partial
// unique index on user_id is what actually closes the check-then-create
// race under concurrent requests.
func (s *PlanService) Request(ctx context.Context, req PlanRequest) (*models.PaymentPlan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var existing []models.PaymentPlan
	if err := s.db.WithContext(ctx).Where("user_id = ?", req.UserID).Find(&existing).Error; err != nil {
		return nil, err
	}

	if decision := finance.CheckPlanRequest(existing); !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", finance.ErrValidation, decision.Reason)
	}

	plan := models.PaymentPlan{
		BuildingID:   req.BuildingID,
		UserID:       req.UserID,
		LotID:        req.LotID,
		Status:       models.PaymentPlanStatusPending,
		Installments: req.Installments,
		Frequency:    req.Frequency,
		StartDate:    req.StartDate,
		Notes:        req.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		// A concurrent request can slip past the check above; the index
		// rejects the second insert.
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: existing plan in progress", finance.ErrValidation)
		}
		return nil, err
	}
	return &plan, nil
}

// planTransitions is the allowed lifecycle graph.
var planTransitions = map[models.PaymentPlanStatus][]models.PaymentPlanStatus{
	models.PaymentPlanStatusPending:  {models.PaymentPlanStatusApproved, models.PaymentPlanStatusRejected, models.PaymentPlanStatusCancelled},
	models.PaymentPlanStatusApproved: {models.PaymentPlanStatusActive, models.PaymentPlanStatusCancelled},
	models.PaymentPlanStatusActive:   {models.PaymentPlanStatusCompleted, models.PaymentPlanStatusCancelled},
}

// Transition moves a plan to a new lifecycle state. Terminal states never
// transition again.
func (s *PlanService) Transition(ctx context.Context, planID uint, to models.PaymentPlanStatus) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	if err := s.db.WithContext(ctx).First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment plan %d", finance.ErrNotFound, planID)
		}
		return nil, err
	}

	allowed := false
	for _, next := range planTransitions[plan.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: payment plan %d cannot move from %s to %s",
			finance.ErrInvalidTransition, plan.ID, plan.Status, to)
	}

	plan.Status = to
	if err := s.db.WithContext(ctx).Save(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// isUniqueViolation reports whether the error is a unique index violation,
// for both postgres (which our deployments run) and sqlite (which the
// tests run).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
