package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dulili/internal/finance"
	"dulili/internal/models"
)

// RecoveryLedgerService maintains the append-only recovery action ledger.
// Actions are created pending and only ever move to completed or cancelled;
// every other field is immutable after creation.
type RecoveryLedgerService struct {
	db      *gorm.DB
	arrears *ArrearsService
}

// NewRecoveryLedgerService creates a RecoveryLedgerService.
func NewRecoveryLedgerService(db *gorm.DB, arrears *ArrearsService) *RecoveryLedgerService {
	return &RecoveryLedgerService{db: db, arrears: arrears}
}

// RecordActionInput describes a recovery step to append to the ledger.
type RecordActionInput struct {
	BuildingID uint
	LotID      uint
	UserID     uint
	Type       models.RecoveryActionType
	DueDate    *time.Time
	Notes      string

	TribunalOrderNumber string

	// Override records the action even when the compliance check refuses
	// it, preserving the refusal reason on the row. This mirrors the
	// warn-and-proceed policy some schemes operate under.
	Override bool
}

func (in RecordActionInput) validate() error {
	switch in.Type {
	case models.RecoveryActionTypeNotice, models.RecoveryActionTypeReminder,
		models.RecoveryActionTypeTribunalApplication, models.RecoveryActionTypeCourtAction:
	default:
		return fmt.Errorf("%w: unknown recovery action type %q", finance.ErrValidation, in.Type)
	}
	if in.UserID == 0 || in.LotID == 0 {
		return fmt.Errorf("%w: recovery action requires a lot and user", finance.ErrValidation)
	}
	return nil
}

// Record appends a recovery action after running the compliance check
// against the user's plans and arrears as of now. A refused escalation
// returns ComplianceError unless Override is set, in which case the action
// is recorded with the refusal preserved in its audit fields.
func (s *RecoveryLedgerService) Record(ctx context.Context, in RecordActionInput, now time.Time) (*models.RecoveryAction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	plans, err := s.arrears.UserPlans(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	summary, err := s.arrears.UserSummary(ctx, in.BuildingID, in.UserID, now)
	if err != nil {
		return nil, err
	}

	decision := finance.CheckRecoveryAction(in.Type, plans, summary.MaxDaysOverdue())
	if !decision.Allowed && !in.Override {
		return nil, &finance.ComplianceError{Reason: decision.Reason}
	}

	action := models.RecoveryAction{
		BuildingID:          in.BuildingID,
		LotID:               in.LotID,
		UserID:              in.UserID,
		Type:                in.Type,
		Status:              models.RecoveryActionStatusPending,
		ActionDate:          now,
		DueDate:             in.DueDate,
		AmountOwed:          summary.TotalOverdue.Add(summary.TotalInterest),
		TribunalOrderNumber: in.TribunalOrderNumber,
		Notes:               in.Notes,
		DocumentRef:         uuid.NewString(),
	}
	if !decision.Allowed {
		action.ComplianceOverride = true
		action.ComplianceNote = decision.Reason
	}

	if err := s.db.WithContext(ctx).Create(&action).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

// Complete marks a pending action completed.
func (s *RecoveryLedgerService) Complete(ctx context.Context, actionID uint) (*models.RecoveryAction, error) {
	return s.resolve(ctx, actionID, models.RecoveryActionStatusCompleted)
}

// Cancel marks a pending action cancelled.
func (s *RecoveryLedgerService) Cancel(ctx context.Context, actionID uint) (*models.RecoveryAction, error) {
	return s.resolve(ctx, actionID, models.RecoveryActionStatusCancelled)
}

func (s *RecoveryLedgerService) resolve(ctx context.Context, actionID uint, to models.RecoveryActionStatus) (*models.RecoveryAction, error) {
	var action models.RecoveryAction
	if err := s.db.WithContext(ctx).First(&action, actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recovery action %d", finance.ErrNotFound, actionID)
		}
		return nil, err
	}

	if action.Status.Terminal() {
		return nil, fmt.Errorf("%w: recovery action %d is already %s",
			finance.ErrInvalidTransition, action.ID, action.Status)
	}

	// Only the status column moves; the audit fields stay untouched.
	err := s.db.WithContext(ctx).Model(&action).Update("status", to).Error
	if err != nil {
		return nil, err
	}
	action.Status = to
	return &action, nil
}

// List returns a building's recovery actions, newest first.
func (s *RecoveryLedgerService) List(ctx context.Context, buildingID uint) ([]models.RecoveryAction, error) {
	var actions []models.RecoveryAction
	err := s.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("action_date desc, id desc").
		Find(&actions).Error
	return actions, err
}
