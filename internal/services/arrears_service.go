package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dulili/internal/finance"
	"dulili/internal/models"
)

// ArrearsService loads a building's levies and payment plans and runs the
// arrears calculation over them. The wall clock is always passed in by the
// caller; nothing here reads time.Now.
type ArrearsService struct {
	db    *gorm.DB
	cache *RedisCache
}

// NewArrearsService creates an ArrearsService. cache may be nil, in which
// case every summary is computed from the database.
func NewArrearsService(db *gorm.DB, cache *RedisCache) *ArrearsService {
	return &ArrearsService{db: db, cache: cache}
}

// BuildingSummary computes the arrears summary for a building as of now,
// straight from the database.
func (s *ArrearsService) BuildingSummary(ctx context.Context, buildingID uint, now time.Time) (finance.ArrearsSummary, error) {
	var levies []models.Levy
	err := s.db.WithContext(ctx).
		Where("building_id = ? AND status <> ?", buildingID, models.LevyStatusPaid).
		Find(&levies).Error
	if err != nil {
		return finance.ArrearsSummary{}, err
	}

	// Every plan ever created matters: terminal plans still satisfy the
	// offered-at-least-once compliance precondition.
	var plans []models.PaymentPlan
	err = s.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Find(&plans).Error
	if err != nil {
		return finance.ArrearsSummary{}, err
	}

	return finance.BuildArrearsSummary(levies, plans, now), nil
}

// CachedBuildingSummary returns the cached summary when fresh, computing
// and caching it otherwise.
func (s *ArrearsService) CachedBuildingSummary(ctx context.Context, buildingID uint, now time.Time) (finance.ArrearsSummary, error) {
	if s.cache == nil {
		return s.BuildingSummary(ctx, buildingID, now)
	}
	return GetOrSet(s.cache, ctx, ArrearsCacheKey(buildingID), ArrearsCacheTTL, func() (finance.ArrearsSummary, error) {
		return s.BuildingSummary(ctx, buildingID, now)
	})
}

// RefreshBuildingSummary recomputes a building's summary and replaces the
// cached copy. The worker calls this on its refresh tick.
func (s *ArrearsService) RefreshBuildingSummary(ctx context.Context, buildingID uint, now time.Time) (finance.ArrearsSummary, error) {
	summary, err := s.BuildingSummary(ctx, buildingID, now)
	if err != nil {
		return finance.ArrearsSummary{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, ArrearsCacheKey(buildingID), summary, ArrearsCacheTTL)
	}
	return summary, nil
}

// InvalidateBuildingSummary drops the cached summary after a write that
// changes arrears, such as a recorded payment.
func (s *ArrearsService) InvalidateBuildingSummary(ctx context.Context, buildingID uint) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, ArrearsCacheKey(buildingID))
	}
}

// UserSummary computes the arrears summary restricted to one owner.
func (s *ArrearsService) UserSummary(ctx context.Context, buildingID, userID uint, now time.Time) (finance.ArrearsSummary, error) {
	var levies []models.Levy
	err := s.db.WithContext(ctx).
		Where("building_id = ? AND owner_id = ? AND status <> ?", buildingID, userID, models.LevyStatusPaid).
		Find(&levies).Error
	if err != nil {
		return finance.ArrearsSummary{}, err
	}

	plans, err := s.UserPlans(ctx, userID)
	if err != nil {
		return finance.ArrearsSummary{}, err
	}

	return finance.BuildArrearsSummary(levies, plans, now), nil
}

// UserPlans returns every payment plan ever created for a user, newest
// first.
func (s *ArrearsService) UserPlans(ctx context.Context, userID uint) ([]models.PaymentPlan, error) {
	var plans []models.PaymentPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&plans).Error
	return plans, err
}
