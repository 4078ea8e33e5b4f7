package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dulili/internal/models"
	"dulili/internal/services"
)

const (
	// TaskIssueLevies expands active levy schedules and creates pending
	// levies for each lot.
	TaskIssueLevies = "issue_levies"

	// TaskRefreshArrears recomputes cached building arrears summaries.
	TaskRefreshArrears = "refresh_arrears"
)

// DefineTasks registers the worker's task handlers.
func DefineTasks(cache *services.RedisCache) {
	RegisterHandler(TaskIssueLevies, IssueLeviesHandler)
	RegisterHandler(TaskRefreshArrears, refreshArrearsHandler(cache))
}

// IssueLeviesHandler runs every due occurrence of every active levy
// schedule, creating one pending levy per lot pro-rated by unit
// entitlement. Re-running for an already-issued occurrence is a no-op:
// LastIssued advances atomically with the run.
func IssueLeviesHandler(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	now := time.Now()

	var schedules []models.LevySchedule
	if err := db.Where("is_active = ?", true).Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch levy schedules: %w", err)
	}

	created := 0
	runs := 0
	for _, schedule := range schedules {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		occurrences := schedule.DueOccurrences(now)
		if len(occurrences) == 0 {
			continue
		}

		var lots []models.Lot
		if err := db.Where("building_id = ?", schedule.BuildingID).Find(&lots).Error; err != nil {
			log.Printf("Failed to fetch lots for building %d: %v", schedule.BuildingID, err)
			continue
		}
		if len(lots) == 0 {
			continue
		}

		totalEntitlement := 0
		for _, lot := range lots {
			totalEntitlement += lot.UnitEntitlement
		}
		if totalEntitlement == 0 {
			log.Printf("Building %d has zero total unit entitlement, skipping schedule %d", schedule.BuildingID, schedule.ID)
			continue
		}

		for _, occ := range occurrences {
			issuedInRun := 0
			err := db.Transaction(func(tx *gorm.DB) error {
				perEntitlement := schedule.TotalAmount.Div(decimal.NewFromInt(int64(totalEntitlement)))

				for _, lot := range lots {
					levy := models.Levy{
						BuildingID:  schedule.BuildingID,
						LotID:       lot.ID,
						OwnerID:     lot.OwnerID,
						Amount:      perEntitlement.Mul(decimal.NewFromInt(int64(lot.UnitEntitlement))).Round(2),
						DueDate:     occ,
						Status:      models.LevyStatusPending,
						Type:        schedule.Type,
						Period:      occ.Format("Jan 2006"),
						Description: schedule.Description,
					}
					if err := tx.Create(&levy).Error; err != nil {
						return err
					}
					issuedInRun++
				}

				issued := occ
				return tx.Model(&models.LevySchedule{}).
					Where("id = ?", schedule.ID).
					Update("last_issued", &issued).Error
			})
			if err != nil {
				log.Printf("Levy run failed for schedule %d at %v: %v", schedule.ID, occ, err)
				break
			}
			// Count only committed runs so rolled-back levies never inflate
			// the result.
			created += issuedInRun
			schedule.LastIssued = &occ
			runs++
		}
	}

	return map[string]interface{}{
		"status":        "success",
		"runs":          runs,
		"levies_issued": created,
	}, nil
}

// refreshArrearsHandler rebuilds the cached arrears summary for every
// building.
func refreshArrearsHandler(cache *services.RedisCache) TaskHandler {
	return func(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
		arrears := services.NewArrearsService(db, cache)
		now := time.Now()

		var buildings []models.Building
		if err := db.Find(&buildings).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch buildings: %w", err)
		}

		refreshed := 0
		for _, building := range buildings {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, err := arrears.RefreshBuildingSummary(ctx, building.ID, now); err != nil {
				log.Printf("Failed to refresh arrears for building %d: %v", building.ID, err)
				continue
			}
			refreshed++
		}

		return map[string]interface{}{
			"status":    "success",
			"refreshed": refreshed,
		}, nil
	}
}
