package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dulili/internal/models"
)

// LevyArrears is the per-levy line of an arrears summary.
type LevyArrears struct {
	Levy        models.Levy         `json:"levy"`
	DaysOverdue int                 `json:"days_overdue"`
	Interest    decimal.Decimal     `json:"interest"`
	TotalOwed   decimal.Decimal     `json:"total_owed"`
	ActivePlan  *models.PaymentPlan `json:"active_plan,omitempty"`
	PlanOffered bool                `json:"plan_offered"`
}

// ArrearsSummary is the building-level arrears exposure as of a fixed
// instant.
type ArrearsSummary struct {
	AsOf          time.Time       `json:"as_of"`
	TotalOverdue  decimal.Decimal `json:"total_overdue"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	ActivePlans   int             `json:"active_plans"`
	Levies        []LevyArrears   `json:"levies"`
}

// BuildArrearsSummary folds a building's levies and payment plans into the
// arrears summary as of now. Only levies overdue at that instant are
// included. The breakdown is sorted by due date ascending; payment
// application depends on that order. The result is deterministic for a
// fixed now.
func BuildArrearsSummary(levies []models.Levy, plans []models.PaymentPlan, now time.Time) ArrearsSummary {
	summary := ArrearsSummary{
		AsOf:          now,
		TotalOverdue:  decimal.Zero,
		TotalInterest: decimal.Zero,
	}

	// Index plans by owner. InFlight counts once per plan, not per levy.
	inFlight := make(map[uint]*models.PaymentPlan)
	offered := make(map[uint]bool)
	for i := range plans {
		p := &plans[i]
		offered[p.UserID] = true
		if p.Status.InFlight() {
			inFlight[p.UserID] = p
		}
		if p.Status == models.PaymentPlanStatusActive {
			summary.ActivePlans++
		}
	}

	var overdue []models.Levy
	for _, l := range levies {
		if l.EffectiveStatus(now) == models.LevyStatusOverdue {
			overdue = append(overdue, l)
		}
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		if overdue[i].DueDate.Equal(overdue[j].DueDate) {
			return overdue[i].ID < overdue[j].ID
		}
		return overdue[i].DueDate.Before(overdue[j].DueDate)
	})

	for _, l := range overdue {
		principal := l.Outstanding()
		interest := AccruedInterest(principal, l.DueDate, now)

		summary.Levies = append(summary.Levies, LevyArrears{
			Levy:        l,
			DaysOverdue: DaysOverdue(l.DueDate, now),
			Interest:    interest,
			TotalOwed:   principal.Add(interest),
			ActivePlan:  inFlight[l.OwnerID],
			PlanOffered: offered[l.OwnerID],
		})

		summary.TotalOverdue = summary.TotalOverdue.Add(principal)
		summary.TotalInterest = summary.TotalInterest.Add(interest)
	}

	return summary
}

// MaxDaysOverdue returns the age of the oldest line in the breakdown, or 0
// when there are no arrears. The breakdown is sorted oldest first, so this
// is the first line.
func (s ArrearsSummary) MaxDaysOverdue() int {
	if len(s.Levies) == 0 {
		return 0
	}
	return s.Levies[0].DaysOverdue
}

// ForUser filters the breakdown to one owner's levies, preserving order.
func (s ArrearsSummary) ForUser(userID uint) []LevyArrears {
	var out []LevyArrears
	for _, la := range s.Levies {
		if la.Levy.OwnerID == userID {
			out = append(out, la)
		}
	}
	return out
}
