package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentAllocation is the portion of one payment applied to one levy.
type PaymentAllocation struct {
	LevyID    uint            `json:"levy_id"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
}

// AllocationResult is the outcome of applying a payment across arrears.
type AllocationResult struct {
	Allocations []PaymentAllocation `json:"allocations"`
	// Remaining is the surplus left after every line is settled in full.
	Remaining decimal.Decimal `json:"remaining"`
}

// AllocatePayment applies a payment across an arrears breakdown in the
// statutory order: outstanding principal on the oldest overdue levy first,
// working forward, then accrued interest in the same order. The breakdown
// must already be sorted by due date ascending, which BuildArrearsSummary
// guarantees.
func AllocatePayment(breakdown []LevyArrears, amount decimal.Decimal) (AllocationResult, error) {
	if amount.Sign() <= 0 {
		return AllocationResult{}, fmt.Errorf("%w: payment amount must be positive, got %s", ErrValidation, amount)
	}

	remaining := amount
	byLevy := make(map[uint]*PaymentAllocation)
	var order []uint

	take := func(levyID uint, owed decimal.Decimal) decimal.Decimal {
		if remaining.Sign() <= 0 || owed.Sign() <= 0 {
			return decimal.Zero
		}
		applied := decimal.Min(remaining, owed)
		remaining = remaining.Sub(applied)
		if _, ok := byLevy[levyID]; !ok {
			byLevy[levyID] = &PaymentAllocation{LevyID: levyID}
			order = append(order, levyID)
		}
		return applied
	}

	// Principal pass, oldest first.
	for _, la := range breakdown {
		applied := take(la.Levy.ID, la.Levy.Outstanding())
		if applied.Sign() > 0 {
			byLevy[la.Levy.ID].Principal = applied
		}
	}

	// Interest pass, same order.
	for _, la := range breakdown {
		applied := take(la.Levy.ID, la.Interest)
		if applied.Sign() > 0 {
			byLevy[la.Levy.ID].Interest = byLevy[la.Levy.ID].Interest.Add(applied)
		}
	}

	result := AllocationResult{Remaining: remaining}
	for _, id := range order {
		result.Allocations = append(result.Allocations, *byLevy[id])
	}
	return result, nil
}
