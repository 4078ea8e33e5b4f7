package finance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"dulili/internal/models"
)

func breakdownFor(levies ...models.Levy) []LevyArrears {
	return BuildArrearsSummary(levies, nil, testNow).Levies
}

func TestAllocatePaymentOldestFirst(t *testing.T) {
	// Three overdue levies 500/300/700, oldest first. A payment of 600
	// must settle the 500 in full, put 100 against the 300, and leave the
	// 700 untouched.
	breakdown := breakdownFor(
		overdueLevy(1, 7, "500", 90),
		overdueLevy(2, 7, "300", 60),
		overdueLevy(3, 7, "700", 45),
	)

	result, err := AllocatePayment(breakdown, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(result.Allocations))
	}
	if result.Allocations[0].LevyID != 1 || !result.Allocations[0].Principal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("oldest levy should be settled in full: %+v", result.Allocations[0])
	}
	if result.Allocations[1].LevyID != 2 || !result.Allocations[1].Principal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("second levy should receive the remaining 100: %+v", result.Allocations[1])
	}
	if !result.Remaining.IsZero() {
		t.Errorf("expected no surplus, got %s", result.Remaining)
	}
}

func TestAllocatePaymentPrincipalBeforeInterest(t *testing.T) {
	breakdown := breakdownFor(
		overdueLevy(1, 7, "500", 90),
		overdueLevy(2, 7, "300", 60),
	)

	// Enough for all principal plus part of the oldest levy's interest.
	payment := decimal.NewFromInt(805)
	result, err := AllocatePayment(breakdown, payment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Allocations[0].Principal.Equal(decimal.NewFromInt(500)) ||
		!result.Allocations[1].Principal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("principal must be settled across all levies before any interest: %+v", result.Allocations)
	}

	if !result.Allocations[0].Interest.Equal(decimal.NewFromInt(5)) {
		t.Errorf("surplus 5 should go to the oldest levy's interest, got %s", result.Allocations[0].Interest)
	}
	if !result.Allocations[1].Interest.IsZero() {
		t.Errorf("younger levy interest should be untouched, got %s", result.Allocations[1].Interest)
	}
}

func TestAllocatePaymentConservation(t *testing.T) {
	breakdown := breakdownFor(
		overdueLevy(1, 7, "123.45", 91),
		overdueLevy(2, 7, "678.90", 47),
	)

	payment := decimal.NewFromInt(500)
	result, err := AllocatePayment(breakdown, payment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	applied := result.Remaining
	for _, a := range result.Allocations {
		applied = applied.Add(a.Principal).Add(a.Interest)
	}
	if !applied.Equal(payment) {
		t.Errorf("allocations plus remainder = %s; want the full payment %s", applied, payment)
	}
}

func TestAllocatePaymentSurplus(t *testing.T) {
	breakdown := breakdownFor(overdueLevy(1, 7, "100", 10))
	// 10 days overdue: inside grace, no interest owed.

	result, err := AllocatePayment(breakdown, decimal.NewFromInt(150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Remaining.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Remaining = %s; want 50", result.Remaining)
	}
}

func TestAllocatePaymentRejectsNonPositive(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := AllocatePayment(nil, amount)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("AllocatePayment(%s) error = %v; want ErrValidation", amount, err)
		}
	}
}
