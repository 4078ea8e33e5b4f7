package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// GraceDays is the statutory grace period: no interest accrues until a levy
// is more than this many days past due.
const GraceDays = 30

var (
	// annualRate is the simple (non-compounding) annual interest rate
	// applied to overdue levies.
	annualRate = decimal.New(10, -2) // 0.10

	daysInYear = decimal.NewFromInt(365)
)

// DaysOverdue returns the number of whole days the due date lies before now.
// Negative when the due date is still in the future.
func DaysOverdue(dueDate, now time.Time) int {
	return int(now.Sub(dueDate).Hours() / 24)
}

// AccruedInterest computes simple interest on an overdue levy amount as of
// now. Within the grace period (or before the due date) it is zero; beyond
// it, the full elapsed days including the grace days are charged:
//
//	amount × 0.10 × daysOverdue/365
//
// No rounding is applied; formatting to cents is a presentation concern.
func AccruedInterest(amount decimal.Decimal, dueDate, now time.Time) decimal.Decimal {
	days := DaysOverdue(dueDate, now)
	if days <= GraceDays || amount.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(annualRate).Mul(decimal.NewFromInt(int64(days))).Div(daysInYear)
}
