package finance

import (
	"fmt"

	"dulili/internal/models"
)

// Decision is the outcome of an eligibility check. Reason is empty when
// Allowed is true.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CheckPlanRequest determines whether a user may request a new payment plan
// given every plan ever created for them. A request is blocked while any
// existing plan is pending, approved or active.
func CheckPlanRequest(plans []models.PaymentPlan) Decision {
	for _, p := range plans {
		if p.Status.InFlight() {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("existing plan in progress (plan %d is %s)", p.ID, p.Status),
			}
		}
	}
	return Decision{Allowed: true}
}

// CheckRecoveryAction determines whether a recovery step of the given type
// may be taken against a user. plans is every plan ever created for the
// user; maxDaysOverdue is the age of their oldest unpaid levy.
//
// Notices and reminders are always permitted. Tribunal and court action is
// suspended while a plan is approved or active, and may not begin on debt
// past the grace period until a payment plan has been offered at least once.
func CheckRecoveryAction(actionType models.RecoveryActionType, plans []models.PaymentPlan, maxDaysOverdue int) Decision {
	if !actionType.Escalated() {
		return Decision{Allowed: true}
	}

	for _, p := range plans {
		if p.Status.BlocksRecovery() {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("payment plan %d is %s; tribunal and court action is suspended while it remains in force", p.ID, p.Status),
			}
		}
	}

	if maxDaysOverdue > GraceDays && len(plans) == 0 {
		return Decision{
			Allowed: false,
			Reason:  "a payment plan must be offered before escalating recovery action on debt more than 30 days overdue",
		}
	}

	return Decision{Allowed: true}
}
