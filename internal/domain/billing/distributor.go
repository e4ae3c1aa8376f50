package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// costPlaces is the number of decimal places kept on a per-order cost
const costPlaces = 4

// AdvertisingCostTarget is an order that can carry an attributed advertising cost
type AdvertisingCostTarget interface {
	ClosedAt() *time.Time
	AssignAdvertisingCost(cost decimal.Decimal)
}

// DistributionResult is the outcome of spreading a charge over orders
type DistributionResult struct {
	OrdersAffected int
	CostPerOrder   decimal.Decimal
}

// Distribute spreads the charge evenly over the targets closed inside the charge
// period. Targets outside the period, or never closed, are left untouched. The
// cost is overwritten on every run, so distributing the same period twice gives
// the same result. A zero charge or an empty period affects no orders, and it
// does not reset costs assigned by an earlier run. An order whose close date
// moved out of the period also keeps its earlier cost.
func Distribute[T AdvertisingCostTarget](charge *BillingPeriodCharge, targets []T) DistributionResult {
	inPeriod := make([]T, 0, len(targets))
	for _, t := range targets {
		closed := t.ClosedAt()
		if closed != nil && charge.Contains(*closed) {
			inPeriod = append(inPeriod, t)
		}
	}

	if len(inPeriod) == 0 || !charge.Amount.IsPositive() {
		return DistributionResult{CostPerOrder: decimal.Zero}
	}

	cost := charge.Amount.DivRound(decimal.NewFromInt(int64(len(inPeriod))), costPlaces)
	for _, t := range inPeriod {
		t.AssignAdvertisingCost(cost)
	}

	return DistributionResult{
		OrdersAffected: len(inPeriod),
		CostPerOrder:   cost,
	}
}
