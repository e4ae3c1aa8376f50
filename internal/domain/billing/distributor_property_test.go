//go:build property
// +build property

package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func buildOrders(offsets []int) []*stubOrder {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]*stubOrder, 0, len(offsets))
	for _, h := range offsets {
		closed := base.Add(time.Duration(h) * time.Hour)
		orders = append(orders, &stubOrder{closed: &closed, cost: decimal.Zero})
	}
	return orders
}

// Property: distribution never touches orders outside the period and is idempotent
func TestDistributeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	start, end, _ := NewPeriodFromDates("2026-03-01", "2026-03-31")

	// offsets span February to April around the March period
	offsets := gen.SliceOf(gen.IntRange(-30*24, 60*24))
	amounts := gen.Int64Range(0, 1_000_000)

	properties.Property("orders outside the period keep a zero cost", prop.ForAll(
		func(hours []int, cents int64) bool {
			charge, err := NewBillingPeriodCharge(uuid.New(), "k", ChargeTypeProductAds, decimal.New(cents, -2), "ARS", start, end)
			if err != nil {
				return false
			}
			orders := buildOrders(hours)
			result := Distribute(charge, orders)

			affected := 0
			for _, o := range orders {
				if !charge.Contains(*o.closed) {
					if o.ads || !o.cost.IsZero() {
						return false
					}
					continue
				}
				if o.ads {
					affected++
				}
			}
			return affected == result.OrdersAffected
		},
		offsets, amounts,
	))

	properties.Property("distributing twice gives the same costs", prop.ForAll(
		func(hours []int, cents int64) bool {
			charge, err := NewBillingPeriodCharge(uuid.New(), "k", ChargeTypeProductAds, decimal.New(cents, -2), "ARS", start, end)
			if err != nil {
				return false
			}
			orders := buildOrders(hours)
			first := Distribute(charge, orders)
			costs := make([]decimal.Decimal, len(orders))
			for i, o := range orders {
				costs[i] = o.cost
			}

			second := Distribute(charge, orders)
			if first.OrdersAffected != second.OrdersAffected || !first.CostPerOrder.Equal(second.CostPerOrder) {
				return false
			}
			for i, o := range orders {
				if !o.cost.Equal(costs[i]) {
					return false
				}
			}
			return true
		},
		offsets, amounts,
	))

	properties.TestingRun(t)
}
