package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AdvertisingSale is an order that received an advertising cost
type AdvertisingSale struct {
	Date time.Time
	Cost decimal.Decimal
}

// MonthlyMarketing is the advertising cost of one calendar month
type MonthlyMarketing struct {
	// Month is formatted as YYYY-MM
	Month  string
	Cost   decimal.Decimal
	Orders int
}

// MarketingSummary rolls up advertising cost attributed to orders
type MarketingSummary struct {
	TotalCost           decimal.Decimal
	TotalOrders         int
	AverageCostPerOrder decimal.Decimal
	Monthly             []MonthlyMarketing
}

// SummarizeMarketing totals the sales and breaks them down by month, oldest first
func SummarizeMarketing(sales []AdvertisingSale) MarketingSummary {
	summary := MarketingSummary{
		TotalCost:           decimal.Zero,
		AverageCostPerOrder: decimal.Zero,
		Monthly:             []MonthlyMarketing{},
	}

	byMonth := make(map[string]*MonthlyMarketing)
	for _, s := range sales {
		summary.TotalCost = summary.TotalCost.Add(s.Cost)
		summary.TotalOrders++

		key := s.Date.UTC().Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthlyMarketing{Month: key, Cost: decimal.Zero}
			byMonth[key] = m
		}
		m.Cost = m.Cost.Add(s.Cost)
		m.Orders++
	}

	if summary.TotalOrders > 0 {
		summary.AverageCostPerOrder = summary.TotalCost.DivRound(decimal.NewFromInt(int64(summary.TotalOrders)), 2)
	}

	for _, m := range byMonth {
		summary.Monthly = append(summary.Monthly, *m)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].Month < summary.Monthly[j].Month
	})
	return summary
}
