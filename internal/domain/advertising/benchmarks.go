package advertising

import (
	"github.com/shopspring/decimal"
)

// BenchmarkConfig holds the constants used to estimate a day the marketplace
// does not report. Percentages are expressed as 0-100.
type BenchmarkConfig struct {
	// SpendRatio is the share of the daily budget assumed spent
	SpendRatio decimal.Decimal
	// CTRPercent is the assumed click-through rate
	CTRPercent decimal.Decimal
	// CPC is the assumed cost per click
	CPC decimal.Decimal
	// ConversionRatePercent is the assumed share of clicks that convert
	ConversionRatePercent decimal.Decimal
	// AverageTicket is the assumed revenue per conversion
	AverageTicket decimal.Decimal
}

// DefaultBenchmarks returns the standard benchmark set
func DefaultBenchmarks() BenchmarkConfig {
	return BenchmarkConfig{
		SpendRatio:            decimal.RequireFromString("0.80"),
		CTRPercent:            decimal.RequireFromString("1.5"),
		CPC:                   decimal.RequireFromString("0.50"),
		ConversionRatePercent: decimal.NewFromInt(3),
		AverageTicket:         decimal.RequireFromString("150.00"),
	}
}

// Validate checks that every divisor is positive and the spend ratio is within (0, 1]
func (b BenchmarkConfig) Validate() error {
	if !b.SpendRatio.IsPositive() || b.SpendRatio.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidBenchmark
	}
	if !b.CTRPercent.IsPositive() || !b.CPC.IsPositive() {
		return ErrInvalidBenchmark
	}
	if b.ConversionRatePercent.IsNegative() || b.AverageTicket.IsNegative() {
		return ErrInvalidBenchmark
	}
	return nil
}

// Estimate builds a synthetic day from a campaign's daily budget.
// Clicks are back-solved from spend and CPC, impressions from clicks and CTR.
// Counts are truncated to whole numbers before revenue is derived.
func Estimate(dailyBudget decimal.Decimal, b BenchmarkConfig) (CampaignMetricsRecord, error) {
	if dailyBudget.IsNegative() {
		return CampaignMetricsRecord{}, ErrInvalidDailyBudget
	}
	if err := b.Validate(); err != nil {
		return CampaignMetricsRecord{}, err
	}

	spend := dailyBudget.Mul(b.SpendRatio).Round(2)
	clicks := spend.Div(b.CPC).Truncate(0)
	impressions := clicks.Mul(hundred).Div(b.CTRPercent).Truncate(0)
	conversions := clicks.Mul(b.ConversionRatePercent).Div(hundred).Truncate(0)
	revenue := conversions.Mul(b.AverageTicket)

	record := Aggregate(RawCampaignCounters{
		Impressions:  impressions.IntPart(),
		Clicks:       clicks.IntPart(),
		Spend:        spend,
		DirectItems:  conversions.IntPart(),
		DirectUnits:  conversions.IntPart(),
		DirectAmount: revenue,
	})
	record.IsSynthetic = true
	return record, nil
}
