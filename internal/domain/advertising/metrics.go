// Package advertising provides the domain model for marketplace product-ads campaigns:
// daily metric aggregation, benchmark estimates for days the marketplace does not
// report, window roll-ups and campaign alerts.
package advertising

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeCounter    = errors.New("advertising: counters cannot be negative")
	ErrInvalidBenchmark   = errors.New("advertising: invalid benchmark configuration")
	ErrInvalidDailyBudget = errors.New("advertising: daily budget cannot be negative")
	ErrMixedWindow        = errors.New("advertising: window mixes observed and synthetic days")
	ErrInvalidCampaignID  = errors.New("advertising: invalid external campaign ID")
	ErrInvalidAccountID   = errors.New("advertising: invalid account ID")
	ErrInvalidStatus      = errors.New("advertising: invalid campaign status")
	ErrInvalidWindow      = errors.New("advertising: window end is before start")
)

// ratioPlaces is the number of decimal places kept on derived ratios
const ratioPlaces = 4

var hundred = decimal.NewFromInt(100)

// RawCampaignCounters are the per-day counters the marketplace reports for a campaign
type RawCampaignCounters struct {
	Impressions    int64
	Clicks         int64
	Spend          decimal.Decimal
	DirectItems    int64
	IndirectItems  int64
	DirectUnits    int64
	IndirectUnits  int64
	DirectAmount   decimal.Decimal
	IndirectAmount decimal.Decimal
	OrganicItems   int64
	OrganicUnits   int64
	OrganicAmount  decimal.Decimal
	// ShareOfVoice is reported by the marketplace as a percentage and passed through
	ShareOfVoice decimal.Decimal
}

// Validate rejects negative counters
func (c RawCampaignCounters) Validate() error {
	ints := []int64{
		c.Impressions, c.Clicks, c.DirectItems, c.IndirectItems,
		c.DirectUnits, c.IndirectUnits, c.OrganicItems, c.OrganicUnits,
	}
	for _, v := range ints {
		if v < 0 {
			return ErrNegativeCounter
		}
	}
	amounts := []decimal.Decimal{c.Spend, c.DirectAmount, c.IndirectAmount, c.OrganicAmount, c.ShareOfVoice}
	for _, v := range amounts {
		if v.IsNegative() {
			return ErrNegativeCounter
		}
	}
	return nil
}

// CampaignMetricsRecord is one day of campaign performance with derived ratios
type CampaignMetricsRecord struct {
	Impressions      int64
	Clicks           int64
	Spend            decimal.Decimal
	DirectItems      int64
	IndirectItems    int64
	AdvertisingItems int64
	DirectUnits      int64
	IndirectUnits    int64
	DirectAmount     decimal.Decimal
	IndirectAmount   decimal.Decimal
	TotalRevenue     decimal.Decimal
	OrganicItems     int64
	OrganicUnits     int64
	OrganicAmount    decimal.Decimal
	ShareOfVoice     decimal.Decimal

	// CTR is clicks per impression, in percent
	CTR decimal.Decimal
	// CPC is spend per click
	CPC decimal.Decimal
	// CVR is advertising items per click, in percent
	CVR decimal.Decimal
	// ACOS is spend over advertising revenue, in percent
	ACOS decimal.Decimal
	// ROAS is advertising revenue over spend
	ROAS decimal.Decimal

	// IsSynthetic marks a record estimated from benchmarks instead of observed
	IsSynthetic bool
}

// Aggregate derives the full record from raw counters. Every ratio with a zero
// denominator is 0.
func Aggregate(raw RawCampaignCounters) CampaignMetricsRecord {
	advertisingItems := raw.DirectItems + raw.IndirectItems
	totalRevenue := raw.DirectAmount.Add(raw.IndirectAmount)
	clicks := decimal.NewFromInt(raw.Clicks)

	return CampaignMetricsRecord{
		Impressions:      raw.Impressions,
		Clicks:           raw.Clicks,
		Spend:            raw.Spend,
		DirectItems:      raw.DirectItems,
		IndirectItems:    raw.IndirectItems,
		AdvertisingItems: advertisingItems,
		DirectUnits:      raw.DirectUnits,
		IndirectUnits:    raw.IndirectUnits,
		DirectAmount:     raw.DirectAmount,
		IndirectAmount:   raw.IndirectAmount,
		TotalRevenue:     totalRevenue,
		OrganicItems:     raw.OrganicItems,
		OrganicUnits:     raw.OrganicUnits,
		OrganicAmount:    raw.OrganicAmount,
		ShareOfVoice:     raw.ShareOfVoice,
		CTR:              percent(clicks, decimal.NewFromInt(raw.Impressions)),
		CPC:              ratio(raw.Spend, clicks),
		CVR:              percent(decimal.NewFromInt(advertisingItems), clicks),
		ACOS:             percent(raw.Spend, totalRevenue),
		ROAS:             ratio(totalRevenue, raw.Spend),
	}
}

// Counters returns the raw counters the record was built from
func (r CampaignMetricsRecord) Counters() RawCampaignCounters {
	return RawCampaignCounters{
		Impressions:    r.Impressions,
		Clicks:         r.Clicks,
		Spend:          r.Spend,
		DirectItems:    r.DirectItems,
		IndirectItems:  r.IndirectItems,
		DirectUnits:    r.DirectUnits,
		IndirectUnits:  r.IndirectUnits,
		DirectAmount:   r.DirectAmount,
		IndirectAmount: r.IndirectAmount,
		OrganicItems:   r.OrganicItems,
		OrganicUnits:   r.OrganicUnits,
		OrganicAmount:  r.OrganicAmount,
		ShareOfVoice:   r.ShareOfVoice,
	}
}

func ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).Round(ratioPlaces)
}

func percent(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Mul(hundred).Div(den).Round(ratioPlaces)
}
