package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAccountID  = errors.New("billing: invalid account ID")
	ErrInvalidPeriodKey  = errors.New("billing: invalid billing period key")
	ErrInvalidPeriod     = errors.New("billing: period end is before start")
	ErrInvalidPeriodDate = errors.New("billing: period dates must be formatted as YYYY-MM-DD")
	ErrInvalidChargeType = errors.New("billing: invalid charge type")
	ErrNegativeAmount    = errors.New("billing: charge amount cannot be negative")
)

// PeriodDateLayout is the date format of billing period boundaries
const PeriodDateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// ChargeType
// ---------------------------------------------------------------------------

// ChargeType identifies a line of the marketplace billing summary
type ChargeType string

const (
	// ChargeTypeProductAds is the product ads charge
	ChargeTypeProductAds ChargeType = "PADS"
	// ChargeTypeBrandAds is the brand ads charge
	ChargeTypeBrandAds ChargeType = "BADS"
	// ChargeTypeDisplayAds is the display ads charge
	ChargeTypeDisplayAds ChargeType = "DISPLAY"
)

// ParseChargeType parses a billing summary charge type
func ParseChargeType(s string) (ChargeType, error) {
	t := ChargeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidChargeType
	}
	return t, nil
}

// IsValid returns true if the charge type is valid
func (t ChargeType) IsValid() bool {
	switch t {
	case ChargeTypeProductAds, ChargeTypeBrandAds, ChargeTypeDisplayAds:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChargeType
func (t ChargeType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// BillingPeriodCharge
// ---------------------------------------------------------------------------

// BillingPeriodCharge is the amount billed for one charge type over one billing period
type BillingPeriodCharge struct {
	shared.AccountAggregateRoot
	PeriodKey      string
	ChargeType     ChargeType
	Amount         decimal.Decimal
	Currency       string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	OrdersAffected int
	CostPerOrder   decimal.Decimal
	DistributedAt  *time.Time
}

// Ensure BillingPeriodCharge implements shared.AggregateRoot
var _ shared.AggregateRoot = (*BillingPeriodCharge)(nil)

// NewBillingPeriodCharge creates a charge for [start, end], both inclusive
func NewBillingPeriodCharge(
	accountID uuid.UUID,
	periodKey string,
	chargeType ChargeType,
	amount decimal.Decimal,
	currency string,
	start, end time.Time,
) (*BillingPeriodCharge, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccountID
	}
	if strings.TrimSpace(periodKey) == "" {
		return nil, ErrInvalidPeriodKey
	}
	if !chargeType.IsValid() {
		return nil, ErrInvalidChargeType
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	return &BillingPeriodCharge{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(accountID),
		PeriodKey:            periodKey,
		ChargeType:           chargeType,
		Amount:               amount,
		Currency:             currency,
		PeriodStart:          start,
		PeriodEnd:            end,
		CostPerOrder:         decimal.Zero,
	}, nil
}

// NewPeriodFromDates converts billing period dates into an inclusive time range.
// The end is moved to the last instant of its day.
func NewPeriodFromDates(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(PeriodDateLayout, from, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriodDate
	}
	endDay, err := time.ParseInLocation(PeriodDateLayout, to, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriodDate
	}
	end := endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return start, end, nil
}

// Contains reports whether t falls within the period, both ends inclusive
func (c *BillingPeriodCharge) Contains(t time.Time) bool {
	return !t.Before(c.PeriodStart) && !t.After(c.PeriodEnd)
}

// UpdateAmount replaces the billed amount with a newer billing summary value
func (c *BillingPeriodCharge) UpdateAmount(amount decimal.Decimal, currency string) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	c.Amount = amount
	c.Currency = currency
	c.UpdatedAt = time.Now()
	return nil
}

// RecordDistribution stores the outcome of the latest distribution
func (c *BillingPeriodCharge) RecordDistribution(result DistributionResult, at time.Time) {
	c.OrdersAffected = result.OrdersAffected
	c.CostPerOrder = result.CostPerOrder
	c.DistributedAt = &at
	c.UpdatedAt = at
	c.IncrementVersion()
}

// ---------------------------------------------------------------------------
// Billing summary lines
// ---------------------------------------------------------------------------

// ChargeLine is one charge of a billing period summary
type ChargeLine struct {
	Type   string
	Amount decimal.Decimal
}

// SumCharges totals the lines of one charge type. Lines of other or unknown types are skipped.
func SumCharges(lines []ChargeLine, chargeType ChargeType) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if ChargeType(strings.ToUpper(strings.TrimSpace(line.Type))) == chargeType {
			total = total.Add(line.Amount)
		}
	}
	return total
}
