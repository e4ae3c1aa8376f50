package advertising

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// CampaignStatus
// ---------------------------------------------------------------------------

// CampaignStatus is the delivery state of a product-ads campaign
type CampaignStatus string

const (
	CampaignStatusActive  CampaignStatus = "active"
	CampaignStatusPaused  CampaignStatus = "paused"
	CampaignStatusDeleted CampaignStatus = "deleted"
)

// ParseCampaignStatus parses the marketplace value
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	status := CampaignStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsValid returns true if the status is valid
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusPaused, CampaignStatusDeleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of CampaignStatus
func (s CampaignStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Campaign
// ---------------------------------------------------------------------------

// Campaign is a product-ads campaign of one seller account
type Campaign struct {
	shared.AccountAggregateRoot
	ExternalCampaignID string
	Name               string
	Status             CampaignStatus
	DailyBudget        decimal.Decimal
	Totals             CampaignTotals
	TotalsFrom         *time.Time
	TotalsTo           *time.Time
}

// Ensure Campaign implements shared.AggregateRoot
var _ shared.AggregateRoot = (*Campaign)(nil)

// NewCampaign creates a campaign
func NewCampaign(accountID uuid.UUID, externalID, name string, status CampaignStatus, dailyBudget decimal.Decimal) (*Campaign, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidAccountID
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, ErrInvalidCampaignID
	}
	c := &Campaign{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(accountID),
		ExternalCampaignID:   externalID,
	}
	if err := c.Update(name, status, dailyBudget); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies the latest campaign settings reported by the marketplace
func (c *Campaign) Update(name string, status CampaignStatus, dailyBudget decimal.Decimal) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if dailyBudget.IsNegative() {
		return ErrInvalidDailyBudget
	}
	c.Name = name
	c.Status = status
	c.DailyBudget = dailyBudget
	c.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the campaign is delivering
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// ApplyTotals stores the roll-up of [from, to]
func (c *Campaign) ApplyTotals(totals CampaignTotals, from, to time.Time) {
	c.Totals = totals
	c.TotalsFrom = &from
	c.TotalsTo = &to
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// ---------------------------------------------------------------------------
// CampaignMetricsDay
// ---------------------------------------------------------------------------

// CampaignMetricsDay is the stored record of one campaign day
type CampaignMetricsDay struct {
	shared.BaseEntity
	CampaignID uuid.UUID
	Date       time.Time
	Record     CampaignMetricsRecord
}

// NewCampaignMetricsDay creates a day record; the date is truncated to the UTC day
func NewCampaignMetricsDay(campaignID uuid.UUID, date time.Time, record CampaignMetricsRecord) *CampaignMetricsDay {
	return &CampaignMetricsDay{
		BaseEntity: shared.NewBaseEntity(),
		CampaignID: campaignID,
		Date:       TruncateDay(date),
		Record:     record,
	}
}

// TruncateDay returns midnight UTC of t's calendar day
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween lists every UTC day in [from, to]
func DaysBetween(from, to time.Time) ([]time.Time, error) {
	start, end := TruncateDay(from), TruncateDay(to)
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
