package marketplace

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/shopspring/decimal"
)

// metricsDateLayout is the date format of advertising report rows
const metricsDateLayout = "2006-01-02"

// CampaignPayload is a product-ads campaign as returned by the advertising API
type CampaignPayload struct {
	ID     int64           `json:"id" validate:"gt=0"`
	Name   string          `json:"name"`
	Status string          `json:"status" validate:"required,oneof=active paused deleted"`
	Budget decimal.Decimal `json:"budget" validate:"gte=0"`
}

// ExternalID returns the marketplace campaign ID as stored locally
func (p CampaignPayload) ExternalID() string {
	return strconv.FormatInt(p.ID, 10)
}

// ToCampaign creates the campaign, or updates existing when it is not nil
func (p CampaignPayload) ToCampaign(accountID uuid.UUID, existing *advertising.Campaign) (*advertising.Campaign, error) {
	if err := defaultValidator.Struct(p); err != nil {
		return nil, err
	}
	status, err := advertising.ParseCampaignStatus(p.Status)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return advertising.NewCampaign(accountID, p.ExternalID(), p.Name, status, p.Budget)
	}
	if err := existing.Update(p.Name, status, p.Budget); err != nil {
		return nil, err
	}
	return existing, nil
}

// AdsMetricsRow is one day of a campaign metrics report
type AdsMetricsRow struct {
	Date                  string          `json:"date" validate:"required,datetime=2006-01-02"`
	Prints                int64           `json:"prints" validate:"gte=0"`
	Clicks                int64           `json:"clicks" validate:"gte=0"`
	Cost                  decimal.Decimal `json:"cost" validate:"gte=0"`
	DirectItemsQuantity   int64           `json:"direct_items_quantity" validate:"gte=0"`
	IndirectItemsQuantity int64           `json:"indirect_items_quantity" validate:"gte=0"`
	DirectUnitsQuantity   int64           `json:"direct_units_quantity" validate:"gte=0"`
	IndirectUnitsQuantity int64           `json:"indirect_units_quantity" validate:"gte=0"`
	DirectAmount          decimal.Decimal `json:"direct_amount" validate:"gte=0"`
	IndirectAmount        decimal.Decimal `json:"indirect_amount" validate:"gte=0"`
	OrganicItemsQuantity  int64           `json:"organic_items_quantity" validate:"gte=0"`
	OrganicUnitsQuantity  int64           `json:"organic_units_quantity" validate:"gte=0"`
	OrganicUnitsAmount    decimal.Decimal `json:"organic_units_amount" validate:"gte=0"`
	SOV                   decimal.Decimal `json:"sov" validate:"gte=0"`
}

// Day returns the report date as midnight UTC
func (r AdsMetricsRow) Day() (time.Time, error) {
	return time.ParseInLocation(metricsDateLayout, r.Date, time.UTC)
}

// ToRawCounters validates the row and converts it into aggregator input.
// Derived ratios reported by the marketplace are ignored and recomputed.
func (r AdsMetricsRow) ToRawCounters() (advertising.RawCampaignCounters, error) {
	if err := defaultValidator.Struct(r); err != nil {
		return advertising.RawCampaignCounters{}, err
	}
	return advertising.RawCampaignCounters{
		Impressions:    r.Prints,
		Clicks:         r.Clicks,
		Spend:          r.Cost,
		DirectItems:    r.DirectItemsQuantity,
		IndirectItems:  r.IndirectItemsQuantity,
		DirectUnits:    r.DirectUnitsQuantity,
		IndirectUnits:  r.IndirectUnitsQuantity,
		DirectAmount:   r.DirectAmount,
		IndirectAmount: r.IndirectAmount,
		OrganicItems:   r.OrganicItemsQuantity,
		OrganicUnits:   r.OrganicUnitsQuantity,
		OrganicAmount:  r.OrganicUnitsAmount,
		ShareOfVoice:   r.SOV,
	}, nil
}
