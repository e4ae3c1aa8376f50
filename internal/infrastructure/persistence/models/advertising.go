package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/shopspring/decimal"
)

// MetricsColumns are the columns of one advertising.CampaignMetricsRecord
type MetricsColumns struct {
	Impressions      int64           `gorm:"not null;default:0"`
	Clicks           int64           `gorm:"not null;default:0"`
	Spend            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DirectItems      int64           `gorm:"not null;default:0"`
	IndirectItems    int64           `gorm:"not null;default:0"`
	AdvertisingItems int64           `gorm:"not null;default:0"`
	DirectUnits      int64           `gorm:"not null;default:0"`
	IndirectUnits    int64           `gorm:"not null;default:0"`
	DirectAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IndirectAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalRevenue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OrganicItems     int64           `gorm:"not null;default:0"`
	OrganicUnits     int64           `gorm:"not null;default:0"`
	OrganicAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShareOfVoice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CTR              decimal.Decimal `gorm:"column:ctr;type:decimal(18,4);not null;default:0"`
	CPC              decimal.Decimal `gorm:"column:cpc;type:decimal(18,4);not null;default:0"`
	CVR              decimal.Decimal `gorm:"column:cvr;type:decimal(18,4);not null;default:0"`
	ACOS             decimal.Decimal `gorm:"column:acos;type:decimal(18,4);not null;default:0"`
	ROAS             decimal.Decimal `gorm:"column:roas;type:decimal(18,4);not null;default:0"`
	IsSynthetic      bool            `gorm:"not null;default:false"`
}

// ToDomain converts the columns to a metrics record
func (c MetricsColumns) ToDomain() advertising.CampaignMetricsRecord {
	return advertising.CampaignMetricsRecord{
		Impressions:      c.Impressions,
		Clicks:           c.Clicks,
		Spend:            c.Spend,
		DirectItems:      c.DirectItems,
		IndirectItems:    c.IndirectItems,
		AdvertisingItems: c.AdvertisingItems,
		DirectUnits:      c.DirectUnits,
		IndirectUnits:    c.IndirectUnits,
		DirectAmount:     c.DirectAmount,
		IndirectAmount:   c.IndirectAmount,
		TotalRevenue:     c.TotalRevenue,
		OrganicItems:     c.OrganicItems,
		OrganicUnits:     c.OrganicUnits,
		OrganicAmount:    c.OrganicAmount,
		ShareOfVoice:     c.ShareOfVoice,
		CTR:              c.CTR,
		CPC:              c.CPC,
		CVR:              c.CVR,
		ACOS:             c.ACOS,
		ROAS:             c.ROAS,
		IsSynthetic:      c.IsSynthetic,
	}
}

// MetricsColumnsFromDomain copies a metrics record into columns
func MetricsColumnsFromDomain(r advertising.CampaignMetricsRecord) MetricsColumns {
	return MetricsColumns{
		Impressions:      r.Impressions,
		Clicks:           r.Clicks,
		Spend:            r.Spend,
		DirectItems:      r.DirectItems,
		IndirectItems:    r.IndirectItems,
		AdvertisingItems: r.AdvertisingItems,
		DirectUnits:      r.DirectUnits,
		IndirectUnits:    r.IndirectUnits,
		DirectAmount:     r.DirectAmount,
		IndirectAmount:   r.IndirectAmount,
		TotalRevenue:     r.TotalRevenue,
		OrganicItems:     r.OrganicItems,
		OrganicUnits:     r.OrganicUnits,
		OrganicAmount:    r.OrganicAmount,
		ShareOfVoice:     r.ShareOfVoice,
		CTR:              r.CTR,
		CPC:              r.CPC,
		CVR:              r.CVR,
		ACOS:             r.ACOS,
		ROAS:             r.ROAS,
		IsSynthetic:      r.IsSynthetic,
	}
}

// CampaignModel is the persistence model for advertising.Campaign
type CampaignModel struct {
	AggregateModel
	AccountID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_campaigns_account_external,priority:1"`
	ExternalCampaignID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_campaigns_account_external,priority:2"`
	Name               string          `gorm:"type:varchar(255)"`
	Status             string          `gorm:"type:varchar(16);not null;index"`
	DailyBudget        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Totals             MetricsColumns  `gorm:"embedded;embeddedPrefix:totals_"`
	ObservedDays       int             `gorm:"not null;default:0"`
	SyntheticDays      int             `gorm:"not null;default:0"`
	TotalsFrom         *time.Time      `gorm:"column:totals_from"`
	TotalsTo           *time.Time      `gorm:"column:totals_to"`
}

// TableName returns the table name for GORM
func (CampaignModel) TableName() string {
	return "campaigns"
}

// ToDomain converts the model to a Campaign
func (m *CampaignModel) ToDomain() *advertising.Campaign {
	return &advertising.Campaign{
		AccountAggregateRoot: m.ToAccountAggregateRoot(m.AccountID),
		ExternalCampaignID:   m.ExternalCampaignID,
		Name:                 m.Name,
		Status:               advertising.CampaignStatus(m.Status),
		DailyBudget:          m.DailyBudget,
		Totals: advertising.CampaignTotals{
			CampaignMetricsRecord: m.Totals.ToDomain(),
			ObservedDays:          m.ObservedDays,
			SyntheticDays:         m.SyntheticDays,
		},
		TotalsFrom: m.TotalsFrom,
		TotalsTo:   m.TotalsTo,
	}
}

// FromDomain populates the model from a Campaign
func (m *CampaignModel) FromDomain(c *advertising.Campaign) {
	m.AccountID = m.FromDomainAccountAggregateRoot(c.AccountAggregateRoot)
	m.ExternalCampaignID = c.ExternalCampaignID
	m.Name = c.Name
	m.Status = string(c.Status)
	m.DailyBudget = c.DailyBudget
	m.Totals = MetricsColumnsFromDomain(c.Totals.CampaignMetricsRecord)
	m.ObservedDays = c.Totals.ObservedDays
	m.SyntheticDays = c.Totals.SyntheticDays
	m.TotalsFrom = utcPtr(c.TotalsFrom)
	m.TotalsTo = utcPtr(c.TotalsTo)
}

// CampaignModelFromDomain creates a model from a Campaign
func CampaignModelFromDomain(c *advertising.Campaign) *CampaignModel {
	m := &CampaignModel{}
	m.FromDomain(c)
	return m
}

// CampaignMetricDayModel is the persistence model for advertising.CampaignMetricsDay
type CampaignMetricDayModel struct {
	BaseModel
	CampaignID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_campaign_metric_days_campaign_date,priority:1"`
	Date       time.Time      `gorm:"column:metric_date;not null;uniqueIndex:idx_campaign_metric_days_campaign_date,priority:2"`
	Metrics    MetricsColumns `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (CampaignMetricDayModel) TableName() string {
	return "campaign_metric_days"
}

// ToDomain converts the model to a CampaignMetricsDay
func (m *CampaignMetricDayModel) ToDomain() *advertising.CampaignMetricsDay {
	return &advertising.CampaignMetricsDay{
		BaseEntity: m.BaseModel.ToDomain(),
		CampaignID: m.CampaignID,
		Date:       m.Date.UTC(),
		Record:     m.Metrics.ToDomain(),
	}
}

// CampaignMetricDayModelFromDomain creates a model from a CampaignMetricsDay
func CampaignMetricDayModelFromDomain(d *advertising.CampaignMetricsDay) *CampaignMetricDayModel {
	m := &CampaignMetricDayModel{
		CampaignID: d.CampaignID,
		Date:       advertising.TruncateDay(d.Date),
		Metrics:    MetricsColumnsFromDomain(d.Record),
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
