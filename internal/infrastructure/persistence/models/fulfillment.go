package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// MarketplaceOrderModel is the persistence model for fulfillment.MarketplaceOrder
type MarketplaceOrderModel struct {
	AggregateModel
	AccountID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_marketplace_orders_account_external,priority:1"`
	ExternalOrderID   string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_marketplace_orders_account_external,priority:2"`
	ShipmentID        string          `gorm:"type:varchar(64)"`
	OrderStatus       string          `gorm:"type:varchar(32);not null"`
	ShipmentStatus    *string         `gorm:"type:varchar(64)"`
	ShipmentSubstatus *string         `gorm:"type:varchar(64)"`
	Tags              []string        `gorm:"type:text;serializer:json"`
	Status            string          `gorm:"type:varchar(32);not null;index"`
	StatusManual      bool            `gorm:"not null;default:false"`
	StatusManualAt    *time.Time      `gorm:"column:status_manual_at"`
	LastSyncedAt      *time.Time      `gorm:"column:last_synced_at"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency          string          `gorm:"type:varchar(3)"`
	DateCreated       time.Time       `gorm:"not null;index"`
	DateClosed        *time.Time      `gorm:"index"`
	AdvertisingCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsAdvertisingSale bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (MarketplaceOrderModel) TableName() string {
	return "marketplace_orders"
}

// ToDomain converts the model to a MarketplaceOrder
func (m *MarketplaceOrderModel) ToDomain() *fulfillment.MarketplaceOrder {
	o := &fulfillment.MarketplaceOrder{
		AccountAggregateRoot: m.ToAccountAggregateRoot(m.AccountID),
		ExternalOrderID:      m.ExternalOrderID,
		ShipmentID:           m.ShipmentID,
		OrderStatus:          fulfillment.OrderStatus(m.OrderStatus),
		Tags:                 append([]string(nil), m.Tags...),
		Status:               fulfillment.CanonicalStatus(m.Status),
		StatusManual:         m.StatusManual,
		StatusManualAt:       m.StatusManualAt,
		LastSyncedAt:         m.LastSyncedAt,
		TotalAmount:          m.TotalAmount,
		Currency:             m.Currency,
		DateCreated:          m.DateCreated,
		DateClosed:           m.DateClosed,
		AdvertisingCost:      m.AdvertisingCost,
		IsAdvertisingSale:    m.IsAdvertisingSale,
	}
	if m.ShipmentStatus != nil {
		o.ShipmentStatus = fulfillment.ShipmentStatusPtr(*m.ShipmentStatus)
	}
	if m.ShipmentSubstatus != nil {
		o.ShipmentSubstatus = fulfillment.SubstatusPtr(*m.ShipmentSubstatus)
	}
	return o
}

// FromDomain populates the model from a MarketplaceOrder. Times are stored in UTC.
func (m *MarketplaceOrderModel) FromDomain(o *fulfillment.MarketplaceOrder) {
	m.AccountID = m.FromDomainAccountAggregateRoot(o.AccountAggregateRoot)
	m.ExternalOrderID = o.ExternalOrderID
	m.ShipmentID = o.ShipmentID
	m.OrderStatus = string(o.OrderStatus)
	m.ShipmentStatus = nil
	if o.ShipmentStatus != nil {
		s := string(*o.ShipmentStatus)
		m.ShipmentStatus = &s
	}
	m.ShipmentSubstatus = nil
	if o.ShipmentSubstatus != nil {
		s := string(*o.ShipmentSubstatus)
		m.ShipmentSubstatus = &s
	}
	m.Tags = append([]string(nil), o.Tags...)
	m.Status = string(o.Status)
	m.StatusManual = o.StatusManual
	m.StatusManualAt = utcPtr(o.StatusManualAt)
	m.LastSyncedAt = utcPtr(o.LastSyncedAt)
	m.TotalAmount = o.TotalAmount
	m.Currency = o.Currency
	m.DateCreated = o.DateCreated.UTC()
	m.DateClosed = utcPtr(o.DateClosed)
	m.AdvertisingCost = o.AdvertisingCost
	m.IsAdvertisingSale = o.IsAdvertisingSale
}

// MarketplaceOrderModelFromDomain creates a model from a MarketplaceOrder
func MarketplaceOrderModelFromDomain(o *fulfillment.MarketplaceOrder) *MarketplaceOrderModel {
	m := &MarketplaceOrderModel{}
	m.FromDomain(o)
	return m
}
