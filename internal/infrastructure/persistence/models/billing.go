package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillingChargeModel is the persistence model for billing.BillingPeriodCharge
type BillingChargeModel struct {
	AggregateModel
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_billing_charges_account_period_type,priority:1"`
	PeriodKey      string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_billing_charges_account_period_type,priority:2"`
	ChargeType     string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_billing_charges_account_period_type,priority:3"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency       string          `gorm:"type:varchar(3)"`
	PeriodStart    time.Time       `gorm:"not null"`
	PeriodEnd      time.Time       `gorm:"not null"`
	OrdersAffected int             `gorm:"not null;default:0"`
	CostPerOrder   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DistributedAt  *time.Time      `gorm:"column:distributed_at"`
}

// TableName returns the table name for GORM
func (BillingChargeModel) TableName() string {
	return "billing_period_charges"
}

// ToDomain converts the model to a BillingPeriodCharge
func (m *BillingChargeModel) ToDomain() *billing.BillingPeriodCharge {
	return &billing.BillingPeriodCharge{
		AccountAggregateRoot: m.ToAccountAggregateRoot(m.AccountID),
		PeriodKey:            m.PeriodKey,
		ChargeType:           billing.ChargeType(m.ChargeType),
		Amount:               m.Amount,
		Currency:             m.Currency,
		PeriodStart:          m.PeriodStart.UTC(),
		PeriodEnd:            m.PeriodEnd.UTC(),
		OrdersAffected:       m.OrdersAffected,
		CostPerOrder:         m.CostPerOrder,
		DistributedAt:        m.DistributedAt,
	}
}

// BillingChargeModelFromDomain creates a model from a BillingPeriodCharge
func BillingChargeModelFromDomain(c *billing.BillingPeriodCharge) *BillingChargeModel {
	m := &BillingChargeModel{
		PeriodKey:      c.PeriodKey,
		ChargeType:     string(c.ChargeType),
		Amount:         c.Amount,
		Currency:       c.Currency,
		PeriodStart:    c.PeriodStart.UTC(),
		PeriodEnd:      c.PeriodEnd.UTC(),
		OrdersAffected: c.OrdersAffected,
		CostPerOrder:   c.CostPerOrder,
		DistributedAt:  utcPtr(c.DistributedAt),
	}
	m.AccountID = m.FromDomainAccountAggregateRoot(c.AccountAggregateRoot)
	return m
}
