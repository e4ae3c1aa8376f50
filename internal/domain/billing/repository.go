package billing

import (
	"context"

	"github.com/google/uuid"
)

// BillingChargeRepository persists billing period charges
type BillingChargeRepository interface {
	// FindByPeriod retrieves the charge of one account, billing period and charge type
	FindByPeriod(ctx context.Context, accountID uuid.UUID, periodKey string, chargeType ChargeType) (*BillingPeriodCharge, error)

	// FindByAccount lists the charges of an account, most recent period first
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*BillingPeriodCharge, error)

	// Save creates or updates a charge
	Save(ctx context.Context, charge *BillingPeriodCharge) error
}
