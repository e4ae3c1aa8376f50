package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarketplaceOrderRepository persists marketplace orders
type MarketplaceOrderRepository interface {
	// FindByID retrieves an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MarketplaceOrder, error)

	// FindByExternalID retrieves an order by its marketplace order ID
	FindByExternalID(ctx context.Context, accountID uuid.UUID, externalOrderID string) (*MarketplaceOrder, error)

	// FindByExternalIDForUpdate is FindByExternalID with a row lock held until the
	// surrounding transaction ends
	FindByExternalIDForUpdate(ctx context.Context, accountID uuid.UUID, externalOrderID string) (*MarketplaceOrder, error)

	// FindByIDForUpdate is FindByID with a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MarketplaceOrder, error)

	// FindClosedBetween lists orders closed within [start, end], both inclusive
	FindClosedBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]MarketplaceOrder, error)

	// FindAdvertisingSales lists orders carrying an advertising cost, created within [start, end]
	FindAdvertisingSales(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]MarketplaceOrder, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *MarketplaceOrder) error

	// SaveBatch creates or updates several orders
	SaveBatch(ctx context.Context, orders []*MarketplaceOrder) error

	// AssignAdvertisingCosts writes only the advertising cost and flag of each
	// order. Status, manual flag and sync fields keep their stored values.
	AssignAdvertisingCosts(ctx context.Context, orders []*MarketplaceOrder) error

	// InTransaction runs fn with a repository bound to a single transaction
	InTransaction(ctx context.Context, fn func(repo MarketplaceOrderRepository) error) error
}
