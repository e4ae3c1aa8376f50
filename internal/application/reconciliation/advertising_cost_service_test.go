package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newClosedOrder(t *testing.T, externalID string, closed *time.Time) *fulfillment.MarketplaceOrder {
	t.Helper()
	snapshot := newSnapshot(externalID, fulfillment.OrderStatusPaid, "", "")
	if closed != nil {
		snapshot.DateCreated = closed.Add(-time.Hour)
		snapshot.DateClosed = closed
	}
	order, err := fulfillment.NewMarketplaceOrder(snapshot)
	require.NoError(t, err)
	return order
}

func utc(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func newMarchCharge(t *testing.T, chargeType billing.ChargeType, amount int64) *billing.BillingPeriodCharge {
	t.Helper()
	start, end, err := billing.NewPeriodFromDates("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	charge, err := billing.NewBillingPeriodCharge(testAccountID, "2024-03-01", chargeType, decimal.NewFromInt(amount), "BRL", start, end)
	require.NoError(t, err)
	return charge
}

func TestAdvertisingCostService_DistributeCharge(t *testing.T) {
	ctx := context.Background()

	first := newClosedOrder(t, "5001", utc(2024, 3, 1, 2))
	second := newClosedOrder(t, "5002", utc(2024, 3, 15, 12))
	last := newClosedOrder(t, "5003", utc(2024, 3, 31, 23))
	april := newClosedOrder(t, "5004", utc(2024, 4, 1, 0))
	open := newClosedOrder(t, "5005", nil)

	repo := newFakeOrderRepo(first, second, last, april, open)
	charge := newMarchCharge(t, billing.ChargeTypeProductAds, 300)

	charges := new(mockBillingChargeRepo)
	charges.On("FindByPeriod", mock.Anything, testAccountID, "2024-03-01", billing.ChargeTypeProductAds).
		Return(nil, shared.ErrNotFound).Once()
	charges.On("Save", mock.Anything, mock.AnythingOfType("*billing.BillingPeriodCharge")).Return(nil)
	svc := NewAdvertisingCostService(charges, repo, newTestMetrics(t), nil)

	result, err := svc.DistributeCharge(ctx, charge)
	require.NoError(t, err)
	assert.Equal(t, 3, result.OrdersAffected)
	assert.True(t, result.CostPerOrder.Equal(decimal.NewFromInt(100)))

	for _, o := range []*fulfillment.MarketplaceOrder{first, second, last} {
		stored := repo.get(o.ID)
		assert.True(t, stored.AdvertisingCost.Equal(decimal.NewFromInt(100)), stored.ExternalOrderID)
		assert.True(t, stored.IsAdvertisingSale)
	}
	for _, o := range []*fulfillment.MarketplaceOrder{april, open} {
		stored := repo.get(o.ID)
		assert.True(t, stored.AdvertisingCost.IsZero(), stored.ExternalOrderID)
		assert.False(t, stored.IsAdvertisingSale)
	}
	assert.Equal(t, 3, charge.OrdersAffected)
	assert.NotNil(t, charge.DistributedAt)

	t.Run("running again does not accumulate", func(t *testing.T) {
		charges.On("FindByPeriod", mock.Anything, testAccountID, "2024-03-01", billing.ChargeTypeProductAds).
			Return(charge, nil).Once()

		again, err := svc.DistributeCharge(ctx, newMarchCharge(t, billing.ChargeTypeProductAds, 300))
		require.NoError(t, err)
		assert.Equal(t, result, again)
		assert.True(t, repo.get(first.ID).AdvertisingCost.Equal(decimal.NewFromInt(100)))
	})

	t.Run("marketing summary of the distributed period", func(t *testing.T) {
		summary, err := svc.MarketingSummary(ctx, testAccountID, *utc(2024, 3, 1, 0), *utc(2024, 3, 31, 23))
		require.NoError(t, err)
		assert.Equal(t, 3, summary.TotalOrders)
		assert.True(t, summary.TotalCost.Equal(decimal.NewFromInt(300)))
		assert.True(t, summary.AverageCostPerOrder.Equal(decimal.NewFromInt(100)))
		require.Len(t, summary.Monthly, 1)
		assert.Equal(t, "2024-03", summary.Monthly[0].Month)
	})
}

func TestAdvertisingCostService_DistributeCharge_EmptyPeriod(t *testing.T) {
	ctx := context.Background()
	repo := newFakeOrderRepo(newClosedOrder(t, "6001", utc(2024, 2, 28, 10)))

	charges := new(mockBillingChargeRepo)
	charges.On("FindByPeriod", mock.Anything, testAccountID, "2024-03-01", billing.ChargeTypeProductAds).Return(nil, shared.ErrNotFound)
	charges.On("Save", mock.Anything, mock.AnythingOfType("*billing.BillingPeriodCharge")).Return(nil)
	svc := NewAdvertisingCostService(charges, repo, nil, nil)

	result, err := svc.DistributeCharge(ctx, newMarchCharge(t, billing.ChargeTypeProductAds, 300))
	require.NoError(t, err)
	assert.Zero(t, result.OrdersAffected)
	assert.True(t, result.CostPerOrder.IsZero())
	assert.Zero(t, repo.costWrites)
	charges.AssertNumberOfCalls(t, "Save", 2)
}

func TestAdvertisingCostService_DistributeCharge_KeepsConcurrentStatusChange(t *testing.T) {
	ctx := context.Background()
	order := newClosedOrder(t, "7001", utc(2024, 3, 10, 12))
	repo := newFakeOrderRepo(order)

	pinnedAt := *utc(2024, 3, 10, 13)
	repo.afterFindClosed = func() {
		current := repo.get(order.ID)
		require.NoError(t, current.MarkReadyToPrepare(pinnedAt))
		require.NoError(t, repo.Save(ctx, &current))
	}

	charges := new(mockBillingChargeRepo)
	charges.On("FindByPeriod", mock.Anything, testAccountID, "2024-03-01", billing.ChargeTypeProductAds).Return(nil, shared.ErrNotFound)
	charges.On("Save", mock.Anything, mock.AnythingOfType("*billing.BillingPeriodCharge")).Return(nil)
	svc := NewAdvertisingCostService(charges, repo, nil, nil)

	result, err := svc.DistributeCharge(ctx, newMarchCharge(t, billing.ChargeTypeProductAds, 90))
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersAffected)

	stored := repo.get(order.ID)
	assert.Equal(t, fulfillment.StatusReadyToPrepare, stored.Status)
	assert.True(t, stored.StatusManual)
	require.NotNil(t, stored.StatusManualAt)
	assert.True(t, stored.StatusManualAt.Equal(pinnedAt))
	assert.True(t, stored.AdvertisingCost.Equal(decimal.NewFromInt(90)))
	assert.True(t, stored.IsAdvertisingSale)
}

func TestAdvertisingCostService_DistributeCharge_OtherChargeTypes(t *testing.T) {
	charges := new(mockBillingChargeRepo)
	svc := NewAdvertisingCostService(charges, newFakeOrderRepo(), nil, nil)

	_, err := svc.DistributeCharge(context.Background(), newMarchCharge(t, billing.ChargeTypeBrandAds, 40))
	assert.ErrorIs(t, err, ErrChargeNotDistributable)
	charges.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdvertisingCostService_RecordCharge(t *testing.T) {
	ctx := context.Background()
	stored := newMarchCharge(t, billing.ChargeTypeBrandAds, 40)

	charges := new(mockBillingChargeRepo)
	charges.On("FindByPeriod", ctx, testAccountID, "2024-03-01", billing.ChargeTypeBrandAds).Return(stored, nil)
	charges.On("Save", ctx, stored).Return(nil)
	svc := NewAdvertisingCostService(charges, newFakeOrderRepo(), nil, nil)

	updated, err := svc.RecordCharge(ctx, newMarchCharge(t, billing.ChargeTypeBrandAds, 55))
	require.NoError(t, err)
	assert.Same(t, stored, updated)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(55)))
	charges.AssertExpectations(t)
}
