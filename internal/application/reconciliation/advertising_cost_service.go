package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrChargeNotDistributable is returned when distributing a charge type other than product ads
var ErrChargeNotDistributable = errors.New("reconciliation: only product ads charges are distributed over orders")

// AdvertisingCostService stores billing period charges and attributes the
// product ads charge of a period to the orders closed in it
type AdvertisingCostService struct {
	chargeRepo billing.BillingChargeRepository
	orderRepo  fulfillment.MarketplaceOrderRepository
	metrics    *telemetry.ReconciliationMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdvertisingCostService creates a new AdvertisingCostService
func NewAdvertisingCostService(
	chargeRepo billing.BillingChargeRepository,
	orderRepo fulfillment.MarketplaceOrderRepository,
	metrics *telemetry.ReconciliationMetrics,
	zapLogger *zap.Logger,
) *AdvertisingCostService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &AdvertisingCostService{
		chargeRepo: chargeRepo,
		orderRepo:  orderRepo,
		metrics:    metrics,
		logger:     zapLogger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecordCharge stores a charge, updating the amount of an already known period
func (s *AdvertisingCostService) RecordCharge(ctx context.Context, charge *billing.BillingPeriodCharge) (*billing.BillingPeriodCharge, error) {
	existing, err := s.chargeRepo.FindByPeriod(ctx, charge.AccountID, charge.PeriodKey, charge.ChargeType)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		existing = charge
	case err != nil:
		return nil, fmt.Errorf("failed to load charge: %w", err)
	default:
		if err := existing.UpdateAmount(charge.Amount, charge.Currency); err != nil {
			return nil, err
		}
	}

	if err := s.chargeRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save charge: %w", err)
	}
	return existing, nil
}

// DistributeCharge stores a product ads charge and spreads it evenly over the
// orders closed inside its period. Running it again for the same period gives
// the same per-order cost.
func (s *AdvertisingCostService) DistributeCharge(ctx context.Context, charge *billing.BillingPeriodCharge) (billing.DistributionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "advertising_cost", "distribute",
		telemetry.SpanAttrAccountID, charge.AccountID.String(),
		telemetry.SpanAttrPeriodKey, charge.PeriodKey,
	)
	defer span.End()
	ctx = logger.WithAccountID(ctx, charge.AccountID.String())
	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("period_key", charge.PeriodKey),
		zap.String("charge_type", charge.ChargeType.String()),
	)

	if charge.ChargeType != billing.ChargeTypeProductAds {
		return billing.DistributionResult{}, ErrChargeNotDistributable
	}

	stored, err := s.RecordCharge(ctx, charge)
	if err != nil {
		telemetry.RecordError(span, err)
		return billing.DistributionResult{}, err
	}

	var result billing.DistributionResult
	err = s.orderRepo.InTransaction(ctx, func(repo fulfillment.MarketplaceOrderRepository) error {
		orders, err := repo.FindClosedBetween(ctx, stored.AccountID, stored.PeriodStart, stored.PeriodEnd)
		if err != nil {
			return fmt.Errorf("failed to load orders closed in period: %w", err)
		}

		targets := make([]*fulfillment.MarketplaceOrder, len(orders))
		for i := range orders {
			targets[i] = &orders[i]
		}

		result = billing.Distribute(stored, targets)
		if result.OrdersAffected == 0 {
			return nil
		}
		if err := repo.AssignAdvertisingCosts(ctx, targets); err != nil {
			return fmt.Errorf("failed to save order costs: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to distribute advertising charge", zap.Error(err))
		return billing.DistributionResult{}, err
	}

	stored.RecordDistribution(result, s.now())
	if err := s.chargeRepo.Save(ctx, stored); err != nil {
		telemetry.RecordError(span, err)
		return billing.DistributionResult{}, fmt.Errorf("failed to save charge: %w", err)
	}

	s.metrics.RecordCostDistribution(ctx, stored.ChargeType.String(), result.OrdersAffected)
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderCount, result.OrdersAffected)

	if result.OrdersAffected == 0 {
		log.Info("No orders closed in billing period, charge not distributed",
			zap.String("amount", stored.Amount.String()),
		)
	} else {
		log.Info("Advertising charge distributed",
			zap.String("amount", stored.Amount.String()),
			zap.Int("orders_affected", result.OrdersAffected),
			zap.String("cost_per_order", result.CostPerOrder.String()),
		)
	}
	return result, nil
}

// MarketingSummary rolls up the advertising cost attributed to orders created in [from, to]
func (s *AdvertisingCostService) MarketingSummary(ctx context.Context, accountID uuid.UUID, from, to time.Time) (billing.MarketingSummary, error) {
	orders, err := s.orderRepo.FindAdvertisingSales(ctx, accountID, from, to)
	if err != nil {
		return billing.MarketingSummary{}, fmt.Errorf("failed to load advertising sales: %w", err)
	}

	sales := make([]billing.AdvertisingSale, 0, len(orders))
	for _, o := range orders {
		date := o.DateCreated
		if o.DateClosed != nil {
			date = *o.DateClosed
		}
		sales = append(sales, billing.AdvertisingSale{Date: date, Cost: o.AdvertisingCost})
	}
	return billing.SummarizeMarketing(sales), nil
}
