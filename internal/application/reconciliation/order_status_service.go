// Package reconciliation runs the order status, campaign metrics and advertising
// cost workflows against persistence, locking, logging and metrics.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/lock"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrderStatusServiceConfig contains configuration for OrderStatusService
type OrderStatusServiceConfig struct {
	LockTTL        time.Duration
	MaxConcurrency int
}

// DefaultOrderStatusServiceConfig returns default configuration
func DefaultOrderStatusServiceConfig() OrderStatusServiceConfig {
	return OrderStatusServiceConfig{
		LockTTL:        30 * time.Second,
		MaxConcurrency: 8,
	}
}

// OrderStatusService keeps the canonical status of marketplace orders in sync
// with upstream snapshots. Work on one order is serialized by the order lock
// and a row lock inside the transaction.
type OrderStatusService struct {
	orderRepo fulfillment.MarketplaceOrderRepository
	locker    lock.OrderLocker
	metrics   *telemetry.ReconciliationMetrics
	logger    *zap.Logger
	now       func() time.Time

	lockTTL        time.Duration
	maxConcurrency int
}

// NewOrderStatusService creates a new OrderStatusService
func NewOrderStatusService(
	orderRepo fulfillment.MarketplaceOrderRepository,
	locker lock.OrderLocker,
	metrics *telemetry.ReconciliationMetrics,
	zapLogger *zap.Logger,
	config OrderStatusServiceConfig,
) *OrderStatusService {
	defaults := DefaultOrderStatusServiceConfig()
	if config.LockTTL <= 0 {
		config.LockTTL = defaults.LockTTL
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	return &OrderStatusService{
		orderRepo:      orderRepo,
		locker:         locker,
		metrics:        metrics,
		logger:         zapLogger,
		now:            func() time.Time { return time.Now().UTC() },
		lockTTL:        config.LockTTL,
		maxConcurrency: config.MaxConcurrency,
	}
}

// SyncResult is the outcome of syncing one snapshot
type SyncResult struct {
	OrderID         uuid.UUID
	ExternalOrderID string
	Created         bool
	PreviousStatus  fulfillment.CanonicalStatus
	Resolution      fulfillment.Resolution
}

// SyncOrder applies one upstream snapshot to its order, creating the order on
// first sight, and persists the resolved canonical status.
func (s *OrderStatusService) SyncOrder(ctx context.Context, snapshot fulfillment.OrderSnapshot) (*SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_status", "sync",
		telemetry.SpanAttrAccountID, snapshot.AccountID.String(),
		telemetry.SpanAttrExternalOrderID, snapshot.ExternalOrderID,
	)
	defer span.End()

	ctx = logger.WithAccountID(ctx, snapshot.AccountID.String())
	ctx = logger.WithExternalOrderID(ctx, snapshot.ExternalOrderID)
	log := logger.WithLogger(ctx, s.logger)
	start := time.Now()

	result, err := s.syncOrder(ctx, snapshot)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordOrderSync(ctx, time.Since(start), telemetry.OutcomeFailed)
		log.Error("Failed to sync order status", zap.Error(err))
		return nil, err
	}

	res := result.Resolution
	outcome := resolutionOutcome(res)
	for _, u := range res.Unrecognized {
		s.metrics.RecordUnrecognized(ctx, string(u.Kind))
		log.Warn("Unrecognized shipment vocabulary",
			zap.String("kind", string(u.Kind)),
			zap.String("value", u.Value),
			zap.String("parent", u.Parent),
		)
	}
	s.metrics.RecordResolution(ctx, res.Status.String(), res.Source.String(), outcome)
	s.metrics.RecordOrderSync(ctx, time.Since(start), outcome)
	telemetry.SetAttributes(span, "status", res.Status.String(), "outcome", outcome)

	if res.Changed {
		log.Info("Order status changed",
			zap.String("from", result.PreviousStatus.String()),
			zap.String("to", res.Status.String()),
			zap.String("source", res.Source.String()),
			zap.Bool("manual_cleared", res.ClearManual),
		)
	} else {
		log.Debug("Order status unchanged",
			zap.String("status", res.Status.String()),
			zap.String("outcome", outcome),
		)
	}
	return result, nil
}

func (s *OrderStatusService) syncOrder(ctx context.Context, snapshot fulfillment.OrderSnapshot) (*SyncResult, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.OrderKey(snapshot.AccountID, snapshot.ExternalOrderID), s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release)

	result := &SyncResult{ExternalOrderID: snapshot.ExternalOrderID}
	err = s.orderRepo.InTransaction(ctx, func(repo fulfillment.MarketplaceOrderRepository) error {
		order, err := repo.FindByExternalIDForUpdate(ctx, snapshot.AccountID, snapshot.ExternalOrderID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			if order, err = fulfillment.NewMarketplaceOrder(snapshot); err != nil {
				return err
			}
			result.Created = true
		case err != nil:
			return fmt.Errorf("failed to load order: %w", err)
		}

		result.PreviousStatus = order.Status
		res, err := order.Sync(snapshot, s.now())
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, order); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		result.OrderID = order.ID
		result.Resolution = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// release frees an order lock even when ctx is already cancelled
func (s *OrderStatusService) release(ctx context.Context, release lock.ReleaseFunc) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to release order lock", zap.Error(err))
	}
}

func resolutionOutcome(res fulfillment.Resolution) string {
	switch {
	case res.Changed:
		return telemetry.OutcomeChanged
	case res.IsManual:
		return telemetry.OutcomeManualKept
	default:
		return telemetry.OutcomeUnchanged
	}
}

// ---------------------------------------------------------------------------
// Batch sync
// ---------------------------------------------------------------------------

// OrderFailure records a snapshot that could not be synced
type OrderFailure struct {
	ExternalOrderID string
	Err             error
}

// BatchResult summarizes a SyncOrders run
type BatchResult struct {
	Synced  int
	Created int
	Changed int
	Failed  []OrderFailure
}

type orderGroup struct {
	key       string
	snapshots []fulfillment.OrderSnapshot
}

// SyncOrders syncs a batch of snapshots. Distinct orders run concurrently up to
// the configured limit; snapshots of the same order run one after another in
// input order. A failing snapshot is recorded and does not stop the batch.
func (s *OrderStatusService) SyncOrders(ctx context.Context, snapshots []fulfillment.OrderSnapshot) (*BatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_status", "sync_batch",
		telemetry.SpanAttrOrderCount, len(snapshots),
	)
	defer span.End()

	groups := groupSnapshots(snapshots)
	result := &BatchResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for _, group := range groups {
		g.Go(func() error {
			for _, snapshot := range group.snapshots {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := s.SyncOrder(gctx, snapshot)

				mu.Lock()
				switch {
				case err != nil:
					result.Failed = append(result.Failed, OrderFailure{ExternalOrderID: snapshot.ExternalOrderID, Err: err})
				default:
					result.Synced++
					if res.Created {
						result.Created++
					}
					if res.Resolution.Changed {
						result.Changed++
					}
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}

	sort.SliceStable(result.Failed, func(i, j int) bool {
		return result.Failed[i].ExternalOrderID < result.Failed[j].ExternalOrderID
	})
	telemetry.SetAttributes(span, "synced", result.Synced, "failed", len(result.Failed))

	logger.WithLogger(ctx, s.logger).Info("Order batch synced",
		zap.Int("snapshots", len(snapshots)),
		zap.Int("orders", len(groups)),
		zap.Int("synced", result.Synced),
		zap.Int("created", result.Created),
		zap.Int("changed", result.Changed),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// groupSnapshots groups snapshots by order, keeping first-seen order between
// groups and input order within each group
func groupSnapshots(snapshots []fulfillment.OrderSnapshot) []*orderGroup {
	index := make(map[string]*orderGroup)
	var groups []*orderGroup
	for _, snapshot := range snapshots {
		key := lock.OrderKey(snapshot.AccountID, snapshot.ExternalOrderID)
		group, ok := index[key]
		if !ok {
			group = &orderGroup{key: key}
			index[key] = group
			groups = append(groups, group)
		}
		group.snapshots = append(group.snapshots, snapshot)
	}
	return groups
}

// ---------------------------------------------------------------------------
// Manual checkpoint
// ---------------------------------------------------------------------------

// MarkReadyToPrepare pins an order to READY_TO_PREPARE. Later syncs keep the
// manual status until the marketplace reports a later or final status.
func (s *OrderStatusService) MarkReadyToPrepare(ctx context.Context, orderID uuid.UUID) (*fulfillment.MarketplaceOrder, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_status", "mark_ready_to_prepare", "order_id", orderID.String())
	defer span.End()

	current, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ctx = logger.WithAccountID(ctx, current.AccountID.String())
	ctx = logger.WithExternalOrderID(ctx, current.ExternalOrderID)

	release, err := s.locker.Acquire(ctx, lock.OrderKey(current.AccountID, current.ExternalOrderID), s.lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer s.release(ctx, release)

	var order *fulfillment.MarketplaceOrder
	err = s.orderRepo.InTransaction(ctx, func(repo fulfillment.MarketplaceOrderRepository) error {
		locked, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := locked.MarkReadyToPrepare(s.now()); err != nil {
			return err
		}
		if err := repo.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		order = locked
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		logger.WithLogger(ctx, s.logger).Warn("Failed to mark order ready to prepare", zap.Error(err))
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Order marked ready to prepare",
		zap.String("order_id", orderID.String()),
	)
	return order, nil
}
