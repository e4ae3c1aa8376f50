package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellerhub/backend/internal/application/reconciliation"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/marketplace"
	"go.uber.org/zap"
)

// window is an optional campaign date range. A zero window is derived from
// the metrics rows of each campaign.
type window struct {
	From time.Time
	To   time.Time
}

func (w window) isZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// parseWindow reads YYYY-MM-DD bounds; both or neither must be given
func parseWindow(from, to string) (window, error) {
	if from == "" && to == "" {
		return window{}, nil
	}
	if from == "" || to == "" {
		return window{}, errors.New("both -from and -to are required to set a campaign window")
	}
	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return window{}, fmt.Errorf("invalid -from: %w", err)
	}
	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return window{}, fmt.Errorf("invalid -to: %w", err)
	}
	if _, err := advertising.DaysBetween(f, t); err != nil {
		return window{}, err
	}
	return window{From: f, To: t}, nil
}

// runSummary counts what one run did
type runSummary struct {
	OrdersSynced      int
	OrdersCreated     int
	OrdersChanged     int
	OrdersRejected    int
	OrdersFailed      int
	CampaignsSynced   int
	CampaignsFailed   int
	ObservedDays      int
	EstimatedDays     int
	ChargesRecorded   int
	ChargesFailed     int
	OrdersWithAdsCost int
	CampaignAlerts    int
}

func (s runSummary) fields() []zap.Field {
	return []zap.Field{
		zap.Int("orders_synced", s.OrdersSynced),
		zap.Int("orders_created", s.OrdersCreated),
		zap.Int("orders_changed", s.OrdersChanged),
		zap.Int("orders_rejected", s.OrdersRejected),
		zap.Int("orders_failed", s.OrdersFailed),
		zap.Int("campaigns_synced", s.CampaignsSynced),
		zap.Int("campaigns_failed", s.CampaignsFailed),
		zap.Int("observed_days", s.ObservedDays),
		zap.Int("estimated_days", s.EstimatedDays),
		zap.Int("charges_recorded", s.ChargesRecorded),
		zap.Int("charges_failed", s.ChargesFailed),
		zap.Int("orders_with_ads_cost", s.OrdersWithAdsCost),
		zap.Int("campaign_alerts", s.CampaignAlerts),
	}
}

// failed reports whether any item of the batch could not be reconciled
func (s runSummary) failed() bool {
	return s.OrdersRejected+s.OrdersFailed+s.CampaignsFailed+s.ChargesFailed > 0
}

// runner drives the three reconciliation services over one sync batch
type runner struct {
	orders    *reconciliation.OrderStatusService
	campaigns *reconciliation.CampaignMetricsService
	costs     *reconciliation.AdvertisingCostService
	logger    *zap.Logger
}

// run reconciles a batch. Bad items are logged and counted; only a cancelled
// context aborts the run.
func (r *runner) run(ctx context.Context, batch *marketplace.SyncBatch, w window) (runSummary, error) {
	var summary runSummary
	accountID := batch.Account()
	ctx = logger.WithAccountID(ctx, accountID.String())
	log := logger.WithLogger(ctx, r.logger)

	// Orders
	snapshots := make([]fulfillment.OrderSnapshot, 0, len(batch.Orders))
	for _, env := range batch.Orders {
		snapshot, err := env.Order.ToOrderSnapshot(accountID, env.Shipment)
		if err != nil {
			summary.OrdersRejected++
			log.Warn("Order payload rejected",
				zap.String("external_order_id", env.Order.ExternalID()),
				zap.Error(err),
			)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	result, err := r.orders.SyncOrders(ctx, snapshots)
	if err != nil {
		return summary, err
	}
	summary.OrdersSynced = result.Synced
	summary.OrdersCreated = result.Created
	summary.OrdersChanged = result.Changed
	summary.OrdersFailed = len(result.Failed)

	// Campaigns
	for _, env := range batch.Campaigns {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		observed, estimated, err := r.syncCampaign(ctx, batch, env, w)
		summary.ObservedDays += observed
		summary.EstimatedDays += estimated
		if err != nil {
			summary.CampaignsFailed++
			log.Warn("Campaign not reconciled",
				zap.String("external_campaign_id", env.Campaign.ExternalID()),
				zap.Error(err),
			)
			continue
		}
		summary.CampaignsSynced++
	}

	// Billing
	for _, period := range batch.BillingPeriods {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		recorded, affected, err := r.recordBillingPeriod(ctx, batch, period)
		summary.ChargesRecorded += recorded
		summary.OrdersWithAdsCost += affected
		if err != nil {
			summary.ChargesFailed++
			log.Warn("Billing period not reconciled",
				zap.String("period_key", period.PeriodKey),
				zap.Error(err),
			)
		}
	}

	report, err := r.campaigns.CampaignAlerts(ctx, accountID)
	if err != nil {
		return summary, fmt.Errorf("failed to build campaign alerts: %w", err)
	}
	summary.CampaignAlerts = report.Total
	for _, alert := range report.Alerts {
		log.Warn("Campaign alert",
			zap.String("campaign_id", alert.CampaignID.String()),
			zap.String("type", string(alert.Type)),
			zap.String("severity", string(alert.Severity)),
			zap.String("message", alert.Message),
		)
	}

	return summary, nil
}

// syncCampaign upserts one campaign, stores its observed days, fills the gaps
// of the window with estimates and refreshes the campaign totals
func (r *runner) syncCampaign(ctx context.Context, batch *marketplace.SyncBatch, env marketplace.CampaignEnvelope, w window) (observed, estimated int, err error) {
	campaign, err := r.campaigns.SyncCampaign(ctx, batch.Account(), env.Campaign)
	if err != nil {
		return 0, 0, err
	}

	var first, last time.Time
	for _, row := range env.Metrics {
		day, err := row.Day()
		if err != nil {
			return observed, 0, err
		}
		counters, err := row.ToRawCounters()
		if err != nil {
			return observed, 0, err
		}
		if _, err := r.campaigns.RecordObservedDay(ctx, campaign.ID, day, counters); err != nil {
			return observed, 0, err
		}
		observed++
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	if !w.isZero() {
		first, last = w.From, w.To
	}
	if first.IsZero() {
		return observed, 0, nil
	}

	days, err := r.campaigns.EstimateDays(ctx, campaign.ID, first, last)
	if err != nil {
		return observed, 0, err
	}
	if _, err := r.campaigns.RefreshTotals(ctx, campaign.ID, first, last); err != nil {
		return observed, len(days), err
	}
	return observed, len(days), nil
}

// recordBillingPeriod distributes the product ads charge of a period over its
// closed orders and stores the other advertising charges as they are
func (r *runner) recordBillingPeriod(ctx context.Context, batch *marketplace.SyncBatch, period marketplace.BillingSummaryPayload) (recorded, affected int, err error) {
	pads, err := period.ToCharge(batch.Account(), billing.ChargeTypeProductAds)
	if err != nil {
		return 0, 0, err
	}
	result, err := r.costs.DistributeCharge(ctx, pads)
	if err != nil {
		return 0, 0, err
	}
	recorded++
	affected = result.OrdersAffected

	for _, chargeType := range []billing.ChargeType{billing.ChargeTypeBrandAds, billing.ChargeTypeDisplayAds} {
		charge, err := period.ToCharge(batch.Account(), chargeType)
		if err != nil {
			return recorded, affected, err
		}
		if charge.Amount.IsZero() {
			continue
		}
		if _, err := r.costs.RecordCharge(ctx, charge); err != nil {
			return recorded, affected, err
		}
		recorded++
	}
	return recorded, affected, nil
}
