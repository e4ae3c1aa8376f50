package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Resolution outcomes
const (
	OutcomeChanged    = "changed"
	OutcomeUnchanged  = "unchanged"
	OutcomeManualKept = "manual_kept"
	OutcomeFailed     = "failed"
)

// ReconciliationMetrics counts what the reconciler does. A nil
// *ReconciliationMetrics records nothing.
type ReconciliationMetrics struct {
	logger *zap.Logger

	statusResolved  *Counter
	unrecognized    *Counter
	campaignDays    *Counter
	costOrders      *Counter
	orderSyncLength *Histogram
}

// ReconciliationMetricsConfig holds the dependencies of ReconciliationMetrics.
type ReconciliationMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewReconciliationMetrics registers the reconciler's instruments on cfg.Meter.
func NewReconciliationMetrics(cfg ReconciliationMetricsConfig) (*ReconciliationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &ReconciliationMetrics{logger: logger}
	var err error

	if m.statusResolved, err = NewCounter(cfg.Meter,
		"sellerhub_order_status_resolved_total",
		"Order status resolutions by resulting status, source and outcome",
		"{resolutions}",
	); err != nil {
		return nil, err
	}
	if m.unrecognized, err = NewCounter(cfg.Meter,
		"sellerhub_unrecognized_vocabulary_total",
		"Shipment status or substatus values missing from the vocabulary tables",
		"{values}",
	); err != nil {
		return nil, err
	}
	if m.campaignDays, err = NewCounter(cfg.Meter,
		"sellerhub_campaign_metrics_total",
		"Campaign metric days stored, observed or synthetic",
		"{days}",
	); err != nil {
		return nil, err
	}
	if m.costOrders, err = NewCounter(cfg.Meter,
		"sellerhub_advertising_cost_orders_total",
		"Orders that received a share of an advertising charge",
		"{orders}",
	); err != nil {
		return nil, err
	}
	if m.orderSyncLength, err = NewHistogram(cfg.Meter,
		"sellerhub_order_sync_duration_seconds",
		"Time to lock, resolve and persist one order snapshot",
		"s",
		SyncDurationBuckets...,
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordResolution counts one order status resolution.
func (m *ReconciliationMetrics) RecordResolution(ctx context.Context, status, source, outcome string) {
	if m == nil {
		return
	}
	m.statusResolved.Inc(ctx, AttrStatus.String(status), AttrSource.String(source), AttrOutcome.String(outcome))
}

// RecordUnrecognized counts a vocabulary value the tables do not know.
func (m *ReconciliationMetrics) RecordUnrecognized(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.unrecognized.Inc(ctx, AttrKind.String(kind))
}

// RecordCampaignDay counts one stored campaign metrics day.
func (m *ReconciliationMetrics) RecordCampaignDay(ctx context.Context, synthetic bool) {
	if m == nil {
		return
	}
	m.campaignDays.Inc(ctx, AttrSynthetic.Bool(synthetic))
}

// RecordCostDistribution counts the orders affected by one charge distribution.
func (m *ReconciliationMetrics) RecordCostDistribution(ctx context.Context, chargeType string, orders int) {
	if m == nil || orders <= 0 {
		return
	}
	m.costOrders.Add(ctx, int64(orders), AttrChargeType.String(chargeType))
}

// RecordOrderSync records how long one order sync took.
func (m *ReconciliationMetrics) RecordOrderSync(ctx context.Context, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.orderSyncLength.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
