package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string][]metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string][]metricdata.DataPoint[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum.DataPoints
			}
		}
	}
	return out
}

func TestNewReconciliationMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewReconciliationMetrics(telemetry.ReconciliationMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestReconciliationMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.ReconciliationMetrics
	assert.NotPanics(t, func() {
		ctx := context.Background()
		m.RecordResolution(ctx, "PAID", "shipment_status", telemetry.OutcomeChanged)
		m.RecordUnrecognized(ctx, "shipment_status")
		m.RecordCampaignDay(ctx, true)
		m.RecordCostDistribution(ctx, "PADS", 3)
		m.RecordOrderSync(ctx, time.Millisecond, telemetry.OutcomeChanged)
	})
}

func TestReconciliationMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewReconciliationMetrics(telemetry.ReconciliationMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("noop"),
	})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordResolution(context.Background(), "PAID", "order_status", telemetry.OutcomeUnchanged)
	})
}

func TestReconciliationMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("sellerhub")
	m, err := telemetry.NewReconciliationMetrics(telemetry.ReconciliationMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordResolution(ctx, "SHIPPED", "substatus", telemetry.OutcomeChanged)
	m.RecordResolution(ctx, "SHIPPED", "substatus", telemetry.OutcomeChanged)
	m.RecordResolution(ctx, "READY_TO_PREPARE", "manual", telemetry.OutcomeManualKept)
	m.RecordUnrecognized(ctx, "shipment_substatus")
	m.RecordCampaignDay(ctx, false)
	m.RecordCampaignDay(ctx, true)
	m.RecordCostDistribution(ctx, "PADS", 3)
	m.RecordCostDistribution(ctx, "PADS", 0)

	sums := collectSums(t, reader)

	resolved := sums["sellerhub_order_status_resolved_total"]
	require.Len(t, resolved, 2)
	var total int64
	for _, dp := range resolved {
		total += dp.Value
		if v, ok := dp.Attributes.Value(attribute.Key("outcome")); ok && v.AsString() == telemetry.OutcomeManualKept {
			assert.Equal(t, int64(1), dp.Value)
		}
	}
	assert.Equal(t, int64(3), total)

	require.Len(t, sums["sellerhub_unrecognized_vocabulary_total"], 1)
	assert.Len(t, sums["sellerhub_campaign_metrics_total"], 2)

	cost := sums["sellerhub_advertising_cost_orders_total"]
	require.Len(t, cost, 1)
	assert.Equal(t, int64(3), cost[0].Value)
}
