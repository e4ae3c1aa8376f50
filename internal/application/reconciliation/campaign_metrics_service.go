package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CampaignSource builds or refreshes a campaign from upstream data
type CampaignSource interface {
	ExternalID() string
	ToCampaign(accountID uuid.UUID, existing *advertising.Campaign) (*advertising.Campaign, error)
}

// CampaignMetricsServiceConfig contains configuration for CampaignMetricsService
type CampaignMetricsServiceConfig struct {
	Benchmarks        advertising.BenchmarkConfig
	Thresholds        advertising.AlertThresholds
	SyntheticFallback bool
}

// DefaultCampaignMetricsServiceConfig returns default configuration
func DefaultCampaignMetricsServiceConfig() CampaignMetricsServiceConfig {
	return CampaignMetricsServiceConfig{
		Benchmarks:        advertising.DefaultBenchmarks(),
		Thresholds:        advertising.DefaultAlertThresholds(),
		SyntheticFallback: true,
	}
}

// CampaignMetricsService stores daily campaign metrics, estimates the days the
// marketplace did not report and rolls windows up into campaign totals
type CampaignMetricsService struct {
	campaignRepo advertising.CampaignRepository
	metricsRepo  advertising.CampaignMetricsRepository
	metrics      *telemetry.ReconciliationMetrics
	logger       *zap.Logger
	config       CampaignMetricsServiceConfig
}

// NewCampaignMetricsService creates a new CampaignMetricsService
func NewCampaignMetricsService(
	campaignRepo advertising.CampaignRepository,
	metricsRepo advertising.CampaignMetricsRepository,
	metrics *telemetry.ReconciliationMetrics,
	zapLogger *zap.Logger,
	config CampaignMetricsServiceConfig,
) *CampaignMetricsService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &CampaignMetricsService{
		campaignRepo: campaignRepo,
		metricsRepo:  metricsRepo,
		metrics:      metrics,
		logger:       zapLogger,
		config:       config,
	}
}

// SyncCampaign creates or updates the campaign described by src
func (s *CampaignMetricsService) SyncCampaign(ctx context.Context, accountID uuid.UUID, src CampaignSource) (*advertising.Campaign, error) {
	existing, err := s.campaignRepo.FindByExternalID(ctx, accountID, src.ExternalID())
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	campaign, err := src.ToCampaign(accountID, existing)
	if err != nil {
		return nil, err
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}
	return campaign, nil
}

// RecordObservedDay aggregates the counters the marketplace reported for one day
// and stores them, replacing any earlier record of that day
func (s *CampaignMetricsService) RecordObservedDay(ctx context.Context, campaignID uuid.UUID, day time.Time, counters advertising.RawCampaignCounters) (*advertising.CampaignMetricsDay, error) {
	if err := counters.Validate(); err != nil {
		return nil, err
	}

	record := advertising.Aggregate(counters)
	metricsDay := advertising.NewCampaignMetricsDay(campaignID, day, record)
	if err := s.metricsRepo.Upsert(ctx, metricsDay); err != nil {
		return nil, fmt.Errorf("failed to store campaign day: %w", err)
	}
	s.metrics.RecordCampaignDay(ctx, false)
	return metricsDay, nil
}

// EstimateDays fills every day of [from, to] without an observed record using
// benchmark estimates from the campaign's daily budget. Earlier estimates are
// recomputed. Only active campaigns are estimated.
func (s *CampaignMetricsService) EstimateDays(ctx context.Context, campaignID uuid.UUID, from, to time.Time) ([]*advertising.CampaignMetricsDay, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "campaign_metrics", "estimate_days",
		telemetry.SpanAttrCampaignID, campaignID.String(),
	)
	defer span.End()
	log := logger.WithLogger(ctx, s.logger).With(zap.String("campaign_id", campaignID.String()))

	if !s.config.SyntheticFallback {
		log.Debug("Synthetic estimates disabled")
		return nil, nil
	}

	days, err := advertising.DaysBetween(from, to)
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !campaign.IsActive() {
		log.Debug("Skipping estimates for inactive campaign", zap.String("status", campaign.Status.String()))
		return nil, nil
	}

	stored, err := s.metricsRepo.FindWindow(ctx, campaignID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load campaign window: %w", err)
	}
	observed := make(map[time.Time]bool, len(stored))
	for _, d := range stored {
		if !d.Record.IsSynthetic {
			observed[advertising.TruncateDay(d.Date)] = true
		}
	}

	var estimated []*advertising.CampaignMetricsDay
	for _, day := range days {
		if observed[day] {
			continue
		}
		record, err := advertising.Estimate(campaign.DailyBudget, s.config.Benchmarks)
		if err != nil {
			telemetry.RecordError(span, err)
			return estimated, err
		}
		metricsDay := advertising.NewCampaignMetricsDay(campaignID, day, record)
		if err := s.metricsRepo.Upsert(ctx, metricsDay); err != nil {
			telemetry.RecordError(span, err)
			return estimated, fmt.Errorf("failed to store estimated day: %w", err)
		}
		s.metrics.RecordCampaignDay(ctx, true)
		estimated = append(estimated, metricsDay)
	}

	if len(estimated) > 0 {
		log.Info("Estimated unreported campaign days",
			zap.Int("days", len(estimated)),
			zap.String("daily_budget", campaign.DailyBudget.String()),
		)
	}
	return estimated, nil
}

// RefreshTotals summarizes [from, to] and stores the result on the campaign.
// A window mixing observed and estimated days is flagged synthetic.
func (s *CampaignMetricsService) RefreshTotals(ctx context.Context, campaignID uuid.UUID, from, to time.Time) (*advertising.Campaign, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "campaign_metrics", "refresh_totals",
		telemetry.SpanAttrCampaignID, campaignID.String(),
	)
	defer span.End()

	if _, err := advertising.DaysBetween(from, to); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	days, err := s.metricsRepo.FindWindow(ctx, campaignID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load campaign window: %w", err)
	}
	records := make([]advertising.CampaignMetricsRecord, 0, len(days))
	for _, d := range days {
		records = append(records, d.Record)
	}

	totals := advertising.Summarize(records)
	if totals.IsMixed() {
		logger.WithLogger(ctx, s.logger).Warn("Campaign totals mix observed and estimated days",
			zap.String("campaign_id", campaignID.String()),
			zap.Int("observed_days", totals.ObservedDays),
			zap.Int("synthetic_days", totals.SyntheticDays),
		)
	}

	campaign.ApplyTotals(totals, advertising.TruncateDay(from), advertising.TruncateDay(to))
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}
	return campaign, nil
}

// CampaignAlerts evaluates every campaign of the account against the alert thresholds
func (s *CampaignMetricsService) CampaignAlerts(ctx context.Context, accountID uuid.UUID) (advertising.AlertReport, error) {
	campaigns, err := s.campaignRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return advertising.AlertReport{}, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return advertising.BuildAlertReport(campaigns, s.config.Thresholds), nil
}
