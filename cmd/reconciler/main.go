package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/application/reconciliation"
	"github.com/sellerhub/backend/internal/infrastructure/config"
	"github.com/sellerhub/backend/internal/infrastructure/lock"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/marketplace"
	"github.com/sellerhub/backend/internal/infrastructure/persistence"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const meterName = "github.com/sellerhub/backend/reconciler"

func main() {
	var (
		inputPath   string
		autoMigrate bool
		fromDate    string
		toDate      string
	)

	flag.StringVar(&inputPath, "input", "", "Path to the JSON sync batch to reconcile")
	flag.BoolVar(&autoMigrate, "automigrate", false, "Create or update tables before running (local use)")
	flag.StringVar(&fromDate, "from", "", "First day of the campaign window (YYYY-MM-DD)")
	flag.StringVar(&toDate, "to", "", "Last day of the campaign window (YYYY-MM-DD)")
	flag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: reconciler -input batch.json [-automigrate] [-from YYYY-MM-DD -to YYYY-MM-DD]")
		os.Exit(2)
	}
	w, err := parseWindow(fromDate, toDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewFromSettings(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	ctx = logger.WithSyncRunID(ctx, runID)

	log.Info("Starting reconciler",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("sync_run_id", runID),
		zap.String("input", inputPath),
	)

	if err := execute(ctx, cfg, log, inputPath, autoMigrate, w); err != nil {
		log.Error("Reconciliation failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func execute(ctx context.Context, cfg *config.Config, log *zap.Logger, inputPath string, autoMigrate bool, w window) error {
	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = tracerProvider.Shutdown(context.WithoutCancel(ctx))
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = meterProvider.Shutdown(context.WithoutCancel(ctx))
	}()

	metrics, err := telemetry.NewReconciliationMetrics(telemetry.ReconciliationMetricsConfig{
		Meter:  meterProvider.Meter(meterName),
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("failed to enable database tracing: %w", err)
	}

	if autoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
		log.Info("Database schema migrated")
	}

	// Order locks
	locker, err := lock.NewFactory(cfg.Sync, cfg.Redis,
		lock.WithLogger(log),
		lock.WithInMemoryFallback(cfg.Sync.LockFallback),
	).Create()
	if err != nil {
		return err
	}
	defer locker.Close()

	// Input
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	batch, err := marketplace.DecodeSyncBatch(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	r := newRunner(db, locker, metrics, log, cfg)
	summary, err := r.run(ctx, batch, w)
	logger.WithLogger(ctx, log).Info("Reconciliation run finished", summary.fields()...)
	if err != nil {
		return err
	}
	if summary.failed() {
		return fmt.Errorf("%d items could not be reconciled",
			summary.OrdersRejected+summary.OrdersFailed+summary.CampaignsFailed+summary.ChargesFailed)
	}
	return nil
}

// newRunner builds the repositories and services over one database
func newRunner(db *persistence.Database, locker lock.OrderLocker, metrics *telemetry.ReconciliationMetrics, log *zap.Logger, cfg *config.Config) *runner {
	orderRepo := persistence.NewGormMarketplaceOrderRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	campaignMetricsRepo := persistence.NewGormCampaignMetricsRepository(db.DB)
	chargeRepo := persistence.NewGormBillingChargeRepository(db.DB)

	orderCfg := reconciliation.DefaultOrderStatusServiceConfig()
	orderCfg.LockTTL = cfg.Sync.LockTTL
	orderCfg.MaxConcurrency = cfg.Sync.MaxConcurrency

	campaignCfg := reconciliation.CampaignMetricsServiceConfig{
		Benchmarks:        cfg.Advertising.Benchmarks(),
		Thresholds:        cfg.Advertising.Thresholds(),
		SyntheticFallback: cfg.Sync.SyntheticFallback,
	}

	return &runner{
		orders:    reconciliation.NewOrderStatusService(orderRepo, locker, metrics, log, orderCfg),
		campaigns: reconciliation.NewCampaignMetricsService(campaignRepo, campaignMetricsRepo, metrics, log, campaignCfg),
		costs:     reconciliation.NewAdvertisingCostService(chargeRepo, orderRepo, metrics, log),
		logger:    log,
	}
}
