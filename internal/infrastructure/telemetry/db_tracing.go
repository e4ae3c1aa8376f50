package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls SQL spans.
type DBTracingConfig struct {
	Enabled         bool
	SlowQueryThresh time.Duration
	DBName          string
	// IncludeVariables puts bound query values into span statements. Local only.
	IncludeVariables bool
	// TracerProvider overrides the global provider
	TracerProvider trace.TracerProvider
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that tag
// slow statements and record errors on the SQL span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.IncludeVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := &sqlSpanCallback{slowThresh: cfg.SlowQueryThresh}
	if err := cb.register(db); err != nil {
		return err
	}

	logger.Info("database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type sqlSpanCallback struct {
	slowThresh time.Duration
}

// register hooks around each gorm operation. The after hooks must run before
// otelgorm's own after hooks, which end the span.
func (c *sqlSpanCallback) register(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("sellerhub:before_create", c.before) },
		func() error { return cb.Query().Before("gorm:query").Register("sellerhub:before_query", c.before) },
		func() error { return cb.Update().Before("gorm:update").Register("sellerhub:before_update", c.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("sellerhub:before_delete", c.before) },
		func() error { return cb.Row().Before("gorm:row").Register("sellerhub:before_row", c.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("sellerhub:before_raw", c.before) },
		func() error { return cb.Create().After("gorm:create").Before("otel:after:create").Register("sellerhub:after_create", c.after) },
		func() error { return cb.Query().After("gorm:query").Before("otel:after:select").Register("sellerhub:after_query", c.after) },
		func() error { return cb.Update().After("gorm:update").Before("otel:after:update").Register("sellerhub:after_update", c.after) },
		func() error { return cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("sellerhub:after_delete", c.after) },
		func() error { return cb.Row().After("gorm:row").Before("otel:after:row").Register("sellerhub:after_row", c.after) },
		func() error { return cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("sellerhub:after_raw", c.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (c *sqlSpanCallback) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (c *sqlSpanCallback) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || c.slowThresh <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > c.slowThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
