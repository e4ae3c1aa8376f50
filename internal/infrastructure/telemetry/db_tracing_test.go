package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, thresh time.Duration) (*gorm.DB, *sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: thresh,
		DBName:          "sqlite",
		TracerProvider:  tp,
	}, zap.NewNop()))
	return db, tp, sr
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, nil))
	_, installed := db.Plugins["otelgorm"]
	assert.False(t, installed)
}

func TestRegisterDBTracing_RecordsSQLSpans(t *testing.T) {
	db, tp, sr := setupTracedDB(t, time.Hour)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "sync")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "order"}).Error)

	var found tracedRow
	require.NoError(t, db.WithContext(ctx).First(&found, "name = ?", "order").Error)
	parent.End()

	var sqlSpans int
	for _, s := range sr.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			sqlSpans++
			assert.NotEqual(t, codes.Error, s.Status().Code)
		}
	}
	assert.GreaterOrEqual(t, sqlSpans, 2)
}

func TestRegisterDBTracing_MarksSlowQueries(t *testing.T) {
	db, tp, sr := setupTracedDB(t, time.Nanosecond)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "sync")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "slow"}).Error)
	var found tracedRow
	require.NoError(t, db.WithContext(ctx).First(&found, "name = ?", "slow").Error)
	parent.End()

	var slowSpans int
	for _, s := range sr.Ended() {
		if s.Parent().SpanID() != parent.SpanContext().SpanID() {
			continue
		}
		var slow, duration bool
		for _, a := range s.Attributes() {
			switch a.Key {
			case "db.slow_query":
				slow = a.Value.AsBool()
			case "db.query_duration_ms":
				duration = true
			}
		}
		if slow {
			assert.True(t, duration, s.Name())
			slowSpans++
		}
	}
	assert.Equal(t, 2, slowSpans)
}

func TestRegisterDBTracing_FastQueriesAreNotMarked(t *testing.T) {
	db, tp, sr := setupTracedDB(t, time.Hour)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "sync")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "fast"}).Error)
	parent.End()

	var tagged bool
	for _, s := range sr.Ended() {
		for _, a := range s.Attributes() {
			if a.Key == "db.rows_affected" {
				tagged = true
			}
			assert.NotEqual(t, "db.slow_query", string(a.Key))
		}
	}
	assert.True(t, tagged)
}

func TestRegisterDBTracing_RecordsErrors(t *testing.T) {
	db, tp, sr := setupTracedDB(t, time.Hour)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "sync")
	err := db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error
	require.Error(t, err)
	parent.End()

	var failed bool
	for _, s := range sr.Ended() {
		if s.Status().Code == codes.Error {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestRegisterDBTracing_RecordNotFoundIsNotAnError(t *testing.T) {
	db, tp, sr := setupTracedDB(t, time.Hour)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "sync")
	var row tracedRow
	err := db.WithContext(ctx).First(&row, "name = ?", "absent").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	parent.End()

	for _, s := range sr.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			assert.NotEqual(t, codes.Error, s.Status().Code)
		}
	}
}
