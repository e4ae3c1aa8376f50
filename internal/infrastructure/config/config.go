package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	Telemetry   TelemetryConfig
	Sync        SyncConfig
	Advertising AdvertisingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to export metrics
	CollectorEndpoint string        // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string        // Service name attached to every metric
	Insecure          bool          // Use insecure (non-TLS) connection (development only)
	SamplingRatio     float64       // Fraction of traces sampled, 0..1
	ExportInterval    time.Duration // Metric export interval
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
}

// SyncConfig holds order synchronization settings
type SyncConfig struct {
	BatchSize         int           // Orders loaded per repository batch
	MaxConcurrency    int           // Distinct orders resolved in parallel
	LockBackend       string        // redis, memory
	LockTTL           time.Duration // Per-order lock lifetime
	LockWait          time.Duration // How long to wait for a busy order lock
	LockFallback      bool          // Fall back to in-process locks when Redis is unreachable
	SyntheticFallback bool          // Estimate campaign days the marketplace does not report
}

// AdvertisingConfig holds benchmark constants and alert thresholds.
// Percentages are expressed as 0-100.
type AdvertisingConfig struct {
	SpendRatio            decimal.Decimal
	CTRPercent            decimal.Decimal
	CPC                   decimal.Decimal
	ConversionRatePercent decimal.Decimal
	AverageTicket         decimal.Decimal
	BudgetWarningPercent  decimal.Decimal
	BudgetCriticalPercent decimal.Decimal
	MinROAS               decimal.Decimal
	MinCTRPercent         decimal.Decimal
}

// Benchmarks returns the constants used to estimate unreported campaign days
func (a AdvertisingConfig) Benchmarks() advertising.BenchmarkConfig {
	return advertising.BenchmarkConfig{
		SpendRatio:            a.SpendRatio,
		CTRPercent:            a.CTRPercent,
		CPC:                   a.CPC,
		ConversionRatePercent: a.ConversionRatePercent,
		AverageTicket:         a.AverageTicket,
	}
}

// Thresholds returns the campaign alert thresholds
func (a AdvertisingConfig) Thresholds() advertising.AlertThresholds {
	return advertising.AlertThresholds{
		BudgetWarningPercent:  a.BudgetWarningPercent,
		BudgetCriticalPercent: a.BudgetCriticalPercent,
		MinROAS:               a.MinROAS,
		MinCTRPercent:         a.MinCTRPercent,
	}
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SELLERHUB_ prefix (e.g., SELLERHUB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SELLERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	v.SetDefault("sync.synthetic_fallback", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			SamplingRatio:     1.0,
		},
		Sync: SyncConfig{
			BatchSize:         v.GetInt("sync.batch_size"),
			MaxConcurrency:    v.GetInt("sync.max_concurrency"),
			LockBackend:       v.GetString("sync.lock_backend"),
			LockTTL:           v.GetDuration("sync.lock_ttl"),
			LockWait:          v.GetDuration("sync.lock_wait"),
			LockFallback:      v.GetBool("sync.lock_fallback"),
			SyntheticFallback: v.GetBool("sync.synthetic_fallback"),
		},
	}

	if v.IsSet("telemetry.sampling_ratio") {
		cfg.Telemetry.SamplingRatio = v.GetFloat64("telemetry.sampling_ratio")
	}

	adv, err := loadAdvertising(v)
	if err != nil {
		return nil, err
	}
	cfg.Advertising = adv

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadAdvertising reads decimal settings; blank values are left zero for applyDefaults
func loadAdvertising(v *viper.Viper) (AdvertisingConfig, error) {
	var cfg AdvertisingConfig
	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"advertising.spend_ratio", &cfg.SpendRatio},
		{"advertising.ctr_percent", &cfg.CTRPercent},
		{"advertising.cpc", &cfg.CPC},
		{"advertising.conversion_rate_percent", &cfg.ConversionRatePercent},
		{"advertising.average_ticket", &cfg.AverageTicket},
		{"advertising.budget_warning_percent", &cfg.BudgetWarningPercent},
		{"advertising.budget_critical_percent", &cfg.BudgetCriticalPercent},
		{"advertising.min_roas", &cfg.MinROAS},
		{"advertising.min_ctr_percent", &cfg.MinCTRPercent},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(v.GetString(f.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid decimal %q: %w", f.key, raw, err)
		}
		*f.dst = d
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sellerhub-reconciler"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sellerhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 30 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}

	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 200
	}
	if cfg.Sync.MaxConcurrency == 0 {
		cfg.Sync.MaxConcurrency = 8
	}
	if cfg.Sync.LockBackend == "" {
		cfg.Sync.LockBackend = "memory"
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 30 * time.Second
	}
	if cfg.Sync.LockWait == 0 {
		cfg.Sync.LockWait = 5 * time.Second
	}

	bench := advertising.DefaultBenchmarks()
	alerts := advertising.DefaultAlertThresholds()
	setDecimal(&cfg.Advertising.SpendRatio, bench.SpendRatio)
	setDecimal(&cfg.Advertising.CTRPercent, bench.CTRPercent)
	setDecimal(&cfg.Advertising.CPC, bench.CPC)
	setDecimal(&cfg.Advertising.ConversionRatePercent, bench.ConversionRatePercent)
	setDecimal(&cfg.Advertising.AverageTicket, bench.AverageTicket)
	setDecimal(&cfg.Advertising.BudgetWarningPercent, alerts.BudgetWarningPercent)
	setDecimal(&cfg.Advertising.BudgetCriticalPercent, alerts.BudgetCriticalPercent)
	setDecimal(&cfg.Advertising.MinROAS, alerts.MinROAS)
	setDecimal(&cfg.Advertising.MinCTRPercent, alerts.MinCTRPercent)
}

func setDecimal(dst *decimal.Decimal, def decimal.Decimal) {
	if dst.IsZero() {
		*dst = def
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Sync.LockBackend != "redis" {
			return fmt.Errorf("sync.lock_backend must be 'redis' in production so order locks span processes")
		}
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be within [0, 1]")
	}

	if c.Sync.BatchSize < 0 {
		return fmt.Errorf("sync.batch_size cannot be negative")
	}
	if c.Sync.MaxConcurrency < 0 {
		return fmt.Errorf("sync.max_concurrency cannot be negative")
	}
	switch c.Sync.LockBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("sync.lock_backend must be 'redis' or 'memory', got %q", c.Sync.LockBackend)
	}

	if err := c.Advertising.Benchmarks().Validate(); err != nil {
		return fmt.Errorf("advertising benchmarks: %w", err)
	}
	if c.Advertising.BudgetCriticalPercent.LessThan(c.Advertising.BudgetWarningPercent) {
		return fmt.Errorf("advertising.budget_critical_percent cannot be below advertising.budget_warning_percent")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
