package config

import (
	"time"

	"github.com/seu-repo/ev-charge-scheduler/internal/domain"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Scheduling     SchedulingConfig     `mapstructure:"scheduling"`
}

// VaultConfig locates the HashiCorp Vault mount holding database secrets.
// Address is left empty in most deployments, in which case
// cmd/server/main.go falls back to Database.URL read by pkg/config.Load.
type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// SchedulingConfig configures the EV charging scheduler core.
type SchedulingConfig struct {
	// IntervalMinutes is the discretization length L (spec.md §4.1).
	IntervalMinutes int `mapstructure:"interval_minutes"`

	// Strategy selects the allocator: "first_choice", "most_renewables",
	// or "cheapest_pricing".
	Strategy string `mapstructure:"strategy"`

	// RenewablesOffset and PricingOffset hold a +/- window search bound for
	// the Most-Renewables and Cheapest-Pricing strategies. cmd/server does
	// not pass them on: both strategies run with their default offset of 10.
	RenewablesOffset int `mapstructure:"renewables_offset"`
	PricingOffset    int `mapstructure:"pricing_offset"`

	// ChargerRatesKW maps charger id to maximum charging power (kW).
	ChargerRatesKW map[string]float64 `mapstructure:"charger_rates_kw"`

	// LexTolerance holds a slack for locking a prior lexicographic stage's
	// optimum. It is not read: the optimiser uses its own fixed lexTolerance
	// constant (1e-6).
	LexTolerance float64 `mapstructure:"lex_tolerance"`
}

// RateTable converts the configured charger rates into a domain.ChargerRateTable.
func (s SchedulingConfig) RateTable() domain.ChargerRateTable {
	table := make(domain.ChargerRateTable, len(s.ChargerRatesKW))
	for id, rate := range s.ChargerRatesKW {
		table[id] = rate
	}
	return table
}

// DefaultSchedulingConfig returns the teacher's usual 15-minute interval
// default with First-Choice allocation.
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		IntervalMinutes:  15,
		Strategy:         "first_choice",
		RenewablesOffset: 10,
		PricingOffset:    10,
		ChargerRatesKW:   map[string]float64{},
		LexTolerance:     1e-6,
	}
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Output   string          `mapstructure:"output"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	ByUser      bool          `mapstructure:"by_user"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

