package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "book-discovery"
	defaultServicePort  = 8095
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "book_discovery"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"

	defaultMinScore     = 0.1
	defaultMaxPeers     = 50
	defaultLimit        = 5
	defaultMaxLimit     = 10
	defaultFallbackSize = 10

	defaultLoanBufferSize     = 1000
	defaultLoanFlushThreshold = 100
	defaultLoanFlushIntervalS = 1

	defaultMaxRequestsPerMinute = 60
	defaultWindowSeconds        = 60
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name               string        `yaml:"name"`
	Version            string        `yaml:"version"`
	Port               int           `env:"BOOK_DISCOVERY_PORT" yaml:"port"`
	Debug              bool          `env:"APP_DEBUG"           yaml:"debug"`
	LoanBufferSize     int           `yaml:"loan_buffer_size"`
	LoanFlushInterval  time.Duration `yaml:"loan_flush_interval"`
	LoanFlushThreshold int           `yaml:"loan_flush_threshold"`
}

// DiscoveryConfig holds recommendation tuning knobs.
type DiscoveryConfig struct {
	// MinScore is the Jaccard similarity a peer must reach to count.
	MinScore float64 `env:"DISCOVERY_MIN_SCORE" yaml:"min_score"`
	// MaxPeers caps how many qualifying peers feed aggregation.
	MaxPeers int `yaml:"max_peers"`
	// DefaultLimit is the recommendation count when the request omits one.
	DefaultLimit int `yaml:"default_limit"`
	// MaxLimit is the hard cap on the recommendation count.
	MaxLimit int `yaml:"max_limit"`
	// FallbackSize is how many rows the popularity fallbacks fetch.
	FallbackSize int `yaml:"fallback_size"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_BOOK_DISCOVERY_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_BOOK_DISCOVERY_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_BOOK_DISCOVERY_USER"     yaml:"user"`
	Password string `env:"POSTGRES_BOOK_DISCOVERY_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_BOOK_DISCOVERY_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_BOOK_DISCOVERY_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
	WindowSeconds        int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return load(path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDiscoveryDefaults(&cfg.Discovery)
	setDatabaseDefaults(&cfg.Database)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

// setServiceDefaults applies default values to ServiceConfig.
func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.LoanBufferSize == 0 {
		svc.LoanBufferSize = defaultLoanBufferSize
	}
	if svc.LoanFlushInterval == 0 {
		svc.LoanFlushInterval = defaultLoanFlushIntervalS * time.Second
	}
	if svc.LoanFlushThreshold == 0 {
		svc.LoanFlushThreshold = defaultLoanFlushThreshold
	}
}

// setDiscoveryDefaults applies default values to DiscoveryConfig.
func setDiscoveryDefaults(d *DiscoveryConfig) {
	if d.MinScore == 0 {
		d.MinScore = defaultMinScore
	}
	if d.MaxPeers == 0 {
		d.MaxPeers = defaultMaxPeers
	}
	if d.DefaultLimit == 0 {
		d.DefaultLimit = defaultLimit
	}
	if d.MaxLimit == 0 {
		d.MaxLimit = defaultMaxLimit
	}
	if d.FallbackSize == 0 {
		d.FallbackSize = defaultFallbackSize
	}
}

// setDatabaseDefaults applies default values to DatabaseConfig.
func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

// setRateLimitDefaults applies default values to RateLimitConfig.
func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxRequestsPerMinute == 0 {
		rl.MaxRequestsPerMinute = defaultMaxRequestsPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

// setLoggingDefaults applies default values to LoggingConfig.
func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Discovery.MinScore < 0 || c.Discovery.MinScore > 1 {
		return &ValidationError{
			Field:   "discovery.min_score",
			Message: "must be between 0 and 1",
		}
	}
	if c.Discovery.DefaultLimit > c.Discovery.MaxLimit {
		return &ValidationError{
			Field:   "discovery.default_limit",
			Message: "must not exceed discovery.max_limit",
		}
	}
	return nil
}
