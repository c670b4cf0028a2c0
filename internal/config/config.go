// Package config defines all configuration for the matching engine. Config
// is loaded from a YAML file (default: configs/config.yaml) with sensitive
// fields overridable via MATCHCORE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Secondary SecondaryConfig `mapstructure:"secondary"`
	Debug     DebugConfig     `mapstructure:"debug"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MatchingConfig tunes the matching engine's tick cadence and state-machine
// timeouts (spec §5).
type MatchingConfig struct {
	TickInterval           time.Duration `mapstructure:"tick_interval"`
	StartupGrace           time.Duration `mapstructure:"startup_grace"`
	NegotiationTimeout     time.Duration `mapstructure:"negotiation_timeout"`
	ConfirmationTimeout    time.Duration `mapstructure:"confirmation_timeout"`
	HeartbeatExpiry        time.Duration `mapstructure:"heartbeat_expiry"`
	ActiveOrdersFlagTTL    time.Duration `mapstructure:"active_orders_flag_ttl"`
	SnapshotCacheValidity  time.Duration `mapstructure:"snapshot_cache_validity"`
	MaxAdvisorySpreadPct   float64       `mapstructure:"max_advisory_spread_pct"`
}

// SecondaryConfig controls the outbound secondary-notification channel
// (webhook push, rate-limited and retried).
type SecondaryConfig struct {
	WebhookURL     string        `mapstructure:"webhook_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
	Burst          int           `mapstructure:"burst"`
}

// DebugConfig holds basic-auth credentials for the /debug/pprof/* surface.
// middleware.DebugAuth does not read these fields; it takes its credentials
// from the DEBUG_USERNAME / DEBUG_PASSWORD environment variables.
type DebugConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
// Sensitive fields use env vars: MATCHCORE_DATABASE_PASSWORD,
// MATCHCORE_SECONDARY_WEBHOOK_URL, MATCHCORE_DEBUG_USERNAME,
// MATCHCORE_DEBUG_PASSWORD.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("MATCHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "matchcore")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("matching.tick_interval", 5*time.Second)
	v.SetDefault("matching.startup_grace", 10*time.Second)
	v.SetDefault("matching.negotiation_timeout", 30*time.Second)
	v.SetDefault("matching.confirmation_timeout", 60*time.Second)
	v.SetDefault("matching.heartbeat_expiry", 600*time.Second)
	v.SetDefault("matching.active_orders_flag_ttl", 300*time.Second)
	v.SetDefault("matching.snapshot_cache_validity", 30*time.Second)
	v.SetDefault("matching.max_advisory_spread_pct", 20.0)

	v.SetDefault("secondary.timeout", 10*time.Second)
	v.SetDefault("secondary.requests_per_sec", 5.0)
	v.SetDefault("secondary.burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required (set MATCHCORE_DATABASE_PASSWORD)")
	}
	if c.Matching.TickInterval <= 0 {
		return fmt.Errorf("matching.tick_interval must be > 0")
	}
	if c.Matching.MaxAdvisorySpreadPct <= 0 {
		return fmt.Errorf("matching.max_advisory_spread_pct must be > 0")
	}
	return nil
}
