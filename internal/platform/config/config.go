package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Audit relay targets.
const (
	RelayNone  = "none"
	RelayKafka = "kafka"
	RelayAMQP  = "amqp"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string `env:"LEVY_ADDR" envDefault:":8080"`
	Store    string `env:"LEVY_STORE" envDefault:"memory"`
	Timezone string `env:"LEVY_TIMEZONE" envDefault:"UTC"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"levy.db"`

	// AgentJWTSigningKey verifies HS256 bearer tokens issued to field agents.
	// Token issuance happens elsewhere.
	AgentJWTSigningKey string `env:"AGENT_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	AgentJWTIssuer     string `env:"AGENT_JWT_ISSUER" envDefault:"levy-identity"`
	AgentJWTAudience   string `env:"AGENT_JWT_AUDIENCE" envDefault:"levy-gateway"`
	AdminToken         string `env:"ADMIN_TOKEN" envDefault:"dev-admin-token"`

	// Scans allowed per agent inside AgentScanWindow. Zero disables the limit.
	AgentScanLimit  int           `env:"AGENT_SCAN_RATE_LIMIT" envDefault:"120"`
	AgentScanWindow time.Duration `env:"AGENT_SCAN_RATE_WINDOW" envDefault:"1m"`

	HTTP      HTTPConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
	Audit     AuditRelayConfig

	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	loc *time.Location
}

// Location is the parsed Timezone. Billing windows are computed in it.
func (c Server) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// HTTPConfig bounds connection lifetimes and the shutdown drain.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// RedisConfig configures the dashboard cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// DashboardConfig controls background precomputation.
type DashboardConfig struct {
	RefreshInterval time.Duration `env:"DASHBOARD_REFRESH_INTERVAL" envDefault:"5m"`
	CacheTTL        time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"10m"`
}

// AuditRelayConfig selects where outbox entries are forwarded.
type AuditRelayConfig struct {
	Relay        string   `env:"AUDIT_RELAY" envDefault:"none"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"levy.audit"`
	AMQPURL      string   `env:"AMQP_URL"`
	AMQPExchange string   `env:"AMQP_EXCHANGE" envDefault:"levy_audit"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Server{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.loc = loc
	return cfg, nil
}

func (c Server) validate() error {
	switch strings.ToLower(c.Store) {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEVY_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown LEVY_STORE %q", c.Store)
	}

	switch strings.ToLower(c.Audit.Relay) {
	case RelayNone:
	case RelayKafka:
		if len(c.Audit.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when AUDIT_RELAY=kafka")
		}
	case RelayAMQP:
		if c.Audit.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required when AUDIT_RELAY=amqp")
		}
	default:
		return fmt.Errorf("unknown AUDIT_RELAY %q", c.Audit.Relay)
	}
	if c.Audit.Relay != RelayNone && strings.ToLower(c.Store) != StorePostgres {
		return fmt.Errorf("AUDIT_RELAY requires LEVY_STORE=postgres")
	}
	if c.AgentScanLimit > 0 && c.AgentScanWindow <= 0 {
		return fmt.Errorf("AGENT_SCAN_RATE_WINDOW must be positive")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Dashboard.RefreshInterval <= 0 {
		return fmt.Errorf("DASHBOARD_REFRESH_INTERVAL must be positive")
	}
	return nil
}
