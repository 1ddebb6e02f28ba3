// Package config loads astroquiz configuration from the environment, with an
// optional .env file layered underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/astroquiz/astroquiz/pkg/logger"
)

// Backend names accepted in ASTROQUIZ_DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host            string        `env:"ASTROQUIZ_HOST,default=0.0.0.0"`
	Port            int           `env:"ASTROQUIZ_PORT,default=5000"`
	ReadTimeout     time.Duration `env:"ASTROQUIZ_READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"ASTROQUIZ_WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout time.Duration `env:"ASTROQUIZ_SHUTDOWN_TIMEOUT,default=10s"`
	StaticDir       string        `env:"ASTROQUIZ_STATIC_DIR"`
}

// DatabaseConfig selects the storage backend. An empty driver means memory.
type DatabaseConfig struct {
	Driver          string        `env:"ASTROQUIZ_DB_DRIVER,default=memory"`
	DSN             string        `env:"ASTROQUIZ_DB_DSN"`
	MaxOpenConns    int           `env:"ASTROQUIZ_DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int           `env:"ASTROQUIZ_DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"ASTROQUIZ_DB_CONN_MAX_LIFETIME,default=30m"`
	MigrateOnStart  bool          `env:"ASTROQUIZ_DB_MIGRATE,default=true"`
}

type LoggingConfig struct {
	Level  string `env:"ASTROQUIZ_LOG_LEVEL,default=info"`
	Format string `env:"ASTROQUIZ_LOG_FORMAT,default=text"`
	Output string `env:"ASTROQUIZ_LOG_OUTPUT,default=stdout"`
}

// CORSConfig lists allowed browser origins, comma separated.
type CORSConfig struct {
	AllowedOrigins string `env:"ASTROQUIZ_CORS_ALLOWED_ORIGINS"`
}

// RateLimitConfig bounds requests per client. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `env:"ASTROQUIZ_RATE_LIMIT_RPS,default=0"`
	Burst int     `env:"ASTROQUIZ_RATE_LIMIT_BURST,default=20"`
}

// Load reads envFile (when non-empty, it must exist) or ./.env (when present),
// then decodes the environment. Variables already set win over file values.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("postgres driver requires ASTROQUIZ_DB_DSN")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimit.Burst)
	}
	return nil
}

// Addr is the listen address built from host and port.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits the configured origin list.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Logger converts to the logger package's settings.
func (c LoggingConfig) Logger() logger.LoggingConfig {
	return logger.LoggingConfig{Level: c.Level, Format: c.Format, Output: c.Output}
}
