package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Auth modes.
const (
	AuthModeMock   = "mock"
	AuthModeRemote = "remote"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKV     = "kv"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionEventBuffer sizes the session-expired event queue.
	SessionEventBuffer int `env:"SESSION_EVENT_BUFFER, default=64"`

	Backend BackendConfig
	Geo     GeoConfig
	Auth    AuthConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	BaseURL    string `env:"BACKEND_BASE_URL,    default=http://localhost:5000/api"`
	StrictJSON bool   `env:"BACKEND_STRICT_JSON, default=false"`
	// Timeout of zero leaves requests without a deadline.
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=0s"`
}

type GeoConfig struct {
	BaseURL   string  `env:"GEO_BASE_URL,   default=https://rwanda.p.rapidapi.com"`
	Host      string  `env:"GEO_API_HOST,   default=rwanda.p.rapidapi.com"`
	Key       string  `env:"GEO_API_KEY"`
	FanoutRPS float64 `env:"GEO_FANOUT_RPS, default=5"`
}

type AuthConfig struct {
	Mode          string        `env:"AUTH_MODE,           default=mock"`
	SessionSecret string        `env:"AUTH_SESSION_SECRET, default=dev-session-secret"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL,      default=24h"`
}

type StorageConfig struct {
	// Driver backs the token store and the persisted session.
	Driver string `env:"STORAGE_DRIVER,   default=memory"`
	// DirectoryDriver backs the mock user directory.
	DirectoryDriver string `env:"DIRECTORY_DRIVER, default=kv"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=agrisure_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=portal:"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown enumerations and settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeMock:
		if strings.TrimSpace(c.Auth.SessionSecret) == "" {
			return fmt.Errorf("config: AUTH_SESSION_SECRET is required in %s mode", AuthModeMock)
		}
	case AuthModeRemote:
	default:
		return fmt.Errorf("config: AUTH_MODE must be %q or %q, got %q", AuthModeMock, AuthModeRemote, c.Auth.Mode)
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %q or %q, got %q", DriverMemory, DriverRedis, c.Storage.Driver)
	}

	switch c.Storage.DirectoryDriver {
	case DriverKV, DriverMongo:
	default:
		return fmt.Errorf("config: DIRECTORY_DRIVER must be %q or %q, got %q", DriverKV, DriverMongo, c.Storage.DirectoryDriver)
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("config: BACKEND_TIMEOUT must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}
