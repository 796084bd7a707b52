package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	StoreDriver   string        `envconfig:"STORE_DRIVER"    default:"memory"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	RedisPrefix   string        `envconfig:"REDIS_PREFIX"    default:"grouporder"`
	HTTPPort      string        `envconfig:"HTTP_PORT"       default:":8080"`
	GrpcPort      string        `envconfig:"GRPC_PORT"       default:":50051"`
	LogLevel      string        `envconfig:"LOG_LEVEL"       default:"info"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL"     default:"24h"`
}

var (
	config  Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads an optional .env file, then the environment. The result is
// cached for the life of the process.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		var cfg *Config
		cfg, loadErr = FromEnv()
		if loadErr != nil {
			return
		}
		config = *cfg

		logger.Infof("Configuration loaded: Store=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
			config.StoreDriver, config.HTTPPort, config.GrpcPort, config.LogLevel)
		if config.RedisURL != "" {
			logger.Info("Configuration loaded: RedisURL is set")
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &config, nil
}

// FromEnv processes the environment without caching.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("configuration error: DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("configuration error: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("configuration error: SESSION_TTL must be positive")
	}
	return nil
}
