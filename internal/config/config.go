package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppName         = "CongoWallet"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultLockTimeout     = 5 * time.Second
	defaultTransferLimit   = 30
	defaultEventsExchange  = "wallet_events"
	developmentJWTSecret   = "development-only-secret"
	environmentDevelopment = "development"
)

// Config captures application runtime configuration. Values come from the
// environment, optionally seeded by a .env file in the working directory.
type Config struct {
	AppName        string        `mapstructure:"APP_NAME"`
	AppEnv         string        `mapstructure:"APP_ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	RabbitMQURL    string        `mapstructure:"RABBITMQ_URL"`
	EventsExchange string        `mapstructure:"EVENTS_EXCHANGE"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	ShutdownPeriod time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	LockTimeout    time.Duration `mapstructure:"LOCK_TIMEOUT"`
	TransferLimit  int           `mapstructure:"TRANSFER_RATE_LIMIT_PER_MINUTE"`
}

var keys = []string{
	"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL",
	"DATABASE_URL", "REDIS_URL", "RABBITMQ_URL", "EVENTS_EXCHANGE",
	"JWT_SECRET", "SHUTDOWN_TIMEOUT", "IDEMPOTENCY_TTL", "LOCK_TIMEOUT",
	"TRANSFER_RATE_LIMIT_PER_MINUTE",
}

// Load reads configuration from the environment and an optional .env file in
// path. Outside development DATABASE_URL, REDIS_URL and JWT_SECRET are
// required; in development missing backends fall back to in-process ones.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", defaultAppName)
	v.SetDefault("APP_ENV", defaultAppEnv)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("EVENTS_EXCHANGE", defaultEventsExchange)
	v.SetDefault("SHUTDOWN_TIMEOUT", defaultShutdownDelay)
	v.SetDefault("IDEMPOTENCY_TTL", defaultIdempotencyTTL)
	v.SetDefault("LOCK_TIMEOUT", defaultLockTimeout)
	v.SetDefault("TRANSFER_RATE_LIMIT_PER_MINUTE", defaultTransferLimit)
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be positive, got %s", c.LockTimeout)
	}
	if c.TransferLimit <= 0 {
		return fmt.Errorf("TRANSFER_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.TransferLimit)
	}
	if c.IsDevelopment() {
		if c.JWTSecret == "" {
			c.JWTSecret = developmentJWTSecret
		}
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == environmentDevelopment
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
