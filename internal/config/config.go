// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

// ErrEmailRequired rejects production configs that would log reset links
var ErrEmailRequired = errors.New("invalid configuration: SES_FROM_EMAIL is required in production")

// Config is the full server configuration
type Config struct {
	Port        string `envconfig:"PORT" default:"5001"`
	Environment string `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE" default:"server.log"`

	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Email    EmailConfig
	Tracing  TracingConfig

	ClientURL string `envconfig:"CLIENT_URL" default:"http://localhost:5173" validate:"required,url"`

	StatusTTL           time.Duration `envconfig:"STATUS_TTL" default:"24h" validate:"gt=0"`
	StatusSweepInterval time.Duration `envconfig:"STATUS_SWEEP_INTERVAL" default:"10m" validate:"gt=0"`
	MessageEditWindow   time.Duration `envconfig:"MESSAGE_EDIT_WINDOW" default:"5m" validate:"gt=0"`

	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"300" validate:"gt=0"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m" validate:"gt=0"`
}

// DatabaseConfig selects the driver and connection
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	URL        string `envconfig:"DATABASE_URL"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       string `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD"`
	Name       string `envconfig:"DB_NAME" default:"chat"`
	SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"chat.db"`
}

// AuthConfig holds JWT session settings
type AuthConfig struct {
	JWTSecret    string        `envconfig:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL     time.Duration `envconfig:"JWT_EXPIRES_IN" default:"360h" validate:"gt=0"`
	CookieDomain string        `envconfig:"COOKIE_DOMAIN"`
}

// RedisConfig is optional; an empty host disables Redis
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
}

// StorageConfig selects S3 when a bucket is set, local disk otherwise
type StorageConfig struct {
	Region    string `envconfig:"AWS_REGION" default:"us-east-1"`
	Bucket    string `envconfig:"AWS_BUCKET"`
	CDNURL    string `envconfig:"CDN_BASE_URL"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:5001"`
}

// EmailConfig enables SES when a sender is configured
type EmailConfig struct {
	Region   string `envconfig:"SES_REGION"`
	From     string `envconfig:"SES_FROM_EMAIL" validate:"omitempty,email"`
	FromName string `envconfig:"SES_FROM_NAME" default:"Chat"`
}

// TracingConfig controls OpenTelemetry export
type TracingConfig struct {
	Enabled      bool    `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint     string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
	SamplingRate float64 `envconfig:"OTEL_SAMPLING_RATE" default:"1.0" validate:"gte=0,lte=1"`
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings. The migrate and seed tools
// use it so they run without auth or storage configuration.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	var db DatabaseConfig
	if err := envconfig.Process("", &db); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := validate.Struct(db); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	return &db, nil
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && !c.Email.Enabled() {
		return ErrEmailRequired
	}
	return nil
}

// IsProduction reports whether cookies must be Secure and the like
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DSN returns the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Enabled reports whether a Redis host is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// UseS3 reports whether uploads go to S3
func (s StorageConfig) UseS3() bool {
	return s.Bucket != ""
}

// Enabled reports whether SES delivery is configured
func (e EmailConfig) Enabled() bool {
	return e.From != ""
}
