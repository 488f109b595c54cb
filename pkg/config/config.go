package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
	Mail     MailConfig
	Uploads  UploadsConfig
	Pricing  PricingConfig
	Wizard   WizardConfig
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds SQL database configuration
type DatabaseConfig struct {
	Driver string // sqlite3 or postgres
	DSN    string
}

// RedisConfig holds Redis configuration. An empty Addr keeps wizard
// sessions in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CheckoutConfig holds hosted-payment configuration. An empty
// WebhookSecret disables webhook signature verification.
type CheckoutConfig struct {
	BaseURL       string
	WebhookSecret string
}

// MailConfig holds SMTP and addressing configuration
type MailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	From          string
	OperatorEmail string
}

// UploadsConfig holds asset storage configuration
type UploadsConfig struct {
	Type string // filesystem or s3

	// Filesystem
	Root string

	// S3
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// PricingConfig holds price-table configuration. An empty File uses the
// built-in table.
type PricingConfig struct {
	File  string
	Watch bool
}

// WizardConfig holds intake wizard configuration
type WizardConfig struct {
	SessionTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("STUDIO_HOST", "0.0.0.0"),
			Port:            getEnv("STUDIO_PORT", "8080"),
			ReadTimeout:     getEnvDuration("STUDIO_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("STUDIO_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("STUDIO_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("STUDIO_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("STUDIO_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Driver: getEnv("STUDIO_DB_DRIVER", "sqlite3"),
			DSN:    getEnv("STUDIO_DB_DSN", "studio.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("STUDIO_REDIS_ADDR", ""),
			Password: getEnv("STUDIO_REDIS_PASSWORD", ""),
			DB:       getEnvInt("STUDIO_REDIS_DB", 0),
		},
		Checkout: CheckoutConfig{
			BaseURL:       getEnv("STUDIO_CHECKOUT_BASE_URL", "https://pay.example.com"),
			WebhookSecret: getEnv("STUDIO_CHECKOUT_WEBHOOK_SECRET", ""),
		},
		Mail: MailConfig{
			SMTPHost:      getEnv("STUDIO_SMTP_HOST", "localhost"),
			SMTPPort:      getEnvInt("STUDIO_SMTP_PORT", 587),
			SMTPUsername:  getEnv("STUDIO_SMTP_USERNAME", ""),
			SMTPPassword:  getEnv("STUDIO_SMTP_PASSWORD", ""),
			From:          getEnv("STUDIO_MAIL_FROM", "noreply@pixelforge.studio"),
			OperatorEmail: getEnv("STUDIO_OPERATOR_EMAIL", "hello@pixelforge.studio"),
		},
		Uploads: UploadsConfig{
			Type:        getEnv("STUDIO_UPLOADS_TYPE", "filesystem"),
			Root:        getEnv("STUDIO_UPLOADS_ROOT", "./uploads"),
			S3Bucket:    getEnv("STUDIO_S3_BUCKET", ""),
			S3Region:    getEnv("STUDIO_S3_REGION", "us-east-1"),
			S3Prefix:    getEnv("STUDIO_S3_PREFIX", "uploads"),
			S3Endpoint:  getEnv("STUDIO_S3_ENDPOINT", ""),
			S3AccessKey: getEnv("STUDIO_S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("STUDIO_S3_SECRET_KEY", ""),
		},
		Pricing: PricingConfig{
			File:  getEnv("STUDIO_PRICING_FILE", ""),
			Watch: getEnvBool("STUDIO_PRICING_WATCH", false),
		},
		Wizard: WizardConfig{
			SessionTTL: getEnvDuration("STUDIO_WIZARD_SESSION_TTL", 24*time.Hour),
		},
		LogLevel: getEnv("STUDIO_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite3 or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	switch c.Uploads.Type {
	case "filesystem":
		if c.Uploads.Root == "" {
			return fmt.Errorf("uploads root is required for filesystem uploads")
		}
	case "s3":
		if c.Uploads.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 uploads")
		}
	default:
		return fmt.Errorf("invalid uploads type: %s (must be filesystem or s3)", c.Uploads.Type)
	}

	if c.Checkout.BaseURL == "" {
		return fmt.Errorf("checkout base URL is required")
	}
	if c.Mail.OperatorEmail == "" {
		return fmt.Errorf("operator email is required")
	}
	if c.Wizard.SessionTTL <= 0 {
		return fmt.Errorf("wizard session TTL must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
