package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at process start
// by LoadConfig and passed explicitly to the components that need it.
type Config struct {
	DatabaseURL string
	// StripeSecretKey falls back to StripeTestSecretKey; empty means billing is unconfigured.
	StripeSecretKey     string
	StripeTestSecretKey string
	// StripeWebhookSecret empty switches the webhook endpoint to unverified JSON decoding (dev only).
	StripeWebhookSecret string
	// StripeSubscriberMetadataKey is the customer/session metadata key holding the local user id.
	StripeSubscriberMetadataKey string
	StripeTimeout               string
	FrontendURL                 string
	LoginURL                    string
	SessionSecret               string
	AppEnv                      string
	LogLevel                    string
	AutoMigrate                 string
	// Optional: base URL for running remote HTTP integration tests (e.g., https://api.example.com)
	IntegrationBaseURL string
	// Server ports
	HTTPPort string
	GRPCPort string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{}

	// Try to load .env file from current directory and parent directories
	currentDir, _ := os.Getwd()
	for currentDir != "/" && currentDir != "." {
		envPath := filepath.Join(currentDir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load .env file: %v", err)
			}
			break
		}
		currentDir = filepath.Dir(currentDir)
	}

	vars := []struct {
		name     string
		envVar   string
		display  string
		required bool
	}{
		{"DatabaseURL", "DATABASE_URL", "Database URL", true},
		{"StripeSecretKey", "STRIPE_SECRET_KEY", "Stripe Secret Key", false},
		{"StripeTestSecretKey", "STRIPE_TEST_SECRET_KEY", "Stripe Test Secret Key", false},
		{"StripeWebhookSecret", "STRIPE_WEBHOOK_SECRET", "Stripe Webhook Secret", false},
		{"StripeSubscriberMetadataKey", "STRIPE_SUBSCRIBER_METADATA_KEY", "Stripe Subscriber Metadata Key", false},
		{"StripeTimeout", "STRIPE_TIMEOUT", "Stripe Timeout", false},
		{"FrontendURL", "FRONTEND_URL", "Frontend URL", false},
		{"LoginURL", "LOGIN_URL", "Login URL", false},
		{"SessionSecret", "SESSION_SECRET", "Session Secret", false},
		{"AppEnv", "APP_ENV", "App Environment", false},
		{"LogLevel", "LOG_LEVEL", "Log Level", false},
		{"AutoMigrate", "AUTO_MIGRATE", "Auto Migrate", false},
		{"IntegrationBaseURL", "INTEGRATION_BASE_URL", "Integration Base URL", false},
		{"HTTPPort", "PORT", "HTTP Port", false},
		{"GRPCPort", "GRPC_PORT", "gRPC Port", false},
	}

	for _, v := range vars {
		value := strings.TrimSpace(os.Getenv(v.envVar))
		if v.required && value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", v.display)
		}
		configField := reflect.ValueOf(config).Elem().FieldByName(v.name)
		configField.SetString(value)
	}

	// Defaults
	if config.StripeSecretKey == "" {
		config.StripeSecretKey = config.StripeTestSecretKey
	}
	if config.StripeSubscriberMetadataKey == "" {
		config.StripeSubscriberMetadataKey = DefaultSubscriberMetadataKey
	}
	if config.FrontendURL == "" {
		config.FrontendURL = "http://localhost:4000"
	}
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	if config.LoginURL == "" {
		config.LoginURL = "/accounts/login/"
	}
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}
	if config.GRPCPort == "" {
		config.GRPCPort = "50051"
	}

	if config.IsProduction() && config.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: Stripe Webhook Secret (APP_ENV=production)")
	}
	if config.IsProduction() && config.SessionSecret == "" {
		return nil, fmt.Errorf("missing required environment variable: Session Secret (APP_ENV=production)")
	}

	return config, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// StripeConfigured reports whether a Stripe secret key is available.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

// StripeRequestTimeout parses StripeTimeout. Returns DefaultStripeTimeout if unset or invalid.
func (c *Config) StripeRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.StripeTimeout)
	if err != nil || d <= 0 {
		return DefaultStripeTimeout
	}
	return d
}

// MigrateOnStart reports whether AUTO_MIGRATE is a true value.
func (c *Config) MigrateOnStart() bool {
	b, err := strconv.ParseBool(c.AutoMigrate)
	return err == nil && b
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
