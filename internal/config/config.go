package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Alerts    AlertsConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for the MongoDB store. When URI is
// empty the service falls back to the in-memory store (useful for
// local development and demos).
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AlertsConfig configures the outbound webhook used for low-stock and
// stock-drift notifications. Empty WebhookURL disables alerting.
type AlertsConfig struct {
	WebhookURL     string
	AuthToken      string
	TimeoutSeconds int
}

// ReportingConfig holds the scheduler cron expressions.
type ReportingConfig struct {
	ReportSchedule    string
	ReconcileSchedule string
	LowStockSchedule  string
}

// SheetsConfig configures the optional Google Sheets report export.
// Empty CredentialsPath disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ReportRange     string
}

// Load reads environment variables (optionally from the provided file)
// and materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes
		// from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agrodepot"),
		},
		Alerts: AlertsConfig{
			WebhookURL:     os.Getenv("ALERT_WEBHOOK_URL"),
			AuthToken:      os.Getenv("ALERT_WEBHOOK_TOKEN"),
			TimeoutSeconds: getenvIntWithDefault("ALERT_TIMEOUT_SECONDS", 15),
		},
		Reporting: ReportingConfig{
			ReportSchedule:    getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			ReconcileSchedule: getenvWithDefault("RECONCILE_CRON_SCHEDULE", "30 * * * *"),
			LowStockSchedule:  getenvWithDefault("LOWSTOCK_CRON_SCHEDULE", "0 7 * * *"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			ReportRange:     getenvWithDefault("GOOGLE_SHEET_REPORT_RANGE", "Inventory!A:H"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if c.Alerts.TimeoutSeconds <= 0 {
		return errors.New("ALERT_TIMEOUT_SECONDS must be positive")
	}

	switch {
	case c.Reporting.ReportSchedule == "":
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	case c.Reporting.ReconcileSchedule == "":
		return errors.New("RECONCILE_CRON_SCHEDULE must be provided")
	case c.Reporting.LowStockSchedule == "":
		return errors.New("LOWSTOCK_CRON_SCHEDULE must be provided")
	}

	if c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided when sheets export is enabled")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != ""
}

// AlertsEnabled reports whether the alert webhook is configured.
func (c *Config) AlertsEnabled() bool {
	return c.Alerts.WebhookURL != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
