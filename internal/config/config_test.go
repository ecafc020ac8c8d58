package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "agrodepot", cfg.MongoDB.DBName)
	assert.Equal(t, 15, cfg.Alerts.TimeoutSeconds)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.ReportSchedule)
	assert.Equal(t, "30 * * * *", cfg.Reporting.ReconcileSchedule)
	assert.Equal(t, "0 7 * * *", cfg.Reporting.LowStockSchedule)
	assert.Equal(t, "Inventory!A:H", cfg.Sheets.ReportRange)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DB_NAME", "agrodepot_test")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/stock")
	t.Setenv("ALERT_TIMEOUT_SECONDS", "5")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "agrodepot_test", cfg.MongoDB.DBName)
	assert.Equal(t, 5, cfg.Alerts.TimeoutSeconds)
	assert.True(t, cfg.AlertsEnabled())
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoadIgnoresUnparsableInt(t *testing.T) {
	t.Setenv("ALERT_TIMEOUT_SECONDS", "soon")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Alerts.TimeoutSeconds)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Server: ServerConfig{Port: "8080"},
		Alerts: AlertsConfig{TimeoutSeconds: 15},
		Reporting: ReportingConfig{
			ReportSchedule:    "0 20 * * *",
			ReconcileSchedule: "30 * * * *",
			LowStockSchedule:  "0 7 * * *",
		},
	}
	assert.NoError(t, valid.Validate())

	missingPort := *valid
	missingPort.Server.Port = ""
	assert.Error(t, missingPort.Validate())

	mongoWithoutDB := *valid
	mongoWithoutDB.MongoDB = MongoDBConfig{URI: "mongodb://localhost:27017"}
	assert.Error(t, mongoWithoutDB.Validate())

	sheetsWithoutID := *valid
	sheetsWithoutID.Sheets = SheetsConfig{CredentialsPath: "/etc/creds.json"}
	assert.Error(t, sheetsWithoutID.Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
