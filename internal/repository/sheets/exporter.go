package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/agrodepot/internal/config"
	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// Exporter mirrors inventory reports into a Google Sheet, one row per
// warehouse snapshot.
type Exporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	reportRange   string
	logger        *zap.Logger
}

// NewExporter builds a Google Sheets backed report exporter.
func NewExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Exporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		reportRange:   cfg.ReportRange,
		logger:        logger,
	}, nil
}

// AppendReport appends one row per warehouse to the configured range:
// date, warehouse, stock, capacity, fill rate, low-stock flag, ledger
// figure and drift.
func (e *Exporter) AppendReport(ctx context.Context, report models.InventoryReport) error {
	if len(report.Warehouses) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(report.Warehouses))
	date := report.Date.Format("2006-01-02")
	for _, snapshot := range report.Warehouses {
		rows = append(rows, []interface{}{
			date,
			snapshot.WarehouseName,
			snapshot.StockKg,
			snapshot.CapacityKg,
			fmt.Sprintf("%.1f%%", snapshot.FillRate),
			snapshot.LowStock,
			snapshot.LedgerKg,
			snapshot.DriftKg,
		})
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, e.reportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report rows into range %s: %w", e.reportRange, err)
	}

	e.logger.Debug("report exported to sheet",
		zap.String("range", e.reportRange),
		zap.Int("rows", len(rows)))
	return nil
}
