// Package reporting aggregates the warehouse network state into
// periodic inventory reports: cached stock, fill rates, low-stock
// flags and the drift between the cached counters and the ledger.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// InventoryAuditor is the slice of the inventory core the reporter
// needs: the ledger-vs-counter comparison per warehouse.
type InventoryAuditor interface {
	CheckConsistency(ctx context.Context, warehouseID string) (*models.ConsistencyReport, error)
}

// ReportSink persists generated reports (the MongoDB store in
// production).
type ReportSink interface {
	SaveInventoryReport(ctx context.Context, report models.InventoryReport) error
}

// RowExporter mirrors a report into an external spreadsheet. Optional.
type RowExporter interface {
	AppendReport(ctx context.Context, report models.InventoryReport) error
}

// Service builds, persists and exports inventory reports.
type Service struct {
	store    models.Store
	auditor  InventoryAuditor
	sink     ReportSink
	exporter RowExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the reporting service. sink and exporter may be nil
// when persistence or export is not configured.
func NewService(store models.Store, auditor InventoryAuditor, sink ReportSink, exporter RowExporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		auditor:  auditor,
		sink:     sink,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildReport assembles the current network-wide inventory state.
func (s *Service) BuildReport(ctx context.Context) (*models.InventoryReport, error) {
	warehouses, err := s.store.Warehouses().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}

	now := s.now().UTC()
	report := &models.InventoryReport{
		Date:      now.Truncate(24 * time.Hour),
		CreatedAt: now,
	}

	for _, warehouse := range warehouses {
		consistency, err := s.auditor.CheckConsistency(ctx, warehouse.ID)
		if err != nil {
			return nil, fmt.Errorf("check consistency for %s: %w", warehouse.ID, err)
		}

		snapshot := models.WarehouseSnapshot{
			WarehouseID:   warehouse.ID,
			WarehouseName: warehouse.Name,
			StockKg:       warehouse.StockKg,
			CapacityKg:    warehouse.CapacityKg,
			FillRate:      warehouse.FillRate(),
			LowStock:      warehouse.IsLowStock(),
			LedgerKg:      consistency.LedgerKg,
			DriftKg:       consistency.DriftKg(),
		}
		report.Warehouses = append(report.Warehouses, snapshot)
		report.TotalStockKg += warehouse.StockKg
		if snapshot.LowStock {
			report.LowStockCount++
		}
	}

	pending, err := s.store.Harvests().List(ctx, models.HarvestFilter{Status: models.HarvestPendingStatus})
	if err != nil {
		return nil, fmt.Errorf("list pending harvests: %w", err)
	}
	report.PendingHarvests = len(pending)

	open, err := s.store.Deliveries().List(ctx, models.DeliveryFilter{Status: models.DeliveryScheduledStatus})
	if err != nil {
		return nil, fmt.Errorf("list scheduled deliveries: %w", err)
	}
	report.OpenDeliveries = len(open)

	return report, nil
}

// Run builds the report, persists it and mirrors it to the exporter.
// Export failures are logged but do not fail the run; the persisted
// report remains the source of truth.
func (s *Service) Run(ctx context.Context) (*models.InventoryReport, error) {
	report, err := s.BuildReport(ctx)
	if err != nil {
		return nil, err
	}

	if s.sink != nil {
		if err := s.sink.SaveInventoryReport(ctx, *report); err != nil {
			return nil, fmt.Errorf("persist inventory report: %w", err)
		}
	}

	if s.exporter != nil {
		if err := s.exporter.AppendReport(ctx, *report); err != nil {
			s.logger.Error("failed exporting report to sheet", zap.Error(err))
		}
	}

	s.logger.Info("inventory report generated",
		zap.Int("warehouses", len(report.Warehouses)),
		zap.Float64("total_stock_kg", report.TotalStockKg),
		zap.Int("low_stock", report.LowStockCount))

	return report, nil
}

// Summary renders a report as a short plain-text digest.
func (s *Service) Summary(report models.InventoryReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inventory %s: %.0fkg across %d warehouses.",
		report.Date.Format("2006-01-02"), report.TotalStockKg, len(report.Warehouses))
	fmt.Fprintf(&b, " Pending harvests: %d. Open deliveries: %d.",
		report.PendingHarvests, report.OpenDeliveries)
	if report.LowStockCount > 0 {
		fmt.Fprintf(&b, " %d warehouse(s) below alert threshold.", report.LowStockCount)
	}
	for _, snapshot := range report.Warehouses {
		if snapshot.DriftKg != 0 {
			fmt.Fprintf(&b, " DRIFT %s: counter %.0fkg vs ledger %.0fkg.",
				snapshot.WarehouseName, snapshot.StockKg, snapshot.LedgerKg)
		}
	}
	return b.String()
}
