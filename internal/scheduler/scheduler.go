package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/config"
	"github.com/mamadbah2/agrodepot/internal/domain/models"
	"github.com/mamadbah2/agrodepot/internal/service/inventory"
	"github.com/mamadbah2/agrodepot/internal/service/reporting"
	"github.com/mamadbah2/agrodepot/pkg/clients/alerting"
)

const jobTimeout = 2 * time.Minute

// Scheduler manages the periodic jobs: the nightly inventory report,
// the ledger-vs-counter reconciliation sweep and the low-stock sweep.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	inventorySvc *inventory.Service
	store        models.Store
	alerts       alerting.Client
	cfg          config.ReportingConfig
	logger       *zap.Logger
}

// New creates a scheduler instance. alerts may be nil when no webhook
// is configured.
func New(cfg config.ReportingConfig, reportingSvc *reporting.Service, inventorySvc *inventory.Service, store models.Store, alerts alerting.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		reportingSvc: reportingSvc,
		inventorySvc: inventorySvc,
		store:        store,
		alerts:       alerts,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("report_schedule", s.cfg.ReportSchedule),
		zap.String("reconcile_schedule", s.cfg.ReconcileSchedule),
		zap.String("lowstock_schedule", s.cfg.LowStockSchedule))

	if _, err := s.cron.AddFunc(s.cfg.ReportSchedule, s.runReport); err != nil {
		s.logger.Error("failed to schedule inventory report", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.ReconcileSchedule, s.runReconciliation); err != nil {
		s.logger.Error("failed to schedule reconciliation sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.LowStockSchedule, s.runLowStockSweep); err != nil {
		s.logger.Error("failed to schedule low-stock sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.reportingSvc.Run(ctx)
	if err != nil {
		s.logger.Error("inventory report job failed", zap.Error(err))
		return
	}
	s.logger.Info("inventory report job finished", zap.String("summary", s.reportingSvc.Summary(*report)))
}

func (s *Scheduler) runReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	reports, err := s.inventorySvc.ConsistencySweep(ctx)
	if err != nil {
		s.logger.Error("reconciliation sweep failed", zap.Error(err))
		return
	}

	drifted := 0
	for _, report := range reports {
		if !report.Consistent() {
			drifted++
		}
	}
	s.logger.Info("reconciliation sweep finished",
		zap.Int("warehouses", len(reports)),
		zap.Int("drifted", drifted))
}

func (s *Scheduler) runLowStockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	warehouses, err := s.store.Warehouses().List(ctx)
	if err != nil {
		s.logger.Error("low-stock sweep failed", zap.Error(err))
		return
	}

	for _, warehouse := range warehouses {
		if !warehouse.IsLowStock() {
			continue
		}
		s.logger.Warn("low-stock warehouse",
			zap.String("warehouse_id", warehouse.ID),
			zap.Float64("stock_kg", warehouse.StockKg),
			zap.Float64("threshold_kg", warehouse.AlertThresholdKg))

		if s.alerts == nil {
			continue
		}
		alert := alerting.Alert{
			Kind:          "low_stock",
			WarehouseID:   warehouse.ID,
			WarehouseName: warehouse.Name,
			StockKg:       warehouse.StockKg,
			ThresholdKg:   warehouse.AlertThresholdKg,
			Message:       "daily low-stock sweep",
			OccurredAt:    time.Now().UTC(),
		}
		if err := s.alerts.SendAlert(ctx, alert); err != nil {
			s.logger.Error("failed sending low-stock alert", zap.Error(err))
		}
	}
}
