package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrodepot/internal/config"
	"github.com/mamadbah2/agrodepot/internal/domain/models"
	"github.com/mamadbah2/agrodepot/internal/repository/memory"
	"github.com/mamadbah2/agrodepot/internal/service/inventory"
	"github.com/mamadbah2/agrodepot/internal/service/reporting"
	"github.com/mamadbah2/agrodepot/pkg/clients/alerting"
)

type capturingAlerts struct {
	alerts []alerting.Alert
}

func (c *capturingAlerts) SendAlert(ctx context.Context, alert alerting.Alert) error {
	c.alerts = append(c.alerts, alert)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *memory.Store, *capturingAlerts) {
	t.Helper()

	store := memory.NewStore()
	inventorySvc := inventory.NewService(store, nil, nil)
	reportingSvc := reporting.NewService(store, inventorySvc, nil, nil, nil)
	alerts := &capturingAlerts{}

	cfg := config.ReportingConfig{
		ReportSchedule:    "0 20 * * *",
		ReconcileSchedule: "30 * * * *",
		LowStockSchedule:  "0 7 * * *",
	}
	return New(cfg, reportingSvc, inventorySvc, store, alerts, nil), store, alerts
}

func TestStartRegistersAllJobs(t *testing.T) {
	sched, _, _ := newTestScheduler(t)

	sched.Start()
	defer sched.Stop()

	assert.Len(t, sched.cron.Entries(), 3)
}

func TestLowStockSweepAlertsOnLowDepots(t *testing.T) {
	sched, store, alerts := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, store.Warehouses().Create(ctx, &models.Warehouse{
		ID: "wh-low", Name: "Depot Sud", CapacityKg: 500, StockKg: 20, AlertThresholdKg: 100,
	}))
	require.NoError(t, store.Warehouses().Create(ctx, &models.Warehouse{
		ID: "wh-ok", Name: "Depot Nord", CapacityKg: 1000, StockKg: 400, AlertThresholdKg: 100,
	}))

	sched.runLowStockSweep()

	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "wh-low", alerts.alerts[0].WarehouseID)
	assert.Equal(t, "low_stock", alerts.alerts[0].Kind)
}

func TestLowStockSweepWithoutAlertClient(t *testing.T) {
	sched, store, _ := newTestScheduler(t)
	sched.alerts = nil

	require.NoError(t, store.Warehouses().Create(context.Background(), &models.Warehouse{
		ID: "wh-low", Name: "Depot Sud", StockKg: 20, AlertThresholdKg: 100,
	}))

	// Must only log, not panic.
	sched.runLowStockSweep()
}
