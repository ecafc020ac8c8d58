package alerting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

const dispatchTimeout = 30 * time.Second

// EventBridge adapts domain events to webhook alerts. Only the
// alert-worthy events (low stock, stock drift) leave the process;
// everything else is ignored. Delivery failures are logged, never
// propagated: an unreachable webhook must not fail a committed stock
// transition.
type EventBridge struct {
	client Client
	logger *zap.Logger
	now    func() time.Time
}

// NewEventBridge wires the bridge. A nil client turns the bridge into
// a no-op.
func NewEventBridge(client Client, logger *zap.Logger) *EventBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridge{client: client, logger: logger, now: time.Now}
}

// Dispatch implements the inventory service's EventDispatcher.
func (b *EventBridge) Dispatch(event models.Event) error {
	if b.client == nil {
		return nil
	}

	var alert Alert
	switch e := event.(type) {
	case models.LowStockDetected:
		alert = Alert{
			Kind:          "low_stock",
			WarehouseID:   e.WarehouseID,
			WarehouseName: e.WarehouseName,
			StockKg:       e.StockKg,
			ThresholdKg:   e.ThresholdKg,
			Message:       fmt.Sprintf("%s holds %.0fkg, below the %.0fkg alert threshold", e.WarehouseName, e.StockKg, e.ThresholdKg),
		}
	case models.StockDriftDetected:
		alert = Alert{
			Kind:          "stock_drift",
			WarehouseID:   e.WarehouseID,
			WarehouseName: e.WarehouseName,
			StockKg:       e.CachedKg,
			LedgerKg:      e.LedgerKg,
			Message:       fmt.Sprintf("%s counter reads %.0fkg but the ledger sums to %.0fkg", e.WarehouseName, e.CachedKg, e.LedgerKg),
		}
	default:
		return nil
	}
	alert.OccurredAt = b.now().UTC()

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	if err := b.client.SendAlert(ctx, alert); err != nil {
		b.logger.Error("failed delivering alert",
			zap.String("kind", alert.Kind),
			zap.String("warehouse_id", alert.WarehouseID),
			zap.Error(err))
	}
	return nil
}
