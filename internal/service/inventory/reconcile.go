package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// availableStock resums the ledger for one warehouse/crop pair:
// received harvests minus shipped deliveries. Runs against whatever
// store view it is given, so transition guards can call it inside
// their transaction.
func availableStock(ctx context.Context, store models.Store, warehouseID, cropTypeID string) (float64, error) {
	received, err := store.Harvests().SumQuantity(ctx, models.HarvestFilter{
		WarehouseIDs: []string{warehouseID},
		CropTypeID:   cropTypeID,
		Status:       models.HarvestReceivedStatus,
	})
	if err != nil {
		return 0, err
	}

	shipped, err := store.Deliveries().SumQuantity(ctx, models.DeliveryFilter{
		WarehouseIDs: []string{warehouseID},
		CropTypeID:   cropTypeID,
		Status:       models.DeliveryShippedStatus,
	})
	if err != nil {
		return 0, err
	}

	return received - shipped, nil
}

// AvailableStock returns the ledger-derived quantity of a crop at a
// warehouse. Pure read, safe to call concurrently; callers still have
// to handle the mutating operations' own guards, since state may move
// between check and act.
func (s *Service) AvailableStock(ctx context.Context, warehouseID, cropTypeID string) (float64, error) {
	if _, err := s.store.Warehouses().Find(ctx, warehouseID); err != nil {
		return 0, err
	}
	return availableStock(ctx, s.store, warehouseID, cropTypeID)
}

// DetailedInventory breaks a warehouse's ledger stock down per crop
// type. Crop types with no received volume are skipped.
func (s *Service) DetailedInventory(ctx context.Context, warehouseID string) ([]models.CropStockLine, error) {
	if _, err := s.store.Warehouses().Find(ctx, warehouseID); err != nil {
		return nil, err
	}

	crops, err := s.store.CropTypes().List(ctx)
	if err != nil {
		return nil, err
	}

	var lines []models.CropStockLine
	for _, crop := range crops {
		received, err := s.store.Harvests().SumQuantity(ctx, models.HarvestFilter{
			WarehouseIDs: []string{warehouseID},
			CropTypeID:   crop.ID,
			Status:       models.HarvestReceivedStatus,
		})
		if err != nil {
			return nil, err
		}
		if received <= 0 {
			continue
		}

		shipped, err := s.store.Deliveries().SumQuantity(ctx, models.DeliveryFilter{
			WarehouseIDs: []string{warehouseID},
			CropTypeID:   crop.ID,
			Status:       models.DeliveryShippedStatus,
		})
		if err != nil {
			return nil, err
		}

		lines = append(lines, models.CropStockLine{
			CropTypeID: crop.ID,
			CropName:   crop.Name,
			ReceivedKg: received,
			ShippedKg:  shipped,
			NetKg:      received - shipped,
		})
	}

	return lines, nil
}

// CheckConsistency compares a warehouse's cached stock counter with
// the aggregate ledger sum.
func (s *Service) CheckConsistency(ctx context.Context, warehouseID string) (*models.ConsistencyReport, error) {
	warehouse, err := s.store.Warehouses().Find(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return s.consistencyFor(ctx, *warehouse)
}

func (s *Service) consistencyFor(ctx context.Context, warehouse models.Warehouse) (*models.ConsistencyReport, error) {
	ledger, err := availableStock(ctx, s.store, warehouse.ID, "")
	if err != nil {
		return nil, err
	}
	return &models.ConsistencyReport{
		WarehouseID:   warehouse.ID,
		WarehouseName: warehouse.Name,
		CachedKg:      warehouse.StockKg,
		LedgerKg:      ledger,
	}, nil
}

// ConsistencySweep checks every warehouse and emits a StockDriftDetected
// event for each one whose cached counter disagrees with its ledger.
// The scheduler runs this periodically; the counter is a materialized
// projection of the ledger and drift means a bug, not expected wear.
func (s *Service) ConsistencySweep(ctx context.Context) ([]models.ConsistencyReport, error) {
	warehouses, err := s.store.Warehouses().List(ctx)
	if err != nil {
		return nil, err
	}

	var reports []models.ConsistencyReport
	for _, warehouse := range warehouses {
		report, err := s.consistencyFor(ctx, warehouse)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)

		if report.Consistent() {
			continue
		}
		s.logger.Error("stock counter drifted from ledger",
			zap.String("warehouse_id", report.WarehouseID),
			zap.Float64("cached_kg", report.CachedKg),
			zap.Float64("ledger_kg", report.LedgerKg))
		_ = s.dispatcher.Dispatch(models.StockDriftDetected{
			WarehouseID:   report.WarehouseID,
			WarehouseName: report.WarehouseName,
			CachedKg:      report.CachedKg,
			LedgerKg:      report.LedgerKg,
		})
	}

	return reports, nil
}
