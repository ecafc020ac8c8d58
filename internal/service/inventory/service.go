// Package inventory implements the stock state machine: harvest
// declarations, receipt confirmation, delivery scheduling and dispatch
// confirmation, plus the ledger-derived availability queries guarding
// them. Every transition runs inside a store transaction so the ledger
// status flip and the warehouse counter mutation commit together or
// not at all.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// EventDispatcher receives domain events after a transition commits.
type EventDispatcher interface {
	Dispatch(event models.Event) error
}

// Service coordinates the stock transitions over the domain store.
type Service struct {
	store      models.Store
	dispatcher EventDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the inventory core.
func NewService(store models.Store, dispatcher EventDispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(models.Event) error { return nil }

// DeclareHarvestInput carries a producer's harvest declaration.
type DeclareHarvestInput struct {
	CropTypeID  string
	QuantityKg  float64
	HarvestDate time.Time
	WarehouseID *string
}

// DeclareHarvest records a pending harvest for the acting producer.
// The warehouse stock is untouched until a keeper confirms receipt.
func (s *Service) DeclareHarvest(ctx context.Context, actor models.Actor, input DeclareHarvestInput) (*models.HarvestRecord, error) {
	if !actor.IsProducer() || actor.ProducerID == "" {
		return nil, models.ErrForbidden
	}
	if input.QuantityKg <= 0 {
		return nil, models.ErrInvalidQuantity
	}

	if _, err := s.store.CropTypes().Find(ctx, input.CropTypeID); err != nil {
		return nil, err
	}
	if input.WarehouseID != nil {
		if _, err := s.store.Warehouses().Find(ctx, *input.WarehouseID); err != nil {
			return nil, err
		}
	}

	record := &models.HarvestRecord{
		ID:          uuid.NewString(),
		ProducerID:  actor.ProducerID,
		CropTypeID:  input.CropTypeID,
		QuantityKg:  input.QuantityKg,
		HarvestDate: input.HarvestDate,
		WarehouseID: input.WarehouseID,
		Status:      models.HarvestPendingStatus,
	}
	if record.HarvestDate.IsZero() {
		record.HarvestDate = s.now().UTC()
	}

	if err := s.store.Harvests().Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("harvest declared",
		zap.String("harvest_id", record.ID),
		zap.String("producer_id", record.ProducerID),
		zap.Float64("quantity_kg", record.QuantityKg))

	_ = s.dispatcher.Dispatch(models.HarvestDeclared{
		HarvestID:  record.ID,
		ProducerID: record.ProducerID,
		CropTypeID: record.CropTypeID,
		QuantityKg: record.QuantityKg,
	})

	return record, nil
}

// ConfirmReceipt transitions a pending harvest to received and adds its
// quantity to the destination warehouse's stock counter. Both mutations
// happen in one transaction. A repeat call returns ErrAlreadyReceived
// without touching anything; a harvest without destination fails with
// ErrMissingDestination; an increment past capacity fails with
// CapacityExceededError and leaves the stock unchanged.
func (s *Service) ConfirmReceipt(ctx context.Context, actor models.Actor, harvestID string) (*models.HarvestRecord, *models.Warehouse, error) {
	var (
		record    *models.HarvestRecord
		warehouse *models.Warehouse
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		var err error
		record, err = tx.Harvests().Find(ctx, harvestID)
		if err != nil {
			return err
		}
		if record.Status == models.HarvestReceivedStatus {
			return models.ErrAlreadyReceived
		}
		if record.WarehouseID == nil {
			return models.ErrMissingDestination
		}
		if !actor.ManagesWarehouse(*record.WarehouseID) {
			return models.ErrForbidden
		}

		warehouse, err = tx.Warehouses().Find(ctx, *record.WarehouseID)
		if err != nil {
			return err
		}
		if !warehouse.CanAbsorb(record.QuantityKg) {
			return &models.CapacityExceededError{
				WarehouseName: warehouse.Name,
				CapacityKg:    warehouse.CapacityKg,
				StockKg:       warehouse.StockKg,
				AttemptedKg:   record.QuantityKg,
			}
		}

		receivedAt := s.now().UTC()
		record.Status = models.HarvestReceivedStatus
		record.ReceivedAt = &receivedAt
		if err := tx.Harvests().Update(ctx, record); err != nil {
			return err
		}

		warehouse.StockKg += record.QuantityKg
		return tx.Warehouses().Update(ctx, warehouse)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("harvest receipt confirmed",
		zap.String("harvest_id", record.ID),
		zap.String("warehouse_id", warehouse.ID),
		zap.Float64("quantity_kg", record.QuantityKg),
		zap.Float64("stock_kg", warehouse.StockKg))

	_ = s.dispatcher.Dispatch(models.HarvestReceived{
		HarvestID:   record.ID,
		WarehouseID: warehouse.ID,
		CropTypeID:  record.CropTypeID,
		QuantityKg:  record.QuantityKg,
		NewStockKg:  warehouse.StockKg,
	})
	s.alertIfLow(*warehouse)

	return record, warehouse, nil
}

// CreateDeliveryOrderInput carries an admin's outbound order request.
type CreateDeliveryOrderInput struct {
	WarehouseID string
	CropTypeID  string
	QuantityKg  int64
	Client      string
}

// CreateDeliveryOrder schedules an outbound delivery. The guard runs
// against the ledger-derived available stock, not the cached counter,
// and the counter itself stays untouched until dispatch confirmation.
func (s *Service) CreateDeliveryOrder(ctx context.Context, actor models.Actor, input CreateDeliveryOrderInput) (*models.DeliveryOrder, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if input.QuantityKg <= 0 {
		return nil, models.ErrInvalidQuantity
	}

	var order *models.DeliveryOrder
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		warehouse, err := tx.Warehouses().Find(ctx, input.WarehouseID)
		if err != nil {
			return err
		}
		if _, err := tx.CropTypes().Find(ctx, input.CropTypeID); err != nil {
			return err
		}

		available, err := availableStock(ctx, tx, input.WarehouseID, input.CropTypeID)
		if err != nil {
			return err
		}
		if float64(input.QuantityKg) > available {
			return &models.InsufficientStockError{
				WarehouseName: warehouse.Name,
				AvailableKg:   available,
				RequestedKg:   float64(input.QuantityKg),
			}
		}

		order = &models.DeliveryOrder{
			ID:          uuid.NewString(),
			Client:      input.Client,
			WarehouseID: input.WarehouseID,
			CropTypeID:  input.CropTypeID,
			QuantityKg:  input.QuantityKg,
			CreatedAt:   s.now().UTC(),
			Status:      models.DeliveryScheduledStatus,
			OrderedBy:   actor.UserID,
		}
		return tx.Deliveries().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery order scheduled",
		zap.String("delivery_id", order.ID),
		zap.String("warehouse_id", order.WarehouseID),
		zap.Int64("quantity_kg", order.QuantityKg),
		zap.String("client", order.Client))

	_ = s.dispatcher.Dispatch(models.DeliveryScheduled{
		DeliveryID:  order.ID,
		WarehouseID: order.WarehouseID,
		CropTypeID:  order.CropTypeID,
		QuantityKg:  order.QuantityKg,
		Client:      order.Client,
	})

	return order, nil
}

// ConfirmDispatch transitions a scheduled order to shipped and removes
// its quantity from the source warehouse's stock counter, atomically.
// Non-scheduled orders fail with ErrNotScheduled; a decrement below
// zero fails with InsufficientStockError and mutates nothing.
func (s *Service) ConfirmDispatch(ctx context.Context, actor models.Actor, deliveryID string) (*models.DeliveryOrder, *models.Warehouse, error) {
	var (
		order     *models.DeliveryOrder
		warehouse *models.Warehouse
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		var err error
		order, err = tx.Deliveries().Find(ctx, deliveryID)
		if err != nil {
			return err
		}
		if order.Status != models.DeliveryScheduledStatus {
			return models.ErrNotScheduled
		}
		if !actor.ManagesWarehouse(order.WarehouseID) {
			return models.ErrForbidden
		}

		warehouse, err = tx.Warehouses().Find(ctx, order.WarehouseID)
		if err != nil {
			return err
		}
		if warehouse.StockKg < float64(order.QuantityKg) {
			return &models.InsufficientStockError{
				WarehouseName: warehouse.Name,
				AvailableKg:   warehouse.StockKg,
				RequestedKg:   float64(order.QuantityKg),
			}
		}

		dispatchedAt := s.now().UTC()
		order.Status = models.DeliveryShippedStatus
		order.DispatchedAt = &dispatchedAt
		order.ConfirmedBy = &actor.UserID
		if err := tx.Deliveries().Update(ctx, order); err != nil {
			return err
		}

		warehouse.StockKg -= float64(order.QuantityKg)
		return tx.Warehouses().Update(ctx, warehouse)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("delivery dispatch confirmed",
		zap.String("delivery_id", order.ID),
		zap.String("warehouse_id", warehouse.ID),
		zap.Int64("quantity_kg", order.QuantityKg),
		zap.Float64("stock_kg", warehouse.StockKg))

	_ = s.dispatcher.Dispatch(models.DeliveryShipped{
		DeliveryID:   order.ID,
		WarehouseID:  warehouse.ID,
		CropTypeID:   order.CropTypeID,
		QuantityKg:   order.QuantityKg,
		NewStockKg:   warehouse.StockKg,
		DispatchedAt: *order.DispatchedAt,
	})
	s.alertIfLow(*warehouse)

	return order, warehouse, nil
}

func (s *Service) alertIfLow(warehouse models.Warehouse) {
	if !warehouse.IsLowStock() {
		return
	}
	s.logger.Warn("warehouse below alert threshold",
		zap.String("warehouse_id", warehouse.ID),
		zap.Float64("stock_kg", warehouse.StockKg),
		zap.Float64("threshold_kg", warehouse.AlertThresholdKg))
	_ = s.dispatcher.Dispatch(models.LowStockDetected{
		WarehouseID:   warehouse.ID,
		WarehouseName: warehouse.Name,
		StockKg:       warehouse.StockKg,
		ThresholdKg:   warehouse.AlertThresholdKg,
	})
}
