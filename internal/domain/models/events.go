package models

import "time"

// Event is implemented by every domain event emitted on a successful
// state change. Events are dispatched after the enclosing transaction
// commits, never from inside it.
type Event interface {
	Type() string
}

type HarvestDeclared struct {
	HarvestID  string
	ProducerID string
	CropTypeID string
	QuantityKg float64
}

func (e HarvestDeclared) Type() string { return "HarvestDeclared" }

type HarvestReceived struct {
	HarvestID   string
	WarehouseID string
	CropTypeID  string
	QuantityKg  float64
	NewStockKg  float64
}

func (e HarvestReceived) Type() string { return "HarvestReceived" }

type DeliveryScheduled struct {
	DeliveryID  string
	WarehouseID string
	CropTypeID  string
	QuantityKg  int64
	Client      string
}

func (e DeliveryScheduled) Type() string { return "DeliveryScheduled" }

type DeliveryShipped struct {
	DeliveryID   string
	WarehouseID  string
	CropTypeID   string
	QuantityKg   int64
	NewStockKg   float64
	DispatchedAt time.Time
}

func (e DeliveryShipped) Type() string { return "DeliveryShipped" }

// LowStockDetected fires when a transition leaves a warehouse below its
// alert threshold.
type LowStockDetected struct {
	WarehouseID   string
	WarehouseName string
	StockKg       float64
	ThresholdKg   float64
}

func (e LowStockDetected) Type() string { return "LowStockDetected" }

// StockDriftDetected fires when the cached stock counter disagrees with
// the ledger-derived sum for a warehouse.
type StockDriftDetected struct {
	WarehouseID   string
	WarehouseName string
	CachedKg      float64
	LedgerKg      float64
}

func (e StockDriftDetected) Type() string { return "StockDriftDetected" }
