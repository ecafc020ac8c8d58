package models

import "time"

// WarehouseSnapshot is the per-warehouse section of an inventory report.
type WarehouseSnapshot struct {
	WarehouseID   string  `bson:"warehouse_id" json:"warehouse_id"`
	WarehouseName string  `bson:"warehouse_name" json:"warehouse_name"`
	StockKg       float64 `bson:"stock_kg" json:"stock_kg"`
	CapacityKg    float64 `bson:"capacity_kg" json:"capacity_kg"`
	FillRate      float64 `bson:"fill_rate" json:"fill_rate"`
	LowStock      bool    `bson:"low_stock" json:"low_stock"`
	LedgerKg      float64 `bson:"ledger_kg" json:"ledger_kg"`
	DriftKg       float64 `bson:"drift_kg" json:"drift_kg"`
}

// InventoryReport is the aggregated inventory state persisted by the
// nightly reporting job.
type InventoryReport struct {
	Date            time.Time           `bson:"date" json:"date"`
	Warehouses      []WarehouseSnapshot `bson:"warehouses" json:"warehouses"`
	TotalStockKg    float64             `bson:"total_stock_kg" json:"total_stock_kg"`
	PendingHarvests int                 `bson:"pending_harvests" json:"pending_harvests"`
	OpenDeliveries  int                 `bson:"open_deliveries" json:"open_deliveries"`
	LowStockCount   int                 `bson:"low_stock_count" json:"low_stock_count"`
	CreatedAt       time.Time           `bson:"created_at" json:"created_at"`
}
