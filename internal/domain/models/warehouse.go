package models

// Warehouse is a storage depot. StockKg is a cached counter mutated
// exclusively by the two stock transitions (receipt confirmation and
// dispatch confirmation); the ledger-derived figure remains the
// authoritative one for availability checks.
type Warehouse struct {
	ID               string  `bson:"_id" json:"id"`
	Name             string  `bson:"name" json:"name"`
	ZoneID           string  `bson:"zone_id" json:"zone_id"`
	KeeperID         *string `bson:"keeper_id,omitempty" json:"keeper_id,omitempty"`
	CapacityKg       float64 `bson:"capacity_kg" json:"capacity_kg"`
	StockKg          float64 `bson:"stock_kg" json:"stock_kg"`
	AlertThresholdKg float64 `bson:"alert_threshold_kg" json:"alert_threshold_kg"`
}

// IsLowStock reports whether the cached stock fell below the configured
// alert threshold.
func (w Warehouse) IsLowStock() bool {
	return w.StockKg < w.AlertThresholdKg
}

// FillRate returns the stock/capacity ratio as a percentage.
// Zero or negative capacity yields 0.
func (w Warehouse) FillRate() float64 {
	if w.CapacityKg <= 0 {
		return 0
	}
	return w.StockKg / w.CapacityKg * 100
}

// CanAbsorb reports whether adding quantityKg would stay within capacity.
func (w Warehouse) CanAbsorb(quantityKg float64) bool {
	return w.StockKg+quantityKg <= w.CapacityKg
}
