package models

import "math"

// CropStockLine is one row of a warehouse's per-crop stock breakdown,
// derived from the ledger (received harvests minus shipped deliveries).
type CropStockLine struct {
	CropTypeID string  `json:"crop_type_id"`
	CropName   string  `json:"crop_name"`
	ReceivedKg float64 `json:"received_kg"`
	ShippedKg  float64 `json:"shipped_kg"`
	NetKg      float64 `json:"net_kg"`
}

// ConsistencyReport compares the cached stock counter of a warehouse
// against the aggregate ledger sum.
type ConsistencyReport struct {
	WarehouseID   string  `json:"warehouse_id"`
	WarehouseName string  `json:"warehouse_name"`
	CachedKg      float64 `json:"cached_kg"`
	LedgerKg      float64 `json:"ledger_kg"`
}

// DriftKg is the cached counter minus the ledger sum. Zero means the
// materialized counter and the ledger agree.
func (r ConsistencyReport) DriftKg() float64 {
	return r.CachedKg - r.LedgerKg
}

// driftToleranceKg absorbs float summation noise: the counter grows by
// incremental additions while the ledger is re-summed from scratch, so
// fractional-kg quantities can differ in the last bits without any
// real divergence.
const driftToleranceKg = 1e-6

// Consistent reports whether the two stock figures agree within
// tolerance.
func (r ConsistencyReport) Consistent() bool {
	return math.Abs(r.DriftKg()) < driftToleranceKg
}
