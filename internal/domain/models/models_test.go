package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarehouseIsLowStock(t *testing.T) {
	warehouse := Warehouse{StockKg: 50, AlertThresholdKg: 100}
	assert.True(t, warehouse.IsLowStock())

	warehouse.StockKg = 100
	assert.False(t, warehouse.IsLowStock())

	// No threshold means no alerts.
	warehouse = Warehouse{StockKg: 0, AlertThresholdKg: 0}
	assert.False(t, warehouse.IsLowStock())
}

func TestWarehouseFillRate(t *testing.T) {
	warehouse := Warehouse{StockKg: 250, CapacityKg: 1000}
	assert.Equal(t, 25.0, warehouse.FillRate())

	warehouse.CapacityKg = 0
	assert.Zero(t, warehouse.FillRate())
}

func TestWarehouseCanAbsorb(t *testing.T) {
	warehouse := Warehouse{StockKg: 900, CapacityKg: 1000}
	assert.True(t, warehouse.CanAbsorb(100))
	assert.False(t, warehouse.CanAbsorb(101))
}

func TestActorManagesWarehouse(t *testing.T) {
	admin := Actor{UserID: "u-a", Role: RoleAdmin}
	assert.True(t, admin.ManagesWarehouse("wh-anything"))

	keeper := Actor{UserID: "u-k", Role: RoleKeeper, WarehouseIDs: []string{"wh-1", "wh-2"}}
	assert.True(t, keeper.ManagesWarehouse("wh-2"))
	assert.False(t, keeper.ManagesWarehouse("wh-3"))

	producer := Actor{UserID: "u-p", Role: RoleProducer, ProducerID: "p-1"}
	assert.False(t, producer.ManagesWarehouse("wh-1"))
}

func TestActorOwnsHarvest(t *testing.T) {
	record := HarvestRecord{ProducerID: "p-1"}

	owner := Actor{Role: RoleProducer, ProducerID: "p-1"}
	assert.True(t, owner.OwnsHarvest(record))

	other := Actor{Role: RoleProducer, ProducerID: "p-2"}
	assert.False(t, other.OwnsHarvest(record))

	// An actor without a profile owns nothing, even against an empty
	// producer reference.
	assert.False(t, Actor{}.OwnsHarvest(HarvestRecord{}))
}

func TestConflictErrors(t *testing.T) {
	capErr := &CapacityExceededError{WarehouseName: "Depot", CapacityKg: 1000, StockKg: 900, AttemptedKg: 200}
	assert.True(t, IsConflict(capErr))
	assert.True(t, IsConflict(fmt.Errorf("confirm receipt: %w", capErr)))
	assert.Contains(t, capErr.Error(), "Depot")

	stockErr := &InsufficientStockError{WarehouseName: "Depot", AvailableKg: 10, RequestedKg: 50}
	assert.True(t, IsConflict(stockErr))

	assert.False(t, IsConflict(ErrForbidden))
	assert.False(t, IsConflict(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrWarehouseNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrHarvestNotFound)))
	assert.False(t, IsNotFound(ErrAlreadyReceived))
	assert.False(t, IsNotFound(nil))
}

func TestConsistencyReport(t *testing.T) {
	report := ConsistencyReport{CachedKg: 280, LedgerKg: 300}
	assert.Equal(t, -20.0, report.DriftKg())
	assert.False(t, report.Consistent())

	report.CachedKg = 300
	assert.True(t, report.Consistent())
}

func TestConsistencyToleratesFloatResidue(t *testing.T) {
	// Incremental counter additions versus a re-summed ledger: 0.1+0.2
	// does not bit-equal 0.3, but that is not drift.
	report := ConsistencyReport{CachedKg: 0.1 + 0.2, LedgerKg: 0.3}
	assert.NotZero(t, report.DriftKg())
	assert.True(t, report.Consistent())

	report = ConsistencyReport{CachedKg: 0.3001, LedgerKg: 0.3}
	assert.False(t, report.Consistent())
}
