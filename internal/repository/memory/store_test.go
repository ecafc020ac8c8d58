package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

func TestWithinTxCommits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		if err := tx.Zones().Create(ctx, &models.Zone{ID: "z-1", Commune: "Thies"}); err != nil {
			return err
		}
		return tx.Warehouses().Create(ctx, &models.Warehouse{ID: "wh-1", Name: "Depot", ZoneID: "z-1"})
	})
	require.NoError(t, err)

	_, err = store.Zones().Find(ctx, "z-1")
	assert.NoError(t, err)
	_, err = store.Warehouses().Find(ctx, "wh-1")
	assert.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	warehouse := models.Warehouse{ID: "wh-1", Name: "Depot", CapacityKg: 100, StockKg: 40}
	require.NoError(t, store.Warehouses().Create(ctx, &warehouse))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		staged, err := tx.Warehouses().Find(ctx, "wh-1")
		if err != nil {
			return err
		}
		staged.StockKg = 90
		if err := tx.Warehouses().Update(ctx, staged); err != nil {
			return err
		}
		if err := tx.Zones().Create(ctx, &models.Zone{ID: "z-1", Commune: "Thies"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing staged inside the failed transaction is visible.
	stored, err := store.Warehouses().Find(ctx, "wh-1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, stored.StockKg)
	_, err = store.Zones().Find(ctx, "z-1")
	assert.ErrorIs(t, err, models.ErrZoneNotFound)
}

func TestWithinTxNestedJoins(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		return tx.WithinTx(ctx, func(ctx context.Context, inner models.Store) error {
			return inner.Zones().Create(ctx, &models.Zone{ID: "z-1", Commune: "Thies"})
		})
	})
	require.NoError(t, err)

	_, err = store.Zones().Find(ctx, "z-1")
	assert.NoError(t, err)
}

func TestWithinTxHonorsCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUniquenessGuards(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Zones().Create(ctx, &models.Zone{ID: "z-1", Commune: "Thies", Village: "Fandene"}))
	err := store.Zones().Create(ctx, &models.Zone{ID: "z-2", Commune: "Thies", Village: "Fandene"})
	assert.ErrorIs(t, err, models.ErrZoneExists)

	require.NoError(t, store.CropTypes().Create(ctx, &models.CropType{ID: "c-1", Name: "Maize"}))
	err = store.CropTypes().Create(ctx, &models.CropType{ID: "c-2", Name: "MAIZE"})
	assert.ErrorIs(t, err, models.ErrCropTypeExists)

	require.NoError(t, store.Users().Create(ctx, &models.User{ID: "u-1", Username: "fatou"}))
	err = store.Users().Create(ctx, &models.User{ID: "u-2", Username: "fatou"})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestHarvestListFilterAndOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	whA := "wh-a"
	whB := "wh-b"
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.HarvestRecord{
		{ID: "h-1", ProducerID: "p-1", CropTypeID: "c-1", QuantityKg: 10, HarvestDate: base, WarehouseID: &whA, Status: models.HarvestPendingStatus},
		{ID: "h-2", ProducerID: "p-1", CropTypeID: "c-1", QuantityKg: 20, HarvestDate: base.AddDate(0, 0, 2), WarehouseID: &whA, Status: models.HarvestReceivedStatus},
		{ID: "h-3", ProducerID: "p-2", CropTypeID: "c-2", QuantityKg: 30, HarvestDate: base.AddDate(0, 0, 1), WarehouseID: &whB, Status: models.HarvestReceivedStatus},
		{ID: "h-4", ProducerID: "p-2", CropTypeID: "c-1", QuantityKg: 40, HarvestDate: base.AddDate(0, 0, 3), Status: models.HarvestPendingStatus},
	}
	for i := range records {
		require.NoError(t, store.Harvests().Create(ctx, &records[i]))
	}

	all, err := store.Harvests().List(ctx, models.HarvestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Newest harvest date first.
	assert.Equal(t, "h-4", all[0].ID)
	assert.Equal(t, "h-1", all[3].ID)

	scoped, err := store.Harvests().List(ctx, models.HarvestFilter{WarehouseIDs: []string{whA}})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	// A warehouse filter never matches records without a destination.
	noDest, err := store.Harvests().List(ctx, models.HarvestFilter{WarehouseIDs: []string{whA, whB}})
	require.NoError(t, err)
	assert.Len(t, noDest, 3)

	received, err := store.Harvests().List(ctx, models.HarvestFilter{Status: models.HarvestReceivedStatus})
	require.NoError(t, err)
	assert.Len(t, received, 2)

	limited, err := store.Harvests().List(ctx, models.HarvestFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "h-4", limited[0].ID)

	sum, err := store.Harvests().SumQuantity(ctx, models.HarvestFilter{ProducerID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, 30.0, sum)

	exists, err := store.Harvests().Exists(ctx, models.HarvestFilter{CropTypeID: "c-2"})
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.Harvests().Exists(ctx, models.HarvestFilter{CropTypeID: "c-9"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeliveryListFilterAndOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.DeliveryOrder{
		{ID: "d-1", WarehouseID: "wh-a", CropTypeID: "c-1", QuantityKg: 100, CreatedAt: base, Status: models.DeliveryScheduledStatus},
		{ID: "d-2", WarehouseID: "wh-a", CropTypeID: "c-1", QuantityKg: 50, CreatedAt: base.AddDate(0, 0, 1), Status: models.DeliveryShippedStatus},
		{ID: "d-3", WarehouseID: "wh-b", CropTypeID: "c-2", QuantityKg: 25, CreatedAt: base.AddDate(0, 0, 2), Status: models.DeliveryShippedStatus},
	}
	for i := range orders {
		require.NoError(t, store.Deliveries().Create(ctx, &orders[i]))
	}

	all, err := store.Deliveries().List(ctx, models.DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d-3", all[0].ID)

	shipped, err := store.Deliveries().SumQuantity(ctx, models.DeliveryFilter{
		WarehouseIDs: []string{"wh-a"},
		Status:       models.DeliveryShippedStatus,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, shipped)

	require.NoError(t, store.Deliveries().DeleteByWarehouse(ctx, "wh-a"))
	remaining, err := store.Deliveries().List(ctx, models.DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "d-3", remaining[0].ID)
}

func TestNullifyHelpers(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	keeperID := "u-k"
	zoneID := "z-1"
	require.NoError(t, store.Warehouses().Create(ctx, &models.Warehouse{ID: "wh-1", ZoneID: zoneID, KeeperID: &keeperID}))
	require.NoError(t, store.Warehouses().Create(ctx, &models.Warehouse{ID: "wh-2", ZoneID: "z-2", KeeperID: &keeperID}))
	require.NoError(t, store.Producers().Create(ctx, &models.Producer{ID: "p-1", UserID: "u-p", ZoneID: &zoneID}))

	whID := "wh-1"
	require.NoError(t, store.Harvests().Create(ctx, &models.HarvestRecord{
		ID: "h-1", ProducerID: "p-1", CropTypeID: "c-1", QuantityKg: 10,
		HarvestDate: time.Now(), WarehouseID: &whID, Status: models.HarvestPendingStatus,
	}))

	removed, err := store.Warehouses().DeleteByZone(ctx, zoneID)
	require.NoError(t, err)
	assert.Equal(t, []string{"wh-1"}, removed)

	require.NoError(t, store.Harvests().NullifyWarehouse(ctx, "wh-1"))
	harvest, err := store.Harvests().Find(ctx, "h-1")
	require.NoError(t, err)
	assert.Nil(t, harvest.WarehouseID)

	require.NoError(t, store.Producers().NullifyZone(ctx, zoneID))
	producer, err := store.Producers().Find(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, producer.ZoneID)

	require.NoError(t, store.Warehouses().NullifyKeeper(ctx, keeperID))
	warehouse, err := store.Warehouses().Find(ctx, "wh-2")
	require.NoError(t, err)
	assert.Nil(t, warehouse.KeeperID)
}

func TestFindReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Warehouses().Create(ctx, &models.Warehouse{ID: "wh-1", StockKg: 10}))

	found, err := store.Warehouses().Find(ctx, "wh-1")
	require.NoError(t, err)
	found.StockKg = 999

	again, err := store.Warehouses().Find(ctx, "wh-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.StockKg)
}
