package models

import "context"

// HarvestFilter narrows harvest ledger queries. Zero values mean "any".
type HarvestFilter struct {
	ProducerID   string
	WarehouseIDs []string
	CropTypeID   string
	Status       HarvestStatus
	Limit        int
}

// DeliveryFilter narrows delivery ledger queries. Zero values mean "any".
type DeliveryFilter struct {
	WarehouseIDs []string
	CropTypeID   string
	Status       DeliveryStatus
	Limit        int
}

type ZoneRepository interface {
	Create(ctx context.Context, zone *Zone) error
	Find(ctx context.Context, id string) (*Zone, error)
	List(ctx context.Context) ([]Zone, error)
	Delete(ctx context.Context, id string) error
}

type CropTypeRepository interface {
	Create(ctx context.Context, crop *CropType) error
	Find(ctx context.Context, id string) (*CropType, error)
	List(ctx context.Context) ([]CropType, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}

type ProducerRepository interface {
	Create(ctx context.Context, producer *Producer) error
	Find(ctx context.Context, id string) (*Producer, error)
	FindByUser(ctx context.Context, userID string) (*Producer, error)
	List(ctx context.Context) ([]Producer, error)
	Update(ctx context.Context, producer *Producer) error
	// NullifyZone clears the zone reference on every producer bound to
	// the given zone (nullify-on-delete semantics).
	NullifyZone(ctx context.Context, zoneID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *Warehouse) error
	Find(ctx context.Context, id string) (*Warehouse, error)
	List(ctx context.Context) ([]Warehouse, error)
	ListByKeeper(ctx context.Context, keeperID string) ([]Warehouse, error)
	Update(ctx context.Context, warehouse *Warehouse) error
	// DeleteByZone removes every warehouse owned by the zone
	// (cascade-on-delete semantics) and returns the removed IDs.
	DeleteByZone(ctx context.Context, zoneID string) ([]string, error)
	// NullifyKeeper clears the keeper assignment wherever the given
	// user is responsible (nullify-on-delete semantics).
	NullifyKeeper(ctx context.Context, userID string) error
}

type HarvestRepository interface {
	Create(ctx context.Context, record *HarvestRecord) error
	Find(ctx context.Context, id string) (*HarvestRecord, error)
	Update(ctx context.Context, record *HarvestRecord) error
	// List returns matching records, most recent harvest date first.
	List(ctx context.Context, filter HarvestFilter) ([]HarvestRecord, error)
	SumQuantity(ctx context.Context, filter HarvestFilter) (float64, error)
	Exists(ctx context.Context, filter HarvestFilter) (bool, error)
	// NullifyWarehouse clears the destination on records pointing at a
	// removed warehouse.
	NullifyWarehouse(ctx context.Context, warehouseID string) error
}

type DeliveryRepository interface {
	Create(ctx context.Context, order *DeliveryOrder) error
	Find(ctx context.Context, id string) (*DeliveryOrder, error)
	Update(ctx context.Context, order *DeliveryOrder) error
	// List returns matching orders, most recent creation first.
	List(ctx context.Context, filter DeliveryFilter) ([]DeliveryOrder, error)
	SumQuantity(ctx context.Context, filter DeliveryFilter) (float64, error)
	Exists(ctx context.Context, filter DeliveryFilter) (bool, error)
	// DeleteByWarehouse removes every order sourced at a removed
	// warehouse (cascade-on-delete semantics; the order is owned by its
	// source depot).
	DeleteByWarehouse(ctx context.Context, warehouseID string) error
}

// Store aggregates the repositories behind a single transactional
// boundary. WithinTx runs fn atomically: either every mutation fn makes
// through tx becomes visible, or none of them do. The two stock
// transitions rely on this to keep the ledger status flip and the
// warehouse counter mutation inseparable.
type Store interface {
	Zones() ZoneRepository
	CropTypes() CropTypeRepository
	Users() UserRepository
	Producers() ProducerRepository
	Warehouses() WarehouseRepository
	Harvests() HarvestRepository
	Deliveries() DeliveryRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
