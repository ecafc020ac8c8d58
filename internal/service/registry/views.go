package registry

import (
	"context"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

const recentMovementLimit = 5

// ResolveActor builds the capability token for an authenticated
// identity: role, managed warehouses for keepers, producer profile for
// producers. The HTTP layer calls this before any core operation.
func (s *Service) ResolveActor(ctx context.Context, userID string) (models.Actor, error) {
	user, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		return models.Actor{}, err
	}

	actor := models.Actor{UserID: user.ID, Role: user.Role}

	switch user.Role {
	case models.RoleKeeper:
		warehouses, err := s.store.Warehouses().ListByKeeper(ctx, user.ID)
		if err != nil {
			return models.Actor{}, err
		}
		for _, w := range warehouses {
			actor.WarehouseIDs = append(actor.WarehouseIDs, w.ID)
		}
	case models.RoleProducer:
		producer, err := s.store.Producers().FindByUser(ctx, user.ID)
		if err != nil {
			return models.Actor{}, err
		}
		actor.ProducerID = producer.ID
	}

	return actor, nil
}

// HarvestsFor lists the harvest ledger scoped to the actor: admins see
// everything, keepers the records destined for their warehouses,
// producers only their own declarations.
func (s *Service) HarvestsFor(ctx context.Context, actor models.Actor) ([]models.HarvestRecord, error) {
	switch {
	case actor.IsAdmin():
		return s.store.Harvests().List(ctx, models.HarvestFilter{})
	case actor.IsKeeper():
		if len(actor.WarehouseIDs) == 0 {
			return nil, nil
		}
		return s.store.Harvests().List(ctx, models.HarvestFilter{WarehouseIDs: actor.WarehouseIDs})
	case actor.IsProducer():
		return s.store.Harvests().List(ctx, models.HarvestFilter{ProducerID: actor.ProducerID})
	default:
		return nil, models.ErrForbidden
	}
}

// DeliveriesFor lists the delivery ledger scoped to the actor.
// Producers have no access to delivery orders.
func (s *Service) DeliveriesFor(ctx context.Context, actor models.Actor) ([]models.DeliveryOrder, error) {
	switch {
	case actor.IsAdmin():
		return s.store.Deliveries().List(ctx, models.DeliveryFilter{})
	case actor.IsKeeper():
		if len(actor.WarehouseIDs) == 0 {
			return nil, nil
		}
		return s.store.Deliveries().List(ctx, models.DeliveryFilter{WarehouseIDs: actor.WarehouseIDs})
	default:
		return nil, models.ErrForbidden
	}
}

// UserDirectory is the user listing with per-role counters.
type UserDirectory struct {
	Users     []models.User `json:"users"`
	Producers int           `json:"producers"`
	Keepers   int           `json:"keepers"`
	Admins    int           `json:"admins"`
}

// ListUsers returns the identity directory. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor models.Actor) (*UserDirectory, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}

	dir := &UserDirectory{Users: users}
	for _, u := range users {
		switch u.Role {
		case models.RoleProducer:
			dir.Producers++
		case models.RoleKeeper:
			dir.Keepers++
		case models.RoleAdmin:
			dir.Admins++
		}
	}
	return dir, nil
}

// AdminDashboard aggregates the global counters shown to admins.
type AdminDashboard struct {
	Warehouses      []models.Warehouse `json:"warehouses"`
	TotalDeclaredKg float64            `json:"total_declared_kg"`
	ProducerCount   int                `json:"producer_count"`
	ZoneCount       int                `json:"zone_count"`
	LowStockAlerts  int                `json:"low_stock_alerts"`
}

// Dashboard builds the admin overview: every warehouse, total declared
// volume, producer and zone counts, and how many depots sit below their
// alert threshold.
func (s *Service) Dashboard(ctx context.Context, actor models.Actor) (*AdminDashboard, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	warehouses, err := s.store.Warehouses().List(ctx)
	if err != nil {
		return nil, err
	}
	totalDeclared, err := s.store.Harvests().SumQuantity(ctx, models.HarvestFilter{})
	if err != nil {
		return nil, err
	}
	producers, err := s.store.Producers().List(ctx)
	if err != nil {
		return nil, err
	}
	zones, err := s.store.Zones().List(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &AdminDashboard{
		Warehouses:      warehouses,
		TotalDeclaredKg: totalDeclared,
		ProducerCount:   len(producers),
		ZoneCount:       len(zones),
	}
	for _, w := range warehouses {
		if w.IsLowStock() {
			dashboard.LowStockAlerts++
		}
	}
	return dashboard, nil
}

// KeeperDashboard shows a keeper their warehouses and the harvests
// waiting for receipt confirmation.
type KeeperDashboard struct {
	Warehouses      []models.Warehouse     `json:"warehouses"`
	PendingHarvests []models.HarvestRecord `json:"pending_harvests"`
}

// KeeperOverview builds the keeper dashboard.
func (s *Service) KeeperOverview(ctx context.Context, actor models.Actor) (*KeeperDashboard, error) {
	if !actor.IsKeeper() && !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	warehouses, err := s.store.Warehouses().ListByKeeper(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	dashboard := &KeeperDashboard{Warehouses: warehouses}
	if len(warehouses) == 0 {
		return dashboard, nil
	}

	ids := make([]string, 0, len(warehouses))
	for _, w := range warehouses {
		ids = append(ids, w.ID)
	}
	pending, err := s.store.Harvests().List(ctx, models.HarvestFilter{
		WarehouseIDs: ids,
		Status:       models.HarvestPendingStatus,
	})
	if err != nil {
		return nil, err
	}
	dashboard.PendingHarvests = pending
	return dashboard, nil
}

// ProducerDashboard shows a producer their profile, latest declarations
// and lifetime received volume.
type ProducerDashboard struct {
	Producer        models.Producer        `json:"producer"`
	RecentHarvests  []models.HarvestRecord `json:"recent_harvests"`
	TotalReceivedKg float64                `json:"total_received_kg"`
}

// ProducerOverview builds the producer dashboard.
func (s *Service) ProducerOverview(ctx context.Context, actor models.Actor) (*ProducerDashboard, error) {
	if !actor.IsProducer() || actor.ProducerID == "" {
		return nil, models.ErrForbidden
	}

	producer, err := s.store.Producers().Find(ctx, actor.ProducerID)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.Harvests().List(ctx, models.HarvestFilter{
		ProducerID: actor.ProducerID,
		Limit:      recentMovementLimit,
	})
	if err != nil {
		return nil, err
	}

	totalReceived, err := s.store.Harvests().SumQuantity(ctx, models.HarvestFilter{
		ProducerID: actor.ProducerID,
		Status:     models.HarvestReceivedStatus,
	})
	if err != nil {
		return nil, err
	}

	return &ProducerDashboard{
		Producer:        *producer,
		RecentHarvests:  recent,
		TotalReceivedKg: totalReceived,
	}, nil
}

// WarehouseDetail is the depot drill-down view: cached state, per-crop
// ledger breakdown and the latest confirmed movements.
type WarehouseDetail struct {
	Warehouse        models.Warehouse       `json:"warehouse"`
	Inventory        []models.CropStockLine `json:"inventory"`
	RecentReceived   []models.HarvestRecord `json:"recent_received"`
	RecentDispatched []models.DeliveryOrder `json:"recent_dispatched"`
}

// WarehouseOverview builds the warehouse detail view. Admins see every
// depot, keepers only their own.
func (s *Service) WarehouseOverview(ctx context.Context, actor models.Actor, warehouseID string) (*WarehouseDetail, error) {
	if !actor.ManagesWarehouse(warehouseID) {
		return nil, models.ErrForbidden
	}

	warehouse, err := s.store.Warehouses().Find(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	inventoryLines, err := s.inventory.DetailedInventory(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	received, err := s.store.Harvests().List(ctx, models.HarvestFilter{
		WarehouseIDs: []string{warehouseID},
		Status:       models.HarvestReceivedStatus,
		Limit:        recentMovementLimit,
	})
	if err != nil {
		return nil, err
	}

	dispatched, err := s.store.Deliveries().List(ctx, models.DeliveryFilter{
		WarehouseIDs: []string{warehouseID},
		Status:       models.DeliveryShippedStatus,
		Limit:        recentMovementLimit,
	})
	if err != nil {
		return nil, err
	}

	return &WarehouseDetail{
		Warehouse:        *warehouse,
		Inventory:        inventoryLines,
		RecentReceived:   received,
		RecentDispatched: dispatched,
	}, nil
}
