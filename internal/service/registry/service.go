// Package registry manages the directory data around the stock core:
// zones, crop types, identities, producers and warehouses, plus the
// role-scoped views each actor is allowed to see.
package registry

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// InventoryReader is the slice of the inventory core the registry needs
// for warehouse detail views.
type InventoryReader interface {
	DetailedInventory(ctx context.Context, warehouseID string) ([]models.CropStockLine, error)
}

// Service implements the directory operations.
type Service struct {
	store     models.Store
	inventory InventoryReader
	logger    *zap.Logger
}

// NewService wires the registry service.
func NewService(store models.Store, inventory InventoryReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, inventory: inventory, logger: logger}
}

// CreateZoneInput identifies a geographic location.
type CreateZoneInput struct {
	Commune  string
	District string
	Village  string
}

// CreateZone registers a new geographic zone. Admin only; duplicate
// (commune, district, village) triples are rejected.
func (s *Service) CreateZone(ctx context.Context, actor models.Actor, input CreateZoneInput) (*models.Zone, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	zone := &models.Zone{
		ID:       uuid.NewString(),
		Commune:  input.Commune,
		District: input.District,
		Village:  input.Village,
	}
	if err := s.store.Zones().Create(ctx, zone); err != nil {
		return nil, err
	}

	s.logger.Info("zone created", zap.String("zone_id", zone.ID), zap.String("label", zone.Label()))
	return zone, nil
}

// ListZones returns every registered zone.
func (s *Service) ListZones(ctx context.Context) ([]models.Zone, error) {
	return s.store.Zones().List(ctx)
}

// DeleteZone removes a zone. Warehouses owned by the zone are cascade
// deleted, taking their delivery orders with them; harvest destinations
// and producer references are nullified. Everything commits in one
// transaction.
func (s *Service) DeleteZone(ctx context.Context, actor models.Actor, zoneID string) error {
	if !actor.IsAdmin() {
		return models.ErrForbidden
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		if _, err := tx.Zones().Find(ctx, zoneID); err != nil {
			return err
		}

		removed, err := tx.Warehouses().DeleteByZone(ctx, zoneID)
		if err != nil {
			return err
		}
		for _, warehouseID := range removed {
			if err := tx.Harvests().NullifyWarehouse(ctx, warehouseID); err != nil {
				return err
			}
			if err := tx.Deliveries().DeleteByWarehouse(ctx, warehouseID); err != nil {
				return err
			}
		}

		if err := tx.Producers().NullifyZone(ctx, zoneID); err != nil {
			return err
		}

		return tx.Zones().Delete(ctx, zoneID)
	})
}

// CreateCropType adds a harvestable product category. Admin only.
func (s *Service) CreateCropType(ctx context.Context, actor models.Actor, name string) (*models.CropType, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	crop := &models.CropType{ID: uuid.NewString(), Name: name}
	if err := s.store.CropTypes().Create(ctx, crop); err != nil {
		return nil, err
	}

	s.logger.Info("crop type created", zap.String("crop_id", crop.ID), zap.String("name", crop.Name))
	return crop, nil
}

// ListCropTypes returns every crop type.
func (s *Service) ListCropTypes(ctx context.Context) ([]models.CropType, error) {
	return s.store.CropTypes().List(ctx)
}

// DeleteCropType removes a crop type unless any harvest record or
// delivery order still references it (referential protection).
func (s *Service) DeleteCropType(ctx context.Context, actor models.Actor, cropTypeID string) error {
	if !actor.IsAdmin() {
		return models.ErrForbidden
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		if _, err := tx.CropTypes().Find(ctx, cropTypeID); err != nil {
			return err
		}

		inHarvests, err := tx.Harvests().Exists(ctx, models.HarvestFilter{CropTypeID: cropTypeID})
		if err != nil {
			return err
		}
		inDeliveries, err := tx.Deliveries().Exists(ctx, models.DeliveryFilter{CropTypeID: cropTypeID})
		if err != nil {
			return err
		}
		if inHarvests || inDeliveries {
			return models.ErrCropTypeInUse
		}

		return tx.CropTypes().Delete(ctx, cropTypeID)
	})
}

// RegisterProducerInput provisions an identity plus producer profile.
type RegisterProducerInput struct {
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	ZoneID     *string
	ParcelInfo string
}

// RegisterProducer creates the identity record and the linked producer
// profile in one transaction.
func (s *Service) RegisterProducer(ctx context.Context, actor models.Actor, input RegisterProducerInput) (*models.Producer, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	var producer *models.Producer
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		if input.ZoneID != nil {
			if _, err := tx.Zones().Find(ctx, *input.ZoneID); err != nil {
				return err
			}
		}

		user := &models.User{
			ID:        uuid.NewString(),
			Username:  input.Username,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Role:      models.RoleProducer,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		producer = &models.Producer{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			Phone:      input.Phone,
			ZoneID:     input.ZoneID,
			ParcelInfo: input.ParcelInfo,
		}
		return tx.Producers().Create(ctx, producer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("producer registered",
		zap.String("producer_id", producer.ID),
		zap.String("username", input.Username))
	return producer, nil
}

// RegisterKeeperInput provisions a warehouse staff identity.
type RegisterKeeperInput struct {
	Username  string
	FirstName string
	LastName  string
}

// RegisterKeeper creates a staff identity that can be assigned to
// warehouses.
func (s *Service) RegisterKeeper(ctx context.Context, actor models.Actor, input RegisterKeeperInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      models.RoleKeeper,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("keeper registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// DeleteUser removes an identity. The producer profile goes with it;
// warehouse keeper assignments are nullified.
func (s *Service) DeleteUser(ctx context.Context, actor models.Actor, userID string) error {
	if !actor.IsAdmin() {
		return models.ErrForbidden
	}

	return s.store.WithinTx(ctx, func(ctx context.Context, tx models.Store) error {
		if _, err := tx.Users().Find(ctx, userID); err != nil {
			return err
		}
		if err := tx.Producers().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Warehouses().NullifyKeeper(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
}

// CreateWarehouseInput describes a new storage depot.
type CreateWarehouseInput struct {
	Name             string
	ZoneID           string
	CapacityKg       float64
	AlertThresholdKg float64
	KeeperID         *string
}

// CreateWarehouse registers a depot in a zone, optionally with a
// responsible keeper. Stock starts at zero.
func (s *Service) CreateWarehouse(ctx context.Context, actor models.Actor, input CreateWarehouseInput) (*models.Warehouse, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}

	if _, err := s.store.Zones().Find(ctx, input.ZoneID); err != nil {
		return nil, err
	}
	if input.KeeperID != nil {
		keeper, err := s.store.Users().Find(ctx, *input.KeeperID)
		if err != nil {
			return nil, err
		}
		if keeper.Role != models.RoleKeeper && keeper.Role != models.RoleAdmin {
			return nil, models.ErrForbidden
		}
	}

	warehouse := &models.Warehouse{
		ID:               uuid.NewString(),
		Name:             input.Name,
		ZoneID:           input.ZoneID,
		KeeperID:         input.KeeperID,
		CapacityKg:       input.CapacityKg,
		AlertThresholdKg: input.AlertThresholdKg,
	}
	if err := s.store.Warehouses().Create(ctx, warehouse); err != nil {
		return nil, err
	}

	s.logger.Info("warehouse created", zap.String("warehouse_id", warehouse.ID), zap.String("name", warehouse.Name))
	return warehouse, nil
}

// AssignKeeper puts a staff identity in charge of a warehouse.
func (s *Service) AssignKeeper(ctx context.Context, actor models.Actor, warehouseID, userID string) error {
	if !actor.IsAdmin() {
		return models.ErrForbidden
	}

	warehouse, err := s.store.Warehouses().Find(ctx, warehouseID)
	if err != nil {
		return err
	}
	keeper, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		return err
	}
	if keeper.Role != models.RoleKeeper && keeper.Role != models.RoleAdmin {
		return models.ErrForbidden
	}

	warehouse.KeeperID = &keeper.ID
	return s.store.Warehouses().Update(ctx, warehouse)
}

// ListWarehouses returns every depot. Visible to all authenticated
// actors; producers need the list to pick a harvest destination.
func (s *Service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return s.store.Warehouses().List(ctx)
}
