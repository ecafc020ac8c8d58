package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

func harvestQuery(filter models.HarvestFilter) bson.M {
	query := bson.M{}
	if filter.ProducerID != "" {
		query["producer_id"] = filter.ProducerID
	}
	if filter.CropTypeID != "" {
		query["crop_type_id"] = filter.CropTypeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.WarehouseIDs) > 0 {
		query["warehouse_id"] = bson.M{"$in": filter.WarehouseIDs}
	}
	return query
}

func deliveryQuery(filter models.DeliveryFilter) bson.M {
	query := bson.M{}
	if filter.CropTypeID != "" {
		query["crop_type_id"] = filter.CropTypeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.WarehouseIDs) > 0 {
		query["warehouse_id"] = bson.M{"$in": filter.WarehouseIDs}
	}
	return query
}

type harvestRepo struct{ store *Store }

func (r *harvestRepo) coll() *mongo.Collection { return r.store.db.Collection(harvestsColl) }

func (r *harvestRepo) Create(ctx context.Context, record *models.HarvestRecord) error {
	if _, err := r.coll().InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert harvest record: %w", err)
	}
	return nil
}

func (r *harvestRepo) Find(ctx context.Context, id string) (*models.HarvestRecord, error) {
	return findOne[models.HarvestRecord](ctx, r.coll(), bson.M{"_id": id}, models.ErrHarvestNotFound)
}

func (r *harvestRepo) Update(ctx context.Context, record *models.HarvestRecord) error {
	result, err := r.coll().ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		return fmt.Errorf("update harvest record: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrHarvestNotFound
	}
	return nil
}

func (r *harvestRepo) List(ctx context.Context, filter models.HarvestFilter) ([]models.HarvestRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "harvest_date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.HarvestRecord](ctx, r.coll(), harvestQuery(filter), opts)
}

func (r *harvestRepo) SumQuantity(ctx context.Context, filter models.HarvestFilter) (float64, error) {
	return sumField(ctx, r.coll(), harvestQuery(filter), "quantity_kg")
}

func (r *harvestRepo) Exists(ctx context.Context, filter models.HarvestFilter) (bool, error) {
	return exists(ctx, r.coll(), harvestQuery(filter))
}

func (r *harvestRepo) NullifyWarehouse(ctx context.Context, warehouseID string) error {
	_, err := r.coll().UpdateMany(ctx,
		bson.M{"warehouse_id": warehouseID},
		bson.M{"$unset": bson.M{"warehouse_id": ""}})
	if err != nil {
		return fmt.Errorf("nullify harvest destinations: %w", err)
	}
	return nil
}

type deliveryRepo struct{ store *Store }

func (r *deliveryRepo) coll() *mongo.Collection { return r.store.db.Collection(deliveriesColl) }

func (r *deliveryRepo) Create(ctx context.Context, order *models.DeliveryOrder) error {
	if _, err := r.coll().InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert delivery order: %w", err)
	}
	return nil
}

func (r *deliveryRepo) Find(ctx context.Context, id string) (*models.DeliveryOrder, error) {
	return findOne[models.DeliveryOrder](ctx, r.coll(), bson.M{"_id": id}, models.ErrDeliveryNotFound)
}

func (r *deliveryRepo) Update(ctx context.Context, order *models.DeliveryOrder) error {
	result, err := r.coll().ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return fmt.Errorf("update delivery order: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrDeliveryNotFound
	}
	return nil
}

func (r *deliveryRepo) List(ctx context.Context, filter models.DeliveryFilter) ([]models.DeliveryOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.DeliveryOrder](ctx, r.coll(), deliveryQuery(filter), opts)
}

func (r *deliveryRepo) SumQuantity(ctx context.Context, filter models.DeliveryFilter) (float64, error) {
	return sumField(ctx, r.coll(), deliveryQuery(filter), "quantity_kg")
}

func (r *deliveryRepo) Exists(ctx context.Context, filter models.DeliveryFilter) (bool, error) {
	return exists(ctx, r.coll(), deliveryQuery(filter))
}

func (r *deliveryRepo) DeleteByWarehouse(ctx context.Context, warehouseID string) error {
	if _, err := r.coll().DeleteMany(ctx, bson.M{"warehouse_id": warehouseID}); err != nil {
		return fmt.Errorf("cascade delivery orders: %w", err)
	}
	return nil
}
