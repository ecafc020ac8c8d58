// Package mongodb implements the domain Store on MongoDB. The atomic
// stock transitions map onto multi-document transactions: WithinTx
// opens a session and runs the callback under WithTransaction, so the
// ledger status flip and the warehouse counter update commit together
// or roll back together.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

const (
	zonesColl      = "zones"
	cropsColl      = "crop_types"
	usersColl      = "users"
	producersColl  = "producers"
	warehousesColl = "warehouses"
	harvestsColl   = "harvest_records"
	deliveriesColl = "delivery_orders"
	reportsColl    = "inventory_reports"
)

// Store is a MongoDB-backed models.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ models.Store = (*Store)(nil)

func (s *Store) Zones() models.ZoneRepository           { return &zoneRepo{s} }
func (s *Store) CropTypes() models.CropTypeRepository   { return &cropRepo{s} }
func (s *Store) Users() models.UserRepository           { return &userRepo{s} }
func (s *Store) Producers() models.ProducerRepository   { return &producerRepo{s} }
func (s *Store) Warehouses() models.WarehouseRepository { return &warehouseRepo{s} }
func (s *Store) Harvests() models.HarvestRepository     { return &harvestRepo{s} }
func (s *Store) Deliveries() models.DeliveryRepository  { return &deliveryRepo{s} }

// WithinTx runs fn inside a MongoDB transaction. The session is bound
// to the context, so the repositories transparently join the
// transaction; concurrent transactions touching the same warehouse
// document conflict and retry, which gives the stock guards the
// serialized read-check-write they require.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx models.Store) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, s)
	})
	return err
}

// SaveInventoryReport persists a generated inventory report.
func (s *Store) SaveInventoryReport(ctx context.Context, report models.InventoryReport) error {
	if _, err := s.db.Collection(reportsColl).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert inventory report: %w", err)
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, notFound error) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

func exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	count, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return count > 0, nil
}

func sumField(ctx context.Context, coll *mongo.Collection, filter bson.M, field string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$" + field}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate sum: %w", err)
	}

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("decode sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

type zoneRepo struct{ store *Store }

func (r *zoneRepo) coll() *mongo.Collection { return r.store.db.Collection(zonesColl) }

func (r *zoneRepo) Create(ctx context.Context, zone *models.Zone) error {
	duplicate, err := exists(ctx, r.coll(), bson.M{
		"commune":  zone.Commune,
		"district": zone.District,
		"village":  zone.Village,
	})
	if err != nil {
		return err
	}
	if duplicate {
		return models.ErrZoneExists
	}

	if _, err := r.coll().InsertOne(ctx, zone); err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

func (r *zoneRepo) Find(ctx context.Context, id string) (*models.Zone, error) {
	return findOne[models.Zone](ctx, r.coll(), bson.M{"_id": id}, models.ErrZoneNotFound)
}

func (r *zoneRepo) List(ctx context.Context) ([]models.Zone, error) {
	return findAll[models.Zone](ctx, r.coll(), bson.M{},
		options.Find().SetSort(bson.D{{Key: "commune", Value: 1}, {Key: "village", Value: 1}}))
}

func (r *zoneRepo) Delete(ctx context.Context, id string) error {
	result, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrZoneNotFound
	}
	return nil
}

type cropRepo struct{ store *Store }

func (r *cropRepo) coll() *mongo.Collection { return r.store.db.Collection(cropsColl) }

func (r *cropRepo) Create(ctx context.Context, crop *models.CropType) error {
	duplicate, err := exists(ctx, r.coll(), bson.M{"name": crop.Name})
	if err != nil {
		return err
	}
	if duplicate {
		return models.ErrCropTypeExists
	}

	if _, err := r.coll().InsertOne(ctx, crop); err != nil {
		return fmt.Errorf("insert crop type: %w", err)
	}
	return nil
}

func (r *cropRepo) Find(ctx context.Context, id string) (*models.CropType, error) {
	return findOne[models.CropType](ctx, r.coll(), bson.M{"_id": id}, models.ErrCropTypeNotFound)
}

func (r *cropRepo) List(ctx context.Context) ([]models.CropType, error) {
	return findAll[models.CropType](ctx, r.coll(), bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *cropRepo) Delete(ctx context.Context, id string) error {
	result, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete crop type: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrCropTypeNotFound
	}
	return nil
}

type userRepo struct{ store *Store }

func (r *userRepo) coll() *mongo.Collection { return r.store.db.Collection(usersColl) }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	duplicate, err := exists(ctx, r.coll(), bson.M{"username": user.Username})
	if err != nil {
		return err
	}
	if duplicate {
		return models.ErrUsernameTaken
	}

	if _, err := r.coll().InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) Find(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll(), bson.M{"_id": id}, models.ErrUserNotFound)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll(), bson.M{"username": username}, models.ErrUserNotFound)
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.coll(), bson.M{},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	result, err := r.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

type producerRepo struct{ store *Store }

func (r *producerRepo) coll() *mongo.Collection { return r.store.db.Collection(producersColl) }

func (r *producerRepo) Create(ctx context.Context, producer *models.Producer) error {
	if _, err := r.coll().InsertOne(ctx, producer); err != nil {
		return fmt.Errorf("insert producer: %w", err)
	}
	return nil
}

func (r *producerRepo) Find(ctx context.Context, id string) (*models.Producer, error) {
	return findOne[models.Producer](ctx, r.coll(), bson.M{"_id": id}, models.ErrProducerNotFound)
}

func (r *producerRepo) FindByUser(ctx context.Context, userID string) (*models.Producer, error) {
	return findOne[models.Producer](ctx, r.coll(), bson.M{"user_id": userID}, models.ErrProducerNotFound)
}

func (r *producerRepo) List(ctx context.Context) ([]models.Producer, error) {
	return findAll[models.Producer](ctx, r.coll(), bson.M{})
}

func (r *producerRepo) Update(ctx context.Context, producer *models.Producer) error {
	result, err := r.coll().ReplaceOne(ctx, bson.M{"_id": producer.ID}, producer)
	if err != nil {
		return fmt.Errorf("update producer: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrProducerNotFound
	}
	return nil
}

func (r *producerRepo) NullifyZone(ctx context.Context, zoneID string) error {
	_, err := r.coll().UpdateMany(ctx,
		bson.M{"zone_id": zoneID},
		bson.M{"$unset": bson.M{"zone_id": ""}})
	if err != nil {
		return fmt.Errorf("nullify producer zones: %w", err)
	}
	return nil
}

func (r *producerRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.coll().DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("delete producers by user: %w", err)
	}
	return nil
}

type warehouseRepo struct{ store *Store }

func (r *warehouseRepo) coll() *mongo.Collection { return r.store.db.Collection(warehousesColl) }

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	if _, err := r.coll().InsertOne(ctx, warehouse); err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *warehouseRepo) Find(ctx context.Context, id string) (*models.Warehouse, error) {
	return findOne[models.Warehouse](ctx, r.coll(), bson.M{"_id": id}, models.ErrWarehouseNotFound)
}

func (r *warehouseRepo) List(ctx context.Context) ([]models.Warehouse, error) {
	return findAll[models.Warehouse](ctx, r.coll(), bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *warehouseRepo) ListByKeeper(ctx context.Context, keeperID string) ([]models.Warehouse, error) {
	return findAll[models.Warehouse](ctx, r.coll(), bson.M{"keeper_id": keeperID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *warehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	result, err := r.coll().ReplaceOne(ctx, bson.M{"_id": warehouse.ID}, warehouse)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrWarehouseNotFound
	}
	return nil
}

func (r *warehouseRepo) DeleteByZone(ctx context.Context, zoneID string) ([]string, error) {
	doomed, err := findAll[models.Warehouse](ctx, r.coll(), bson.M{"zone_id": zoneID})
	if err != nil {
		return nil, err
	}
	if len(doomed) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(doomed))
	for _, w := range doomed {
		ids = append(ids, w.ID)
	}

	if _, err := r.coll().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete warehouses by zone: %w", err)
	}
	return ids, nil
}

func (r *warehouseRepo) NullifyKeeper(ctx context.Context, userID string) error {
	_, err := r.coll().UpdateMany(ctx,
		bson.M{"keeper_id": userID},
		bson.M{"$unset": bson.M{"keeper_id": ""}})
	if err != nil {
		return fmt.Errorf("nullify warehouse keepers: %w", err)
	}
	return nil
}
