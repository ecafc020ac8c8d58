// Package memory provides a map-backed implementation of the domain
// Store. It backs the test suites and serves as a development fallback
// when no MongoDB instance is reachable. WithinTx stages every mutation
// on a snapshot and publishes it only when the callback succeeds, so
// the all-or-nothing contract of the stock transitions holds here too.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// Store is an in-memory models.Store. The zero value is not usable;
// call NewStore.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

var _ models.Store = (*Store)(nil)

func (s *Store) Zones() models.ZoneRepository           { return &zoneRepo{access{store: s}} }
func (s *Store) CropTypes() models.CropTypeRepository   { return &cropRepo{access{store: s}} }
func (s *Store) Users() models.UserRepository           { return &userRepo{access{store: s}} }
func (s *Store) Producers() models.ProducerRepository   { return &producerRepo{access{store: s}} }
func (s *Store) Warehouses() models.WarehouseRepository { return &warehouseRepo{access{store: s}} }
func (s *Store) Harvests() models.HarvestRepository     { return &harvestRepo{access{store: s}} }
func (s *Store) Deliveries() models.DeliveryRepository  { return &deliveryRepo{access{store: s}} }

// WithinTx clones the current dataset, hands a staged store to fn and
// swaps the snapshot in only on success. Concurrent transactions are
// serialized on the store mutex, which is the in-memory equivalent of
// the row-level locking the stock guards require.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx models.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(ctx, &txStore{data: staged}); err != nil {
		return err
	}

	s.data = staged
	return nil
}

// txStore is the staged view handed to WithinTx callbacks. Its repos
// operate on the snapshot without locking; the enclosing transaction
// already holds the store mutex.
type txStore struct {
	data *dataset
}

var _ models.Store = (*txStore)(nil)

func (t *txStore) Zones() models.ZoneRepository           { return &zoneRepo{access{tx: t.data}} }
func (t *txStore) CropTypes() models.CropTypeRepository   { return &cropRepo{access{tx: t.data}} }
func (t *txStore) Users() models.UserRepository           { return &userRepo{access{tx: t.data}} }
func (t *txStore) Producers() models.ProducerRepository   { return &producerRepo{access{tx: t.data}} }
func (t *txStore) Warehouses() models.WarehouseRepository { return &warehouseRepo{access{tx: t.data}} }
func (t *txStore) Harvests() models.HarvestRepository     { return &harvestRepo{access{tx: t.data}} }
func (t *txStore) Deliveries() models.DeliveryRepository  { return &deliveryRepo{access{tx: t.data}} }

// Nested WithinTx joins the enclosing transaction.
func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx models.Store) error) error {
	return fn(ctx, t)
}

type dataset struct {
	zones      map[string]models.Zone
	crops      map[string]models.CropType
	users      map[string]models.User
	producers  map[string]models.Producer
	warehouses map[string]models.Warehouse
	harvests   map[string]models.HarvestRecord
	deliveries map[string]models.DeliveryOrder
}

func newDataset() *dataset {
	return &dataset{
		zones:      make(map[string]models.Zone),
		crops:      make(map[string]models.CropType),
		users:      make(map[string]models.User),
		producers:  make(map[string]models.Producer),
		warehouses: make(map[string]models.Warehouse),
		harvests:   make(map[string]models.HarvestRecord),
		deliveries: make(map[string]models.DeliveryOrder),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.zones {
		c.zones[k] = v
	}
	for k, v := range d.crops {
		c.crops[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.producers {
		c.producers[k] = v
	}
	for k, v := range d.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range d.harvests {
		c.harvests[k] = v
	}
	for k, v := range d.deliveries {
		c.deliveries[k] = v
	}
	return c
}

// access routes repository calls either to the shared dataset (taking
// the store lock) or to a transaction snapshot (lock already held).
type access struct {
	store *Store
	tx    *dataset
}

func (a access) read(f func(d *dataset)) {
	if a.tx != nil {
		f(a.tx)
		return
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	f(a.store.data)
}

func (a access) write(f func(d *dataset) error) error {
	if a.tx != nil {
		return f(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return f(a.store.data)
}

type zoneRepo struct{ access }

func (r *zoneRepo) Create(ctx context.Context, zone *models.Zone) error {
	return r.write(func(d *dataset) error {
		for _, existing := range d.zones {
			if existing.SameTriple(*zone) {
				return models.ErrZoneExists
			}
		}
		d.zones[zone.ID] = *zone
		return nil
	})
}

func (r *zoneRepo) Find(ctx context.Context, id string) (*models.Zone, error) {
	var zone *models.Zone
	r.read(func(d *dataset) {
		if z, ok := d.zones[id]; ok {
			zone = &z
		}
	})
	if zone == nil {
		return nil, models.ErrZoneNotFound
	}
	return zone, nil
}

func (r *zoneRepo) List(ctx context.Context) ([]models.Zone, error) {
	var zones []models.Zone
	r.read(func(d *dataset) {
		for _, z := range d.zones {
			zones = append(zones, z)
		}
	})
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].Commune != zones[j].Commune {
			return zones[i].Commune < zones[j].Commune
		}
		return zones[i].Village < zones[j].Village
	})
	return zones, nil
}

func (r *zoneRepo) Delete(ctx context.Context, id string) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.zones[id]; !ok {
			return models.ErrZoneNotFound
		}
		delete(d.zones, id)
		return nil
	})
}

type cropRepo struct{ access }

func (r *cropRepo) Create(ctx context.Context, crop *models.CropType) error {
	return r.write(func(d *dataset) error {
		for _, existing := range d.crops {
			if strings.EqualFold(existing.Name, crop.Name) {
				return models.ErrCropTypeExists
			}
		}
		d.crops[crop.ID] = *crop
		return nil
	})
}

func (r *cropRepo) Find(ctx context.Context, id string) (*models.CropType, error) {
	var crop *models.CropType
	r.read(func(d *dataset) {
		if c, ok := d.crops[id]; ok {
			crop = &c
		}
	})
	if crop == nil {
		return nil, models.ErrCropTypeNotFound
	}
	return crop, nil
}

func (r *cropRepo) List(ctx context.Context) ([]models.CropType, error) {
	var crops []models.CropType
	r.read(func(d *dataset) {
		for _, c := range d.crops {
			crops = append(crops, c)
		}
	})
	sort.Slice(crops, func(i, j int) bool { return crops[i].Name < crops[j].Name })
	return crops, nil
}

func (r *cropRepo) Delete(ctx context.Context, id string) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.crops[id]; !ok {
			return models.ErrCropTypeNotFound
		}
		delete(d.crops, id)
		return nil
	})
}

type userRepo struct{ access }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.write(func(d *dataset) error {
		for _, existing := range d.users {
			if existing.Username == user.Username {
				return models.ErrUsernameTaken
			}
		}
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) Find(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	r.read(func(d *dataset) {
		if u, ok := d.users[id]; ok {
			user = &u
		}
	})
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	r.read(func(d *dataset) {
		for _, u := range d.users {
			if u.Username == username {
				user = &u
				return
			}
		}
	})
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	r.read(func(d *dataset) {
		for _, u := range d.users {
			users = append(users, u)
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.users[id]; !ok {
			return models.ErrUserNotFound
		}
		delete(d.users, id)
		return nil
	})
}

type producerRepo struct{ access }

func (r *producerRepo) Create(ctx context.Context, producer *models.Producer) error {
	return r.write(func(d *dataset) error {
		d.producers[producer.ID] = *producer
		return nil
	})
}

func (r *producerRepo) Find(ctx context.Context, id string) (*models.Producer, error) {
	var producer *models.Producer
	r.read(func(d *dataset) {
		if p, ok := d.producers[id]; ok {
			producer = &p
		}
	})
	if producer == nil {
		return nil, models.ErrProducerNotFound
	}
	return producer, nil
}

func (r *producerRepo) FindByUser(ctx context.Context, userID string) (*models.Producer, error) {
	var producer *models.Producer
	r.read(func(d *dataset) {
		for _, p := range d.producers {
			if p.UserID == userID {
				producer = &p
				return
			}
		}
	})
	if producer == nil {
		return nil, models.ErrProducerNotFound
	}
	return producer, nil
}

func (r *producerRepo) List(ctx context.Context) ([]models.Producer, error) {
	var producers []models.Producer
	r.read(func(d *dataset) {
		for _, p := range d.producers {
			producers = append(producers, p)
		}
	})
	sort.Slice(producers, func(i, j int) bool { return producers[i].ID < producers[j].ID })
	return producers, nil
}

func (r *producerRepo) Update(ctx context.Context, producer *models.Producer) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.producers[producer.ID]; !ok {
			return models.ErrProducerNotFound
		}
		d.producers[producer.ID] = *producer
		return nil
	})
}

func (r *producerRepo) NullifyZone(ctx context.Context, zoneID string) error {
	return r.write(func(d *dataset) error {
		for id, p := range d.producers {
			if p.ZoneID != nil && *p.ZoneID == zoneID {
				p.ZoneID = nil
				d.producers[id] = p
			}
		}
		return nil
	})
}

func (r *producerRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.write(func(d *dataset) error {
		for id, p := range d.producers {
			if p.UserID == userID {
				delete(d.producers, id)
			}
		}
		return nil
	})
}

type warehouseRepo struct{ access }

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	return r.write(func(d *dataset) error {
		d.warehouses[warehouse.ID] = *warehouse
		return nil
	})
}

func (r *warehouseRepo) Find(ctx context.Context, id string) (*models.Warehouse, error) {
	var warehouse *models.Warehouse
	r.read(func(d *dataset) {
		if w, ok := d.warehouses[id]; ok {
			warehouse = &w
		}
	})
	if warehouse == nil {
		return nil, models.ErrWarehouseNotFound
	}
	return warehouse, nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	r.read(func(d *dataset) {
		for _, w := range d.warehouses {
			warehouses = append(warehouses, w)
		}
	})
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].Name < warehouses[j].Name })
	return warehouses, nil
}

func (r *warehouseRepo) ListByKeeper(ctx context.Context, keeperID string) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	r.read(func(d *dataset) {
		for _, w := range d.warehouses {
			if w.KeeperID != nil && *w.KeeperID == keeperID {
				warehouses = append(warehouses, w)
			}
		}
	})
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].Name < warehouses[j].Name })
	return warehouses, nil
}

func (r *warehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.warehouses[warehouse.ID]; !ok {
			return models.ErrWarehouseNotFound
		}
		d.warehouses[warehouse.ID] = *warehouse
		return nil
	})
}

func (r *warehouseRepo) DeleteByZone(ctx context.Context, zoneID string) ([]string, error) {
	var removed []string
	err := r.write(func(d *dataset) error {
		for id, w := range d.warehouses {
			if w.ZoneID == zoneID {
				removed = append(removed, id)
				delete(d.warehouses, id)
			}
		}
		return nil
	})
	return removed, err
}

func (r *warehouseRepo) NullifyKeeper(ctx context.Context, userID string) error {
	return r.write(func(d *dataset) error {
		for id, w := range d.warehouses {
			if w.KeeperID != nil && *w.KeeperID == userID {
				w.KeeperID = nil
				d.warehouses[id] = w
			}
		}
		return nil
	})
}

type harvestRepo struct{ access }

func matchHarvest(h models.HarvestRecord, f models.HarvestFilter) bool {
	if f.ProducerID != "" && h.ProducerID != f.ProducerID {
		return false
	}
	if f.CropTypeID != "" && h.CropTypeID != f.CropTypeID {
		return false
	}
	if f.Status != "" && h.Status != f.Status {
		return false
	}
	if len(f.WarehouseIDs) > 0 {
		if h.WarehouseID == nil {
			return false
		}
		found := false
		for _, id := range f.WarehouseIDs {
			if *h.WarehouseID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *harvestRepo) Create(ctx context.Context, record *models.HarvestRecord) error {
	return r.write(func(d *dataset) error {
		d.harvests[record.ID] = *record
		return nil
	})
}

func (r *harvestRepo) Find(ctx context.Context, id string) (*models.HarvestRecord, error) {
	var record *models.HarvestRecord
	r.read(func(d *dataset) {
		if h, ok := d.harvests[id]; ok {
			record = &h
		}
	})
	if record == nil {
		return nil, models.ErrHarvestNotFound
	}
	return record, nil
}

func (r *harvestRepo) Update(ctx context.Context, record *models.HarvestRecord) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.harvests[record.ID]; !ok {
			return models.ErrHarvestNotFound
		}
		d.harvests[record.ID] = *record
		return nil
	})
}

func (r *harvestRepo) List(ctx context.Context, filter models.HarvestFilter) ([]models.HarvestRecord, error) {
	var records []models.HarvestRecord
	r.read(func(d *dataset) {
		for _, h := range d.harvests {
			if matchHarvest(h, filter) {
				records = append(records, h)
			}
		}
	})
	sort.Slice(records, func(i, j int) bool { return records[i].HarvestDate.After(records[j].HarvestDate) })
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (r *harvestRepo) SumQuantity(ctx context.Context, filter models.HarvestFilter) (float64, error) {
	var total float64
	r.read(func(d *dataset) {
		for _, h := range d.harvests {
			if matchHarvest(h, filter) {
				total += h.QuantityKg
			}
		}
	})
	return total, nil
}

func (r *harvestRepo) Exists(ctx context.Context, filter models.HarvestFilter) (bool, error) {
	var found bool
	r.read(func(d *dataset) {
		for _, h := range d.harvests {
			if matchHarvest(h, filter) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *harvestRepo) NullifyWarehouse(ctx context.Context, warehouseID string) error {
	return r.write(func(d *dataset) error {
		for id, h := range d.harvests {
			if h.WarehouseID != nil && *h.WarehouseID == warehouseID {
				h.WarehouseID = nil
				d.harvests[id] = h
			}
		}
		return nil
	})
}

type deliveryRepo struct{ access }

func matchDelivery(o models.DeliveryOrder, f models.DeliveryFilter) bool {
	if f.CropTypeID != "" && o.CropTypeID != f.CropTypeID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if len(f.WarehouseIDs) > 0 {
		found := false
		for _, id := range f.WarehouseIDs {
			if o.WarehouseID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *deliveryRepo) Create(ctx context.Context, order *models.DeliveryOrder) error {
	return r.write(func(d *dataset) error {
		d.deliveries[order.ID] = *order
		return nil
	})
}

func (r *deliveryRepo) Find(ctx context.Context, id string) (*models.DeliveryOrder, error) {
	var order *models.DeliveryOrder
	r.read(func(d *dataset) {
		if o, ok := d.deliveries[id]; ok {
			order = &o
		}
	})
	if order == nil {
		return nil, models.ErrDeliveryNotFound
	}
	return order, nil
}

func (r *deliveryRepo) Update(ctx context.Context, order *models.DeliveryOrder) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.deliveries[order.ID]; !ok {
			return models.ErrDeliveryNotFound
		}
		d.deliveries[order.ID] = *order
		return nil
	})
}

func (r *deliveryRepo) List(ctx context.Context, filter models.DeliveryFilter) ([]models.DeliveryOrder, error) {
	var orders []models.DeliveryOrder
	r.read(func(d *dataset) {
		for _, o := range d.deliveries {
			if matchDelivery(o, filter) {
				orders = append(orders, o)
			}
		}
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if filter.Limit > 0 && len(orders) > filter.Limit {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (r *deliveryRepo) SumQuantity(ctx context.Context, filter models.DeliveryFilter) (float64, error) {
	var total float64
	r.read(func(d *dataset) {
		for _, o := range d.deliveries {
			if matchDelivery(o, filter) {
				total += float64(o.QuantityKg)
			}
		}
	})
	return total, nil
}

func (r *deliveryRepo) DeleteByWarehouse(ctx context.Context, warehouseID string) error {
	return r.write(func(d *dataset) error {
		for id, o := range d.deliveries {
			if o.WarehouseID == warehouseID {
				delete(d.deliveries, id)
			}
		}
		return nil
	})
}

func (r *deliveryRepo) Exists(ctx context.Context, filter models.DeliveryFilter) (bool, error) {
	var found bool
	r.read(func(d *dataset) {
		for _, o := range d.deliveries {
			if matchDelivery(o, filter) {
				found = true
				return
			}
		}
	})
	return found, nil
}
