package models

// Actor is the capability token evaluated before every core operation.
// It is built by the access gate from the authenticated identity and
// passed explicitly into each call; core logic never reads ambient
// session state.
type Actor struct {
	UserID string
	Role   Role
	// WarehouseIDs lists the warehouses a keeper is responsible for.
	// Empty for admins (global scope) and producers.
	WarehouseIDs []string
	// ProducerID is set when the actor has a producer profile.
	ProducerID string
}

// IsAdmin reports whether the actor operates with global scope.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsKeeper reports whether the actor is warehouse staff.
func (a Actor) IsKeeper() bool { return a.Role == RoleKeeper }

// IsProducer reports whether the actor is a producer.
func (a Actor) IsProducer() bool { return a.Role == RoleProducer }

// ManagesWarehouse reports whether the actor may confirm stock
// movements on the given warehouse. Admins manage every warehouse,
// keepers only their assigned ones.
func (a Actor) ManagesWarehouse(warehouseID string) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.IsKeeper() {
		return false
	}
	for _, id := range a.WarehouseIDs {
		if id == warehouseID {
			return true
		}
	}
	return false
}

// OwnsHarvest reports whether the actor is the producer who declared
// the record.
func (a Actor) OwnsHarvest(record HarvestRecord) bool {
	return a.ProducerID != "" && a.ProducerID == record.ProducerID
}
