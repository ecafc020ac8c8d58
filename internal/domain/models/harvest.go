package models

import "time"

// HarvestStatus tracks the lifecycle of a declared harvest.
// The only transition is pending -> received; received is terminal.
type HarvestStatus string

const (
	HarvestPendingStatus  HarvestStatus = "pending"
	HarvestReceivedStatus HarvestStatus = "received"
)

// HarvestRecord is a producer's declaration of a quantity of a crop,
// pending confirmation by the destination warehouse. WarehouseID is a
// weak reference nulled when the warehouse disappears; CropTypeID is
// protected, blocking the crop type's deletion while referenced.
type HarvestRecord struct {
	ID          string        `bson:"_id" json:"id"`
	ProducerID  string        `bson:"producer_id" json:"producer_id"`
	CropTypeID  string        `bson:"crop_type_id" json:"crop_type_id"`
	QuantityKg  float64       `bson:"quantity_kg" json:"quantity_kg"`
	HarvestDate time.Time     `bson:"harvest_date" json:"harvest_date"`
	WarehouseID *string       `bson:"warehouse_id,omitempty" json:"warehouse_id,omitempty"`
	Status      HarvestStatus `bson:"status" json:"status"`
	ReceivedAt  *time.Time    `bson:"received_at,omitempty" json:"received_at,omitempty"`
}
