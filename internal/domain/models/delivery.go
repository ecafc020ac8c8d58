package models

import "time"

// DeliveryStatus tracks the lifecycle of an outbound order.
// The only transition is scheduled -> shipped; shipped is terminal.
type DeliveryStatus string

const (
	DeliveryScheduledStatus DeliveryStatus = "scheduled"
	DeliveryShippedStatus   DeliveryStatus = "shipped"
)

// DeliveryOrder is an admin-issued instruction to ship stock from a
// warehouse to a client. Creating the order never touches the stock
// counter; only dispatch confirmation decrements it.
type DeliveryOrder struct {
	ID           string         `bson:"_id" json:"id"`
	Client       string         `bson:"client" json:"client"`
	WarehouseID  string         `bson:"warehouse_id" json:"warehouse_id"`
	CropTypeID   string         `bson:"crop_type_id" json:"crop_type_id"`
	QuantityKg   int64          `bson:"quantity_kg" json:"quantity_kg"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	DispatchedAt *time.Time     `bson:"dispatched_at,omitempty" json:"dispatched_at,omitempty"`
	Status       DeliveryStatus `bson:"status" json:"status"`
	OrderedBy    string         `bson:"ordered_by" json:"ordered_by"`
	ConfirmedBy  *string        `bson:"confirmed_by,omitempty" json:"confirmed_by,omitempty"`
}
