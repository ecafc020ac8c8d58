package models

// CropType is a harvestable product category (maize, soy, tomato...).
// Names are unique. A crop type referenced by any harvest record or
// delivery order cannot be deleted.
type CropType struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
