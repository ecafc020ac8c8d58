package models

// Role classifies what an identity is allowed to do. Producers declare
// harvests, keepers confirm movements on their assigned warehouses,
// admins operate globally.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleKeeper   Role = "keeper"
	RoleProducer Role = "producer"
)

// User is an identity record. Authentication itself (passwords, sessions)
// lives outside this service; the core only needs the role attached to
// the identity.
type User struct {
	ID        string `bson:"_id" json:"id"`
	Username  string `bson:"username" json:"username"`
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Role      Role   `bson:"role" json:"role"`
}

// FullName returns "First Last" for display.
func (u User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Producer binds an identity to a zone and declared land parcels.
// ZoneID is a weak reference: deleting the zone nulls it out.
type Producer struct {
	ID         string  `bson:"_id" json:"id"`
	UserID     string  `bson:"user_id" json:"user_id"`
	Phone      string  `bson:"phone" json:"phone"`
	ZoneID     *string `bson:"zone_id,omitempty" json:"zone_id,omitempty"`
	ParcelInfo string  `bson:"parcel_info" json:"parcel_info"`
}
