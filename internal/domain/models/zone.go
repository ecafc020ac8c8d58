package models

import "fmt"

// Zone is a geographic location entry (commune / district / village).
// The (commune, district, village) triple is unique across the registry.
type Zone struct {
	ID       string `bson:"_id" json:"id"`
	Commune  string `bson:"commune" json:"commune"`
	District string `bson:"district" json:"district"`
	Village  string `bson:"village" json:"village"`
}

// Label renders the zone the way it is displayed to actors:
// "Village - District (Commune)".
func (z Zone) Label() string {
	return fmt.Sprintf("%s - %s (%s)", z.Village, z.District, z.Commune)
}

// SameTriple reports whether two zones describe the same location.
func (z Zone) SameTriple(other Zone) bool {
	return z.Commune == other.Commune && z.District == other.District && z.Village == other.Village
}
