package models

// Amenity categories recognized by the walkability scorer. Providers map
// their own taxonomy (e.g. OSM amenity/shop/leisure tags) onto these.
const (
	CategoryGrocery    = "grocery"
	CategorySchool     = "school"
	CategoryHospital   = "hospital"
	CategoryPharmacy   = "pharmacy"
	CategoryRestaurant = "restaurant"
	CategoryCafe       = "cafe"
	CategoryPark       = "park"
	CategoryTransit    = "transit"
	CategoryNightlife  = "nightlife"
)

// AmenityRecord is a single point of interest near the query location, as
// returned by the amenity provider. Read-only to the scoring code.
type AmenityRecord struct {
	Category  string  `json:"category"`
	Name      string  `json:"name,omitempty"`
	DistanceM float64 `json:"distance_m"`
}
