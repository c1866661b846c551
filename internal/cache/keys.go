package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func JobStatusKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:%s", jobID)
}

// AmenityQueryKey identifies a cached amenity lookup. The address is
// normalized and hashed so arbitrary user input stays out of key space.
func AmenityQueryKey(address string, radiusM float64) string {
	norm := strings.ToLower(strings.Join(strings.Fields(address), " "))
	sum := sha256.Sum256([]byte(norm))
	return fmt.Sprintf("osm:amenities:%s:%d", hex.EncodeToString(sum[:8]), int(radiusM))
}

// GeocodeKey identifies a cached address-to-coordinates lookup.
func GeocodeKey(address string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(address), " "))
	sum := sha256.Sum256([]byte(norm))
	return fmt.Sprintf("osm:geocode:%s", hex.EncodeToString(sum[:8]))
}
