package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geoinsight/geoinsight/pkg/models"
	"github.com/geoinsight/geoinsight/pkg/overpass"
)

// Sentinel errors for OpenStreetMap client failures.
var (
	ErrUnreachable    = errors.New("osm unreachable")
	ErrBadResponse    = errors.New("osm bad response")
	ErrTimeout        = errors.New("osm timeout")
	ErrAddressUnknown = errors.New("address could not be geocoded")
)

// Client fetches amenities around an address using Nominatim for
// geocoding and Overpass for the amenity query. It implements
// models.AmenityProvider.
type Client struct {
	overpassURL  string
	nominatimURL string
	client       *http.Client
}

var _ models.AmenityProvider = (*Client)(nil)

// NewClient creates a new OpenStreetMap client.
func NewClient(overpassURL, nominatimURL string, timeout time.Duration) *Client {
	return &Client{
		overpassURL:  overpassURL,
		nominatimURL: nominatimURL,
		client:       &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchAmenities(ctx context.Context, address string, radiusM float64) ([]models.AmenityRecord, error) {
	lat, lon, err := c.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	return c.queryAmenities(ctx, lat, lon, radiusM)
}

// Geocode resolves an address to coordinates via Nominatim.
func (c *Client) Geocode(ctx context.Context, address string) (lat, lon float64, err error) {
	params := url.Values{
		"q":      {address},
		"format": {"json"},
		"limit":  {"1"},
	}
	u := fmt.Sprintf("%s/search?%s", c.nominatimURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "geoinsight/1.0")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, 0, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: geocode status %d", ErrBadResponse, resp.StatusCode)
	}

	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return 0, 0, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrAddressUnknown, address)
	}

	lat, err = strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid latitude %q", ErrBadResponse, places[0].Lat)
	}
	lon, err = strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid longitude %q", ErrBadResponse, places[0].Lon)
	}
	return lat, lon, nil
}

// amenityTagFilters are the OSM tag families classify understands.
var amenityTagFilters = []string{
	`"amenity"`,
	`"shop"`,
	`"leisure"`,
	`"public_transport"`,
	`"railway"="station"`,
}

// queryAmenities runs an Overpass around-query for all tag families we
// can classify.
func (c *Client) queryAmenities(ctx context.Context, lat, lon, radiusM float64) ([]models.AmenityRecord, error) {
	query := overpass.QueryBuilder{}.BuildAroundQuery(overpass.AroundParams{
		Lat:        lat,
		Lon:        lon,
		RadiusM:    radiusM,
		TagFilters: amenityTagFilters,
	})

	body := url.Values{"data": {query}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.overpassURL, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", "geoinsight/1.0")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: overpass status %d", ErrBadResponse, resp.StatusCode)
	}

	var overpass overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpass); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}

	records := []models.AmenityRecord{}
	for _, el := range overpass.Elements {
		category, ok := classify(el.Tags)
		if !ok {
			continue
		}
		records = append(records, models.AmenityRecord{
			Category:  category,
			Name:      amenityName(el.Tags),
			DistanceM: haversineM(lat, lon, el.Lat, el.Lon),
		})
	}
	return records, nil
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// classify maps OSM tags onto amenity categories. Unclassifiable
// elements are skipped.
func classify(tags map[string]string) (string, bool) {
	switch tags["shop"] {
	case "supermarket", "convenience", "greengrocer", "grocery":
		return models.CategoryGrocery, true
	}
	switch tags["amenity"] {
	case "school", "college", "university", "kindergarten":
		return models.CategorySchool, true
	case "hospital", "clinic", "doctors":
		return models.CategoryHospital, true
	case "pharmacy":
		return models.CategoryPharmacy, true
	case "restaurant", "fast_food", "food_court":
		return models.CategoryRestaurant, true
	case "cafe":
		return models.CategoryCafe, true
	case "bar", "pub", "nightclub":
		return models.CategoryNightlife, true
	case "bus_station":
		return models.CategoryTransit, true
	}
	switch tags["leisure"] {
	case "park", "garden", "playground", "nature_reserve":
		return models.CategoryPark, true
	}
	if tags["railway"] == "station" || tags["public_transport"] != "" {
		return models.CategoryTransit, true
	}
	return "", false
}

func amenityName(tags map[string]string) string {
	if name := tags["name"]; name != "" {
		return name
	}
	return "unnamed"
}

const earthRadiusM = 6371000

// haversineM computes the great-circle distance in meters.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
