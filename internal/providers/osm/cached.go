package osm

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/geoinsight/geoinsight/internal/cache"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// Provider is what CachedClient decorates: amenity lookups plus raw
// geocoding. *Client satisfies it.
type Provider interface {
	models.AmenityProvider
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// CachedClient wraps a Provider with a Redis-backed cache for both amenity
// queries and geocode lookups. Cache failures are logged and treated as
// misses.
type CachedClient struct {
	inner  Provider
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

var (
	_ models.AmenityProvider = (*CachedClient)(nil)
	_ Provider               = (*Client)(nil)
)

func NewCachedClient(inner Provider, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedClient {
	return &CachedClient{inner: inner, cache: c, ttl: ttl, logger: logger}
}

func (c *CachedClient) FetchAmenities(ctx context.Context, address string, radiusM float64) ([]models.AmenityRecord, error) {
	key := cache.AmenityQueryKey(address, radiusM)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("amenity cache read failed", "error", err)
	} else if ok {
		var records []models.AmenityRecord
		if err := json.Unmarshal(raw, &records); err == nil {
			return records, nil
		}
		c.logger.Warn("amenity cache entry corrupt, refetching", "key", key)
	}

	records, err := c.inner.FetchAmenities(ctx, address, radiusM)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(records); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("amenity cache write failed", "error", err)
		}
	}
	return records, nil
}

type cachedCoords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocode resolves an address through the cache. An address geocodes the
// same way for every subtask, so one Nominatim round-trip serves both the
// amenity and the imagery paths.
func (c *CachedClient) Geocode(ctx context.Context, address string) (lat, lon float64, err error) {
	key := cache.GeocodeKey(address)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("geocode cache read failed", "error", err)
	} else if ok {
		var coords cachedCoords
		if err := json.Unmarshal(raw, &coords); err == nil {
			return coords.Lat, coords.Lon, nil
		}
		c.logger.Warn("geocode cache entry corrupt, refetching", "key", key)
	}

	lat, lon, err = c.inner.Geocode(ctx, address)
	if err != nil {
		return 0, 0, err
	}

	if raw, err := json.Marshal(cachedCoords{Lat: lat, Lon: lon}); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("geocode cache write failed", "error", err)
		}
	}
	return lat, lon, nil
}
