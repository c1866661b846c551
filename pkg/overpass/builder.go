// Package overpass constructs Overpass QL queries for OpenStreetMap data.
package overpass

import (
	"fmt"
	"strings"
)

// QueryBuilder constructs Overpass QL query strings.
// All methods are pure functions with no side effects.
// Zero value is ready to use.
type QueryBuilder struct{}

// AroundParams defines inputs for a radius query around a point.
type AroundParams struct {
	Lat        float64
	Lon        float64
	RadiusM    float64
	TagFilters []string
	TimeoutSec int
}

// BuildAroundQuery returns an Overpass QL query selecting all nodes within
// RadiusM of the point that match any of the tag filters. A filter is an
// Overpass tag clause without brackets, e.g. `"amenity"` or
// `"railway"="station"`.
func (b QueryBuilder) BuildAroundQuery(p AroundParams) string {
	timeout := p.TimeoutSec
	if timeout <= 0 {
		timeout = 25
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("[out:json][timeout:%d];", timeout))
	parts = append(parts, "(")
	for _, filter := range p.TagFilters {
		parts = append(parts, fmt.Sprintf("  node(around:%.0f,%f,%f)[%s];",
			p.RadiusM, p.Lat, p.Lon, filter))
	}
	parts = append(parts, ");")
	parts = append(parts, "out body;")
	return strings.Join(parts, "\n")
}
