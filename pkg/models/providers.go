// Package models contains shared data models used across the GeoInsight codebase.
package models

import "context"

// AmenityProvider fetches points of interest around an address. Never call a
// concrete map-data provider directly — always inject this interface.
type AmenityProvider interface {
	FetchAmenities(ctx context.Context, address string, radiusM float64) ([]AmenityRecord, error)
}

// ImageProvider fetches raster imagery (a rendered map tile or a property
// photo) for an address.
type ImageProvider interface {
	FetchImage(ctx context.Context, address string, radiusM float64) ([]byte, error)
}

// Embedder turns an image into a fixed-length vector. Deterministic for a
// fixed model version; the vector length must match the similarity index's
// configured dimensionality.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// Summarizer condenses a structured report into narrative text. It runs after
// the scoring subtasks; its failure degrades the report without failing the
// job.
type Summarizer interface {
	Summarize(ctx context.Context, report *Report) (string, error)
	Name() string
}
