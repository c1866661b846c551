// Package simindex maintains the property-id → embedding mapping and answers
// top-K nearest-neighbor queries by cosine similarity. The index has a fixed
// dimensionality set at construction; replacing an embedding is a delete
// plus insert, never a partial update.
package simindex

import (
	"context"
	"errors"

	"github.com/geoinsight/geoinsight/pkg/models"
)

var ErrNotFound = errors.New("embedding not found")

// Match is one ranked result from a similarity query.
type Match struct {
	PropertyID string         `json:"property_id"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Stats summarizes the index for the stats endpoint.
type Stats struct {
	Count     int `json:"count"`
	Dimension int `json:"dimension"`
}

// Index is the similarity index contract. Implementations must be safe for
// concurrent use and must rank deterministically: cosine similarity
// descending, insertion order breaking ties, so repeated queries against an
// unchanged index return identical orderings.
type Index interface {
	// Upsert stores the record, replacing any existing embedding for the
	// same property id. Fails with a DimensionMismatchError when the
	// vector's length differs from the index dimensionality.
	Upsert(ctx context.Context, rec models.EmbeddingRecord) error
	// Delete removes a property's embedding; ErrNotFound if absent.
	Delete(ctx context.Context, propertyID string) error
	// Get returns a property's embedding record; ErrNotFound if absent.
	Get(ctx context.Context, propertyID string) (*models.EmbeddingRecord, error)
	// Search returns up to limit stored embeddings with similarity strictly
	// above threshold, ranked descending. An empty result is not an error.
	Search(ctx context.Context, query []float32, limit int, threshold float64) ([]Match, error)
	// Stats reports the record count and configured dimensionality.
	Stats(ctx context.Context) (Stats, error)
	// Dimension is the fixed vector length this index accepts.
	Dimension() int
}
