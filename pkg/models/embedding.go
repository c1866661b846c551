package models

import "time"

// EmbeddingRecord associates a property with the fixed-length vector produced
// by the upstream visual model. Records are replaced whole: an update is a
// delete followed by an insert, never a partial mutation.
type EmbeddingRecord struct {
	PropertyID string         `db:"property_id" json:"property_id"`
	Vector     []float32      `db:"embedding"   json:"vector"`
	Metadata   map[string]any `db:"metadata"    json:"metadata,omitempty"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
}
