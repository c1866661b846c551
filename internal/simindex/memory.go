package simindex

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// Memory is a brute-force in-memory index. Records are kept in insertion
// order, which is what makes tie-breaking stable; an upsert of an existing
// property removes the old record and appends the new one at the end.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	records []models.EmbeddingRecord
	byID    map[string]int
}

// NewMemory creates an empty index accepting vectors of length dim.
func NewMemory(dim int) *Memory {
	return &Memory{
		dim:  dim,
		byID: make(map[string]int),
	}
}

func (m *Memory) Dimension() int { return m.dim }

func (m *Memory) Upsert(_ context.Context, rec models.EmbeddingRecord) error {
	if len(rec.Vector) != m.dim {
		return &scoring.DimensionMismatchError{Got: len(rec.Vector), Want: m.dim}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.byID[rec.PropertyID]; ok {
		m.removeAt(idx)
	}
	m.byID[rec.PropertyID] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) Delete(_ context.Context, propertyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.byID[propertyID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, propertyID)
	}
	m.removeAt(idx)
	return nil
}

func (m *Memory) Get(_ context.Context, propertyID string) (*models.EmbeddingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.byID[propertyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, propertyID)
	}
	rec := m.records[idx]
	return &rec, nil
}

func (m *Memory) Search(_ context.Context, query []float32, limit int, threshold float64) ([]Match, error) {
	if len(query) != m.dim {
		return nil, &scoring.DimensionMismatchError{Got: len(query), Want: m.dim}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, rec := range m.records {
		sim, err := scoring.Cosine(query, rec.Vector)
		if err != nil {
			return nil, err
		}
		if sim > threshold {
			matches = append(matches, Match{
				PropertyID: rec.PropertyID,
				Similarity: sim,
				Metadata:   rec.Metadata,
			})
		}
	}

	// Stable sort over the insertion-ordered scan keeps equal similarities
	// in insertion order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Count: len(m.records), Dimension: m.dim}, nil
}

// removeAt drops the record at idx and reindexes the tail. Caller holds the
// write lock.
func (m *Memory) removeAt(idx int) {
	delete(m.byID, m.records[idx].PropertyID)
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	for i := idx; i < len(m.records); i++ {
		m.byID[m.records[i].PropertyID] = i
	}
}

// Compile-time check that Memory implements Index.
var _ Index = (*Memory)(nil)
