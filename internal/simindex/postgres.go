package simindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// Postgres persists embeddings in the property_embeddings table and ranks
// candidates in process with the same cosine math as the memory index.
// Insertion order is the created_at/ordinal order of the rows, so rankings
// stay stable across queries.
type Postgres struct {
	pool *pgxpool.Pool
	dim  int
}

func NewPostgres(pool *pgxpool.Pool, dim int) *Postgres {
	return &Postgres{pool: pool, dim: dim}
}

func (p *Postgres) Dimension() int { return p.dim }

func (p *Postgres) Upsert(ctx context.Context, rec models.EmbeddingRecord) error {
	if len(rec.Vector) != p.dim {
		return &scoring.DimensionMismatchError{Got: len(rec.Vector), Want: p.dim}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	// Replace is delete+insert so the row also moves to the back of the
	// insertion order, matching the memory index.
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM property_embeddings WHERE property_id = $1`, rec.PropertyID); err != nil {
		return fmt.Errorf("delete previous embedding: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO property_embeddings (property_id, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4)`,
		rec.PropertyID, rec.Vector, meta, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *Postgres) Delete(ctx context.Context, propertyID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM property_embeddings WHERE property_id = $1`, propertyID)
	if err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, propertyID)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, propertyID string) (*models.EmbeddingRecord, error) {
	var rec models.EmbeddingRecord
	var meta []byte
	err := p.pool.QueryRow(ctx,
		`SELECT property_id, embedding, metadata, created_at
		 FROM property_embeddings WHERE property_id = $1`, propertyID,
	).Scan(&rec.PropertyID, &rec.Vector, &meta, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, propertyID)
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &rec, nil
}

func (p *Postgres) Search(ctx context.Context, query []float32, limit int, threshold float64) ([]Match, error) {
	if len(query) != p.dim {
		return nil, &scoring.DimensionMismatchError{Got: len(query), Want: p.dim}
	}

	rows, err := p.pool.Query(ctx,
		`SELECT property_id, embedding, metadata
		 FROM property_embeddings ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("scan embeddings: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var id string
		var vec []float32
		var meta []byte
		if err := rows.Scan(&id, &vec, &meta); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		sim, err := scoring.Cosine(query, vec)
		if err != nil {
			return nil, err
		}
		if sim > threshold {
			m := Match{PropertyID: id, Similarity: sim}
			if len(meta) > 0 {
				if err := json.Unmarshal(meta, &m.Metadata); err != nil {
					return nil, fmt.Errorf("unmarshal metadata: %w", err)
				}
			}
			matches = append(matches, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Match{}
	}
	return matches, nil
}

func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var count int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM property_embeddings`).Scan(&count); err != nil {
		return Stats{}, fmt.Errorf("count embeddings: %w", err)
	}
	return Stats{Count: count, Dimension: p.dim}, nil
}

var _ Index = (*Postgres)(nil)
