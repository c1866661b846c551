package simindex

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/pkg/models"
)

func record(id string, vec []float32) models.EmbeddingRecord {
	return models.EmbeddingRecord{PropertyID: id, Vector: vec}
}

func mustUpsert(t *testing.T, idx Index, recs ...models.EmbeddingRecord) {
	t.Helper()
	for _, r := range recs {
		if err := idx.Upsert(context.Background(), r); err != nil {
			t.Fatalf("upsert %s: %v", r.PropertyID, err)
		}
	}
}

func TestMemory_ExactMatchRanksFirst(t *testing.T) {
	idx := NewMemory(3)
	mustUpsert(t, idx,
		record("p1", []float32{1, 0, 0}),
		record("p2", []float32{0.9, 0.1, 0}),
		record("p3", []float32{0, 1, 0}),
	)

	matches, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, 0.5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].PropertyID != "p1" {
		t.Errorf("expected p1 first, got %s", matches[0].PropertyID)
	}
	if math.Abs(matches[0].Similarity-1.0) > 1e-9 {
		t.Errorf("identical vector should score 1.0, got %v", matches[0].Similarity)
	}
}

func TestMemory_ThresholdFiltersStrictly(t *testing.T) {
	idx := NewMemory(2)
	mustUpsert(t, idx,
		record("near", []float32{1, 0}),
		record("orthogonal", []float32{0, 1}),
	)

	matches, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// similarity 0 is not > 0: the orthogonal vector is excluded.
	if len(matches) != 1 || matches[0].PropertyID != "near" {
		t.Errorf("expected only 'near', got %+v", matches)
	}
}

func TestMemory_EmptyResultIsNotAnError(t *testing.T) {
	idx := NewMemory(2)
	mustUpsert(t, idx, record("p1", []float32{0, 1}))

	matches, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.9)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches above threshold, got %+v", matches)
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	idx := NewMemory(3)

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0)
	var mismatch *scoring.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError from search, got %v", err)
	}

	if err := idx.Upsert(context.Background(), record("bad", []float32{1})); !errors.As(err, &mismatch) {
		t.Errorf("expected DimensionMismatchError from upsert, got %v", err)
	}
}

func TestMemory_StableOrderAcrossQueries(t *testing.T) {
	idx := NewMemory(2)
	// Three vectors equidistant from the query: ties must keep insertion order.
	mustUpsert(t, idx,
		record("a", []float32{1, 1}),
		record("b", []float32{2, 2}),
		record("c", []float32{3, 3}),
	)

	first, err := idx.Search(context.Background(), []float32{1, 1}, 5, 0.5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := idx.Search(context.Background(), []float32{1, 1}, 5, 0.5)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		for j := range first {
			if again[j].PropertyID != first[j].PropertyID {
				t.Fatalf("ordering changed between identical queries: %+v vs %+v", again, first)
			}
		}
	}
	if first[0].PropertyID != "a" || first[1].PropertyID != "b" || first[2].PropertyID != "c" {
		t.Errorf("ties should rank in insertion order, got %+v", first)
	}
}

func TestMemory_UpsertReplaces(t *testing.T) {
	idx := NewMemory(2)
	mustUpsert(t, idx,
		record("p1", []float32{1, 0}),
		record("p2", []float32{1, 0}),
	)
	// Replacing p1 re-inserts it behind p2.
	mustUpsert(t, idx, record("p1", []float32{1, 0}))

	stats, err := idx.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count != 2 {
		t.Fatalf("expected 2 records after replace, got %d", stats.Count)
	}

	matches, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if matches[0].PropertyID != "p2" || matches[1].PropertyID != "p1" {
		t.Errorf("replaced record should move to the back of the tie order, got %+v", matches)
	}
}

func TestMemory_DeleteAndGet(t *testing.T) {
	idx := NewMemory(2)
	mustUpsert(t, idx, record("p1", []float32{1, 0}))

	got, err := idx.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PropertyID != "p1" {
		t.Errorf("got wrong record: %+v", got)
	}

	if err := idx.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := idx.Get(context.Background(), "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := idx.Delete(context.Background(), "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestMemory_LimitTruncates(t *testing.T) {
	idx := NewMemory(2)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustUpsert(t, idx, record(id, []float32{1, 0}))
	}
	matches, err := idx.Search(context.Background(), []float32{1, 0}, 2, 0.5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches with limit 2, got %d", len(matches))
	}
}
