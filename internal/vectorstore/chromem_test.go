package vectorstore

import (
	"context"
	"math"
	"testing"
)

// unit returns a normalized 3-dimensional vector.
func unit(x, y, z float32) []float32 {
	n := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	return []float32{x / n, y / n, z / n}
}

func seedRecords(t *testing.T, s *ChromemStore, table string) {
	t.Helper()
	records := []Record{
		{
			ID:           "p1:a.txt:0",
			DocumentPath: "a.txt",
			Text:         "alpha chunk",
			Vector:       unit(1, 0, 0),
			ChunkIndex:   0,
			ContentType:  "text/plain",
		},
		{
			ID:           "p1:a.txt:1",
			DocumentPath: "a.txt",
			Text:         "alpha chunk two",
			Vector:       unit(0.9, 0.1, 0),
			ChunkIndex:   1,
			ContentType:  "text/plain",
		},
		{
			ID:           "p1:b.md:0",
			DocumentPath: "b.md",
			Text:         "beta chunk",
			Vector:       unit(0, 1, 0),
			ChunkIndex:   0,
			ContentType:  "text/markdown",
			Metadata:     map[string]string{"lang": "en"},
		},
	}
	if err := s.AddVectors(context.Background(), table, records); err != nil {
		t.Fatalf("add vectors: %v", err)
	}
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	s := NewChromemStore()
	seedRecords(t, s, "tbl")

	results, err := s.SearchByVector(context.Background(), "tbl", unit(1, 0, 0), SearchOptions{TopK: 2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "p1:a.txt:0" {
		t.Errorf("expected closest record first, got %s", results[0].ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results must be sorted by descending score")
	}
	if results[0].Text != "alpha chunk" {
		t.Errorf("expected original chunk text, got %q", results[0].Text)
	}
	if results[0].DocumentPath != "a.txt" || results[0].ChunkIndex != 0 {
		t.Errorf("record fields lost in round trip: %+v", results[0].Record)
	}
}

func TestChromemStore_ContentTypeFilterAndMinScore(t *testing.T) {
	s := NewChromemStore()
	seedRecords(t, s, "tbl")

	results, err := s.SearchByVector(context.Background(), "tbl", unit(0, 1, 0), SearchOptions{
		TopK:        3,
		ContentType: "text/markdown",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "p1:b.md:0" {
		t.Fatalf("expected only the markdown record, got %+v", results)
	}
	if results[0].Metadata["lang"] != "en" {
		t.Error("custom metadata lost in round trip")
	}

	// A high min score cuts off dissimilar records.
	results, err = s.SearchByVector(context.Background(), "tbl", unit(1, 0, 0), SearchOptions{
		TopK:     3,
		MinScore: 0.99,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, r := range results {
		if r.Score < 0.99 {
			t.Errorf("result below min score: %f", r.Score)
		}
	}
}

func TestChromemStore_DeleteByDocument(t *testing.T) {
	s := NewChromemStore()
	seedRecords(t, s, "tbl")

	if err := s.DeleteByDocument(context.Background(), "tbl", "a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.VectorCount("tbl"); got != 1 {
		t.Errorf("expected 1 record after delete, got %d", got)
	}

	// Deleting from an unknown table is a no-op.
	if err := s.DeleteByDocument(context.Background(), "nope", "a.txt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChromemStore_ClearAndCounts(t *testing.T) {
	s := NewChromemStore()
	seedRecords(t, s, "tbl1")
	seedRecords(t, s, "tbl2")

	if got := s.TotalVectorCount(); got != 6 {
		t.Errorf("expected 6 total vectors, got %d", got)
	}

	if err := s.ClearTable(context.Background(), "tbl1"); err != nil {
		t.Fatalf("clear table: %v", err)
	}
	if got := s.VectorCount("tbl1"); got != 0 {
		t.Errorf("expected 0 after clear, got %d", got)
	}
	if got := s.TotalVectorCount(); got != 3 {
		t.Errorf("expected 3 total after clearing tbl1, got %d", got)
	}

	if err := s.ClearAll(context.Background()); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if got := s.TotalVectorCount(); got != 0 {
		t.Errorf("expected empty store, got %d", got)
	}
}

func TestChromemStore_SearchEmptyTable(t *testing.T) {
	s := NewChromemStore()
	results, err := s.SearchByVector(context.Background(), "missing", unit(1, 0, 0), SearchOptions{TopK: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results for missing table, got %d", len(results))
	}
}

func TestChromemStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPersistentChromemStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	seedRecords(t, s, "tbl")

	reopened, err := NewPersistentChromemStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.VectorCount("tbl"); got != 3 {
		t.Errorf("expected 3 persisted vectors, got %d", got)
	}
}
