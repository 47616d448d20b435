package vectorstore

import "context"

// Record is one embedded chunk stored in a table. Text always carries the
// original chunk text, never the strategy-transformed text, so callers see
// real source content in results.
type Record struct {
	ID           string
	DocumentPath string
	Text         string
	Vector       []float32
	ChunkIndex   int
	ContentType  string
	Metadata     map[string]string
}

// Result pairs a stored record with its similarity score for one query.
type Result struct {
	Record
	Score float32
}

// SearchOptions narrows a vector search.
type SearchOptions struct {
	TopK        int
	MinScore    float32
	ContentType string // exact match filter, empty = all
}

// Store is the vector storage engine. Tables isolate strategies from one
// another; in legacy single-strategy mode a project uses exactly one table.
type Store interface {
	// AddVectors inserts records into a table, creating it if needed.
	AddVectors(ctx context.Context, tableID string, records []Record) error

	// SearchByVector returns the records most similar to the query vector,
	// sorted by descending score.
	SearchByVector(ctx context.Context, tableID string, vector []float32, opts SearchOptions) ([]Result, error)

	// DeleteByDocument removes every record belonging to a document.
	DeleteByDocument(ctx context.Context, tableID, documentPath string) error

	// ClearTable drops a table and its records.
	ClearTable(ctx context.Context, tableID string) error

	// ClearAll drops every table.
	ClearAll(ctx context.Context) error

	// VectorCount returns the number of records in a table (0 if absent).
	VectorCount(tableID string) int

	// TotalVectorCount returns the number of records across all tables.
	TotalVectorCount() int
}
