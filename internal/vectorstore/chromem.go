package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

// Reserved metadata keys used to round-trip Record fields through chromem.
const (
	metaDocumentPath = "document_path"
	metaChunkIndex   = "chunk_index"
	metaContentType  = "content_type"
)

// ChromemStore implements Store using chromem-go, one collection per table.
type ChromemStore struct {
	db *chromem.DB
}

// NewChromemStore creates an in-memory store, used in tests and one-shot runs.
func NewChromemStore() *ChromemStore {
	return &ChromemStore{db: chromem.NewDB()}
}

// NewPersistentChromemStore creates a store that persists collections under
// the given directory, typically the project's metadata folder.
func NewPersistentChromemStore(dir string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("open vector store at %s: %w", dir, err)
	}
	return &ChromemStore{db: db}, nil
}

// Records always arrive with vectors already computed, so the embedding
// function a collection is created with must never run.
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("vectorstore: embeddings are computed by the caller")
}

func (s *ChromemStore) collection(tableID string) (*chromem.Collection, error) {
	return s.db.GetOrCreateCollection(tableID, nil, noEmbedding)
}

func (s *ChromemStore) AddVectors(ctx context.Context, tableID string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	col, err := s.collection(tableID)
	if err != nil {
		return fmt.Errorf("table %s: %w", tableID, err)
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Text,
			Embedding: r.Vector,
			Metadata:  recordMetadata(r),
		}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add vectors to %s: %w", tableID, err)
	}
	return nil
}

func (s *ChromemStore) SearchByVector(ctx context.Context, tableID string, vector []float32, opts SearchOptions) ([]Result, error) {
	col := s.db.GetCollection(tableID, noEmbedding)
	if col == nil {
		return nil, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}
	// chromem requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	var where map[string]string
	if opts.ContentType != "" {
		where = map[string]string{metaContentType: opts.ContentType}
	}

	hits, err := col.QueryEmbedding(ctx, vector, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableID, err)
	}

	var results []Result
	for _, h := range hits {
		if h.Similarity < opts.MinScore {
			continue
		}
		results = append(results, Result{
			Record: recordFromHit(h),
			Score:  h.Similarity,
		})
	}
	return results, nil
}

func (s *ChromemStore) DeleteByDocument(ctx context.Context, tableID, documentPath string) error {
	col := s.db.GetCollection(tableID, noEmbedding)
	if col == nil {
		return nil
	}
	where := map[string]string{metaDocumentPath: documentPath}
	if err := col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete %s from %s: %w", documentPath, tableID, err)
	}
	return nil
}

func (s *ChromemStore) ClearTable(_ context.Context, tableID string) error {
	if err := s.db.DeleteCollection(tableID); err != nil {
		return fmt.Errorf("clear table %s: %w", tableID, err)
	}
	return nil
}

func (s *ChromemStore) ClearAll(_ context.Context) error {
	if err := s.db.Reset(); err != nil {
		return fmt.Errorf("clear all tables: %w", err)
	}
	return nil
}

func (s *ChromemStore) VectorCount(tableID string) int {
	col := s.db.GetCollection(tableID, noEmbedding)
	if col == nil {
		return 0
	}
	return col.Count()
}

func (s *ChromemStore) TotalVectorCount() int {
	total := 0
	for _, col := range s.db.ListCollections() {
		total += col.Count()
	}
	return total
}

func recordMetadata(r Record) map[string]string {
	md := map[string]string{
		metaDocumentPath: r.DocumentPath,
		metaChunkIndex:   strconv.Itoa(r.ChunkIndex),
		metaContentType:  r.ContentType,
	}
	for k, v := range r.Metadata {
		if _, reserved := md[k]; !reserved {
			md[k] = v
		}
	}
	return md
}

func recordFromHit(h chromem.Result) Record {
	idx, _ := strconv.Atoi(h.Metadata[metaChunkIndex])

	var extra map[string]string
	for k, v := range h.Metadata {
		if k == metaDocumentPath || k == metaChunkIndex || k == metaContentType {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}

	return Record{
		ID:           h.ID,
		DocumentPath: h.Metadata[metaDocumentPath],
		Text:         h.Content,
		Vector:       h.Embedding,
		ChunkIndex:   idx,
		ContentType:  h.Metadata[metaContentType],
		Metadata:     extra,
	}
}
