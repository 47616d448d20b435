package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vkozyrev/ragdex/internal/chunker"
	"github.com/vkozyrev/ragdex/internal/embeddings"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/project"
	"github.com/vkozyrev/ragdex/internal/strategy"
	"github.com/vkozyrev/ragdex/internal/vectorstore"
)

// summaryChunkLimit caps how many leading chunks feed a document summary.
const summaryChunkLimit = 10

const documentSummaryInstruction = "Summarize the following document excerpt in 2-3 sentences. State what the document is about and what it covers."

const collectionSummaryInstruction = "The following are one-line summaries of the documents in a collection. Describe the collection as a whole in 2-3 sentences."

// IndexResult summarizes the outcome of one indexing run.
type IndexResult struct {
	Total       int
	Indexed     int
	Failed      int
	Removed     int
	Unchanged   int
	VectorCount int
	Duration    time.Duration
}

// IndexProject incrementally re-indexes a project: removed documents are
// purged, new and changed ones are re-chunked, re-embedded, and rewritten in
// every active strategy table. force clears all vectors and document records
// first so the whole corpus is treated as new.
//
// A failing document is recorded in the manifest and does not abort the run;
// only lock contention, a missing project, and persistence failures surface
// as errors.
func (e *Engine) IndexProject(ctx context.Context, projectID string, force bool) (*IndexResult, error) {
	if !e.layout.Exists(projectID) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if !e.locks.acquire(projectID) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyIndexing, projectID)
	}
	defer e.locks.release(projectID)

	result, err := e.indexLocked(ctx, projectID, force)
	if err != nil {
		e.events.emit(Event{ProjectID: projectID, Status: StatusError, Error: err.Error()})
		return nil, err
	}
	return result, nil
}

func (e *Engine) indexLocked(ctx context.Context, projectID string, force bool) (*IndexResult, error) {
	start := time.Now()

	m, err := e.manifests.Load(projectID)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	files, err := e.layout.ListDocuments(projectID, project.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("enumerate documents: %w", err)
	}

	active, err := strategy.Build(m.Settings.EnabledStrategies())
	if err != nil {
		return nil, fmt.Errorf("resolve strategies: %w", err)
	}
	tables := projectTables(projectID, active)

	if force {
		// Clear every table the project could ever have written, not just the
		// currently active set, so vectors of since-disabled strategies are
		// reclaimed too.
		for _, table := range allProjectTables(projectID) {
			if err := e.store.ClearTable(ctx, table); err != nil {
				return nil, fmt.Errorf("force clear: %w", err)
			}
		}
		m.Documents = make(map[string]manifest.DocumentRecord)
	}

	changes := DetectChanges(m.Documents, files)
	total := changes.Total()
	e.events.emit(Event{ProjectID: projectID, Status: StatusStarted, TotalDocuments: total})

	processed := 0
	for _, path := range changes.Removed {
		for _, table := range tables {
			if err := e.store.DeleteByDocument(ctx, table, path); err != nil {
				return nil, fmt.Errorf("purge removed document %s: %w", path, err)
			}
		}
		delete(m.Documents, path)
		processed++
	}

	// Changed documents are rewritten wholesale: dropping their old vectors
	// up front keeps re-indexing from duplicating rows.
	for _, f := range changes.Changed {
		for _, table := range tables {
			if err := e.store.DeleteByDocument(ctx, table, f.RelPath); err != nil {
				return nil, fmt.Errorf("drop stale vectors for %s: %w", f.RelPath, err)
			}
		}
	}

	var preproc *strategy.Preprocessor
	if len(active) > 0 && e.summarizer != nil {
		strategies := make([]strategy.Strategy, len(active))
		for i, a := range active {
			strategies[i] = a.Strategy
		}
		preproc = strategy.NewPreprocessor(strategies, e.summarizer)
	}

	failed := 0
	todo := append(append([]project.File{}, changes.New...), changes.Changed...)
	for _, f := range todo {
		processed++
		e.events.emit(Event{
			ProjectID:          projectID,
			Status:             StatusProcessing,
			TotalDocuments:     total,
			ProcessedDocuments: processed,
			CurrentDocument:    f.RelPath,
		})

		if preproc != nil {
			preproc.Reset()
		}

		rec, err := e.indexDocument(ctx, projectID, f, m.Settings, active, preproc)
		if err != nil {
			failed++
			// IndexedAt stays nil: the document never completed indexing.
			m.Documents[f.RelPath] = manifest.DocumentRecord{
				Path:         f.RelPath,
				Name:         f.Name,
				Size:         f.Size,
				MimeType:     f.Mime,
				Status:       manifest.StatusFailed,
				LastModified: f.ModTime,
				Error:        err.Error(),
			}
			continue
		}
		m.Documents[f.RelPath] = *rec
	}

	e.refreshCollectionSummary(ctx, m)

	// The store's count is authoritative; a running counter would drift on
	// partial failures.
	vectorCount := 0
	for _, table := range tables {
		vectorCount += e.store.VectorCount(table)
	}
	m.VectorCount = vectorCount

	now := time.Now().UTC()
	m.LastIndexedAt = &now
	if err := e.manifests.Save(m); err != nil {
		return nil, fmt.Errorf("persist manifest: %w", err)
	}

	e.events.emit(Event{
		ProjectID:          projectID,
		Status:             StatusCompleted,
		TotalDocuments:     total,
		ProcessedDocuments: processed,
	})

	return &IndexResult{
		Total:       total,
		Indexed:     len(todo) - failed,
		Failed:      failed,
		Removed:     len(changes.Removed),
		Unchanged:   changes.Unchanged,
		VectorCount: vectorCount,
		Duration:    time.Since(start),
	}, nil
}

// indexDocument chunks, embeds, and stores one document, returning its new
// manifest record. Any error here fails only this document.
func (e *Engine) indexDocument(
	ctx context.Context,
	projectID string,
	f project.File,
	settings manifest.Settings,
	active []strategy.Active,
	preproc *strategy.Preprocessor,
) (*manifest.DocumentRecord, error) {
	chunks, err := e.chunker.Chunk(ctx, f.Path, f.RelPath, chunker.Options{
		ChunkSize:    settings.ChunkSize,
		ChunkOverlap: settings.ChunkOverlap,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}

	summary := e.summarizeDocument(ctx, f.RelPath, chunks)

	if len(active) > 0 {
		if err := e.indexChunksMulti(ctx, projectID, chunks, active, preproc); err != nil {
			return nil, err
		}
	} else {
		if err := e.indexChunksLegacy(ctx, projectID, chunks); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &manifest.DocumentRecord{
		Path:         f.RelPath,
		Name:         f.Name,
		Size:         f.Size,
		MimeType:     f.Mime,
		Status:       manifest.StatusIndexed,
		ChunkCount:   len(chunks),
		LastModified: f.ModTime,
		IndexedAt:    &now,
		Summary:      summary,
	}, nil
}

func (e *Engine) indexChunksMulti(
	ctx context.Context,
	projectID string,
	chunks []chunker.Chunk,
	active []strategy.Active,
	preproc *strategy.Preprocessor,
) error {
	perTable := make(map[string][]vectorstore.Record)

	for _, chunk := range chunks {
		var pre map[string]string
		if preproc != nil {
			pre = preproc.Process(ctx, chunk.Text)
		}

		for _, a := range active {
			text := a.Strategy.PrepareChunkText(chunk, pre)
			vec, err := embeddings.EmbedOne(ctx, e.embedder, text)
			if err != nil {
				return fmt.Errorf("embed chunk %d for %s: %w", chunk.Index, a.Strategy.ID(), err)
			}
			table := strategyTable(projectID, a.Strategy.ID())
			perTable[table] = append(perTable[table], newRecord(projectID, chunk, vec))
		}
	}

	for table, records := range perTable {
		if err := e.store.AddVectors(ctx, table, records); err != nil {
			return fmt.Errorf("store vectors: %w", err)
		}
	}
	return nil
}

func (e *Engine) indexChunksLegacy(ctx context.Context, projectID string, chunks []chunker.Chunk) error {
	var records []vectorstore.Record
	for _, chunk := range chunks {
		vec, err := embeddings.EmbedOne(ctx, e.embedder, chunk.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", chunk.Index, err)
		}
		records = append(records, newRecord(projectID, chunk, vec))
	}
	if err := e.store.AddVectors(ctx, legacyTable(projectID), records); err != nil {
		return fmt.Errorf("store vectors: %w", err)
	}
	return nil
}

// newRecord builds the stored record for a chunk. The ID is deterministic so
// the same chunk gets the same identity in every strategy table, which is
// what lets fusion match results across strategies.
func newRecord(projectID string, chunk chunker.Chunk, vec []float32) vectorstore.Record {
	return vectorstore.Record{
		ID:           fmt.Sprintf("%s:%s:%d", projectID, chunk.DocumentPath, chunk.Index),
		DocumentPath: chunk.DocumentPath,
		Text:         chunk.Text,
		Vector:       vec,
		ChunkIndex:   chunk.Index,
		ContentType:  chunk.ContentType,
		Metadata:     chunk.Metadata,
	}
}

// summarizeDocument generates a short summary from the document's leading
// chunks. Best-effort: failure is logged and the summary simply omitted.
func (e *Engine) summarizeDocument(ctx context.Context, relPath string, chunks []chunker.Chunk) string {
	if e.summarizer == nil || len(chunks) == 0 {
		return ""
	}

	limit := summaryChunkLimit
	if len(chunks) < limit {
		limit = len(chunks)
	}
	var parts []string
	for _, c := range chunks[:limit] {
		parts = append(parts, c.Text)
	}

	summary, err := e.summarizer.Summarize(ctx, strings.Join(parts, "\n"), documentSummaryInstruction)
	if err != nil {
		log.Printf("document summary for %s failed: %v", relPath, err)
		return ""
	}
	return summary
}

// refreshCollectionSummary regenerates the collection-level summary from the
// per-document summaries. Best-effort.
func (e *Engine) refreshCollectionSummary(ctx context.Context, m *manifest.Manifest) {
	if e.summarizer == nil {
		return
	}

	var parts []string
	for _, rec := range m.Documents {
		if rec.Summary != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", rec.Path, rec.Summary))
		}
	}
	if len(parts) == 0 {
		return
	}

	summary, err := e.summarizer.Summarize(ctx, strings.Join(parts, "\n"), collectionSummaryInstruction)
	if err != nil {
		log.Printf("collection summary for %s failed: %v", m.ID, err)
		return
	}
	m.Summary = summary
}
