// Package engine hosts the two entry points of the retrieval core: the
// indexer, which keeps each project's vector tables in sync with its
// documents folder, and the query orchestrator, which fans a search out
// across the project's retrieval strategies and fuses the ranked results.
package engine

import (
	"github.com/vkozyrev/ragdex/internal/chunker"
	"github.com/vkozyrev/ragdex/internal/embeddings"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/project"
	"github.com/vkozyrev/ragdex/internal/strategy"
	"github.com/vkozyrev/ragdex/internal/vectorstore"
)

// Engine wires the retrieval core to its collaborators.
type Engine struct {
	layout     *project.Layout
	manifests  *manifest.Store
	store      vectorstore.Store
	embedder   embeddings.Embedder
	chunker    chunker.Chunker
	summarizer strategy.Summarizer // nil disables summaries and preprocessing

	events *Emitter
	locks  *lockTable
}

// New creates an Engine. summarizer may be nil, in which case document and
// collection summaries are skipped and strategies fall back to raw text.
func New(
	layout *project.Layout,
	manifests *manifest.Store,
	store vectorstore.Store,
	embedder embeddings.Embedder,
	chnk chunker.Chunker,
	summarizer strategy.Summarizer,
) *Engine {
	return &Engine{
		layout:     layout,
		manifests:  manifests,
		store:      store,
		embedder:   embedder,
		chunker:    chnk,
		summarizer: summarizer,
		events:     &Emitter{},
		locks:      newLockTable(),
	}
}

// Events returns the progress event emitter for subscribing.
func (e *Engine) Events() *Emitter { return e.events }

// Manifest returns the current manifest of a project.
func (e *Engine) Manifest(projectID string) (*manifest.Manifest, error) {
	if !e.layout.Exists(projectID) {
		return nil, ErrProjectNotFound
	}
	return e.manifests.Load(projectID)
}

// legacyTable is the single table used when no strategies are configured.
func legacyTable(projectID string) string {
	return projectID
}

// strategyTable scopes a strategy's vectors to its own table.
func strategyTable(projectID, strategyID string) string {
	return projectID + "_" + strategyID
}

// projectTables returns every vector table the project writes to, given its
// active strategy set.
func projectTables(projectID string, active []strategy.Active) []string {
	if len(active) == 0 {
		return []string{legacyTable(projectID)}
	}
	tables := make([]string, len(active))
	for i, a := range active {
		tables[i] = strategyTable(projectID, a.Strategy.ID())
	}
	return tables
}

// allProjectTables returns every table the project could hold vectors in: the
// legacy table plus one per registered strategy, whether currently enabled or
// not. Used by force re-indexing to reclaim tables of disabled strategies.
func allProjectTables(projectID string) []string {
	tables := []string{legacyTable(projectID)}
	for _, id := range strategy.AllIDs() {
		tables = append(tables, strategyTable(projectID, id))
	}
	return tables
}
