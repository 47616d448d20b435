package manifest

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentStatus tracks where a document is in its indexing lifecycle.
type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusIndexed DocumentStatus = "indexed"
	StatusFailed  DocumentStatus = "failed"
)

// StrategyConfig enables one retrieval strategy for a project and sets its
// fusion weight. Params carries strategy-specific tuning knobs.
type StrategyConfig struct {
	ID      string            `json:"id"`
	Enabled bool              `json:"enabled"`
	Weight  float64           `json:"weight"`
	Params  map[string]string `json:"params,omitempty"`
}

// Settings holds per-project indexing configuration.
type Settings struct {
	ChunkSize    int              `json:"chunk_size"`
	ChunkOverlap int              `json:"chunk_overlap"`
	Strategies   []StrategyConfig `json:"strategies,omitempty"`
	FusionMethod string           `json:"fusion_method,omitempty"`
}

// EnabledStrategies returns the enabled strategy configs in declaration order.
func (s Settings) EnabledStrategies() []StrategyConfig {
	var enabled []StrategyConfig
	for _, sc := range s.Strategies {
		if sc.Enabled {
			enabled = append(enabled, sc)
		}
	}
	return enabled
}

// MultiStrategy reports whether the project runs in multi-strategy mode.
// Without any enabled strategy the project uses the single legacy table.
func (s Settings) MultiStrategy() bool {
	return len(s.EnabledStrategies()) > 0
}

// DocumentRecord is the persisted indexing state of one document.
type DocumentRecord struct {
	Path         string         `json:"path"`
	Name         string         `json:"name"`
	Size         int64          `json:"size"`
	MimeType     string         `json:"mime_type"`
	Status       DocumentStatus `json:"status"`
	ChunkCount   int            `json:"chunk_count"`
	LastModified time.Time      `json:"last_modified"`
	IndexedAt    *time.Time     `json:"indexed_at,omitempty"`
	Error        string         `json:"error,omitempty"`
	Summary      string         `json:"summary,omitempty"`
}

// Stale reports whether the document needs re-indexing: anything not
// successfully indexed, or modified after its last indexing pass.
func (r DocumentRecord) Stale() bool {
	if r.Status != StatusIndexed || r.IndexedAt == nil {
		return true
	}
	return r.LastModified.After(*r.IndexedAt)
}

// Manifest is the persistent per-project indexing state.
type Manifest struct {
	ID            string                    `json:"id"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	Settings      Settings                  `json:"settings"`
	Documents     map[string]DocumentRecord `json:"documents"`
	VectorCount   int                       `json:"vector_count"`
	LastIndexedAt *time.Time                `json:"last_indexed_at,omitempty"`
	Summary       string                    `json:"summary,omitempty"`
}

// NormalizePath converts a document path to the canonical manifest key form:
// slash-separated and relative to the project's documents folder. Keys written
// on Windows and read on Linux must compare equal.
func NormalizePath(rel string) string {
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}
