package strategy

import "github.com/vkozyrev/ragdex/internal/chunker"

// DirectID is the identity of the pass-through strategy, also used implicitly
// by legacy single-table projects.
const DirectID = "direct"

// Direct embeds chunk and query text unchanged. It needs no LLM assistance.
type Direct struct{}

// NewDirect returns the pass-through strategy.
func NewDirect() *Direct { return &Direct{} }

func (*Direct) ID() string { return DirectID }

func (*Direct) PrepareChunkText(chunk chunker.Chunk, _ map[string]string) string {
	return chunk.Text
}

func (*Direct) PrepareQueryText(query string) string {
	return query
}
