package strategy

import (
	"context"
	"strings"

	"github.com/vkozyrev/ragdex/internal/chunker"
)

// Strategy re-expresses chunk and query text before embedding, giving the
// index one extra "view" of the same content per strategy.
type Strategy interface {
	// ID is the strategy identity used in settings, table names, and fusion.
	ID() string

	// PrepareChunkText returns the text actually embedded for this strategy.
	// preprocessed maps strategy IDs to their share of the combined
	// preprocessing call; a strategy missing its entry falls back to its own
	// logic (usually the raw chunk text).
	PrepareChunkText(chunk chunker.Chunk, preprocessed map[string]string) string

	// PrepareQueryText applies the symmetric transformation to a query.
	PrepareQueryText(query string) string
}

// Preprocessing is the optional capability interface for strategies that want
// a share of the combined per-chunk LLM call.
type Preprocessing interface {
	// PreprocessingDirective returns the natural-language instruction to fold
	// into the shared call.
	PreprocessingDirective() string

	// ExtractPreprocessed pulls this strategy's portion out of the raw shared
	// response. Empty string means nothing usable was found.
	ExtractPreprocessed(raw string) string
}

// Summarizer is the LLM collaborator the preprocessor and summary strategy
// depend on.
type Summarizer interface {
	Summarize(ctx context.Context, text, instruction string) (string, error)
}

// extractSection returns the body of a labeled section in an LLM response:
// everything after "LABEL:" up to the next all-caps label line or the end of
// the text. Strategies pick distinctive labels; nothing validates uniqueness.
func extractSection(raw, label string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, label+":") {
			continue
		}

		var parts []string
		if first := strings.TrimSpace(strings.TrimPrefix(trimmed, label+":")); first != "" {
			parts = append(parts, first)
		}
		for _, next := range lines[i+1:] {
			if isLabelLine(next) {
				break
			}
			parts = append(parts, next)
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	}
	return ""
}

// isLabelLine reports whether a line starts a new "LABEL:" section.
func isLabelLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return false
	}
	head := trimmed[:idx]
	for _, r := range head {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}
