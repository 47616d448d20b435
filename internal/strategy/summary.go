package strategy

import "github.com/vkozyrev/ragdex/internal/chunker"

// SummaryID identifies the summary-embedding strategy.
const SummaryID = "summary"

const summaryLabel = "SUMMARY"

// Summary embeds a short generated summary of each chunk, which helps broad
// conceptual queries match chunks whose wording differs from the question.
type Summary struct{}

// NewSummary returns the summary-embedding strategy.
func NewSummary() *Summary { return &Summary{} }

func (*Summary) ID() string { return SummaryID }

func (*Summary) PrepareChunkText(chunk chunker.Chunk, preprocessed map[string]string) string {
	if s := preprocessed[SummaryID]; s != "" {
		return s
	}
	// Missing summary means "use raw text".
	return chunk.Text
}

func (*Summary) PrepareQueryText(query string) string {
	return query
}

func (*Summary) PreprocessingDirective() string {
	return summaryLabel + ": summarize the text in 2-3 plain sentences on lines starting with \"" + summaryLabel + ":\"."
}

func (*Summary) ExtractPreprocessed(raw string) string {
	return extractSection(raw, summaryLabel)
}
