package strategy

import "github.com/vkozyrev/ragdex/internal/chunker"

// KeywordsID identifies the keyword-extraction strategy.
const KeywordsID = "keywords"

const keywordsLabel = "KEYWORDS"

// Keywords embeds an extracted keyword list instead of the raw chunk text,
// which sharpens recall for terse, term-oriented queries.
type Keywords struct{}

// NewKeywords returns the keyword-extraction strategy.
func NewKeywords() *Keywords { return &Keywords{} }

func (*Keywords) ID() string { return KeywordsID }

func (*Keywords) PrepareChunkText(chunk chunker.Chunk, preprocessed map[string]string) string {
	if kw := preprocessed[KeywordsID]; kw != "" {
		return kw
	}
	// No preprocessing available: fall back to the raw chunk text.
	return chunk.Text
}

func (*Keywords) PrepareQueryText(query string) string {
	// Short queries are already keyword-like.
	return query
}

func (*Keywords) PreprocessingDirective() string {
	return keywordsLabel + ": extract the 8-12 most distinctive keywords and key phrases from the text, comma separated, on one line starting with \"" + keywordsLabel + ":\"."
}

func (*Keywords) ExtractPreprocessed(raw string) string {
	return extractSection(raw, keywordsLabel)
}
