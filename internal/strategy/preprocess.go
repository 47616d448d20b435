package strategy

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Preprocessor merges the preprocessing needs of every contributing strategy
// into one LLM call per chunk. Results are cached by exact chunk text so
// duplicate content is never billed twice within a run; the cache is cleared
// between documents to bound memory on large corpora.
type Preprocessor struct {
	summarizer Summarizer
	directive  string

	contributors []contributor

	mu    sync.Mutex
	cache map[string]map[string]string
}

type contributor struct {
	id   string
	prep Preprocessing
}

// NewPreprocessor collects every strategy that wants a share of the combined
// call. With no contributors the preprocessor is a no-op.
func NewPreprocessor(strategies []Strategy, summarizer Summarizer) *Preprocessor {
	p := &Preprocessor{
		summarizer: summarizer,
		cache:      make(map[string]map[string]string),
	}

	var directives []string
	for _, s := range strategies {
		prep, ok := s.(Preprocessing)
		if !ok {
			continue
		}
		d := prep.PreprocessingDirective()
		if d == "" {
			continue
		}
		directives = append(directives, "- "+d)
		p.contributors = append(p.contributors, contributor{id: s.ID(), prep: prep})
	}

	if len(directives) > 0 {
		p.directive = "Produce the outputs described below for the text you are given.\n" +
			strings.Join(directives, "\n")
	}
	return p
}

// Active reports whether any strategy contributed a directive.
func (p *Preprocessor) Active() bool {
	return len(p.contributors) > 0
}

// Contributors returns the IDs of the strategies sharing the combined call.
func (p *Preprocessor) Contributors() []string {
	ids := make([]string, len(p.contributors))
	for i, c := range p.contributors {
		ids[i] = c.id
	}
	return ids
}

// Process returns each contributing strategy's extracted output for the chunk,
// issuing at most one LLM call per distinct chunk text. A failed call is
// logged and yields an empty map; strategies then fall back to their own
// logic, so preprocessing failure never fails indexing.
func (p *Preprocessor) Process(ctx context.Context, chunkText string) map[string]string {
	if !p.Active() {
		return map[string]string{}
	}

	p.mu.Lock()
	if cached, ok := p.cache[chunkText]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	raw, err := p.summarizer.Summarize(ctx, chunkText, p.directive)
	if err != nil {
		log.Printf("chunk preprocessing failed, strategies fall back to raw text: %v", err)
		return map[string]string{}
	}

	out := make(map[string]string)
	for _, c := range p.contributors {
		if v := c.prep.ExtractPreprocessed(raw); v != "" {
			out[c.id] = v
		}
	}

	p.mu.Lock()
	p.cache[chunkText] = out
	p.mu.Unlock()
	return out
}

// Reset clears the per-run cache, called between documents.
func (p *Preprocessor) Reset() {
	p.mu.Lock()
	p.cache = make(map[string]map[string]string)
	p.mu.Unlock()
}
