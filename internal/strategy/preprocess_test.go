package strategy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type fakeSummarizer struct {
	calls    atomic.Int64
	response string
	err      error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestPreprocessor_SharedCallAndCache(t *testing.T) {
	sum := &fakeSummarizer{response: "KEYWORDS: alpha, beta\nSUMMARY: A short summary."}
	p := NewPreprocessor([]Strategy{NewDirect(), NewKeywords(), NewSummary()}, sum)

	if !p.Active() {
		t.Fatal("expected preprocessor to be active with contributing strategies")
	}
	ids := p.Contributors()
	if len(ids) != 2 {
		t.Fatalf("expected 2 contributors, got %v", ids)
	}

	out := p.Process(context.Background(), "chunk text")
	if out[KeywordsID] != "alpha, beta" {
		t.Errorf("expected keywords entry, got %q", out[KeywordsID])
	}
	if out[SummaryID] != "A short summary." {
		t.Errorf("expected summary entry, got %q", out[SummaryID])
	}
	if _, ok := out[DirectID]; ok {
		t.Error("non-contributing strategy must not appear in the map")
	}

	// Identical chunk text must hit the cache, not the LLM.
	out2 := p.Process(context.Background(), "chunk text")
	if sum.calls.Load() != 1 {
		t.Errorf("expected exactly 1 LLM call for identical text, got %d", sum.calls.Load())
	}
	if out2[KeywordsID] != out[KeywordsID] {
		t.Error("cached result must match the original")
	}

	// Different text misses the cache.
	p.Process(context.Background(), "other text")
	if sum.calls.Load() != 2 {
		t.Errorf("expected 2 LLM calls after distinct text, got %d", sum.calls.Load())
	}
}

func TestPreprocessor_NoContributorsIsNoop(t *testing.T) {
	sum := &fakeSummarizer{response: "anything"}
	p := NewPreprocessor([]Strategy{NewDirect()}, sum)

	if p.Active() {
		t.Error("expected inactive preprocessor without contributors")
	}
	out := p.Process(context.Background(), "text")
	if len(out) != 0 {
		t.Errorf("expected empty map, got %v", out)
	}
	if sum.calls.Load() != 0 {
		t.Errorf("no-op preprocessor must not call the LLM, got %d calls", sum.calls.Load())
	}
}

func TestPreprocessor_FailureDegradesToEmptyMap(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("llm down")}
	p := NewPreprocessor([]Strategy{NewKeywords()}, sum)

	out := p.Process(context.Background(), "text")
	if len(out) != 0 {
		t.Errorf("expected empty map on failure, got %v", out)
	}

	// Failures are not cached, so the next call retries.
	p.Process(context.Background(), "text")
	if sum.calls.Load() != 2 {
		t.Errorf("expected failed calls to be retried, got %d calls", sum.calls.Load())
	}
}

func TestPreprocessor_ResetClearsCache(t *testing.T) {
	sum := &fakeSummarizer{response: "KEYWORDS: a"}
	p := NewPreprocessor([]Strategy{NewKeywords()}, sum)

	p.Process(context.Background(), "text")
	p.Reset()
	p.Process(context.Background(), "text")

	if sum.calls.Load() != 2 {
		t.Errorf("expected cache to be cleared by Reset, got %d calls", sum.calls.Load())
	}
}

func TestPreprocessor_CachesEmptyExtraction(t *testing.T) {
	// The response carries no usable sections; the empty result must still
	// be cached to avoid re-billing the same chunk.
	sum := &fakeSummarizer{response: "nothing structured"}
	p := NewPreprocessor([]Strategy{NewKeywords()}, sum)

	p.Process(context.Background(), "text")
	p.Process(context.Background(), "text")
	if sum.calls.Load() != 1 {
		t.Errorf("expected empty map to be cached, got %d calls", sum.calls.Load())
	}
}
