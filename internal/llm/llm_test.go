package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	lastReq CompletionRequest
	content string
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResponse{Content: f.content, Model: req.Model}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestSummarizer_Summarize(t *testing.T) {
	p := &fakeProvider{content: "  a summary \n"}
	s := NewSummarizer(p, "test-model")

	out, err := s.Summarize(context.Background(), "some text", "summarize this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a summary" {
		t.Errorf("expected trimmed summary, got %q", out)
	}
	if len(p.lastReq.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(p.lastReq.Messages))
	}
	if p.lastReq.Messages[0].Role != RoleSystem || p.lastReq.Messages[0].Content != "summarize this" {
		t.Error("instruction should be passed as the system message")
	}
	if p.lastReq.Messages[1].Content != "some text" {
		t.Error("text should be passed as the user message")
	}
}

func TestSummarizer_PropagatesError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	s := NewSummarizer(p, "test-model")

	if _, err := s.Summarize(context.Background(), "text", "instr"); err == nil {
		t.Error("expected error to propagate")
	}
}
