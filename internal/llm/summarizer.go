package llm

import (
	"context"
	"fmt"
	"strings"
)

// Summarizer turns a text plus a natural-language instruction into a
// transformed text. It backs both summary generation and the shared chunk
// preprocessing call.
type Summarizer struct {
	provider Provider
	model    string
}

// NewSummarizer creates a Summarizer on top of a completion provider.
func NewSummarizer(provider Provider, model string) *Summarizer {
	return &Summarizer{provider: provider, model: model}
}

// Summarize applies the instruction to the text and returns the raw response.
func (s *Summarizer) Summarize(ctx context.Context, text, instruction string) (string, error) {
	resp, err := s.provider.Complete(ctx, CompletionRequest{
		Model: s.model,
		Messages: []Message{
			{Role: RoleSystem, Content: instruction},
			{Role: RoleUser, Content: text},
		},
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
