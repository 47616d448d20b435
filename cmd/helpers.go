package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vkozyrev/ragdex/internal/chunker"
	"github.com/vkozyrev/ragdex/internal/config"
	"github.com/vkozyrev/ragdex/internal/embeddings"
	"github.com/vkozyrev/ragdex/internal/engine"
	"github.com/vkozyrev/ragdex/internal/llm"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/project"
	"github.com/vkozyrev/ragdex/internal/runlog"
	"github.com/vkozyrev/ragdex/internal/strategy"
	"github.com/vkozyrev/ragdex/internal/vectorstore"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w\nRun `ragdex init` to create a valid config", err)
	}
	return cfg, nil
}

// newEmbedder creates an embeddings.Embedder based on config.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, cfg.APIBase, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, 768), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
}

// newSummarizer creates the summarizer driving preprocessing and document
// summaries. Returns nil when no chat provider is configured, which disables
// both features.
func newSummarizer(cfg *config.Config) (strategy.Summarizer, error) {
	if cfg.Provider == "" || cfg.Model == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for the OpenAI provider")
		}
		return llm.NewSummarizer(llm.NewOpenAIProvider(apiKey, cfg.APIBase, cfg.Model), cfg.Model), nil
	case config.ProviderOllama:
		return llm.NewSummarizer(llm.NewOllamaProvider(cfg.OllamaURL, cfg.Model), cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// buildEngine wires the full engine from configuration, with vectors
// persisted in the data directory.
func buildEngine(cfg *config.Config) (*engine.Engine, *project.Layout, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}
	summarizer, err := newSummarizer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating summarizer: %w", err)
	}

	store, err := vectorstore.NewPersistentChromemStore(filepath.Join(config.DataDir(), "vectors"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening vector store: %w", err)
	}

	layout := project.NewLayout(cfg.ProjectsRoot)
	manifests := manifest.NewStore(cfg.ProjectsRoot)
	eng := engine.New(layout, manifests, store, embedder, chunker.NewTextChunker(), summarizer)
	return eng, layout, nil
}

// openRunLog opens the run history database in the data directory.
func openRunLog() (*runlog.Store, error) {
	return runlog.Open(filepath.Join(config.DataDir(), "runs.db"))
}
