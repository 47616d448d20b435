package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/strategy"
)

// defaultModels maps each provider to its default chat and embedding models.
var defaultModels = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// RunWizard runs the interactive first-time setup and saves the resulting
// configuration to its default path.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ragdex! Let's configure your installation.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider (used for summaries and keyword extraction)",
		Items: []string{string(ProviderOpenAI), string(ProviderOllama)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	defaults := defaultModels[cfg.Provider]
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaults.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	cfg.EmbeddingProvider = cfg.Provider
	embeddingPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaults.EmbeddingModel,
	}
	if cfg.EmbeddingModel, err = embeddingPrompt.Run(); err != nil {
		return nil, fmt.Errorf("embedding model: %w", err)
	}

	rootPrompt := promptui.Prompt{
		Label:   "Projects directory",
		Default: cfg.ProjectsRoot,
	}
	if cfg.ProjectsRoot, err = rootPrompt.Run(); err != nil {
		return nil, fmt.Errorf("projects directory: %w", err)
	}

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before indexing.\n", envVar)
	}

	path := DefaultConfigPath()
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// ProjectWizard interactively builds the indexing settings for a new project,
// starting from the configured chunking defaults.
func (c *Config) ProjectWizard() (manifest.Settings, error) {
	settings := manifest.Settings{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
	}

	chunkPrompt := promptui.Prompt{
		Label:   "Chunk size (characters)",
		Default: strconv.Itoa(settings.ChunkSize),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return settings, fmt.Errorf("chunk size: %w", err)
	}
	settings.ChunkSize, _ = strconv.Atoi(chunkStr)

	for _, id := range []string{strategy.DirectID, strategy.KeywordsID, strategy.SummaryID} {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Enable %q retrieval strategy", id),
			IsConfirm: true,
			Default:   "y",
		}
		if _, err := confirm.Run(); err != nil {
			// promptui treats a declined confirm as an error.
			continue
		}
		settings.Strategies = append(settings.Strategies, manifest.StrategyConfig{
			ID:      id,
			Enabled: true,
			Weight:  1.0,
		})
	}

	if len(settings.Strategies) > 1 {
		fusionPrompt := promptui.Select{
			Label: "Fusion method for combining strategy results",
			Items: []string{"rrf", "weighted"},
		}
		_, method, err := fusionPrompt.Run()
		if err != nil {
			return settings, fmt.Errorf("fusion method: %w", err)
		}
		settings.FusionMethod = method
	}

	return settings, nil
}
