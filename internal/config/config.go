// Package config loads the ragdex configuration: YAML file first, then
// RAGDEX_* environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (RAGDEX_*). A missing file yields defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// RAGDEX_PROVIDER -> provider, RAGDEX_PROJECTS_ROOT -> projects_root, etc.
	if err := k.Load(env.Provider("RAGDEX_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "RAGDEX_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path, creating the
// parent directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ProjectsRoot == "" {
		return fmt.Errorf("projects_root is required")
	}

	if c.Provider != "" && !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, ollama", c.Provider)
	}
	if c.Provider != "" && c.Model == "" {
		return fmt.Errorf("model is required when provider is set")
	}

	if c.EmbeddingProvider == "" {
		return fmt.Errorf("embedding_provider is required")
	}
	if !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, ollama", c.EmbeddingProvider)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be non-negative")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
