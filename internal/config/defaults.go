package config

import (
	"os"
	"path/filepath"
)

// DataDirName is the per-user data directory under the home directory.
const DataDirName = ".ragdex"

const configFileName = "config.yml"

// DataDir returns the ragdex data directory, falling back to the working
// directory when the home directory cannot be determined.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDirName
	}
	return filepath.Join(home, DataDirName)
}

// DefaultConfigPath returns where the configuration file lives by default.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), configFileName)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ProjectsRoot:      filepath.Join(DataDir(), "projects"),
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		OllamaURL:         "http://localhost:11434",
		ChunkSize:         1000,
		ChunkOverlap:      200,
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Watch: WatchConfig{
			DebounceMs: 2000,
		},
	}
}
