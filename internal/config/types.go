package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level ragdex configuration, corresponding to config.yml
// in the data directory.
type Config struct {
	// ProjectsRoot is the directory holding one subdirectory per project.
	ProjectsRoot string `yaml:"projects_root" koanf:"projects_root"`

	// Provider and Model drive chunk preprocessing and summaries.
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	// APIBase overrides the provider's endpoint, e.g. for OpenAI-compatible
	// gateways. Empty uses the provider default.
	APIBase string `yaml:"api_base" koanf:"api_base"`

	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	// OllamaURL is the base URL of the local Ollama server.
	OllamaURL string `yaml:"ollama_url" koanf:"ollama_url"`

	// ChunkSize and ChunkOverlap seed the settings of newly created projects.
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Watch  WatchConfig  `yaml:"watch" koanf:"watch"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
}

// WatchConfig holds filesystem watcher settings.
type WatchConfig struct {
	// DebounceMs is how long the watcher waits after the last filesystem
	// event before triggering a re-index.
	DebounceMs int `yaml:"debounce_ms" koanf:"debounce_ms"`
}
