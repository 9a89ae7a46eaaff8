package autodoc

import (
	"encoding/json"
	"os"
	"path/filepath"

	defaults "github.com/autodoc-ai/autodoc/default"
)

// Config represents the user's autodoc configuration.
type Config struct {
	Version    int              `json:"version"`
	Generation GenerationConfig `json:"generation"`
	Embedding  EmbeddingConfig  `json:"embedding"`
	Output     OutputConfig     `json:"output"`
}

// GenerationConfig holds settings for the text-generation API.
type GenerationConfig struct {
	BaseURL        string  `json:"base_url"`
	APIKey         string  `json:"api_key"`
	Model          string  `json:"model"`
	MaxTokens      int     `json:"max_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
}

// EmbeddingConfig holds settings for the embedding API used by exemplar
// retrieval. Leaving base_url empty disables retrieval.
type EmbeddingConfig struct {
	BaseURL    string `json:"base_url"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions,omitempty"`
	TTLMinutes int    `json:"ttl_minutes,omitempty"`
}

// OutputConfig toggles the optional artifacts.
type OutputConfig struct {
	// Docs enables the markdown documentation file.
	Docs *bool `json:"docs,omitempty"`
	// Tests enables the generated test file.
	Tests *bool `json:"tests,omitempty"`
	// Dir redirects all artifacts into the given directory instead of
	// writing next to the input file.
	Dir string `json:"dir,omitempty"`
}

// ConfigDir returns the config directory path.
// Resolution order: $AUTODOC_CONFIG_DIR > $XDG_CONFIG_HOME/autodoc > ~/.config/autodoc
func ConfigDir() string {
	if dir := os.Getenv("AUTODOC_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "autodoc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "autodoc-config")
	}
	return filepath.Join(home, ".config", "autodoc")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// PromptPath returns the path of a custom prompt template override.
// Known names are "comment", "doc", "test", and "test_import".
func PromptPath(name string) string {
	return filepath.Join(ConfigDir(), "prompt_"+name+".md")
}

// EmbeddingCachePath returns the path of the on-disk exemplar embedding cache.
func EmbeddingCachePath() string {
	return filepath.Join(ConfigDir(), "exemplars.cache.json")
}

// DefaultConfig returns the default configuration from the embedded default_config.json.
func DefaultConfig() *Config {
	var cfg Config
	if err := json.Unmarshal(defaults.DefaultConfigJSON, &cfg); err != nil {
		panic("autodoc: invalid embedded default_config.json: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	def := DefaultConfig()
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = def.Generation.BaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = def.Generation.Model
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = def.Generation.MaxTokens
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = def.Generation.TimeoutSeconds
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if cfg.Embedding.TTLMinutes == 0 {
		cfg.Embedding.TTLMinutes = def.Embedding.TTLMinutes
	}
	if cfg.Output.Docs == nil {
		cfg.Output.Docs = def.Output.Docs
	}
	if cfg.Output.Tests == nil {
		cfg.Output.Tests = def.Output.Tests
	}

	return &cfg, nil
}

// ResolveGenerationBaseURL returns the generation API base URL.
// Priority: $AUTODOC_GENERATION_BASE_URL env > config value.
func ResolveGenerationBaseURL(cfg *Config) string {
	if url := os.Getenv("AUTODOC_GENERATION_BASE_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Generation.BaseURL
	}
	return ""
}

// ResolveGenerationAPIKey returns the generation API key.
// Priority: $AUTODOC_GENERATION_API_KEY env > config value.
// Local servers such as Ollama accept requests without a key.
func ResolveGenerationAPIKey(cfg *Config) string {
	if key := os.Getenv("AUTODOC_GENERATION_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Generation.APIKey
	}
	return ""
}

// ResolveGenerationModel returns the generation model name.
// Priority: $AUTODOC_GENERATION_MODEL env > config value.
func ResolveGenerationModel(cfg *Config) string {
	if model := os.Getenv("AUTODOC_GENERATION_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.Generation.Model
	}
	return ""
}

// ResolveEmbeddingBaseURL returns the embedding API base URL.
// Priority: $AUTODOC_EMBEDDING_BASE_URL env > config value.
func ResolveEmbeddingBaseURL(cfg *Config) string {
	if url := os.Getenv("AUTODOC_EMBEDDING_BASE_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Embedding.BaseURL
	}
	return ""
}

// ResolveEmbeddingAPIKey returns the embedding API key.
// Priority: $AUTODOC_EMBEDDING_API_KEY env > config value.
func ResolveEmbeddingAPIKey(cfg *Config) string {
	if key := os.Getenv("AUTODOC_EMBEDDING_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Embedding.APIKey
	}
	return ""
}

// ResolveEmbeddingModel returns the embedding model name.
// Priority: $AUTODOC_EMBEDDING_MODEL env > config value.
func ResolveEmbeddingModel(cfg *Config) string {
	if model := os.Getenv("AUTODOC_EMBEDDING_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.Embedding.Model
	}
	return ""
}

// EmbeddingEnabled returns true when an embedding base_url is configured.
func EmbeddingEnabled(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return ResolveEmbeddingBaseURL(cfg) != ""
}

// DocsEnabled reports whether the markdown documentation artifact is on.
func DocsEnabled(cfg *Config) bool {
	if cfg == nil || cfg.Output.Docs == nil {
		return true
	}
	return *cfg.Output.Docs
}

// TestsEnabled reports whether the generated test artifact is on.
func TestsEnabled(cfg *Config) bool {
	if cfg == nil || cfg.Output.Tests == nil {
		return true
	}
	return *cfg.Output.Tests
}
