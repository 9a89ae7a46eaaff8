package autodoc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Generation.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("unexpected default base_url: %s", cfg.Generation.BaseURL)
	}
	if cfg.Generation.Model != "llama3" {
		t.Errorf("unexpected default model: %s", cfg.Generation.Model)
	}
	if cfg.Generation.TimeoutSeconds != 120 {
		t.Errorf("unexpected default timeout: %d", cfg.Generation.TimeoutSeconds)
	}
	if cfg.Generation.Temperature != 0 {
		t.Errorf("unexpected default temperature: %f", cfg.Generation.Temperature)
	}
	if !DocsEnabled(cfg) || !TestsEnabled(cfg) {
		t.Error("docs and tests should default to enabled")
	}
	if EmbeddingEnabled(cfg) {
		t.Error("embedding should default to disabled")
	}
}

func TestConfigDirResolution(t *testing.T) {
	t.Setenv("AUTODOC_CONFIG_DIR", "/custom/dir")
	if got := ConfigDir(); got != "/custom/dir" {
		t.Errorf("expected /custom/dir, got %s", got)
	}

	t.Setenv("AUTODOC_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != filepath.Join("/xdg", "autodoc") {
		t.Errorf("expected /xdg/autodoc, got %s", got)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("AUTODOC_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.Model != "llama3" {
		t.Errorf("expected default model, got %s", cfg.Generation.Model)
	}
}

func TestLoadConfigBackfillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTODOC_CONFIG_DIR", dir)

	partial := `{"version": 1, "generation": {"model": "codellama"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Generation.Model != "codellama" {
		t.Errorf("expected configured model, got %s", cfg.Generation.Model)
	}
	if cfg.Generation.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("expected backfilled base_url, got %s", cfg.Generation.BaseURL)
	}
	if cfg.Generation.TimeoutSeconds != 120 {
		t.Errorf("expected backfilled timeout, got %d", cfg.Generation.TimeoutSeconds)
	}
	if cfg.Output.Docs == nil || !*cfg.Output.Docs {
		t.Error("expected backfilled docs toggle")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUTODOC_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid config JSON")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("AUTODOC_GENERATION_BASE_URL", "http://localhost:1234/v1")
	t.Setenv("AUTODOC_GENERATION_MODEL", "mistral")
	t.Setenv("AUTODOC_EMBEDDING_BASE_URL", "http://localhost:5678/v1")

	if got := ResolveGenerationBaseURL(cfg); got != "http://localhost:1234/v1" {
		t.Errorf("env override lost: %s", got)
	}
	if got := ResolveGenerationModel(cfg); got != "mistral" {
		t.Errorf("env override lost: %s", got)
	}
	if !EmbeddingEnabled(cfg) {
		t.Error("embedding env override should enable embedding")
	}
}

func TestResolveWithNilConfig(t *testing.T) {
	if got := ResolveGenerationBaseURL(nil); got != "" {
		t.Errorf("expected empty for nil config, got %s", got)
	}
	if EmbeddingEnabled(nil) {
		t.Error("nil config should disable embedding")
	}
	if !DocsEnabled(nil) || !TestsEnabled(nil) {
		t.Error("nil config should leave artifacts enabled")
	}
}

func TestPromptPath(t *testing.T) {
	t.Setenv("AUTODOC_CONFIG_DIR", "/cfg")
	if got := PromptPath("comment"); got != filepath.Join("/cfg", "prompt_comment.md") {
		t.Errorf("unexpected prompt path: %s", got)
	}
}
