package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/armchr/vectorapi/internal/service/embedding"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not fail: %v", err)
	}

	if cfg.Qdrant.Host != "localhost" || cfg.Qdrant.Port != 6334 {
		t.Errorf("unexpected qdrant defaults: %+v", cfg.Qdrant)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Chunking)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("unexpected search default limit: %d", cfg.Search.DefaultLimit)
	}
	if len(cfg.Search.PayloadTextFields) != 2 || cfg.Search.PayloadTextFields[0] != "text" {
		t.Errorf("unexpected payload field probe order: %v", cfg.Search.PayloadTextFields)
	}
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	data := `
app:
  port: 9090
qdrant:
  host: qdrant.internal
  port: 7000
chunking:
  size: 500
  overlap: 50
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QDRANT_HOST", "env-wins.example")
	t.Setenv("QDRANT_API_KEY", "secret")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.App.Port)
	}
	if cfg.Qdrant.Host != "env-wins.example" {
		t.Errorf("env must override file, got %q", cfg.Qdrant.Host)
	}
	if cfg.Qdrant.Port != 7000 {
		t.Errorf("expected port 7000 from file, got %d", cfg.Qdrant.Port)
	}
	if cfg.Qdrant.APIKey != "secret" {
		t.Errorf("expected API key from env, got %q", cfg.Qdrant.APIKey)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("unexpected chunking config: %+v", cfg.Chunking)
	}
}

func TestEmbeddingConfigFor_EnvResolution(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "http://ollama.internal:11434")
	t.Setenv("OLLAMA_MODEL", "mxbai-embed-large")

	cfg := &Config{}
	cfg.applyDefaults()

	resolved := cfg.EmbeddingConfigFor("ollama")
	if resolved.Provider != embedding.ProviderOllama {
		t.Errorf("unexpected provider: %s", resolved.Provider)
	}
	if resolved.Endpoint != "http://ollama.internal:11434" {
		t.Errorf("expected endpoint from env, got %q", resolved.Endpoint)
	}
	if resolved.Model != "mxbai-embed-large" {
		t.Errorf("expected model from env, got %q", resolved.Model)
	}
}

func TestEmbeddingConfigFor_FileFallbackForDefaultProvider(t *testing.T) {
	t.Setenv("OLLAMA_ENDPOINT", "")
	t.Setenv("OLLAMA_MODEL", "")

	cfg := &Config{}
	cfg.Embedding = embedding.Config{
		Provider: embedding.ProviderOllama,
		Model:    "nomic-embed-text",
		Endpoint: "http://localhost:11434",
	}
	cfg.applyDefaults()

	resolved := cfg.EmbeddingConfigFor("ollama")
	if resolved.Model != "nomic-embed-text" || resolved.Endpoint != "http://localhost:11434" {
		t.Errorf("expected file fallback, got %+v", resolved)
	}

	// A different provider gets no file fallback.
	other := cfg.EmbeddingConfigFor("internal")
	if other.Model != "" || other.Endpoint != "" {
		t.Errorf("non-default provider must not inherit file settings: %+v", other)
	}
}
