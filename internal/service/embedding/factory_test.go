package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/armchr/vectorapi/internal/errs"
	"go.uber.org/zap"
)

func TestNewEmbeddingService_UnknownProvider(t *testing.T) {
	_, err := NewEmbeddingService(Config{Provider: "watsonx"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	var configErr *errs.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestNewEmbeddingService_MissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewEmbeddingService(Config{Provider: ProviderOpenAI}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	var configErr *errs.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestNewEmbeddingService_CredentialFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	service, err := NewEmbeddingService(Config{Provider: ProviderOpenAI}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.GetDimension() != 1536 {
		t.Errorf("expected default model dimension 1536, got %d", service.GetDimension())
	}
}

func TestNewEmbeddingService_StaticProvidersAreReady(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		dim    int
	}{
		{"ollama known model", Config{Provider: ProviderOllama, Model: AllMiniLM}, 384},
		{"internal default", Config{Provider: ProviderInternal}, DefaultInternalDimension},
		{"internal custom", Config{Provider: ProviderInternal, Dimension: 128}, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewEmbeddingService(tt.config, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if service.GetDimension() != tt.dim {
				t.Errorf("expected dimension %d, got %d", tt.dim, service.GetDimension())
			}
		})
	}
}

// probeServer fakes an OpenAI-compatible embeddings endpoint and counts
// how many requests it served.
func probeServer(t *testing.T, dim int, calls *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		embedding := make([]float64, dim)
		for i := range embedding {
			embedding[i] = 0.1
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": embedding}},
		})
	}))
}

func TestNewReadyEmbeddingService_ResolvesDynamicDimension(t *testing.T) {
	var calls int64
	server := probeServer(t, 512, &calls)
	defer server.Close()

	config := Config{Provider: ProviderLMStudio, Endpoint: server.URL, Model: "resolve-test"}
	service, err := NewReadyEmbeddingService(context.Background(), config, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.GetDimension() != 512 {
		t.Errorf("expected resolved dimension 512, got %d", service.GetDimension())
	}
	if atomic.LoadInt64(&calls) != 1 {
		t.Errorf("expected exactly 1 probe call, got %d", calls)
	}
}

func TestNewReadyEmbeddingService_MemoizesConcurrentProbes(t *testing.T) {
	var calls int64
	server := probeServer(t, 256, &calls)
	defer server.Close()

	config := Config{Provider: ProviderLMStudio, Endpoint: server.URL, Model: "memoize-test"}

	const workers = 16
	dims := make([]int, workers)
	errc := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			service, err := NewReadyEmbeddingService(context.Background(), config, zap.NewNop())
			if err != nil {
				errc <- err
				return
			}
			dims[i] = service.GetDimension()
		}(i)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, dim := range dims {
		if dim != 256 {
			t.Errorf("worker %d resolved dimension %d, want 256", i, dim)
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("expected at most 1 probe call for the same key, got %d", got)
	}

	// A later call for the same key reuses the cache without probing.
	service, err := NewReadyEmbeddingService(context.Background(), config, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.GetDimension() != 256 {
		t.Errorf("expected cached dimension 256, got %d", service.GetDimension())
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("cached resolution must not probe again, got %d calls", got)
	}
}

func TestNewReadyEmbeddingService_ProbeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := Config{Provider: ProviderLMStudio, Endpoint: server.URL, Model: "failure-test"}
	_, err := NewReadyEmbeddingService(context.Background(), config, zap.NewNop())
	if err == nil {
		t.Fatal("expected error when the probe fails")
	}
	var providerErr *errs.ProviderError
	if !errors.As(err, &providerErr) {
		t.Errorf("expected ProviderError, got %T", err)
	}
}

func TestDimensionCacheKey(t *testing.T) {
	a := dimensionCacheKey(Config{Provider: ProviderLMStudio, Endpoint: "http://a", Model: "m"})
	b := dimensionCacheKey(Config{Provider: ProviderLMStudio, Endpoint: "http://b", Model: "m"})
	c := dimensionCacheKey(Config{Provider: ProviderLMStudio, Endpoint: "http://a", Model: "m"})
	if a == b {
		t.Error("different endpoints must map to different cache keys")
	}
	if a != c {
		t.Error("identical configs must map to the same cache key")
	}
	if a != fmt.Sprintf("%s|%s|%s", ProviderLMStudio, "http://a", "m") {
		t.Errorf("unexpected key format: %s", a)
	}
}
