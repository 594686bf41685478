package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/armchr/vectorapi/internal/errs"
	"go.uber.org/zap"
)

func TestNewOpenAIEmbedding_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedding(OpenAIEmbeddingConfig{}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error without API key")
	}
	var configErr *errs.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestOpenAIEmbedding_ModelDimensions(t *testing.T) {
	tests := []struct {
		model string
		dim   int
	}{
		{TextEmbedding3Small, 1536},
		{TextEmbedding3Large, 3072},
		{TextEmbeddingAda002, 1536},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			e, err := NewOpenAIEmbedding(OpenAIEmbeddingConfig{APIKey: "sk-test", Model: tt.model}, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.GetDimension() != tt.dim {
				t.Errorf("expected dimension %d, got %d", tt.dim, e.GetDimension())
			}
		})
	}
}

func TestOpenAIEmbedding_BatchInOneRequest(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header: %q", got)
		}

		var req openaiEmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)

		// Answer out of order; the client must restore input order.
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"index":     i,
				"embedding": []float64{float64(i), 1, 2},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedding(OpenAIEmbeddingConfig{APIKey: "sk-test", BaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	embeddings, err := e.GenerateEmbeddings(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requestCount != 1 {
		t.Errorf("expected a single batch request, got %d", requestCount)
	}
	if len(embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embeddings))
	}
	for i, embedding := range embeddings {
		if embedding[0] != float32(i) {
			t.Errorf("embedding %d not restored to input order: first element %v", i, embedding[0])
		}
	}
}

func TestOpenAIEmbedding_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"count mismatch", `{"data":[{"index":0,"embedding":[1,2]}]}`},
		{"empty embedding", `{"data":[{"index":0,"embedding":[]},{"index":1,"embedding":[1,2]}]}`},
		{"out of range index", `{"data":[{"index":0,"embedding":[1,2]},{"index":5,"embedding":[1,2]}]}`},
		{"duplicate index", `{"data":[{"index":0,"embedding":[1,2]},{"index":0,"embedding":[1,2]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			e, err := NewOpenAIEmbedding(OpenAIEmbeddingConfig{APIKey: "sk-test", BaseURL: server.URL}, zap.NewNop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = e.GenerateEmbeddings(context.Background(), []string{"a", "b"})
			if err == nil {
				t.Fatal("expected error for malformed response")
			}
			var providerErr *errs.ProviderError
			if !errors.As(err, &providerErr) {
				t.Errorf("expected ProviderError, got %T", err)
			}
		})
	}
}
