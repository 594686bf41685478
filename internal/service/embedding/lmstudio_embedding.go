package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/armchr/vectorapi/internal/errs"
	"go.uber.org/zap"
)

// LMStudioEmbedding implements EmbeddingModel against LM Studio's
// OpenAI-compatible local server. LM Studio serves whatever model the
// user loaded, so the vector dimension is unknown until ResolveDimension
// probes the endpoint once.
type LMStudioEmbedding struct {
	apiURL    string
	model     string
	dimension int
	logger    *zap.Logger
	client    *http.Client
}

// LMStudioEmbeddingConfig holds configuration for the LM Studio embedding model
type LMStudioEmbeddingConfig struct {
	APIURL string // e.g., "http://localhost:1234"
	Model  string // name of the loaded model
}

// dimensionProbeText is the sentinel input used to measure the vector size.
const dimensionProbeText = "dimension probe"

// NewLMStudioEmbedding creates a new LM Studio embedding client. The
// returned model reports dimension 0 until ResolveDimension succeeds.
func NewLMStudioEmbedding(config LMStudioEmbeddingConfig, logger *zap.Logger) (*LMStudioEmbedding, error) {
	if config.APIURL == "" {
		config.APIURL = "http://localhost:1234"
	}

	return &LMStudioEmbedding{
		apiURL: config.APIURL,
		model:  config.Model,
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type lmstudioEmbeddingRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type lmstudioEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// ResolveDimension probes the endpoint with a sentinel input and fixes
// the dimension for the lifetime of this instance.
func (l *LMStudioEmbedding) ResolveDimension(ctx context.Context) (int, error) {
	embedding, err := l.embed(ctx, dimensionProbeText)
	if err != nil {
		return 0, err
	}
	l.dimension = len(embedding)
	l.logger.Info("Resolved embedding dimension",
		zap.String("provider", string(ProviderLMStudio)),
		zap.String("model", l.model),
		zap.Int("dimension", l.dimension))
	return l.dimension, nil
}

func (l *LMStudioEmbedding) adoptDimension(dim int) {
	l.dimension = dim
}

// GenerateEmbedding generates a vector embedding for the given text
func (l *LMStudioEmbedding) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if l.dimension == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "dimension not resolved; call ResolveDimension first"}
	}

	embedding, err := l.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(embedding) != l.dimension {
		return nil, &errs.ProviderError{
			Provider: string(ProviderLMStudio),
			Message:  fmt.Sprintf("embedding has length %d, expected %d", len(embedding), l.dimension),
		}
	}

	return embedding, nil
}

// GenerateEmbeddings generates vector embeddings for multiple texts.
// The LM Studio server accepts one input per request, so inputs are
// processed sequentially in order.
func (l *LMStudioEmbedding) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "texts cannot be empty"}
	}

	embeddings := make([][]float32, 0, len(texts))

	for i, text := range texts {
		embedding, err := l.GenerateEmbedding(ctx, text)
		if err != nil {
			l.logger.Error("Failed to generate embedding", zap.Int("index", i), zap.Error(err))
			return nil, err
		}
		embeddings = append(embeddings, embedding)
	}

	return embeddings, nil
}

func (l *LMStudioEmbedding) embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "text cannot be empty"}
	}

	reqBody := lmstudioEmbeddingRequest{
		Model: l.model,
		Input: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.apiURL+"/v1/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "failed to create request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &errs.ProviderError{
			Provider: string(ProviderLMStudio),
			Message:  fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var embeddingResp lmstudioEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "failed to decode response", Err: err}
	}

	if len(embeddingResp.Data) == 0 || len(embeddingResp.Data[0].Embedding) == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderLMStudio), Message: "response contains no embedding"}
	}

	embedding := make([]float32, len(embeddingResp.Data[0].Embedding))
	for i, v := range embeddingResp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// GetDimension returns the resolved dimension, or 0 before resolution
func (l *LMStudioEmbedding) GetDimension() int {
	return l.dimension
}

// GetModelName returns the name of the embedding model being used
func (l *LMStudioEmbedding) GetModelName() string {
	return l.model
}
