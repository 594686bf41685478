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

// OpenAIEmbedding implements EmbeddingModel using OpenAI's embeddings API.
// The API has a native batch endpoint, so GenerateEmbeddings issues a
// single request for the whole input.
type OpenAIEmbedding struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	logger    *zap.Logger
	client    *http.Client
}

// OpenAIEmbeddingConfig holds configuration for the OpenAI embedding model
type OpenAIEmbeddingConfig struct {
	APIKey  string
	Model   string // e.g., "text-embedding-3-small"
	BaseURL string // Optional custom base URL (for compatible APIs)
}

// OpenAI embedding model constants
const (
	TextEmbedding3Small = "text-embedding-3-small"
	TextEmbedding3Large = "text-embedding-3-large"
	TextEmbeddingAda002 = "text-embedding-ada-002"

	openAIDefaultURL = "https://api.openai.com"
)

var openAIModelDimensions = map[string]int{
	TextEmbedding3Small: 1536,
	TextEmbedding3Large: 3072,
	TextEmbeddingAda002: 1536,
}

// NewOpenAIEmbedding creates a new OpenAI embedding client. The API key
// is required; construction fails without it.
func NewOpenAIEmbedding(config OpenAIEmbeddingConfig, logger *zap.Logger) (*OpenAIEmbedding, error) {
	if config.APIKey == "" {
		return nil, &errs.ConfigError{Message: "OpenAI API key is required (set OPENAI_API_KEY)"}
	}

	if config.Model == "" {
		config.Model = TextEmbedding3Small
	}

	if config.BaseURL == "" {
		config.BaseURL = openAIDefaultURL
	}

	dimension := openAIModelDimensions[config.Model]
	if dimension == 0 {
		dimension = 1536
	}

	return &OpenAIEmbedding{
		apiKey:    config.APIKey,
		model:     config.Model,
		baseURL:   config.BaseURL,
		dimension: dimension,
		logger:    logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type openaiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []openaiEmbeddingData `json:"data"`
}

type openaiEmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// GenerateEmbedding generates a vector embedding for the given text
func (o *OpenAIEmbedding) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := o.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings generates vector embeddings for multiple texts in one call
func (o *OpenAIEmbedding) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderOpenAI), Message: "texts cannot be empty"}
	}

	reqBody := openaiEmbeddingRequest{
		Model: o.model,
		Input: texts,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderOpenAI), Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/v1/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderOpenAI), Message: "failed to create request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderOpenAI), Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &errs.ProviderError{
			Provider: string(ProviderOpenAI),
			Message:  fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var embeddingResp openaiEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, &errs.ProviderError{Provider: string(ProviderOpenAI), Message: "failed to decode response", Err: err}
	}

	if len(embeddingResp.Data) != len(texts) {
		return nil, &errs.ProviderError{
			Provider: string(ProviderOpenAI),
			Message:  fmt.Sprintf("response contains %d embeddings for %d inputs", len(embeddingResp.Data), len(texts)),
		}
	}

	// The API may return entries out of order; the index field is authoritative.
	embeddings := make([][]float32, len(texts))
	for _, data := range embeddingResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, &errs.ProviderError{
				Provider: string(ProviderOpenAI),
				Message:  fmt.Sprintf("response contains out-of-range index %d", data.Index),
			}
		}
		if len(data.Embedding) == 0 {
			return nil, &errs.ProviderError{
				Provider: string(ProviderOpenAI),
				Message:  fmt.Sprintf("response contains empty embedding at index %d", data.Index),
			}
		}
		embedding := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			embedding[i] = float32(v)
		}
		embeddings[data.Index] = embedding
	}

	for i, embedding := range embeddings {
		if embedding == nil {
			return nil, &errs.ProviderError{
				Provider: string(ProviderOpenAI),
				Message:  fmt.Sprintf("response is missing embedding for index %d", i),
			}
		}
	}

	return embeddings, nil
}

// GetDimension returns the dimension of the embedding vectors
func (o *OpenAIEmbedding) GetDimension() int {
	return o.dimension
}

// GetModelName returns the name of the embedding model being used
func (o *OpenAIEmbedding) GetModelName() string {
	return o.model
}
