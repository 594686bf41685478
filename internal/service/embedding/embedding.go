package embedding

import (
	"context"
)

// EmbeddingModel represents a generic embedding model interface
// This abstraction allows swapping between OpenAI, Ollama, LM Studio, etc.
type EmbeddingModel interface {
	// GenerateEmbedding generates a vector embedding for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateEmbeddings generates vector embeddings for multiple texts.
	// Output order and count always match the input, even for backends
	// without a native batch endpoint.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// GetDimension returns the dimension of the embedding vectors.
	// Dynamically-dimensioned models return 0 until resolved.
	GetDimension() int

	// GetModelName returns the name of the embedding model being used
	GetModelName() string
}

// DynamicDimensionModel is implemented by models whose vector size is not
// known statically. ResolveDimension probes the backing service with a
// sentinel input and fixes the dimension for the lifetime of the instance.
type DynamicDimensionModel interface {
	EmbeddingModel

	ResolveDimension(ctx context.Context) (int, error)
}

// dimensionAdopter lets the factory install a cached dimension into an
// instance without issuing a fresh probe.
type dimensionAdopter interface {
	adoptDimension(dim int)
}

// Provider identifies an embedding backend.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderOllama   Provider = "ollama"
	ProviderLMStudio Provider = "lmstudio"
	ProviderInternal Provider = "internal"
)

// Config holds configuration for an embedding provider. Immutable once
// passed to the factory.
type Config struct {
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"-"`

	// Dimension is only honored by the internal provider; remote
	// providers derive it from the model or a probe.
	Dimension int `yaml:"dimension"`
}

// providerTraits describes per-variant capabilities consulted by the
// factory before construction.
var providerTraits = map[Provider]struct {
	requiresCredential bool
	dynamicDimension   bool
}{
	ProviderOpenAI:   {requiresCredential: true},
	ProviderOllama:   {},
	ProviderLMStudio: {dynamicDimension: true},
	ProviderInternal: {},
}
