package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/armchr/vectorapi/internal/errs"
)

// InternalEmbedding is an in-process feature-hashing embedder. It needs
// no network and produces deterministic L2-normalized vectors, which
// makes it useful for air-gapped setups and for exercising the full
// ingest/search pipeline in tests. Vectors are only comparable to other
// vectors produced by the same dimension.
type InternalEmbedding struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// DefaultInternalDimension is the vector size used when none is configured.
const DefaultInternalDimension = 384

// NewInternalEmbedding creates an in-process hashing embedder.
func NewInternalEmbedding(dimension int) *InternalEmbedding {
	if dimension <= 0 {
		dimension = DefaultInternalDimension
	}
	return &InternalEmbedding{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+|\p{N}+`),
	}
}

// GenerateEmbedding generates a vector embedding for the given text
func (e *InternalEmbedding) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &errs.ProviderError{Provider: string(ProviderInternal), Message: "text cannot be empty"}
	}

	vec := make([]float32, e.dimension)
	tokens := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderInternal), Message: "text contains no tokens"}
	}

	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimension))
		// The high bit decides the sign so opposing tokens can cancel.
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

// GenerateEmbeddings generates vector embeddings for multiple texts
func (e *InternalEmbedding) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &errs.ProviderError{Provider: string(ProviderInternal), Message: "texts cannot be empty"}
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		embedding, err := e.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, embedding)
	}
	return embeddings, nil
}

// GetDimension returns the dimension of the embedding vectors
func (e *InternalEmbedding) GetDimension() int {
	return e.dimension
}

// GetModelName returns the name of the embedding model being used
func (e *InternalEmbedding) GetModelName() string {
	return "feature-hashing"
}
