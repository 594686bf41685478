package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/armchr/vectorapi/internal/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NewEmbeddingService creates an embedding model based on the provided
// configuration. Providers that require a credential fail here, not on
// first use. Dynamically-dimensioned providers are returned unresolved;
// use NewReadyEmbeddingService when the dimension is needed.
func NewEmbeddingService(config Config, logger *zap.Logger) (EmbeddingModel, error) {
	traits, ok := providerTraits[config.Provider]
	if !ok {
		return nil, &errs.ConfigError{Message: fmt.Sprintf("unsupported embedding provider: %s", config.Provider)}
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envKey(config.Provider, "API_KEY"))
	}
	if traits.requiresCredential && apiKey == "" {
		return nil, &errs.ConfigError{
			Message: fmt.Sprintf("%s API key not provided (set %s env var)", config.Provider, envKey(config.Provider, "API_KEY")),
		}
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIEmbedding(OpenAIEmbeddingConfig{
			APIKey:  apiKey,
			Model:   config.Model,
			BaseURL: config.Endpoint,
		}, logger)

	case ProviderOllama:
		return NewOllamaEmbedding(OllamaEmbeddingConfig{
			APIURL: config.Endpoint,
			Model:  config.Model,
		}, logger)

	case ProviderLMStudio:
		return NewLMStudioEmbedding(LMStudioEmbeddingConfig{
			APIURL: config.Endpoint,
			Model:  config.Model,
		}, logger)

	case ProviderInternal:
		return NewInternalEmbedding(config.Dimension), nil

	default:
		return nil, &errs.ConfigError{Message: fmt.Sprintf("unsupported embedding provider: %s", config.Provider)}
	}
}

// Process-wide cache of probed dimensions keyed by provider|endpoint|model.
// A dimension, once resolved for a key, never changes within the process;
// concurrent resolutions for the same key share a single probe call.
var (
	dimCacheMu sync.Mutex
	dimCache   = make(map[string]int)
	dimGroup   singleflight.Group
)

// NewReadyEmbeddingService builds an embedding model and, for variants
// with a dynamically detected dimension, resolves it before returning.
// The returned model always reports a positive dimension.
func NewReadyEmbeddingService(ctx context.Context, config Config, logger *zap.Logger) (EmbeddingModel, error) {
	service, err := NewEmbeddingService(config, logger)
	if err != nil {
		return nil, err
	}

	dynamic, ok := service.(DynamicDimensionModel)
	if !ok {
		return service, nil
	}

	key := dimensionCacheKey(config)

	dimCacheMu.Lock()
	cached, hit := dimCache[key]
	dimCacheMu.Unlock()

	if !hit {
		result, resolveErr, _ := dimGroup.Do(key, func() (interface{}, error) {
			dim, err := dynamic.ResolveDimension(ctx)
			if err != nil {
				return 0, err
			}

			dimCacheMu.Lock()
			defer dimCacheMu.Unlock()
			if prev, ok := dimCache[key]; ok && prev != dim {
				return 0, &errs.ConfigError{
					Message: fmt.Sprintf("provider %s reported dimension %d but %d is already cached; the backing model changed", key, dim, prev),
				}
			}
			dimCache[key] = dim
			return dim, nil
		})
		if resolveErr != nil {
			return nil, resolveErr
		}
		cached = result.(int)
	}

	if adopter, ok := service.(dimensionAdopter); ok && service.GetDimension() != cached {
		adopter.adoptDimension(cached)
	}

	return service, nil
}

func dimensionCacheKey(config Config) string {
	return fmt.Sprintf("%s|%s|%s", config.Provider, config.Endpoint, config.Model)
}

func envKey(provider Provider, suffix string) string {
	return strings.ToUpper(string(provider)) + "_" + suffix
}

// ResolveEnvConfig fills in credential, endpoint and model for a provider
// from its conventionally named environment variables. Values already set
// on the config win over the environment.
func ResolveEnvConfig(config Config) Config {
	if config.APIKey == "" {
		config.APIKey = os.Getenv(envKey(config.Provider, "API_KEY"))
	}
	if config.Endpoint == "" {
		config.Endpoint = os.Getenv(envKey(config.Provider, "ENDPOINT"))
	}
	if config.Model == "" {
		config.Model = os.Getenv(envKey(config.Provider, "MODEL"))
	}
	return config
}
