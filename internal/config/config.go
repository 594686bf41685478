package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/armchr/vectorapi/internal/service/embedding"
	"gopkg.in/yaml.v2"
)

type App struct {
	Port     int    `yaml:"port"`
	HTTP     bool   `yaml:"http,omitempty"`      // serve the REST facade instead of MCP stdio
	LogLevel string `yaml:"log_level,omitempty"` // debug, info, warn, error (default: info)
}

type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"apikey"`
	UseTLS bool   `yaml:"use_tls,omitempty"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type ValidationConfig struct {
	// MaxAbsValue is the extreme-value warning threshold for embedding
	// elements. Zero selects the built-in default.
	MaxAbsValue float64 `yaml:"max_abs_value,omitempty"`
}

type SearchConfig struct {
	// DefaultLimit is the result count used when a search request does
	// not specify one.
	DefaultLimit int `yaml:"default_limit,omitempty"`

	// PayloadTextFields are probed in order when formatting a hit; the
	// first present string field becomes the result text.
	PayloadTextFields []string `yaml:"payload_text_fields,omitempty"`
}

type Config struct {
	App        App              `yaml:"app"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embedding  embedding.Config `yaml:"embedding"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Validation ValidationConfig `yaml:"validation"`
	Search     SearchConfig     `yaml:"search"`
}

// LoadConfig reads the YAML config file and applies defaults and
// environment overrides. A missing file is not an error; the server can
// run entirely from environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Qdrant.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Qdrant.Port = port
		}
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		c.Qdrant.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 1000
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 200
	}
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = 10
	}
	if len(c.Search.PayloadTextFields) == 0 {
		c.Search.PayloadTextFields = []string{"text", "content"}
	}
}

// EmbeddingConfigFor builds the provider configuration for one request.
// Credential, endpoint and model come from the provider's conventionally
// named environment variables (<KIND>_API_KEY, <KIND>_ENDPOINT,
// <KIND>_MODEL), with the config file as fallback when the request names
// the configured default provider.
func (c *Config) EmbeddingConfigFor(service string) embedding.Config {
	cfg := embedding.Config{Provider: embedding.Provider(service)}
	if cfg.Provider == "" {
		cfg.Provider = c.Embedding.Provider
	}
	cfg = embedding.ResolveEnvConfig(cfg)
	if cfg.Provider == c.Embedding.Provider {
		if cfg.Model == "" {
			cfg.Model = c.Embedding.Model
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = c.Embedding.Endpoint
		}
		cfg.Dimension = c.Embedding.Dimension
	}
	return cfg
}
