package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default upstream endpoints.
const (
	DefaultReaderURL    = "https://r.jina.ai"
	DefaultSearchURL    = "https://s.jina.ai"
	DefaultGroundingURL = "https://g.jina.ai"
	DefaultUserAgent    = "VCP-JinaAI-Plugin/5.0.0"
)

// Config holds all jinaai configuration.
type Config struct {
	// Credentials and request behaviour
	API APIConfig `yaml:"api"`

	// Upstream base URLs
	Endpoints EndpointsConfig `yaml:"endpoints"`

	// Batch execution
	Batch BatchConfig `yaml:"batch"`

	// In-process response cache
	Cache CacheConfig `yaml:"cache"`

	// Screenshot persistence
	ImageStore ImageStoreConfig `yaml:"image_store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures authentication and per-request limits.
type APIConfig struct {
	Key               string `yaml:"key"`
	UserAgent         string `yaml:"user_agent"`
	UseTokenForReader bool   `yaml:"use_token_for_reader"` // Reader sends the key and honours image options
	RequestTimeout    string `yaml:"request_timeout"`
}

// EndpointsConfig holds the base URL of each capability.
type EndpointsConfig struct {
	Reader    string `yaml:"reader"`
	Search    string `yaml:"search"`
	Grounding string `yaml:"grounding"`
}

// BatchConfig configures the batch engine.
type BatchConfig struct {
	// MaxConcurrency caps in-flight items. Zero or negative means unlimited.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	MaxEntries int    `yaml:"max_entries"`
	TTL        string `yaml:"ttl"`
}

// ImageStoreConfig holds the four coordinates needed to persist screenshots
// and build their public URL.
type ImageStoreConfig struct {
	BasePath   string `yaml:"base_path"`   // PROJECT_BASE_PATH
	Port       string `yaml:"port"`        // SERVER_PORT
	AccessKey  string `yaml:"access_key"`  // IMAGESERVER_IMAGE_KEY
	PublicHost string `yaml:"public_host"` // VarHttpUrl
}

// Configured reports whether every coordinate is present.
func (c ImageStoreConfig) Configured() bool {
	return c.BasePath != "" && c.Port != "" && c.AccessKey != "" && c.PublicHost != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			UserAgent:      DefaultUserAgent,
			RequestTimeout: "180s",
		},

		Endpoints: EndpointsConfig{
			Reader:    DefaultReaderURL,
			Search:    DefaultSearchURL,
			Grounding: DefaultGroundingURL,
		},

		Batch: BatchConfig{
			MaxConcurrency: 0,
		},

		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
			TTL:        "10m",
		},

		Logging: LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults only
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("JINA_API_KEY"); key != "" {
		c.API.Key = key
	}

	if v, ok := envBool("UseTokenForReader", "JINA_USE_TOKEN_FOR_READER"); ok {
		c.API.UseTokenForReader = v
	}
	if v, ok := envBool("DebugMode"); ok {
		c.Logging.DebugMode = v
	}

	// Image store coordinates keep their historical names
	if v := os.Getenv("PROJECT_BASE_PATH"); v != "" {
		c.ImageStore.BasePath = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.ImageStore.Port = v
	}
	if v := os.Getenv("IMAGESERVER_IMAGE_KEY"); v != "" {
		c.ImageStore.AccessKey = v
	}
	if v := os.Getenv("VarHttpUrl"); v != "" {
		c.ImageStore.PublicHost = v
	}

	if v := os.Getenv("JINA_READER_URL"); v != "" {
		c.Endpoints.Reader = v
	}
	if v := os.Getenv("JINA_SEARCH_URL"); v != "" {
		c.Endpoints.Search = v
	}
	if v := os.Getenv("JINA_GROUNDING_URL"); v != "" {
		c.Endpoints.Grounding = v
	}

	if v := os.Getenv("JINA_BATCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Batch.MaxConcurrency = n
		}
	}
}

// envBool returns the first set variable among names parsed as a boolean.
func envBool(names ...string) (bool, bool) {
	for _, name := range names {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			continue
		}
		return strings.EqualFold(raw, "true") || raw == "1", true
	}
	return false, false
}

// GetRequestTimeout returns the per-request timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.RequestTimeout)
	if err != nil || d <= 0 {
		return 180 * time.Second
	}
	return d
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"reader":    c.Endpoints.Reader,
		"search":    c.Endpoints.Search,
		"grounding": c.Endpoints.Grounding,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s endpoint: %q", name, raw)
		}
	}

	if c.API.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.API.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", c.API.RequestTimeout, err)
		}
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
	}
	if c.Cache.Enabled && c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive when the cache is enabled")
	}

	return nil
}

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.API.Key) != ""
}
