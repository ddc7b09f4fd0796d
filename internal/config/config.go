package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvDB             = "ESTIMATOR_DB"
	EnvLogLevel       = "ESTIMATOR_LOG_LEVEL"
	EnvSearchStrategy = "ESTIMATOR_SEARCH_STRATEGY"
)

// CatalogConfig locates and tunes the SQLite catalog.
type CatalogConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
	CacheSizeKB   int    `yaml:"cache_size_kb"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
	SlowQueryMS   int    `yaml:"slow_query_ms"`
	Debug         bool   `yaml:"debug"`
}

// SearchConfig selects the search strategy.
type SearchConfig struct {
	// Strategy is fulltext, semantic or hybrid.
	Strategy     string  `yaml:"strategy"`
	DefaultLimit int     `yaml:"default_limit"`
	MinPrefixLen int     `yaml:"min_prefix_len"`
	Threshold    float64 `yaml:"similarity_threshold"`
	// Synonyms extend the built-in synonym table.
	Synonyms map[string][]string `yaml:"synonyms,omitempty"`
}

// SimilarConfig tunes find-similar.
type SimilarConfig struct {
	Keywords    int `yaml:"keywords"`
	MaxResults  int `yaml:"max_results"`
	Concurrency int `yaml:"concurrency"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                `yaml:"type"`
	MaxFeatures int                   `yaml:"max_features"`
	OpenAI      *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Path   string        `yaml:"path,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Search      SearchConfig      `yaml:"search"`
	Similar     SimilarConfig     `yaml:"similar"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads .env if present, then tries ./config.yaml, then
// ~/.config/estimator/config.yaml. If neither exists, it writes defaults to
// the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	// optional
	_ = godotenv.Load()

	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Search.Strategy {
	case "fulltext", "semantic", "hybrid":
	default:
		return fmt.Errorf("unknown search strategy %q", c.Search.Strategy)
	}
	switch c.Embedder.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unknown embedder %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory", "bolt", "qdrant":
	default:
		return fmt.Errorf("unknown vector store %q", c.VectorStore.Type)
	}
	if c.VectorStore.Type == "qdrant" && (c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "") {
		return errors.New("vector_store.qdrant.url is required")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "estimator", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Catalog:     CatalogConfig{Path: filepath.Join("data", "estimates.db")},
		Search:      SearchConfig{Strategy: "fulltext"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		VectorStore: VectorStoreConfig{Type: "memory"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = filepath.Join("data", "estimates.db")
	}
	if cfg.Catalog.BusyTimeoutMS == 0 {
		cfg.Catalog.BusyTimeoutMS = 5000
	}
	if cfg.Catalog.CacheSizeKB == 0 {
		cfg.Catalog.CacheSizeKB = 64000
	}
	if cfg.Catalog.SlowQueryMS == 0 {
		cfg.Catalog.SlowQueryMS = 200
	}
	if cfg.Search.Strategy == "" {
		cfg.Search.Strategy = "fulltext"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MinPrefixLen == 0 {
		cfg.Search.MinPrefixLen = 2
	}
	if cfg.Similar.Keywords == 0 {
		cfg.Similar.Keywords = 3
	}
	if cfg.Similar.MaxResults == 0 {
		cfg.Similar.MaxResults = 5
	}
	if cfg.Similar.Concurrency == 0 {
		cfg.Similar.Concurrency = 4
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.MaxFeatures == 0 {
		cfg.Embedder.MaxFeatures = 2048
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 5
		}
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "bolt" && cfg.VectorStore.Path == "" {
		cfg.VectorStore.Path = filepath.Join("data", "vectors.db")
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "rates"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.Catalog.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSearchStrategy)); v != "" {
		cfg.Search.Strategy = strings.ToLower(v)
	}
}
