package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the schemematch service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Search      SearchConfig      `yaml:"search"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Corpus drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// CorpusConfig holds scheme corpus and profile store settings.
type CorpusConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, postgres (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	Index            string   `yaml:"index"`
	KeyPrefix        string   `yaml:"key_prefix"`
	Dimensions       int      `yaml:"dimensions"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IsKV reports whether the corpus lives in Valkey or Redis.
func (c CorpusConfig) IsKV() bool {
	return c.Driver == DriverValkey || c.Driver == DriverRedis
}

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// EmbeddingConfig holds query-embedding settings. An empty provider disables
// semantic ranking and every search runs lexically.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // openai, gemini, or empty
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	Retries          *int   `yaml:"retries"`
	BackoffMs        int    `yaml:"backoff_ms"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // 0 disables the cache
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	SemanticWeight float64 `yaml:"semantic_weight"`
	LexicalWeight  float64 `yaml:"lexical_weight"`
	Overfetch      int     `yaml:"overfetch"`
}

// EligibilityConfig holds batch eligibility settings.
type EligibilityConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = DriverValkey
	}
	if c.Corpus.Index == "" {
		c.Corpus.Index = "schemes:idx"
	}
	if c.Corpus.KeyPrefix == "" {
		c.Corpus.KeyPrefix = "scheme:"
	}
	if c.Corpus.Dimensions <= 0 {
		c.Corpus.Dimensions = 2000
	}
	if c.Corpus.HNSWM <= 0 {
		c.Corpus.HNSWM = 32
	}
	if c.Corpus.HNSWEFConstruct <= 0 {
		c.Corpus.HNSWEFConstruct = 400
	}
	if c.Corpus.ReadinessTimeout <= 0 {
		c.Corpus.ReadinessTimeout = 10
	}
	if c.Embedding.TimeoutMs <= 0 {
		c.Embedding.TimeoutMs = 2000
	}
	if c.Embedding.Retries == nil {
		one := 1
		c.Embedding.Retries = &one
	}
	if c.Embedding.BackoffMs <= 0 {
		c.Embedding.BackoffMs = 200
	}
	if c.Search.SemanticWeight == 0 && c.Search.LexicalWeight == 0 {
		c.Search.SemanticWeight = 0.65
		c.Search.LexicalWeight = 0.35
	}
	if c.Search.Overfetch <= 0 {
		c.Search.Overfetch = 3
	}
	if c.Eligibility.Workers <= 0 {
		c.Eligibility.Workers = 8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Corpus.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Corpus.Addrs) == 0 {
			return fmt.Errorf("corpus.addrs is required for driver %q", c.Corpus.Driver)
		}
	case DriverPostgres:
		if c.Corpus.DSN == "" {
			return fmt.Errorf("corpus.dsn is required for driver %q", c.Corpus.Driver)
		}
	default:
		return fmt.Errorf("corpus.driver must be valkey, redis or postgres, got %q", c.Corpus.Driver)
	}
	switch c.Embedding.Provider {
	case "":
	case ProviderOpenAI, ProviderGemini:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("embedding.provider must be openai or gemini, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Retries != nil && *c.Embedding.Retries < 0 {
		return fmt.Errorf("embedding.retries must not be negative")
	}
	s := c.Search
	if s.SemanticWeight < 0 || s.LexicalWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	if math.Abs(s.SemanticWeight+s.LexicalWeight-1) > 1e-9 {
		return fmt.Errorf("search.semantic_weight + search.lexical_weight must equal 1, got %g",
			s.SemanticWeight+s.LexicalWeight)
	}
	if s.SemanticWeight < s.LexicalWeight {
		return fmt.Errorf("search.semantic_weight must not be below search.lexical_weight")
	}
	return nil
}

// EmbeddingTimeout returns the per-attempt embedding timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutMs) * time.Millisecond
}

// EmbeddingBackoff returns the delay before the first embedding retry.
func (c *Config) EmbeddingBackoff() time.Duration {
	return time.Duration(c.Embedding.BackoffMs) * time.Millisecond
}

// EmbeddingCacheTTL returns the query-vector cache TTL, zero when disabled.
func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.Embedding.CacheTTLSec) * time.Second
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
