package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Corpus: CorpusConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Corpus(t *testing.T) {
	tests := []struct {
		name    string
		corpus  CorpusConfig
		wantErr bool
	}{
		{"valkey with addrs", CorpusConfig{Driver: DriverValkey, Addrs: []string{"v:6379"}}, false},
		{"redis without addrs", CorpusConfig{Driver: DriverRedis}, true},
		{"postgres with dsn", CorpusConfig{Driver: DriverPostgres, DSN: "postgres://localhost/schemes"}, false},
		{"postgres without dsn", CorpusConfig{Driver: DriverPostgres, Addrs: []string{"v:6379"}}, true},
		{"unknown driver", CorpusConfig{Driver: "mongo", Addrs: []string{"m:27017"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Corpus = tt.corpus
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Embedding(t *testing.T) {
	tests := []struct {
		name      string
		embedding EmbeddingConfig
		wantErr   bool
	}{
		{"disabled", EmbeddingConfig{}, false},
		{"openai", EmbeddingConfig{Provider: ProviderOpenAI, APIKey: "k"}, false},
		{"gemini", EmbeddingConfig{Provider: ProviderGemini, APIKey: "k"}, false},
		{"missing key", EmbeddingConfig{Provider: ProviderGemini}, true},
		{"unknown provider", EmbeddingConfig{Provider: "cohere", APIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{HTTP: HTTPConfig{Port: 8080}, Corpus: CorpusConfig{Addrs: []string{"v:6379"}}}
			cfg.Embedding = tt.embedding
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_SearchWeights(t *testing.T) {
	tests := []struct {
		name     string
		semantic float64
		lexical  float64
		wantErr  bool
	}{
		{"default split", 0.65, 0.35, false},
		{"even", 0.5, 0.5, false},
		{"lexical heavier", 0.4, 0.6, true},
		{"sum not one", 0.7, 0.4, true},
		{"negative", 1.1, -0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Search.SemanticWeight = tt.semantic
			cfg.Search.LexicalWeight = tt.lexical
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Corpus.Driver != DriverValkey {
		t.Errorf("expected driver valkey, got %q", cfg.Corpus.Driver)
	}
	if cfg.Corpus.Index != "schemes:idx" || cfg.Corpus.KeyPrefix != "scheme:" {
		t.Errorf("unexpected index/prefix: %q %q", cfg.Corpus.Index, cfg.Corpus.KeyPrefix)
	}
	if cfg.Corpus.Dimensions != 2000 {
		t.Errorf("expected Dimensions=2000, got %d", cfg.Corpus.Dimensions)
	}
	if cfg.Corpus.HNSWM != 32 || cfg.Corpus.HNSWEFConstruct != 400 {
		t.Errorf("unexpected HNSW defaults: %d %d", cfg.Corpus.HNSWM, cfg.Corpus.HNSWEFConstruct)
	}
	if cfg.Search.SemanticWeight != 0.65 || cfg.Search.LexicalWeight != 0.35 {
		t.Errorf("unexpected weights: %v %v", cfg.Search.SemanticWeight, cfg.Search.LexicalWeight)
	}
	if cfg.Search.Overfetch != 3 {
		t.Errorf("expected Overfetch=3, got %d", cfg.Search.Overfetch)
	}
	if cfg.Eligibility.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Eligibility.Workers)
	}
	if cfg.Embedding.Retries == nil || *cfg.Embedding.Retries != 1 {
		t.Errorf("expected Retries=1, got %v", cfg.Embedding.Retries)
	}
	if cfg.EmbeddingTimeout() != 2*time.Second || cfg.EmbeddingBackoff() != 200*time.Millisecond {
		t.Errorf("unexpected embedding timings: %v %v", cfg.EmbeddingTimeout(), cfg.EmbeddingBackoff())
	}
	if cfg.EmbeddingCacheTTL() != 0 {
		t.Errorf("expected cache disabled by default, got %v", cfg.EmbeddingCacheTTL())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Corpus:    CorpusConfig{Driver: DriverPostgres, Dimensions: 768, HNSWM: 16},
		Embedding: EmbeddingConfig{Retries: &zero, TimeoutMs: 500},
		Search:    SearchConfig{SemanticWeight: 0.5, LexicalWeight: 0.5, Overfetch: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Corpus.Driver != DriverPostgres || cfg.Corpus.Dimensions != 768 || cfg.Corpus.HNSWM != 16 {
		t.Errorf("corpus overridden: %+v", cfg.Corpus)
	}
	if *cfg.Embedding.Retries != 0 {
		t.Errorf("explicit zero retries overridden: %d", *cfg.Embedding.Retries)
	}
	if cfg.Search.SemanticWeight != 0.5 || cfg.Search.Overfetch != 5 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
}

func TestCorpusConfig_IsKV(t *testing.T) {
	if !(CorpusConfig{Driver: DriverRedis}).IsKV() {
		t.Error("redis should be KV")
	}
	if (CorpusConfig{Driver: DriverPostgres}).IsKV() {
		t.Error("postgres should not be KV")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SCHEMEMATCH_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${SCHEMEMATCH_TEST_PORT}\nkey: ${SCHEMEMATCH_UNSET_VAR:-fallback}")))
	want := "port: 9090\nkey: fallback"
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := []byte(`http:
  port: ${SCHEMEMATCH_TEST_HTTP_PORT:-8181}
corpus:
  driver: postgres
  dsn: postgres://localhost/schemes
embedding:
  provider: ""
`)
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Port != 8181 {
		t.Errorf("expected port 8181, got %d", cfg.HTTP.Port)
	}
	if cfg.Corpus.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %q", cfg.Corpus.Driver)
	}
}
