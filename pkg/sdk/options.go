package schemematch

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis" or "postgres"
	addrs    []string
	password string
	dsn      string

	embedder Embedder

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	semanticWeight float64
	lexicalWeight  float64
	overfetch      int
	workers        int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to use a Valkey corpus.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to use a Redis corpus.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPostgres configures the client to use a Postgres corpus with pgvector.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.dsn = dsn
	})
}

// WithEmbedder sets the query embedding provider.
// Without it searches rank lexically.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the stored scheme vector dimension.
// Defaults to 2000.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=32, EFConstruct=400. Ignored for Postgres.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithWeights sets the hybrid blend weights. They must sum to 1 with
// semantic >= lexical; invalid weights fall back to 0.65/0.35.
func WithWeights(semantic, lexical float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.semanticWeight = semantic
		c.lexicalWeight = lexical
	})
}

// WithOverfetch sets the candidate multiplier applied before eligibility ranking.
// Default: 3.
func WithOverfetch(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.overfetch = n
	})
}

// WithEligibilityWorkers sets the batch eligibility pool size.
// Default: 8.
func WithEligibilityWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
