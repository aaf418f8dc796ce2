// Package app assembles the scheme discovery services from configuration.
// It is the composition root shared by the API server and schemectl.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemematch/internal/config"
	dbRedis "github.com/kailas-cloud/schemematch/internal/db/redis"
	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	domprofile "github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/metrics"
	"github.com/kailas-cloud/schemematch/internal/repository/embcache"
	"github.com/kailas-cloud/schemematch/internal/repository/pgcorpus"
	profilerepo "github.com/kailas-cloud/schemematch/internal/repository/profile"
	schemerepo "github.com/kailas-cloud/schemematch/internal/repository/scheme"
	geminiEmb "github.com/kailas-cloud/schemematch/internal/transport/gemini"
	openaiEmb "github.com/kailas-cloud/schemematch/internal/transport/openai"
	eligibilityuc "github.com/kailas-cloud/schemematch/internal/usecase/eligibility"
	embeddinguc "github.com/kailas-cloud/schemematch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/schemematch/internal/usecase/health"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
	searchuc "github.com/kailas-cloud/schemematch/internal/usecase/search"
)

// Corpus is the full scheme corpus contract: retrieval plus seeding.
type Corpus interface {
	searchuc.Corpus
	Get(ctx context.Context, id string) (scheme.Scheme, error)
	Upsert(ctx context.Context, s *scheme.Scheme) error
	Delete(ctx context.Context, id string) error
	EnsureIndex(ctx context.Context) error
	Ping(ctx context.Context) error
}

// ProfileStore reads and writes user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (domprofile.UserProfile, error)
	Put(ctx context.Context, userID string, p *domprofile.UserProfile) error
	Ping(ctx context.Context) error
}

// App holds the assembled services.
type App struct {
	Corpus       Corpus
	Profiles     ProfileStore
	Embedder     domain.Embedder // nil when semantic ranking is disabled
	Search       *searchuc.Service
	Eligibility  *eligibilityuc.Service
	Orchestrator *orchestrator.Service
	Health       *healthuc.Service

	closers []func()
}

// Build connects the backends and wires every service.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	var kv *dbRedis.Store
	switch cfg.Corpus.Driver {
	case config.DriverValkey, config.DriverRedis:
		// Valkey speaks the same protocol; both go through the rueidis store.
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Corpus.Addrs,
			Password: cfg.Corpus.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Corpus.Driver, err)
		}
		a.closers = append(a.closers, store.Close)
		readiness := time.Duration(cfg.Corpus.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			a.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Corpus.Driver, err)
		}
		kv = store
		a.Corpus = schemerepo.New(store, schemerepo.Config{
			IndexName:  cfg.Corpus.Index,
			KeyPrefix:  cfg.Corpus.KeyPrefix,
			Dimensions: cfg.Corpus.Dimensions,
			HNSW: schemerepo.HNSWConfig{
				M:           cfg.Corpus.HNSWM,
				EFConstruct: cfg.Corpus.HNSWEFConstruct,
			},
		})
		a.Profiles = profilerepo.New(store)
	case config.DriverPostgres:
		gdb, err := pgcorpus.Open(cfg.Corpus.DSN, nil)
		if err != nil {
			return nil, err //nolint:wrapcheck // already wrapped
		}
		repo := pgcorpus.New(gdb, cfg.Corpus.Dimensions)
		a.closers = append(a.closers, func() { _ = repo.Close() })
		a.Corpus = repo
		a.Profiles = repo.ProfileStore()
	default:
		return nil, fmt.Errorf("unknown corpus driver %q", cfg.Corpus.Driver)
	}
	logger.Info("Corpus connected", zap.String("driver", cfg.Corpus.Driver))

	metrics.RegisterEmbeddingMetrics()
	embedder, err := buildEmbedder(ctx, cfg, kv, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Embedder = embedder

	weights := searchuc.Weights{Semantic: cfg.Search.SemanticWeight, Lexical: cfg.Search.LexicalWeight}
	a.Search = searchuc.New(a.Corpus, embedder, weights)

	elig, err := eligibilityuc.New(eligibility.NewEngine(), a.Corpus, cfg.Eligibility.Workers)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create eligibility service: %w", err)
	}
	a.Eligibility = elig
	a.closers = append(a.closers, elig.Release)

	a.Orchestrator = orchestrator.New(a.Search, elig, a.Profiles, cfg.Search.Overfetch)

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embCheck = hc
	}
	a.Health = healthuc.New(a.Corpus, embCheck, a.Profiles)

	return a, nil
}

// Close releases backends in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// buildEmbedder assembles the decorator chain:
// provider -> cache -> instrumented (timeout, retry) -> dimension fit -> instruction.
// Returns nil when no provider is configured.
func buildEmbedder(
	ctx context.Context, cfg *config.Config, kv *dbRedis.Store, logger *zap.Logger,
) (domain.Embedder, error) {
	ec := cfg.Embedding

	var base domain.Embedder
	switch ec.Provider {
	case "":
		logger.Warn("No embedding provider configured, semantic ranking disabled")
		return nil, nil
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Logger:     logger,
		})
	case config.ProviderGemini:
		g, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     ec.APIKey,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		base = g
	default:
		return nil, errors.New("unknown embedding provider " + ec.Provider)
	}

	embedder := base
	if kv != nil && cfg.EmbeddingCacheTTL() > 0 {
		embedder = embcache.New(base, kv, cfg.EmbeddingCacheTTL(), metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, embeddinguc.Options{
		Timeout: cfg.EmbeddingTimeout(),
		Retries: *ec.Retries,
		Backoff: cfg.EmbeddingBackoff(),
	}, logger)

	embedder = domain.NewDimensionEmbedder(embedder, cfg.Corpus.Dimensions)

	// Instruction prefix is outermost so the cache key includes it.
	if ec.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, ec.QueryInstruction)
	}

	logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
	)
	return embedder, nil
}
