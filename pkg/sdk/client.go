package schemematch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/schemematch/internal/db/redis"
	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	"github.com/kailas-cloud/schemematch/internal/repository/pgcorpus"
	profilerepo "github.com/kailas-cloud/schemematch/internal/repository/profile"
	schemerepo "github.com/kailas-cloud/schemematch/internal/repository/scheme"
	eligibilityuc "github.com/kailas-cloud/schemematch/internal/usecase/eligibility"
	healthuc "github.com/kailas-cloud/schemematch/internal/usecase/health"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
	searchuc "github.com/kailas-cloud/schemematch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	SmartSearch(ctx context.Context, q request.SmartSearchQuery) (orchestrator.SearchResult, error)
	SearchByCategory(ctx context.Context, category, userID string, limit int) (orchestrator.SearchResult, error)
	SearchByLifeEvent(ctx context.Context, event, userID string, limit int) (orchestrator.SearchResult, error)
	PersonalizedRecommendations(ctx context.Context, userID string, limit int) (orchestrator.SearchResult, error)
}

type eligibilityUseCase interface {
	CheckScheme(ctx context.Context, schemeID string, p *profile.UserProfile) (eligibility.Result, error)
}

type corpusStore interface {
	searchuc.Corpus
	Get(ctx context.Context, id string) (scheme.Scheme, error)
	Upsert(ctx context.Context, s *scheme.Scheme) error
	EnsureIndex(ctx context.Context) error
	Ping(ctx context.Context) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (profile.UserProfile, error)
	Put(ctx context.Context, userID string, p *profile.UserProfile) error
	Ping(ctx context.Context) error
}

// Client is the schemematch SDK entry point.
type Client struct {
	corpus    corpusStore
	profiles  profileStore
	searchSvc searchUseCase
	eligSvc   eligibilityUseCase
	healthSvc healthUseCase
	engine    *eligibility.Engine
	obs       *observer
	closers   []func()
}

// New creates a Client and connects to the corpus.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var (
		corpus   corpusStore
		profiles profileStore
		closers  []func()
	)
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("schemematch: database address required")
		}
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("schemematch: create %s store: %w", cfg.driver, err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("schemematch: database not ready: %w", err)
		}
		closers = append(closers, store.Close)
		corpus = schemerepo.New(store, schemerepo.Config{
			Dimensions: cfg.vectorDimensions,
			HNSW:       schemerepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct},
		})
		profiles = profilerepo.New(store)
	case "postgres":
		gdb, err := pgcorpus.Open(cfg.dsn, nil)
		if err != nil {
			return nil, fmt.Errorf("schemematch: %w", err)
		}
		repo := pgcorpus.New(gdb, cfg.vectorDimensions)
		closers = append(closers, func() { _ = repo.Close() })
		corpus = repo
		profiles = repo.ProfileStore()
	case "":
		return nil, errors.New("schemematch: corpus required (use WithValkey, WithRedis or WithPostgres)")
	default:
		return nil, fmt.Errorf("schemematch: unknown driver %q", cfg.driver)
	}

	c, err := wireClient(corpus, profiles, cfg, obs)
	if err != nil {
		for _, fn := range closers {
			fn()
		}
		return nil, err
	}
	c.closers = append(closers, c.closers...)
	return c, nil
}

func wireClient(corpus corpusStore, profiles profileStore, cfg *clientConfig, obs *observer) (*Client, error) {
	var emb searchuc.Embedder
	var embCheck healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		d := domain.NewDimensionEmbedder(&embedderAdapter{inner: cfg.embedder}, cfg.vectorDimensions)
		emb, embCheck = d, d
	}

	searchSvc := searchuc.New(corpus, emb, searchuc.Weights{
		Semantic: cfg.semanticWeight,
		Lexical:  cfg.lexicalWeight,
	})

	engine := eligibility.NewEngine()
	workers := cfg.workers
	if workers <= 0 {
		workers = eligibilityuc.DefaultWorkers
	}
	eligSvc, err := eligibilityuc.New(engine, corpus, workers)
	if err != nil {
		return nil, fmt.Errorf("schemematch: create eligibility pool: %w", err)
	}

	return &Client{
		corpus:    corpus,
		profiles:  profiles,
		searchSvc: orchestrator.New(searchSvc, eligSvc, profiles, cfg.overfetch),
		eligSvc:   eligSvc,
		healthSvc: healthuc.New(corpus, embCheck, profiles),
		engine:    engine,
		obs:       obs,
		closers:   []func(){eligSvc.Release},
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Ping checks corpus connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.corpus.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a smart search: intent parsing, hybrid retrieval and, when a
// profile is given or stored for UserID, eligibility-aware ordering.
func (c *Client) Search(ctx context.Context, req SearchRequest) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	q, err := request.New(req.Query, req.Mode, req.Filter, req.Limit, req.Offset)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Profile != nil {
		if err := req.Profile.Validate(); err != nil {
			return SearchResult{}, fmt.Errorf("%w: profile: %w", ErrInvalidRequest, err)
		}
		q = q.WithProfile(req.Profile)
	}
	res, err = c.searchSvc.SmartSearch(ctx, q.WithUserID(req.UserID))
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// ByCategory lists schemes of one category, eligibility-ranked for userID when set.
func (c *Client) ByCategory(ctx context.Context, category, userID string, limit int) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search.category", start, err) }()

	res, err = c.searchSvc.SearchByCategory(ctx, category, userID, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search by category: %w", err)
	}
	return res, nil
}

// ByLifeEvent lists schemes relevant to a life event such as "marriage" or "childbirth".
func (c *Client) ByLifeEvent(ctx context.Context, event, userID string, limit int) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search.life_event", start, err) }()

	res, err = c.searchSvc.SearchByLifeEvent(ctx, event, userID, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search by life event: %w", err)
	}
	return res, nil
}

// Recommendations returns schemes for a user's stored profile. Users without
// a readable profile get generic results with unknown eligibility.
func (c *Client) Recommendations(ctx context.Context, userID string, limit int) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommendations", start, err) }()

	res, err = c.searchSvc.PersonalizedRecommendations(ctx, userID, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("recommendations: %w", err)
	}
	return res, nil
}

// CheckEligibility evaluates p against a stored scheme.
func (c *Client) CheckEligibility(ctx context.Context, schemeID string, p *Profile) (res EligibilityResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("eligibility.check", start, err) }()

	res, err = c.eligSvc.CheckScheme(ctx, schemeID, p)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("check eligibility: %w", err)
	}
	return res, nil
}

// CheckText evaluates p against raw eligibility prose without touching the corpus.
func (c *Client) CheckText(p *Profile, text string) EligibilityResult {
	if c.engine == nil {
		return eligibility.NewEngine().CheckText(p, text)
	}
	return c.engine.CheckText(p, text)
}

// UpsertScheme stores a scheme, creating the corpus index on first use.
func (c *Client) UpsertScheme(ctx context.Context, s *Scheme) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("scheme.upsert", start, err) }()

	if err = c.corpus.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	if err = c.corpus.Upsert(ctx, s); err != nil {
		return fmt.Errorf("upsert scheme: %w", err)
	}
	return nil
}

// GetScheme returns a stored scheme.
func (c *Client) GetScheme(ctx context.Context, id string) (s Scheme, err error) {
	start := time.Now()
	defer func() { c.obs.observe("scheme.get", start, err) }()

	s, err = c.corpus.Get(ctx, id)
	if err != nil {
		return Scheme{}, fmt.Errorf("get scheme: %w", err)
	}
	return s, nil
}

// PutProfile stores a user's profile.
func (c *Client) PutProfile(ctx context.Context, userID string, p *Profile) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile.put", start, err) }()

	if err = c.profiles.Put(ctx, userID, p); err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
