package scheme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/db"
	"github.com/kailas-cloud/schemematch/internal/domain"
	domscheme "github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
)

// Defaults for the corpus index layout.
const (
	DefaultIndexName = "schemes:idx"
	DefaultKeyPrefix = "scheme:"
)

// store is the consumer interface for the scheme corpus (ISP).
//
//nolint:interfacebloat // corpus repo needs hash, index and search operations
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Config describes the index layout.
type Config struct {
	IndexName  string
	KeyPrefix  string
	Dimensions int
	HNSW       HNSWConfig
}

// Repo is the Redis-backed scheme corpus.
type Repo struct {
	store store
	cfg   Config
}

// New creates a scheme corpus repository.
func New(s store, cfg Config) *Repo {
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.HNSW.M <= 0 {
		cfg.HNSW.M = 32
	}
	if cfg.HNSW.EFConstruct <= 0 {
		cfg.HNSW.EFConstruct = 400
	}
	return &Repo{store: s, cfg: cfg}
}

// Dimensions returns the vector dimension the index was built for.
func (r *Repo) Dimensions() int {
	return r.cfg.Dimensions
}

// Ping checks store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// EnsureIndex creates the FT index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.cfg.IndexName, r.cfg.KeyPrefix, r.cfg.Dimensions, r.cfg.HNSW)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return nil
}

// Upsert stores a scheme hash. Used by seeding and tests.
func (r *Repo) Upsert(ctx context.Context, s *domscheme.Scheme) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if s.HasEmbedding() && len(s.Embedding) != r.cfg.Dimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, index expects %d",
			domain.ErrInvalidRequest, len(s.Embedding), r.cfg.Dimensions)
	}

	key := r.key(s.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(s)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a scheme by ID.
func (r *Repo) Get(ctx context.Context, id string) (domscheme.Scheme, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domscheme.Scheme{}, domain.ErrSchemeNotFound
		}
		return domscheme.Scheme{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a scheme hash, which also drops it from the index.
// Deleting a missing scheme is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// FindByVector runs KNN over scheme embeddings with the filter as pre-filter.
func (r *Repo) FindByVector(
	ctx context.Context, vector []float32, f filter.Filter, limit int,
) ([]result.Hit, error) {
	expr, err := f.Expression()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  fieldEmbedding,
		Filters:      expr,
		Vector:       vector,
		K:            limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return r.toHits(sr), nil
}

// FindByLexical runs BM25 over the scheme text fields. Keywords are OR-ed.
func (r *Repo) FindByLexical(
	ctx context.Context, keywords []string, f filter.Filter, limit int,
) ([]result.Hit, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	expr, err := f.Expression()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.cfg.IndexName,
		Terms:        keywords,
		Filters:      expr,
		TopK:         limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return r.toHits(sr), nil
}

func (r *Repo) toHits(sr *db.SearchResult) []result.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := strings.TrimPrefix(e.Key, r.cfg.KeyPrefix)
		hits = append(hits, result.Hit{Scheme: parseHashFields(id, e.Fields), Score: e.Score})
	}
	return hits
}

func (r *Repo) key(id string) string {
	return r.cfg.KeyPrefix + id
}
