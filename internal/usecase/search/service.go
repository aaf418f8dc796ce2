package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/intent"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/logger"
	"github.com/kailas-cloud/schemematch/internal/metrics"
)

// Service ranks schemes for free-text queries across semantic, keyword and hybrid modes.
type Service struct {
	corpus  Corpus
	embed   Embedder
	weights Weights
}

// New creates a search service. Invalid weights fall back to DefaultWeights.
func New(corpus Corpus, embed Embedder, weights Weights) *Service {
	if weights.Validate() != nil {
		weights = DefaultWeights()
	}
	return &Service{corpus: corpus, embed: embed, weights: weights}
}

// Search dispatches on mode and records the search outcome metric.
// An embedding failure never fails the search: it is recorded on the request's
// domain.EmbeddingUsage and ranking falls back to lexical scores.
func (s *Service) Search(
	ctx context.Context, m mode.Mode, text string, f filter.Filter, limit int,
) ([]result.SchemeWithScore, error) {
	ctx, usage := ensureUsage(ctx)

	var (
		results []result.SchemeWithScore
		err     error
	)
	switch m {
	case mode.Semantic:
		results, err = s.Semantic(ctx, text, f, limit)
	case mode.Keyword:
		results, err = s.Keyword(ctx, text, f, limit)
	case mode.Hybrid, "":
		m = mode.Hybrid
		results, err = s.Hybrid(ctx, text, f, limit)
	default:
		return nil, fmt.Errorf("%w: unsupported search mode %q", domain.ErrInvalidRequest, m)
	}

	switch {
	case err != nil:
		metrics.ObserveSearch(string(m), metrics.SearchError)
	case usage.Degraded:
		metrics.ObserveSearch(string(m), metrics.SearchDegraded)
	default:
		metrics.ObserveSearch(string(m), metrics.SearchOK)
	}
	return results, err
}

// Semantic ranks schemes by embedding similarity alone.
// If the query cannot be embedded it falls back to lexical ranking.
func (s *Service) Semantic(
	ctx context.Context, text string, f filter.Filter, limit int,
) ([]result.SchemeWithScore, error) {
	vec, ok := s.queryVector(ctx, text)
	if !ok {
		return s.Keyword(ctx, text, f, limit)
	}
	hits, err := s.corpus.FindByVector(ctx, vec, f, limit)
	if err != nil {
		return nil, retrievalError("vector", err)
	}
	return finalize(single(hits), f, limit), nil
}

// Keyword ranks schemes by lexical relevance of the extracted query keywords.
func (s *Service) Keyword(
	ctx context.Context, text string, f filter.Filter, limit int,
) ([]result.SchemeWithScore, error) {
	keywords := intent.ExtractSearchKeywords(text)
	if len(keywords) == 0 {
		return []result.SchemeWithScore{}, nil
	}
	hits, err := s.corpus.FindByLexical(ctx, keywords, f, limit)
	if err != nil {
		return nil, retrievalError("lexical", err)
	}
	return finalize(single(hits), f, limit), nil
}

// Hybrid runs semantic and lexical retrieval in parallel and blends the
// min-max normalized scores with the configured weights.
func (s *Service) Hybrid(
	ctx context.Context, text string, f filter.Filter, limit int,
) ([]result.SchemeWithScore, error) {
	keywords := intent.ExtractSearchKeywords(text)

	var (
		semantic, lexical []result.Hit
		embedded          bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, ok := s.queryVector(gctx, text)
		if !ok {
			return nil
		}
		embedded = true
		hits, err := s.corpus.FindByVector(gctx, vec, f, limit)
		if err != nil {
			return retrievalError("vector", err)
		}
		semantic = hits
		return nil
	})
	g.Go(func() error {
		if len(keywords) == 0 {
			return nil
		}
		hits, err := s.corpus.FindByLexical(gctx, keywords, f, limit)
		if err != nil {
			return retrievalError("lexical", err)
		}
		lexical = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already classified
	}

	if !embedded {
		return finalize(single(lexical), f, limit), nil
	}
	return finalize(blend(semantic, lexical, s.weights), f, limit), nil
}

// queryVector embeds text fitted to the corpus dimension. A false return means
// the provider failed and the failure has been recorded as a degradation, or that
// no provider is configured.
func (s *Service) queryVector(ctx context.Context, text string) ([]float32, bool) {
	if s.embed == nil {
		return nil, false
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		logger.FromContext(ctx).Warn("Query embedding unavailable, ranking lexically", zap.Error(err))
		domain.UsageFromContext(ctx).MarkDegraded()
		return nil, false
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return domain.FitDimensions(res.Embedding, s.corpus.Dimensions()), true
}

// finalize re-checks the filter and truncates to limit.
func finalize(ranked []result.SchemeWithScore, f filter.Filter, limit int) []result.SchemeWithScore {
	out := ranked[:0]
	for i := range ranked {
		if f.Matches(&ranked[i].Scheme) {
			out = append(out, ranked[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func retrievalError(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return fmt.Errorf("%s search: %w", op, err)
	}
	return fmt.Errorf("%w: %s search: %w", domain.ErrRetrieval, op, err)
}

func ensureUsage(ctx context.Context) (context.Context, *domain.EmbeddingUsage) {
	if u := domain.UsageFromContext(ctx); u != nil {
		return ctx, u
	}
	return domain.NewContextWithUsage(ctx)
}
