package search

import (
	"context"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
)

// Corpus defines the retrieval contract of a scheme store.
// Filters are applied by the store before ranking.
type Corpus interface {
	FindByVector(ctx context.Context, vector []float32, f filter.Filter, limit int) ([]result.Hit, error)
	FindByLexical(ctx context.Context, keywords []string, f filter.Filter, limit int) ([]result.Hit, error)
	Dimensions() int
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
