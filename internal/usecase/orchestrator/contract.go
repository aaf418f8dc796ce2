package orchestrator

import (
	"context"

	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
)

// Searcher ranks schemes for query text.
type Searcher interface {
	Search(ctx context.Context, m mode.Mode, text string, f filter.Filter, limit int) ([]result.SchemeWithScore, error)
}

// Scorer attaches eligibility verdicts to ranked schemes, keeping order.
type Scorer interface {
	ScoreSchemes(
		ctx context.Context, p *profile.UserProfile, ranked []result.SchemeWithScore,
	) ([]result.SchemeWithScore, error)
}

// ProfileReader loads stored user profiles.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profile.UserProfile, error)
}
