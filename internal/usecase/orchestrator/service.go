// Package orchestrator runs the end-to-end scheme discovery pipeline:
// query parsing, retrieval, eligibility scoring and status-aware paging.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/intent"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/logger"
)

// DefaultOverfetch multiplies the requested page end to size the candidate pool.
const DefaultOverfetch = 3

// SearchResult is one page of ranked, eligibility-annotated schemes.
type SearchResult struct {
	Results      []result.SchemeWithScore `json:"results"`
	Total        int                      `json:"total"`
	ParsedIntent intent.ParsedIntent      `json:"parsed_intent"`
	Degraded     bool                     `json:"degraded"`
}

// Service orchestrates search, profile lookup and eligibility.
type Service struct {
	search    Searcher
	scorer    Scorer
	profiles  ProfileReader
	overfetch int
}

// New creates an orchestrator. profiles may be nil when no profile store is configured.
func New(search Searcher, scorer Scorer, profiles ProfileReader, overfetch int) *Service {
	if overfetch < 1 {
		overfetch = DefaultOverfetch
	}
	return &Service{search: search, scorer: scorer, profiles: profiles, overfetch: overfetch}
}

// SmartSearch parses the query, retrieves candidates, scores eligibility and
// returns the requested page. Eligible schemes come first; within a status the
// retrieval order is kept.
func (s *Service) SmartSearch(ctx context.Context, q request.SmartSearchQuery) (SearchResult, error) {
	ctx, usage := domain.NewContextWithUsage(ctx)
	parsed := intent.Parse(q.RawText())
	f := mergeFilter(q.Filter(), parsed)

	var (
		ranked []result.SchemeWithScore
		stored *profile.UserProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.search.Search(gctx, q.Mode(), q.RawText(), f, q.CandidateLimit(s.overfetch))
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		ranked = res
		return nil
	})
	if q.Profile() == nil && q.UserID() != "" && s.profiles != nil {
		g.Go(func() error {
			stored = s.fetchProfile(gctx, q.UserID())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, err //nolint:wrapcheck // wrapped in the goroutine
	}

	p := q.Profile()
	if p == nil {
		p = stored
	}
	if !p.IsEmpty() {
		scored, err := s.scorer.ScoreSchemes(ctx, p, ranked)
		if err != nil {
			return SearchResult{}, fmt.Errorf("score eligibility: %w", err)
		}
		ranked = scored
	}

	partitionByStatus(ranked)

	return SearchResult{
		Results:      page(ranked, q.Offset(), q.Limit()),
		Total:        len(ranked),
		ParsedIntent: parsed,
		Degraded:     usage.Degraded,
	}, nil
}

// SearchByCategory lists schemes in one category, ranked against the category name.
func (s *Service) SearchByCategory(
	ctx context.Context, category, userID string, limit int,
) (SearchResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return SearchResult{}, fmt.Errorf("%w: category is required", domain.ErrInvalidRequest)
	}
	q, err := request.New(category, mode.Hybrid, filter.Filter{Categories: []string{category}}, limit, 0)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return s.SmartSearch(ctx, q.WithUserID(userID))
}

// SearchByLifeEvent widens a life-event tag into its categories and a synthesized query.
func (s *Service) SearchByLifeEvent(
	ctx context.Context, event, userID string, limit int,
) (SearchResult, error) {
	event = strings.ToLower(strings.TrimSpace(event))
	categories, ok := intent.LifeEventCategories(event)
	if !ok {
		return SearchResult{}, fmt.Errorf("%w: unknown life event %q", domain.ErrInvalidRequest, event)
	}
	text, _ := intent.LifeEventQuery(event)
	q, err := request.New(text, mode.Hybrid, filter.Filter{Categories: categories}, limit, 0)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return s.SmartSearch(ctx, q.WithUserID(userID))
}

// PersonalizedRecommendations searches with a query synthesized from the
// user's stored profile. When the profile cannot be loaded the user is treated
// as profile-less: generic welfare results, no eligibility.
func (s *Service) PersonalizedRecommendations(
	ctx context.Context, userID string, limit int,
) (SearchResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SearchResult{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}

	var p *profile.UserProfile
	if s.profiles != nil {
		p = s.fetchProfile(ctx, userID)
	}
	if p == nil {
		q, err := request.New(profileQuery(&profile.UserProfile{}), mode.Hybrid, filter.Filter{}, limit, 0)
		if err != nil {
			return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		return s.SmartSearch(ctx, q)
	}

	q, err := request.New(profileQuery(p), mode.Hybrid, filter.Filter{State: p.State}, limit, 0)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return s.SmartSearch(ctx, q.WithProfile(p).WithUserID(userID))
}

// fetchProfile returns the stored profile, or nil when it cannot be loaded.
// Search proceeds without eligibility in that case.
func (s *Service) fetchProfile(ctx context.Context, userID string) *profile.UserProfile {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		log := logger.FromContext(ctx)
		if errors.Is(err, domain.ErrProfileNotFound) {
			log.Debug("No stored profile, skipping eligibility", zap.String("user_id", userID))
		} else {
			log.Warn("Profile fetch failed, skipping eligibility", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return &p
}

// mergeFilter fills an empty category filter with the parser's categories.
// Explicit categories always win.
func mergeFilter(f filter.Filter, parsed intent.ParsedIntent) filter.Filter {
	if len(f.Categories) > 0 || len(parsed.SuggestedCategories) == 0 {
		return f
	}
	return f.WithCategories(parsed.SuggestedCategories)
}

// partitionByStatus orders eligible, possibly eligible, unknown, then not eligible,
// keeping the incoming order inside each group.
func partitionByStatus(r []result.SchemeWithScore) {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].Status().Rank() < r[j].Status().Rank()
	})
}

func page(r []result.SchemeWithScore, offset, limit int) []result.SchemeWithScore {
	if offset >= len(r) {
		return []result.SchemeWithScore{}
	}
	end := offset + limit
	if end > len(r) {
		end = len(r)
	}
	return r[offset:end]
}

// profileQuery turns profile attributes into search text.
func profileQuery(p *profile.UserProfile) string {
	var terms []string
	add := func(flag *bool, words string) {
		if flag != nil && *flag {
			terms = append(terms, words)
		}
	}
	add(p.IsFarmer, "farmer agriculture")
	add(p.IsStudent, "student scholarship")
	add(p.IsBusinessOwner, "business loan")
	add(p.IsWorker, "worker welfare")
	add(p.IsWidow, "widow pension")
	add(p.EffectiveSeniorCitizen(), "senior citizen pension")
	add(p.IsDisabled, "disability assistance")
	add(p.IsMinority, "minority")
	add(p.IsBPL, "bpl poverty")

	if prof := strings.TrimSpace(p.Profession); prof != "" {
		terms = append(terms, prof)
	}
	switch p.NormalizedCategory() {
	case profile.CategorySC, profile.CategoryST:
		terms = append(terms, "scheduled caste tribe")
	case profile.CategoryOBC:
		terms = append(terms, "backward class")
	case profile.CategoryEWS:
		terms = append(terms, "economically weaker section")
	}
	if strings.EqualFold(p.Gender, "female") {
		terms = append(terms, "women")
	}
	if len(terms) == 0 {
		return "welfare support"
	}
	return strings.Join(terms, " ")
}
