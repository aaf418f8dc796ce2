package schemematch

import (
	"context"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	smartFn     func(ctx context.Context, q request.SmartSearchQuery) (orchestrator.SearchResult, error)
	categoryFn  func(ctx context.Context, category, userID string, limit int) (orchestrator.SearchResult, error)
	lifeEventFn func(ctx context.Context, event, userID string, limit int) (orchestrator.SearchResult, error)
	recommendFn func(ctx context.Context, userID string, limit int) (orchestrator.SearchResult, error)
}

func (m *mockSearchUC) SmartSearch(ctx context.Context, q request.SmartSearchQuery) (orchestrator.SearchResult, error) {
	return m.smartFn(ctx, q)
}

func (m *mockSearchUC) SearchByCategory(
	ctx context.Context, category, userID string, limit int,
) (orchestrator.SearchResult, error) {
	return m.categoryFn(ctx, category, userID, limit)
}

func (m *mockSearchUC) SearchByLifeEvent(
	ctx context.Context, event, userID string, limit int,
) (orchestrator.SearchResult, error) {
	return m.lifeEventFn(ctx, event, userID, limit)
}

func (m *mockSearchUC) PersonalizedRecommendations(
	ctx context.Context, userID string, limit int,
) (orchestrator.SearchResult, error) {
	return m.recommendFn(ctx, userID, limit)
}

// --- eligibilityUseCase mock ---

type mockEligibilityUC struct {
	checkFn func(ctx context.Context, schemeID string, p *profile.UserProfile) (eligibility.Result, error)
}

func (m *mockEligibilityUC) CheckScheme(
	ctx context.Context, schemeID string, p *profile.UserProfile,
) (eligibility.Result, error) {
	return m.checkFn(ctx, schemeID, p)
}

// --- in-memory corpus and profile store ---

type memCorpus struct {
	schemes  map[string]scheme.Scheme
	lexical  []result.Hit
	ensured  int
	pingErr  error
	ensureFn func() error
}

func newMemCorpus() *memCorpus {
	return &memCorpus{schemes: map[string]scheme.Scheme{}}
}

func (m *memCorpus) FindByVector(context.Context, []float32, filter.Filter, int) ([]result.Hit, error) {
	return nil, nil
}

func (m *memCorpus) FindByLexical(context.Context, []string, filter.Filter, int) ([]result.Hit, error) {
	return m.lexical, nil
}

func (m *memCorpus) Dimensions() int { return 4 }

func (m *memCorpus) Get(_ context.Context, id string) (scheme.Scheme, error) {
	s, ok := m.schemes[id]
	if !ok {
		return scheme.Scheme{}, domain.ErrSchemeNotFound
	}
	return s, nil
}

func (m *memCorpus) Upsert(_ context.Context, s *scheme.Scheme) error {
	m.schemes[s.ID] = *s
	return nil
}

func (m *memCorpus) EnsureIndex(context.Context) error {
	m.ensured++
	if m.ensureFn != nil {
		return m.ensureFn()
	}
	return nil
}

func (m *memCorpus) Ping(context.Context) error { return m.pingErr }

type memProfiles struct {
	profiles map[string]profile.UserProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]profile.UserProfile{}}
}

func (m *memProfiles) Get(_ context.Context, userID string) (profile.UserProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return profile.UserProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *memProfiles) Put(_ context.Context, userID string, p *profile.UserProfile) error {
	m.profiles[userID] = *p
	return nil
}

func (m *memProfiles) Ping(context.Context) error { return nil }

// --- helpers ---

func testClient(searchSvc searchUseCase, eligSvc eligibilityUseCase) *Client {
	return &Client{
		corpus:    newMemCorpus(),
		profiles:  newMemProfiles(),
		searchSvc: searchSvc,
		eligSvc:   eligSvc,
	}
}
