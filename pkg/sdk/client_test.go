package schemematch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
)

func TestNew_NoCorpus(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no corpus configured")
	}
}

func TestNew_EmptyAddress(t *testing.T) {
	_, err := New(context.Background(), WithValkey("", ""))
	if err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestNew_PostgresWithoutDSN(t *testing.T) {
	_, err := New(context.Background(), WithPostgres(""))
	if err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	mock := &mockEmbedder{
		fn: func(_ context.Context, text string) (EmbeddingResult, error) {
			called = true
			return EmbeddingResult{
				Embedding:    []float32{1, 2, 3},
				PromptTokens: 5,
				TotalTokens:  10,
			}, nil
		},
	}

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("inner embedder was not called")
	}
	if len(result.Embedding) != 3 {
		t.Errorf("embedding len = %d, want 3", len(result.Embedding))
	}
	if result.TotalTokens != 10 {
		t.Errorf("total tokens = %d, want 10", result.TotalTokens)
	}
}

func TestEmbedderAdapter_ErrorIsUnavailable(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	_, err := adapter.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey option not applied: %+v", cfg)
	}

	cfg2 := &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg2)
	if cfg2.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg2.driver)
	}

	cfg3 := &clientConfig{}
	WithPostgres("postgres://localhost/schemes").apply(cfg3)
	if cfg3.driver != "postgres" || cfg3.dsn != "postgres://localhost/schemes" {
		t.Errorf("postgres option not applied: %+v", cfg3)
	}

	WithVectorDimensions(768).apply(cfg3)
	WithHNSW(16, 200).apply(cfg3)
	WithWeights(0.7, 0.3).apply(cfg3)
	WithOverfetch(5).apply(cfg3)
	WithEligibilityWorkers(2).apply(cfg3)
	if cfg3.vectorDimensions != 768 || cfg3.hnswM != 16 || cfg3.hnswEFConstruct != 200 {
		t.Errorf("index options not applied: %+v", cfg3)
	}
	if cfg3.semanticWeight != 0.7 || cfg3.lexicalWeight != 0.3 || cfg3.overfetch != 5 || cfg3.workers != 2 {
		t.Errorf("ranking options not applied: %+v", cfg3)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	if cfg4.logger != logger {
		t.Error("expected logger to be set")
	}

	cfg5 := &clientConfig{}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg5)
	if cfg5.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_Empty(t *testing.T) {
	c := &Client{}
	c.Close()
	c.Close()
}

func TestSearch_MapsRequest(t *testing.T) {
	var got request.SmartSearchQuery
	svc := &mockSearchUC{
		smartFn: func(_ context.Context, q request.SmartSearchQuery) (orchestrator.SearchResult, error) {
			got = q
			return orchestrator.SearchResult{Total: 1}, nil
		},
	}
	c := testClient(svc, nil)

	p := &Profile{State: "Kerala"}
	res, err := c.Search(context.Background(), SearchRequest{
		Query:   "scholarship",
		Mode:    ModeKeyword,
		Filter:  Filter{State: "Kerala"},
		UserID:  "u-1",
		Profile: p,
		Limit:   5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("total = %d", res.Total)
	}
	if got.RawText() != "scholarship" || got.Mode() != ModeKeyword || got.Limit() != 5 {
		t.Errorf("query not mapped: %+v", got)
	}
	if got.Profile() != p || got.UserID() != "u-1" || got.Filter().State != "Kerala" {
		t.Errorf("profile/user/filter not mapped: %+v", got)
	}
}

func TestSearch_InvalidRequest(t *testing.T) {
	svc := &mockSearchUC{
		smartFn: func(context.Context, request.SmartSearchQuery) (orchestrator.SearchResult, error) {
			t.Fatal("search must not run for invalid input")
			return orchestrator.SearchResult{}, nil
		},
	}
	c := testClient(svc, nil)

	tests := []SearchRequest{
		{Query: ""},
		{Query: "x", Mode: "geo"},
		{Query: "x", Profile: &Profile{Gender: "robot"}},
	}
	for _, req := range tests {
		if _, err := c.Search(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Search(%+v) err = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestSearch_RetrievalError(t *testing.T) {
	svc := &mockSearchUC{
		smartFn: func(context.Context, request.SmartSearchQuery) (orchestrator.SearchResult, error) {
			return orchestrator.SearchResult{}, fmt.Errorf("lexical: %w", ErrRetrieval)
		},
	}
	c := testClient(svc, nil)

	if _, err := c.Search(context.Background(), SearchRequest{Query: "pension"}); !errors.Is(err, ErrRetrieval) {
		t.Fatalf("err = %v, want ErrRetrieval", err)
	}
}

func TestBrowseMethods(t *testing.T) {
	var calls []string
	svc := &mockSearchUC{
		categoryFn: func(_ context.Context, category, userID string, limit int) (orchestrator.SearchResult, error) {
			calls = append(calls, fmt.Sprintf("category:%s:%s:%d", category, userID, limit))
			return orchestrator.SearchResult{}, nil
		},
		lifeEventFn: func(_ context.Context, event, userID string, limit int) (orchestrator.SearchResult, error) {
			calls = append(calls, fmt.Sprintf("event:%s:%s:%d", event, userID, limit))
			return orchestrator.SearchResult{}, nil
		},
		recommendFn: func(_ context.Context, userID string, limit int) (orchestrator.SearchResult, error) {
			calls = append(calls, fmt.Sprintf("recommend:%s:%d", userID, limit))
			return orchestrator.SearchResult{}, fmt.Errorf("search: %w", ErrRetrieval)
		},
	}
	c := testClient(svc, nil)
	ctx := context.Background()

	if _, err := c.ByCategory(ctx, "Health", "u-1", 3); err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if _, err := c.ByLifeEvent(ctx, "marriage", "", 0); err != nil {
		t.Fatalf("ByLifeEvent: %v", err)
	}
	if _, err := c.Recommendations(ctx, "u-2", 10); !errors.Is(err, ErrRetrieval) {
		t.Fatalf("Recommendations err = %v, want ErrRetrieval", err)
	}

	want := []string{"category:Health:u-1:3", "event:marriage::0", "recommend:u-2:10"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestCheckEligibility(t *testing.T) {
	elig := &mockEligibilityUC{
		checkFn: func(_ context.Context, id string, _ *profile.UserProfile) (eligibility.Result, error) {
			if id != "pm-kisan" {
				return eligibility.Result{}, ErrSchemeNotFound
			}
			return eligibility.Result{Status: eligibility.StatusEligible}, nil
		},
	}
	c := testClient(nil, elig)

	res, err := c.CheckEligibility(context.Background(), "pm-kisan", &Profile{})
	if err != nil || res.Status != StatusEligible {
		t.Fatalf("got %+v, %v", res, err)
	}
	if _, err := c.CheckEligibility(context.Background(), "nope", &Profile{}); !errors.Is(err, ErrSchemeNotFound) {
		t.Fatalf("err = %v, want ErrSchemeNotFound", err)
	}
}

func TestCheckText(t *testing.T) {
	c := &Client{}
	p := &Profile{Age: profile.Int(70)}

	res := c.CheckText(p, "Applicants aged 18 to 60")
	if res.Status != StatusNotEligible {
		t.Errorf("status = %q, want not_eligible", res.Status)
	}
}

func TestUpsertAndGetScheme(t *testing.T) {
	c := testClient(nil, nil)
	ctx := context.Background()

	s := &Scheme{ID: "pm-kisan", Slug: "pm-kisan", Name: "PM Kisan", Level: scheme.LevelCentral}
	if err := c.UpsertScheme(ctx, s); err != nil {
		t.Fatalf("UpsertScheme: %v", err)
	}
	got, err := c.GetScheme(ctx, "pm-kisan")
	if err != nil || got.Name != "PM Kisan" {
		t.Fatalf("GetScheme = %+v, %v", got, err)
	}
	if _, err := c.GetScheme(ctx, "missing"); !errors.Is(err, ErrSchemeNotFound) {
		t.Fatalf("err = %v, want ErrSchemeNotFound", err)
	}
}

func TestUpsertScheme_IndexError(t *testing.T) {
	corpus := newMemCorpus()
	corpus.ensureFn = func() error { return errors.New("FT.CREATE failed") }
	c := &Client{corpus: corpus}

	if err := c.UpsertScheme(context.Background(), &Scheme{ID: "x"}); err == nil {
		t.Fatal("expected index error")
	}
	if len(corpus.schemes) != 0 {
		t.Error("scheme must not be stored when the index is unavailable")
	}
}

// TestWireClient_EndToEnd runs the real services over in-memory stores.
func TestWireClient_EndToEnd(t *testing.T) {
	corpus := newMemCorpus()
	corpus.lexical = []result.Hit{
		{Scheme: scheme.Scheme{
			ID: "young", Name: "Youth Pension", Category: "Social Security", Eligibility: "Applicants aged 18 to 35",
		}, Score: 5},
		{Scheme: scheme.Scheme{
			ID: "old", Name: "Old Age Pension", Category: "Social Security", Eligibility: "Applicants aged 60 or above",
		}, Score: 3},
	}
	profiles := newMemProfiles()
	profiles.profiles["u-1"] = profile.UserProfile{Age: profile.Int(65)}

	c, err := wireClient(corpus, profiles, &clientConfig{vectorDimensions: 4}, nil)
	if err != nil {
		t.Fatalf("wireClient: %v", err)
	}
	defer c.Close()

	res, err := c.Search(context.Background(), SearchRequest{Query: "pension scheme", UserID: "u-1"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(res.Results))
	}
	if res.Results[0].Scheme.ID != "old" || res.Results[0].Status() != StatusEligible {
		t.Errorf("eligible scheme should rank first: %+v", res.Results)
	}
	if res.Results[1].Status() != StatusNotEligible {
		t.Errorf("second status = %q", res.Results[1].Status())
	}

	if h := c.Health(context.Background()); h.Status != "ok" || h.Checks["corpus"] != "ok" {
		t.Errorf("health = %+v", h)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "schemematch_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("schemematch_sdk_operations_total not found")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
