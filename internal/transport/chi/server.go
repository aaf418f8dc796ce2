package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/schemematch/internal/domain"
	domelig "github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/schemematch/internal/usecase/health"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Orchestrator runs scheme discovery searches.
type Orchestrator interface {
	SmartSearch(ctx context.Context, q request.SmartSearchQuery) (orchestrator.SearchResult, error)
	SearchByCategory(ctx context.Context, category, userID string, limit int) (orchestrator.SearchResult, error)
	SearchByLifeEvent(ctx context.Context, event, userID string, limit int) (orchestrator.SearchResult, error)
	PersonalizedRecommendations(ctx context.Context, userID string, limit int) (orchestrator.SearchResult, error)
}

// EligibilityChecker evaluates a profile against one scheme.
type EligibilityChecker interface {
	CheckScheme(ctx context.Context, schemeID string, p *profile.UserProfile) (domelig.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the scheme discovery HTTP API.
type Server struct {
	search      Orchestrator
	eligibility EligibilityChecker
	health      HealthChecker
}

// NewServer creates an HTTP API server.
func NewServer(search Orchestrator, eligibility EligibilityChecker, health HealthChecker) *Server {
	return &Server{search: search, eligibility: eligibility, health: health}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/eligibility", s.CheckEligibility)
		r.Get("/categories/{category}/schemes", s.SchemesByCategory)
		r.Get("/life-events/{event}/schemes", s.SchemesByLifeEvent)
		r.Get("/users/{userID}/recommendations", s.Recommendations)
	})
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	q, err := req.toQuery()
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	res, err := s.search.SmartSearch(r.Context(), q)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSearchResult(w, &res)
}

// CheckEligibility handles POST /v1/eligibility.
func (s *Server) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.eligibility.CheckScheme(r.Context(), req.SchemeID, req.Profile)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SchemesByCategory handles GET /v1/categories/{category}/schemes.
func (s *Server) SchemesByCategory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	res, err := s.search.SearchByCategory(
		r.Context(), chi.URLParam(r, "category"), r.URL.Query().Get("user_id"), limit,
	)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSearchResult(w, &res)
}

// SchemesByLifeEvent handles GET /v1/life-events/{event}/schemes.
func (s *Server) SchemesByLifeEvent(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	res, err := s.search.SearchByLifeEvent(
		r.Context(), chi.URLParam(r, "event"), r.URL.Query().Get("user_id"), limit,
	)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSearchResult(w, &res)
}

// Recommendations handles GET /v1/users/{userID}/recommendations.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	res, err := s.search.PersonalizedRecommendations(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeSearchResult(w, &res)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeSearchResult(w http.ResponseWriter, res *orchestrator.SearchResult) {
	if res.Degraded {
		w.Header().Set("X-Search-Degraded", "true")
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryLimit parses the optional limit parameter. Zero means the default page size.
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		handleDomainError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidRequest))
		return 0, false
	}
	return limit, true
}
