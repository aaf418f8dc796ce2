package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search still works with reduced quality.
	Degraded Status = "degraded"
	// Unhealthy indicates the scheme corpus is unreachable and search cannot run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in the report.
const (
	ComponentCorpus    = "corpus"
	ComponentEmbedding = "embedding"
	ComponentProfiles  = "profiles"
)

const checkTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	corpus    Pinger
	embedding EmbeddingChecker
	profiles  Pinger
}

// New creates a Service. embedding and profiles can be nil.
func New(corpus Pinger, embedding EmbeddingChecker, profiles Pinger) *Service {
	return &Service{corpus: corpus, embedding: embedding, profiles: profiles}
}

// Check runs all component checks concurrently. A corpus failure is unhealthy;
// any other failure only degrades, since search falls back to lexical ranking
// and to eligibility-free results.
func (s *Service) Check(ctx context.Context) Report {
	probes := map[string]func(context.Context) error{ComponentCorpus: s.corpus.Ping}
	if s.embedding != nil {
		probes[ComponentEmbedding] = s.embedding.HealthCheck
	}
	if s.profiles != nil {
		probes[ComponentProfiles] = s.profiles.Ping
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(probes))
	)
	for name, probe := range probes {
		wg.Add(1)
		go func(name string, probe func(context.Context) error) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			res := CheckOK
			if err := probe(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == ComponentCorpus {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
