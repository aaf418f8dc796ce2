package eligibility

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/metrics"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 8

// inlineBatch is the batch size below which checks run on the calling goroutine.
const inlineBatch = 4

// Service evaluates eligibility for one scheme or a batch of schemes.
type Service struct {
	engine  *eligibility.Engine
	schemes SchemeReader
	pool    *ants.Pool
}

// New creates a service backed by a pool of workers. A nil engine uses the default detectors.
func New(engine *eligibility.Engine, schemes SchemeReader, workers int) (*Service, error) {
	if engine == nil {
		engine = eligibility.NewEngine()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create eligibility pool: %w", err)
	}
	return &Service{engine: engine, schemes: schemes, pool: pool}, nil
}

// Release stops the worker pool. The service must not be used afterwards.
func (s *Service) Release() {
	s.pool.Release()
}

// CheckScheme evaluates p against a stored scheme.
func (s *Service) CheckScheme(
	ctx context.Context, schemeID string, p *profile.UserProfile,
) (eligibility.Result, error) {
	if strings.TrimSpace(schemeID) == "" {
		return eligibility.Result{}, fmt.Errorf("%w: scheme_id is required", domain.ErrInvalidRequest)
	}
	if p != nil {
		if err := p.Validate(); err != nil {
			return eligibility.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
	}
	sc, err := s.schemes.Get(ctx, schemeID)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("get scheme: %w", err)
	}
	res := s.engine.Check(p, &sc)
	metrics.ObserveEligibility(string(res.Status))
	return res, nil
}

// CheckBatch evaluates p against every scheme. Results are in input order.
func (s *Service) CheckBatch(
	ctx context.Context, p *profile.UserProfile, schemes []scheme.Scheme,
) ([]eligibility.Result, error) {
	out := make([]eligibility.Result, len(schemes))
	if len(schemes) == 0 {
		return out, nil
	}

	check := func(i int) {
		out[i] = s.engine.Check(p, &schemes[i])
	}

	if len(schemes) < inlineBatch {
		for i := range schemes {
			check(i)
		}
	} else if err := s.fanOut(ctx, len(schemes), check); err != nil {
		return nil, err
	}

	for i := range out {
		metrics.ObserveEligibility(string(out[i].Status))
	}
	return out, nil
}

// ScoreSchemes attaches an eligibility verdict to every ranked scheme, keeping order.
func (s *Service) ScoreSchemes(
	ctx context.Context, p *profile.UserProfile, ranked []result.SchemeWithScore,
) ([]result.SchemeWithScore, error) {
	schemes := make([]scheme.Scheme, len(ranked))
	for i := range ranked {
		schemes[i] = ranked[i].Scheme
	}
	verdicts, err := s.CheckBatch(ctx, p, schemes)
	if err != nil {
		return nil, err
	}
	out := make([]result.SchemeWithScore, len(ranked))
	for i := range ranked {
		out[i] = ranked[i]
		v := verdicts[i]
		out[i].Eligibility = &v
	}
	return out, nil
}

// fanOut runs fn(0..n-1) on the pool. Each index is written by exactly one task.
// If the pool rejects a task it runs on the caller.
func (s *Service) fanOut(ctx context.Context, n int, fn func(i int)) error {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return fmt.Errorf("eligibility batch: %w", err)
		}
		idx := i
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			fn(idx)
		})
		if err != nil {
			wg.Done()
			fn(idx)
		}
	}
	wg.Wait()
	return nil
}
