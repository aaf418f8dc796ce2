package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/metrics"
)

// Defaults for the query-embedding call.
const (
	DefaultTimeout = 2 * time.Second
	DefaultRetries = 1
	DefaultBackoff = 200 * time.Millisecond
)

// Options tune the timeout and retry policy.
type Options struct {
	Timeout time.Duration // per attempt
	Retries int           // extra attempts after the first
	Backoff time.Duration // delay before the first retry, doubled after that
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	return o
}

// InstrumentedEmbedder bounds every provider call with a timeout and retries once.
// Transport metrics (requests, duration, tokens) are recorded by the provider;
// this layer owns retries and the final error classification.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	opts     Options
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewInstrumentedEmbedder wraps an embedder with timeout, retry and logging.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, opts Options, logger *zap.Logger,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		opts:     opts.withDefaults(),
		logger:   logger,
		sleep:    sleepCtx,
	}
}

// Embed calls the inner embedder, retrying after a backoff on failure.
// Every returned error wraps domain.ErrEmbeddingUnavailable.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var lastErr error
	delay := p.opts.Backoff

	for attempt := 0; attempt <= p.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
			delay *= 2
			metrics.EmbeddingRetriesTotal.WithLabelValues(p.provider).Inc()
		}

		start := time.Now()
		result, err := p.attempt(ctx, text)
		if err == nil {
			p.logger.Debug("Embedding request completed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("attempt", attempt+1),
				zap.Duration("duration", time.Since(start)),
				zap.Int("dimensions", len(result.Embedding)),
				zap.Int("total_tokens", result.TotalTokens),
			)
			return result, nil
		}
		lastErr = err

		p.logger.Warn("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Int("attempt", attempt+1),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	if errors.Is(lastErr, domain.ErrEmbeddingUnavailable) {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", lastErr)
	}
	return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingUnavailable, lastErr)
}

func (p *InstrumentedEmbedder) attempt(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	result, err := p.inner.Embed(callCtx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // wrapped once in Embed
	}
	if len(result.Embedding) == 0 {
		return domain.EmbeddingResult{}, errors.New("empty embedding")
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context error
	case <-timer.C:
		return nil
	}
}
