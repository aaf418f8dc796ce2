package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects query-embedding usage for a single search request.
// The orchestrator puts a mutable pointer into the context and reads it back to flag
// degraded results; the search service records tokens and lexical fallbacks.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // true if embedding was called, even on a cache hit with 0 tokens
	Degraded    bool // true if the embedding failed and ranking was lexical-only
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}

// MarkDegraded records that semantic ranking was skipped.
func (u *EmbeddingUsage) MarkDegraded() {
	if u != nil {
		u.Degraded = true
	}
}
