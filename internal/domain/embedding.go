package domain

import (
	"context"
	"fmt"
)

// DefaultVectorDimensions is the stored scheme vector length.
const DefaultVectorDimensions = 2000

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// FitDimensions truncates or zero-pads v to exactly dim entries.
// Query vectors go through the same fitting as the stored scheme vectors so
// that similarity is computed over identical spaces.
func FitDimensions(v []float32, dim int) []float32 {
	if dim <= 0 || len(v) == dim {
		return v
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// DimensionEmbedder is a decorator that fits every vector to a fixed dimension.
type DimensionEmbedder struct {
	inner Embedder
	dim   int
}

// NewDimensionEmbedder creates a decorator that truncates or pads vectors to dim.
func NewDimensionEmbedder(inner Embedder, dim int) *DimensionEmbedder {
	return &DimensionEmbedder{inner: inner, dim: dim}
}

// Embed delegates to the inner embedder and fits the result.
func (e *DimensionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("dimension embed: %w", err)
	}
	res.Embedding = FitDimensions(res.Embedding, e.dim)
	return res, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (e *DimensionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

// InstructionEmbedder is a decorator that prepends a task instruction
// (e.g. "search_query: ") required by some embedding models.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends the instruction and delegates to the inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}
