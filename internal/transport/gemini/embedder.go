package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/metrics"
)

const (
	// DefaultModel is the Gemini embedding model.
	DefaultModel = "gemini-embedding-001"
	// taskRetrievalQuery tunes vectors for short search queries against a document corpus.
	taskRetrievalQuery = "RETRIEVAL_QUERY"
	provider           = "gemini"
)

// embedAPI is the slice of genai.Models used here.
type embedAPI interface {
	EmbedContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig,
	) (*genai.EmbedContentResponse, error)
}

// Config holds the Gemini provider settings.
type Config struct {
	APIKey     string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// Embedder is an embedding provider backed by the Gemini API.
type Embedder struct {
	api        embedAPI
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newEmbedder(client.Models, cfg), nil
}

func newEmbedder(api embedAPI, cfg *Config) *Embedder {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{api: api, model: model, dimensions: cfg.Dimensions, logger: logger}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	cfg := &genai.EmbedContentConfig{TaskType: taskRetrievalQuery}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	start := time.Now()
	resp, err := e.api.EmbedContent(ctx, e.model, content, cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		e.logger.Debug("Gemini embedding failed", zap.Duration("duration", duration), zap.Error(err))
		return domain.EmbeddingResult{}, wrapAPIError(err)
	}

	vec, err := validateResponse(resp)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "invalid_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("gemini: %w: %w", err, domain.ErrEmbeddingUnavailable)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck embeds a short probe text.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.Embed(ctx, "health"); err != nil {
		return fmt.Errorf("gemini health: %w", err)
	}
	return nil
}

func wrapAPIError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return fmt.Errorf("gemini API error %d: %s: %w", apiErr.Code, apiErr.Message, domain.ErrEmbeddingUnavailable)
	}
	return fmt.Errorf("gemini request failed: %v: %w", err, domain.ErrEmbeddingUnavailable)
}

func validateResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("embedding vector is empty")
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d", i)
		}
	}
	return values, nil
}
