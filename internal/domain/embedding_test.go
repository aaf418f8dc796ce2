package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

type healthyStub struct {
	stubEmbedder
	healthErr error
}

func (s *healthyStub) HealthCheck(context.Context) error { return s.healthErr }

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		dim  int
		want []float32
	}{
		{"exact", []float32{1, 2}, 2, []float32{1, 2}},
		{"truncate", []float32{1, 2, 3, 4}, 2, []float32{1, 2}},
		{"pad", []float32{1}, 3, []float32{1, 0, 0}},
		{"zero dim passes through", []float32{1, 2}, 0, []float32{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitDimensions(tt.in, tt.dim)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFitDimensions_DoesNotAliasOnTruncate(t *testing.T) {
	in := []float32{1, 2, 3}
	out := FitDimensions(in, 2)
	out[0] = 99
	if in[0] != 1 {
		t.Error("truncated vector aliases the input")
	}
}

func TestDimensionEmbedder(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 4}}
	emb := NewDimensionEmbedder(inner, 5)

	res, err := emb.Embed(context.Background(), "farmer subsidy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 5 {
		t.Errorf("expected 5 dims, got %d", len(res.Embedding))
	}
	if res.TotalTokens != 4 {
		t.Errorf("token usage lost: %d", res.TotalTokens)
	}
}

func TestDimensionEmbedder_ErrorPropagation(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingUnavailable}
	_, err := NewDimensionEmbedder(inner, 5).Embed(context.Background(), "x")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("expected wrapped ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestDimensionEmbedder_HealthCheck(t *testing.T) {
	if err := NewDimensionEmbedder(&stubEmbedder{}, 3).HealthCheck(context.Background()); err != nil {
		t.Errorf("non-checker inner should be healthy, got %v", err)
	}
	down := errors.New("down")
	if err := NewDimensionEmbedder(&healthyStub{healthErr: down}, 3).HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "search_query: ")

	result, err := emb.Embed(context.Background(), "widow pension")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "search_query: widow pension" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewInstructionEmbedder(&stubEmbedder{err: innerErr}, "q: ")

	if _, err := emb.Embed(context.Background(), "hello"); !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbeddingUsage(t *testing.T) {
	if UsageFromContext(context.Background()) != nil {
		t.Fatal("expected nil usage on bare context")
	}
	var nilUsage *EmbeddingUsage
	nilUsage.AddTokens(3)
	nilUsage.MarkDegraded()

	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(7)
	UsageFromContext(ctx).MarkDegraded()
	if u.TotalTokens != 7 || !u.Used || !u.Degraded {
		t.Errorf("usage = %+v", *u)
	}
}
