package embedding

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestLocalEmbedderDeterministic(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEmbedder(0)

	a1, err := e.Embed(ctx, "went to the gym")
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := e.Embed(ctx, "went to the gym")
	b, _ := e.Embed(ctx, "ate a burger")

	if len(a1) != e.Dims() || e.Dims() != 384 {
		t.Fatalf("expected 384 dims, got %d", len(a1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("identical input must produce identical vectors")
		}
	}
	if CosineSimilarity(a1, b) > 0.99 {
		t.Error("distinct inputs should not be near-identical")
	}
	// Unit vector
	if sim := CosineSimilarity(a1, a1); math.Abs(sim-1.0) > 0.001 {
		t.Errorf("self-similarity should be 1, got %f", sim)
	}
}

type countingEmbedder struct {
	inner Embedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) Dims() int { return c.inner.Dims() }

func TestCachedEmbedderMemoizes(t *testing.T) {
	ctx := context.Background()
	counter := &countingEmbedder{inner: NewLocalEmbedder(16)}
	cached, err := NewCachedEmbedder(counter)
	if err != nil {
		t.Fatal(err)
	}

	v1, err := cached.Embed(ctx, "morning run")
	if err != nil {
		t.Fatal(err)
	}
	cached.Wait()

	v2, err := cached.Embed(ctx, "morning run")
	if err != nil {
		t.Fatal(err)
	}

	if counter.calls != 1 {
		t.Errorf("expected one inner call, got %d", counter.calls)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("cached vector differs from original")
		}
	}
}
