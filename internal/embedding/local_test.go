package embedding

import (
	"context"
	"math"
	"testing"
)

// TestLocalEmbedder_Deterministic tests that identical input always
// produces identical vectors.
func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"Country: Qatar, Year: 2023"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := e.Embed(ctx, []string{"Country: Qatar, Year: 2023"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("Vectors differ at position %d: %g vs %g", i, a[0][i], b[0][i])
		}
	}
}

// TestLocalEmbedder_Dimension tests the fixed output dimension.
func TestLocalEmbedder_Dimension(t *testing.T) {
	e := NewLocalEmbedder()
	vectors, err := e.Embed(context.Background(), []string{"health survival", "education"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != LocalDimension {
			t.Errorf("Vector %d: expected dimension %d, got %d", i, LocalDimension, len(v))
		}
	}
	if e.Dimension() != LocalDimension {
		t.Errorf("Dimension(): expected %d, got %d", LocalDimension, e.Dimension())
	}
}

// TestLocalEmbedder_Normalized tests that non-empty vectors have unit
// L2 norm.
func TestLocalEmbedder_Normalized(t *testing.T) {
	e := NewLocalEmbedder()
	vectors, err := e.Embed(context.Background(), []string{"economic opportunities in Morocco"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var norm float64
	for _, x := range vectors[0] {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("Expected unit norm, got %g", math.Sqrt(norm))
	}
}

// TestLocalEmbedder_StopwordsOnly tests that all-stopword input yields
// a zero vector rather than an error.
func TestLocalEmbedder_StopwordsOnly(t *testing.T) {
	e := NewLocalEmbedder()
	vectors, err := e.Embed(context.Background(), []string{"the and of"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i, x := range vectors[0] {
		if x != 0 {
			t.Fatalf("Expected zero vector, got %g at position %d", x, i)
		}
	}
}
