package index

import (
	"context"
	"errors"
	"testing"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/indicator"
)

func buildTestCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	records := []indicator.Record{
		{Country: "Qatar", Year: 2023, Pillar: "Health & Survival", Value: 0.71},
		{Country: "Jordan", Year: 2023, Pillar: "Educational Attainment", Value: 0.64},
		{Country: "Morocco", Year: 2023, Pillar: "Economic Opportunities", Value: 0.47},
	}
	c, err := corpus.Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return c
}

// TestBuild_IndexesEveryDocument tests index construction over a small
// corpus.
func TestBuild_IndexesEveryDocument(t *testing.T) {
	c := buildTestCorpus(t)
	ix, err := Build(context.Background(), c, embedding.NewLocalEmbedder())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ix.Len() != c.Len() {
		t.Errorf("Expected %d indexed documents, got %d", c.Len(), ix.Len())
	}
	if ix.Model() != embedding.LocalModel {
		t.Errorf("Expected model %q, got %q", embedding.LocalModel, ix.Model())
	}
}

// TestSearchText_RelevantFirst tests that a query naming a country's
// text ranks that country's document first.
func TestSearchText_RelevantFirst(t *testing.T) {
	c := buildTestCorpus(t)
	ix, err := Build(context.Background(), c, embedding.NewLocalEmbedder())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := ix.SearchText(context.Background(), "Qatar health survival", 3)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Expected hits")
	}
	if hits[0].DocID != "qatar-2023" {
		t.Errorf("Expected qatar-2023 first, got %q (score %g)", hits[0].DocID, hits[0].Score)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("Hits not sorted descending at %d", i)
		}
	}
}

// TestSearchText_KLimit tests that at most k hits return and k<=0 uses
// the default.
func TestSearchText_KLimit(t *testing.T) {
	c := buildTestCorpus(t)
	ix, err := Build(context.Background(), c, embedding.NewLocalEmbedder())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := ix.SearchText(context.Background(), "education", 1)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Expected 1 hit, got %d", len(hits))
	}

	hits, err = ix.SearchText(context.Background(), "education", 0)
	if err != nil {
		t.Fatalf("SearchText failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("Default k should return all 3 documents, got %d", len(hits))
	}
}

// TestSearchText_EmptyIndex tests the empty-corpus sentinel.
func TestSearchText_EmptyIndex(t *testing.T) {
	c, err := corpus.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ix, err := Build(context.Background(), c, embedding.NewLocalEmbedder())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = ix.SearchText(context.Background(), "anything", 5)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("Expected ErrEmptyIndex, got %v", err)
	}
}

// TestSearch_DimensionMismatch tests that a wrong-length query vector
// is rejected.
func TestSearch_DimensionMismatch(t *testing.T) {
	c := buildTestCorpus(t)
	ix, err := Build(context.Background(), c, embedding.NewLocalEmbedder())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err = ix.Search(make([]float32, 7), 5)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
}
