// Package index provides nearest-neighbor lookup over the document
// corpus. The default implementation is an exhaustive in-memory cosine
// scan: at a few hundred documents a linear pass is both correct and
// simplest to audit, so no approximate structure is used.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
)

// Hit is one similarity match.
type Hit struct {
	DocID string
	Score float64
}

// Searcher answers top-k similarity queries for question text.
// Implementations treat k <= 0 as a request for the default result
// count of five; results never exceed the effective k.
type Searcher interface {
	SearchText(ctx context.Context, text string, k int) ([]Hit, error)
}

// Index holds one vector per document for a single corpus epoch.
// It is immutable after Build and safe for concurrent queries.
type Index struct {
	ids      []string
	vectors  [][]float32
	embedder embedding.Embedder
	model    string
	dim      int
}

// Build embeds every document text and assembles the index. The corpus
// is embedded in one pass; construction is the single expensive step per
// epoch and must not be repeated per query.
func Build(ctx context.Context, c *corpus.Corpus, embedder embedding.Embedder) (*Index, error) {
	ids := make([]string, c.Len())
	texts := make([]string, c.Len())
	for i, doc := range c.Documents {
		ids[i] = doc.ID
		texts[i] = doc.Text
	}

	var vectors [][]float32
	if len(texts) > 0 {
		var err error
		vectors, err = embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding corpus: %w", err)
		}
		for i, v := range vectors {
			if len(v) != embedder.Dimension() {
				return nil, fmt.Errorf("%w: document %s has %d dimensions, expected %d",
					ErrDimensionMismatch, ids[i], len(v), embedder.Dimension())
			}
			normalize(v)
		}
	}

	return &Index{
		ids:      ids,
		vectors:  vectors,
		embedder: embedder,
		model:    embedder.Model(),
		dim:      embedder.Dimension(),
	}, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.ids) }

// Model returns the embedding model the index was built with.
func (ix *Index) Model() string { return ix.model }

// SearchText embeds the question with the index's own embedder and
// delegates to Search, which guarantees query and corpus vectors come
// from the same model.
func (ix *Index) SearchText(ctx context.Context, text string, k int) ([]Hit, error) {
	if len(ix.ids) == 0 {
		return nil, ErrEmptyIndex
	}
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return ix.Search(vectors[0], k)
}

// Search returns up to k hits ordered by cosine similarity descending,
// ties broken by document id ascending for determinism. k <= 0 uses
// the default result count per the Searcher contract.
func (ix *Index) Search(vector []float32, k int) ([]Hit, error) {
	if len(ix.ids) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), ix.dim)
	}
	if k <= 0 {
		k = 5
	}

	query := make([]float32, len(vector))
	copy(query, vector)
	normalize(query)

	hits := make([]Hit, len(ix.ids))
	for i, v := range ix.vectors {
		hits[i] = Hit{DocID: ix.ids[i], Score: dot(v, query)}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
