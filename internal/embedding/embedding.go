// Package embedding turns document and question text into fixed-length
// vectors for similarity search.
package embedding

import "context"

// Embedder generates one vector per input text. Vector dimensionality is
// constant for a given implementation; an index built with one embedder
// must never be queried with vectors from another (the index enforces
// this via Model and Dimension).
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension is the length of every vector this embedder produces.
	Dimension() int
	// Model identifies the embedding model, e.g. "text-embedding-3-small".
	Model() string
}
