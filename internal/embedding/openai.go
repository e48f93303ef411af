package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

const (
	// OpenAIModel is the OpenAI model used for generating embeddings.
	OpenAIModel = "text-embedding-3-small"

	// OpenAIDimension is the vector dimension for text-embedding-3-small.
	OpenAIDimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute
	// rate limits. OpenAI supports up to 2048 texts per batch, but smaller
	// batches reduce TPM pressure.
	DefaultBatchSize = 500
)

// OpenAIEmbedder generates embeddings with OpenAI's text-embedding-3-small
// model. It batches requests and retries with exponential backoff on rate
// limit errors.
type OpenAIEmbedder struct {
	client    *openai.Client
	batchSize int
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API.
// It requires OPENAI_API_KEY in the environment. If batchSize is 0,
// DefaultBatchSize is used.
func NewOpenAIEmbedder(batchSize int) (*OpenAIEmbedder, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// openai-go reads OPENAI_API_KEY from the environment
	client := openai.NewClient()

	return &OpenAIEmbedder{
		client:    &client,
		batchSize: batchSize,
	}, nil
}

// Dimension returns the vector length produced by the model.
func (e *OpenAIEmbedder) Dimension() int { return OpenAIDimension }

// Model returns the embedding model identifier.
func (e *OpenAIEmbedder) Model() string { return OpenAIModel }

// Embed generates embeddings for the given texts, batching requests and
// retrying rate-limited batches with exponential backoff.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var all [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := min(i+e.batchSize, len(texts))
		batch := texts[i:end]

		vectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// embedBatchWithRetry generates embeddings for a single batch.
// Rate limit errors (HTTP 429) retry with backoff; anything else is
// permanent and fails immediately.
func (e *OpenAIEmbedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: OpenAIModel,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // retry with backoff
			}
			return backoff.Permanent(err)
		}

		vectors = make([][]float32, len(resp.Data))
		for i, data := range resp.Data {
			vectors[i] = toFloat32(data.Embedding)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	return vectors, err
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 converts []float64 to []float32. The OpenAI API returns
// float64, but the index stores float32 for memory efficiency.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
