package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
)

// DefaultCollection is the Qdrant collection holding corpus documents.
const DefaultCollection = "adei_documents"

// QdrantIndex is an optional remote backend implementing Searcher over a
// Qdrant collection. The in-memory Index remains the default; this
// backend exists for deployments that already run Qdrant and want the
// corpus queryable outside the engine process.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	embedder   embedding.Embedder
}

// NewQdrantIndex connects to Qdrant and verifies health, retrying with
// exponential backoff before failing fast.
func NewQdrantIndex(host string, port int, collection string, embedder embedding.Embedder) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}

	ix := &QdrantIndex{
		client:     client,
		collection: collection,
		embedder:   embedder,
	}

	if err := ix.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}
	return ix, nil
}

func (ix *QdrantIndex) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		result, err := ix.client.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		if result == nil || result.Title == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// Close closes the client connection.
func (ix *QdrantIndex) Close() error {
	if ix.client != nil {
		return ix.client.Close()
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance and the
// embedder's dimension if it does not already exist. Idempotent.
func (ix *QdrantIndex) EnsureCollection(ctx context.Context) error {
	collections, err := ix.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == ix.collection {
			return nil
		}
	}

	err = ix.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(ix.embedder.Dimension()),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Sync replaces the collection contents with the given corpus: drop,
// recreate, embed, upsert. Mirrors the engine's atomic-epoch semantics
// as closely as a remote store allows.
func (ix *QdrantIndex) Sync(ctx context.Context, c *corpus.Corpus) error {
	if err := ix.client.DeleteCollection(ctx, ix.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if err := ix.EnsureCollection(ctx); err != nil {
		return err
	}

	texts := make([]string, c.Len())
	for i, doc := range c.Documents {
		texts[i] = doc.Text
	}
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding corpus: %w", err)
	}

	// Batch upserts in groups of 100.
	batchSize := 100
	for i := 0; i < c.Len(); i += batchSize {
		end := min(i+batchSize, c.Len())

		points := make([]*qdrant.PointStruct, 0, end-i)
		for j := i; j < end; j++ {
			doc := c.Documents[j]
			points = append(points, &qdrant.PointStruct{
				// Point ids must be UUIDs; derive one from the document id
				// so re-syncs overwrite rather than duplicate.
				Id:      qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(doc.ID)).String()),
				Vectors: qdrant.NewVectors(vectors[j]...),
				Payload: qdrant.NewValueMap(map[string]any{
					"doc_id":  doc.ID,
					"country": doc.Country,
					"year":    int64(doc.Year),
					"text":    doc.Text,
				}),
			})
		}
		if err := ix.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (ix *QdrantIndex) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := ix.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: ix.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// SearchText embeds the question and returns up to k scored hits.
func (ix *QdrantIndex) SearchText(ctx context.Context, text string, k int) ([]Hit, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if k <= 0 {
		k = 5
	}

	results, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ix.collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayloadInclude("doc_id"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	if len(results) == 0 {
		info, err := ix.client.GetCollectionInfo(ctx, ix.collection)
		if err == nil && info.GetPointsCount() == 0 {
			return nil, ErrEmptyIndex
		}
	}

	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		hits = append(hits, Hit{
			DocID: result.Payload["doc_id"].GetStringValue(),
			Score: float64(result.Score),
		})
	}
	return hits, nil
}
