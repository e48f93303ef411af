package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/index"
	"github.com/oic-analytics/adei-insight/internal/intent"
)

// snapshot is one cache epoch: an immutable corpus, its classifier
// vocabularies, and a lazily built embedding index. In-flight queries
// hold the snapshot they started with, so a rebuild never changes a
// query mid-flight.
type snapshot struct {
	epoch      uint64
	builtAt    time.Time
	corpus     *corpus.Corpus
	classifier *intent.Classifier

	embedder embedding.Embedder
	remote   index.Searcher // optional remote backend; nil means in-memory

	indexMu    sync.Mutex
	index      *index.Index // non-nil only after a successful build
	indexBuilt atomic.Bool
}

// Searcher returns the epoch's similarity searcher, building the
// in-memory index on first use. Embedding the corpus is the one
// expensive step per epoch; structured intents never reach here, so a
// slow first build does not block them. Only a successful build is
// cached: a cancelled context or transient embedding failure leaves
// the snapshot clean and the next similarity query retries.
func (s *snapshot) Searcher(ctx context.Context) (index.Searcher, error) {
	if s.remote != nil {
		return s.remote, nil
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	if s.index != nil {
		return s.index, nil
	}

	ix, err := index.Build(ctx, s.corpus, s.embedder)
	if err != nil {
		return nil, err
	}
	s.index = ix
	s.indexBuilt.Store(true)
	return ix, nil
}

// indexed reports whether the similarity index has been built yet.
func (s *snapshot) indexed() bool {
	if s.remote != nil {
		return true
	}
	return s.indexBuilt.Load()
}
