// Package engine is the query engine's entry point: it owns the cached
// corpus/index snapshot, routes questions through classification and
// retrieval, and records feedback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oic-analytics/adei-insight/internal/answer"
	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/feedback"
	"github.com/oic-analytics/adei-insight/internal/index"
	"github.com/oic-analytics/adei-insight/internal/indicator"
	"github.com/oic-analytics/adei-insight/internal/intent"
	"github.com/oic-analytics/adei-insight/internal/retrieve"
)

// DefaultTTL matches the dashboard's 1-hour data cache.
const DefaultTTL = time.Hour

// recentLimit bounds the in-memory interaction history kept for
// correlating feedback with answers.
const recentLimit = 1000

// Filters narrows the corpus before intent-specific retrieval.
type Filters struct {
	Countries []string
	Years     []int
	Pillars   []string
}

// Config holds engine dependencies.
type Config struct {
	Indicators *indicator.Store
	Embedder   embedding.Embedder
	Feedback   *feedback.Store
	// Remote is an optional remote similarity backend (Qdrant); nil uses
	// the in-memory index.
	Remote index.Searcher
	TTL    time.Duration
	Logger *slog.Logger
}

// Engine answers natural-language questions over the indicator dataset.
type Engine struct {
	indicators *indicator.Store
	embedder   embedding.Embedder
	feedback   *feedback.Store
	remote     index.Searcher
	ttl        time.Duration
	logger     *slog.Logger

	mu        sync.Mutex // serializes rebuilds
	snap      *snapshot  // current epoch; read under mu via current()
	lastEpoch uint64

	recentMu sync.Mutex
	recent   map[string]interaction
	order    []string
}

// interaction is what feedback needs to cite an earlier answer.
type interaction struct {
	question string
	answer   string
	sources  []string
}

// New creates an engine. The first snapshot is built lazily on first use
// so construction never blocks on the database.
func New(cfg Config) *Engine {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		indicators: cfg.Indicators,
		embedder:   cfg.Embedder,
		feedback:   cfg.Feedback,
		remote:     cfg.Remote,
		ttl:        ttl,
		logger:     logger,
		recent:     make(map[string]interaction),
	}
}

// Ask classifies the question, retrieves over the current snapshot and
// synthesizes an answer. Retrieval failures become explanatory answers;
// only infrastructure failures (store access, corpus integrity, embedding
// transport) return an error.
func (e *Engine) Ask(ctx context.Context, question string, filters Filters) (answer.Answer, error) {
	snap, err := e.current(ctx)
	if err != nil {
		return answer.Answer{}, err
	}

	view := snap.corpus.Filter(corpus.FilterOptions{
		Countries: filters.Countries,
		Years:     filters.Years,
		Pillars:   canonicalPillars(filters.Pillars),
	})

	it := snap.classifier.Classify(question)
	e.logger.Debug("classified question",
		"kind", it.Kind.String(), "countries", it.Countries, "pillar", it.Pillar)

	var ans answer.Answer
	res, err := retrieve.Retrieve(ctx, it, view, snap)
	switch {
	case errors.Is(err, retrieve.ErrInsufficientEntities):
		ans = answer.Clarification(err)
	case errors.Is(err, retrieve.ErrNoData), errors.Is(err, index.ErrEmptyIndex):
		ans = answer.NoData(err)
	case err != nil:
		return answer.Answer{}, err
	default:
		ans = answer.Synthesize(it, res)
	}

	ans.InteractionID = uuid.New().String()
	ans.CreatedAt = time.Now()
	e.remember(ans.InteractionID, question, ans)
	return ans, nil
}

// RecordFeedback persists a rating for an earlier answer. Duplicate
// submissions are logged and swallowed; unknown interaction ids fail.
func (e *Engine) RecordFeedback(ctx context.Context, interactionID string, rating int, comment string) error {
	if e.feedback == nil {
		return fmt.Errorf("feedback store not configured")
	}

	e.recentMu.Lock()
	past, ok := e.recent[interactionID]
	e.recentMu.Unlock()
	if !ok {
		return fmt.Errorf("unknown interaction id %q", interactionID)
	}

	err := e.feedback.Record(ctx, feedback.Entry{
		InteractionID: interactionID,
		Question:      past.question,
		Answer:        past.answer,
		Sources:       past.sources,
		Rating:        rating,
		Comment:       comment,
	})
	if errors.Is(err, feedback.ErrDuplicateFeedback) {
		e.logger.Warn("duplicate feedback ignored", "interaction_id", interactionID)
		return nil
	}
	return err
}

// Refresh forces an immediate corpus rebuild regardless of TTL.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.rebuildLocked(ctx)
	return err
}

// Status describes the current snapshot.
type Status struct {
	Epoch       uint64    `json:"epoch"`
	BuiltAt     time.Time `json:"built_at"`
	Documents   int       `json:"documents"`
	Countries   int       `json:"countries"`
	YearMin     int       `json:"year_min"`
	YearMax     int       `json:"year_max"`
	IndexReady  bool      `json:"index_ready"`
	Embedding   string    `json:"embedding_model"`
	TTLSeconds  int       `json:"ttl_seconds"`
	AgeSeconds  int       `json:"age_seconds"`
	StaleAfter  time.Time `json:"stale_after"`
	FeedbackSet bool      `json:"feedback_enabled"`
}

// Status builds the snapshot if none exists yet, then reports on it.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	snap, err := e.current(ctx)
	if err != nil {
		return Status{}, err
	}
	years := snap.corpus.Years()
	st := Status{
		Epoch:       snap.epoch,
		BuiltAt:     snap.builtAt,
		Documents:   snap.corpus.Len(),
		Countries:   len(snap.corpus.Countries()),
		IndexReady:  snap.indexed(),
		Embedding:   e.embedder.Model(),
		TTLSeconds:  int(e.ttl.Seconds()),
		AgeSeconds:  int(time.Since(snap.builtAt).Seconds()),
		StaleAfter:  snap.builtAt.Add(e.ttl),
		FeedbackSet: e.feedback != nil,
	}
	if len(years) > 0 {
		st.YearMin = years[0]
		st.YearMax = years[len(years)-1]
	}
	return st, nil
}

// current returns the live snapshot, rebuilding when none exists or the
// TTL has elapsed. The swap is atomic: callers already holding the old
// snapshot keep using it.
func (e *Engine) current(ctx context.Context) (*snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil && time.Since(e.snap.builtAt) < e.ttl {
		return e.snap, nil
	}
	return e.rebuildLocked(ctx)
}

// rebuildLocked builds a fresh snapshot from the indicator store.
// Integrity failures (ambiguous source rows) propagate loudly: silently
// dropping them would corrupt every subsequent answer.
func (e *Engine) rebuildLocked(ctx context.Context) (*snapshot, error) {
	start := time.Now()

	records, err := e.indicators.Query(ctx, indicator.Filter{})
	if err != nil {
		return nil, fmt.Errorf("loading indicator records: %w", err)
	}
	built, err := corpus.Build(records)
	if err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	years, err := e.indicators.Years(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading year range: %w", err)
	}
	countries, err := e.indicators.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading country vocabulary: %w", err)
	}

	e.lastEpoch++
	snap := &snapshot{
		epoch:      e.lastEpoch,
		builtAt:    time.Now(),
		corpus:     built,
		classifier: intent.NewClassifier(countries, years),
		embedder:   e.embedder,
		remote:     e.remote,
	}
	e.snap = snap

	e.logger.Info("corpus rebuilt",
		"epoch", snap.epoch,
		"documents", built.Len(),
		"countries", len(countries),
		"duration", time.Since(start),
	)
	return snap, nil
}

func (e *Engine) remember(id, question string, ans answer.Answer) {
	e.recentMu.Lock()
	defer e.recentMu.Unlock()
	if len(e.order) >= recentLimit {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.recent, oldest)
	}
	e.order = append(e.order, id)
	e.recent[id] = interaction{question: question, answer: ans.Text, sources: ans.Sources}
}

func canonicalPillars(labels []string) []string {
	var out []string
	for _, label := range labels {
		if p, ok := intent.Pillar(label); ok {
			out = append(out, p)
		}
	}
	return out
}
