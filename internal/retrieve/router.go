// Package retrieve routes classified questions to the retrieval path
// that serves them: structured intents aggregate directly over the
// corpus snapshot, unclassified questions fall back to the embedding
// index. Retrieval is a pure read over one snapshot, so a query never
// straddles two cache epochs.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/index"
	"github.com/oic-analytics/adei-insight/internal/intent"
)

// DefaultK is the result count when a question names none, matching the
// dashboard's default search depth.
const DefaultK = 5

// StableSlopeThreshold is the per-year score delta below which a trend
// reads as stable rather than improving or declining.
const StableSlopeThreshold = 0.05

// IndexProvider hands out the epoch's similarity searcher. The engine
// builds it lazily so structured intents never block on embedding the
// corpus.
type IndexProvider interface {
	Searcher(ctx context.Context) (index.Searcher, error)
}

// Result is the retrieved document set plus what the router did to
// produce it.
type Result struct {
	Documents   []corpus.Document
	Explanation string
	// Scores holds per-document similarity, only for Unclassified.
	Scores map[string]float64
	// Pillar the ranking or trend used; empty means composite score.
	Pillar string
	// Trend fields.
	Direction    string // "improving", "declining", "stable"
	Slope        float64
	MissingYears []int
}

// Retrieve dispatches by intent kind over the given corpus snapshot.
func Retrieve(ctx context.Context, it intent.Intent, c *corpus.Corpus, provider IndexProvider) (*Result, error) {
	switch it.Kind {
	case intent.TopPerformers:
		return rank(it, c, true)
	case intent.BottomPerformers:
		return rank(it, c, false)
	case intent.Comparison:
		return comparison(it, c)
	case intent.Trend:
		return trend(it, c)
	case intent.Lookup:
		return lookup(it, c)
	case intent.Unclassified:
		return similarity(ctx, it, c, provider)
	default:
		return nil, fmt.Errorf("unhandled intent kind %v", it.Kind)
	}
}

// score returns a document's ranking value for the requested pillar, or
// its composite score when no pillar was named.
func score(d *corpus.Document, pillar string) (float64, bool) {
	if pillar == "" {
		if len(d.Pillars) == 0 {
			return 0, false
		}
		return d.Composite(), true
	}
	return d.Value(pillar)
}

// rank implements TopPerformers and BottomPerformers. The two are exact
// inverses: identical filtering and tie-breaks, reversed sort direction.
func rank(it intent.Intent, c *corpus.Corpus, descending bool) (*Result, error) {
	view := c.Filter(corpus.FilterOptions{Years: yearsIn(it)})

	type scored struct {
		doc   corpus.Document
		value float64
	}
	var rows []scored
	for _, d := range view.Documents {
		if v, ok := score(&d, it.Pillar); ok {
			rows = append(rows, scored{doc: d, value: v})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no documents carry %s", ErrNoData, pillarLabel(it.Pillar))
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			if descending {
				return rows[i].value > rows[j].value
			}
			return rows[i].value < rows[j].value
		}
		if rows[i].doc.Country != rows[j].doc.Country {
			return rows[i].doc.Country < rows[j].doc.Country
		}
		return rows[i].doc.Year < rows[j].doc.Year
	})

	k := it.K
	if k <= 0 {
		k = DefaultK
	}
	if k > len(rows) {
		k = len(rows)
	}

	docs := make([]corpus.Document, k)
	for i := 0; i < k; i++ {
		docs[i] = rows[i].doc
	}

	direction := "descending"
	if !descending {
		direction = "ascending"
	}
	return &Result{
		Documents: docs,
		Pillar:    it.Pillar,
		Explanation: fmt.Sprintf("ranked %d documents by %s (%s), returning %d",
			len(rows), pillarLabel(it.Pillar), direction, k),
	}, nil
}

// comparison filters to the named countries. Fewer than two resolvable
// countries is an ambiguous request that must be clarified, not guessed.
func comparison(it intent.Intent, c *corpus.Corpus) (*Result, error) {
	if len(it.Countries) < 2 {
		return nil, fmt.Errorf("%w: a comparison needs at least two known countries, got %d",
			ErrInsufficientEntities, len(it.Countries))
	}

	view := c.Filter(corpus.FilterOptions{Countries: it.Countries, Years: yearsIn(it)})
	if view.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents for %s", ErrNoData, strings.Join(it.Countries, ", "))
	}

	docs := append([]corpus.Document(nil), view.Documents...)
	sort.Slice(docs, func(i, j int) bool {
		vi, _ := score(&docs[i], it.Pillar)
		vj, _ := score(&docs[j], it.Pillar)
		if vi != vj {
			return vi > vj
		}
		if docs[i].Country != docs[j].Country {
			return docs[i].Country < docs[j].Country
		}
		return docs[i].Year < docs[j].Year
	})

	return &Result{
		Documents: docs,
		Pillar:    it.Pillar,
		Explanation: fmt.Sprintf("compared %s on %s",
			strings.Join(it.Countries, " and "), pillarLabel(it.Pillar)),
	}, nil
}

// trend returns one country's documents sorted ascending by year with a
// simple endpoint slope. Missing years inside the observed span are
// reported, never interpolated.
func trend(it intent.Intent, c *corpus.Corpus) (*Result, error) {
	if len(it.Countries) == 0 {
		return nil, fmt.Errorf("%w: a trend question needs a country", ErrInsufficientEntities)
	}
	country := it.Countries[0]

	view := c.Filter(corpus.FilterOptions{Countries: []string{country}, Years: yearsIn(it)})
	if view.Len() == 0 {
		return nil, fmt.Errorf("%w: no documents for %s", ErrNoData, country)
	}

	docs := append([]corpus.Document(nil), view.Documents...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].Year < docs[j].Year })

	result := &Result{
		Documents: docs,
		Pillar:    it.Pillar,
	}

	if len(docs) < 2 {
		result.Explanation = fmt.Sprintf("only one year of data for %s; no trend computable", country)
		return result, nil
	}

	first, last := docs[0], docs[len(docs)-1]
	firstVal, _ := score(&first, it.Pillar)
	lastVal, _ := score(&last, it.Pillar)
	result.Slope = (lastVal - firstVal) / float64(last.Year-first.Year)

	switch {
	case math.Abs(result.Slope) < StableSlopeThreshold:
		result.Direction = "stable"
	case result.Slope > 0:
		result.Direction = "improving"
	default:
		result.Direction = "declining"
	}

	have := make(map[int]struct{}, len(docs))
	for _, d := range docs {
		have[d.Year] = struct{}{}
	}
	for y := first.Year + 1; y < last.Year; y++ {
		if _, ok := have[y]; !ok {
			result.MissingYears = append(result.MissingYears, y)
		}
	}

	result.Explanation = fmt.Sprintf("%s %s on %s between %d and %d (%.3f per year)",
		country, result.Direction, pillarLabel(it.Pillar), first.Year, last.Year, result.Slope)
	if len(result.MissingYears) > 0 {
		result.Explanation += fmt.Sprintf("; no data for %s", joinYears(result.MissingYears))
	}
	return result, nil
}

// lookup is an exact filter by the extracted entities.
func lookup(it intent.Intent, c *corpus.Corpus) (*Result, error) {
	if len(it.Countries) == 0 {
		return nil, fmt.Errorf("%w: a lookup needs a country", ErrInsufficientEntities)
	}
	country := it.Countries[0]

	view := c.Filter(corpus.FilterOptions{Countries: []string{country}, Years: yearsIn(it)})
	if view.Len() == 0 {
		label := country
		if it.YearFrom != 0 {
			label = fmt.Sprintf("%s in %s", country, joinYears(yearsIn(it)))
		}
		return nil, fmt.Errorf("%w: no documents for %s", ErrNoData, label)
	}

	docs := append([]corpus.Document(nil), view.Documents...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].Year < docs[j].Year })

	return &Result{
		Documents:   docs,
		Pillar:      it.Pillar,
		Explanation: fmt.Sprintf("looked up %d document(s) for %s", len(docs), country),
	}, nil
}

// similarity is the fallback path: embed the question, take top-k from
// the epoch's index. The index covers the full corpus while c may be a
// filtered view, so the search over-fetches until k in-view hits are
// found or the index is exhausted, then keeps the first k.
func similarity(ctx context.Context, it intent.Intent, c *corpus.Corpus, provider IndexProvider) (*Result, error) {
	searcher, err := provider.Searcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("building similarity index: %w", err)
	}

	k := it.K
	if k <= 0 {
		k = DefaultK
	}

	fetchK := k
	var hits []index.Hit
	for {
		hits, err = searcher.SearchText(ctx, it.Question, fetchK)
		if err != nil {
			if errors.Is(err, index.ErrEmptyIndex) {
				return nil, fmt.Errorf("%w: corpus is empty", ErrNoData)
			}
			return nil, err
		}
		if inViewCount(hits, c) >= k || len(hits) < fetchK {
			break
		}
		fetchK *= 4
	}

	result := &Result{
		Scores:      make(map[string]float64, k),
		Explanation: fmt.Sprintf("similarity search over %d documents", c.Len()),
	}
	for _, hit := range hits {
		doc, ok := c.Get(hit.DocID)
		if !ok {
			continue // outside the filtered view, or a stale remote point
		}
		result.Documents = append(result.Documents, *doc)
		result.Scores[hit.DocID] = hit.Score
		if len(result.Documents) == k {
			break
		}
	}
	if len(result.Documents) == 0 {
		return nil, fmt.Errorf("%w: nothing relevant found", ErrNoData)
	}
	return result, nil
}

func inViewCount(hits []index.Hit, c *corpus.Corpus) int {
	n := 0
	for _, hit := range hits {
		if _, ok := c.Get(hit.DocID); ok {
			n++
		}
	}
	return n
}

func yearsIn(it intent.Intent) []int {
	if it.YearFrom == 0 {
		return nil
	}
	years := make([]int, 0, it.YearTo-it.YearFrom+1)
	for y := it.YearFrom; y <= it.YearTo; y++ {
		years = append(years, y)
	}
	return years
}

func pillarLabel(pillar string) string {
	if pillar == "" {
		return "composite ADEI score"
	}
	return pillar
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
