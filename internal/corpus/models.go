// Package corpus materializes indicator records into the retrieval units
// used by the query engine. The whole corpus is rebuilt atomically per
// cache epoch and never patched in place.
package corpus

import (
	"sort"
	"strings"

	"github.com/oic-analytics/adei-insight/internal/indicator"
)

// Document is one country-year snapshot: a generated text summary plus
// the structured pillar values it was rendered from.
type Document struct {
	ID      string
	Country string
	Year    int
	Text    string
	Pillars map[string]float64
}

// Value returns the document's value for a pillar.
func (d *Document) Value(pillar string) (float64, bool) {
	v, ok := d.Pillars[pillar]
	return v, ok
}

// Composite is the arithmetic mean of the document's pillar values,
// used as the ranking score when no pillar is named.
func (d *Document) Composite() float64 {
	if len(d.Pillars) == 0 {
		return 0
	}
	var sum float64
	for _, v := range d.Pillars {
		sum += v
	}
	return sum / float64(len(d.Pillars))
}

// Corpus is an immutable set of documents for one epoch, sorted by ID.
type Corpus struct {
	Documents []Document
	byID      map[string]int
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id string) (*Document, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.Documents[i], true
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.Documents) }

// Countries returns the distinct country names in the corpus, sorted.
func (c *Corpus) Countries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range c.Documents {
		if _, ok := seen[d.Country]; !ok {
			seen[d.Country] = struct{}{}
			out = append(out, d.Country)
		}
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years in the corpus, ascending.
func (c *Corpus) Years() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, d := range c.Documents {
		if _, ok := seen[d.Year]; !ok {
			seen[d.Year] = struct{}{}
			out = append(out, d.Year)
		}
	}
	sort.Ints(out)
	return out
}

// FilterOptions narrows a corpus view before intent-specific retrieval.
type FilterOptions struct {
	Countries []string
	Years     []int
	Pillars   []string
}

// Filter returns a corpus restricted to the given countries, years and
// pillars. Country matching is case-insensitive exact. Pillar filtering
// keeps documents that carry at least one of the named pillars; the
// documents themselves are unchanged.
func (c *Corpus) Filter(opts FilterOptions) *Corpus {
	if len(opts.Countries) == 0 && len(opts.Years) == 0 && len(opts.Pillars) == 0 {
		return c
	}

	countries := make(map[string]struct{}, len(opts.Countries))
	for _, name := range opts.Countries {
		countries[strings.ToLower(name)] = struct{}{}
	}
	years := make(map[int]struct{}, len(opts.Years))
	for _, y := range opts.Years {
		years[y] = struct{}{}
	}

	var kept []Document
	for _, d := range c.Documents {
		if len(countries) > 0 {
			if _, ok := countries[strings.ToLower(d.Country)]; !ok {
				continue
			}
		}
		if len(years) > 0 {
			if _, ok := years[d.Year]; !ok {
				continue
			}
		}
		if len(opts.Pillars) > 0 {
			any := false
			for _, p := range opts.Pillars {
				if _, ok := d.Pillars[p]; ok {
					any = true
					break
				}
			}
			if !any {
				continue
			}
		}
		kept = append(kept, d)
	}
	return newCorpus(kept)
}

func newCorpus(docs []Document) *Corpus {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	byID := make(map[string]int, len(docs))
	for i, d := range docs {
		byID[d.ID] = i
	}
	return &Corpus{Documents: docs, byID: byID}
}

// pillarRank orders pillar names for rendering: dataset pillars in their
// canonical order, anything unknown after them alphabetically.
func pillarRank(name string) int {
	for i, p := range indicator.Pillars {
		if p == name {
			return i
		}
	}
	return len(indicator.Pillars)
}
