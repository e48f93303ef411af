package corpus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oic-analytics/adei-insight/internal/indicator"
)

// Build groups records by (country, year) and emits one document per
// group. Rendering is byte-deterministic: two builds from identical
// input produce identical documents, including IDs.
//
// Duplicate (country, year, pillar) rows with equal values collapse;
// differing values fail with ErrAmbiguousRecord.
func Build(records []indicator.Record) (*Corpus, error) {
	type groupKey struct {
		country string
		year    int
	}

	groups := make(map[groupKey]map[string]float64)
	for _, r := range records {
		key := groupKey{r.Country, r.Year}
		pillars, ok := groups[key]
		if !ok {
			pillars = make(map[string]float64)
			groups[key] = pillars
		}
		if existing, ok := pillars[r.Pillar]; ok && existing != r.Value {
			return nil, fmt.Errorf("%w: %s %d %q has values %g and %g",
				ErrAmbiguousRecord, r.Country, r.Year, r.Pillar, existing, r.Value)
		}
		pillars[r.Pillar] = r.Value
	}

	docs := make([]Document, 0, len(groups))
	for key, pillars := range groups {
		docs = append(docs, Document{
			ID:      DocumentID(key.country, key.year),
			Country: key.country,
			Year:    key.year,
			Text:    renderText(key.country, key.year, pillars),
			Pillars: pillars,
		})
	}
	return newCorpus(docs), nil
}

// DocumentID is the deterministic identifier for a country-year document.
func DocumentID(country string, year int) string {
	slug := strings.ToLower(country)
	slug = strings.ReplaceAll(slug, " ", "-")
	return fmt.Sprintf("%s-%d", slug, year)
}

// renderText produces the document's searchable summary. Pillars render
// in canonical dataset order so output is stable across map iteration.
func renderText(country string, year int, pillars map[string]float64) string {
	names := make([]string, 0, len(pillars))
	for name := range pillars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := pillarRank(names[i]), pillarRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Country: %s, Year: %d", country, year)

	var sum float64
	for _, name := range names {
		sum += pillars[name]
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, ", ADEI Score: %.3f", sum/float64(len(names)))
	}
	for _, name := range names {
		fmt.Fprintf(&b, ", %s: %.3f", name, pillars[name])
	}
	return b.String()
}
