package intent

import (
	"strconv"
	"strings"

	"github.com/oic-analytics/adei-insight/internal/indicator"
)

// Keyword vocabularies driving the rule-based classification, lifted from
// the question patterns the dashboard's users actually ask.
var (
	compareWords = map[string]struct{}{
		"compare": {}, "comparison": {}, "versus": {}, "vs": {},
	}
	topWords = map[string]struct{}{
		"top": {}, "best": {}, "highest": {}, "leading": {}, "strongest": {},
	}
	bottomWords = map[string]struct{}{
		"bottom": {}, "worst": {}, "lowest": {}, "weakest": {},
	}
	trendWords = map[string]struct{}{
		"trend": {}, "trends": {}, "improve": {}, "improved": {}, "improving": {},
		"improvement": {}, "decline": {}, "declined": {}, "declining": {},
		"change": {}, "changed": {}, "progress": {}, "evolution": {}, "evolved": {},
	}
)

// pillarAliases maps normalized keywords to canonical pillar names.
var pillarAliases = map[string]string{
	"economic":      "Economic Opportunities",
	"economy":       "Economic Opportunities",
	"opportunities": "Economic Opportunities",
	"education":     "Educational Attainment",
	"educational":   "Educational Attainment",
	"attainment":    "Educational Attainment",
	"health":        "Health & Survival",
	"survival":      "Health & Survival",
	"political":     "Political Empowerment",
	"politics":      "Political Empowerment",
	"empowerment":   "Political Empowerment",
	"assets":        "Access to Assets",
	"land":          "Access to Assets",
	"justice":       "Access to Justice",
	"agency":        "Agency & Participation",
	"participation": "Agency & Participation",
	"voice":         "Agency & Participation",
	"care":          "Time Use & Care Work",
	"unpaid":        "Time Use & Care Work",
}

// countryAliases maps common short forms to the dataset's full country
// names. An alias only activates when its canonical name is actually in
// the store's vocabulary.
var countryAliases = map[string]string{
	"uae":      "United Arab Emirates",
	"emirates": "United Arab Emirates",
	"ksa":      "Saudi Arabia",
	"drc":      "Democratic Republic of the Congo",
}

// Classifier maps a raw question to an Intent. It never errors:
// unparseable input classifies as Unclassified.
type Classifier struct {
	// normalized country token sequences -> canonical name,
	// longest sequences first so "united arab emirates" wins over any
	// single-token prefix.
	countries []countryEntry
	years     indicator.YearRange
}

type countryEntry struct {
	tokens    []string
	canonical string
}

// NewClassifier builds a classifier over the store's country vocabulary
// and valid year range.
func NewClassifier(countries []string, years indicator.YearRange) *Classifier {
	known := make(map[string]struct{}, len(countries))
	entries := make([]countryEntry, 0, len(countries))
	for _, name := range countries {
		known[name] = struct{}{}
		entries = append(entries, countryEntry{
			tokens:    normalize(name),
			canonical: name,
		})
	}
	for alias, canonical := range countryAliases {
		if _, ok := known[canonical]; ok {
			entries = append(entries, countryEntry{
				tokens:    []string{alias},
				canonical: canonical,
			})
		}
	}
	// Longest token sequence first, then alphabetical for determinism.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if len(b.tokens) > len(a.tokens) || (len(b.tokens) == len(a.tokens) && b.canonical < a.canonical) {
				entries[j-1], entries[j] = b, a
			} else {
				break
			}
		}
	}
	return &Classifier{countries: entries, years: years}
}

// Classify maps a question to an intent with extracted entities.
func (c *Classifier) Classify(question string) Intent {
	tokens := normalize(question)
	it := Intent{Kind: Unclassified, Question: question}
	if len(tokens) == 0 {
		return it
	}

	it.Countries = c.matchCountries(tokens)
	it.YearFrom, it.YearTo = c.matchYears(tokens)
	it.Pillar = matchPillar(tokens)

	hasCompare := containsAny(tokens, compareWords)
	hasTop := containsAny(tokens, topWords)
	hasBottom := containsAny(tokens, bottomWords)
	hasTrend := containsAny(tokens, trendWords)

	switch {
	case hasCompare || len(it.Countries) >= 2:
		it.Kind = Comparison
	case hasTop:
		it.Kind = TopPerformers
		it.K = matchCount(tokens, c.years)
	case hasBottom:
		it.Kind = BottomPerformers
		it.K = matchCount(tokens, c.years)
	case hasTrend:
		it.Kind = Trend
	case len(it.Countries) == 1:
		it.Kind = Lookup
	default:
		it.Kind = Unclassified
	}
	return it
}

// matchCountries finds known countries in the token stream. Exact token
// sequence matches take priority; a bounded edit-distance (1) fallback
// over single-token names catches minor misspellings without inviting
// false positives on short words.
func (c *Classifier) matchCountries(tokens []string) []string {
	type match struct {
		pos  int
		name string
	}
	var matches []match
	seen := make(map[string]struct{})
	used := make([]bool, len(tokens))

	for _, entry := range c.countries {
		if len(entry.tokens) == 0 {
			continue
		}
		for i := 0; i+len(entry.tokens) <= len(tokens); i++ {
			if used[i] {
				continue
			}
			ok := true
			for j, want := range entry.tokens {
				if used[i+j] || tokens[i+j] != want {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			if _, dup := seen[entry.canonical]; !dup {
				seen[entry.canonical] = struct{}{}
				matches = append(matches, match{pos: i, name: entry.canonical})
			}
			for j := range entry.tokens {
				used[i+j] = true
			}
		}
	}

	// Fuzzy pass over leftover tokens, exact matches already claimed.
	for i, tok := range tokens {
		if used[i] || len(tok) < 5 {
			continue
		}
		for _, entry := range c.countries {
			if len(entry.tokens) != 1 {
				continue
			}
			if _, dup := seen[entry.canonical]; dup {
				continue
			}
			if editDistance(tok, entry.tokens[0]) == 1 {
				seen[entry.canonical] = struct{}{}
				matches = append(matches, match{pos: i, name: entry.canonical})
				used[i] = true
				break
			}
		}
	}

	// Order of appearance in the question.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].pos < matches[j-1].pos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// matchYears extracts 4-digit tokens inside the store's valid range.
// Out-of-range years are dropped, not errors.
func (c *Classifier) matchYears(tokens []string) (from, to int) {
	for _, tok := range tokens {
		if len(tok) != 4 {
			continue
		}
		y, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if y < c.years.Min || y > c.years.Max {
			continue
		}
		if from == 0 || y < from {
			from = y
		}
		if to == 0 || y > to {
			to = y
		}
	}
	return from, to
}

func matchPillar(tokens []string) string {
	for _, tok := range tokens {
		if canonical, ok := pillarAliases[tok]; ok {
			return canonical
		}
	}
	return ""
}

// matchCount finds an explicit result count like "top 3". Valid years
// never qualify, so "top countries in 2023" keeps the default.
func matchCount(tokens []string, years indicator.YearRange) int {
	for i, tok := range tokens {
		if _, ok := topWords[tok]; !ok {
			if _, ok := bottomWords[tok]; !ok {
				continue
			}
		}
		if i+1 >= len(tokens) {
			continue
		}
		n, err := strconv.Atoi(tokens[i+1])
		if err != nil || n <= 0 {
			continue
		}
		if n >= years.Min && n <= years.Max {
			continue // a year, not a count
		}
		return n
	}
	return 0
}

func containsAny(tokens []string, vocab map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := vocab[tok]; ok {
			return true
		}
	}
	return false
}

// Pillar returns the canonical pillar name for a free-text label, used
// when callers pass pillar filters outside a question.
func Pillar(label string) (string, bool) {
	for _, p := range indicator.Pillars {
		if strings.EqualFold(p, label) {
			return p, true
		}
	}
	for _, tok := range normalize(label) {
		if canonical, ok := pillarAliases[tok]; ok {
			return canonical, true
		}
	}
	return "", false
}
