package answer

import (
	"fmt"
	"strings"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/intent"
	"github.com/oic-analytics/adei-insight/internal/retrieve"
)

// Synthesize renders the retrieval result for the given intent.
// Structured intents with at least one row answer with High confidence;
// similarity answers are Medium, or Low when every score sits below
// LowRelevanceThreshold.
func Synthesize(it intent.Intent, res *retrieve.Result) Answer {
	a := Answer{
		Sources:     sourceIDs(res.Documents),
		Explanation: res.Explanation,
	}

	switch it.Kind {
	case intent.TopPerformers:
		a.Confidence = High
		a.Text = renderRanking("Top performing countries", it, res)
	case intent.BottomPerformers:
		a.Confidence = High
		a.Text = renderRanking("Countries with the lowest performance", it, res)
	case intent.Comparison:
		a.Confidence = High
		a.Text = renderComparison(it, res)
	case intent.Trend:
		a.Confidence = High
		a.Text = renderTrend(it, res)
	case intent.Lookup:
		a.Confidence = High
		a.Text = renderLookup(it, res)
	default:
		a.Confidence = Medium
		if allBelowThreshold(res) {
			a.Confidence = Low
			a.Text = "No strongly relevant data was found for this question. " +
				"The closest matches are listed as sources; try naming specific countries, years or pillars."
		} else {
			a.Text = renderSimilarity(res)
		}
	}

	a.ConfidenceStr = a.Confidence.String()
	return a
}

// Clarification converts an ambiguous-request failure into a prompt for
// more detail instead of a guessed answer.
func Clarification(err error) Answer {
	return Answer{
		Text: "The question is ambiguous: " + reason(err) +
			". Please name the countries (at least two for a comparison) and try again.",
		Sources:       []string{},
		Confidence:    Low,
		ConfidenceStr: Low.String(),
		Explanation:   reason(err),
	}
}

// NoData converts a zero-match failure into an explicit "no data" answer.
func NoData(err error) Answer {
	return Answer{
		Text:          "No data is available for this request: " + reason(err) + ".",
		Sources:       []string{},
		Confidence:    Low,
		ConfidenceStr: Low.String(),
		Explanation:   reason(err),
	}
}

func reason(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

func renderRanking(header string, it intent.Intent, res *retrieve.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s by %s:**\n\n", header, pillarLabel(it.Pillar))

	var sum float64
	for i, d := range res.Documents {
		v := docValue(&d, it.Pillar)
		sum += v
		fmt.Fprintf(&b, "%d. **%s** — %.3f (%d)\n", i+1, d.Country, v, d.Year)
	}
	if len(res.Documents) > 0 {
		fmt.Fprintf(&b, "\nAverage score among these countries: **%.3f**",
			sum/float64(len(res.Documents)))
	}
	return b.String()
}

func renderComparison(it intent.Intent, res *retrieve.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Comparison on %s:**\n\n", pillarLabel(it.Pillar))
	for i, d := range res.Documents {
		fmt.Fprintf(&b, "%d. **%s** (%d): %.3f\n", i+1, d.Country, d.Year, docValue(&d, it.Pillar))
	}

	// Documents arrive sorted by value descending; the leader is first.
	if len(res.Documents) >= 2 {
		lead := res.Documents[0]
		second := res.Documents[1]
		if lead.Country != second.Country {
			fmt.Fprintf(&b, "\n**%s** scores higher with %.3f against %s's %.3f.",
				lead.Country, docValue(&lead, it.Pillar), second.Country, docValue(&second, it.Pillar))
		}
	}
	return b.String()
}

func renderTrend(it intent.Intent, res *retrieve.Result) string {
	var b strings.Builder
	country := ""
	if len(res.Documents) > 0 {
		country = res.Documents[0].Country
	}
	fmt.Fprintf(&b, "**Trend for %s on %s:**\n\n", country, pillarLabel(it.Pillar))
	for _, d := range res.Documents {
		fmt.Fprintf(&b, "- %d: %.3f\n", d.Year, docValue(&d, it.Pillar))
	}

	switch {
	case res.Direction == "":
		b.WriteString("\nOnly one year of data is available, so no trend can be computed.")
	default:
		first := res.Documents[0]
		last := res.Documents[len(res.Documents)-1]
		fmt.Fprintf(&b, "\n%s %s by %.3f points per year (%.3f in %d to %.3f in %d).",
			country, res.Direction, absSlope(res.Slope),
			docValue(&first, it.Pillar), first.Year,
			docValue(&last, it.Pillar), last.Year)
	}
	if len(res.MissingYears) > 0 {
		fmt.Fprintf(&b, " No data for %s.", joinYears(res.MissingYears))
	}
	return b.String()
}

func renderLookup(it intent.Intent, res *retrieve.Result) string {
	var b strings.Builder
	b.WriteString("**Lookup results:**\n\n")
	for _, d := range res.Documents {
		if it.Pillar != "" {
			fmt.Fprintf(&b, "- **%s** (%d): %s %.3f\n", d.Country, d.Year, it.Pillar, docValue(&d, it.Pillar))
			continue
		}
		fmt.Fprintf(&b, "- %s\n", d.Text)
	}
	return b.String()
}

func renderSimilarity(res *retrieve.Result) string {
	var b strings.Builder
	b.WriteString("**Most relevant data points:**\n\n")
	for i, d := range res.Documents {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s (similarity %.3f)\n", i+1, d.Text, res.Scores[d.ID])
	}
	return b.String()
}

func allBelowThreshold(res *retrieve.Result) bool {
	for _, s := range res.Scores {
		if s >= LowRelevanceThreshold {
			return false
		}
	}
	return true
}

func docValue(d *corpus.Document, pillar string) float64 {
	if pillar == "" {
		return d.Composite()
	}
	v, _ := d.Value(pillar)
	return v
}

func sourceIDs(docs []corpus.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func pillarLabel(pillar string) string {
	if pillar == "" {
		return "composite ADEI score"
	}
	return pillar
}

func absSlope(s float64) float64 {
	if s < 0 {
		return -s
	}
	return s
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprintf("%d", y)
	}
	return strings.Join(parts, ", ")
}
