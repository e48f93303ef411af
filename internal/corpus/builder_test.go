package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/oic-analytics/adei-insight/internal/indicator"
)

// TestBuild_GroupsByCountryYear tests that one document is emitted per
// (country, year) group with all pillar values attached.
func TestBuild_GroupsByCountryYear(t *testing.T) {
	records := []indicator.Record{
		{Country: "Qatar", Year: 2023, Pillar: "Health & Survival", Value: 0.71},
		{Country: "Qatar", Year: 2023, Pillar: "Educational Attainment", Value: 0.88},
		{Country: "Qatar", Year: 2022, Pillar: "Health & Survival", Value: 0.69},
		{Country: "Jordan", Year: 2023, Pillar: "Health & Survival", Value: 0.64},
	}

	c, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if c.Len() != 3 {
		t.Fatalf("Expected 3 documents, got %d", c.Len())
	}

	doc, ok := c.Get("qatar-2023")
	if !ok {
		t.Fatal("Expected document qatar-2023")
	}
	if len(doc.Pillars) != 2 {
		t.Errorf("Expected 2 pillars on qatar-2023, got %d", len(doc.Pillars))
	}
	if v, _ := doc.Value("Educational Attainment"); v != 0.88 {
		t.Errorf("Educational Attainment: expected 0.88, got %g", v)
	}
}

// TestBuild_Deterministic tests that two builds from identical input
// produce byte-identical document order and text.
func TestBuild_Deterministic(t *testing.T) {
	records := []indicator.Record{
		{Country: "Morocco", Year: 2021, Pillar: "Access to Justice", Value: 0.52},
		{Country: "Morocco", Year: 2021, Pillar: "Economic Opportunities", Value: 0.47},
		{Country: "Tunisia", Year: 2021, Pillar: "Access to Justice", Value: 0.58},
	}

	a, err := Build(records)
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	b, err := Build(records)
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}

	if a.Len() != b.Len() {
		t.Fatalf("Builds disagree on length: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Documents {
		if a.Documents[i].ID != b.Documents[i].ID {
			t.Errorf("Document %d: id %q vs %q", i, a.Documents[i].ID, b.Documents[i].ID)
		}
		if a.Documents[i].Text != b.Documents[i].Text {
			t.Errorf("Document %d: text differs between builds", i)
		}
	}
}

// TestBuild_AmbiguousRecord tests that conflicting duplicate rows fail
// while exact duplicates collapse silently.
func TestBuild_AmbiguousRecord(t *testing.T) {
	exact := []indicator.Record{
		{Country: "Oman", Year: 2020, Pillar: "Time Use & Care Work", Value: 0.40},
		{Country: "Oman", Year: 2020, Pillar: "Time Use & Care Work", Value: 0.40},
	}
	c, err := Build(exact)
	if err != nil {
		t.Fatalf("exact duplicates should collapse, got error: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 document, got %d", c.Len())
	}

	conflicting := []indicator.Record{
		{Country: "Oman", Year: 2020, Pillar: "Time Use & Care Work", Value: 0.40},
		{Country: "Oman", Year: 2020, Pillar: "Time Use & Care Work", Value: 0.41},
	}
	_, err = Build(conflicting)
	if !errors.Is(err, ErrAmbiguousRecord) {
		t.Fatalf("Expected ErrAmbiguousRecord, got %v", err)
	}
}

// TestDocumentID tests slug generation for multi-word country names.
func TestDocumentID(t *testing.T) {
	if got := DocumentID("Saudi Arabia", 2023); got != "saudi-arabia-2023" {
		t.Errorf("Expected saudi-arabia-2023, got %q", got)
	}
	if got := DocumentID("Qatar", 2020); got != "qatar-2020" {
		t.Errorf("Expected qatar-2020, got %q", got)
	}
}

// TestRenderText_CanonicalPillarOrder tests that pillars render in
// dataset order regardless of input order, with the composite first.
func TestRenderText_CanonicalPillarOrder(t *testing.T) {
	records := []indicator.Record{
		{Country: "Kuwait", Year: 2022, Pillar: "Time Use & Care Work", Value: 0.30},
		{Country: "Kuwait", Year: 2022, Pillar: "Economic Opportunities", Value: 0.50},
	}
	c, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	doc, _ := c.Get("kuwait-2022")

	if !strings.HasPrefix(doc.Text, "Country: Kuwait, Year: 2022, ADEI Score: 0.400") {
		t.Errorf("Unexpected text prefix: %q", doc.Text)
	}
	eco := strings.Index(doc.Text, "Economic Opportunities")
	tuc := strings.Index(doc.Text, "Time Use & Care Work")
	if eco == -1 || tuc == -1 || eco > tuc {
		t.Errorf("Pillars out of canonical order in %q", doc.Text)
	}
}

// TestFilter tests country, year and pillar narrowing.
func TestFilter(t *testing.T) {
	records := []indicator.Record{
		{Country: "Qatar", Year: 2022, Pillar: "Health & Survival", Value: 0.7},
		{Country: "Qatar", Year: 2023, Pillar: "Health & Survival", Value: 0.72},
		{Country: "Jordan", Year: 2023, Pillar: "Access to Assets", Value: 0.55},
	}
	c, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	byCountry := c.Filter(FilterOptions{Countries: []string{"qatar"}})
	if byCountry.Len() != 2 {
		t.Errorf("Country filter: expected 2 documents, got %d", byCountry.Len())
	}

	byYear := c.Filter(FilterOptions{Years: []int{2023}})
	if byYear.Len() != 2 {
		t.Errorf("Year filter: expected 2 documents, got %d", byYear.Len())
	}

	byPillar := c.Filter(FilterOptions{Pillars: []string{"Access to Assets"}})
	if byPillar.Len() != 1 {
		t.Errorf("Pillar filter: expected 1 document, got %d", byPillar.Len())
	}

	unfiltered := c.Filter(FilterOptions{})
	if unfiltered.Len() != c.Len() {
		t.Errorf("Empty filter should return full corpus")
	}
}
