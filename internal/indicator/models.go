// Package indicator provides read access to the ADEI country-indicator table.
package indicator

// Pillars are the eight development pillars tracked per country-year.
// Names match the dataset's display names and are the canonical pillar
// vocabulary for the rest of the engine.
var Pillars = []string{
	"Economic Opportunities",
	"Educational Attainment",
	"Health & Survival",
	"Political Empowerment",
	"Access to Assets",
	"Access to Justice",
	"Agency & Participation",
	"Time Use & Care Work",
}

// Record is one indicator observation. Records are immutable and sourced
// entirely from the external store; (Country, Year, Pillar) is the
// uniqueness key.
type Record struct {
	Country string
	Year    int
	Pillar  string
	Value   float64
}

// Filter narrows a store query. Zero values mean "no constraint".
type Filter struct {
	Countries []string // exact country names
	YearFrom  int
	YearTo    int
	Pillars   []string
}

// YearRange is the span of years present in the store.
type YearRange struct {
	Min int
	Max int
}
