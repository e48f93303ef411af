// Package intent classifies natural-language questions about the ADEI
// dataset into a closed set of retrieval intents.
package intent

// Kind is the classified purpose of a question. The router switches
// exhaustively over it, so adding a Kind without a retrieval path is a
// compile-visible change rather than a silently unhandled string.
type Kind int

const (
	Unclassified Kind = iota
	TopPerformers
	BottomPerformers
	Comparison
	Trend
	Lookup
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case TopPerformers:
		return "top_performers"
	case BottomPerformers:
		return "bottom_performers"
	case Comparison:
		return "comparison"
	case Trend:
		return "trend"
	case Lookup:
		return "lookup"
	default:
		return "unclassified"
	}
}

// Intent is a classified question with its extracted entities.
// Zero values mean "not specified": K=0 uses the default result count,
// YearFrom/YearTo=0 means the full available range.
type Intent struct {
	Kind      Kind
	Question  string
	Countries []string // canonical country names, in order of appearance
	Pillar    string   // canonical pillar name
	YearFrom  int
	YearTo    int
	K         int // requested result count for top/bottom performers
}
