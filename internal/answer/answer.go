// Package answer turns retrieved document sets into human-readable
// answers. Text is assembled from templates over document metadata only:
// the synthesizer never states a number that is not present in the
// retrieved documents, since fabricated figures against a quantitative
// dataset are the primary correctness risk.
package answer

import "time"

// Confidence grades how much the answer text can be trusted.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

// String returns the confidence's display name.
func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	default:
		return "low"
	}
}

// LowRelevanceThreshold is the cosine similarity below which a
// similarity-based answer is downgraded to Low confidence and the text
// states that nothing strongly relevant was found. The original never
// documented its cutoff; this one is fixed here and tuned for the hashed
// bag-of-words embedder (OpenAI embeddings score systematically higher).
const LowRelevanceThreshold = 0.25

// Answer is the engine's user-visible result. Callers always get one:
// retrieval failures become explanatory Low-confidence answers.
type Answer struct {
	InteractionID string     `json:"interaction_id"`
	Text          string     `json:"text"`
	Sources       []string   `json:"sources"`
	Confidence    Confidence `json:"-"`
	ConfidenceStr string     `json:"confidence"`
	Explanation   string     `json:"explanation,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
