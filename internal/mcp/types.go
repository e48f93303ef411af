// Package mcp exposes the ADEI query engine over the Model Context
// Protocol.
package mcp

import "github.com/oic-analytics/adei-insight/internal/engine"

// AskInput defines the input parameters for the ask_question tool.
type AskInput struct {
	// Question is the natural-language question about the dataset.
	Question string `json:"question" jsonschema:"required,description=Natural-language question about the ADEI country-indicator dataset"`
	// Countries optionally limits retrieval to these countries.
	Countries []string `json:"countries,omitempty" jsonschema:"description=Limit retrieval to these countries"`
	// Years optionally limits retrieval to these years.
	Years []int `json:"years,omitempty" jsonschema:"description=Limit retrieval to these years"`
	// Pillars optionally limits retrieval to these development pillars.
	Pillars []string `json:"pillars,omitempty" jsonschema:"description=Limit retrieval to these development pillars"`
}

// AskOutput contains the synthesized answer.
type AskOutput struct {
	// InteractionID correlates this answer with later feedback.
	InteractionID string `json:"interaction_id"`
	// Answer is the synthesized answer text.
	Answer string `json:"answer"`
	// Confidence is "high", "medium" or "low".
	Confidence string `json:"confidence"`
	// Sources lists the ids of the documents the answer was built from.
	Sources []string `json:"sources"`
	// Explanation describes how the documents were selected.
	Explanation string `json:"explanation,omitempty"`
}

// FeedbackInput defines the input parameters for the record_feedback tool.
type FeedbackInput struct {
	// InteractionID is the id returned by ask_question.
	InteractionID string `json:"interaction_id" jsonschema:"required,description=Interaction id returned by ask_question"`
	// Rating is the answer quality rating from 1 (poor) to 5 (great).
	Rating int `json:"rating" jsonschema:"required,minimum=1,maximum=5,description=Answer quality rating from 1 (poor) to 5 (great)"`
	// Comment is optional free-text feedback.
	Comment string `json:"comment,omitempty" jsonschema:"description=Optional free-text feedback"`
}

// FeedbackOutput acknowledges a recorded rating.
type FeedbackOutput struct {
	Recorded bool   `json:"recorded"`
	Message  string `json:"message,omitempty"`
}

// RefreshInput defines the input for the refresh_corpus tool.
// The tool takes no parameters and forces an immediate rebuild.
type RefreshInput struct{}

// RefreshOutput reports on the freshly built snapshot.
type RefreshOutput struct {
	Status engine.Status `json:"status"`
}

// StatusInput defines the input for the get_corpus_status tool.
type StatusInput struct{}

// StatusOutput reports on the current snapshot.
type StatusOutput struct {
	Status engine.Status `json:"status"`
}
