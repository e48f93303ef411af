package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oic-analytics/adei-insight/internal/engine"
)

// makeAskHandler creates the ask_question tool handler. The engine
// guarantees an answer object for every retrieval outcome; only
// infrastructure failures surface as tool errors.
func makeAskHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		ans, err := eng.Ask(ctx, input.Question, engine.Filters{
			Countries: input.Countries,
			Years:     input.Years,
			Pillars:   input.Pillars,
		})
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("ask failed: %w", err)
		}

		sources := ans.Sources
		if sources == nil {
			sources = []string{} // ensure non-nil for JSON marshaling
		}
		return nil, AskOutput{
			InteractionID: ans.InteractionID,
			Answer:        ans.Text,
			Confidence:    ans.ConfidenceStr,
			Sources:       sources,
			Explanation:   ans.Explanation,
		}, nil
	}
}

// makeFeedbackHandler creates the record_feedback tool handler.
func makeFeedbackHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, FeedbackInput,
) (*mcp.CallToolResult, FeedbackOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FeedbackInput) (
		*mcp.CallToolResult, FeedbackOutput, error,
	) {
		if err := eng.RecordFeedback(ctx, input.InteractionID, input.Rating, input.Comment); err != nil {
			return nil, FeedbackOutput{
				Recorded: false,
				Message:  err.Error(),
			}, nil
		}
		return nil, FeedbackOutput{Recorded: true}, nil
	}
}

// makeRefreshHandler creates the refresh_corpus tool handler.
func makeRefreshHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, RefreshInput,
) (*mcp.CallToolResult, RefreshOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RefreshInput) (
		*mcp.CallToolResult, RefreshOutput, error,
	) {
		if err := eng.Refresh(ctx); err != nil {
			return nil, RefreshOutput{}, fmt.Errorf("refresh failed: %w", err)
		}
		status, err := eng.Status(ctx)
		if err != nil {
			return nil, RefreshOutput{}, fmt.Errorf("status after refresh failed: %w", err)
		}
		return nil, RefreshOutput{Status: status}, nil
	}
}

// makeStatusHandler creates the get_corpus_status tool handler.
func makeStatusHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		status, err := eng.Status(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("status failed: %w", err)
		}
		return nil, StatusOutput{Status: status}, nil
	}
}
