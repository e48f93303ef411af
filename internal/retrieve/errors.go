package retrieve

import "errors"

var (
	// ErrInsufficientEntities signals an ambiguous request (e.g. a
	// comparison with fewer than two resolvable countries). Callers
	// surface it as a clarification prompt, never a partial answer.
	ErrInsufficientEntities = errors.New("not enough entities resolved from question")

	// ErrNoData signals that the filters matched zero documents. Callers
	// surface it as an explicit "no data" answer, not a crash.
	ErrNoData = errors.New("no data matches the request")
)
