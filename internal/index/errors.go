package index

import "errors"

var (
	ErrEmptyIndex        = errors.New("index contains no documents")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
)
