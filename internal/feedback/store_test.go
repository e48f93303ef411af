package feedback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Record(ctx, Entry{
		InteractionID: "abc-123",
		Question:      "top countries in 2023",
		Answer:        "Qatar leads",
		Sources:       []string{"qatar-2023"},
		Rating:        RatingThumbsUp,
		Comment:       "useful",
	})
	require.NoError(t, err)
}

func TestRecord_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := Entry{InteractionID: "dup-1", Question: "q", Answer: "a", Rating: 3}
	require.NoError(t, s.Record(ctx, entry))

	err := s.Record(ctx, entry)
	assert.ErrorIs(t, err, ErrDuplicateFeedback)
}

func TestRecord_InvalidRating(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		err := s.Record(ctx, Entry{InteractionID: "r", Question: "q", Answer: "a", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}
