package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/feedback"
	"github.com/oic-analytics/adei-insight/internal/indicator"
)

func newTestEngine(t *testing.T, records []indicator.Record) *Engine {
	t.Helper()
	dir := t.TempDir()

	store, err := indicator.Open(filepath.Join(dir, "adei.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	if len(records) > 0 {
		require.NoError(t, store.Seed(context.Background(), records))
	}

	fb, err := feedback.Open(filepath.Join(dir, "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { fb.Close() })

	return New(Config{
		Indicators: store,
		Embedder:   embedding.NewLocalEmbedder(),
		Feedback:   fb,
	})
}

func testRecords() []indicator.Record {
	return []indicator.Record{
		{Country: "Qatar", Year: 2022, Pillar: "Political Empowerment", Value: 0.41},
		{Country: "Qatar", Year: 2023, Pillar: "Political Empowerment", Value: 0.45},
		{Country: "United Arab Emirates", Year: 2023, Pillar: "Political Empowerment", Value: 0.38},
		{Country: "Jordan", Year: 2023, Pillar: "Political Empowerment", Value: 0.30},
		{Country: "Jordan", Year: 2023, Pillar: "Educational Attainment", Value: 0.64},
	}
}

func TestAsk_Comparison(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(),
		"Who scores higher on political empowerment in 2023, Qatar or the UAE?", Filters{})
	require.NoError(t, err)

	assert.Equal(t, "high", ans.ConfidenceStr)
	assert.Contains(t, ans.Text, "**Qatar** scores higher with 0.450 against United Arab Emirates's 0.380.")
	assert.Contains(t, ans.Sources, "qatar-2023")
	assert.Contains(t, ans.Sources, "united-arab-emirates-2023")
	assert.NotEmpty(t, ans.InteractionID)
}

func TestAsk_AmbiguousComparison(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(), "Compare Qatar", Filters{})
	require.NoError(t, err)

	assert.Equal(t, "low", ans.ConfidenceStr)
	assert.Contains(t, ans.Text, "ambiguous")
	assert.Empty(t, ans.Sources)
}

func TestAsk_Lookup(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(), "Tell me about education in Jordan", Filters{})
	require.NoError(t, err)

	assert.Equal(t, "high", ans.ConfidenceStr)
	assert.Contains(t, ans.Sources, "jordan-2023")
}

func TestAsk_TopPerformers(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(), "top countries on political empowerment in 2023", Filters{})
	require.NoError(t, err)

	assert.Equal(t, "high", ans.ConfidenceStr)
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "qatar-2023", ans.Sources[0])
}

func TestAsk_SimilarityFallback(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(), "situation regarding empowerment overall", Filters{})
	require.NoError(t, err)

	// Unclassified questions answer from the embedding index with
	// medium or low confidence, never high.
	assert.NotEqual(t, "high", ans.ConfidenceStr)
	assert.NotEmpty(t, ans.InteractionID)
}

func TestAsk_EmptyStore(t *testing.T) {
	eng := newTestEngine(t, nil)

	ans, err := eng.Ask(context.Background(), "top countries", Filters{})
	require.NoError(t, err)

	assert.Equal(t, "low", ans.ConfidenceStr)
	assert.Contains(t, ans.Text, "No data is available")
}

func TestAsk_CountryFilter(t *testing.T) {
	eng := newTestEngine(t, testRecords())

	ans, err := eng.Ask(context.Background(), "top countries on political empowerment",
		Filters{Countries: []string{"Jordan"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"jordan-2023"}, ans.Sources)
}

func TestAsk_SimilarityWithCountryFilter(t *testing.T) {
	// Enough alphabetically earlier countries that the default top-k
	// page over the full index holds no Jordan document.
	names := []string{"Algeria", "Bahrain", "Comoros", "Djibouti", "Egypt", "Iraq", "Jordan"}
	records := make([]indicator.Record, 0, len(names))
	for _, name := range names {
		records = append(records, indicator.Record{
			Country: name, Year: 2023, Pillar: "Health & Survival", Value: 0.5,
		})
	}
	eng := newTestEngine(t, records)

	ans, err := eng.Ask(context.Background(), "overall situation please",
		Filters{Countries: []string{"Jordan"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"jordan-2023"}, ans.Sources)
	assert.NotContains(t, ans.Text, "No data is available")
}

func TestAsk_IndexBuildRetriesAfterFailure(t *testing.T) {
	eng := newTestEngine(t, testRecords())
	ctx := context.Background()

	// Warm the snapshot so the cancelled context hits the lazy index
	// build rather than the corpus rebuild.
	_, err := eng.Status(ctx)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = eng.Ask(cancelled, "situation regarding empowerment overall", Filters{})
	require.Error(t, err)

	// The failed build must not stick for the rest of the epoch.
	ans, err := eng.Ask(ctx, "situation regarding empowerment overall", Filters{})
	require.NoError(t, err)
	assert.NotEmpty(t, ans.InteractionID)
}

func TestRecordFeedback(t *testing.T) {
	eng := newTestEngine(t, testRecords())
	ctx := context.Background()

	ans, err := eng.Ask(ctx, "Tell me about Jordan", Filters{})
	require.NoError(t, err)

	require.NoError(t, eng.RecordFeedback(ctx, ans.InteractionID, feedback.RatingThumbsUp, "good"))

	// Duplicate submissions are swallowed, not surfaced.
	assert.NoError(t, eng.RecordFeedback(ctx, ans.InteractionID, feedback.RatingThumbsDown, ""))

	// Unknown interaction ids fail.
	assert.Error(t, eng.RecordFeedback(ctx, "no-such-interaction", 3, ""))
}

func TestStatusAndRefresh(t *testing.T) {
	eng := newTestEngine(t, testRecords())
	ctx := context.Background()

	st, err := eng.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.Epoch)
	assert.Equal(t, 4, st.Documents)
	assert.Equal(t, 3, st.Countries)
	assert.Equal(t, 2022, st.YearMin)
	assert.Equal(t, 2023, st.YearMax)
	assert.Equal(t, embedding.LocalModel, st.Embedding)
	assert.True(t, st.FeedbackSet)
	assert.False(t, st.IndexReady) // no similarity query has run yet

	require.NoError(t, eng.Refresh(ctx))
	st, err = eng.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.Epoch)
}

func TestSnapshotReuseWithinTTL(t *testing.T) {
	eng := newTestEngine(t, testRecords())
	ctx := context.Background()

	first, err := eng.Status(ctx)
	require.NoError(t, err)
	second, err := eng.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Epoch, second.Epoch)
	assert.True(t, second.StaleAfter.Sub(second.BuiltAt) == DefaultTTL)
}

func TestSnapshotRebuildAfterTTL(t *testing.T) {
	eng := newTestEngine(t, testRecords())
	eng.ttl = time.Nanosecond
	ctx := context.Background()

	first, err := eng.Status(ctx)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := eng.Status(ctx)
	require.NoError(t, err)

	assert.Greater(t, second.Epoch, first.Epoch)
}
