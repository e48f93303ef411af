// Package main provides the insight CLI for querying and managing the
// ADEI indicator dataset.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oic-analytics/adei-insight/internal/corpus"
	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/engine"
	"github.com/oic-analytics/adei-insight/internal/feedback"
	"github.com/oic-analytics/adei-insight/internal/index"
	"github.com/oic-analytics/adei-insight/internal/indicator"
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "ADEI country-indicator query tool",
	Long: `CLI for the ADEI query engine: ask natural-language questions over
the country-indicator dataset, inspect corpus status, seed the database
and sync the optional Qdrant index.

Environment variables:
  ADEI_DB        Indicator SQLite database path (default: adei.db)
  FEEDBACK_DB    Feedback SQLite database path (default: feedback.db)
  EMBEDDER       "openai" or "local" (default: openai)
  OPENAI_API_KEY OpenAI API key, required when EMBEDDER=openai
  QDRANT_HOST    Qdrant hostname for the sync command (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)`,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a natural-language question about the dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAsk,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus snapshot status",
	RunE:  runStatus,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a corpus rebuild and show the fresh snapshot",
	RunE:  runRefresh,
}

var seedCmd = &cobra.Command{
	Use:   "seed <csv-file>",
	Short: "Load indicator records from a CSV export",
	Long: `Loads indicator rows from a CSV file with a header row of
country,year,pillar,value. Existing rows with the same country, year and
pillar are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the Qdrant collection from the indicator store",
	Long: `Builds the document corpus from the indicator database, then drops
and re-creates the Qdrant collection with freshly embedded documents.`,
	RunE: runSync,
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <interaction-id>",
	Short: "Record a rating for an earlier answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedback,
}

var (
	askExamples     bool
	askRating       int
	feedbackRating  int
	feedbackComment string
)

// exampleQuestions mirrors the suggestions shown in the dashboard's
// question box.
var exampleQuestions = []string{
	"What are the top 5 countries in 2023?",
	"Which countries score lowest on health?",
	"Who scores higher on political empowerment in 2023, Qatar or the UAE?",
	"How has Morocco changed between 2019 and 2023?",
	"Tell me about education in Jordan",
}

func init() {
	askCmd.Flags().BoolVar(&askExamples, "examples", false, "print example questions and exit")
	askCmd.Flags().IntVar(&askRating, "rate", 0, "immediately rate the answer 1-5")
	feedbackCmd.Flags().IntVar(&feedbackRating, "rating", 0, "rating 1-5 (required)")
	feedbackCmd.Flags().StringVar(&feedbackComment, "comment", "", "optional free-text comment")
	feedbackCmd.MarkFlagRequired("rating")

	rootCmd.AddCommand(askCmd, statusCmd, refreshCmd, seedCmd, syncCmd, feedbackCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askExamples {
		fmt.Println("Example questions:")
		for _, q := range exampleQuestions {
			fmt.Printf("  - %s\n", q)
		}
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("provide a question, or use --examples")
	}

	ctx := context.Background()
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ans, err := eng.Ask(ctx, args[0], engine.Filters{})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Println(ans.Text)
	fmt.Println()
	fmt.Printf("Confidence: %s\n", ans.ConfidenceStr)
	if ans.Explanation != "" {
		fmt.Printf("How: %s\n", ans.Explanation)
	}
	if len(ans.Sources) > 0 {
		fmt.Printf("Sources: %v\n", ans.Sources)
	}
	fmt.Printf("Interaction: %s\n", ans.InteractionID)

	if askRating != 0 {
		if err := eng.RecordFeedback(ctx, ans.InteractionID, askRating, ""); err != nil {
			return fmt.Errorf("recording rating: %w", err)
		}
		fmt.Println("Rating recorded")
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()
	return printStatus(eng)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.Refresh(context.Background()); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	return printStatus(eng)
}

func printStatus(eng *engine.Engine) error {
	st, err := eng.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	fmt.Printf("Epoch:      %d (built %s)\n", st.Epoch, st.BuiltAt.Format(time.RFC3339))
	fmt.Printf("Documents:  %d across %d countries\n", st.Documents, st.Countries)
	fmt.Printf("Years:      %d-%d\n", st.YearMin, st.YearMax)
	fmt.Printf("Index:      ready=%v model=%s\n", st.IndexReady, st.Embedding)
	fmt.Printf("Cache:      ttl=%ds age=%ds\n", st.TTLSeconds, st.AgeSeconds)
	fmt.Printf("Feedback:   enabled=%v\n", st.FeedbackSet)
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return err
	}

	store, err := indicator.Open(getEnv("ADEI_DB", "adei.db"))
	if err != nil {
		return fmt.Errorf("opening indicator store: %w", err)
	}
	defer store.Close()

	if err := store.Seed(ctx, records); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	fmt.Printf("Seeded %d records\n", len(records))
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	store, err := indicator.Open(getEnv("ADEI_DB", "adei.db"))
	if err != nil {
		return fmt.Errorf("opening indicator store: %w", err)
	}
	defer store.Close()

	records, err := store.Query(ctx, indicator.Filter{})
	if err != nil {
		return fmt.Errorf("loading indicator records: %w", err)
	}
	built, err := corpus.Build(records)
	if err != nil {
		return fmt.Errorf("building corpus: %w", err)
	}
	fmt.Printf("Corpus built: %d documents\n", built.Len())

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	host := getEnv("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	fmt.Printf("Connecting to Qdrant at %s:%d...\n", host, port)
	qix, err := index.NewQdrantIndex(host, port, getEnv("QDRANT_COLLECTION", index.DefaultCollection), embedder)
	if err != nil {
		return fmt.Errorf("connecting to Qdrant: %w", err)
	}
	defer qix.Close()

	if err := qix.Sync(ctx, built); err != nil {
		return fmt.Errorf("syncing collection: %w", err)
	}

	fmt.Println("Sync complete!")
	fmt.Printf("  Documents: %d\n", built.Len())
	fmt.Printf("  Duration:  %s\n", time.Since(start).Round(time.Second))
	return nil
}

// runFeedback writes directly to the feedback store. Unlike the MCP
// tool it cannot cite the original question and answer, because those
// live in the serving process's memory.
func runFeedback(cmd *cobra.Command, args []string) error {
	fb, err := feedback.Open(getEnv("FEEDBACK_DB", "feedback.db"))
	if err != nil {
		return fmt.Errorf("opening feedback store: %w", err)
	}
	defer fb.Close()

	err = fb.Record(context.Background(), feedback.Entry{
		InteractionID: args[0],
		Rating:        feedbackRating,
		Comment:       feedbackComment,
	})
	if err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	fmt.Println("Feedback recorded")
	return nil
}

func buildEngine() (*engine.Engine, func(), error) {
	store, err := indicator.Open(getEnv("ADEI_DB", "adei.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening indicator store: %w", err)
	}

	fb, err := feedback.Open(getEnv("FEEDBACK_DB", "feedback.db"))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening feedback store: %w", err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		store.Close()
		fb.Close()
		return nil, nil, err
	}

	eng := engine.New(engine.Config{
		Indicators: store,
		Embedder:   embedder,
		Feedback:   fb,
		Logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	cleanup := func() {
		store.Close()
		fb.Close()
	}
	return eng, cleanup, nil
}

func newEmbedder() (embedding.Embedder, error) {
	if getEnv("EMBEDDER", "openai") == "local" {
		return embedding.NewLocalEmbedder(), nil
	}
	return embedding.NewOpenAIEmbedder(0)
}

// readCSV parses country,year,pillar,value rows, skipping the header.
func readCSV(f *os.File) ([]indicator.Record, error) {
	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	records := make([]indicator.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+2, len(row))
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q", i+2, row[1])
		}
		value, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid value %q", i+2, row[3])
		}
		records = append(records, indicator.Record{
			Country: row[0],
			Year:    year,
			Pillar:  row[2],
			Value:   value,
		})
	}
	return records, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
