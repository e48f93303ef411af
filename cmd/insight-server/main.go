// Package main provides the MCP server entry point for the ADEI query
// engine.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oic-analytics/adei-insight/internal/embedding"
	"github.com/oic-analytics/adei-insight/internal/engine"
	"github.com/oic-analytics/adei-insight/internal/feedback"
	"github.com/oic-analytics/adei-insight/internal/index"
	"github.com/oic-analytics/adei-insight/internal/indicator"
	mcpserver "github.com/oic-analytics/adei-insight/internal/mcp"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Configuration from environment
	dbPath := getEnv("ADEI_DB", "adei.db")
	feedbackPath := getEnv("FEEDBACK_DB", "feedback.db")
	port := getEnv("PORT", "8080")

	store, err := indicator.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open indicator store: %v", err)
	}
	defer store.Close()

	fb, err := feedback.Open(feedbackPath)
	if err != nil {
		log.Fatalf("failed to open feedback store: %v", err)
	}
	defer fb.Close()

	embedder, err := newEmbedder()
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}

	// Optional remote similarity backend. When QDRANT_HOST is unset the
	// engine builds its in-memory index per snapshot.
	var remote index.Searcher
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		qix, err := index.NewQdrantIndex(host, getEnvInt("QDRANT_PORT", 6334),
			getEnv("QDRANT_COLLECTION", index.DefaultCollection), embedder)
		if err != nil {
			log.Fatalf("failed to connect to Qdrant: %v", err)
		}
		defer qix.Close()
		remote = qix
	}

	eng := engine.New(engine.Config{
		Indicators: store,
		Embedder:   embedder,
		Feedback:   fb,
		Remote:     remote,
		Logger:     logger,
	})

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		Engine: eng,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting ADEI Insight MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

// newEmbedder selects the embedding backend. EMBEDDER=local runs fully
// offline with the hashed bag-of-words model; anything else uses OpenAI.
func newEmbedder() (embedding.Embedder, error) {
	if getEnv("EMBEDDER", "openai") == "local" {
		return embedding.NewLocalEmbedder(), nil
	}
	return embedding.NewOpenAIEmbedder(0)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
