// Package feedback records user ratings of answers. Entries are
// append-only and read by no other part of the engine.
package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

var (
	// ErrDuplicateFeedback reports a reused interaction id. The store's
	// contract forbids updates, so reattempts fail instead of overwriting.
	ErrDuplicateFeedback = errors.New("feedback already recorded for interaction")

	// ErrInvalidRating reports a rating outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Thumb ratings, matching the dashboard's thumbs-up/down buttons.
const (
	RatingThumbsUp   = 5
	RatingThumbsDown = 1
)

// Entry is one recorded rating. Never mutated after creation.
type Entry struct {
	InteractionID string
	Question      string
	Answer        string
	Sources       []string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

// Store persists feedback entries in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the feedback database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening feedback database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			interaction_id TEXT PRIMARY KEY,
			question       TEXT NOT NULL,
			answer         TEXT NOT NULL,
			sources        TEXT NOT NULL,
			rating         INTEGER NOT NULL,
			comment        TEXT NOT NULL DEFAULT '',
			created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating feedback table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one entry. A second write with the same interaction id
// fails with ErrDuplicateFeedback.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Rating < 1 || e.Rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, e.Rating)
	}

	sources, err := json.Marshal(e.Sources)
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (interaction_id, question, answer, sources, rating, comment)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (interaction_id) DO NOTHING
	`, e.InteractionID, e.Question, e.Answer, string(sources), e.Rating, e.Comment)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking feedback insert: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateFeedback, e.InteractionID)
	}
	return nil
}
