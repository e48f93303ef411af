package indicator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store provides read-only access to the indicator table.
// The engine never mutates it; Seed exists only for provisioning a fresh
// database from a dataset export.
type Store struct {
	db *sql.DB
}

// Open opens the indicator database at path.
// WAL mode keeps concurrent readers from blocking each other.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening indicator database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS indicators (
			country TEXT NOT NULL,
			year    INTEGER NOT NULL,
			pillar  TEXT NOT NULL,
			value   REAL NOT NULL,
			PRIMARY KEY (country, year, pillar)
		)
	`)
	if err != nil {
		return fmt.Errorf("creating indicators table: %w", err)
	}
	return nil
}

// Query returns records matching the filter, ordered by country, year,
// pillar for deterministic downstream grouping.
func (s *Store) Query(ctx context.Context, f Filter) ([]Record, error) {
	var (
		conds []string
		args  []any
	)

	if len(f.Countries) > 0 {
		conds = append(conds, "country IN ("+placeholders(len(f.Countries))+")")
		for _, c := range f.Countries {
			args = append(args, c)
		}
	}
	if f.YearFrom != 0 {
		conds = append(conds, "year >= ?")
		args = append(args, f.YearFrom)
	}
	if f.YearTo != 0 {
		conds = append(conds, "year <= ?")
		args = append(args, f.YearTo)
	}
	if len(f.Pillars) > 0 {
		conds = append(conds, "pillar IN ("+placeholders(len(f.Pillars))+")")
		for _, p := range f.Pillars {
			args = append(args, p)
		}
	}

	query := "SELECT country, year, pillar, value FROM indicators"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY country, year, pillar"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying indicators: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Country, &r.Year, &r.Pillar, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning indicator row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating indicator rows: %w", err)
	}
	return records, nil
}

// Countries returns the distinct country names in the store, sorted.
// This is the classifier's country vocabulary.
func (s *Store) Countries(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT country FROM indicators ORDER BY country")
	if err != nil {
		return nil, fmt.Errorf("querying countries: %w", err)
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// Years returns the min and max year present in the store.
func (s *Store) Years(ctx context.Context) (YearRange, error) {
	var yr YearRange
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MIN(year), 0), COALESCE(MAX(year), 0) FROM indicators")
	if err := row.Scan(&yr.Min, &yr.Max); err != nil {
		return YearRange{}, fmt.Errorf("querying year range: %w", err)
	}
	return yr, nil
}

// Seed inserts records into an empty or partially filled store.
// Existing (country, year, pillar) rows are replaced; used by the seed
// command and tests, never by the query engine.
func (s *Store) Seed(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO indicators (country, year, pillar, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing seed statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Country, r.Year, r.Pillar, r.Value); err != nil {
			return fmt.Errorf("inserting record %s/%d/%s: %w", r.Country, r.Year, r.Pillar, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
