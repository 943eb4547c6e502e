package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"reputation-monitor/models"
)

// PostgresWriter mirrors each snapshot into PostgreSQL tables.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return newPostgresWriter(db)
}

func newPostgresWriter(db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS products (
		url         TEXT PRIMARY KEY,
		title       TEXT          NOT NULL,
		page        INTEGER       NOT NULL,
		image_url   TEXT,
		price       NUMERIC(10,2),
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS testimonials (
		id       SERIAL PRIMARY KEY,
		page     INTEGER NOT NULL,
		idx      INTEGER NOT NULL,
		username TEXT,
		text     TEXT    UNIQUE NOT NULL,
		rating   INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id     SERIAL PRIMARY KEY,
		rid    TEXT NOT NULL,
		date   DATE NOT NULL,
		text   TEXT NOT NULL,
		rating INTEGER,
		UNIQUE (date, text)
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id         SERIAL PRIMARY KEY,
		source     TEXT        NOT NULL,
		scraped_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_date ON reviews(date);
`

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(schema)
	return err
}

// Write replaces the contents of all tables with the snapshot inside one
// transaction.
func (pw *PostgresWriter) Write(snapshot *models.Snapshot) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("TRUNCATE products, testimonials, reviews RESTART IDENTITY"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	products := make([][]any, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		products = append(products, []any{p.URL, p.Title, p.Page, p.ImageURL, p.Price, p.Description})
	}
	if err := insertBatches(tx, "products", []string{"url", "title", "page", "image_url", "price", "description"}, products); err != nil {
		return err
	}

	testimonials := make([][]any, 0, len(snapshot.Testimonials))
	for _, t := range snapshot.Testimonials {
		testimonials = append(testimonials, []any{t.Page, t.Idx, t.Username, t.Text, t.Rating})
	}
	if err := insertBatches(tx, "testimonials", []string{"page", "idx", "username", "text", "rating"}, testimonials); err != nil {
		return err
	}

	reviews := make([][]any, 0, len(snapshot.Reviews))
	for _, r := range snapshot.Reviews {
		reviews = append(reviews, []any{r.RID, r.Date, r.Text, r.Rating})
	}
	if err := insertBatches(tx, "reviews", []string{"rid", "date", "text", "rating"}, reviews); err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT INTO snapshots (source, scraped_at) VALUES ($1, $2)",
		snapshot.Source, snapshot.ScrapedAt); err != nil {
		return fmt.Errorf("postgres: record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const batchSize = 50

func insertBatches(tx *sql.Tx, table string, columns []string, rows [][]any) error {
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args := buildInsert(table, columns, rows[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert %s: %w", table, err)
		}
	}
	return nil
}

// buildInsert renders a multi-row INSERT with $n placeholders.
func buildInsert(table string, columns []string, batch [][]any) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(columns))

	for idx, row := range batch {
		base := idx * len(columns)
		placeholders := make([]string, len(columns))
		for c := range columns {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING",
		table, strings.Join(columns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// CountRows returns the number of rows per mirrored table.
func (pw *PostgresWriter) CountRows() (map[string]int, error) {
	counts := make(map[string]int, 3)
	for _, table := range []string{"products", "testimonials", "reviews"} {
		var n int
		if err := pw.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("postgres: count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
