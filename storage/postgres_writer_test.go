package storage

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reputation-monitor/models"
)

func TestBuildInsert(t *testing.T) {
	query, args := buildInsert("reviews", []string{"rid", "date"}, [][]any{
		{"a", "2023-03-05"},
		{"b", "2023-04-01"},
	})

	require.Equal(t,
		"INSERT INTO reviews (rid, date) VALUES ($1,$2),($3,$4) ON CONFLICT DO NOTHING",
		query)
	require.Equal(t, []any{"a", "2023-03-05", "b", "2023-04-01"}, args)
}

// openTestPostgres connects to POSTGRES_TEST_DSN and drops the mirror tables
// so every test starts from an empty schema.
func openTestPostgres(t *testing.T) *PostgresWriter {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	_, err = db.Exec("DROP TABLE IF EXISTS products, testimonials, reviews, snapshots")
	require.NoError(t, err)

	pw, err := newPostgresWriter(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pw.Close() })
	return pw
}

func bigSnapshot(products int) *models.Snapshot {
	s := &models.Snapshot{ScrapedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Source: "https://web-scraping.dev"}
	for i := 0; i < products; i++ {
		p := models.Product{Title: "p", URL: fmt.Sprintf("https://web-scraping.dev/product/%d", i), Page: 1 + i/5}
		if i%2 == 0 {
			price, desc := float64(i)+0.99, "desc"
			p.Price, p.Description = &price, &desc
		}
		s.Products = append(s.Products, p)
	}
	user := "amy"
	rating := 4
	s.Testimonials = []models.Testimonial{
		{Page: 1, Idx: 0, Username: &user, Text: "Lovely", Rating: 5},
		{Page: 1, Idx: 1, Text: "Fine", Rating: 3},
	}
	s.Reviews = []models.Review{
		{RID: "r1", Date: "2023-03-05", Text: "great", Rating: &rating},
		{RID: "r2", Date: "2023-04-01", Text: "bad"},
	}
	return s
}

func TestPostgresWriterReplacesContents(t *testing.T) {
	pw := openTestPostgres(t)

	// More than one insert batch of products.
	require.NoError(t, pw.Write(bigSnapshot(batchSize+7)))
	counts, err := pw.CountRows()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"products": batchSize + 7, "testimonials": 2, "reviews": 2}, counts)

	second := bigSnapshot(3)
	second.Reviews = second.Reviews[:1]
	require.NoError(t, pw.Write(second))
	counts, err = pw.CountRows()
	require.NoError(t, err)
	require.Equal(t, map[string]int{"products": 3, "testimonials": 2, "reviews": 1}, counts)

	var price sql.NullFloat64
	var desc sql.NullString
	require.NoError(t, pw.db.QueryRow(
		"SELECT price, description FROM products WHERE url = $1", second.Products[1].URL).Scan(&price, &desc))
	require.False(t, price.Valid)
	require.False(t, desc.Valid)

	var snapshots int
	require.NoError(t, pw.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&snapshots))
	require.Equal(t, 2, snapshots)
}

func TestPostgresWriterSkipsDuplicateRows(t *testing.T) {
	pw := openTestPostgres(t)

	s := bigSnapshot(1)
	s.Products = append(s.Products, s.Products[0])
	s.Reviews = append(s.Reviews, models.Review{RID: "r1-again", Date: "2023-03-05", Text: "great"})
	require.NoError(t, pw.Write(s))

	counts, err := pw.CountRows()
	require.NoError(t, err)
	require.Equal(t, 1, counts["products"])
	require.Equal(t, 2, counts["reviews"])
}
