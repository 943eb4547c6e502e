package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"reputation-monitor/models"
)

// CSVWriter exports each snapshot collection to its own CSV file inside a
// directory. Every Write truncates the previous export.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// Write exports products.csv, testimonials.csv and reviews.csv.
func (c *CSVWriter) Write(snapshot *models.Snapshot) error {
	products := make([][]string, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		products = append(products, []string{
			p.Title, p.URL, strconv.Itoa(p.Page), optString(p.ImageURL), optFloat(p.Price), optString(p.Description),
		})
	}
	if err := c.writeFile("products.csv",
		[]string{"title", "url", "page", "image_url", "price", "description"}, products); err != nil {
		return err
	}

	testimonials := make([][]string, 0, len(snapshot.Testimonials))
	for _, t := range snapshot.Testimonials {
		testimonials = append(testimonials, []string{
			strconv.Itoa(t.Page), strconv.Itoa(t.Idx), optString(t.Username), t.Text, strconv.Itoa(t.Rating),
		})
	}
	if err := c.writeFile("testimonials.csv",
		[]string{"page", "idx", "username", "text", "rating"}, testimonials); err != nil {
		return err
	}

	reviews := make([][]string, 0, len(snapshot.Reviews))
	for _, r := range snapshot.Reviews {
		reviews = append(reviews, []string{r.RID, r.Date, r.Text, optInt(r.Rating)})
	}
	return c.writeFile("reviews.csv", []string{"rid", "date", "text", "rating"}, reviews)
}

func (c *CSVWriter) writeFile(name string, header []string, rows [][]string) error {
	path := filepath.Join(c.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csv: write rows to %q: %w", path, err)
	}
	return f.Close()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func optInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
