package services

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"reputation-monitor/models"
	"reputation-monitor/utils"
)

// DateLayout is the calendar-date form stored in the snapshot.
const DateLayout = "2006-01-02"

// reviewDateLayouts are the date shapes accepted from the reviews API.
var reviewDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Cleaner applies the per-record cleaning and dedup rules of a scrape run.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// DedupTestimonials keeps the first testimonial for each exact text.
func (c *Cleaner) DedupTestimonials(in []models.Testimonial) []models.Testimonial {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Testimonial, 0, len(in))
	for _, t := range in {
		if _, dup := seen[t.Text]; dup {
			continue
		}
		seen[t.Text] = struct{}{}
		out = append(out, t)
	}

	c.logger.Info("[cleaner] Testimonials %d → %d (dropped %d duplicates)",
		len(in), len(out), len(in)-len(out))
	return out
}

// DedupReviews keeps the first review for each (date, text) pair.
func (c *Cleaner) DedupReviews(in []models.Review) []models.Review {
	type key struct{ date, text string }

	seen := make(map[key]struct{}, len(in))
	out := make([]models.Review, 0, len(in))
	for _, r := range in {
		k := key{r.Date, r.Text}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	c.logger.Info("[cleaner] Reviews %d → %d (dropped %d duplicates)",
		len(in), len(out), len(in)-len(out))
	return out
}

// ParsePrice strips currency symbols, thousand separators and whitespace and
// parses what is left. Anything that is not a finite non-negative number yields nil.
// Examples:
//
//	"$1,299.99" → 1299.99
//	"€ 12"      → 12
//	"N/A"       → nil
func ParsePrice(raw string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if cleaned == "" {
		return nil
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil
	}
	return &price
}

// NormalizeDate parses a review date and returns it as YYYY-MM-DD, discarding
// any time of day. ok is false when the value is empty or unparseable.
func NormalizeDate(raw string) (date string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

// NormalizeText strips leading/trailing whitespace and collapses internal whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
