package models

import "time"

// Snapshot is the single JSON document produced by one complete scrape run.
// Each run fully replaces the previous snapshot.
type Snapshot struct {
	Products     []Product     `json:"products"`
	Testimonials []Testimonial `json:"testimonials"`
	Reviews      []Review      `json:"reviews"`
	ScrapedAt    time.Time     `json:"scraped_at"`
	Source       string        `json:"source"`
}

// Counts returns the per-collection record counts printed after a scrape.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"products":     len(s.Products),
		"testimonials": len(s.Testimonials),
		"reviews":      len(s.Reviews),
	}
}
