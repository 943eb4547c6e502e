// Package scraper runs the three collectors and assembles their output into a
// single snapshot.
package scraper

import (
	"context"
	"time"

	"reputation-monitor/metrics"
	"reputation-monitor/models"
	"reputation-monitor/utils"
)

// Collector fetches each collection from the target site.
type Collector interface {
	BaseURL() string
	ScrapeProducts(ctx context.Context, maxPages int) ([]models.Product, error)
	ScrapeTestimonials(ctx context.Context, maxPages int) ([]models.Testimonial, error)
	ScrapeReviews(ctx context.Context, maxPages, pageSize int) ([]models.Review, error)
}

// Limits caps pagination per collection.
type Limits struct {
	ProductPages     int
	TestimonialPages int
	ReviewPages      int
	ReviewPageSize   int
}

// Aggregator runs the collectors in order and builds a Snapshot.
type Aggregator struct {
	collector Collector
	limits    Limits
	now       func() time.Time
	logger    *utils.Logger
	metrics   *metrics.Metrics
}

// NewAggregator creates an Aggregator. m may be nil.
func NewAggregator(c Collector, limits Limits, logger *utils.Logger, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		collector: c,
		limits:    limits,
		now:       time.Now,
		logger:    logger,
		metrics:   m,
	}
}

// Run scrapes products, testimonials and reviews in that order. A collector
// that stops early contributes what it gathered; the snapshot is always
// returned. The error is non-nil only when ctx ended the run.
func (a *Aggregator) Run(ctx context.Context) (*models.Snapshot, error) {
	started := a.now()
	snapshot := &models.Snapshot{
		Products:     []models.Product{},
		Testimonials: []models.Testimonial{},
		Reviews:      []models.Review{},
		Source:       a.collector.BaseURL(),
	}

	a.logger.Info("[scraper] Scraping products from %s", snapshot.Source)
	products, err := a.collector.ScrapeProducts(ctx, a.limits.ProductPages)
	snapshot.Products = append(snapshot.Products, products...)
	if err != nil {
		a.logger.Warn("[scraper] products interrupted: %v", err)
	}

	a.logger.Info("[scraper] Scraping testimonials")
	testimonials, err := a.collector.ScrapeTestimonials(ctx, a.limits.TestimonialPages)
	snapshot.Testimonials = append(snapshot.Testimonials, testimonials...)
	if err != nil {
		a.logger.Warn("[scraper] testimonials interrupted: %v", err)
	}

	a.logger.Info("[scraper] Scraping reviews")
	reviews, err := a.collector.ScrapeReviews(ctx, a.limits.ReviewPages, a.limits.ReviewPageSize)
	snapshot.Reviews = append(snapshot.Reviews, reviews...)
	if err != nil {
		a.logger.Warn("[scraper] reviews interrupted: %v", err)
	}

	snapshot.ScrapedAt = a.now().UTC()
	for name, n := range snapshot.Counts() {
		a.metrics.SetRecords(name, n)
	}
	a.logger.Info("[scraper] Done in %s: %d products, %d testimonials, %d reviews",
		snapshot.ScrapedAt.Sub(started.UTC()).Round(time.Millisecond),
		len(snapshot.Products), len(snapshot.Testimonials), len(snapshot.Reviews))

	return snapshot, ctx.Err()
}
