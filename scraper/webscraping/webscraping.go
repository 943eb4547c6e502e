// Package webscraping collects products, testimonials and reviews from the
// web-scraping.dev demo shop. Each driver paginates sequentially with a fixed
// pause between requests and stops quietly on the first non-200 response.
package webscraping

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"reputation-monitor/metrics"
	"reputation-monitor/services"
	"reputation-monitor/utils"
)

const (
	sourceProducts     = "products"
	sourceTestimonials = "testimonials"
	sourceReviews      = "reviews"
)

// Options configures a Scraper.
type Options struct {
	BaseURL             string
	UserAgent           string
	TestimonialsToken   string
	TestimonialsReferer string
	Delay               time.Duration
	Timeout             time.Duration

	// Pages fetches product listing pages. Nil means plain HTTP.
	Pages PageFetcher
}

// Scraper holds the shared HTTP client and politeness settings for all three
// drivers.
type Scraper struct {
	base  *url.URL
	opts  Options
	http  *resty.Client
	pages PageFetcher
	// pause runs between consecutive page requests of one driver.
	pause   func(context.Context) error
	cleaner *services.Cleaner
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// New creates a ready-to-use Scraper. m may be nil.
func New(opts Options, logger *utils.Logger, m *metrics.Metrics) (*Scraper, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("webscraping: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("webscraping: base url %q must be absolute", opts.BaseURL)
	}
	if opts.TestimonialsReferer == "" {
		opts.TestimonialsReferer = base.JoinPath("testimonials").String()
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	s := &Scraper{
		base:    base,
		opts:    opts,
		http:    client,
		pause:   utils.NewThrottle(opts.Delay).Wait,
		cleaner: services.NewCleaner(logger),
		logger:  logger,
		metrics: m,
	}
	s.pages = opts.Pages
	if s.pages == nil {
		s.pages = httpPages{s: s}
	}
	return s, nil
}

// BaseURL is the site root recorded as the snapshot source.
func (s *Scraper) BaseURL() string {
	return s.base.String()
}

// endpoint resolves a site-relative path with an optional query.
func (s *Scraper) endpoint(path string, query url.Values) string {
	u := s.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// stop logs why a driver ended. Non-200 responses are an expected way for
// pagination to end; anything else is reported as an error.
func (s *Scraper) stop(source string, page int, err error) {
	if IsStatusError(err) {
		s.logger.Info("[%s] Stopping at page=%d: %v", source, page, err)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("[%s] Cancelled at page=%d: %v", source, page, err)
		return
	}
	s.logger.Error("[%s] Page %d failed, stopping: %v", source, page, err)
}
