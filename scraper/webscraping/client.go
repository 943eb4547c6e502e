package webscraping

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// StatusError is a non-200 response. Drivers treat it as the natural end of
// pagination rather than a failure.
type StatusError struct {
	Source string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s returned status %d", e.Source, e.URL, e.Status)
	}
	return fmt.Sprintf("%s: %s returned status %d: %s", e.Source, e.URL, e.Status, e.Body)
}

// IsStatusError reports whether err carries a non-200 response.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// PageFetcher returns the raw body of a listing page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// do sends req and converts anything but 200 into a *StatusError.
func (s *Scraper) do(ctx context.Context, source, method, url string, req *resty.Request) (*resty.Response, error) {
	res, err := req.SetContext(ctx).Execute(method, url)
	if err != nil {
		s.metrics.IncPage(source, "error")
		return nil, fmt.Errorf("%s: %s %s: %w", source, method, url, err)
	}
	s.metrics.IncPage(source, strconv.Itoa(res.StatusCode()))

	if res.StatusCode() != http.StatusOK {
		return nil, &StatusError{
			Source: source,
			URL:    url,
			Status: res.StatusCode(),
			Body:   snippet(res.String(), 200),
		}
	}
	return res, nil
}

// httpPages fetches listing pages with the scraper's resty client.
type httpPages struct {
	s *Scraper
}

func (h httpPages) FetchPage(ctx context.Context, url string) ([]byte, error) {
	res, err := h.s.do(ctx, sourceProducts, http.MethodGet, url, h.s.http.R())
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
