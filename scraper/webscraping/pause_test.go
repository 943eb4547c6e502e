package webscraping

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reputation-monitor/utils"
)

// countPauses replaces the scraper's politeness pause with one that records
// how many requests had been served when each pause ran.
func countPauses(s *Scraper, served func() int) *[]int {
	var at []int
	s.pause = func(ctx context.Context) error {
		at = append(at, served())
		return ctx.Err()
	}
	return &at
}

func TestProductPauses(t *testing.T) {
	full := func(id int) string { return listingPage(productRow(id, fmt.Sprintf("Item %d", id), "$1.00")) }

	tests := []struct {
		name     string
		pages    map[string]string
		status   map[string]int
		maxPages int
		want     []int
	}{
		{"empty page 3", map[string]string{"1": full(1), "2": full(2)}, nil, 50, []int{1, 2}},
		{"non-200 on page 2", map[string]string{"1": full(1)}, map[string]int{"2": http.StatusNotFound}, 50, []int{1}},
		{"max pages reached", map[string]string{"1": full(1), "2": full(2), "3": full(3)}, nil, 2, []int{1}},
		{"nothing on page 1", nil, nil, 50, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &pagedHandler{pages: tt.pages, status: tt.status}
			s := newTestScraper(t, h, nil)
			pauses := countPauses(s, func() int { return len(h.requests) })

			_, err := s.ScrapeProducts(context.Background(), tt.maxPages)
			require.NoError(t, err)
			require.Equal(t, tt.want, *pauses)
		})
	}
}

func TestTestimonialPauses(t *testing.T) {
	tests := []struct {
		name     string
		okPages  int
		maxPages int
		want     []int
	}{
		{"403 after two pages", 2, 50, []int{1, 2}},
		{"403 on page 1", 0, 50, nil},
		{"single page allowed", 5, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			served := 0
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				served++
				if served > tt.okPages {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				fmt.Fprint(w, testimonialCard("u", fmt.Sprintf("card %d", served), 1))
			})
			s := newTestScraper(t, h, nil)
			pauses := countPauses(s, func() int { return served })

			_, err := s.ScrapeTestimonials(context.Background(), tt.maxPages)
			require.NoError(t, err)
			require.Equal(t, tt.want, *pauses)
		})
	}
}

func reviewPage(rid string, hasNext bool) string {
	return fmt.Sprintf(`{"data":{"reviews":{"edges":[{"node":{"rid":%q,"text":"text %s","rating":3,"date":"2023-03-01"},"cursor":%q}],
		"pageInfo":{"hasNextPage":%t,"endCursor":%q}}}}`, rid, rid, rid, hasNext, rid)
}

func TestReviewPauses(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		want      []int
	}{
		{"no next page", []string{reviewPage("a", false)}, nil},
		{"two pages", []string{reviewPage("a", true), reviewPage("b", false)}, []int{1}},
		{"server error after one page", []string{reviewPage("a", true)}, []int{1}},
		{"graphql errors", []string{reviewPage("a", true), `{"errors":[{"message":"nope"}]}`}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []graphqlCall
			s := newTestScraper(t, graphqlServer(t, tt.responses, &calls), nil)
			pauses := countPauses(s, func() int { return len(calls) })

			_, err := s.ScrapeReviews(context.Background(), 50, 20)
			require.NoError(t, err)
			require.Equal(t, tt.want, *pauses)
		})
	}
}

func TestConfiguredDelayIsApplied(t *testing.T) {
	h := &pagedHandler{pages: map[string]string{
		"1": listingPage(productRow(1, "A", "$1")),
		"2": listingPage(productRow(2, "B", "$2")),
	}}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	delay := 30 * time.Millisecond
	s, err := New(Options{BaseURL: srv.URL, Delay: delay}, utils.Discard(), nil)
	require.NoError(t, err)

	started := time.Now()
	_, err = s.ScrapeProducts(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, h.requests)
	require.GreaterOrEqual(t, time.Since(started), 2*delay)
}
