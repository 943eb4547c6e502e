package webscraping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reputation-monitor/models"
	"reputation-monitor/services"
)

// ScrapeTestimonials pages through /api/testimonials, which answers with HTML
// fragments and requires the secret token header. The site ends pagination
// with a 403.
func (s *Scraper) ScrapeTestimonials(ctx context.Context, maxPages int) ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	endpoint := s.endpoint("/api/testimonials", nil)

	for page := 1; page <= maxPages; page++ {
		req := s.http.R().
			SetQueryParam("page", strconv.Itoa(page)).
			SetHeader("Referer", s.opts.TestimonialsReferer).
			SetHeader("X-Secret-Token", s.opts.TestimonialsToken)

		res, err := s.do(ctx, sourceTestimonials, http.MethodGet, endpoint, req)
		if err != nil {
			s.stop(sourceTestimonials, page, err)
			if ctx.Err() != nil {
				return s.cleaner.DedupTestimonials(testimonials), ctx.Err()
			}
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(unwrapFragment(res.Body())))
		if err != nil {
			s.stop(sourceTestimonials, page, fmt.Errorf("parse html: %w", err))
			break
		}

		cards := doc.Find("div.testimonial")
		if cards.Length() == 0 {
			s.logger.Info("[testimonials] Page %d has no cards, done", page)
			break
		}
		testimonials = append(testimonials, parseTestimonials(cards, page)...)
		s.logger.Debug("[testimonials] Page %d: %d cards (total %d)", page, cards.Length(), len(testimonials))

		if page == maxPages {
			break
		}
		if err := s.pause(ctx); err != nil {
			return s.cleaner.DedupTestimonials(testimonials), err
		}
	}

	out := s.cleaner.DedupTestimonials(testimonials)
	s.logger.Info("[testimonials] Collected %d testimonials", len(out))
	return out, nil
}

// parseTestimonials reads one page of cards. Idx is the card's position on
// the page; cards without text are skipped but still consume an index.
func parseTestimonials(cards *goquery.Selection, page int) []models.Testimonial {
	var out []models.Testimonial
	cards.Each(func(idx int, card *goquery.Selection) {
		text := services.NormalizeText(card.Find("p.text").First().Text())
		if text == "" {
			return
		}
		t := models.Testimonial{
			Page:   page,
			Idx:    idx,
			Text:   text,
			Rating: card.Find(".rating svg").Length(),
		}
		if name, ok := card.Find("identicon-svg").First().Attr("username"); ok {
			t.Username = &name
		}
		out = append(out, t)
	})
	return out
}

// unwrapFragment returns the HTML carried by body. The endpoint normally
// answers with raw HTML; a JSON string or {"html": "..."} wrapper is unwrapped.
func unwrapFragment(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return body
	}
	switch trimmed[0] {
	case '"':
		var html string
		if err := json.Unmarshal(trimmed, &html); err == nil {
			return []byte(html)
		}
	case '{':
		var wrapped struct {
			HTML string `json:"html"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err == nil && strings.TrimSpace(wrapped.HTML) != "" {
			return []byte(wrapped.HTML)
		}
	}
	return body
}
