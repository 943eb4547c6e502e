package webscraping

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reputation-monitor/models"
	"reputation-monitor/services"
	"reputation-monitor/utils"
)

var productPathRe = regexp.MustCompile(`^/product/\d+/?$`)

// ScrapeProducts walks /products?page=1..maxPages. It stops at the first page
// that fails, has no product rows, or adds no new product URL.
func (s *Scraper) ScrapeProducts(ctx context.Context, maxPages int) ([]models.Product, error) {
	seen := utils.NewKeySet()
	products := []models.Product{}

	for page := 1; page <= maxPages; page++ {
		pageURL := s.endpoint("/products", url.Values{"page": {strconv.Itoa(page)}})
		body, err := s.pages.FetchPage(ctx, pageURL)
		if err != nil {
			s.stop(sourceProducts, page, err)
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			s.stop(sourceProducts, page, fmt.Errorf("parse html: %w", err))
			break
		}

		rows := doc.Find("div.row.product")
		if rows.Length() == 0 {
			s.logger.Info("[products] Page %d has no products, done", page)
			break
		}

		added := s.parseProducts(rows, page, seen)
		if len(added) == 0 {
			s.logger.Info("[products] Page %d added nothing new, done", page)
			break
		}
		products = append(products, added...)
		s.logger.Debug("[products] Page %d: %d rows, %d new (total %d)", page, rows.Length(), len(added), len(products))

		if page == maxPages {
			break
		}
		if err := s.pause(ctx); err != nil {
			return products, err
		}
	}

	s.logger.Info("[products] Collected %d products", len(products))
	return products, nil
}

// parseProducts extracts products from listing rows, skipping rows without a
// product link and URLs already seen.
func (s *Scraper) parseProducts(rows *goquery.Selection, page int, seen *utils.KeySet) []models.Product {
	var out []models.Product
	rows.Each(func(_ int, row *goquery.Selection) {
		link := row.Find(".description h3 a[href]").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		abs, ok := s.resolve(href)
		if !ok {
			return
		}
		u, err := url.Parse(abs)
		if err != nil || !productPathRe.MatchString(u.Path) {
			return
		}
		if !seen.Add(abs) {
			return
		}

		p := models.Product{
			Title: services.NormalizeText(link.Text()),
			URL:   abs,
			Page:  page,
		}
		if src, ok := row.Find(".thumbnail img[src]").First().Attr("src"); ok {
			if img, ok := s.resolve(src); ok {
				p.ImageURL = &img
			}
		}
		if desc := services.NormalizeText(row.Find(".short-description").First().Text()); desc != "" {
			p.Description = &desc
		}
		if price := row.Find(".price-wrap .price").First(); price.Length() > 0 {
			p.Price = services.ParsePrice(price.Text())
		}
		out = append(out, p)
	})
	return out
}

// resolve turns href into an absolute URL against the site root.
func (s *Scraper) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return s.base.ResolveReference(ref).String(), true
}
