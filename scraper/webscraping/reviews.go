package webscraping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"reputation-monitor/models"
	"reputation-monitor/services"
)

const reviewsQuery = `
query GetReviews($first: Int, $after: String) {
  reviews(first: $first, after: $after) {
    edges {
      node {
        rid
        text
        rating
        date
      }
      cursor
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type reviewsResponse struct {
	Data *struct {
		Reviews *struct {
			Edges []struct {
				Node   *reviewNode `json:"node"`
				Cursor string      `json:"cursor"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool    `json:"hasNextPage"`
				EndCursor   *string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"reviews"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type reviewNode struct {
	RID    json.RawMessage `json:"rid"`
	Text   *string         `json:"text"`
	Rating *int            `json:"rating"`
	Date   *string         `json:"date"`
}

// ScrapeReviews follows the GraphQL reviews connection page by page using the
// returned cursor. Nodes without a parseable date or text are dropped.
func (s *Scraper) ScrapeReviews(ctx context.Context, maxPages, pageSize int) ([]models.Review, error) {
	var reviews []models.Review
	endpoint := s.endpoint("/api/graphql", nil)
	referer := s.endpoint("/reviews", nil)
	var after *string

	for page := 1; page <= maxPages; page++ {
		var out reviewsResponse
		req := s.http.R().
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json").
			SetHeader("Referer", referer).
			SetBody(graphqlRequest{
				Query:     reviewsQuery,
				Variables: map[string]any{"first": pageSize, "after": after},
			})

		res, err := s.do(ctx, sourceReviews, http.MethodPost, endpoint, req)
		if err != nil {
			s.stop(sourceReviews, page, err)
			if ctx.Err() != nil {
				return s.cleaner.DedupReviews(reviews), ctx.Err()
			}
			break
		}
		if err := json.Unmarshal(res.Body(), &out); err != nil {
			s.stop(sourceReviews, page, fmt.Errorf("decode response: %w", err))
			break
		}

		if hasErrors(out.Errors) {
			s.logger.Warn("[reviews] GraphQL errors at page=%d: %s", page, snippet(string(out.Errors), 200))
			break
		}
		if out.Data == nil || out.Data.Reviews == nil || len(out.Data.Reviews.Edges) == 0 {
			s.logger.Info("[reviews] Page %d has no edges, done", page)
			break
		}

		conn := out.Data.Reviews
		kept := 0
		for _, edge := range conn.Edges {
			if r, ok := reviewFromNode(edge.Node); ok {
				reviews = append(reviews, r)
				kept++
			}
		}
		s.logger.Debug("[reviews] Page %d: %d edges, %d kept (total %d)", page, len(conn.Edges), kept, len(reviews))

		if !conn.PageInfo.HasNextPage {
			break
		}
		next := conn.Edges[len(conn.Edges)-1].Cursor
		if conn.PageInfo.EndCursor != nil && *conn.PageInfo.EndCursor != "" {
			next = *conn.PageInfo.EndCursor
		}
		after = &next

		if page == maxPages {
			break
		}
		if err := s.pause(ctx); err != nil {
			return s.cleaner.DedupReviews(reviews), err
		}
	}

	out := s.cleaner.DedupReviews(reviews)
	s.logger.Info("[reviews] Collected %d reviews", len(out))
	return out, nil
}

func reviewFromNode(n *reviewNode) (models.Review, bool) {
	if n == nil || n.Date == nil || n.Text == nil {
		return models.Review{}, false
	}
	text := strings.TrimSpace(*n.Text)
	if text == "" {
		return models.Review{}, false
	}
	date, ok := services.NormalizeDate(*n.Date)
	if !ok {
		return models.Review{}, false
	}
	return models.Review{
		RID:    decodeRID(n.RID),
		Date:   date,
		Text:   text,
		Rating: n.Rating,
	}, true
}

// decodeRID accepts a string or numeric id.
func decodeRID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// hasErrors reports whether the response carried an "errors" key at all,
// even one that is null or empty.
func hasErrors(raw json.RawMessage) bool {
	return len(raw) > 0
}
