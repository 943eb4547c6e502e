package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"reputation-monitor/models"
	"reputation-monitor/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"str": func(s *string) string {
		if s == nil || *s == "" {
			return ""
		}
		return *s
	},
	"price": func(p *float64) string {
		if p == nil {
			return "N/A"
		}
		return fmt.Sprintf("$%.2f", *p)
	},
	"rating": func(r *int) string {
		if r == nil {
			return services.MissingValue
		}
		return fmt.Sprint(*r)
	},
	"stars": func(n int) string {
		if n <= 0 {
			return ""
		}
		return strings.Repeat("★", n)
	},
	"username": func(s *string) string {
		if s == nil || *s == "" {
			return "Anonymous"
		}
		return *s
	},
	"conf": func(f float64) string { return fmt.Sprintf("%.3f", f) },
	"date": func(v *models.ReviewsView, end bool) string {
		if end {
			return v.RangeEnd.AddDate(0, 0, -1).Format(services.DateLayout)
		}
		return v.RangeStart.Format(services.DateLayout)
	},
	"mean":    services.FormatMean,
	"overall": services.FormatOverall,
	"barWidth": func(s *models.SentimentSummary, count int) int {
		max := 0
		for _, c := range s.Counts {
			if c.Count > max {
				max = c.Count
			}
		}
		if max == 0 {
			return 0
		}
		return count * 100 / max
	},
	"positive": func() string { return models.SentimentPositive },
	"negative": func() string { return models.SentimentNegative },
	"lower":    strings.ToLower,
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse templates: %w", err)
	}
	return tmpl, nil
}
