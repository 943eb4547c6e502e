package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reputation-monitor/models"
	"reputation-monitor/utils"
)

// MissingValue is shown in place of a mean for a label with no rows.
const MissingValue = "—"

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Summarize counts rows per sentiment label and averages confidences overall
// and per label. Counts are ordered by count descending, then label.
func (s *InsightService) Summarize(rows []models.ReviewRow) *models.SentimentSummary {
	summary := &models.SentimentSummary{
		Counts:      []models.LabelCount{},
		MeanByLabel: make(map[string]float64),
	}
	if len(rows) == 0 {
		return summary
	}

	counts := make(map[string]int)
	sums := make(map[string]float64)
	var total float64
	for _, r := range rows {
		counts[r.Sentiment]++
		sums[r.Sentiment] += r.Confidence
		total += r.Confidence
	}

	summary.Total = len(rows)
	summary.MeanConfidence = total / float64(len(rows))
	for label, n := range counts {
		summary.Counts = append(summary.Counts, models.LabelCount{Label: label, Count: n})
		summary.MeanByLabel[label] = sums[label] / float64(n)
	}
	sort.Slice(summary.Counts, func(i, j int) bool {
		if summary.Counts[i].Count != summary.Counts[j].Count {
			return summary.Counts[i].Count > summary.Counts[j].Count
		}
		return summary.Counts[i].Label < summary.Counts[j].Label
	})

	s.logger.Debug("[insights] %d rows, %d labels, mean confidence %.3f",
		summary.Total, len(summary.Counts), summary.MeanConfidence)
	return summary
}

// FormatMean renders the mean confidence for label with three decimals, or
// MissingValue when the label has no rows.
func FormatMean(summary *models.SentimentSummary, label string) string {
	if summary == nil {
		return MissingValue
	}
	mean, ok := summary.MeanByLabel[label]
	if !ok {
		return MissingValue
	}
	return fmt.Sprintf("%.3f", mean)
}

// FormatOverall renders the overall mean confidence.
func FormatOverall(summary *models.SentimentSummary) string {
	if summary == nil || summary.Total == 0 {
		return MissingValue
	}
	return fmt.Sprintf("%.3f", summary.MeanConfidence)
}

// Print writes the reviews view as terminal tables.
func (s *InsightService) Print(w io.Writer, v *models.ReviewsView) {
	sep := strings.Repeat("═", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 REVIEWS %s + SENTIMENT\033[0m\n", v.Month)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  Reviews in month : \033[1m%d\033[0m\n", len(v.Rows))
	fmt.Fprintf(w, "  All %d reviews  : \033[1m%d\033[0m\n", v.Year, v.YearTotal)
	if !v.RangeStart.IsZero() {
		fmt.Fprintf(w, "  Range            : %s to %s\n",
			v.RangeStart.Format(DateLayout), v.RangeEnd.AddDate(0, 0, -1).Format(DateLayout))
	}
	fmt.Fprintln(w)

	if v.Notice != "" {
		fmt.Fprintf(w, "  \033[1;33m%s\033[0m\n\n", v.Notice)
		return
	}

	rows := table.NewWriter()
	rows.SetOutputMirror(w)
	rows.AppendHeader(table.Row{"Date", "RID", "Rating", "Text", "Sentiment", "Confidence"})
	for _, r := range v.Rows {
		rating := MissingValue
		if r.Rating != nil {
			rating = fmt.Sprintf("%d", *r.Rating)
		}
		rows.AppendRow(table.Row{r.Date, r.RID, rating, truncate(r.Text, 60), r.Sentiment, fmt.Sprintf("%.3f", r.Confidence)})
	}
	rows.SetStyle(table.StyleRounded)
	rows.Render()
	fmt.Fprintln(w)

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Sentiment summary")
	summary.AppendHeader(table.Row{"Sentiment", "Count", "Avg confidence"})
	for _, c := range v.Summary.Counts {
		summary.AppendRow(table.Row{c.Label, c.Count, FormatMean(v.Summary, c.Label)})
	}
	summary.AppendFooter(table.Row{"Overall", v.Summary.Total, FormatOverall(v.Summary)})
	summary.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}, {Number: 3, Align: text.AlignRight}})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	fmt.Fprintf(w, "\n  Avg confidence (Positive): %s\n", FormatMean(v.Summary, models.SentimentPositive))
	fmt.Fprintf(w, "  Avg confidence (Negative): %s\n\n", FormatMean(v.Summary, models.SentimentNegative))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
