package services

import (
	"fmt"
	"time"

	"reputation-monitor/models"
)

// MonthLabelLayout renders month selections like "Mar 2023".
const MonthLabelLayout = "Jan 2006"

// MonthLabels returns the twelve month labels of year in calendar order.
func MonthLabels(year int) []string {
	labels := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		labels = append(labels, time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelLayout))
	}
	return labels
}

// MonthRange converts a month label into the half-open range
// [first of month, first of next month).
func MonthRange(label string) (start, end time.Time, err error) {
	t, err := time.Parse(MonthLabelLayout, label)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("month label %q: %w", label, err)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// ParseReviews turns reviews into display rows, skipping rows whose date
// does not parse.
func ParseReviews(reviews []models.Review) []models.ReviewRow {
	rows := make([]models.ReviewRow, 0, len(reviews))
	for _, r := range reviews {
		normalized, ok := NormalizeDate(r.Date)
		if !ok {
			continue
		}
		t, err := time.Parse(DateLayout, normalized)
		if err != nil {
			continue
		}
		rows = append(rows, models.ReviewRow{Review: r, Time: t})
	}
	return rows
}

// FilterYear keeps rows dated within the given calendar year.
func FilterYear(rows []models.ReviewRow, year int) []models.ReviewRow {
	out := make([]models.ReviewRow, 0, len(rows))
	for _, r := range rows {
		if r.Time.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// FilterRange keeps rows with start <= date < end.
func FilterRange(rows []models.ReviewRow, start, end time.Time) []models.ReviewRow {
	out := make([]models.ReviewRow, 0, len(rows))
	for _, r := range rows {
		if !r.Time.Before(start) && r.Time.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
