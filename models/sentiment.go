package models

import "time"

// Display labels for the two polarities the model knows about.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
)

// Prediction is one classifier output. Label is whatever the model returned.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ReviewRow is a review enriched for display. Rows are recomputed per render
// and never persisted.
type ReviewRow struct {
	Review
	Time       time.Time `json:"-"`
	Sentiment  string    `json:"sentiment"`
	Confidence float64   `json:"confidence"`
}

// LabelCount is the number of rows carrying a sentiment label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SentimentSummary holds the aggregates shown under the review table.
type SentimentSummary struct {
	Total          int                `json:"total"`
	Counts         []LabelCount       `json:"counts"`
	MeanConfidence float64            `json:"mean_confidence"`
	MeanByLabel    map[string]float64 `json:"mean_by_label"`
}

// ReviewsView is everything the reviews page renders for one month selection.
type ReviewsView struct {
	Year        int               `json:"year"`
	Month       string            `json:"month"`
	MonthLabels []string          `json:"month_labels"`
	RangeStart  time.Time         `json:"range_start"`
	RangeEnd    time.Time         `json:"range_end"`
	YearTotal   int               `json:"year_total"`
	Rows        []ReviewRow       `json:"rows"`
	Summary     *SentimentSummary `json:"summary,omitempty"`
	Notice      string            `json:"notice,omitempty"`
}
