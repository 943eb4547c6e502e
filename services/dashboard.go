package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"reputation-monitor/metrics"
	"reputation-monitor/models"
	"reputation-monitor/storage"
	"reputation-monitor/utils"
)

// DashboardOptions configures a Dashboard.
type DashboardOptions struct {
	Store        storage.SnapshotReader
	Classifier   func() (Classifier, error)
	Year         int
	DefaultMonth string
	Metrics      *metrics.Metrics
	Logger       *utils.Logger
}

// Dashboard computes the three dashboard views. The snapshot and classifier
// are loaded once per process and reused for every render; each render
// recomputes its view from them.
type Dashboard struct {
	snapshot     *utils.Lazy[*models.Snapshot]
	classifier   *utils.Lazy[Classifier]
	insights     *InsightService
	year         int
	defaultMonth string
	metrics      *metrics.Metrics
	logger       *utils.Logger
}

// NewDashboard creates a Dashboard. Nothing is loaded until the first render.
func NewDashboard(opts DashboardOptions) *Dashboard {
	year := opts.Year
	if year == 0 {
		year = 2023
	}
	labels := MonthLabels(year)
	defaultMonth := opts.DefaultMonth
	if !containsLabel(labels, defaultMonth) {
		defaultMonth = labels[2]
	}

	return &Dashboard{
		snapshot: utils.NewLazy(func() (*models.Snapshot, error) {
			s, err := opts.Store.Read()
			if err == nil {
				opts.Logger.Info("[dashboard] Snapshot loaded: %d products, %d testimonials, %d reviews",
					len(s.Products), len(s.Testimonials), len(s.Reviews))
			}
			return s, err
		}),
		classifier:   utils.NewLazy(opts.Classifier),
		insights:     NewInsightService(opts.Logger),
		year:         year,
		defaultMonth: defaultMonth,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

// Year is the calendar year the reviews view is restricted to.
func (d *Dashboard) Year() int { return d.year }

// DefaultMonth is the month label selected when none is given.
func (d *Dashboard) DefaultMonth() string { return d.defaultMonth }

// Insights returns the summary and terminal printer used for the reviews view.
func (d *Dashboard) Insights() *InsightService { return d.insights }

// Snapshot returns the cached snapshot, loading it on first use.
func (d *Dashboard) Snapshot() (*models.Snapshot, error) {
	s, err := d.snapshot.Get()
	if err != nil {
		return nil, fmt.Errorf("dashboard: load snapshot: %w", err)
	}
	return s, nil
}

// Products returns the products view.
func (d *Dashboard) Products() ([]models.Product, error) {
	s, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Products, nil
}

// Testimonials returns the testimonials view.
func (d *Dashboard) Testimonials() ([]models.Testimonial, error) {
	s, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.Testimonials, nil
}

// Reviews builds the reviews view for one month label. Unknown or empty
// labels select the default month. Empty year or month selections produce a
// view with a Notice and no classifier call.
func (d *Dashboard) Reviews(ctx context.Context, label string) (*models.ReviewsView, error) {
	s, err := d.Snapshot()
	if err != nil {
		return nil, err
	}

	labels := MonthLabels(d.year)
	if !containsLabel(labels, label) {
		label = d.defaultMonth
	}

	view := &models.ReviewsView{
		Year:        d.year,
		Month:       label,
		MonthLabels: labels,
		Rows:        []models.ReviewRow{},
	}

	if len(s.Reviews) == 0 {
		view.Notice = "No reviews found in the snapshot."
		return view, nil
	}

	yearRows := FilterYear(ParseReviews(s.Reviews), d.year)
	view.YearTotal = len(yearRows)
	if len(yearRows) == 0 {
		view.Notice = fmt.Sprintf("No %d reviews found. Check your scraper output.", d.year)
		return view, nil
	}

	start, end, err := MonthRange(label)
	if err != nil {
		return nil, err
	}
	view.RangeStart, view.RangeEnd = start, end

	rows := FilterRange(yearRows, start, end)
	if len(rows) == 0 {
		view.Notice = "No reviews in this month."
		return view, nil
	}

	if err := d.classify(ctx, rows); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Time.After(rows[j].Time)
	})
	view.Rows = rows
	view.Summary = d.insights.Summarize(rows)
	return view, nil
}

func (d *Dashboard) classify(ctx context.Context, rows []models.ReviewRow) error {
	clf, err := d.classifier.Get()
	if err != nil {
		return fmt.Errorf("dashboard: load classifier: %w", err)
	}

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.Text
	}

	started := time.Now()
	preds, err := clf.Classify(ctx, texts)
	if err != nil {
		return fmt.Errorf("dashboard: classify: %w", err)
	}
	if len(preds) != len(rows) {
		return fmt.Errorf("dashboard: classifier returned %d predictions for %d reviews", len(preds), len(rows))
	}
	d.metrics.ObserveClassify(len(texts), time.Since(started))

	for i := range rows {
		rows[i].Sentiment = NormalizeLabel(preds[i].Label)
		rows[i].Confidence = preds[i].Score
	}
	return nil
}
