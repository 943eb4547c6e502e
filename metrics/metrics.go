package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scraper and dashboard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PagesFetched       *prometheus.CounterVec
	RecordsScraped     *prometheus.GaugeVec
	ClassifierDuration prometheus.Histogram
	ClassifiedTotal    prometheus.Counter
	RendersTotal       *prometheus.CounterVec
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Pages requested per source, by HTTP status.",
		}, []string{"source", "status"}),
		RecordsScraped: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scraper_records",
			Help: "Records collected by the last scrape run, per collection.",
		}, []string{"collection"}),
		ClassifierDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_classify_duration_seconds",
			Help:    "Duration of one classifier call for a month of reviews.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		ClassifiedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "sentiment_texts_classified_total",
			Help: "Review texts sent to the classifier.",
		}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_renders_total",
			Help: "Dashboard view renders, by view and outcome.",
		}, []string{"view", "outcome"}),
	}
}

// IncPage counts one page request for source with its HTTP status or "error".
func (m *Metrics) IncPage(source, status string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(source, status).Inc()
}

// SetRecords records how many records a collection ended the run with.
func (m *Metrics) SetRecords(collection string, n int) {
	if m == nil {
		return
	}
	m.RecordsScraped.WithLabelValues(collection).Set(float64(n))
}

// ObserveClassify records one classifier call over texts inputs.
func (m *Metrics) ObserveClassify(texts int, d time.Duration) {
	if m == nil {
		return
	}
	m.ClassifierDuration.Observe(d.Seconds())
	m.ClassifiedTotal.Add(float64(texts))
}

// IncRender counts one render of view with outcome "ok" or "error".
func (m *Metrics) IncRender(view, outcome string) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(view, outcome).Inc()
}
