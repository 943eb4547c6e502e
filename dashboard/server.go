// Package dashboard serves the Products, Testimonials and Reviews views over
// HTTP, plus a JSON reviews endpoint, a health check and Prometheus metrics.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reputation-monitor/metrics"
	"reputation-monitor/models"
	"reputation-monitor/utils"
)

// Views computes what each page shows. *services.Dashboard implements it.
type Views interface {
	Year() int
	DefaultMonth() string
	Products() ([]models.Product, error)
	Testimonials() ([]models.Testimonial, error)
	Reviews(ctx context.Context, label string) (*models.ReviewsView, error)
}

// Options configures a Server.
type Options struct {
	Views    Views
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Logger   *utils.Logger
	// Source is shown in the page footer.
	Source string
}

// Server is the dashboard's HTTP front end.
type Server struct {
	engine  *gin.Engine
	views   Views
	metrics *metrics.Metrics
	logger  *utils.Logger
	source  string
}

// New builds the router and parses the embedded templates.
func New(opts Options) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(opts.Logger))
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		engine:  engine,
		views:   opts.Views,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		source:  opts.Source,
	}

	engine.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/products") })
	engine.GET("/products", s.products)
	engine.GET("/testimonials", s.testimonials)
	engine.GET("/reviews", s.reviews)
	engine.GET("/healthz", s.health)

	api := engine.Group("/api")
	{
		api.GET("/reviews", s.reviewsJSON)
	}

	if opts.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return s, nil
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[http] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.RequestURI(),
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
