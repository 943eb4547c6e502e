package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) page(c *gin.Context, view, title string, data gin.H) {
	data["Title"] = title
	data["View"] = view
	data["Source"] = s.source
	data["Year"] = s.views.Year()
	c.HTML(http.StatusOK, view+".html", data)
	s.metrics.IncRender(view, "ok")
}

// fail renders the blocking error page for a view that could not load.
func (s *Server) fail(c *gin.Context, view string, err error) {
	s.logger.Error("[dashboard] %s view failed: %v", view, err)
	s.metrics.IncRender(view, "error")
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":  "Error",
		"View":   view,
		"Source": s.source,
		"Year":   s.views.Year(),
		"Error":  err.Error(),
	})
}

func (s *Server) products(c *gin.Context) {
	products, err := s.views.Products()
	if err != nil {
		s.fail(c, "products", err)
		return
	}
	s.page(c, "products", "Products", gin.H{"Products": products})
}

func (s *Server) testimonials(c *gin.Context) {
	testimonials, err := s.views.Testimonials()
	if err != nil {
		s.fail(c, "testimonials", err)
		return
	}
	s.page(c, "testimonials", "Testimonials", gin.H{"Testimonials": testimonials})
}

func (s *Server) reviews(c *gin.Context) {
	view, err := s.views.Reviews(c.Request.Context(), c.Query("month"))
	if err != nil {
		s.fail(c, "reviews", err)
		return
	}

	monthIdx := 0
	for i, l := range view.MonthLabels {
		if l == view.Month {
			monthIdx = i
		}
	}
	s.page(c, "reviews", "Reviews", gin.H{
		"Reviews":    view,
		"MonthIndex": monthIdx,
		"MonthMax":   len(view.MonthLabels) - 1,
	})
}

func (s *Server) reviewsJSON(c *gin.Context) {
	view, err := s.views.Reviews(c.Request.Context(), c.Query("month"))
	if err != nil {
		s.logger.Error("[dashboard] reviews api failed: %v", err)
		s.metrics.IncRender("api_reviews", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.IncRender("api_reviews", "ok")
	c.JSON(http.StatusOK, view)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
