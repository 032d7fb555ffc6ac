package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phonebook-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics times every request against its route template. Requests that match no
// route share one label so scanners cannot blow up cardinality. The scrape path
// itself is not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
