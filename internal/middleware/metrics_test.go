package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/phonebook-api/internal/service"
)

func scrape(metrics *service.MetricsService) string {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	metrics.Handler().ServeHTTP(w, req)
	return w.Body.String()
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/contacts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/contacts/5", "/contacts/6", "/wp-login.php", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	body := scrape(metrics)
	assert.Contains(t, body, `phonebook_http_request_duration_seconds_count{method="GET",route="/contacts/:id",status="200"} 2`)
	assert.Contains(t, body, `phonebook_http_request_duration_seconds_count{method="GET",route="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `route="/metrics"`)
	assert.NotContains(t, body, "wp-login")
}

func TestMetricsMiddlewareWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
