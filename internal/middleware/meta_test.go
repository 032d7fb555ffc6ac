package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/phonebook-api/pkg/middleware/requestid"
	"github.com/noah-isme/phonebook-api/pkg/response"
)

func metaRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/contacts", handler)
	return r
}

func decodeMeta(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Meta
}

func TestResponseMetaReachesClient(t *testing.T) {
	r := metaRouter(func(c *gin.Context) {
		SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, []string{}, nil, ExtractMeta(c))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/contacts", nil)
	req.Header.Set("X-Request-ID", "req-7")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	meta := decodeMeta(t, w)
	assert.ElementsMatch(t, []string{MetaCacheHit, MetaProcessingTimeMs, MetaRequestID}, keys(meta))
	assert.Equal(t, true, meta[MetaCacheHit])
	assert.Equal(t, "req-7", meta[MetaRequestID])
	assert.GreaterOrEqual(t, meta[MetaProcessingTimeMs].(float64), 0.0)
}

func TestResponseMetaOmitsUnsetCacheHit(t *testing.T) {
	r := metaRouter(func(c *gin.Context) {
		response.JSON(c, http.StatusOK, "ok", nil, ExtractMeta(c))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/contacts", nil)
	r.ServeHTTP(w, req)

	meta := decodeMeta(t, w)
	assert.NotContains(t, meta, MetaCacheHit)
	assert.Contains(t, meta, MetaProcessingTimeMs)
}

func TestSetCacheHitWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))
	SetCacheHit(c, false)
	assert.Equal(t, map[string]interface{}{MetaCacheHit: false}, ExtractMeta(c))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
