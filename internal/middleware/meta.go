package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/phonebook-api/pkg/middleware/requestid"
)

const responseMetaKey = "response_meta"

// Meta keys written into the response envelope.
const (
	MetaCacheHit         = "cache_hit"
	MetaProcessingTimeMs = "processing_time_ms"
	MetaRequestID        = "request_id"
)

type responseMeta struct {
	start    time.Time
	cacheHit *bool
}

// WithResponseMeta starts the clock for processing_time_ms.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{start: time.Now()})
		c.Next()
	}
}

// SetCacheHit records whether the page came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta := metaFor(c)
	meta.cacheHit = &hit
}

// ExtractMeta renders the envelope meta at the moment of the call, so it must
// run before the response body is written. Keys that were never recorded are omitted.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	out := make(map[string]interface{}, 3)
	if value, ok := c.Get(responseMetaKey); ok {
		if meta, ok := value.(*responseMeta); ok {
			if !meta.start.IsZero() {
				out[MetaProcessingTimeMs] = time.Since(meta.start).Milliseconds()
			}
			if meta.cacheHit != nil {
				out[MetaCacheHit] = *meta.cacheHit
			}
		}
	}
	if id := requestid.Value(c); id != "" {
		out[MetaRequestID] = id
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func metaFor(c *gin.Context) *responseMeta {
	if value, ok := c.Get(responseMetaKey); ok {
		if meta, ok := value.(*responseMeta); ok {
			return meta
		}
	}
	meta := &responseMeta{}
	c.Set(responseMetaKey, meta)
	return meta
}
