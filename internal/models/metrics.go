package models

import "time"

// MetricsSnapshot is the /ops/metrics payload.
type MetricsSnapshot struct {
	CacheHits        uint64            `json:"cache_hits"`
	CacheMisses      uint64            `json:"cache_misses"`
	CacheHitRatio    float64           `json:"cache_hit_ratio"`
	ContactWrites    map[string]uint64 `json:"contact_writes"`
	DBQueries        uint64            `json:"db_queries"`
	AverageDBQueryMs float64           `json:"average_db_query_ms"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
