package models

// CacheStats reports query cache state and performance.
type CacheStats struct {
	TotalEntries int   `json:"total_entries"`
	TTLSeconds   int64 `json:"ttl_seconds"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
}
