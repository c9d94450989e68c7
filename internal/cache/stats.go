package cache

// Stats is a point-in-time view of cache contents and performance
// counters. Counters are monotonic for the life of the cache.
type Stats struct {
	Entries       int      `json:"entries"`
	ActiveEntries int      `json:"active_entries"`
	Keys          []string `json:"keys"`
	Hits          int64    `json:"hits"`
	Misses        int64    `json:"misses"`
	Evictions     int64    `json:"evictions"`
	HitRate       float64  `json:"hit_rate"`
}
