package cache

import "time"

// TTLConfig holds per-operation-class TTL presets. The cache itself is
// TTL-agnostic; callers pick the class that matches where a value came
// from.
type TTLConfig struct {
	Remote    time.Duration `json:"remote"`    // remote-API-backed data (gh lookups)
	Activity  time.Duration `json:"activity"`  // local-log-derived data (git log)
	Aggregate time.Duration `json:"aggregate"` // local aggregate queries
	Derived   time.Duration `json:"derived"`   // expensive derived computations
}

// DefaultTTLConfig returns the standard per-class TTLs.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Remote:    5 * time.Minute,
		Activity:  2 * time.Minute,
		Aggregate: 30 * time.Second,
		Derived:   time.Minute,
	}
}
