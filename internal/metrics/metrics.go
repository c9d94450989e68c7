// Package metrics tracks per-operation call counts, error counts, and
// cumulative latency for the life of a process. A Recorder is an explicit
// instance: construct one per process (or per test) and pass it to
// whatever needs it.
package metrics

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultSlowThreshold marks calls worth a warning log.
const DefaultSlowThreshold = time.Second

// OperationMetrics holds running totals for one named operation.
// Counters are monotonic; AvgMs is derived at snapshot time, never
// stored.
type OperationMetrics struct {
	Calls           int64     `json:"calls"`
	Errors          int64     `json:"errors"`
	TotalDurationMs int64     `json:"total_duration_ms"`
	AvgMs           int64     `json:"avg_ms"`
	LastCallAt      time.Time `json:"last_call_at"`
}

// Recorder accumulates execution metrics per operation name. Safe for
// concurrent use.
type Recorder struct {
	mu  sync.Mutex
	ops map[string]*OperationMetrics

	logger        *slog.Logger
	slowThreshold time.Duration
}

// NewRecorder creates a Recorder. Calls slower than slowThreshold emit a
// warning through logger; slowThreshold <= 0 selects the default.
func NewRecorder(logger *slog.Logger, slowThreshold time.Duration) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowThreshold
	}
	return &Recorder{
		ops:           make(map[string]*OperationMetrics),
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// Record adds one completed call to the operation's running totals.
func (r *Recorder) Record(op string, d time.Duration, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.ops[op]
	if !ok {
		m = &OperationMetrics{}
		r.ops[op] = m
	}
	m.Calls++
	if isError {
		m.Errors++
	}
	m.TotalDurationMs += d.Milliseconds()
	m.LastCallAt = time.Now()
}

// Snapshot returns a copy of all per-operation metrics with the derived
// average filled in.
func (r *Recorder) Snapshot() map[string]OperationMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]OperationMetrics, len(r.ops))
	for op, m := range r.ops {
		c := *m
		if c.Calls > 0 {
			c.AvgMs = int64(math.Round(float64(c.TotalDurationMs) / float64(c.Calls)))
		}
		out[op] = c
	}
	return out
}

// Track runs fn under the named operation: it times the call, records
// the outcome whether fn succeeded or failed, and returns fn's value and
// error unchanged. Recording must never swallow or rewrap an error.
func Track[T any](r *Recorder, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	d := time.Since(start)

	r.Record(op, d, err != nil)
	if d > r.slowThreshold {
		r.logger.Warn("slow operation",
			"op", op,
			"duration_ms", d.Milliseconds(),
			"threshold_ms", r.slowThreshold.Milliseconds())
	}
	return v, err
}
