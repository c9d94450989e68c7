package metrics

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder(nil, 0)

	r.Record("bulk_classify", 100*time.Millisecond, false)
	r.Record("bulk_classify", 200*time.Millisecond, false)
	r.Record("bulk_classify", 50*time.Millisecond, true)

	snap := r.Snapshot()
	m, ok := snap["bulk_classify"]
	if !ok {
		t.Fatal("missing bulk_classify in snapshot")
	}
	if m.Calls != 3 {
		t.Errorf("Calls = %d; want 3", m.Calls)
	}
	if m.Errors != 1 {
		t.Errorf("Errors = %d; want 1", m.Errors)
	}
	if m.TotalDurationMs != 350 {
		t.Errorf("TotalDurationMs = %d; want 350", m.TotalDurationMs)
	}
	if m.AvgMs != 117 {
		t.Errorf("AvgMs = %d; want 117 (rounded)", m.AvgMs)
	}
	if m.LastCallAt.IsZero() {
		t.Error("LastCallAt not set")
	}
}

func TestRecorder_SnapshotIsACopy(t *testing.T) {
	r := NewRecorder(nil, 0)
	r.Record("sync", time.Millisecond, false)

	snap := r.Snapshot()
	m := snap["sync"]
	m.Calls = 999
	snap["sync"] = m

	if got := r.Snapshot()["sync"].Calls; got != 1 {
		t.Fatalf("Calls = %d; want 1 (snapshot must not alias internal state)", got)
	}
}

func TestRecorder_SeparateOperations(t *testing.T) {
	r := NewRecorder(nil, 0)
	r.Record("a", 10*time.Millisecond, false)
	r.Record("b", 20*time.Millisecond, true)

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot has %d ops; want 2", len(snap))
	}
	if snap["a"].Errors != 0 || snap["b"].Errors != 1 {
		t.Fatalf("errors misattributed: %+v", snap)
	}
}

func TestTrack_RecordsSuccess(t *testing.T) {
	r := NewRecorder(nil, 0)

	v, err := Track(r, "lookup", func() (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("Track = %d, %v; want 42, nil", v, err)
	}

	m := r.Snapshot()["lookup"]
	if m.Calls != 1 || m.Errors != 0 {
		t.Fatalf("metrics = %+v; want one clean call", m)
	}
}

func TestTrack_RethrowsErrorUnchanged(t *testing.T) {
	r := NewRecorder(nil, 0)
	errBoom := errors.New("boom")

	v, err := Track(r, "lookup", func() (string, error) {
		return "partial", errBoom
	})
	if err != errBoom {
		t.Fatalf("err = %v; want the identical error value", err)
	}
	if v != "partial" {
		t.Fatalf("value = %q; want %q", v, "partial")
	}

	m := r.Snapshot()["lookup"]
	if m.Calls != 1 || m.Errors != 1 {
		t.Fatalf("metrics = %+v; want one recorded error", m)
	}
}

func TestTrack_SlowCallLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRecorder(logger, 5*time.Millisecond)

	if _, err := Track(r, "slow_op", func() (struct{}, error) {
		time.Sleep(20 * time.Millisecond)
		return struct{}{}, nil
	}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "slow operation") || !strings.Contains(out, "slow_op") {
		t.Fatalf("expected slow-call warning, got: %q", out)
	}
}

func TestTrack_FastCallNoWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRecorder(logger, time.Second)

	if _, err := Track(r, "fast_op", func() (struct{}, error) {
		return struct{}{}, nil
	}); err != nil {
		t.Fatalf("Track: %v", err)
	}

	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestRecorder_ConcurrentRecord(t *testing.T) {
	r := NewRecorder(nil, 0)
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record("op", time.Millisecond, false)
		}()
	}
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Snapshot()
		}()
	}
	wg.Wait()

	if got := r.Snapshot()["op"].Calls; got != 50 {
		t.Fatalf("Calls = %d; want 50", got)
	}
}
