package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	m := New()

	m.ObserveRun(ResultSuccess, 3*time.Second)
	m.ObserveRun(ResultSuccess, 0)
	m.ObserveRun(ResultFailed, time.Second)

	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("Expected 2 successful runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsTotal.WithLabelValues(ResultFailed)); got != 1 {
		t.Errorf("Expected 1 failed run, got %v", got)
	}
	// Zero durations are not observed
	if got := testutil.CollectAndCount(m.runDuration); got != 1 {
		t.Errorf("Expected one histogram series, got %d", got)
	}
}

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("video", nil)
	m.ObserveFetch("audio", errors.New("boom"))

	if got := testutil.ToFloat64(m.fetchesTotal.WithLabelValues("video", ResultSuccess)); got != 1 {
		t.Errorf("Expected 1 video success, got %v", got)
	}
	if got := testutil.ToFloat64(m.fetchesTotal.WithLabelValues("audio", ResultFailed)); got != 1 {
		t.Errorf("Expected 1 audio failure, got %v", got)
	}
}

func TestIncMergeFailures(t *testing.T) {
	m := New()
	m.IncMergeFailures()

	if got := testutil.ToFloat64(m.mergeFailures); got != 1 {
		t.Errorf("Expected 1 merge failure, got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	// None of these may panic
	m.ObserveRun(ResultSuccess, time.Second)
	m.ObserveFetch("video", nil)
	m.IncMergeFailures()
	if err := m.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(ResultFailed, time.Second)

	path := filepath.Join(t.TempDir(), "ytmerger.prom")
	if err := m.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `ytmerger_runs_total{result="failed"} 1`) {
		t.Errorf("Expected runs counter in textfile, got:\n%s", data)
	}

	// Empty path disables writing
	if err := m.WriteToTextfile(""); err != nil {
		t.Errorf("Expected nil error for empty path, got %v", err)
	}
}
