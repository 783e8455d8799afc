package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Observe(loop.Event{Kind: loop.EventSample, Sample: sensor.Sample{TimestampNS: 2_000_000_000, TempMilliC: 46500, Flags: sensor.FlagAlert}})
	m.Observe(loop.Event{Kind: loop.EventSample, Sample: sensor.Sample{TempMilliC: 25000}})
	m.Observe(loop.Event{Kind: loop.EventAlert})
	m.Observe(loop.Event{Kind: loop.EventTruncated})
	m.Observe(loop.Event{Kind: loop.EventTimeout})
	m.Observe(loop.Event{Kind: loop.EventTimeout})

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"samples", m.samples, 2},
		{"flagged", m.flagged, 1},
		{"alerts", m.alerts, 1},
		{"truncated", m.truncated, 1},
		{"timeouts", m.timeouts, 2},
		{"temperature", m.temperature, 25},
		{"verdict", m.verdict, 0},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s: got %f, want %f", c.name, got, c.want)
		}
	}

	m.Observe(loop.Event{Kind: loop.EventVerdict, Verdict: alert.Fail})
	if got := testutil.ToFloat64(m.verdict); got != 2 {
		t.Errorf("verdict after FAIL: got %f, want 2", got)
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestGatherNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatal(err)
	}
	n, err := testutil.GatherAndCount(reg, "simtemp_samples_total", "simtemp_poll_timeouts_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d series, want 2", n)
	}
}
