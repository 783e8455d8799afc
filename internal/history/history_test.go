package history

import (
	"testing"
	"time"

	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

func sampleAt(base time.Time, i int, milliC int32, flags uint32) sensor.Sample {
	return sensor.Sample{
		TimestampNS: uint64(base.Add(time.Duration(i) * time.Second).UnixNano()),
		TempMilliC:  milliC,
		Flags:       flags,
	}
}

func TestHistory(t *testing.T) {
	h := NewBuffer(5)
	base := time.Date(2025, 10, 19, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 7; i++ {
		h.Push(sampleAt(base, i, int32(30000+i*1000), sensor.FlagNewSample))
	}

	if len(h.Points) != 5 {
		t.Errorf("expected 5 points, got %d", len(h.Points))
	}
	if h.Total != 7 {
		t.Errorf("Total: got %d, want 7", h.Total)
	}
	if h.Last() != 36.0 {
		t.Errorf("Last(): got %f, want 36.0", h.Last())
	}
	if h.Min != 30.0 {
		t.Errorf("Min: got %f, want 30.0", h.Min)
	}
	if h.Peak != 36.0 {
		t.Errorf("Peak: got %f, want 36.0", h.Peak)
	}
	if h.Avg() != 34.0 {
		t.Errorf("Avg: got %f, want 34.0", h.Avg())
	}
}

func TestObserveCountsAlerts(t *testing.T) {
	h := NewBuffer(10)
	base := time.Date(2025, 10, 19, 14, 0, 0, 0, time.UTC)

	h.Observe(loop.Event{Kind: loop.EventSample, Sample: sampleAt(base, 0, 44000, sensor.FlagNewSample)})
	h.Observe(loop.Event{Kind: loop.EventSample, Sample: sampleAt(base, 1, 46000, sensor.FlagAlert)})
	h.Observe(loop.Event{Kind: loop.EventTimeout})
	h.Observe(loop.Event{Kind: loop.EventAlert})

	if h.Total != 2 || h.Alerts != 1 {
		t.Errorf("Total/Alerts: got %d/%d, want 2/1", h.Total, h.Alerts)
	}
	if !h.Points[1].Alert || h.Points[0].Alert {
		t.Errorf("alert flags not carried: %+v", h.Points)
	}
}

func TestLastNPoints(t *testing.T) {
	h := NewBuffer(100)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 120; i++ {
		h.Push(sampleAt(base, i, int32(30000+(i%10)*1000), 0))
	}

	pts := h.LastNPoints(5)
	if len(pts) != 5 {
		t.Fatalf("LastNPoints(5): got %d, want 5", len(pts))
	}

	last := pts[len(pts)-1]
	if !last.Time.Equal(base.Add(119 * time.Second)) {
		t.Errorf("last point time: got %v, want %v", last.Time, base.Add(119*time.Second))
	}
	if NewBuffer(3).LastNPoints(2) != nil {
		t.Error("empty buffer should return nil")
	}
}
