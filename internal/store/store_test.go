package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	ds, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ds.Close()

	now := time.Date(2026, 2, 21, 14, 30, 0, 0, time.UTC)
	samples := []sensor.Sample{
		{TimestampNS: uint64(now.UnixNano()), TempMilliC: 45000, Flags: sensor.FlagNewSample},
		{TimestampNS: uint64(now.Add(time.Second).UnixNano()), TempMilliC: -1500, Flags: sensor.FlagAlert},
	}

	for _, s := range samples {
		ds.Observe(loop.Event{Kind: loop.EventSample, Sample: s})
	}
	ds.Observe(loop.Event{Kind: loop.EventTimeout})
	ds.Close()

	loaded, err := LoadFile(filepath.Join(dir, "2026-02-21.csv"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(loaded))
	}
	for i := range samples {
		if loaded[i] != samples[i] {
			t.Errorf("sample %d: got %+v, want %+v", i, loaded[i], samples[i])
		}
	}
}

func TestDailyRotationAndListDays(t *testing.T) {
	dir := t.TempDir()
	ds, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	day1 := time.Date(2026, 2, 21, 23, 59, 59, 0, time.UTC)
	day2 := day1.Add(2 * time.Second)
	for _, ts := range []time.Time{day1, day2} {
		if err := ds.Write(sensor.Sample{TimestampNS: uint64(ts.UnixNano()), TempMilliC: 25000}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	ds.Close()

	days, err := ListDays(dir)
	if err != nil {
		t.Fatalf("ListDays: %v", err)
	}
	if len(days) != 2 || days[0] != "2026-02-22" || days[1] != "2026-02-21" {
		t.Errorf("days: got %v", days)
	}

	got, err := LoadDay(dir, "2026-02-22")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("2026-02-22: got %d samples, want 1", len(got))
	}
}
