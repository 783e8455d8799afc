// Package history provides a ring-buffer of decoded samples with
// min/peak/avg statistics and an alert count.
package history

import (
	"math"
	"time"

	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

// Point is a single data point in the temperature history.
type Point struct {
	Temp  float64 // degrees Celsius
	Time  time.Time
	Alert bool
}

// Buffer stores a ring buffer of temperature readings for the device.
type Buffer struct {
	Points []Point
	Max    int // capacity
	Min    float64
	Peak   float64
	Alerts int // samples carrying the alert flag, over the whole run
	Total  int // samples pushed, over the whole run
}

// NewBuffer creates a new history ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
		Min:    math.MaxFloat64,
		Peak:   -math.MaxFloat64,
	}
}

// Push adds a decoded sample to the history.
func (b *Buffer) Push(s sensor.Sample) {
	p := Point{Temp: s.Celsius(), Time: s.Time(), Alert: s.Alert()}
	if len(b.Points) >= b.Max {
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}

	b.Total++
	if p.Alert {
		b.Alerts++
	}
	if p.Temp < b.Min {
		b.Min = p.Temp
	}
	if p.Temp > b.Peak {
		b.Peak = p.Temp
	}
}

// Empty reports whether no sample was pushed.
func (b *Buffer) Empty() bool { return b.Total == 0 }

// Last returns the most recent temperature, or 0 if empty.
func (b *Buffer) Last() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	return b.Points[len(b.Points)-1].Temp
}

// Avg returns the average temperature across the stored points.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.Points {
		sum += p.Temp
	}
	return sum / float64(len(b.Points))
}

// LastNPoints returns a copy of the last n Points.
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := len(b.Points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}

// Observe records sample events from the loop.
func (b *Buffer) Observe(ev loop.Event) {
	if ev.Kind == loop.EventSample {
		b.Push(ev.Sample)
	}
}
