// Package sensor decodes the fixed-layout binary records produced by the
// simtemp character device and names the sensor modes the driver accepts.
package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Wire layout of one record, little-endian, packed.
const (
	SampleSize = 16

	offTimestamp = 0
	offTemp      = 8
	offFlags     = 12
)

// Flag bits carried in Sample.Flags.
const (
	FlagNewSample uint32 = 1 << 0
	FlagAlert     uint32 = 1 << 1
)

// ErrTruncatedSample reports a read that did not deliver exactly SampleSize bytes.
var ErrTruncatedSample = errors.New("sensor: truncated sample")

// Sample is one measurement emitted by the driver.
type Sample struct {
	TimestampNS uint64 // ktime_get_real_ns() at capture
	TempMilliC  int32  // milli-degrees Celsius
	Flags       uint32
}

// Decode interprets buf as a Sample. Any length other than SampleSize yields
// ErrTruncatedSample and no Sample.
func Decode(buf []byte) (Sample, error) {
	if len(buf) != SampleSize {
		return Sample{}, fmt.Errorf("%w: got %d bytes, want %d", ErrTruncatedSample, len(buf), SampleSize)
	}
	return Sample{
		TimestampNS: binary.LittleEndian.Uint64(buf[offTimestamp:]),
		TempMilliC:  int32(binary.LittleEndian.Uint32(buf[offTemp:])),
		Flags:       binary.LittleEndian.Uint32(buf[offFlags:]),
	}, nil
}

// Encode is the inverse of Decode. Used by tests and fixtures.
func Encode(s Sample) []byte {
	buf := make([]byte, SampleSize)
	binary.LittleEndian.PutUint64(buf[offTimestamp:], s.TimestampNS)
	binary.LittleEndian.PutUint32(buf[offTemp:], uint32(s.TempMilliC))
	binary.LittleEndian.PutUint32(buf[offFlags:], s.Flags)
	return buf
}

// Alert reports whether the driver flagged this sample as over threshold.
func (s Sample) Alert() bool {
	return s.Flags&FlagAlert != 0
}

// AlertBit returns the alert flag as 0 or 1.
func (s Sample) AlertBit() uint32 {
	return (s.Flags & FlagAlert) >> 1
}

// Time converts the capture timestamp to a UTC instant.
func (s Sample) Time() time.Time {
	return time.Unix(0, int64(s.TimestampNS)).UTC()
}

// Celsius returns the temperature in degrees Celsius.
func (s Sample) Celsius() float64 {
	return float64(s.TempMilliC) / 1000.0
}

// TimeLayout renders sample instants with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders the capture instant, e.g. 2025-10-19T14:30:00.123Z.
func (s Sample) FormatTime() string {
	return s.Time().Format(TimeLayout)
}
