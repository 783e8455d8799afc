//go:build !linux

package device

import (
	"fmt"
	"runtime"
	"time"
)

// Device is unavailable outside Linux; Open always fails.
type Device struct{}

func Open(path string) (*Device, error) {
	return nil, fmt.Errorf("%w %s: unsupported on %s", ErrOpen, path, runtime.GOOS)
}

func (d *Device) Path() string                          { return "" }
func (d *Device) Wait(time.Duration) (Readiness, error) { return 0, ErrClosed }
func (d *Device) ReadSampleBytes() ([]byte, error)      { return nil, ErrClosed }
func (d *Device) Close() error                          { return nil }
