//go:build linux

package device

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/luki/simtemp/internal/sensor"
)

// Device is a non-blocking handle on the sensor node.
// It is not safe for concurrent use; the event loop is its only user.
type Device struct {
	path   string
	fd     int
	closed bool
}

// Open acquires a read-only, non-blocking handle on path.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	log.WithField("path", path).WithField("fd", fd).Debug("device opened")
	return &Device{path: path, fd: fd}, nil
}

// Path returns the node the handle was opened on.
func (d *Device) Path() string { return d.path }

// Wait blocks until the device is readable, has a pending priority
// notification, or timeout elapses. A signal interrupting the wait is
// reported as an empty Readiness so the caller can check for cancellation.
func (d *Device) Wait(timeout time.Duration) (Readiness, error) {
	if d.closed {
		return 0, ErrClosed
	}
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN | unix.POLLPRI}}

	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, fmt.Errorf("device: poll %s: %w", d.path, err)
	}
	if n == 0 {
		return 0, nil
	}
	return readinessFromEvents(fds[0].Revents)
}

func readinessFromEvents(revents int16) (Readiness, error) {
	var r Readiness
	if revents&unix.POLLPRI != 0 {
		r |= PriorityReady
	}
	if revents&unix.POLLIN != 0 {
		r |= DataReady
	}
	if r.None() && revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return 0, fmt.Errorf("%w (revents=%#x)", ErrHangup, revents)
	}
	return r, nil
}

// ReadSampleBytes makes one non-blocking read sized to a single sample and
// returns whatever arrived. A short read is returned as-is; EAGAIN yields an
// empty buffer.
func (d *Device) ReadSampleBytes() ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	buf := make([]byte, sensor.SampleSize)
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return buf[:0], nil
		}
		return nil, fmt.Errorf("device: read %s: %w", d.path, err)
	}
	if n < 0 {
		n = 0
	}
	return buf[:n], nil
}

// Close releases the descriptor. Calls after the first are no-ops.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := unix.Close(d.fd); err != nil {
		return fmt.Errorf("device: close %s: %w", d.path, err)
	}
	log.WithField("path", d.path).Debug("device closed")
	return nil
}
