// Package device owns the simtemp character device handle: opening it
// non-blocking, waiting for readiness and reading raw sample bytes.
package device

import (
	"errors"
	"strings"
)

// Readiness is the set of conditions reported by one wait. DataReady and
// PriorityReady are independent and may be set together.
type Readiness uint8

const (
	DataReady Readiness = 1 << iota
	PriorityReady
)

// Has reports whether every bit in r2 is set in r.
func (r Readiness) Has(r2 Readiness) bool { return r&r2 == r2 }

// None reports a wait that returned without any condition (timeout).
func (r Readiness) None() bool { return r == 0 }

func (r Readiness) String() string {
	if r.None() {
		return "none"
	}
	var parts []string
	if r.Has(DataReady) {
		parts = append(parts, "data")
	}
	if r.Has(PriorityReady) {
		parts = append(parts, "priority")
	}
	return strings.Join(parts, "|")
}

// Sentinel errors. ErrOpen is fatal at startup; ErrHangup means the handle
// became unusable after a successful open.
var (
	ErrOpen   = errors.New("device: cannot open")
	ErrHangup = errors.New("device: hangup or error condition")
	ErrClosed = errors.New("device: closed")
)

// DefaultPath is the node created by the simtemp driver.
const DefaultPath = "/dev/simtemp0"
