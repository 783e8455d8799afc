// Package alert tracks whether a driver alert is observed inside a bounded
// test window and turns the outcome into a PASS/FAIL verdict.
package alert

import "time"

// DefaultWindow is used when no sampling period was configured.
const DefaultWindow = 5000 * time.Millisecond

// State of the tracker. Confirmed and Expired are terminal.
type State int

const (
	Idle State = iota
	Running
	Confirmed
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Confirmed:
		return "confirmed"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Terminal reports whether the state ends the loop.
func (s State) Terminal() bool { return s == Confirmed || s == Expired }

// Tracker is owned by the event loop; it is not safe for concurrent use.
type Tracker struct {
	state     State
	startedAt time.Time
	period    time.Duration
	alertSeen bool
	now       func() time.Time
}

// NewTracker returns an Idle tracker. A zero period selects DefaultWindow.
// now may be nil to use the wall clock.
func NewTracker(period time.Duration, now func() time.Time) *Tracker {
	if period <= 0 {
		period = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{period: period, now: now}
}

// Start opens the window. Only valid from Idle.
func (t *Tracker) Start() {
	if t.state != Idle {
		return
	}
	t.state = Running
	t.startedAt = t.now()
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Period returns the window length.
func (t *Tracker) Period() time.Duration { return t.period }

// Budget is the total observation time: two windows.
func (t *Tracker) Budget() time.Duration { return 2 * t.period }

// AlertSeen reports whether a priority event was recorded in the window.
func (t *Tracker) AlertSeen() bool { return t.alertSeen }

// Elapsed returns the time since Start, or zero when not started.
func (t *Tracker) Elapsed() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return t.now().Sub(t.startedAt)
}

// Remaining returns the budget left while Running, zero otherwise.
func (t *Tracker) Remaining() time.Duration {
	if t.state != Running {
		return 0
	}
	if r := t.Budget() - t.Elapsed(); r > 0 {
		return r
	}
	return 0
}

// OnPriority records a priority-readiness event. Inside the budget the
// tracker becomes Confirmed; past it the window has already expired.
func (t *Tracker) OnPriority() State {
	if t.state != Running {
		return t.state
	}
	if t.Elapsed() > t.Budget() {
		t.state = Expired
		return t.state
	}
	t.alertSeen = true
	t.state = Confirmed
	return t.state
}

// Check applies the elapsed-time rule and returns the resulting state.
func (t *Tracker) Check() State {
	if t.state == Running && t.Elapsed() > t.Budget() {
		t.state = Expired
	}
	return t.state
}

// Verdict is the test-mode outcome.
type Verdict int

const (
	NoVerdict Verdict = iota
	Pass
	Fail
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	}
	return "-"
}

// Verdict maps the current state to a test outcome.
func (t *Tracker) Verdict() Verdict {
	switch t.state {
	case Confirmed:
		return Pass
	case Expired:
		return Fail
	}
	return NoVerdict
}
