package loop

import (
	"time"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/sensor"
)

// EventKind classifies what the loop observed in one step.
type EventKind int

const (
	EventTimeout   EventKind = iota // wait returned with no readiness
	EventAlert                      // priority readiness fired
	EventSample                     // a full sample was decoded
	EventTruncated                  // a read returned the wrong number of bytes
	EventVerdict                    // test window reached a terminal state
	EventStopped                    // loop interrupted from outside
)

func (k EventKind) String() string {
	switch k {
	case EventTimeout:
		return "timeout"
	case EventAlert:
		return "alert"
	case EventSample:
		return "sample"
	case EventTruncated:
		return "truncated"
	case EventVerdict:
		return "verdict"
	case EventStopped:
		return "stopped"
	}
	return "unknown"
}

// Event is delivered to every Observer, in order, on the loop goroutine.
type Event struct {
	Kind    EventKind
	At      time.Time     // local clock when observed
	Sample  sensor.Sample // EventSample only
	Bytes   int           // EventTruncated: bytes actually read
	Verdict alert.Verdict // EventVerdict only
	Elapsed time.Duration // EventVerdict: time since the window opened
}

// Observer consumes loop events. Implementations must not block for long:
// the loop is single-threaded and the next wait starts after they return.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }
