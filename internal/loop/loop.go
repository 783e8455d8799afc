// Package loop runs the readiness-driven ingestion loop: wait on the device,
// dispatch priority and data readiness, and drive the test-mode tracker.
package loop

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/device"
	"github.com/luki/simtemp/internal/sensor"
)

// DefaultTimeout bounds each readiness wait.
const DefaultTimeout = 2000 * time.Millisecond

// Source is the device surface the loop needs. *device.Device satisfies it.
type Source interface {
	Wait(timeout time.Duration) (device.Readiness, error)
	ReadSampleBytes() ([]byte, error)
	Close() error
}

// Config is the immutable loop configuration.
type Config struct {
	Timeout  time.Duration    // per-wait bound; zero selects DefaultTimeout
	TestMode bool             // run the alert window and stop on a verdict
	Period   time.Duration    // test window length; zero selects alert.DefaultWindow
	Now      func() time.Time // clock; nil selects time.Now
}

// Result summarises one run.
type Result struct {
	State     alert.State
	Verdict   alert.Verdict
	Samples   int
	Alerts    int
	Truncated int
	Timeouts  int
}

// Loop owns the source for the duration of Run and closes it on return.
type Loop struct {
	src       Source
	cfg       Config
	tracker   *alert.Tracker
	observers []Observer
	log       *log.Entry
}

// New builds a loop over src. Observers receive events in the given order.
func New(src Source, cfg Config, observers ...Observer) *Loop {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loop{
		src:       src,
		cfg:       cfg,
		tracker:   alert.NewTracker(cfg.Period, cfg.Now),
		observers: observers,
		log:       log.WithField("package", "loop"),
	}
}

// Tracker exposes the test-mode state machine.
func (l *Loop) Tracker() *alert.Tracker { return l.tracker }

// Run iterates until the test window reaches a verdict, ctx is cancelled, or
// the device becomes unusable. Interruption is not an error. The source is
// closed exactly once on every path.
func (l *Loop) Run(ctx context.Context) (res Result, err error) {
	defer func() {
		if cerr := l.src.Close(); cerr != nil {
			l.log.WithError(cerr).Warn("closing device")
		}
		res.State = l.tracker.State()
		res.Verdict = l.tracker.Verdict()
	}()

	if l.cfg.TestMode {
		l.tracker.Start()
		l.log.WithField("window", l.tracker.Period()).
			WithField("budget", l.tracker.Budget()).
			Debug("test window started")
	}

	for {
		if ctx.Err() != nil {
			l.emit(Event{Kind: EventStopped, At: l.cfg.Now()})
			return res, nil
		}

		ready, werr := l.src.Wait(l.waitTimeout())
		if werr != nil {
			return res, werr
		}
		if ctx.Err() != nil {
			l.emit(Event{Kind: EventStopped, At: l.cfg.Now()})
			return res, nil
		}

		l.step(ready, &res)

		if l.tracker.State().Terminal() {
			l.emit(Event{
				Kind:    EventVerdict,
				At:      l.cfg.Now(),
				Verdict: l.tracker.Verdict(),
				Elapsed: l.tracker.Elapsed(),
			})
			return res, nil
		}
	}
}

// waitTimeout clamps the configured timeout to just past the remaining test
// budget so expiry is noticed one wait after it happens.
func (l *Loop) waitTimeout() time.Duration {
	t := l.cfg.Timeout
	if l.tracker.State() == alert.Running {
		if next := l.tracker.Remaining() + time.Millisecond; next < t {
			t = next
		}
	}
	return t
}

func (l *Loop) step(ready device.Readiness, res *Result) {
	now := l.cfg.Now()

	if ready.None() {
		res.Timeouts++
		l.emit(Event{Kind: EventTimeout, At: now})
	}

	if ready.Has(device.PriorityReady) {
		res.Alerts++
		l.emit(Event{Kind: EventAlert, At: now})
		l.tracker.OnPriority()
	}

	if ready.Has(device.DataReady) {
		l.readOne(now, res)
	}

	l.tracker.Check()
}

func (l *Loop) readOne(now time.Time, res *Result) {
	buf, err := l.src.ReadSampleBytes()
	if err != nil {
		l.log.WithError(err).Warn("sample read failed")
	}

	s, derr := sensor.Decode(buf)
	if derr != nil {
		if !errors.Is(derr, sensor.ErrTruncatedSample) {
			l.log.WithError(derr).Warn("sample decode failed")
		}
		res.Truncated++
		l.emit(Event{Kind: EventTruncated, At: now, Bytes: len(buf)})
		return
	}

	res.Samples++
	l.emit(Event{Kind: EventSample, At: now, Sample: s})
}

func (l *Loop) emit(ev Event) {
	for _, o := range l.observers {
		o.Observe(ev)
	}
}
