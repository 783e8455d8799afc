// Package metrics exposes ingestion counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/alert"
	"github.com/luki/simtemp/internal/loop"
)

// Metrics implements loop.Observer.
type Metrics struct {
	samples     prometheus.Counter
	flagged     prometheus.Counter
	alerts      prometheus.Counter
	truncated   prometheus.Counter
	timeouts    prometheus.Counter
	temperature prometheus.Gauge
	lastSample  prometheus.Gauge
	verdict     prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_samples_total",
			Help: "Samples decoded from the device.",
		}),
		flagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_sample_alert_flags_total",
			Help: "Decoded samples carrying the alert flag.",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_priority_events_total",
			Help: "Priority (alert) readiness notifications.",
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_truncated_reads_total",
			Help: "Reads that did not return exactly one sample.",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_poll_timeouts_total",
			Help: "Readiness waits that returned without events.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simtemp_temperature_celsius",
			Help: "Temperature of the most recent sample.",
		}),
		lastSample: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simtemp_last_sample_timestamp_seconds",
			Help: "Driver timestamp of the most recent sample.",
		}),
		verdict: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simtemp_test_verdict",
			Help: "Test mode outcome: 0 none, 1 pass, 2 fail.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.samples, m.flagged, m.alerts, m.truncated, m.timeouts,
		m.temperature, m.lastSample, m.verdict,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe updates collectors from one loop event.
func (m *Metrics) Observe(ev loop.Event) {
	switch ev.Kind {
	case loop.EventSample:
		m.samples.Inc()
		if ev.Sample.Alert() {
			m.flagged.Inc()
		}
		m.temperature.Set(ev.Sample.Celsius())
		m.lastSample.Set(float64(ev.Sample.TimestampNS) / 1e9)
	case loop.EventAlert:
		m.alerts.Inc()
	case loop.EventTruncated:
		m.truncated.Inc()
	case loop.EventTimeout:
		m.timeouts.Inc()
	case loop.EventVerdict:
		switch ev.Verdict {
		case alert.Pass:
			m.verdict.Set(1)
		case alert.Fail:
			m.verdict.Set(2)
		}
	}
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
