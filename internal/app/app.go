// Package app wires configuration, driver attributes, the device and the
// observers into one ingestion run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/config"
	"github.com/luki/simtemp/internal/console"
	"github.com/luki/simtemp/internal/device"
	"github.com/luki/simtemp/internal/history"
	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/metrics"
	"github.com/luki/simtemp/internal/publish"
	"github.com/luki/simtemp/internal/sensor"
	"github.com/luki/simtemp/internal/store"
	"github.com/luki/simtemp/internal/sysfs"
)

const (
	historyCapacity = 300
	summaryWidth    = 60
)

// Run executes one ingestion run and returns once the loop stops. The only
// fatal startup failure is a device that cannot be opened; it is returned
// wrapping device.ErrOpen.
func Run(ctx context.Context, cfg config.Config, out io.Writer) (loop.Result, error) {
	logger := log.WithField("package", "app")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := console.New(out)
	n.Heading("Initial configuration:")

	attrs := sysfs.New(cfg.Driver.SysfsDir, out)
	settings := sysfs.Settings{
		SamplingMs:  cfg.Driver.SamplingMs,
		ThresholdMC: cfg.Driver.ThresholdMC,
		Mode:        sensor.Mode(cfg.Driver.Mode),
	}
	if err := attrs.Apply(settings); err != nil {
		logger.WithError(err).Warn("driver configuration incomplete")
	}

	n.Timeout(cfg.Timeout())

	threshold := cfg.Driver.ThresholdMC
	raw, st, err := attrs.ReadStats()
	switch {
	case err == nil:
		n.Stats(raw)
		if threshold == 0 {
			threshold = st.ThresholdMC
		}
	case errors.Is(err, sysfs.ErrNotAvailable):
		logger.Debug("stats attribute not present")
	default:
		logger.WithError(err).Warn("stats not parsed")
		if raw != "" {
			n.Stats(raw)
		}
	}
	if threshold == 0 {
		threshold = config.DefaultThreshold
	}
	n.SetThreshold(threshold)

	hist := history.NewBuffer(historyCapacity)
	observers := []loop.Observer{n, hist}

	if cfg.Record.Enabled {
		ds, err := store.New(cfg.Record.Dir)
		if err != nil {
			logger.WithError(err).Warn("sample recording disabled")
		} else {
			defer ds.Close()
			observers = append(observers, ds)
		}
	}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			logger.WithError(err).Warn("metrics disabled")
		} else {
			observers = append(observers, m)
			go func() {
				if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg); err != nil {
					logger.WithError(err).Error("metrics server stopped")
				}
			}()
		}
	}

	if cfg.MQTT.Broker != "" {
		pcfg := publish.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
		}
		client, err := publish.Connect(ctx, pcfg)
		if err != nil {
			logger.WithError(err).Warn("mqtt publishing disabled")
		} else {
			defer publish.Disconnect(client)
			observers = append(observers, publish.New(client, pcfg))
		}
	}

	dev, err := device.Open(cfg.Device.Path)
	if err != nil {
		return loop.Result{}, err
	}

	l := loop.New(dev, loop.Config{
		Timeout:  cfg.Timeout(),
		TestMode: cfg.Loop.Test,
		Period:   cfg.Period(),
	}, observers...)

	n.Waiting(cfg.Loop.Test, l.Tracker().Budget())

	res, err := l.Run(ctx)
	n.Summary(hist, res, summaryWidth)
	if err != nil {
		return res, fmt.Errorf("app: %w", err)
	}
	return res, nil
}

// Stats prints the raw and parsed driver stats found in dir.
func Stats(dir string, out io.Writer) error {
	attrs := sysfs.New(dir, out)
	raw, st, err := attrs.ReadStats()
	if err != nil {
		return err
	}
	n := console.New(out)
	n.Stats(raw)
	n.StatsTable(st)
	return nil
}

// History summarises a recorded day. An empty day selects the newest one.
func History(dir, day string, out io.Writer) error {
	if day == "" {
		days, err := store.ListDays(dir)
		if err != nil {
			return err
		}
		if len(days) == 0 {
			return fmt.Errorf("app: no recorded days in %s", dir)
		}
		day = days[0]
	}

	samples, err := store.LoadDay(dir, day)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("app: no samples recorded on %s", day)
	}

	hist := history.NewBuffer(len(samples))
	for _, s := range samples {
		hist.Push(s)
	}

	n := console.New(out)
	n.Heading(fmt.Sprintf("%s  (%d samples, %s to %s)", day, hist.Total,
		samples[0].Time().Format(time.TimeOnly), samples[len(samples)-1].Time().Format(time.TimeOnly)))
	n.HistoryLine(hist, summaryWidth)
	return nil
}
