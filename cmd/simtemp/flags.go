package main

import (
	"errors"
	"flag"
	"os"

	"github.com/luki/simtemp/internal/config"
	"github.com/luki/simtemp/internal/store"
)

var errHelp = flag.ErrHelp

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("simtemp "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// runOverrides holds flag values; only flags set on the command line are
// copied into the loaded configuration.
type runOverrides struct {
	config    string
	device    string
	sysfs     string
	timeout   int
	sampling  int
	threshold int
	mode      string
	test      bool
	record    string
	metrics   string
	broker    string
	topic     string
	verbose   bool
}

func runFlagSet() (*flag.FlagSet, *runOverrides) {
	o := &runOverrides{}
	fs := newFlagSet("run")
	fs.StringVar(&o.config, "config", "", "YAML configuration file")
	fs.StringVar(&o.device, "device", config.DefaultDevicePath, "character device to read samples from")
	fs.StringVar(&o.sysfs, "sysfs", config.DefaultSysfsDir, "driver attribute directory")
	fs.IntVar(&o.timeout, "timeout", config.DefaultTimeoutMs, "poll timeout in ms")
	fs.IntVar(&o.sampling, "sampling", 0, "sampling period in ms (0 leaves the driver value)")
	fs.IntVar(&o.threshold, "threshold", 0, "alert threshold in milli-degrees C (0 leaves the driver value)")
	fs.StringVar(&o.mode, "mode", "", "sensor mode: normal, noisy or ramp")
	fs.BoolVar(&o.test, "test", false, "wait for an alert within two sampling periods and report PASS/FAIL")
	fs.StringVar(&o.record, "record", "", "record samples as daily CSV files in this directory")
	fs.StringVar(&o.metrics, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&o.broker, "mqtt-broker", "", "publish events to this MQTT broker")
	fs.StringVar(&o.topic, "mqtt-topic", config.DefaultMQTTTopic, "MQTT topic prefix")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	return fs, o
}

// parseRunFlags loads the configuration file named by -config, then
// applies every flag the user set explicitly.
func parseRunFlags(args []string) (config.Config, error) {
	fs, o := runFlagSet()
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, errors.New("unexpected arguments after flags")
	}

	cfg, err := config.Load(o.config)
	if err != nil {
		return config.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device.Path = o.device
		case "sysfs":
			cfg.Driver.SysfsDir = o.sysfs
		case "timeout":
			cfg.Loop.TimeoutMs = o.timeout
		case "sampling":
			cfg.Driver.SamplingMs = o.sampling
		case "threshold":
			cfg.Driver.ThresholdMC = o.threshold
		case "mode":
			cfg.Driver.Mode = o.mode
		case "test":
			cfg.Loop.Test = o.test
		case "record":
			cfg.Record.Enabled = true
			cfg.Record.Dir = o.record
		case "metrics-addr":
			cfg.Metrics.Addr = o.metrics
		case "mqtt-broker":
			cfg.MQTT.Broker = o.broker
		case "mqtt-topic":
			cfg.MQTT.Topic = o.topic
		case "v":
			if o.verbose {
				cfg.LogLevel = "debug"
			}
		}
	})

	if cfg.Record.Enabled && cfg.Record.Dir == "" {
		cfg.Record.Dir = store.DataDir()
	}
	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
