// Package config loads the client configuration from YAML and applies
// defaults. CLI flags override file values in cmd/simtemp.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	Device   DeviceConfig  `yaml:"device"`
	Driver   DriverConfig  `yaml:"driver"`
	Loop     LoopConfig    `yaml:"loop"`
	Record   RecordConfig  `yaml:"record"`
	Metrics  MetricsConfig `yaml:"metrics"`
	MQTT     MQTTConfig    `yaml:"mqtt"`
	LogLevel string        `yaml:"log_level"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Path string `yaml:"path"`
}

// ---- DRIVER ATTRIBUTES ----

// DriverConfig holds the attribute directory and the optional overrides
// pushed before the loop starts. Zero values leave the driver untouched.
type DriverConfig struct {
	SysfsDir    string `yaml:"sysfs_dir"`
	SamplingMs  int    `yaml:"sampling_ms"`
	ThresholdMC int    `yaml:"threshold_mc"`
	Mode        string `yaml:"mode"`
}

// ---- LOOP ----

type LoopConfig struct {
	TimeoutMs int  `yaml:"timeout_ms"`
	Test      bool `yaml:"test"`
}

// ---- OUTPUTS ----

type RecordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
}

const (
	DefaultDevicePath = "/dev/simtemp0"
	DefaultSysfsDir   = "/sys/class/simtemp/simtemp0"
	DefaultTimeoutMs  = 2000
	DefaultMQTTTopic  = "simtemp/simtemp0"
	DefaultClientID   = "simtemp-cli"
	DefaultThreshold  = 45000 // driver default, used for coloring only
)

// Default returns a configuration with every default applied.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads path, applies defaults and validates. An empty path returns
// Default().
func Load(path string) (Config, error) {
	if path == "" {
		c := Default()
		return c, Validate(&c)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.applyDefaults()
	if err := Validate(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Device.Path == "" {
		c.Device.Path = DefaultDevicePath
	}
	if c.Driver.SysfsDir == "" {
		c.Driver.SysfsDir = DefaultSysfsDir
	}
	if c.Loop.TimeoutMs == 0 {
		c.Loop.TimeoutMs = DefaultTimeoutMs
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = DefaultMQTTTopic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Timeout returns the poll timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Loop.TimeoutMs) * time.Millisecond
}

// Period returns the configured sampling period, zero when unset.
func (c Config) Period() time.Duration {
	return time.Duration(c.Driver.SamplingMs) * time.Millisecond
}
