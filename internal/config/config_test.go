package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simtemp.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Device.Path != "/dev/simtemp0" {
		t.Errorf("device: got %q", c.Device.Path)
	}
	if c.Driver.SysfsDir != "/sys/class/simtemp/simtemp0" {
		t.Errorf("sysfs: got %q", c.Driver.SysfsDir)
	}
	if c.Timeout() != 2*time.Second {
		t.Errorf("timeout: got %v", c.Timeout())
	}
	if c.Period() != 0 {
		t.Errorf("period: got %v, want 0", c.Period())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
device:
  path: /tmp/simtemp-test
driver:
  sampling_ms: 1000
  threshold_mc: 30000
  mode: RAMP
loop:
  timeout_ms: 500
  test: true
mqtt:
  broker: tcp://localhost:1883
  qos: 1
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Device.Path != "/tmp/simtemp-test" {
		t.Errorf("device: got %q", c.Device.Path)
	}
	if c.Driver.SysfsDir != DefaultSysfsDir {
		t.Errorf("sysfs default not applied: %q", c.Driver.SysfsDir)
	}
	if c.Period() != time.Second || c.Timeout() != 500*time.Millisecond || !c.Loop.Test {
		t.Errorf("loop: %+v driver: %+v", c.Loop, c.Driver)
	}
	if c.Driver.Mode != "ramp" {
		t.Errorf("mode not canonicalised: %q", c.Driver.Mode)
	}
	if c.MQTT.Topic != DefaultMQTTTopic || c.MQTT.QoS != 1 {
		t.Errorf("mqtt: %+v", c.MQTT)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Driver.Mode = "sine" }},
		{"negative timeout", func(c *Config) { c.Loop.TimeoutMs = -1 }},
		{"negative sampling", func(c *Config) { c.Driver.SamplingMs = -5 }},
		{"bad qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }},
		{"no device", func(c *Config) { c.Device.Path = "" }},
	}
	for _, tt := range tests {
		c := Default()
		tt.mutate(&c)
		if err := Validate(&c); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v, want ErrInvalid", tt.name, err)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "loop: [not, a, map]")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Load(writeFile(t, "driver:\n  mode: sine\n")); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
