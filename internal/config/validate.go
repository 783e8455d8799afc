package config

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/sensor"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate checks configuration correctness. It MUST NOT mutate
// configuration beyond canonicalising the mode selector.
func Validate(c *Config) error {
	if c.Device.Path == "" {
		return fmt.Errorf("%w: device path required", ErrInvalid)
	}
	if c.Driver.SysfsDir == "" {
		return fmt.Errorf("%w: sysfs dir required", ErrInvalid)
	}
	if c.Loop.TimeoutMs <= 0 {
		return fmt.Errorf("%w: timeout_ms must be > 0, got %d", ErrInvalid, c.Loop.TimeoutMs)
	}
	if c.Driver.SamplingMs < 0 {
		return fmt.Errorf("%w: sampling_ms must be >= 0, got %d", ErrInvalid, c.Driver.SamplingMs)
	}
	if c.Driver.Mode != "" {
		m, err := sensor.ParseMode(c.Driver.Mode)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.Driver.Mode = string(m)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt qos must be 0, 1 or 2, got %d", ErrInvalid, c.MQTT.QoS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
