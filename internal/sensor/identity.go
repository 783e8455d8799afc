package sensor

import (
	"fmt"
	"strings"
)

// Mode selects the driver's temperature generator.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeNoisy  Mode = "noisy"
	ModeRamp   Mode = "ramp"
)

// modeIdentityMap maps accepted modes to a short operator description.
var modeIdentityMap = []struct {
	mode Mode
	desc string
}{
	{ModeNormal, "constant baseline"},
	{ModeNoisy, "baseline plus up to 1 C of random noise"},
	{ModeRamp, "rises 10 mC per sample"},
}

// Modes lists every mode the driver accepts, in display order.
func Modes() []Mode {
	out := make([]Mode, 0, len(modeIdentityMap))
	for _, entry := range modeIdentityMap {
		out = append(out, entry.mode)
	}
	return out
}

// ParseMode validates a mode selector. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	lower := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, entry := range modeIdentityMap {
		if entry.mode == lower {
			return entry.mode, nil
		}
	}
	return "", fmt.Errorf("sensor: unknown mode %q (want normal|noisy|ramp)", s)
}

// Describe returns a human-readable description of the mode.
func (m Mode) Describe() string {
	for _, entry := range modeIdentityMap {
		if entry.mode == m {
			return entry.desc
		}
	}
	return "unknown"
}
