package sysfs

import (
	"fmt"
	"strconv"
	"strings"
)

// DriverStats is the parsed form of the stats attribute:
//
//	Sampling frequency: 5000 ms
//	Threshold: 45000 m°C
//	Samples taken: 12
//	Sensor mode: normal
//	Alert counts: 0
type DriverStats struct {
	SamplingMs   int
	ThresholdMC  int
	SamplesTaken uint64
	Mode         string
	AlertCount   int
}

// ParseStats extracts the known fields from the stats text. Unknown lines are
// ignored; a malformed number for a known field is an error.
func ParseStats(text string) (DriverStats, error) {
	var st DriverStats
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)

		var err error
		switch label {
		case "Sampling frequency":
			st.SamplingMs, err = leadingInt(value)
		case "Threshold":
			st.ThresholdMC, err = leadingInt(value)
		case "Samples taken":
			st.SamplesTaken, err = strconv.ParseUint(value, 10, 64)
		case "Sensor mode":
			st.Mode = value
		case "Alert counts":
			st.AlertCount, err = leadingInt(value)
		}
		if err != nil {
			return DriverStats{}, fmt.Errorf("sysfs: stats %q: %w", label, err)
		}
	}
	return st, nil
}

// leadingInt parses the first whitespace-separated token, dropping units.
func leadingInt(v string) (int, error) {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.Atoi(fields[0])
}

// ReadStats reads and parses the stats attribute. The raw text is returned
// alongside so callers can echo it verbatim.
func (s *Store) ReadStats() (string, DriverStats, error) {
	raw, err := s.Read(Stats)
	if err != nil {
		return "", DriverStats{}, err
	}
	st, err := ParseStats(raw)
	return raw, st, err
}
