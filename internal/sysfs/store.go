// Package sysfs reads and writes the simtemp driver's text attributes.
// Every call is a single, independent attempt; nothing is retried.
package sysfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/sensor"
)

// Key names one driver attribute.
type Key int

const (
	SamplingPeriodMs Key = iota
	ThresholdMilliC
	Mode
	Stats
)

var keyAttrs = map[Key]string{
	SamplingPeriodMs: "sampling_ms",
	ThresholdMilliC:  "threshold_mc",
	Mode:             "mode",
	Stats:            "stats",
}

// Attr returns the attribute file name the key maps to.
func (k Key) Attr() string {
	if a, ok := keyAttrs[k]; ok {
		return a
	}
	return fmt.Sprintf("key(%d)", int(k))
}

func (k Key) String() string { return k.Attr() }

// ErrNotAvailable is returned by Read when the attribute does not exist.
var ErrNotAvailable = errors.New("sysfs: attribute not available")

// ErrReadOnly is returned when writing a read-only attribute.
var ErrReadOnly = errors.New("sysfs: attribute is read-only")

// Store accesses the attributes under one driver directory.
// Successful reads and writes are narrated to out as "<attr> = <value>".
type Store struct {
	dir string
	out io.Writer
	log *log.Entry
}

// New returns a Store rooted at dir. A nil out disables narration.
func New(dir string, out io.Writer) *Store {
	if out == nil {
		out = io.Discard
	}
	return &Store{
		dir: dir,
		out: out,
		log: log.WithField("package", "sysfs"),
	}
}

// Dir returns the attribute directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(k Key) string {
	return filepath.Join(s.dir, k.Attr())
}

// Write stores the plain text form of value in the attribute for k.
func (s *Store) Write(k Key, value any) error {
	if k == Stats {
		return fmt.Errorf("%w: %s", ErrReadOnly, k.Attr())
	}
	text := fmt.Sprint(value)
	if err := os.WriteFile(s.path(k), []byte(text), 0o644); err != nil {
		return fmt.Errorf("sysfs: write %s: %w", k.Attr(), err)
	}
	fmt.Fprintf(s.out, "%s = %s\n", k.Attr(), text)
	return nil
}

// Read returns the trimmed contents of the attribute for k.
func (s *Store) Read(k Key) (string, error) {
	raw, err := os.ReadFile(s.path(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotAvailable, k.Attr())
		}
		return "", fmt.Errorf("sysfs: read %s: %w", k.Attr(), err)
	}
	val := strings.TrimSpace(string(raw))
	if k != Stats {
		fmt.Fprintf(s.out, "%s = %s\n", k.Attr(), val)
	}
	return val, nil
}

// Settings holds the optional overrides pushed before the loop starts.
// Zero values mean "leave the driver's value alone".
type Settings struct {
	SamplingMs  int
	ThresholdMC int
	Mode        sensor.Mode
}

// Apply writes every override that is set. A failure on one attribute does
// not stop the others; all failures are returned joined.
func (s *Store) Apply(st Settings) error {
	var errs []error

	if st.SamplingMs > 0 {
		if err := s.Write(SamplingPeriodMs, st.SamplingMs); err != nil {
			s.log.WithError(err).Warn("sampling period not applied")
			errs = append(errs, err)
		}
	}
	if st.ThresholdMC != 0 {
		if err := s.Write(ThresholdMilliC, st.ThresholdMC); err != nil {
			s.log.WithError(err).Warn("threshold not applied")
			errs = append(errs, err)
		}
	}
	if st.Mode != "" {
		if err := s.Write(Mode, string(st.Mode)); err != nil {
			s.log.WithError(err).Warn("mode not applied")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
