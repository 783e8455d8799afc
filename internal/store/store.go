// Package store handles persistent CSV storage of decoded samples with
// daily file rotation. Data is stored in ~/.simtemp-data/ by default.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luki/simtemp/internal/loop"
	"github.com/luki/simtemp/internal/sensor"
)

const (
	dirName    = ".simtemp-data"
	fileLayout = "2006-01-02"
)

var header = []string{"time", "timestamp_ns", "temp_mc", "flags", "alert"}

// DiskStore appends samples to one CSV file per UTC day:
//
//	time,timestamp_ns,temp_mc,flags,alert
type DiskStore struct {
	dir     string
	current *os.File
	writer  *csv.Writer
	curDate string
	log     *log.Entry
}

// New creates a disk store in dir, creating the directory if needed.
// An empty dir selects DataDir().
func New(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = DataDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: cannot create data dir: %w", err)
	}
	return &DiskStore{dir: dir, log: log.WithField("package", "store")}, nil
}

// Dir returns the directory files are written to.
func (d *DiskStore) Dir() string { return d.dir }

// Write appends one sample to the file for the sample's UTC date.
func (d *DiskStore) Write(s sensor.Sample) error {
	dateStr := s.Time().Format(fileLayout)

	if d.curDate != dateStr || d.current == nil {
		d.Close()
		path := filepath.Join(d.dir, dateStr+".csv")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("store: open %s: %w", path, err)
		}
		d.current = f
		d.writer = csv.NewWriter(f)
		d.curDate = dateStr

		if info, err := f.Stat(); err == nil && info.Size() == 0 {
			d.writer.Write(header)
		}
	}

	d.writer.Write([]string{
		s.FormatTime(),
		strconv.FormatUint(s.TimestampNS, 10),
		strconv.FormatInt(int64(s.TempMilliC), 10),
		strconv.FormatUint(uint64(s.Flags), 10),
		strconv.FormatUint(uint64(s.AlertBit()), 10),
	})
	d.writer.Flush()
	return d.writer.Error()
}

// Observe records sample events; write failures are logged and dropped.
func (d *DiskStore) Observe(ev loop.Event) {
	if ev.Kind != loop.EventSample {
		return
	}
	if err := d.Write(ev.Sample); err != nil {
		d.log.WithError(err).Warn("sample not recorded")
	}
}

// Close flushes and closes the current file.
func (d *DiskStore) Close() {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.current != nil {
		d.current.Close()
		d.current = nil
	}
}

// ListDays returns available log dates, newest first. An empty dir selects
// DataDir().
func ListDays(dir string) ([]string, error) {
	if dir == "" {
		dir = DataDir()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var days []string
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		if strings.HasSuffix(name, ".csv") {
			days = append(days, strings.TrimSuffix(name, ".csv"))
		}
	}
	return days, nil
}

// LoadDay reads all samples from one day's file in dir.
func LoadDay(dir, day string) ([]sensor.Sample, error) {
	if dir == "" {
		dir = DataDir()
	}
	return LoadFile(filepath.Join(dir, day+".csv"))
}

// LoadFile reads all samples from a CSV file. Malformed rows are skipped.
func LoadFile(path string) ([]sensor.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var samples []sensor.Sample
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) < 4 {
			continue
		}

		ts, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			continue
		}
		temp, err := strconv.ParseInt(row[2], 10, 32)
		if err != nil {
			continue
		}
		flags, err := strconv.ParseUint(row[3], 10, 32)
		if err != nil {
			continue
		}

		samples = append(samples, sensor.Sample{
			TimestampNS: ts,
			TempMilliC:  int32(temp),
			Flags:       uint32(flags),
		})
	}

	return samples, nil
}

// DataDir returns the default data directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// Today returns the file name stem for the current UTC day.
func Today() string {
	return time.Now().UTC().Format(fileLayout)
}
