package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/luki/simtemp/internal/config"
)

func TestParseRunFlagsDefaults(t *testing.T) {
	cfg, err := parseRunFlags(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Device.Path != config.DefaultDevicePath || cfg.Loop.TimeoutMs != config.DefaultTimeoutMs {
		t.Errorf("defaults: got %+v", cfg)
	}
	if cfg.Loop.Test || cfg.Record.Enabled {
		t.Errorf("unexpected options enabled: %+v", cfg)
	}
}

func TestParseRunFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simtemp.yaml")
	body := "device:\n  path: /dev/from-file\nloop:\n  timeout_ms: 750\ndriver:\n  sampling_ms: 400\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseRunFlags([]string{"-config", path, "-timeout", "100", "-test", "-mode", "Noisy", "-v"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Device.Path != "/dev/from-file" {
		t.Errorf("device: got %q, want file value", cfg.Device.Path)
	}
	if cfg.Loop.TimeoutMs != 100 {
		t.Errorf("timeout: got %d, want 100", cfg.Loop.TimeoutMs)
	}
	if cfg.Driver.SamplingMs != 400 {
		t.Errorf("sampling: got %d, want 400", cfg.Driver.SamplingMs)
	}
	if !cfg.Loop.Test || cfg.Driver.Mode != "noisy" || cfg.LogLevel != "debug" {
		t.Errorf("overrides: got %+v", cfg)
	}
}

func TestParseRunFlagsRecord(t *testing.T) {
	dir := t.TempDir()
	cfg, err := parseRunFlags([]string{"-record", dir})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Record.Enabled || cfg.Record.Dir != dir {
		t.Errorf("record: got %+v", cfg.Record)
	}
}

func TestParseRunFlagsInvalid(t *testing.T) {
	if _, err := parseRunFlags([]string{"-mode", "sine"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("mode: got %v, want ErrInvalid", err)
	}
	if _, err := parseRunFlags([]string{"-timeout", "0"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("timeout: got %v, want ErrInvalid", err)
	}
	if _, err := parseRunFlags([]string{"extra"}); err == nil {
		t.Error("expected error for positional argument")
	}
}
