package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgconfig "github.com/starford/recall/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
	p := cfg.Archive.Policy()
	if p.ThresholdDays != 14 || p.MaxActive != 20 {
		t.Errorf("policy = %+v", p)
	}
}

func TestArchiveConfig_Invalid(t *testing.T) {
	cases := []ArchiveConfig{
		{ThresholdDays: -3, MaxActive: 20},
		{ThresholdDays: 14, MaxActive: 0},
		{ThresholdDays: 14, MaxActive: -1},
	}
	for _, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("%+v should fail validation", c)
		}
	}
}

func TestArchiveConfig_ZeroThreshold(t *testing.T) {
	c := ArchiveConfig{ThresholdDays: 0, MaxActive: 20}
	if err := c.Validate(); err != nil {
		t.Errorf("zero threshold rejected: %v", err)
	}
}

func TestWatchConfig_Schedule(t *testing.T) {
	cfg := WatchConfig{Debounce: time.Second, ArchiveSchedule: "@daily"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}
	cfg.ArchiveSchedule = "every tuesday"
	if err := cfg.Validate(); err == nil {
		t.Error("bad schedule accepted")
	}
	cfg = WatchConfig{Debounce: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("tiny debounce accepted")
	}
	cfg = WatchConfig{Debounce: time.Second, Ignore: []string{"*.tmp", "[unclosed"}}
	if err := cfg.Validate(); err == nil {
		t.Error("bad ignore pattern accepted")
	}
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "log_level: debug\narchive:\n  threshold_days: 7.5\n  max_active: 5\nwatch:\n  debounce: 2s\n  archive_schedule: \"0 3 * * *\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel)
	}
	if cfg.Archive.ThresholdDays != 7.5 || cfg.Archive.MaxActive != 5 {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if cfg.Watch.Debounce != 2*time.Second || cfg.Watch.ArchiveSchedule != "0 3 * * *" {
		t.Errorf("watch = %+v", cfg.Watch)
	}
}

func TestConfig_PartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("archive:\n  max_active: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.ThresholdDays != 14 || cfg.Archive.MaxActive != 3 {
		t.Errorf("archive = %+v", cfg.Archive)
	}
}
