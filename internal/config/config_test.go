package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEURODOSE_DB", "NEURODOSE_CATALOG", "NEURODOSE_LOG_LEVEL", "NEURODOSE_PORT"} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:37778" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
	sleep, err := cfg.SleepSchedule()
	if err != nil {
		t.Fatalf("SleepSchedule: %v", err)
	}
	if sleep != domain.DefaultSleepSchedule() {
		t.Errorf("default sleep = %+v", sleep)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if cfg.Server.Port != 37778 {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
  cors_origins: ["http://localhost:5173"]
monitor:
  interval: 30s
sleep:
  start: "23:30"
  end: "07:00"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Monitor.Interval != 30*time.Second || !cfg.Monitor.Enabled || cfg.Monitor.FeedSize != 100 {
		t.Errorf("monitor = %+v", cfg.Monitor)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Mode != "dev" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEURODOSE_DB", "/tmp/n.db")
	t.Setenv("NEURODOSE_CATALOG", "/tmp/c.yaml")
	t.Setenv("NEURODOSE_LOG_LEVEL", "warn")
	t.Setenv("NEURODOSE_PORT", "1234")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/n.db" || cfg.Catalog.Path != "/tmp/c.yaml" || cfg.Log.Level != "warn" || cfg.Server.Port != 1234 {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("NEURODOSE_PORT", "http")
	if _, err := Load(""); !domain.IsInvalidInput(err) {
		t.Errorf("bad port err = %v, want configuration error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }},
		{"zero feed", func(c *Config) { c.Monitor.FeedSize = 0 }},
		{"same hour sleep", func(c *Config) { c.Sleep = SleepConfig{Start: "06:00", End: "06:30"} }},
		{"bad clock", func(c *Config) { c.Sleep.Start = "late" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !domain.IsInvalidInput(err) {
				t.Errorf("Validate = %v, want configuration error", err)
			}
		})
	}
}

func TestServerURL(t *testing.T) {
	cfg := Default()
	cfg.Server.Bind = "0.0.0.0"
	if got := cfg.ServerURL(); got != "http://127.0.0.1:37778" {
		t.Errorf("ServerURL = %q", got)
	}
}
