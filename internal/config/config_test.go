package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Scope != "myscope" || cfg.Stream != "mystream" {
		t.Fatalf("default names: %s/%s", cfg.Scope, cfg.Stream)
	}
	if cfg.MaxEventSize != 1<<20 {
		t.Fatalf("max event size default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "segstream.json")
	data := []byte(`{"endpoint":"gw:9000","maxEventSize":2048,"log":{"level":"debug"},"server":{"fsync":"always"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint != "gw:9000" || cfg.MaxEventSize != 2048 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("log section not merged over defaults: %+v", cfg.Log)
	}
	if cfg.Server.Fsync != "always" || cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("server section not merged over defaults: %+v", cfg.Server)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(file, []byte(`{"endpoint":`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("SEGSTREAM_ENDPOINT", "env:1234")
	t.Setenv("SEGSTREAM_MAX_EVENT_SIZE", "4096")
	t.Setenv("SEGSTREAM_FSYNC_INTERVAL_MS", "not-a-number")
	t.Setenv("SEGSTREAM_LOG_FORMAT", "json")
	FromEnv(&cfg)
	if cfg.Endpoint != "env:1234" || cfg.MaxEventSize != 4096 || cfg.Log.Format != "json" {
		t.Fatalf("env overrides missing: %+v", cfg)
	}
	if cfg.Server.FsyncIntervalMs != 5 {
		t.Fatalf("unparseable value should be ignored, got %d", cfg.Server.FsyncIntervalMs)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"size":   func(c *Config) { c.MaxEventSize = 0 },
		"regex":  func(c *Config) { c.NameRegex = "([" },
		"level":  func(c *Config) { c.Log.Level = "loud" },
		"format": func(c *Config) { c.Log.Format = "xml" },
		"fsync":  func(c *Config) { c.Server.Fsync = "sometimes" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
