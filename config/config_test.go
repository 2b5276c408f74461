package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("decision:\n  cooldown: 250ms\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Decision.Cooldown != 250*time.Millisecond {
		t.Errorf("cooldown = %v, want 250ms", cfg.Decision.Cooldown)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	// Untouched sections keep defaults
	if cfg.Decision.MutationRate != Default().Decision.MutationRate {
		t.Errorf("mutation rate = %v, want default", cfg.Decision.MutationRate)
	}
	if cfg.Memory != Default().Memory {
		t.Errorf("memory section = %+v, want defaults", cfg.Memory)
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("decision: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestValidate_Bounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cooldown", func(c *Config) { c.Decision.Cooldown = -time.Second }},
		{"zero mutation rate", func(c *Config) { c.Decision.MutationRate = 0 }},
		{"mutation rate above one", func(c *Config) { c.Decision.MutationRate = 1.5 }},
		{"epsilon of one", func(c *Config) { c.Decision.Epsilon = 1 }},
		{"zero decay rate", func(c *Config) { c.Memory.DecayRate = 0 }},
		{"zero interval", func(c *Config) { c.Memory.ConsolidationInterval = 0 }},
		{"threshold above one", func(c *Config) { c.Memory.ConsolidationThreshold = 1.1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Config, 1)
	w, err := Watch(path, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.LogLevel != "warn" {
			t.Errorf("log level = %q, want warn", cfg.LogLevel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatch_SkipsInvalidWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Config, 4)
	w, err := Watch(path, func(cfg Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()

	// Invalid content must not reach the callback
	if err := os.WriteFile(path, []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// A later valid write still does
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log_level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.LogLevel == "loud" {
				t.Fatal("invalid config reached the callback")
			}
			if cfg.LogLevel == "error" {
				return
			}
		case <-deadline:
			t.Fatal("valid reload never arrived")
		}
	}
}
