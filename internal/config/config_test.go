package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "version: 1\nfps: 60\nevent_poll_rate: 5ms\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FramesPerSecond != 60 || time.Duration(cfg.EventPollRate) != 5*time.Millisecond {
		t.Fatalf("unexpected rates: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.Title != Default().Title {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad duration": "version: 1\nevent_poll_rate: soon\n",
		"negative":     "version: 1\nevent_poll_rate: -1s\n",
		"version":      "version: 2\n",
		"fps":          "version: 1\nfps: 1000\n",
		"syntax":       "version: [1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.EventPollRate = Duration(20 * time.Millisecond)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "event_poll_rate: 20ms") {
		t.Fatalf("duration should be written as a string:\n%s", data)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("loaded %+v, want %+v", loaded, cfg)
	}
}

func TestDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "screenrun") {
		t.Fatalf("Dir() = %q", dir)
	}
}
