package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  host: \"127.0.0.1\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Jobs.TimeoutMinutes != 60 {
		t.Errorf("default job timeout = %d, want 60", cfg.Jobs.TimeoutMinutes)
	}
	if cfg.Whisper.Model != "small" {
		t.Errorf("default whisper model = %q, want small", cfg.Whisper.Model)
	}
	if cfg.Workers.Count != 1 {
		t.Errorf("default worker count = %d, want 1", cfg.Workers.Count)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "0.0.0.0"
  port: 9000
services:
  vad:
    url: "http://vad:9001"
  diarization:
    url: "http://diarize:9002"
jobs:
  timeout_minutes: 30
log_level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Services.VAD.URL != "http://vad:9001" {
		t.Errorf("vad url = %q", cfg.Services.VAD.URL)
	}
	if cfg.Jobs.TimeoutMinutes != 30 {
		t.Errorf("job timeout = %d", cfg.Jobs.TimeoutMinutes)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
