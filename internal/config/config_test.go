package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_DefaultSettings(t *testing.T) {
	t.Setenv("TASKFLOW_BACKEND", "")
	os.Unsetenv("TASKFLOW_BACKEND")

	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.DBPath() != filepath.Join(dir, DBFile) {
		t.Errorf("unexpected db path %s", cfg.DBPath())
	}
	if cfg.Settings.Backend != BackendApper {
		t.Errorf("expected apper backend, got %q", cfg.Settings.Backend)
	}
	if cfg.Settings.HTTP.Port != "8080" || cfg.Settings.HTTP.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected http defaults %+v", cfg.Settings.HTTP)
	}
}

func TestNew_ReadsSettingsFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte("backend: postgres\npostgres:\n  url: postgres://localhost/taskflow\nhttp:\n  port: \"9000\"\n")
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), data, 0600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Settings.Backend != BackendPostgres {
		t.Errorf("expected postgres backend, got %q", cfg.Settings.Backend)
	}
	if cfg.Settings.Postgres.URL != "postgres://localhost/taskflow" {
		t.Errorf("unexpected url %q", cfg.Settings.Postgres.URL)
	}
	if cfg.Settings.HTTP.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Settings.HTTP.Port)
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte("backend: postgres\n"), 0600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	t.Setenv("TASKFLOW_BACKEND", BackendGoogleTasks)

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Settings.Backend != BackendGoogleTasks {
		t.Errorf("expected env override, got %q", cfg.Settings.Backend)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Setenv("TASKFLOW_BACKEND", "firebase")
	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestTokenHelpers(t *testing.T) {
	cfg := &Config{Dir: t.TempDir()}
	if cfg.HasToken() {
		t.Fatal("expected no token")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if !cfg.HasToken() {
		t.Fatal("expected token")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token removed")
	}
}
