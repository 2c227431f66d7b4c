package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080 got %q", cfg.Server.Port)
	}
	if cfg.Cleanup.Interval != "30m" {
		t.Fatalf("expected default cleanup interval 30m got %q", cfg.Cleanup.Interval)
	}
	if cfg.Auth.MaxFailedAttempts != 5 {
		t.Fatalf("expected 5 max failed attempts got %d", cfg.Auth.MaxFailedAttempts)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"9000\"\njwt:\n  secret: fromfile\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "fromenv")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "fromenv" {
		t.Fatalf("expected env override, got %q", cfg.JWT.Secret)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %v", got)
	}
	if got := Duration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("malformed: got %v", got)
	}
	if got := Duration("-5s", time.Minute); got != time.Minute {
		t.Fatalf("negative: got %v", got)
	}
	if got := Duration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("valid: got %v", got)
	}
}
