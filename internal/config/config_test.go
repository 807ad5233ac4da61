package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets the variables for the test and restores them after.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func allKeys() []string {
	return []string{EnvAddr, EnvDBPath, EnvStaticDir, EnvLogLevel, EnvOwner}
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, allKeys()...)
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if level, _ := cfg.Level(); level != slog.LevelInfo {
		t.Errorf("level = %v", level)
	}
}

func TestLoadLayers(t *testing.T) {
	clearEnv(t, allKeys()...)
	file := write(t, "sprintboard.toml", `
addr = ":9000"
db_path = "/var/lib/board.db"
log_level = "debug"
owner = "toml-owner"
`)
	env := write(t, ".env", "SPRINTBOARD_DB_PATH=/tmp/env.db\nSPRINTBOARD_OWNER=env-owner\n")
	t.Setenv(EnvOwner, "process-owner")

	cfg, err := Load(file, env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q, want value from file", cfg.Addr)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("db path = %q, want value from env file", cfg.DBPath)
	}
	if cfg.Owner != "process-owner" {
		t.Errorf("owner = %q, want process environment to win", cfg.Owner)
	}
	if cfg.StaticDir != "web/dist" {
		t.Errorf("static dir = %q, want default", cfg.StaticDir)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t, allKeys()...)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml"), ""); err == nil {
		t.Error("missing config file accepted")
	}
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file = %v, want ignored", err)
	}

	t.Setenv(EnvLogLevel, "loud")
	if _, err := Load("", ""); err == nil {
		t.Error("unknown log level accepted")
	}
}
