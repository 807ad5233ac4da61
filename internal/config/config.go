// Package config layers the server settings: built-in defaults, an
// optional TOML file, a .env file, then SPRINTBOARD_* variables.
// Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAddr      = "SPRINTBOARD_ADDR"
	EnvDBPath    = "SPRINTBOARD_DB_PATH"
	EnvStaticDir = "SPRINTBOARD_STATIC_DIR"
	EnvLogLevel  = "SPRINTBOARD_LOG_LEVEL"
	EnvOwner     = "SPRINTBOARD_OWNER"
)

type Config struct {
	Addr      string `toml:"addr"`
	DBPath    string `toml:"db_path"`
	StaticDir string `toml:"static_dir"`
	LogLevel  string `toml:"log_level"`
	// Owner is recorded on the workspace created at first start.
	Owner string `toml:"owner"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		DBPath:    "data/sprintboard.db",
		StaticDir: "web/dist",
		LogLevel:  "info",
	}
}

// Load builds the configuration. An empty path skips the TOML file; a
// path that does not exist is an error. A missing env file is ignored.
// Variables already present in the environment win over the env file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	cfg.Addr = envOrDefault(EnvAddr, cfg.Addr)
	cfg.DBPath = envOrDefault(EnvDBPath, cfg.DBPath)
	cfg.StaticDir = envOrDefault(EnvStaticDir, cfg.StaticDir)
	cfg.LogLevel = envOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.Owner = envOrDefault(EnvOwner, cfg.Owner)

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("database path must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// envOrDefault returns the environment variable value or fallback when it is empty.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
