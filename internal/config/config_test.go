// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/boardlock/internal/config"
)

func TestLoadConfig_NoFile_ReturnsDefaultsAndNotFound(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil)
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
	if got.Store.Type != "file" {
		t.Fatalf("expected default store type, got %q", got.Store.Type)
	}
	if got.Scan.Timeout != 40*time.Millisecond {
		t.Fatalf("expected 40ms probe timeout, got %v", got.Scan.Timeout)
	}
	if got.Schedule.Interval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %v", got.Schedule.Interval)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := t.TempDir()
	yaml := "store:\n  type: sqlite\n  dsn: /var/lib/boardlock.db\nlanguage: tr\nscan:\n  timeout: 100ms\ndispatch:\n  commands:\n    lock: xdg-screensaver lock\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Store.Type != "sqlite" || got.Store.DSN != "/var/lib/boardlock.db" {
		t.Fatalf("unexpected store config: %+v", got.Store)
	}
	if got.Language != "tr" {
		t.Fatalf("expected tr, got %q", got.Language)
	}
	if got.Scan.Timeout != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", got.Scan.Timeout)
	}
	// Untouched keys keep their defaults.
	if got.Dispatch.Port != 22 || got.Dispatch.Workers != 16 {
		t.Fatalf("unexpected dispatch defaults: %+v", got.Dispatch)
	}
	if got.Dispatch.Commands["lock"] != "xdg-screensaver lock" {
		t.Fatalf("expected lock override, got %v", got.Dispatch.Commands)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte("log:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("BOARDLOCK_LOG_LEVEL", "debug")

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Log.Level != "debug" {
		t.Fatalf("expected env to win, got %q", got.Log.Level)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte("language: en\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("language", "", "")
	if err := cmd.Flags().Set("language", "tr"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "tr" {
		t.Fatalf("expected flag value, got %q", got.Language)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)

	c := cfg.Config{Language: "en"}
	c.Store.Type = "file"
	c.Store.Dir = "."

	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s, stat error: %v", path, err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestWriteConfigFileTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "boardlock.yaml")
	c := cfg.Config{Language: "tr"}
	c.MQTT.Broker = "tcp://broker:1883"
	c.Dispatch.ConnectTimeout = 2 * time.Second

	if err := cfg.WriteConfigFileTo(&c, path); err != nil {
		t.Fatalf("WriteConfigFileTo failed: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "tr" || got.MQTT.Broker != "tcp://broker:1883" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if got.Dispatch.ConnectTimeout != 2*time.Second {
		t.Fatalf("expected 2s connect timeout, got %v", got.Dispatch.ConnectTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmp := t.TempDir()
	if err := cfg.LoadDotEnv(filepath.Join(tmp, "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}

	envFile := filepath.Join(tmp, ".env")
	if err := os.WriteFile(envFile, []byte("BOARDLOCK_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("BOARDLOCK_TEST_DOTENV", "")
	os.Unsetenv("BOARDLOCK_TEST_DOTENV")

	if err := cfg.LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("BOARDLOCK_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}
